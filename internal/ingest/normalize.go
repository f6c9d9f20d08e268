package ingest

import "strings"

// NormaliseCourseCode applies the two rewrites spec.md §6 specifies for
// course codes coming off the feed: internal whitespace is removed, and for
// some feeds the code is truncated at the first open-paren.
//
// The open-paren truncation is carried over verbatim from the original
// "visitor" XML ingest path (original_source/app/processor.go:
// `if "(" in course_code: course_code = course_code.split("(")[0].strip()`).
// Whether this coalescing is semantically intended (distinct sections of one
// listing folded into a single course) or an artifact of how that feed
// formats cross-listed sections is unresolved upstream (spec.md §9); this
// function preserves the behaviour rather than resolving the ambiguity.
func NormaliseCourseCode(raw string) string {
	code := strings.ReplaceAll(raw, " ", "")
	if i := strings.IndexByte(code, '('); i >= 0 {
		code = code[:i]
	}
	return strings.TrimSpace(code)
}
