// Package audit re-checks a finished Assignment against five hard
// invariants of spec.md §3/§8 (conflict-free, group coherence, fixed
// honoured, domain closure, total coverage). It is the programmatic
// self-check the Python original always ran before declaring success
// (original_source/app/verify_schedule.py), kept here as the driver's final
// self-check (the driver logs a failed report as a warning; it does not
// reject the run) and as a property-based test helper.
//
// This is NOT the "per-student conflict auditing" explicitly excluded from
// scope in spec.md §1 — that names an interactive UI feature. This package
// is read-only, pure, and produces a structured report rather than a view.
package audit

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

// Violation describes one broken invariant.
type Violation struct {
	Kind    string // "conflict", "group", "fixed", "domain", "total"
	Course  string
	Other   string // second course, for "conflict"/"group" kinds
	Student string // for "conflict"
	Detail  string
}

// Report is the outcome of auditing an Assignment.
type Report struct {
	Violations []Violation
}

// OK reports whether the assignment satisfies every hard invariant.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Input bundles what an audit pass needs.
type Input struct {
	Assignment       model.Assignment // expanded, one entry per raw course
	StudentToCourses map[model.StudentID]*set.Set[model.CourseID]
	Merges           *model.MergeTable
	Fixed            map[string]model.SlotID // raw course code -> pinned slot
	ActiveSlots      []model.SlotID
	NonIgnored       []string // every course code expected to be present
}

// Run re-checks all five hard invariants against a completed Assignment.
func Run(in Input) Report {
	var report Report

	report.Violations = append(report.Violations, checkConflictFree(in)...)
	report.Violations = append(report.Violations, checkGroupCoherence(in)...)
	report.Violations = append(report.Violations, checkFixedHonoured(in)...)
	report.Violations = append(report.Violations, checkDomainClosure(in)...)
	report.Violations = append(report.Violations, checkTotal(in)...)

	sort.Slice(report.Violations, func(i, j int) bool {
		vi, vj := report.Violations[i], report.Violations[j]
		if vi.Kind != vj.Kind {
			return vi.Kind < vj.Kind
		}
		return vi.Course < vj.Course
	})
	return report
}

// checkConflictFree re-derives spec.md §8 property 1: no student sits two
// exams in the same slot.
func checkConflictFree(in Input) []Violation {
	var out []Violation
	students := make([]model.StudentID, 0, len(in.StudentToCourses))
	for stu := range in.StudentToCourses {
		students = append(students, stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i] < students[j] })

	for _, stu := range students {
		courses := in.StudentToCourses[stu].Slice()
		sort.Slice(courses, func(i, j int) bool { return courses[i].String() < courses[j].String() })
		bySlot := map[model.SlotID]model.CourseID{}
		for _, c := range courses {
			slot, ok := in.Assignment[c]
			if !ok {
				continue
			}
			if prior, clash := bySlot[slot]; clash && prior != c {
				out = append(out, Violation{
					Kind:    "conflict",
					Course:  prior.String(),
					Other:   c.String(),
					Student: string(stu),
					Detail:  "both scheduled at the same slot for one student",
				})
				continue
			}
			bySlot[slot] = c
		}
	}
	return out
}

// checkGroupCoherence re-derives spec.md §8 property 2: every MergeGroup
// shares exactly one slot.
func checkGroupCoherence(in Input) []Violation {
	if in.Merges == nil {
		return nil
	}
	var out []Violation
	groups := in.Merges.Groups()
	sort.Strings(groups)
	for _, g := range groups {
		members := append([]string(nil), in.Merges.Members(g)...)
		sort.Strings(members)
		var first model.SlotID
		have := false
		for _, m := range members {
			slot, ok := in.Assignment[model.RawCourse(m)]
			if !ok {
				continue
			}
			if !have {
				first = slot
				have = true
				continue
			}
			if slot != first {
				out = append(out, Violation{
					Kind:   "group",
					Course: m,
					Other:  g,
					Detail: "merge-group member does not share the group's slot",
				})
			}
		}
	}
	return out
}

// checkFixedHonoured re-derives spec.md §8 property 3.
func checkFixedHonoured(in Input) []Violation {
	var out []Violation
	codes := make([]string, 0, len(in.Fixed))
	for code := range in.Fixed {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		want := in.Fixed[code]
		got, ok := in.Assignment[model.RawCourse(code)]
		if !ok || got != want {
			out = append(out, Violation{
				Kind:   "fixed",
				Course: code,
				Detail: "fixed slot not honoured in final assignment",
			})
		}
	}
	return out
}

// checkDomainClosure re-derives spec.md §8 property 4: every assigned slot
// is drawn from the active slot set.
func checkDomainClosure(in Input) []Violation {
	active := map[model.SlotID]bool{}
	for _, s := range in.ActiveSlots {
		active[s] = true
	}
	var out []Violation
	codes := make([]model.CourseID, 0, len(in.Assignment))
	for c := range in.Assignment {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].String() < codes[j].String() })
	for _, c := range codes {
		if !active[in.Assignment[c]] {
			out = append(out, Violation{
				Kind:   "domain",
				Course: c.String(),
				Detail: "assigned slot is outside the active slot set",
			})
		}
	}
	return out
}

// checkTotal re-derives spec.md §8 property 5: every non-ignored course has
// exactly one slot.
func checkTotal(in Input) []Violation {
	var out []Violation
	missing := make([]string, 0)
	for _, code := range in.NonIgnored {
		if _, ok := in.Assignment[model.RawCourse(code)]; !ok {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)
	for _, code := range missing {
		out = append(out, Violation{Kind: "total", Course: code, Detail: "course has no assigned slot"})
	}
	return out
}
