package engine

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

// BlendedOrder reproduces the course iteration order the Python original
// feeds into DSATUR before any colouring starts (original_source/app/
// scheduler.py: blended_score = 0.6*enrollments + 0.4*degree, highest
// first). spec.md §4.3 only pins down DSATUR's internal selection and
// tie-break rules, not the initial course_list ordering that the saturation
// scan starts from; this is a supplemented feature (SPEC_FULL.md §4).
//
// DSATUR's own selection rule (saturation, then degree, then random rank)
// makes the initial order irrelevant to *which* vertex gets picked once
// ties are broken by degree — but it still matters for one thing the
// Python original relied on: when a restart's random ranks tie exactly
// (extremely rare, but possible at identical degree and zero saturation),
// this ordering is the deterministic fallback DSATUR's `better` consults
// last, after saturation, degree and random rank, matching the original's course_list traversal rather than leaving the
// outcome to map iteration order.
func BlendedOrder(g *conflictgraph.Graph, courseStudents map[model.CourseID]*set.Set[model.StudentID]) []model.CourseID {
	type scored struct {
		course model.CourseID
		score  float64
	}
	n := g.NumVertices()
	items := make([]scored, 0, n)
	for v := 0; v < n; v++ {
		c := g.CourseAt(v)
		enrollments := 0
		if s, ok := courseStudents[c]; ok {
			enrollments = s.Size()
		}
		degree := g.Degree(v)
		score := 0.6*float64(enrollments) + 0.4*float64(degree)
		items = append(items, scored{course: c, score: score})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].course.String() < items[j].course.String()
	})
	out := make([]model.CourseID, len(items))
	for i, it := range items {
		out[i] = it.course
	}
	return out
}
