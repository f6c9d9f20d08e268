package audit

import (
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func newCourseSet(courses ...model.CourseID) *set.Set[model.CourseID] {
	s := set.New[model.CourseID](len(courses))
	for _, c := range courses {
		s.Insert(c)
	}
	return s
}

func TestRunOKOnCleanAssignment(t *testing.T) {
	slots := model.BaseSlots(3)
	assignment := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1],
		model.RawCourse("C"): slots[2],
	}
	studentToCourses := map[model.StudentID]*set.Set[model.CourseID]{
		"s1": newCourseSet(model.RawCourse("A"), model.RawCourse("B")),
	}

	report := Run(Input{
		Assignment:       assignment,
		StudentToCourses: studentToCourses,
		Merges:           model.NewMergeTable(nil),
		ActiveSlots:      slots,
		NonIgnored:       []string{"A", "B", "C"},
	})

	require.True(t, report.OK())
	require.Empty(t, report.Violations)
}

func TestRunDetectsConflict(t *testing.T) {
	slots := model.BaseSlots(3)
	assignment := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[0], // same slot as A
	}
	studentToCourses := map[model.StudentID]*set.Set[model.CourseID]{
		"s1": newCourseSet(model.RawCourse("A"), model.RawCourse("B")),
	}

	report := Run(Input{
		Assignment:       assignment,
		StudentToCourses: studentToCourses,
		Merges:           model.NewMergeTable(nil),
		ActiveSlots:      slots,
		NonIgnored:       []string{"A", "B"},
	})

	require.False(t, report.OK())
	require.Equal(t, "conflict", report.Violations[0].Kind)
}

func TestRunDetectsMissingFixedSlot(t *testing.T) {
	slots := model.BaseSlots(2)
	assignment := model.Assignment{
		model.RawCourse("A"): slots[1],
	}

	report := Run(Input{
		Assignment:  assignment,
		Merges:      model.NewMergeTable(nil),
		Fixed:       map[string]model.SlotID{"A": slots[0]},
		ActiveSlots: slots,
		NonIgnored:  []string{"A"},
	})

	require.False(t, report.OK())
	require.Equal(t, "fixed", report.Violations[0].Kind)
}

func TestRunDetectsGroupIncoherence(t *testing.T) {
	slots := model.BaseSlots(2)
	merges := model.NewMergeTable([][2]string{{"g1", "A"}, {"g1", "B"}})
	assignment := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1], // should match A's slot
	}

	report := Run(Input{
		Assignment:  assignment,
		Merges:      merges,
		ActiveSlots: slots,
		NonIgnored:  []string{"A", "B"},
	})

	require.False(t, report.OK())
	require.Equal(t, "group", report.Violations[0].Kind)
}

func TestRunDetectsDomainAndTotalViolations(t *testing.T) {
	slots := model.BaseSlots(2)
	assignment := model.Assignment{
		model.RawCourse("A"): model.SlotID(40), // outside active domain
	}

	report := Run(Input{
		Assignment:  assignment,
		Merges:      model.NewMergeTable(nil),
		ActiveSlots: slots,
		NonIgnored:  []string{"A", "B"},
	})

	require.False(t, report.OK())
	kinds := map[string]bool{}
	for _, v := range report.Violations {
		kinds[v.Kind] = true
	}
	require.True(t, kinds["domain"])
	require.True(t, kinds["total"])
}
