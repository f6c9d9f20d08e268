package repair

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/triples"
)

func setup(records []ingest.Record) (*conflictgraph.Graph, *enroll.Normalised) {
	n := enroll.Normalise(records, model.NewMergeTable(nil), nil)
	return conflictgraph.Build(n), n
}

func countViolations(assignment model.Assignment, n *enroll.Normalised, slots []model.SlotID) int {
	slotToDay, _ := dayIndexMap(slots)
	studentSlots := map[model.StudentID][]model.SlotID{}
	for stu, courses := range n.StudentToCourses {
		for _, c := range courses.Slice() {
			if slot, ok := assignment[c]; ok {
				studentSlots[stu] = append(studentSlots[stu], slot)
			}
		}
	}
	return len(triples.DetectAll(studentSlots, slotToDay, len(slots)))
}

func TestRunResolvesTripleViaMove(t *testing.T) {
	// A single student with three exams on three consecutive days; a fourth,
	// unrelated slot exists for one of the courses to move into.
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
	}
	g, n := setup(records)
	slots := model.BaseSlots(5)
	assignment := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1],
		model.RawCourse("C"): slots[2],
	}
	require.Equal(t, 1, countViolations(assignment, n, slots))

	res := Run(assignment, Input{
		Graph:            g,
		CourseStudents:   n.CourseToStudents,
		StudentToCourses: n.StudentToCourses,
		ActiveSlots:      slots,
		EnableSwaps:      true,
	})

	require.Equal(t, 0, res.RemainingViolations)
	require.Greater(t, res.MovesDone, 0)
}

func TestRunNeverWorsens(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
	}
	g, n := setup(records)
	slots := model.BaseSlots(2)
	assignment := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1],
	}
	before := countViolations(assignment, n, slots)

	res := Run(assignment, Input{
		Graph:            g,
		CourseStudents:   n.CourseToStudents,
		StudentToCourses: n.StudentToCourses,
		ActiveSlots:      slots,
		EnableSwaps:      true,
	})

	require.LessOrEqual(t, res.RemainingViolations, before)
}

func TestRunPreservesLegalColoring(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
	}
	g, n := setup(records)
	slots := model.BaseSlots(5)
	assignment := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1],
		model.RawCourse("C"): slots[2],
	}

	res := Run(assignment, Input{
		Graph:            g,
		CourseStudents:   n.CourseToStudents,
		StudentToCourses: n.StudentToCourses,
		ActiveSlots:      slots,
		EnableSwaps:      true,
	})

	seen := map[model.SlotID]bool{}
	for _, c := range []model.CourseID{model.RawCourse("A"), model.RawCourse("B"), model.RawCourse("C")} {
		slot := res.Assignment[c]
		require.False(t, seen[slot], "course %v collides with another course sharing student s1", c)
		seen[slot] = true
	}
}
