package coloring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func buildGraph(t *testing.T, records []ingest.Record) (*conflictgraph.Graph, *enroll.Normalised) {
	t.Helper()
	n := enroll.Normalise(records, model.NewMergeTable(nil), nil)
	return conflictgraph.Build(n), n
}

func TestColorNoConflictsUsesOneSlot(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "CS101", StudentID: "s1"},
		{CourseCode: "CS102", StudentID: "s2"},
	}
	g, n := buildGraph(t, records)
	slots := model.BaseSlots(3)

	res := Color(Input{
		Graph:          g,
		ActiveSlots:    slots,
		CourseStudents: n.CourseToStudents,
		Seed:           1,
	})

	require.True(t, res.OK)
	require.Len(t, res.Assignment, 2)
	require.Equal(t, res.Assignment[model.RawCourse("CS101")], res.Assignment[model.RawCourse("CS102")])
}

func TestColorConflictingCoursesGetDifferentSlots(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "CS101", StudentID: "s1"},
		{CourseCode: "CS102", StudentID: "s1"},
	}
	g, n := buildGraph(t, records)
	slots := model.BaseSlots(3)

	res := Color(Input{
		Graph:          g,
		ActiveSlots:    slots,
		CourseStudents: n.CourseToStudents,
		Seed:           7,
	})

	require.True(t, res.OK)
	a := res.Assignment[model.RawCourse("CS101")]
	b := res.Assignment[model.RawCourse("CS102")]
	require.NotEqual(t, a, b)
}

func TestColorFailsWhenCliqueExceedsActiveSlots(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "CS101", StudentID: "s1"},
		{CourseCode: "CS102", StudentID: "s1"},
		{CourseCode: "CS103", StudentID: "s1"},
	}
	g, n := buildGraph(t, records)
	slots := model.BaseSlots(2) // clique of 3 needs 3 colours

	res := Color(Input{
		Graph:          g,
		ActiveSlots:    slots,
		CourseStudents: n.CourseToStudents,
		Seed:           3,
	})

	require.False(t, res.OK)
}

func TestColorDeterministicGivenSeed(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "CS101", StudentID: "s1"},
		{CourseCode: "CS102", StudentID: "s1"},
		{CourseCode: "CS103", StudentID: "s2"},
		{CourseCode: "CS104", StudentID: "s2"},
	}
	g, n := buildGraph(t, records)
	slots := model.BaseSlots(4)

	r1 := Color(Input{Graph: g, ActiveSlots: slots, CourseStudents: n.CourseToStudents, Seed: 42})
	r2 := Color(Input{Graph: g, ActiveSlots: slots, CourseStudents: n.CourseToStudents, Seed: 42})
	require.Equal(t, r1.Assignment, r2.Assignment)
}

func TestColorRespectsFixedAssignment(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "CS101", StudentID: "s1"},
		{CourseCode: "CS102", StudentID: "s1"},
	}
	g, n := buildGraph(t, records)
	slots := model.BaseSlots(3)
	fixed := model.Assignment{model.RawCourse("CS101"): slots[2]}

	res := Color(Input{
		Graph:          g,
		ActiveSlots:    slots,
		CourseStudents: n.CourseToStudents,
		Fixed:          fixed,
		Seed:           1,
	})

	require.True(t, res.OK)
	require.Equal(t, slots[2], res.Assignment[model.RawCourse("CS101")])
	require.NotEqual(t, slots[2], res.Assignment[model.RawCourse("CS102")])
}

func TestColorAvoidsTripleWhenAlternativeExists(t *testing.T) {
	// Student s1 already has exams on day 0 and day 1 (via fixed courses).
	// A third course shared only with s1 should avoid day 2 if a non-triple
	// slot is available among the active slots.
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
	}
	g, n := buildGraph(t, records)
	slots := model.BaseSlots(5)
	fixed := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1],
	}

	res := Color(Input{
		Graph:          g,
		ActiveSlots:    slots,
		CourseStudents: n.CourseToStudents,
		Fixed:          fixed,
		Seed:           5,
	})

	require.True(t, res.OK)
	require.NotEqual(t, slots[2], res.Assignment[model.RawCourse("C")])
}
