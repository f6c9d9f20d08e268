package finisher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func setup(records []ingest.Record) (*conflictgraph.Graph, *enroll.Normalised) {
	n := enroll.Normalise(records, model.NewMergeTable(nil), nil)
	return conflictgraph.Build(n), n
}

func TestRunImprovesWhenPossible(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
	}
	g, n := setup(records)
	slots := model.BaseSlots(5)
	current := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1],
		model.RawCourse("C"): slots[2],
	}

	res := Run(Input{
		Graph:            g,
		CourseStudents:   n.CourseToStudents,
		StudentToCourses: n.StudentToCourses,
		ActiveSlots:      slots,
		Current:          current,
		TimeLimit:        500 * time.Millisecond,
		Seed:             1,
	})

	require.Equal(t, 0, res.Triples)
	require.True(t, res.Improved)
}

func TestRunNeverWorsensWhenAlreadyOptimal(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
	}
	g, n := setup(records)
	slots := model.BaseSlots(2)
	current := model.Assignment{
		model.RawCourse("A"): slots[0],
		model.RawCourse("B"): slots[1],
	}

	res := Run(Input{
		Graph:            g,
		CourseStudents:   n.CourseToStudents,
		StudentToCourses: n.StudentToCourses,
		ActiveSlots:      slots,
		Current:          current,
		TimeLimit:        200 * time.Millisecond,
		Seed:             2,
	})

	require.False(t, res.Improved)
	require.Equal(t, current, res.Assignment)
}

func TestProbeReturnsBuiltinBackend(t *testing.T) {
	require.Equal(t, builtinBackend{}, Probe())
}
