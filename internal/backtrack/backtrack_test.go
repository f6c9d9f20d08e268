package backtrack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func buildGraph(records []ingest.Record) *conflictgraph.Graph {
	n := enroll.Normalise(records, model.NewMergeTable(nil), nil)
	return conflictgraph.Build(n)
}

func TestSearchFindsLegalColoring(t *testing.T) {
	g := buildGraph([]ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
	})
	res := Search(Input{
		Graph:       g,
		ActiveSlots: model.BaseSlots(3),
	})
	require.True(t, res.OK)
	require.Len(t, res.Assignment, 3)
	require.NotEqual(t, res.Assignment[model.RawCourse("A")], res.Assignment[model.RawCourse("B")])
	require.NotEqual(t, res.Assignment[model.RawCourse("B")], res.Assignment[model.RawCourse("C")])
	require.NotEqual(t, res.Assignment[model.RawCourse("A")], res.Assignment[model.RawCourse("C")])
}

func TestSearchFailsWhenInsufficientSlots(t *testing.T) {
	g := buildGraph([]ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
	})
	res := Search(Input{
		Graph:       g,
		ActiveSlots: model.BaseSlots(2),
		Limits:      Limits{MaxDuration: time.Second, MaxCalls: 1000},
	})
	require.False(t, res.OK)
}

func TestSearchHonoursFixedAssignment(t *testing.T) {
	g := buildGraph([]ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
	})
	slots := model.BaseSlots(2)
	fixed := model.Assignment{model.RawCourse("A"): slots[1]}

	res := Search(Input{
		Graph:       g,
		ActiveSlots: slots,
		Fixed:       fixed,
	})
	require.True(t, res.OK)
	require.Equal(t, slots[1], res.Assignment[model.RawCourse("A")])
	require.Equal(t, slots[0], res.Assignment[model.RawCourse("B")])
}

func TestSearchRespectsCallBudget(t *testing.T) {
	g := buildGraph([]ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
		{CourseCode: "D", StudentID: "s1"},
	})
	res := Search(Input{
		Graph:       g,
		ActiveSlots: model.BaseSlots(3), // infeasible: clique of 4 needs 4 colours
		Limits:      Limits{MaxDuration: time.Minute, MaxCalls: 5},
	})
	require.False(t, res.OK)
	require.LessOrEqual(t, res.Calls, 6)
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	require.Equal(t, 10*time.Second, l.MaxDuration)
	require.Equal(t, 2_000_000, l.MaxCalls)
}
