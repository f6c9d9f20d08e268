package conflictgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
)

func TestBuildClique(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s1"},
	}
	n := enroll.Normalise(records, nil, nil)
	g := Build(n)

	require.Equal(t, 3, g.NumVertices())
	require.Equal(t, 3, g.NumEdges())
	for v := 0; v < 3; v++ {
		require.Equal(t, 2, g.Degree(v))
	}
}

func TestBuildNoSharedStudents(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s2"},
	}
	n := enroll.Normalise(records, nil, nil)
	g := Build(n)
	require.Equal(t, 0, g.NumEdges())
}

func TestDegreeAndMaxDegree(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "C", StudentID: "s2"},
		{CourseCode: "B", StudentID: "s2"},
	}
	n := enroll.Normalise(records, nil, nil)
	g := Build(n)
	// Path A-B-C: B conflicts with both A and C.
	require.Equal(t, 2, g.MaxDegree())
}
