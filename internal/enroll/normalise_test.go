package enroll

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func TestNormaliseBasic(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s2"},
		{CourseCode: "C", StudentID: "s2"},
	}
	n := Normalise(records, nil, nil)

	require.Len(t, n.CourseToStudents, 3)
	require.True(t, n.CourseToStudents[model.RawCourse("A")].Contains("s1"))
	require.Equal(t, 2, n.StudentToCourses["s2"].Size())
}

func TestNormaliseIgnoreList(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s1"},
	}
	n := Normalise(records, nil, map[string]bool{"B": true})
	require.Len(t, n.CourseToStudents, 1)
	require.Equal(t, 1, n.StudentToCourses["s1"].Size())
}

func TestNormaliseMergeGroups(t *testing.T) {
	records := []ingest.Record{
		{CourseCode: "A", StudentID: "s1"},
		{CourseCode: "B", StudentID: "s2"},
	}
	merges := model.NewMergeTable([][2]string{{"G1", "A"}, {"G1", "B"}})
	n := Normalise(records, merges, nil)

	require.Len(t, n.CourseToStudents, 1)
	for id, students := range n.CourseToStudents {
		require.True(t, id.IsMerged())
		require.Equal(t, 2, students.Size())
	}
}
