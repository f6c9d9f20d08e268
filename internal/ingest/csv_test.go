package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	data := `course_code,course_name,section,student_id,student_name,major
CIT 1000,Intro,1,s1,Alice,CS
CIT1001,Algorithms,1,s1,Alice,CS
CIT1001,Algorithms,1,s2,Bob,CS
`
	records, err := readCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "CIT1000", records[0].CourseCode)
	require.Equal(t, "s1", records[0].StudentID)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := readCSV(strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)
}

func TestReadCSVEmpty(t *testing.T) {
	records, err := readCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, records)
}
