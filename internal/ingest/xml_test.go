package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadXMLRegularCampus(t *testing.T) {
	data := `<ROOT>
  <G_SEMESTER>
    <COURSE_CODE>CIT 1000</COURSE_CODE>
    <COURSE_NAME>Intro</COURSE_NAME>
    <SECTION>1</SECTION>
    <LIST_G_STUDENT_ID>
      <G_STUDENT_ID>
        <STUDENT_ID1>s1</STUDENT_ID1>
        <STUDENT_NAME_S>Alice</STUDENT_NAME_S>
        <MAJOR_DESC>CS</MAJOR_DESC>
      </G_STUDENT_ID>
    </LIST_G_STUDENT_ID>
  </G_SEMESTER>
</ROOT>`
	records, err := readXML(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "CIT1000", records[0].CourseCode)
}

func TestReadXMLVisitorCampusTruncatesAtParen(t *testing.T) {
	data := `<ROOT>
  <ACADEMIC_RECORDS>
    <STUDENT_ID>s2</STUDENT_ID>
    <STUDENT_NAME>Bob</STUDENT_NAME>
    <MAJOR_NAME>CS</MAJOR_NAME>
    <G_STUDENT_ID1>
      <COURSE_CODE>CIT1000(LAB A)</COURSE_CODE>
      <COURSE_NAME>Intro</COURSE_NAME>
      <SECTION>2</SECTION>
    </G_STUDENT_ID1>
  </ACADEMIC_RECORDS>
</ROOT>`
	records, err := readXML(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "CIT1000", records[0].CourseCode)
	require.Equal(t, "s2", records[0].StudentID)
}
