package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVSource reads enrolment records from a file shaped like spec.md §6's
// relational feed: one row per (course_code, course_name, section,
// student_id, student_name, major) tuple, header first.
type CSVSource struct {
	Path string
}

var csvHeader = []string{"course_code", "course_name", "section", "student_id", "student_name", "major"}

// Records implements Source.
func (s CSVSource) Records() ([]Record, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("ingest: opening %s: %w", s.Path, err)
	}
	defer file.Close()
	return readCSV(file)
}

func readCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, want := range csvHeader {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("ingest: csv missing required column %q", want)
		}
	}

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{
			CourseCode:  NormaliseCourseCode(row[col["course_code"]]),
			CourseName:  row[col["course_name"]],
			Section:     row[col["section"]],
			StudentID:   row[col["student_id"]],
			StudentName: row[col["student_name"]],
			Major:       row[col["major"]],
		}
		if rec.CourseCode == "" || rec.StudentID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
