// Package enroll implements the enrolment normaliser of spec.md §4.1: it
// loads the course<->student bipartite relation, collapses merge-group
// equivalence classes, and exposes the courses actually in play for a run.
package enroll

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

// Normalised is the result of normalise(enrolment, merges): the
// course->students and student->courses relations after merge-group
// collapsing, plus enough bookkeeping to expand results back out later
// (spec.md §4.1).
type Normalised struct {
	CourseToStudents map[model.CourseID]*set.Set[model.StudentID]
	StudentToCourses map[model.StudentID]*set.Set[model.CourseID]
	CourseInfo       map[model.CourseID]model.Course
	Merges           *model.MergeTable

	// StudentCourseNames lets callers rebuild a named itinerary after the
	// merge groups have been expanded back out (spec.md §4.7 step 7/8).
	StudentCourseNames map[model.StudentID]map[string]model.Course
}

// Normalise builds the normalised enrolment relation from raw ingest
// records, an optional merge table, and an ignore list of course codes that
// must never be scheduled (spec.md §4.1, §6).
func Normalise(records []ingest.Record, merges *model.MergeTable, ignore map[string]bool) *Normalised {
	if merges == nil {
		merges = model.NewMergeTable(nil)
	}

	n := &Normalised{
		CourseToStudents:   map[model.CourseID]*set.Set[model.StudentID]{},
		StudentToCourses:   map[model.StudentID]*set.Set[model.CourseID]{},
		CourseInfo:         map[model.CourseID]model.Course{},
		Merges:             merges,
		StudentCourseNames: map[model.StudentID]map[string]model.Course{},
	}

	for _, rec := range records {
		if ignore[rec.CourseCode] {
			continue
		}
		stu := model.StudentID(rec.StudentID)
		courseID := identityOf(rec.CourseCode, merges)

		if n.StudentCourseNames[stu] == nil {
			n.StudentCourseNames[stu] = map[string]model.Course{}
		}
		n.StudentCourseNames[stu][rec.CourseCode] = model.Course{Code: rec.CourseCode, Name: rec.CourseName}

		if _, ok := n.CourseInfo[courseID]; !ok {
			name := rec.CourseName
			if courseID.IsMerged() {
				name = "(merged) " + courseID.String()
			}
			n.CourseInfo[courseID] = model.Course{Code: courseID.String(), Name: name}
		}

		if n.CourseToStudents[courseID] == nil {
			n.CourseToStudents[courseID] = set.New[model.StudentID](0)
		}
		n.CourseToStudents[courseID].Insert(stu)

		if n.StudentToCourses[stu] == nil {
			n.StudentToCourses[stu] = set.New[model.CourseID](0)
		}
		n.StudentToCourses[stu].Insert(courseID)
	}

	return n
}

// identityOf rewrites a raw course code to its group identity if it belongs
// to a MergeGroup, else returns a raw identity (spec.md §4.1).
func identityOf(courseCode string, merges *model.MergeTable) model.CourseID {
	if g, ok := merges.GroupOf(courseCode); ok {
		return model.MergedCourse(g)
	}
	return model.RawCourse(courseCode)
}

// Courses returns the (possibly merged) course identities in a deterministic
// order, for callers that need a stable iteration order across runs.
func (n *Normalised) Courses() []model.CourseID {
	out := make([]model.CourseID, 0, len(n.CourseToStudents))
	for c := range n.CourseToStudents {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
