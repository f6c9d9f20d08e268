// Package model holds the data model of spec.md §3: courses, students,
// merge groups, slot ids, assignments and run records.
package model

// CourseID identifies a schedulable unit after merge-group collapsing.
//
// The source repo kept raw course codes and merged group ids in the same
// stringly-typed map key, which let a "CIT1000" course and a "G-7" merge
// group silently collide if a feed ever produced that code. CourseID is a
// tagged sum instead: a course is either Raw(code) or Merged(group id), and
// both compare and hash the same way.
type CourseID struct {
	code    string
	merged  bool
}

// RawCourse builds a CourseID for a course that was not folded into a merge group.
func RawCourse(code string) CourseID { return CourseID{code: code} }

// MergedCourse builds a CourseID for a merge-group identity.
func MergedCourse(groupID string) CourseID { return CourseID{code: groupID, merged: true} }

// String returns the underlying code or group id.
func (c CourseID) String() string { return c.code }

// IsMerged reports whether this identity stands for a MergeGroup rather than a raw course code.
func (c CourseID) IsMerged() bool { return c.merged }

// Course is a unit of examination (spec.md §3).
type Course struct {
	Code string // stable course code, as it appears post-normalisation
	Name string
}

// StudentID identifies an examinee.
type StudentID string

// Student is an examinee (spec.md §3).
type Student struct {
	ID   StudentID
	Name string
}
