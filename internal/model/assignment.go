package model

// Assignment maps a CourseID to the SlotID it was scheduled into. It is
// partial while the solver is searching and total once a run completes
// (spec.md §3). The engine owns the only live Assignment for a run; callers
// receive copies.
type Assignment map[CourseID]SlotID

// Clone returns an independent copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Courses returns the assigned course identities in no particular order.
func (a Assignment) Courses() []CourseID {
	out := make([]CourseID, 0, len(a))
	for c := range a {
		out = append(out, c)
	}
	return out
}

// Expand rewrites a merge-collapsed assignment back to one entry per member
// course (spec.md §4.7 step 7, "round-trip" property in §8).
func (a Assignment) Expand(mt *MergeTable) Assignment {
	out := make(Assignment, len(a))
	for id, slot := range a {
		if !id.IsMerged() {
			out[id] = slot
			continue
		}
		for _, member := range mt.Members(id.String()) {
			out[RawCourse(member)] = slot
		}
	}
	return out
}

// ItineraryEntry is one scheduled exam on a student's itinerary.
type ItineraryEntry struct {
	Course   Course
	Slot     SlotID
	DayIndex int
}

// Itinerary builds the per-student schedule (spec.md §6 "Per-student
// itinerary") from an expanded Assignment and the enrolment relation.
func Itinerary(expanded Assignment, studentToCourses map[StudentID]map[string]Course) map[StudentID][]ItineraryEntry {
	out := make(map[StudentID][]ItineraryEntry, len(studentToCourses))
	for stu, courses := range studentToCourses {
		entries := make([]ItineraryEntry, 0, len(courses))
		for code, course := range courses {
			slot, ok := expanded[RawCourse(code)]
			if !ok {
				continue
			}
			entries = append(entries, ItineraryEntry{Course: course, Slot: slot, DayIndex: slot.Day()})
		}
		out[stu] = entries
	}
	return out
}
