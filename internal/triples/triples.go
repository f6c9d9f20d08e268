// Package triples implements the order-aware "three exams in three
// consecutive days" detector shared by the DSATUR tie-break (spec.md §4.3),
// the repair local search (spec.md §4.5), and the exact finisher's
// objective (spec.md §4.6).
//
// A triple is a (student, (d, d+1, d+2)) pair where the student has at
// least one exam on each of those three day indices. "Consecutive" is
// always over the day-index axis induced by whichever slot order is active,
// never over raw slot ids — the same Assignment can have a different triple
// count under a different slot order.
package triples

import "github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"

// Violation is one (student, day-triple) pair contributing to the soft
// invariant spec.md §3 asks the engine to minimise.
type Violation struct {
	Student model.StudentID
	Days    [3]int
}

// DaysOf returns the sorted distinct day indices a set of slots touches,
// under the given slot->day map. Slots absent from the map (outside the
// active slot order) are ignored.
func DaysOf(slots []model.SlotID, slotToDay map[model.SlotID]int) []int {
	seen := map[int]bool{}
	for _, s := range slots {
		if d, ok := slotToDay[s]; ok {
			seen[d] = true
		}
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	// Small slices (typical enrolment load k <= 10); insertion sort keeps
	// this allocation-free relative to sort.Ints for the common sizes.
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && days[j-1] > days[j]; j-- {
			days[j-1], days[j] = days[j], days[j-1]
		}
	}
	return days
}

// Windows returns every (d, d+1, d+2) window present among a sorted list of
// distinct day indices.
func Windows(sortedDays []int, numDays int) [][3]int {
	present := make(map[int]bool, len(sortedDays))
	for _, d := range sortedDays {
		present[d] = true
	}
	var out [][3]int
	for d := 0; d <= numDays-3; d++ {
		if present[d] && present[d+1] && present[d+2] {
			out = append(out, [3]int{d, d + 1, d + 2})
		}
	}
	return out
}

// CountForStudent returns how many (d,d+1,d+2) windows a student's slot set
// touches under slotToDay.
func CountForStudent(slots []model.SlotID, slotToDay map[model.SlotID]int, numDays int) int {
	return len(Windows(DaysOf(slots, slotToDay), numDays))
}

// WouldCreate reports whether adding candidate to currentSlots (optionally
// first removing oldSlot, for a move/swap check) would produce at least one
// triple for the student who owns that slot set.
func WouldCreate(currentSlots []model.SlotID, candidate model.SlotID, oldSlot *model.SlotID, slotToDay map[model.SlotID]int, numDays int) bool {
	next := make([]model.SlotID, 0, len(currentSlots)+1)
	for _, s := range currentSlots {
		if oldSlot != nil && s == *oldSlot {
			continue
		}
		next = append(next, s)
	}
	next = append(next, candidate)
	return CountForStudent(next, slotToDay, numDays) > 0
}

// DetectAll scans every student's slot set and returns one Violation per
// (student, window) pair (spec.md §4.5).
func DetectAll(studentSlots map[model.StudentID][]model.SlotID, slotToDay map[model.SlotID]int, numDays int) []Violation {
	var out []Violation
	for stu, slots := range studentSlots {
		for _, w := range Windows(DaysOf(slots, slotToDay), numDays) {
			out = append(out, Violation{Student: stu, Days: w})
		}
	}
	return out
}
