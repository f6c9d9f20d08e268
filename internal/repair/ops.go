package repair

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/triples"
)

// moveCandidate is one (course, its current slot) pair worth trying to move
// or swap away from, for the student+triple currently being repaired.
type moveCandidate struct {
	course model.CourseID
	slot   model.SlotID
}

// rankCandidates mirrors repair_3_in_3's inner rank_candidates: the three
// slots of the triple (middle, left, right) each contribute their courses,
// and the combined list is sorted by (enrolment size ascending, violation
// weight descending).
func rankCandidates(v triples.Violation, studentCoursesBySlot map[model.StudentID]map[model.SlotID][]model.CourseID, courseStudents map[model.CourseID]*set.Set[model.StudentID], studentSlots map[model.StudentID][]model.SlotID, slotToDay map[model.SlotID]int, dayToSlot []model.SlotID, numDays int, activeSlots []model.SlotID) []moveCandidate {
	sMid := dayToSlot[v.Days[1]]
	sLeft := dayToSlot[v.Days[0]]
	sRight := dayToSlot[v.Days[2]]

	byStudent := studentCoursesBySlot[v.Student]

	var cands []moveCandidate
	for _, c := range byStudent[sMid] {
		cands = append(cands, moveCandidate{c, sMid})
	}
	for _, c := range byStudent[sLeft] {
		cands = append(cands, moveCandidate{c, sLeft})
	}
	for _, c := range byStudent[sRight] {
		cands = append(cands, moveCandidate{c, sRight})
	}

	enrolmentSize := func(c model.CourseID) int {
		if s, ok := courseStudents[c]; ok {
			return s.Size()
		}
		return 0
	}

	sort.SliceStable(cands, func(i, j int) bool {
		ei, ej := enrolmentSize(cands[i].course), enrolmentSize(cands[j].course)
		if ei != ej {
			return ei < ej
		}
		wi := courseViolationWeight(cands[i].course, studentSlots, studentCoursesBySlot, slotToDay, dayToSlot, numDays)
		wj := courseViolationWeight(cands[j].course, studentSlots, studentCoursesBySlot, slotToDay, dayToSlot, numDays)
		return wi > wj
	})
	return cands
}

// tryMoveCourse mirrors _try_move_course: find a legal target slot for
// course (currently at currentSlot) that conflicts with none of its
// neighbours' slots and leaves no enrolled student with any triple at all.
// A target is rejected even when the only triple an enrolled student would
// have is one the move does not touch.
func tryMoveCourse(course model.CourseID, currentSlot model.SlotID, assignment model.Assignment, g *conflictgraph.Graph, courseStudents map[model.CourseID]*set.Set[model.StudentID], studentSlots map[model.StudentID][]model.SlotID, activeSlots []model.SlotID, slotToDay map[model.SlotID]int, numDays int, v triples.Violation) (model.SlotID, bool) {
	neighborSlots := map[model.SlotID]bool{}
	if idx, ok := g.IndexOf(course); ok {
		for _, nb := range g.Neighbors(idx) {
			if s, ok := assignment[g.CourseAt(nb)]; ok {
				neighborSlots[s] = true
			}
		}
	}

	loads := slotLoad(assignment)
	avoidSoft := avoidSoftSlots(v, currentSlot, slotToDay, activeSlots, numDays)

	var candidates []model.SlotID
	for _, s := range activeSlots {
		if s != currentSlot && !neighborSlots[s] {
			candidates = append(candidates, s)
		}
	}
	candidates = candidateSlotsRank(candidates, loads, currentSlot, avoidSoft)

	enrolled := studentsOf(courseStudents, course)

	for _, cand := range candidates {
		ok := true
		for _, stu := range enrolled {
			if triples.WouldCreate(studentSlots[stu], cand, &currentSlot, slotToDay, numDays) {
				ok = false
				break
			}
		}
		if ok {
			return cand, true
		}
	}
	return 0, false
}

// swapWouldBeValid mirrors _swap_would_be_valid.
func swapWouldBeValid(courseA model.CourseID, slotA model.SlotID, courseB model.CourseID, slotB model.SlotID, assignment model.Assignment, g *conflictgraph.Graph, courseStudents map[model.CourseID]*set.Set[model.StudentID], studentSlots map[model.StudentID][]model.SlotID, slotToDay map[model.SlotID]int, numDays int) bool {
	if idx, ok := g.IndexOf(courseA); ok {
		for _, nb := range g.Neighbors(idx) {
			if s, ok := assignment[g.CourseAt(nb)]; ok && s == slotB {
				return false
			}
		}
	}
	if idx, ok := g.IndexOf(courseB); ok {
		for _, nb := range g.Neighbors(idx) {
			if s, ok := assignment[g.CourseAt(nb)]; ok && s == slotA {
				return false
			}
		}
	}

	for _, stu := range studentsOf(courseStudents, courseA) {
		if triples.WouldCreate(studentSlots[stu], slotB, &slotA, slotToDay, numDays) {
			return false
		}
	}
	for _, stu := range studentsOf(courseStudents, courseB) {
		if triples.WouldCreate(studentSlots[stu], slotA, &slotB, slotToDay, numDays) {
			return false
		}
	}
	return true
}

// trySwapCourse mirrors _try_swap_course: look for a partner course
// occupying some other active slot that can trade places with course
// without leaving any of either course's students with a triple (an
// untouched triple elsewhere in a student's schedule also rules a swap out).
func trySwapCourse(course model.CourseID, currentSlot model.SlotID, assignment model.Assignment, g *conflictgraph.Graph, courseStudents map[model.CourseID]*set.Set[model.StudentID], studentSlots map[model.StudentID][]model.SlotID, activeSlots []model.SlotID, slotToDay map[model.SlotID]int, numDays int, v triples.Violation) (model.CourseID, model.SlotID, bool) {
	loads := slotLoad(assignment)
	avoidSoft := avoidSoftSlots(v, currentSlot, slotToDay, activeSlots, numDays)

	var occupied []model.SlotID
	for _, s := range activeSlots {
		if s != currentSlot {
			if _, has := loads[s]; has {
				occupied = append(occupied, s)
			}
		}
	}
	occupied = candidateSlotsRank(occupied, loads, currentSlot, avoidSoft)

	slotToCourses := map[model.SlotID][]model.CourseID{}
	var allCourses []model.CourseID
	for c := range assignment {
		allCourses = append(allCourses, c)
	}
	sort.Slice(allCourses, func(i, j int) bool { return allCourses[i].String() < allCourses[j].String() })
	for _, c := range allCourses {
		slotToCourses[assignment[c]] = append(slotToCourses[assignment[c]], c)
	}

	partnerWeight := func(c model.CourseID) (int, int) {
		students := studentsOf(courseStudents, c)
		cnt := 0
		for _, stu := range students {
			if len(triples.Windows(triples.DaysOf(studentSlots[stu], slotToDay), numDays)) > 0 {
				cnt++
			}
		}
		return len(students), cnt
	}

	for _, tgtSlot := range occupied {
		partners := append([]model.CourseID(nil), slotToCourses[tgtSlot]...)
		sort.SliceStable(partners, func(i, j int) bool {
			wi1, wi2 := partnerWeight(partners[i])
			wj1, wj2 := partnerWeight(partners[j])
			if wi1 != wj1 {
				return wi1 < wj1
			}
			return wi2 < wj2
		})
		for _, partner := range partners {
			if partner == course {
				continue
			}
			if !swapWouldBeValid(course, currentSlot, partner, tgtSlot, assignment, g, courseStudents, studentSlots, slotToDay, numDays) {
				continue
			}
			return partner, tgtSlot, true
		}
	}
	return model.CourseID{}, 0, false
}

func applyMove(assignment model.Assignment, studentSlots map[model.StudentID][]model.SlotID, studentsOfFn func(model.CourseID) []model.StudentID, course model.CourseID, oldSlot, newSlot model.SlotID) {
	assignment[course] = newSlot
	for _, stu := range studentsOfFn(course) {
		studentSlots[stu] = replaceSlot(studentSlots[stu], oldSlot, newSlot)
	}
}

func applySwap(assignment model.Assignment, studentSlots map[model.StudentID][]model.SlotID, studentsOfFn func(model.CourseID) []model.StudentID, course model.CourseID, courseSlot model.SlotID, partner model.CourseID, partnerSlot model.SlotID) {
	assignment[course] = partnerSlot
	assignment[partner] = courseSlot
	for _, stu := range studentsOfFn(course) {
		studentSlots[stu] = replaceSlot(studentSlots[stu], courseSlot, partnerSlot)
	}
	for _, stu := range studentsOfFn(partner) {
		studentSlots[stu] = replaceSlot(studentSlots[stu], partnerSlot, courseSlot)
	}
}

func replaceSlot(slots []model.SlotID, old, replacement model.SlotID) []model.SlotID {
	removed := false
	out := make([]model.SlotID, 0, len(slots)+1)
	for _, s := range slots {
		if !removed && s == old {
			removed = true
			continue
		}
		out = append(out, s)
	}
	out = append(out, replacement)
	return out
}

func studentsOf(courseStudents map[model.CourseID]*set.Set[model.StudentID], c model.CourseID) []model.StudentID {
	s, ok := courseStudents[c]
	if !ok {
		return nil
	}
	return s.Slice()
}

