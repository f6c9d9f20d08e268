// Package repair implements the triple-repair local search of spec.md §4.5:
// given a legal colouring that still has "three exams in three consecutive
// days" violations, try a bounded sequence of single-course Move and
// pairwise Swap operators that strictly reduce the violation count without
// ever introducing a new one.
//
// This is ported closely from original_source/app/scheduler.py's
// repair_3_in_3 and its helpers (_compute_student_slots_map,
// _detect_violations_order_aware, _slot_load, _course_violation_weight,
// _candidate_slots_rank, _try_move_course, _swap_would_be_valid,
// _try_swap_course). The Python original iterates Python sets and dicts
// whose traversal order is an accident of hash seeding; every place that
// matters for reproducibility here instead sorts explicitly by a stable key
// (course code, student id) before iterating, which is how the rest of this
// module satisfies spec.md §5's determinism requirement.
package repair

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/triples"
)

// windowCacheSize bounds the per-run LRU memoizing a student's triple
// windows by their slot-set fingerprint. A single accepted move or swap
// changes the slot sets of only the students enrolled in the one or two
// courses it relocates, so almost every other student's slot set — and
// therefore their window computation — is unchanged between passes; recomputing it from scratch every pass (as the Python
// original's repair_3_in_3 does) is the hot loop this cache removes.
const windowCacheSize = 4096

// Input bundles what the repair pass needs beyond the current assignment.
type Input struct {
	Graph            *conflictgraph.Graph
	CourseStudents   map[model.CourseID]*set.Set[model.StudentID]
	StudentToCourses map[model.StudentID]*set.Set[model.CourseID]
	ActiveSlots      []model.SlotID // the day order currently in force

	MaxPasses   int  // default 10, spec.md §4.5
	MaxMoves    int  // default 2000, spec.md §4.5
	EnableSwaps bool // swaps are tried only when true; the driver sets it
}

// Result is the outcome of a repair run.
type Result struct {
	Assignment          model.Assignment
	MovesDone           int
	Passes              int
	RemainingViolations int
}

const (
	defaultMaxPasses = 10
	defaultMaxMoves  = 2000
)

// Run executes the repair loop starting from assignment, returning an
// improved (never worsened) assignment.
func Run(assignment model.Assignment, in Input) Result {
	maxPasses := in.MaxPasses
	if maxPasses <= 0 {
		maxPasses = defaultMaxPasses
	}
	maxMoves := in.MaxMoves
	if maxMoves <= 0 {
		maxMoves = defaultMaxMoves
	}

	current := assignment.Clone()
	slotToDay, dayToSlot := dayIndexMap(in.ActiveSlots)
	numDays := len(in.ActiveSlots)

	windowCache, _ := lru.New[string, [][3]int](windowCacheSize)

	studentsOf := func(c model.CourseID) []model.StudentID {
		s, ok := in.CourseStudents[c]
		if !ok {
			return nil
		}
		return s.Slice()
	}

	movesDone := 0
	passes := 0
	remaining := 0

	for passes < maxPasses {
		passes++
		studentSlots, studentCoursesBySlot := computeStudentSlots(current, in.StudentToCourses)
		violations := detectViolationsSorted(studentSlots, slotToDay, numDays, windowCache)
		remaining = len(violations)
		if remaining == 0 {
			break
		}

		changed := false
		processedPairs := map[[2]any]bool{}
		movedThisPass := map[model.CourseID]bool{}

		for _, v := range violations {
			key := [2]any{v.Student, v.Days[0]}
			if processedPairs[key] {
				continue
			}
			processedPairs[key] = true

			candidates := rankCandidates(v, studentCoursesBySlot, in.CourseStudents, studentSlots, slotToDay, dayToSlot, numDays, in.ActiveSlots)

			for _, cand := range candidates {
				if movedThisPass[cand.course] {
					continue
				}

				if newSlot, ok := tryMoveCourse(cand.course, cand.slot, current, in.Graph, in.CourseStudents, studentSlots, in.ActiveSlots, slotToDay, numDays, v); ok {
					applyMove(current, studentSlots, studentsOf, cand.course, cand.slot, newSlot)
					movedThisPass[cand.course] = true
					movesDone++
					changed = true
					break
				}

				if in.EnableSwaps {
					if partner, tgtSlot, ok := trySwapCourse(cand.course, cand.slot, current, in.Graph, in.CourseStudents, studentSlots, in.ActiveSlots, slotToDay, numDays, v); ok {
						applySwap(current, studentSlots, studentsOf, cand.course, cand.slot, partner, tgtSlot)
						movedThisPass[cand.course] = true
						movedThisPass[partner] = true
						movesDone++
						changed = true
						break
					}
				}
			}

			if movesDone >= maxMoves {
				break
			}
		}

		if !changed || movesDone >= maxMoves {
			break
		}
	}

	studentSlots, _ := computeStudentSlots(current, in.StudentToCourses)
	remaining = len(detectViolationsSorted(studentSlots, slotToDay, numDays, windowCache))

	return Result{Assignment: current, MovesDone: movesDone, Passes: passes, RemainingViolations: remaining}
}

func dayIndexMap(order []model.SlotID) (map[model.SlotID]int, []model.SlotID) {
	slotToDay := make(map[model.SlotID]int, len(order))
	dayToSlot := make([]model.SlotID, len(order))
	for d, s := range order {
		slotToDay[s] = d
		dayToSlot[d] = s
	}
	return slotToDay, dayToSlot
}

// computeStudentSlots mirrors _compute_student_slots_map: per-student slot
// sets and, within each, which courses sit in each slot. Each student's
// course list is sorted by course code first so the per-slot course lists
// this builds are in a deterministic order (spec.md §5).
func computeStudentSlots(assignment model.Assignment, studentToCourses map[model.StudentID]*set.Set[model.CourseID]) (map[model.StudentID][]model.SlotID, map[model.StudentID]map[model.SlotID][]model.CourseID) {
	studentSlots := map[model.StudentID][]model.SlotID{}
	studentCoursesBySlot := map[model.StudentID]map[model.SlotID][]model.CourseID{}

	students := make([]model.StudentID, 0, len(studentToCourses))
	for stu := range studentToCourses {
		students = append(students, stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i] < students[j] })

	for _, stu := range students {
		courses := studentToCourses[stu].Slice()
		sort.Slice(courses, func(i, j int) bool { return courses[i].String() < courses[j].String() })
		for _, c := range courses {
			slot, ok := assignment[c]
			if !ok {
				continue
			}
			studentSlots[stu] = append(studentSlots[stu], slot)
			if studentCoursesBySlot[stu] == nil {
				studentCoursesBySlot[stu] = map[model.SlotID][]model.CourseID{}
			}
			studentCoursesBySlot[stu][slot] = append(studentCoursesBySlot[stu][slot], c)
		}
	}
	return studentSlots, studentCoursesBySlot
}

// detectViolationsSorted wraps triples.DetectAll with a deterministic
// (student, days) order, since Go map iteration (like the Python original's
// set/dict iteration) is not itself ordered. Each student's window set is
// memoized in windowCache by a fingerprint of their (sorted) slot set, so a
// student untouched by the previous pass's move/swap is not re-scanned.
func detectViolationsSorted(studentSlots map[model.StudentID][]model.SlotID, slotToDay map[model.SlotID]int, numDays int, windowCache *lru.Cache[string, [][3]int]) []triples.Violation {
	students := make([]model.StudentID, 0, len(studentSlots))
	for stu := range studentSlots {
		students = append(students, stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i] < students[j] })

	var out []triples.Violation
	for _, stu := range students {
		windows := cachedWindows(studentSlots[stu], slotToDay, numDays, windowCache)
		for _, w := range windows {
			out = append(out, triples.Violation{Student: stu, Days: w})
		}
	}
	return out
}

// cachedWindows returns triples.Windows(triples.DaysOf(slots, slotToDay),
// numDays), memoized by a fingerprint of the slot set.
func cachedWindows(slots []model.SlotID, slotToDay map[model.SlotID]int, numDays int, cache *lru.Cache[string, [][3]int]) [][3]int {
	days := triples.DaysOf(slots, slotToDay)
	if cache == nil {
		return triples.Windows(days, numDays)
	}
	key := fingerprint(days)
	if cached, ok := cache.Get(key); ok {
		return cached
	}
	windows := triples.Windows(days, numDays)
	cache.Add(key, windows)
	return windows
}

func fingerprint(sortedDays []int) string {
	var b strings.Builder
	for i, d := range sortedDays {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

func slotLoad(assignment model.Assignment) map[model.SlotID]int {
	loads := map[model.SlotID]int{}
	for _, slot := range assignment {
		loads[slot]++
	}
	return loads
}

// courseViolationWeight mirrors _course_violation_weight: how many
// (student, triple) occurrences have this course sitting in one of the
// triple's three slots.
func courseViolationWeight(course model.CourseID, studentSlots map[model.StudentID][]model.SlotID, studentCoursesBySlot map[model.StudentID]map[model.SlotID][]model.CourseID, slotToDay map[model.SlotID]int, dayToSlot []model.SlotID, numDays int) int {
	count := 0
	for stu, slots := range studentSlots {
		windows := triples.Windows(triples.DaysOf(slots, slotToDay), numDays)
		for _, w := range windows {
			s0, s1, s2 := dayToSlot[w[0]], dayToSlot[w[1]], dayToSlot[w[2]]
			if containsCourse(studentCoursesBySlot[stu][s0], course) ||
				containsCourse(studentCoursesBySlot[stu][s1], course) ||
				containsCourse(studentCoursesBySlot[stu][s2], course) {
				count++
			}
		}
	}
	return count
}

func containsCourse(list []model.CourseID, c model.CourseID) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

// candidateSlotsRank mirrors _candidate_slots_rank: legal target slots
// ranked by (avoid-soft penalty ascending, current load ascending,
// distance from the current slot descending), stable on ties.
func candidateSlotsRank(preferred []model.SlotID, loads map[model.SlotID]int, currentSlot model.SlotID, avoidSoft map[model.SlotID]bool) []model.SlotID {
	out := make([]model.SlotID, len(preferred))
	copy(out, preferred)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		pa, pb := 0, 0
		if avoidSoft[a] {
			pa = 1
		}
		if avoidSoft[b] {
			pb = 1
		}
		if pa != pb {
			return pa < pb
		}
		if loads[a] != loads[b] {
			return loads[a] < loads[b]
		}
		return -absInt(int(a)-int(currentSlot)) < -absInt(int(b)-int(currentSlot))
	})
	return out
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// avoidSoftSlots mirrors the target_triplet handling shared by
// _try_move_course and _try_swap_course: a soft exclusion zone around the
// other two days of the triple being repaired, when exactly two of its
// three days are not the course's current day.
func avoidSoftSlots(v triples.Violation, currentSlot model.SlotID, slotToDay map[model.SlotID]int, dayToSlot []model.SlotID, numDays int) map[model.SlotID]bool {
	avoid := map[model.SlotID]bool{}
	var others []int
	for _, d := range v.Days {
		if dayToSlot[d] != currentSlot {
			others = append(others, d)
		}
	}
	if len(others) != 2 {
		return avoid
	}
	a, b := others[0], others[1]
	if a > b {
		a, b = b, a
	}
	for _, x := range []int{a - 1, a, a + 1, b - 1, b, b + 1} {
		if x >= 0 && x < numDays {
			avoid[dayToSlot[x]] = true
		}
	}
	return avoid
}
