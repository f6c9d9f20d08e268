// Package coloring implements the DSATUR primary colourer of spec.md §4.3:
// saturation-degree-first greedy vertex colouring over the conflict graph,
// confined to the active slot set, with a triple-penalty tie-break among
// legal slots.
//
// The vertex-selection and colour-selection shape follows the structure of
// the teacher's merge-based colourer (internal/solver/coloring.go in the
// retrieved timetabling repo: a scan for the "best" vertex, then a scan for
// the "best" colour among legal candidates); the actual rules — saturation
// degree first, triple-penalty tie-break — are ported from the Python
// original's _dsatur_color (original_source/app/scheduler.py), which is the
// algorithm spec.md §4.3 specifies.
package coloring

import (
	"math/rand"

	"github.com/hashicorp/go-set/v3"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/triples"
)

// Result is the outcome of one DSATUR attempt.
type Result struct {
	Assignment model.Assignment
	OK         bool // false means "needs more colours" (spec.md §4.3)
}

// Input bundles what DSATUR needs beyond the graph itself.
type Input struct {
	Graph          *conflictgraph.Graph
	ActiveSlots    []model.SlotID // first K slots of the current order
	CourseStudents map[model.CourseID]*set.Set[model.StudentID]
	Fixed          model.Assignment // pre-pinned courses (spec.md §3 "Fixed-slot honour")
	Seed           int64

	// InitialOrder is the blended-score course ordering (SPEC_FULL.md §4,
	// engine.BlendedOrder) fed into the original's course_list before
	// DSATUR ran. Saturation/degree/random-rank decide almost every pick;
	// this only breaks the vanishingly rare case of an exact tie across
	// all three, so two restarts with the same seed never diverge on
	// floating-point coincidence alone.
	InitialOrder []model.CourseID
}

// Color runs DSATUR once, deterministic given Input.Seed. Degree is static
// (computed once from the graph); saturation grows as neighbours get
// coloured; ties break by degree then by a seeded pseudo-random rank so
// restarts are reproducible without consulting a process-global RNG
// (spec.md §5 "Determinism", §9 design note).
func Color(in Input) Result {
	g := in.Graph
	n := g.NumVertices()
	rnd := rand.New(rand.NewSource(in.Seed))

	slotToDay, _ := dayIndexMap(in.ActiveSlots)
	numDays := len(in.ActiveSlots)
	maxCandidates := len(in.ActiveSlots)

	assignment := make(map[int]model.SlotID, n) // dense vertex -> slot
	for course, slot := range in.Fixed {
		if v, ok := g.IndexOf(course); ok {
			assignment[v] = slot
		}
	}

	degree := make([]int, n)
	for v := 0; v < n; v++ {
		degree[v] = g.Degree(v)
	}

	uncoloredSet := make(map[int]bool, n)
	for v := 0; v < n; v++ {
		if _, done := assignment[v]; !done {
			uncoloredSet[v] = true
		}
	}

	neighborSlots := make([]map[model.SlotID]bool, n)
	for v := range uncoloredSet {
		seen := map[model.SlotID]bool{}
		for _, nb := range g.Neighbors(v) {
			if slot, done := assignment[nb]; done {
				seen[slot] = true
			}
		}
		neighborSlots[v] = seen
	}

	randRank := make([]float64, n)
	for v := 0; v < n; v++ {
		if uncoloredSet[v] {
			randRank[v] = rnd.Float64()
		}
	}

	initialRank := make([]int, n)
	for v := range initialRank {
		initialRank[v] = n
	}
	for rank, course := range in.InitialOrder {
		if v, ok := g.IndexOf(course); ok {
			initialRank[v] = rank
		}
	}

	// Dynamic per-student slot sets, seeded from any fixed assignments.
	studentSlots := map[model.StudentID][]model.SlotID{}
	for course, slot := range in.Fixed {
		if _, inActive := slotToDay[slot]; !inActive {
			continue
		}
		if stus, ok := in.CourseStudents[course]; ok {
			for _, stu := range stus.Slice() {
				studentSlots[stu] = append(studentSlots[stu], slot)
			}
		}
	}

	satDeg := func(v int) int { return len(neighborSlots[v]) }

	pickNext := func() int {
		best := -1
		for v := range uncoloredSet {
			if best == -1 {
				best = v
				continue
			}
			if better(v, best, satDeg, degree, randRank, initialRank) {
				best = v
			}
		}
		return best
	}

	for len(uncoloredSet) > 0 {
		v := pickNext()
		forbidden := neighborSlots[v]

		candidates := make([]model.SlotID, 0, maxCandidates)
		for _, s := range in.ActiveSlots {
			if !forbidden[s] {
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			return Result{OK: false}
		}

		enrolled := in.CourseStudents[g.CourseAt(v)]

		chosen := pickColor(candidates, in.ActiveSlots, enrolled, studentSlots, slotToDay, numDays)

		assignment[v] = chosen
		delete(uncoloredSet, v)

		for _, nb := range g.Neighbors(v) {
			if _, done := assignment[nb]; done {
				continue
			}
			if !neighborSlots[nb][chosen] {
				neighborSlots[nb][chosen] = true
			}
		}

		if enrolled != nil {
			for _, stu := range enrolled.Slice() {
				studentSlots[stu] = append(studentSlots[stu], chosen)
			}
		}
	}

	out := make(model.Assignment, n)
	for v, slot := range assignment {
		out[g.CourseAt(v)] = slot
	}
	return Result{Assignment: out, OK: true}
}

// better reports whether candidate v should be preferred over the current
// best pick: greater saturation, then greater (static) degree, then greater
// random rank (spec.md §4.3 "Selection rule").
func better(v, best int, satDeg func(int) int, degree []int, randRank []float64, initialRank []int) bool {
	sv, sb := satDeg(v), satDeg(best)
	if sv != sb {
		return sv > sb
	}
	if degree[v] != degree[best] {
		return degree[v] > degree[best]
	}
	if randRank[v] != randRank[best] {
		return randRank[v] > randRank[best]
	}
	return initialRank[v] < initialRank[best]
}

// pickColor ranks legal candidate slots by (triple-penalty ascending,
// order-position ascending) and returns the minimum (spec.md §4.3).
func pickColor(candidates, order []model.SlotID, enrolled *set.Set[model.StudentID], studentSlots map[model.StudentID][]model.SlotID, slotToDay map[model.SlotID]int, numDays int) model.SlotID {
	position := make(map[model.SlotID]int, len(order))
	for i, s := range order {
		position[s] = i
	}

	penalty := func(slot model.SlotID) int {
		if enrolled == nil {
			return 0
		}
		for _, stu := range enrolled.Slice() {
			if triples.WouldCreate(studentSlots[stu], slot, nil, slotToDay, numDays) {
				return 1
			}
		}
		return 0
	}

	best := candidates[0]
	bestKey := [2]int{penalty(best), position[best]}
	for _, c := range candidates[1:] {
		key := [2]int{penalty(c), position[c]}
		if key[0] < bestKey[0] || (key[0] == bestKey[0] && key[1] < bestKey[1]) {
			best = c
			bestKey = key
		}
	}
	return best
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
