package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/audit"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/backtrack"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/coloring"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/conflictgraph"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/finisher"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/repair"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/schederr"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/sloteng"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/triples"
)

// Driver runs the 8-step pipeline of spec.md §4.7:
//  1. normalise enrolment and collapse merge groups
//  2. build the conflict graph
//  3. compute a degree lower bound on the number of days
//  4. restart DSATUR (falling back to bounded backtracking) over slot orders x seeds
//  5. shrink the day count cautiously while triples stay within tolerance
//  6. run the triple-repair local search
//  7. run the optional finishing stage
//  8. expand merge groups back out and build the per-student itinerary
//
// Grounded on original_source/app/scheduler.py's schedule_exams_from_db,
// which runs this exact sequence end to end.
type Driver struct {
	Log     *zap.Logger
	Metrics *Metrics
	Solver  SolverConfig
}

// NewDriver builds a Driver from loaded config and ambient dependencies.
func NewDriver(cfg *Config, log *zap.Logger, metrics *Metrics) *Driver {
	return &Driver{Log: log, Metrics: metrics, Solver: cfg.Solver}
}

// RunInput is everything one scheduling run needs.
type RunInput struct {
	Records       []ingest.Record
	Merges        *model.MergeTable
	Ignore        map[string]bool
	FixedSlots    map[string]model.SlotID // raw course code -> pinned slot
	StartDate     time.Time
	NumDays       int
	SourceFileIDs []string
}

// RunOutput is the result of a completed scheduling run.
type RunOutput struct {
	Run       *model.Run
	Itinerary map[model.StudentID][]model.ItineraryEntry
}

// Schedule executes the full pipeline, returning an InfeasibleSchedule
// schederr.Error if no restart produces a legal colouring at all.
func (d *Driver) Schedule(in RunInput) (*RunOutput, error) {
	start := time.Now()
	if d.Metrics != nil {
		d.Metrics.RunsTotal.Inc()
	}

	if err := validateFixedSlots(in.FixedSlots, in.Ignore); err != nil {
		return nil, err
	}

	n := enroll.Normalise(in.Records, in.Merges, in.Ignore)
	graph := conflictgraph.Build(n)

	if err := validateFixedConflicts(in.FixedSlots, n.Merges, graph); err != nil {
		return nil, err
	}

	maxDegree := graph.MaxDegree()
	lowerBound := in.NumDays
	if maxDegree+1 < lowerBound {
		lowerBound = maxDegree + 1
	}
	if d.Log != nil {
		d.Log.Info("conflict graph built",
			zap.Int("courses", graph.NumVertices()),
			zap.Int("edges", graph.NumEdges()),
			zap.Int("max_degree", maxDegree),
			zap.Int("lower_bound_days", lowerBound),
		)
	}

	fixed := resolveFixed(in.FixedSlots, n.Merges)

	restartSeeds := d.Solver.RestartSeeds
	if restartSeeds <= 0 {
		restartSeeds = 5
	}

	orders := sloteng.Ordered(in.NumDays)

	var bestAssignment model.Assignment
	var bestOrderIdx, bestSeed, bestTriples int
	found := false

	for orderIdx, o := range orders {
		for seed := 0; seed < restartSeeds; seed++ {
			if d.Metrics != nil {
				d.Metrics.RestartsAttempted.Inc()
			}
			candidate, ok := d.attempt(graph, n.CourseToStudents, o.Slots, fixed, int64(seed))
			if !ok {
				continue
			}
			t := countTriples(candidate, n.StudentToCourses, o.Slots)
			if !found || t < bestTriples {
				found = true
				bestTriples = t
				bestAssignment = candidate
				bestOrderIdx = orderIdx
				bestSeed = seed
				if bestTriples == 0 {
					break
				}
			}
		}
		if found && bestTriples == 0 {
			break
		}
	}

	if !found {
		return nil, schederr.Infeasible("no restart produced a legal colouring within the requested day count")
	}

	chosenOrder := orders[bestOrderIdx].Slots
	bestDays := in.NumDays

	shrinkTolerance := d.Solver.ShrinkTolerance
	if shrinkTolerance <= 0 {
		shrinkTolerance = 5
	}
	for dayLimit := in.NumDays - 1; dayLimit >= 1; dayLimit-- {
		candidate, ok := d.attempt(graph, n.CourseToStudents, chosenOrder[:dayLimit], fixed, int64(bestSeed))
		if !ok {
			break
		}
		t := countTriples(candidate, n.StudentToCourses, chosenOrder[:dayLimit])
		if t > bestTriples+shrinkTolerance {
			break
		}
		bestAssignment = candidate
		bestDays = dayLimit
		bestTriples = t
	}
	activeSlots := chosenOrder[:bestDays]

	repairMaxPasses := d.Solver.RepairMaxPasses
	repairMaxMoves := d.Solver.RepairMaxMoves
	repairResult := repair.Run(bestAssignment, repair.Input{
		Graph:            graph,
		CourseStudents:   n.CourseToStudents,
		StudentToCourses: n.StudentToCourses,
		ActiveSlots:      activeSlots,
		MaxPasses:        repairMaxPasses,
		MaxMoves:         repairMaxMoves,
		EnableSwaps:      true,
	})
	finalAssignment := repairResult.Assignment
	remaining := repairResult.RemainingViolations

	if d.Metrics != nil {
		d.Metrics.FinisherImprovedBy.Set(0)
	}
	if d.Solver.FinisherEnabled && remaining > 0 {
		finResult := finisher.Run(finisher.Input{
			Graph:              graph,
			CourseStudents:     n.CourseToStudents,
			StudentToCourses:   n.StudentToCourses,
			ActiveSlots:        activeSlots,
			Fixed:              fixed,
			Current:            finalAssignment,
			CurrentBestTriples: remaining,
			TimeLimit:          d.Solver.FinisherTimeLimit,
			Seed:               int64(bestSeed),
		})
		if finResult.Improved {
			if d.Metrics != nil {
				d.Metrics.FinisherImprovedBy.Set(float64(remaining - finResult.Triples))
			}
			finalAssignment = finResult.Assignment
			remaining = finResult.Triples
		}
	}

	expanded := finalAssignment.Expand(n.Merges)
	itinerary := model.Itinerary(expanded, n.StudentCourseNames)

	rawStudentCourses := map[model.StudentID]*set.Set[model.CourseID]{}
	nonIgnored := make([]string, 0, len(n.StudentCourseNames))
	seenCourse := map[string]bool{}
	for _, r := range in.Records {
		if in.Ignore[r.CourseCode] {
			continue
		}
		stu := model.StudentID(r.StudentID)
		if rawStudentCourses[stu] == nil {
			rawStudentCourses[stu] = set.New[model.CourseID](0)
		}
		rawStudentCourses[stu].Insert(model.RawCourse(r.CourseCode))
		if !seenCourse[r.CourseCode] {
			seenCourse[r.CourseCode] = true
			nonIgnored = append(nonIgnored, r.CourseCode)
		}
	}

	auditReport := audit.Run(audit.Input{
		Assignment:       expanded,
		StudentToCourses: rawStudentCourses,
		Merges:           n.Merges,
		Fixed:            in.FixedSlots,
		ActiveSlots:      activeSlots,
		NonIgnored:       nonIgnored,
	})
	if !auditReport.OK() && d.Log != nil {
		d.Log.Warn("post-hoc audit found invariant violations",
			zap.Int("violations", len(auditReport.Violations)))
	}

	run := &model.Run{
		ID:              uuid.NewString(),
		StartDate:       in.StartDate,
		NumDays:         bestDays,
		SourceFileIDs:   in.SourceFileIDs,
		CreatedAt:       time.Now(),
		Assignment:      expanded,
		ResidualTriples: remaining,
	}

	if d.Metrics != nil {
		d.Metrics.ResidualTriples.Set(float64(remaining))
		d.Metrics.RunDuration.Observe(time.Since(start).Seconds())
	}
	if d.Log != nil {
		d.Log.Info("schedule run complete",
			zap.String("run_id", run.ID),
			zap.Int("days_used", bestDays),
			zap.Int("residual_triples", remaining),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	return &RunOutput{Run: run, Itinerary: itinerary}, nil
}

// attempt runs DSATUR and, if it fails to colour within len(activeSlots)
// colours, falls back to the bounded backtracker — spec.md §4.3/§4.4.
func (d *Driver) attempt(g *conflictgraph.Graph, courseStudents map[model.CourseID]*set.Set[model.StudentID], activeSlots []model.SlotID, fixed model.Assignment, seed int64) (model.Assignment, bool) {
	res := coloring.Color(coloring.Input{
		Graph:          g,
		ActiveSlots:    activeSlots,
		CourseStudents: courseStudents,
		Fixed:          fixed,
		Seed:           seed,
		InitialOrder:   BlendedOrder(g, courseStudents),
	})
	if res.OK {
		return res.Assignment, true
	}

	if d.Metrics != nil {
		d.Metrics.BacktrackInvoked.Inc()
	}
	limits := backtrack.Limits{MaxDuration: d.Solver.BacktrackMaxDur, MaxCalls: d.Solver.BacktrackMaxCalls}
	bt := backtrack.Search(backtrack.Input{
		Graph:       g,
		ActiveSlots: activeSlots,
		Fixed:       fixed,
		Limits:      limits,
	})
	return bt.Assignment, bt.OK
}

// validateFixedSlots catches the first programmer-input error in spec.md
// §7's last row: a course declared fixed that is also on the ignore list.
// No mutation of any persistent state has happened yet (spec.md §7).
func validateFixedSlots(fixedSlots map[string]model.SlotID, ignore map[string]bool) error {
	codes := make([]string, 0, len(fixedSlots))
	for code := range fixedSlots {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if ignore[code] {
			return schederr.InvalidInput("course " + code + " is both fixed and ignored")
		}
	}
	return nil
}

// validateFixedConflicts catches the second programmer-input error: two
// fixed courses that share an enrolled student (a conflict-graph edge) but
// are pinned to different slots, which no solver stage can ever satisfy.
func validateFixedConflicts(fixedSlots map[string]model.SlotID, merges *model.MergeTable, graph *conflictgraph.Graph) error {
	resolved := resolveFixed(fixedSlots, merges)
	courses := make([]model.CourseID, 0, len(resolved))
	for c := range resolved {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].String() < courses[j].String() })

	for i := 0; i < len(courses); i++ {
		ui, ok := graph.IndexOf(courses[i])
		if !ok {
			continue
		}
		for j := i + 1; j < len(courses); j++ {
			vi, ok := graph.IndexOf(courses[j])
			if !ok {
				continue
			}
			if graph.HasEdge(ui, vi) && resolved[courses[i]] != resolved[courses[j]] {
				return schederr.InvalidInput(
					"fixed courses " + courses[i].String() + " and " + courses[j].String() +
						" share an enrolled student but are pinned to different slots")
			}
		}
	}
	return nil
}

func resolveFixed(fixedSlots map[string]model.SlotID, merges *model.MergeTable) model.Assignment {
	out := make(model.Assignment, len(fixedSlots))
	for code, slot := range fixedSlots {
		if g, ok := merges.GroupOf(code); ok {
			out[model.MergedCourse(g)] = slot
			continue
		}
		out[model.RawCourse(code)] = slot
	}
	return out
}

func countTriples(assignment model.Assignment, studentToCourses map[model.StudentID]*set.Set[model.CourseID], activeSlots []model.SlotID) int {
	slotToDay, _ := sloteng.DayIndexMap(activeSlots)
	numDays := len(activeSlots)
	studentSlots := map[model.StudentID][]model.SlotID{}
	students := make([]model.StudentID, 0, len(studentToCourses))
	for stu := range studentToCourses {
		students = append(students, stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i] < students[j] })
	for _, stu := range students {
		for _, c := range studentToCourses[stu].Slice() {
			if slot, ok := assignment[c]; ok {
				studentSlots[stu] = append(studentSlots[stu], slot)
			}
		}
	}
	return len(triples.DetectAll(studentSlots, slotToDay, numDays))
}
