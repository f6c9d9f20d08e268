// cmd/server exposes the driver as a small internal HTTP service: submit a
// run, fetch its results, and the usual /healthz and /metrics endpoints.
//
// Grounded on noah-isme-sma-adp-api/cmd/api-gateway's main.go — gin.New()
// plus gin.Recovery(), a zap request logger, a /metrics handler wired to
// prometheus, config loaded the same way. This replaces the teacher's
// bespoke net/http.FileServer (cmd/web), which served a drag-and-drop
// grid UI that is explicitly out of scope here (spec.md §1).
package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/engine"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/schederr"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/store"
)

// redisOpTimeout bounds each individual cache read/write the run service
// makes; a slow or unreachable redis must never block a scheduling request
// for longer than this.
const redisOpTimeout = 2 * time.Second

func main() {
	cfg, err := engine.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := engine.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.Env == engine.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	metrics := engine.NewMetrics(registry)
	driver := engine.NewDriver(cfg, log, metrics)

	// The idempotent re-run cache is a best-effort collaborator (spec.md §7's
	// "persistence fails: log and continue" applies equally here): a
	// submission still gets scheduled even if redis is unreachable, it just
	// loses the short-circuit on a repeated request.
	var cache *store.RunCache
	if rdb, err := store.NewRedis(cfg.Redis); err != nil {
		log.Warn("redis cache unavailable, idempotent re-run cache disabled", zap.Error(err))
	} else {
		cache = store.NewRunCache(rdb, 24*time.Hour)
	}

	restartSeeds := cfg.Solver.RestartSeeds
	if restartSeeds <= 0 {
		restartSeeds = 5
	}
	svc := newRunService(driver, cache, restartSeeds)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	api.POST("/runs", svc.submitRun)
	api.GET("/runs/:id", svc.getRun)
	api.GET("/runs/:id/itinerary/:student_id", svc.getItinerary)

	addr := ":8090"
	log.Info("exam scheduler server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// runService holds completed runs in memory for lookup by id, and
// short-circuits a resubmission of the same inputs through cache (spec.md §8
// property 7, "idempotent re-run"). A real deployment also backs persistence
// with internal/store's postgres path (see cmd/scheduler); that part remains
// an external collaborator this HTTP surface does not own directly
// (spec.md §1).
type runService struct {
	driver       *engine.Driver
	cache        *store.RunCache
	restartSeeds int

	mu   sync.RWMutex
	runs map[string]*engine.RunOutput
}

func newRunService(driver *engine.Driver, cache *store.RunCache, restartSeeds int) *runService {
	return &runService{driver: driver, cache: cache, restartSeeds: restartSeeds, runs: map[string]*engine.RunOutput{}}
}

type submitRunRequest struct {
	Records []ingest.Record `json:"records" binding:"required"`
	Merges  [][2]string     `json:"merges"`
	Ignore  []string        `json:"ignore"`
	Fixed   map[string]int  `json:"fixed_slots"`

	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	NumDays   int    `json:"num_days" binding:"required"`
}

func (s *runService) submitRun(c *gin.Context) {
	var req submitRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NumDays < 1 || req.NumDays > 30 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "num_days must be between 1 and 30"})
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}

	ignore := make(map[string]bool, len(req.Ignore))
	for _, code := range req.Ignore {
		ignore[code] = true
	}
	fixed := make(map[string]model.SlotID, len(req.Fixed))
	for code, slot := range req.Fixed {
		fixed[code] = model.SlotID(slot)
	}
	merges := model.NewMergeTable(req.Merges)

	cacheKey := s.cacheKeyFor(req, startDate)

	if s.cache != nil {
		if out, ok := s.fromCache(c.Request.Context(), cacheKey, req, merges, ignore, startDate); ok {
			s.mu.Lock()
			s.runs[out.Run.ID] = out
			s.mu.Unlock()
			c.JSON(http.StatusCreated, cachedRunSummary(out))
			return
		}
	}

	out, err := s.driver.Schedule(engine.RunInput{
		Records:    req.Records,
		Merges:     merges,
		Ignore:     ignore,
		FixedSlots: fixed,
		StartDate:  startDate,
		NumDays:    req.NumDays,
	})
	if err != nil {
		if schederr.Is(err, schederr.CodeInfeasible) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "INFEASIBLE_SCHEDULE"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_INPUT"})
		return
	}

	s.mu.Lock()
	s.runs[out.Run.ID] = out
	s.mu.Unlock()

	if s.cache != nil {
		s.saveToCache(c.Request.Context(), cacheKey, out)
	}

	c.JSON(http.StatusCreated, runSummary(out))
}

// cacheKeyFor derives the idempotent-re-run cache key spec.md §8 property 7
// relies on from a submitted request: the enrolment relation, merges,
// ignore list, fixed slots, start date, requested day count and restart
// seed count (spec.md §5 "Determinism" — two runs with identical inputs and
// seed schedule must produce identical output).
func (s *runService) cacheKeyFor(req submitRunRequest, startDate time.Time) string {
	courseCodes := make([]string, len(req.Records))
	studentIDs := make([]string, len(req.Records))
	for i, r := range req.Records {
		courseCodes[i] = r.CourseCode
		studentIDs[i] = r.StudentID
	}
	return store.CacheKeyInput{
		CourseCodes:   courseCodes,
		StudentIDs:    studentIDs,
		MergePairs:    req.Merges,
		IgnoreList:    req.Ignore,
		FixedSlots:    req.Fixed,
		StartDateUnix: startDate.Unix(),
		NumDays:       req.NumDays,
		RestartSeeds:  s.restartSeeds,
	}.Key()
}

// fromCache checks the RunCache for a prior result under key, rebuilding a
// full RunOutput (fresh run id, itinerary recomputed from the submitted
// enrolment relation) on a hit.
func (s *runService) fromCache(ctx context.Context, key string, req submitRunRequest, merges *model.MergeTable, ignore map[string]bool, startDate time.Time) (*engine.RunOutput, bool) {
	getCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	data, hit, err := s.cache.Get(getCtx, key)
	if err != nil || !hit {
		return nil, false
	}
	cached, err := store.DecodeCachedRun(data)
	if err != nil {
		return nil, false
	}

	n := enroll.Normalise(req.Records, merges, ignore)
	assignment := cached.ToAssignment()

	run := &model.Run{
		ID:              uuid.NewString(),
		StartDate:       startDate,
		NumDays:         cached.NumDays,
		CreatedAt:       time.Now(),
		Assignment:      assignment,
		ResidualTriples: cached.ResidualTriples,
	}
	return &engine.RunOutput{Run: run, Itinerary: model.Itinerary(assignment, n.StudentCourseNames)}, true
}

// saveToCache stores a freshly computed run's assignment under key so a
// repeat submission of the same inputs short-circuits to it. Cache write
// failures are logged-and-continue, same as spec.md §7's persistence
// fallback — a scheduling run already succeeded by the time this runs.
func (s *runService) saveToCache(ctx context.Context, key string, out *engine.RunOutput) {
	data, err := store.EncodeCachedRun(out.Run.Assignment, out.Run.NumDays, out.Run.ResidualTriples)
	if err != nil {
		return
	}
	setCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	_ = s.cache.Set(setCtx, key, data)
}

func (s *runService) getRun(c *gin.Context) {
	out, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, runSummary(out))
}

func (s *runService) getItinerary(c *gin.Context) {
	out, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	entries, ok := out.Itinerary[model.StudentID(c.Param("student_id"))]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found in this run"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *runService) lookup(id string) (*engine.RunOutput, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.runs[id]
	return out, ok
}

type courseAssignment struct {
	Course   string `json:"course"`
	Slot     int    `json:"slot"`
	DayIndex int    `json:"day_index"`
	Session  string `json:"session"`
}

func runSummary(out *engine.RunOutput) gin.H {
	assignments := make([]courseAssignment, 0, len(out.Run.Assignment))
	for course, slot := range out.Run.Assignment {
		assignments = append(assignments, courseAssignment{
			Course:   course.String(),
			Slot:     int(slot),
			DayIndex: slot.Day(),
			Session:  slot.Session(),
		})
	}
	return gin.H{
		"run_id":           out.Run.ID,
		"num_days":         out.Run.NumDays,
		"residual_triples": out.Run.ResidualTriples,
		"assignments":      assignments,
	}
}

// cachedRunSummary is runSummary plus a "cached" marker so a client can tell
// its submission was served from the idempotent re-run cache rather than
// recomputed.
func cachedRunSummary(out *engine.RunOutput) gin.H {
	h := runSummary(out)
	h["cached"] = true
	return h
}
