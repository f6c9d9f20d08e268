package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/engine"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

// NewRedis opens and pings a configured Redis client.
func NewRedis(cfg engine.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: pinging redis: %w", err)
	}
	return client, nil
}

// RunCache caches a completed run's serialized result keyed by a hash of
// its inputs, so spec.md §8 property 7 ("idempotent re-run") is served
// from cache rather than recomputation when the same inputs and seed
// schedule are submitted twice.
type RunCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRunCache wraps an existing redis client with the engine's result cache.
func NewRunCache(rdb *redis.Client, ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RunCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached serialized run output for key, if present.
func (c *RunCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, runCacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: reading run cache: %w", err)
	}
	return val, true, nil
}

// Set stores the serialized run output for key.
func (c *RunCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.rdb.Set(ctx, runCacheKeyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("store: writing run cache: %w", err)
	}
	return nil
}

const runCacheKeyPrefix = "exam_scheduler:run:"

// CacheKeyInput is every input that determines a run's outcome: two runs
// with identical inputs and the same seed schedule must produce the same
// assignment (spec.md §8 property 7), so the cache key is a hash over all
// of them, not just the enrolment relation.
type CacheKeyInput struct {
	CourseCodes   []string // course_code per enrolment row
	StudentIDs    []string // student_id per enrolment row, same order as CourseCodes
	MergePairs    [][2]string
	IgnoreList    []string
	FixedSlots    map[string]int
	StartDateUnix int64
	NumDays       int
	RestartSeeds  int
}

// Key derives a deterministic cache key from the run inputs. Field order
// within each slice does not matter: everything is sorted before hashing.
func (in CacheKeyInput) Key() string {
	h := sha256.New()

	rows := make([]string, len(in.CourseCodes))
	for i := range in.CourseCodes {
		rows[i] = in.CourseCodes[i] + "|" + in.StudentIDs[i]
	}
	sort.Strings(rows)
	for _, r := range rows {
		h.Write([]byte(r))
		h.Write([]byte{'\n'})
	}

	merges := make([]string, len(in.MergePairs))
	for i, p := range in.MergePairs {
		merges[i] = p[0] + "|" + p[1]
	}
	sort.Strings(merges)
	for _, m := range merges {
		h.Write([]byte(m))
		h.Write([]byte{'\n'})
	}

	ignore := append([]string(nil), in.IgnoreList...)
	sort.Strings(ignore)
	for _, code := range ignore {
		h.Write([]byte(code))
		h.Write([]byte{'\n'})
	}

	fixedCodes := make([]string, 0, len(in.FixedSlots))
	for code := range in.FixedSlots {
		fixedCodes = append(fixedCodes, code)
	}
	sort.Strings(fixedCodes)
	for _, code := range fixedCodes {
		h.Write([]byte(code))
		h.Write([]byte{'='})
		h.Write([]byte(strconv.Itoa(in.FixedSlots[code])))
		h.Write([]byte{'\n'})
	}

	h.Write([]byte(strconv.FormatInt(in.StartDateUnix, 10)))
	h.Write([]byte{'\n'})
	h.Write([]byte(strconv.Itoa(in.NumDays)))
	h.Write([]byte{'\n'})
	h.Write([]byte(strconv.Itoa(in.RestartSeeds)))

	return hex.EncodeToString(h.Sum(nil))
}

// CachedRun is the serializable snapshot of a completed run that RunCache
// stores: a course-code-keyed assignment plus the few scalar fields callers
// need to rebuild a model.Run and its itinerary without rerunning the
// pipeline (spec.md §8 property 7, "idempotent re-run").
type CachedRun struct {
	Assignment      map[string]int `json:"assignment"`
	NumDays         int            `json:"num_days"`
	ResidualTriples int            `json:"residual_triples"`
}

// EncodeCachedRun serializes an expanded Assignment (raw course codes only,
// as produced by Assignment.Expand) into the bytes RunCache.Set stores.
func EncodeCachedRun(assignment model.Assignment, numDays, residualTriples int) ([]byte, error) {
	courses := make(map[string]int, len(assignment))
	for c, slot := range assignment {
		courses[c.String()] = int(slot)
	}
	data, err := json.Marshal(CachedRun{Assignment: courses, NumDays: numDays, ResidualTriples: residualTriples})
	if err != nil {
		return nil, fmt.Errorf("store: encoding cached run: %w", err)
	}
	return data, nil
}

// DecodeCachedRun reverses EncodeCachedRun.
func DecodeCachedRun(data []byte) (CachedRun, error) {
	var c CachedRun
	if err := json.Unmarshal(data, &c); err != nil {
		return CachedRun{}, fmt.Errorf("store: decoding cached run: %w", err)
	}
	return c, nil
}

// ToAssignment rebuilds a model.Assignment from a decoded CachedRun. Every
// key is a raw course code (the cache only ever stores an Assignment already
// expanded through its merge groups), so this round-trips with
// EncodeCachedRun regardless of which courses were merged when the cached
// run was produced.
func (c CachedRun) ToAssignment() model.Assignment {
	out := make(model.Assignment, len(c.Assignment))
	for code, slot := range c.Assignment {
		out[model.RawCourse(code)] = model.SlotID(slot)
	}
	return out
}
