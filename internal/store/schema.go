package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

// Store wraps a *sqlx.DB with the spec.md §6 persistence operations. Each
// public method opens and closes its own transaction — "short
// transactional sessions with explicit open/close scope... confined to
// one logical task" (spec.md §5).
type Store struct {
	db *sqlx.DB
}

// New wraps a connected database handle.
func New(db *sqlx.DB) *Store { return &Store{db: db} }

// SaveRun persists a Run and its per-course/per-student schedule rows in
// one transaction, retrying transient failures with a short bounded
// backoff before giving up — spec.md §7 ("Persistence fails: log and
// continue returning in-memory result; not fatal") leaves the caller to
// decide that fallback, so SaveRun only owns the retry, not the
// swallow-and-continue.
func (s *Store) SaveRun(ctx context.Context, run *model.Run, itinerary map[model.StudentID][]model.ItineraryEntry, studentNames map[model.StudentID]string) error {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	return backoff.Retry(func() error {
		return s.saveRunOnce(ctx, run, itinerary, studentNames)
	}, b)
}

func (s *Store) saveRunOnce(ctx context.Context, run *model.Run, itinerary map[model.StudentID][]model.ItineraryEntry, studentNames map[model.StudentID]string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO exam_schedule_runs (id, start_date, num_days, xml_file_ids, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		run.ID, run.StartDate, run.NumDays, strings.Join(run.SourceFileIDs, ","), run.CreatedAt,
	); err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	seenCourse := map[string]bool{}
	for _, entries := range itinerary {
		for _, e := range entries {
			if seenCourse[e.Course.Code] {
				continue
			}
			seenCourse[e.Course.Code] = true
			examDate := run.StartDate.AddDate(0, 0, e.DayIndex)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO exam_slots (run_id, course_code, course_name, day_index, slot, exam_date, time_label)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (run_id, course_code) DO UPDATE SET
					course_name = EXCLUDED.course_name,
					day_index   = EXCLUDED.day_index,
					slot        = EXCLUDED.slot,
					exam_date   = EXCLUDED.exam_date,
					time_label  = EXCLUDED.time_label`,
				run.ID, e.Course.Code, e.Course.Name, e.DayIndex, int(e.Slot), examDate, e.Slot.Session(),
			); err != nil {
				return fmt.Errorf("store: upsert exam_slots %s: %w", e.Course.Code, err)
			}
		}
	}

	for stu, entries := range itinerary {
		for _, e := range entries {
			examDate := run.StartDate.AddDate(0, 0, e.DayIndex)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO student_exams (run_id, student_id, student_name, course_code, course_name, day_index, slot, exam_date, time_label)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (run_id, student_id, course_code) DO NOTHING`,
				run.ID, string(stu), studentNames[stu], e.Course.Code, e.Course.Name, e.DayIndex, int(e.Slot), examDate, e.Slot.Session(),
			); err != nil {
				return fmt.Errorf("store: insert student_exams %s/%s: %w", stu, e.Course.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// PingTimeout bounds how long the driver's construction-time health check
// waits before treating the database as unavailable.
const PingTimeout = 5 * time.Second
