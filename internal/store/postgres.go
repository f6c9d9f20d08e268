// Package store persists the logical schema of spec.md §6
// (exam_schedule_runs, exam_slots, student_exams) with sqlx over
// lib/pq, and caches a completed run's assignment in redis for the
// "idempotent re-run" property (spec.md §8 property 7).
//
// Grounded on noah-isme-sma-adp-api/pkg/database (NewPostgres) and
// pkg/cache (NewRedis): same sqlx.Open/ping-on-construct shape, same
// connection-pool tuning knobs.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/engine"
)

// NewPostgres opens and pings a configured PostgreSQL connection.
func NewPostgres(cfg engine.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: pinging postgres: %w", err)
	}
	return db, nil
}

// Schema is the logical DDL of spec.md §6. The driver never runs this
// itself (spec.md §5: persistence is a short, separately-scoped session);
// it is exposed so cmd/scheduler and migrations can apply it once.
const Schema = `
CREATE TABLE IF NOT EXISTS exam_schedule_runs (
	id            TEXT PRIMARY KEY,
	start_date    DATE NOT NULL,
	num_days      INT NOT NULL,
	xml_file_ids  TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS exam_slots (
	run_id        TEXT NOT NULL REFERENCES exam_schedule_runs(id),
	course_code   TEXT NOT NULL,
	course_name   TEXT NOT NULL,
	day_index     INT NOT NULL,
	slot          INT NOT NULL,
	exam_date     DATE NOT NULL,
	time_label    TEXT NOT NULL,
	PRIMARY KEY (run_id, course_code)
);

CREATE TABLE IF NOT EXISTS student_exams (
	run_id        TEXT NOT NULL REFERENCES exam_schedule_runs(id),
	student_id    TEXT NOT NULL,
	student_name  TEXT NOT NULL,
	course_code   TEXT NOT NULL,
	course_name   TEXT NOT NULL,
	day_index     INT NOT NULL,
	slot          INT NOT NULL,
	exam_date     DATE NOT NULL,
	time_label    TEXT NOT NULL,
	PRIMARY KEY (run_id, student_id, course_code)
);
`
