package model

import "time"

// Run is one invocation of the engine: its inputs, the days requested, the
// start date, and the produced assignment (spec.md §3). A Run is persisted
// once and is immutable after commit.
type Run struct {
	ID            string
	StartDate     time.Time
	NumDays       int
	SourceFileIDs []string
	CreatedAt     time.Time

	Assignment      Assignment
	ResidualTriples int
}
