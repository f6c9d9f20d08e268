package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func TestSaveRunCommitsOneTransactionPerRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	s := New(sqlxDB)

	run := &model.Run{
		ID:              "run-1",
		StartDate:       time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		NumDays:         3,
		SourceFileIDs:   []string{"file-1"},
		CreatedAt:       time.Now(),
		ResidualTriples: 0,
	}
	slots := model.BaseSlots(3)
	itinerary := map[model.StudentID][]model.ItineraryEntry{
		"s1": {
			{Course: model.Course{Code: "MATH101", Name: "Calculus I"}, Slot: slots[0], DayIndex: 0},
		},
	}
	names := map[model.StudentID]string{"s1": "Ada Lovelace"}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO exam_schedule_runs").
		WithArgs(run.ID, run.StartDate, run.NumDays, "file-1", run.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO exam_slots").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_exams").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = s.SaveRun(context.Background(), run, itinerary, names)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
