package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/ingest"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func smallRecords() []ingest.Record {
	return []ingest.Record{
		{CourseCode: "MATH101", CourseName: "Calculus I", StudentID: "s1"},
		{CourseCode: "PHYS101", CourseName: "Physics I", StudentID: "s1"},
		{CourseCode: "CHEM101", CourseName: "Chemistry I", StudentID: "s1"},
		{CourseCode: "MATH101", CourseName: "Calculus I", StudentID: "s2"},
		{CourseCode: "BIOL101", CourseName: "Biology I", StudentID: "s2"},
	}
}

func TestScheduleProducesRunAndItinerary(t *testing.T) {
	d := &Driver{Solver: SolverConfig{
		RestartSeeds:      3,
		ShrinkTolerance:   5,
		BacktrackMaxDur:   2 * time.Second,
		BacktrackMaxCalls: 100000,
		RepairMaxPasses:   10,
		RepairMaxMoves:    2000,
		FinisherTimeLimit: 500 * time.Millisecond,
		FinisherEnabled:   true,
	}}

	out, err := d.Schedule(RunInput{
		Records:       smallRecords(),
		Merges:        model.NewMergeTable(nil),
		StartDate:     time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		NumDays:       5,
		SourceFileIDs: []string{"file-1"},
	})

	require.NoError(t, err)
	require.NotNil(t, out.Run)
	require.NotEmpty(t, out.Run.ID)
	require.LessOrEqual(t, out.Run.NumDays, 5)
	require.Equal(t, 0, out.Run.ResidualTriples)
	require.Contains(t, out.Itinerary, model.StudentID("s1"))
	require.Len(t, out.Itinerary["s1"], 3)
}

func TestScheduleReturnsInfeasibleWhenDaysTooFew(t *testing.T) {
	d := &Driver{Solver: SolverConfig{
		RestartSeeds:      2,
		BacktrackMaxDur:   200 * time.Millisecond,
		BacktrackMaxCalls: 5000,
		RepairMaxPasses:   5,
		RepairMaxMoves:    500,
		FinisherEnabled:   false,
	}}

	// Four mutually conflicting courses need 4 colours; only 2 days offered.
	out, err := d.Schedule(RunInput{
		Records: []ingest.Record{
			{CourseCode: "A", StudentID: "s1"},
			{CourseCode: "B", StudentID: "s1"},
			{CourseCode: "C", StudentID: "s1"},
			{CourseCode: "D", StudentID: "s1"},
		},
		Merges:    model.NewMergeTable(nil),
		StartDate: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		NumDays:   2,
	})

	require.Error(t, err)
	require.Nil(t, out)
}

func TestScheduleHonoursFixedSlots(t *testing.T) {
	d := &Driver{Solver: SolverConfig{
		RestartSeeds:      3,
		ShrinkTolerance:   5,
		BacktrackMaxDur:   time.Second,
		BacktrackMaxCalls: 100000,
		RepairMaxPasses:   10,
		RepairMaxMoves:    2000,
		FinisherEnabled:   false,
	}}

	slots := model.BaseSlots(5)
	out, err := d.Schedule(RunInput{
		Records: []ingest.Record{
			{CourseCode: "MATH101", StudentID: "s1"},
			{CourseCode: "PHYS101", StudentID: "s1"},
		},
		Merges:     model.NewMergeTable(nil),
		FixedSlots: map[string]model.SlotID{"MATH101": slots[3]},
		StartDate:  time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		NumDays:    5,
	})

	require.NoError(t, err)
	require.Equal(t, slots[3], out.Run.Assignment[model.RawCourse("MATH101")])
}
