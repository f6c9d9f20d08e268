package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

func TestCacheKeyDeterministicAcrossInputOrder(t *testing.T) {
	a := CacheKeyInput{
		CourseCodes:   []string{"MATH101", "PHYS101"},
		StudentIDs:    []string{"s1", "s1"},
		IgnoreList:    []string{"ELEC900"},
		FixedSlots:    map[string]int{"MATH101": 0},
		StartDateUnix: 1754179200,
		NumDays:       5,
		RestartSeeds:  5,
	}
	b := CacheKeyInput{
		CourseCodes:   []string{"PHYS101", "MATH101"},
		StudentIDs:    []string{"s1", "s1"},
		IgnoreList:    []string{"ELEC900"},
		FixedSlots:    map[string]int{"MATH101": 0},
		StartDateUnix: 1754179200,
		NumDays:       5,
		RestartSeeds:  5,
	}

	require.Equal(t, a.Key(), b.Key())
}

func TestCacheKeyDiffersOnDifferentInputs(t *testing.T) {
	a := CacheKeyInput{NumDays: 5, RestartSeeds: 5}
	b := CacheKeyInput{NumDays: 6, RestartSeeds: 5}

	require.NotEqual(t, a.Key(), b.Key())
}

func TestCachedRunRoundTripsThroughEncodeDecode(t *testing.T) {
	assignment := model.Assignment{
		model.RawCourse("MATH101"): model.SlotID(0),
		model.RawCourse("PHYS101"): model.SlotID(4),
	}

	data, err := EncodeCachedRun(assignment, 5, 2)
	require.NoError(t, err)

	decoded, err := DecodeCachedRun(data)
	require.NoError(t, err)
	require.Equal(t, 5, decoded.NumDays)
	require.Equal(t, 2, decoded.ResidualTriples)
	require.Equal(t, assignment, decoded.ToAssignment())
}
