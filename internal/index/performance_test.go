package index

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgineer/eqindex/internal/contracts"
)

// perfStore is a minimal ObservationStore fake exposing only the
// performance lookups the accumulator uses.
type perfStore struct {
	contracts.ObservationStore
	perf map[time.Time]contracts.IndexPerformance
}

func (s *perfStore) GetPerformance(ctx context.Context, date time.Time) (*contracts.IndexPerformance, error) {
	if p, ok := s.perf[Day(date)]; ok {
		return &p, nil
	}
	return nil, nil
}

func compRows(returns ...float64) []contracts.IndexComposition {
	rows := make([]contracts.IndexComposition, 0, len(returns))
	for i, r := range returns {
		rows = append(rows, contracts.IndexComposition{
			Symbol:        string(rune('A' + i)),
			WeightPercent: 100.0 / float64(len(returns)),
			ReturnPercent: r,
		})
	}
	return rows
}

func TestCompute_AveragesReturns(t *testing.T) {
	a := NewPerformanceAccumulator(nil, NewCalendar(), 1000.0, 10, false)

	perf, err := a.Compute(compRows(2.0, -1.0), date(2025, 9, 10), 1000.0)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, perf.DailyReturnPercent, 1e-9)
	assert.InDelta(t, 1005.0, perf.IndexValue, 1e-9)
	assert.InDelta(t, 0.5, perf.CumulativeReturnPercent, 1e-9)
	assert.Equal(t, 2, perf.CompaniesCount)
}

func TestCompute_CompoundsFromPriorValue(t *testing.T) {
	a := NewPerformanceAccumulator(nil, NewCalendar(), 1000.0, 10, false)

	perf, err := a.Compute(compRows(-1.0), date(2025, 9, 11), 1020.0)
	require.NoError(t, err)

	assert.InDelta(t, 1009.8, perf.IndexValue, 1e-9)
	assert.InDelta(t, 0.98, perf.CumulativeReturnPercent, 0.01)
}

func TestCompute_EmptyComposition(t *testing.T) {
	a := NewPerformanceAccumulator(nil, NewCalendar(), 1000.0, 10, false)

	_, err := a.Compute(nil, date(2025, 9, 10), 1000.0)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyComposition)
}

func TestResolvePriorValue_FindsMostRecent(t *testing.T) {
	store := &perfStore{perf: map[time.Time]contracts.IndexPerformance{
		date(2025, 9, 8): {Date: date(2025, 9, 8), IndexValue: 990.0},
		date(2025, 9, 9): {Date: date(2025, 9, 9), IndexValue: 1010.0},
	}}
	a := NewPerformanceAccumulator(store, NewCalendar(), 1000.0, 10, false)

	prior, err := a.ResolvePriorValue(context.Background(), date(2025, 9, 10))
	require.NoError(t, err)

	assert.InDelta(t, 1010.0, prior, 1e-9)
}

func TestResolvePriorValue_SkipsWeekend(t *testing.T) {
	// Friday value, resolving for the following Monday
	store := &perfStore{perf: map[time.Time]contracts.IndexPerformance{
		date(2025, 9, 12): {Date: date(2025, 9, 12), IndexValue: 1033.0},
	}}
	a := NewPerformanceAccumulator(store, NewCalendar(), 1000.0, 10, false)

	prior, err := a.ResolvePriorValue(context.Background(), date(2025, 9, 15))
	require.NoError(t, err)

	assert.InDelta(t, 1033.0, prior, 1e-9)
}

func TestResolvePriorValue_ExhaustedFallsBackToBase(t *testing.T) {
	store := &perfStore{perf: map[time.Time]contracts.IndexPerformance{}}
	a := NewPerformanceAccumulator(store, NewCalendar(), 1000.0, 10, false)

	prior, err := a.ResolvePriorValue(context.Background(), date(2025, 9, 10))
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, prior, 1e-9)
}

func TestResolvePriorValue_ExhaustedWithRequireHistory(t *testing.T) {
	store := &perfStore{perf: map[time.Time]contracts.IndexPerformance{}}
	a := NewPerformanceAccumulator(store, NewCalendar(), 1000.0, 10, true)

	_, err := a.ResolvePriorValue(context.Background(), date(2025, 9, 10))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestResolvePriorValue_BoundedByLookback(t *testing.T) {
	// Value exists 11 calendar days back, one past the lookback
	store := &perfStore{perf: map[time.Time]contracts.IndexPerformance{
		date(2025, 8, 29): {Date: date(2025, 8, 29), IndexValue: 950.0},
	}}
	a := NewPerformanceAccumulator(store, NewCalendar(), 1000.0, 10, false)

	prior, err := a.ResolvePriorValue(context.Background(), date(2025, 9, 9))
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, prior, 1e-9, "record outside lookback must not be used")
}
