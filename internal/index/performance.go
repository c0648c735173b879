package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
)

// ErrEmptyComposition signals that performance was requested for a day
// whose composition has no constituents. This is distinct from "no data
// yet": an empty day is valid, performance over it is not.
var ErrEmptyComposition = errors.New("performance requires a non-empty composition")

// ErrNoHistory signals that no prior performance record exists within the
// configured lookback and the accumulator was told not to reseed from the
// base value.
var ErrNoHistory = errors.New("no prior performance within lookback window")

// PerformanceAccumulator folds daily returns into a compounded index value
// series. The fold is strictly sequential: the value for a date depends on
// the most recent prior value.
type PerformanceAccumulator struct {
	store          contracts.ObservationStore
	calendar       *Calendar
	baseValue      float64
	lookbackDays   int
	requireHistory bool
}

// NewPerformanceAccumulator creates an accumulator seeded by baseValue.
// lookbackDays bounds the backward walk when resolving a prior value;
// requireHistory turns an exhausted walk into an error instead of a
// silent reseed from baseValue.
func NewPerformanceAccumulator(store contracts.ObservationStore, calendar *Calendar, baseValue float64, lookbackDays int, requireHistory bool) *PerformanceAccumulator {
	return &PerformanceAccumulator{
		store:          store,
		calendar:       calendar,
		baseValue:      baseValue,
		lookbackDays:   lookbackDays,
		requireHistory: requireHistory,
	}
}

// BaseValue returns the configured base index value.
func (a *PerformanceAccumulator) BaseValue() float64 {
	return a.baseValue
}

// Compute derives the performance record for one date from its composition
// and the prior index value. Pure arithmetic, no store access.
func (a *PerformanceAccumulator) Compute(composition []contracts.IndexComposition, date time.Time, priorIndexValue float64) (contracts.IndexPerformance, error) {
	if len(composition) == 0 {
		return contracts.IndexPerformance{}, fmt.Errorf("%w: date=%s", ErrEmptyComposition, date.Format("2006-01-02"))
	}

	var sum float64
	for _, row := range composition {
		sum += row.ReturnPercent
	}
	dailyReturn := sum / float64(len(composition))

	indexValue := priorIndexValue * (1 + dailyReturn/100)
	cumulative := (indexValue - a.baseValue) / a.baseValue * 100

	return contracts.IndexPerformance{
		Date:                    Day(date),
		DailyReturnPercent:      dailyReturn,
		CumulativeReturnPercent: cumulative,
		IndexValue:              indexValue,
		CompaniesCount:          len(composition),
	}, nil
}

// ResolvePriorValue walks backward through prior trading days until a
// persisted performance record is found. The walk is bounded by the
// configured lookback in calendar days; an exhausted walk falls back to
// the base value unless requireHistory is set.
func (a *PerformanceAccumulator) ResolvePriorValue(ctx context.Context, date time.Time) (float64, error) {
	date = Day(date)

	for i := 1; i <= a.lookbackDays; i++ {
		prior := date.AddDate(0, 0, -i)
		if !a.calendar.IsTradingDay(prior) {
			continue
		}

		perf, err := a.store.GetPerformance(ctx, prior)
		if err != nil {
			return 0, fmt.Errorf("lookup prior performance for %s: %w", prior.Format("2006-01-02"), err)
		}
		if perf != nil {
			return perf.IndexValue, nil
		}
	}

	if a.requireHistory {
		return 0, fmt.Errorf("%w: date=%s lookback=%dd", ErrNoHistory, date.Format("2006-01-02"), a.lookbackDays)
	}

	return a.baseValue, nil
}
