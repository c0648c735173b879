package build

import (
	"context"
	"fmt"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// Orchestrator drives the incremental index build: detect gaps, fill only
// the missing pieces, persist idempotently. It is the sole owner of the
// store's write path; re-running a build over an already-built range is a
// no-op. Concurrent builds over overlapping ranges are not supported;
// build triggers are assumed to be serialized by a single scheduler.
type Orchestrator struct {
	store       contracts.ObservationStore
	fetcher     contracts.StockFetcher
	calendar    *index.Calendar
	gaps        *GapDetector
	compBuilder *index.CompositionBuilder
	accumulator *index.PerformanceAccumulator
	logger      *logger.Logger
}

// NewOrchestrator creates a build orchestrator.
func NewOrchestrator(
	store contracts.ObservationStore,
	fetcher contracts.StockFetcher,
	calendar *index.Calendar,
	compBuilder *index.CompositionBuilder,
	accumulator *index.PerformanceAccumulator,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		fetcher:     fetcher,
		calendar:    calendar,
		gaps:        NewGapDetector(store),
		compBuilder: compBuilder,
		accumulator: accumulator,
		logger:      log.WithField("module", "build"),
	}
}

// Build runs the incremental build over [start, end]. A zero end defaults
// to start. Per-date fetch failures are recorded and skipped; storage
// failures abort with a failed result, leaving earlier persisted state in
// place (each date's persist is its own unit, there is no rollback).
func (o *Orchestrator) Build(ctx context.Context, start, end time.Time) contracts.BuildResult {
	start = index.Day(start)
	if end.IsZero() {
		end = start
	}
	end = index.Day(end)

	result := contracts.BuildResult{
		StartDate: start,
		EndDate:   end,
	}

	tradingDays := o.calendar.TradingDaysInRange(start, end)
	result.TradingDays = len(tradingDays)
	if len(tradingDays) == 0 {
		result.Success = true
		result.NothingToDo = true
		return result
	}

	o.logger.WithFields(map[string]interface{}{
		"start":        start.Format("2006-01-02"),
		"end":          end.Format("2006-01-02"),
		"trading_days": len(tradingDays),
	}).Info("Starting incremental build")

	// Gap sets are captured before any fill runs. NothingToDo means the
	// range had no gaps at all; a run that found gaps but filled none
	// (every fetch failed) must stay distinguishable from a no-op.
	missingObs, err := o.gaps.MissingObservations(ctx, tradingDays)
	if err != nil {
		return o.fail(result, fmt.Errorf("detect observation gaps: %w", err))
	}
	missingComp, err := o.gaps.MissingCompositions(ctx, tradingDays)
	if err != nil {
		return o.fail(result, fmt.Errorf("detect composition gaps: %w", err))
	}
	missingPerf, err := o.gaps.MissingPerformance(ctx, tradingDays)
	if err != nil {
		return o.fail(result, fmt.Errorf("detect performance gaps: %w", err))
	}

	if len(missingObs) == 0 && len(missingComp) == 0 && len(missingPerf) == 0 {
		result.Success = true
		result.NothingToDo = true
		o.logger.Info("Range already built, nothing to do")
		return result
	}

	filledObs, failedDates, err := o.fillObservations(ctx, missingObs)
	if err != nil {
		return o.fail(result, err)
	}
	result.FailedFetchDates = failedDates

	compsBuilt, err := o.fillCompositions(ctx, missingComp)
	if err != nil {
		return o.fail(result, err)
	}
	result.CompositionsBuilt = compsBuilt

	filledPerf, err := o.fillPerformance(ctx, missingPerf)
	if err != nil {
		return o.fail(result, err)
	}

	result.Success = true

	o.logger.WithFields(map[string]interface{}{
		"observations_filled": filledObs,
		"compositions_built":  compsBuilt,
		"performance_filled":  filledPerf,
		"fetch_failures":      len(failedDates),
	}).Info("Incremental build completed")

	return result
}

// fillObservations fetches and stores observations for every day in the
// gap set. A failed fetch for one date does not abort the remaining
// dates; failed dates are reported back to the caller.
func (o *Orchestrator) fillObservations(ctx context.Context, missingObs []time.Time) (int, []string, error) {
	filled := 0
	var failedDates []string
	for _, day := range missingObs {
		obs, err := o.fetcher.FetchTopStocks(ctx, day, o.compBuilder.TopN())
		if err != nil {
			o.logger.WithError(err).WithField("date", day.Format("2006-01-02")).
				Warn("Fetch failed for date, skipping")
			failedDates = append(failedDates, day.Format("2006-01-02"))
			continue
		}
		if len(obs) == 0 {
			continue
		}

		if err := o.store.ReplaceObservations(ctx, day, obs); err != nil {
			return filled, failedDates, fmt.Errorf("store observations for %s: %w", day.Format("2006-01-02"), err)
		}
		filled++
	}
	return filled, failedDates, nil
}

// fillCompositions derives and persists compositions for every day in the
// gap set. Persistence is insert-only: an existing composition is never
// overwritten.
func (o *Orchestrator) fillCompositions(ctx context.Context, missingComp []time.Time) (int, error) {
	built := 0
	for _, day := range missingComp {
		obs, err := o.store.GetObservations(ctx, day)
		if err != nil {
			return built, fmt.Errorf("load observations for %s: %w", day.Format("2006-01-02"), err)
		}

		rows := o.compBuilder.Build(obs)
		if len(rows) == 0 {
			// Valid empty day, nothing to persist
			continue
		}

		if err := o.store.InsertCompositionIfAbsent(ctx, rows); err != nil {
			return built, fmt.Errorf("persist composition for %s: %w", day.Format("2006-01-02"), err)
		}
		built++
	}
	return built, nil
}

// fillPerformance computes and persists performance for every day in the
// gap set, strictly ascending. The compounded value is carried forward in
// process across contiguous dates in the batch; the store is re-consulted
// only when the chain breaks (a prior day already had performance, or the
// batch starts).
func (o *Orchestrator) fillPerformance(ctx context.Context, missingPerf []time.Time) (int, error) {
	filled := 0
	var carry float64
	var carryDate time.Time
	haveCarry := false

	for _, day := range missingPerf {
		composition, err := o.store.GetComposition(ctx, day)
		if err != nil {
			return filled, fmt.Errorf("load composition for %s: %w", day.Format("2006-01-02"), err)
		}
		if len(composition) == 0 {
			// No constituents for this day; performance stays a gap
			continue
		}

		var prior float64
		if haveCarry && o.calendar.PreviousTradingDay(day).Equal(carryDate) {
			prior = carry
		} else {
			prior, err = o.accumulator.ResolvePriorValue(ctx, day)
			if err != nil {
				return filled, fmt.Errorf("resolve prior index value for %s: %w", day.Format("2006-01-02"), err)
			}
		}

		perf, err := o.accumulator.Compute(composition, day, prior)
		if err != nil {
			return filled, fmt.Errorf("compute performance for %s: %w", day.Format("2006-01-02"), err)
		}

		if err := o.store.InsertPerformanceIfAbsent(ctx, perf); err != nil {
			return filled, fmt.Errorf("persist performance for %s: %w", day.Format("2006-01-02"), err)
		}

		carry = perf.IndexValue
		carryDate = day
		haveCarry = true
		filled++
	}
	return filled, nil
}

// fail degrades the whole run to a single error result. Data persisted by
// earlier steps remains in place.
func (o *Orchestrator) fail(result contracts.BuildResult, err error) contracts.BuildResult {
	o.logger.WithError(err).Error("Build failed")
	result.Success = false
	result.ErrorMessage = err.Error()
	return result
}
