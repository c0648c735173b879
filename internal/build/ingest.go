package build

import (
	"context"
	"fmt"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// Ingestor handles raw observation intake: the daily dump, range
// backfills and per-date validation.
type Ingestor struct {
	store    contracts.ObservationStore
	fetcher  contracts.StockFetcher
	calendar *index.Calendar
	topN     int
	logger   *logger.Logger
}

// NewIngestor creates a new observation ingestor.
func NewIngestor(store contracts.ObservationStore, fetcher contracts.StockFetcher, calendar *index.Calendar, topN int, log *logger.Logger) *Ingestor {
	return &Ingestor{
		store:    store,
		fetcher:  fetcher,
		calendar: calendar,
		topN:     topN,
		logger:   log.WithField("module", "ingest"),
	}
}

// RunDailyDump fetches and stores the top-stock snapshot for one date.
// A date that already holds observations is left untouched.
func (i *Ingestor) RunDailyDump(ctx context.Context, date time.Time) contracts.OperationResult {
	date = index.Day(date)
	start := time.Now()

	result := contracts.OperationResult{
		Operation: "daily_dump",
		Date:      date,
	}

	records, err := i.dump(ctx, date)
	result.Duration = time.Since(start).Seconds()
	if err != nil {
		result.ErrorMessage = err.Error()
		i.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Error("Daily dump failed")
		return result
	}

	result.Success = true
	result.RecordsProcessed = records
	return result
}

func (i *Ingestor) dump(ctx context.Context, date time.Time) (int, error) {
	existing, err := i.store.CountObservations(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("count existing observations: %w", err)
	}
	if existing > 0 {
		return existing, nil
	}

	obs, err := i.fetcher.FetchTopStocks(ctx, date, i.topN)
	if err != nil {
		return 0, fmt.Errorf("fetch top stocks: %w", err)
	}
	if len(obs) == 0 {
		return 0, nil
	}

	if err := i.store.ReplaceObservations(ctx, date, obs); err != nil {
		return 0, fmt.Errorf("store observations: %w", err)
	}

	return len(obs), nil
}

// RunBackfill runs a daily dump for every trading day in [start, end].
// Per-date failures are captured in their result and do not stop the run.
func (i *Ingestor) RunBackfill(ctx context.Context, start, end time.Time) []contracts.OperationResult {
	results := make([]contracts.OperationResult, 0)
	for _, day := range i.calendar.TradingDaysInRange(start, end) {
		results = append(results, i.RunDailyDump(ctx, day))
	}
	return results
}

// ValidateDate checks whether a date holds the expected observation count.
func (i *Ingestor) ValidateDate(ctx context.Context, date time.Time) contracts.ValidationResult {
	date = index.Day(date)

	result := contracts.ValidationResult{
		Date:          date,
		ExpectedCount: i.topN,
	}

	count, err := i.store.CountObservations(ctx, date)
	if err != nil {
		i.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Error("Validation query failed")
		return result
	}

	result.ActualCount = count
	result.HasData = count > 0
	result.IsValid = count == i.topN
	return result
}

// AvailableDates returns every date holding observations, most recent
// first.
func (i *Ingestor) AvailableDates(ctx context.Context) ([]time.Time, error) {
	return i.store.AvailableDates(ctx)
}
