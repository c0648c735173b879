package contracts

import (
	"context"
	"time"
)

// ObservationStore is the durable store for observations, compositions and
// performance. The build orchestrator exclusively owns the write methods;
// the read path only ever reads.
type ObservationStore interface {
	// Observations (snapshot per date, full-day replace)
	GetObservations(ctx context.Context, date time.Time) ([]StockObservation, error)
	ReplaceObservations(ctx context.Context, date time.Time, obs []StockObservation) error
	CountObservations(ctx context.Context, date time.Time) (int, error)
	DatesWithObservations(ctx context.Context, dates []time.Time) (map[time.Time]bool, error)
	AvailableDates(ctx context.Context) ([]time.Time, error)

	// Compositions (first-write-wins)
	GetComposition(ctx context.Context, date time.Time) ([]IndexComposition, error)
	InsertCompositionIfAbsent(ctx context.Context, rows []IndexComposition) error
	DatesWithCompositions(ctx context.Context, dates []time.Time) (map[time.Time]bool, error)

	// Performance (first-write-wins)
	GetPerformance(ctx context.Context, date time.Time) (*IndexPerformance, error)
	GetPerformanceRange(ctx context.Context, start, end time.Time) ([]IndexPerformance, error)
	InsertPerformanceIfAbsent(ctx context.Context, perf IndexPerformance) error
	DatesWithPerformance(ctx context.Context, dates []time.Time) (map[time.Time]bool, error)
	LastBuiltDate(ctx context.Context) (*time.Time, error)
}

// StockFetcher acquires raw per-stock market data from external providers.
type StockFetcher interface {
	// FetchTopStocks returns the top companies by market capitalization for
	// a trading day, at most limit rows.
	FetchTopStocks(ctx context.Context, date time.Time, limit int) ([]StockObservation, error)
}

// Cache is the optional read-path cache capability. Implementations must be
// safe for concurrent use; a no-op implementation is always valid since the
// cache is a pure optimization, never a correctness dependency.
type Cache interface {
	// Get reads a key into dest, reporting whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set stores a value under key with a bounded TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
