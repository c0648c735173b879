package query

import (
	"context"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// Reader serves composition, performance and change queries through the
// cache. It never writes authoritative state: cache entries are
// disposable and rebuildable from the store at any time, and every cache
// failure is absorbed, never surfaced to callers.
type Reader struct {
	store    contracts.ObservationStore
	cache    contracts.Cache
	calendar *index.Calendar
	differ   *index.Differ
	ttl      time.Duration
	logger   *logger.Logger
}

// NewReader creates a cache-aware read path. ttl bounds the lifetime of
// populated cache entries.
func NewReader(store contracts.ObservationStore, cache contracts.Cache, calendar *index.Calendar, differ *index.Differ, ttl time.Duration, log *logger.Logger) *Reader {
	return &Reader{
		store:    store,
		cache:    cache,
		calendar: calendar,
		differ:   differ,
		ttl:      ttl,
		logger:   log.WithField("module", "query"),
	}
}

// GetComposition returns the persisted composition for a date. Missing
// data is an empty result, never an error.
func (r *Reader) GetComposition(ctx context.Context, date time.Time) ([]contracts.IndexComposition, error) {
	date = index.Day(date)
	key := cacheKey(keyPrefixComposition, map[string]time.Time{"date": date})

	var cached []contracts.IndexComposition
	if r.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	composition, err := r.store.GetComposition(ctx, date)
	if err != nil {
		return nil, err
	}

	if len(composition) > 0 {
		r.cacheSet(ctx, key, composition)
	}
	return composition, nil
}

// GetPerformance returns performance records in [start, end], ascending.
func (r *Reader) GetPerformance(ctx context.Context, start, end time.Time) ([]contracts.IndexPerformance, error) {
	start, end = index.Day(start), index.Day(end)
	key := cacheKey(keyPrefixPerformance, map[string]time.Time{
		"start_date": start,
		"end_date":   end,
	})

	var cached []contracts.IndexPerformance
	if r.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	performance, err := r.store.GetPerformanceRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if len(performance) > 0 {
		r.cacheSet(ctx, key, performance)
	}
	return performance, nil
}

// GetCompositionChanges derives entered/exited changes across [start, end]
// by folding over the range's trading days, carrying the previous day's
// symbol set. The first day with data yields no changes.
func (r *Reader) GetCompositionChanges(ctx context.Context, start, end time.Time) ([]contracts.CompositionChange, error) {
	start, end = index.Day(start), index.Day(end)
	key := cacheKey(keyPrefixChanges, map[string]time.Time{
		"start_date": start,
		"end_date":   end,
	})

	var cached []contracts.CompositionChange
	if r.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	changes := make([]contracts.CompositionChange, 0)
	var previousSymbols map[string]bool

	for _, day := range r.calendar.TradingDaysInRange(start, end) {
		composition, err := r.store.GetComposition(ctx, day)
		if err != nil {
			return nil, err
		}
		if len(composition) == 0 {
			continue
		}

		changes = append(changes, r.differ.Diff(day, previousSymbols, composition)...)
		previousSymbols = index.SymbolSet(composition)
	}

	if len(changes) > 0 {
		r.cacheSet(ctx, key, changes)
	}
	return changes, nil
}

// cacheGet reads a key, absorbing any cache error as a miss.
func (r *Reader) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	found, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return found
}

// cacheSet populates a key, absorbing any cache error.
func (r *Reader) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
