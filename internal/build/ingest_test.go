package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/logger"
)

func newIngestor(store contracts.ObservationStore, fetcher contracts.StockFetcher, topN int) *Ingestor {
	return NewIngestor(store, fetcher, index.NewCalendar(), topN, logger.NewNop())
}

func TestRunDailyDump_StoresObservations(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher()
	seedFetcher(fetcher, day(2025, 9, 10))
	ing := newIngestor(store, fetcher, 3)

	result := ing.RunDailyDump(context.Background(), day(2025, 9, 10))

	require.True(t, result.Success)
	assert.Equal(t, "daily_dump", result.Operation)
	assert.Equal(t, 3, result.RecordsProcessed)
	assert.Len(t, store.observations[day(2025, 9, 10)], 3)
}

func TestRunDailyDump_SkipsExistingDate(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher()
	seedFetcher(fetcher, day(2025, 9, 10))
	ing := newIngestor(store, fetcher, 3)

	first := ing.RunDailyDump(context.Background(), day(2025, 9, 10))
	require.True(t, first.Success)
	calls := fetcher.calls

	second := ing.RunDailyDump(context.Background(), day(2025, 9, 10))

	require.True(t, second.Success)
	assert.Equal(t, 3, second.RecordsProcessed)
	assert.Equal(t, calls, fetcher.calls, "existing date must not be refetched")
}

func TestRunDailyDump_FetchFailure(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher()
	fetcher.failDates[day(2025, 9, 10)] = true
	ing := newIngestor(store, fetcher, 3)

	result := ing.RunDailyDump(context.Background(), day(2025, 9, 10))

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
	assert.Empty(t, store.observations[day(2025, 9, 10)])
}

func TestRunBackfill_ContinuesPastFailures(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher()
	seedFetcher(fetcher, day(2025, 9, 10), day(2025, 9, 12))
	fetcher.failDates[day(2025, 9, 11)] = true
	ing := newIngestor(store, fetcher, 3)

	results := ing.RunBackfill(context.Background(), day(2025, 9, 10), day(2025, 9, 12))

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Len(t, store.observations[day(2025, 9, 12)], 3)
}

func TestValidateDate(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher()
	seedFetcher(fetcher, day(2025, 9, 10))
	ing := newIngestor(store, fetcher, 3)
	ing.RunDailyDump(context.Background(), day(2025, 9, 10))

	valid := ing.ValidateDate(context.Background(), day(2025, 9, 10))
	assert.True(t, valid.IsValid)
	assert.True(t, valid.HasData)
	assert.Equal(t, 3, valid.ActualCount)
	assert.Equal(t, 3, valid.ExpectedCount)

	empty := ing.ValidateDate(context.Background(), day(2025, 9, 11))
	assert.False(t, empty.IsValid)
	assert.False(t, empty.HasData)
	assert.Zero(t, empty.ActualCount)
}
