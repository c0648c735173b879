package build

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
)

// memStore is an in-memory ObservationStore honoring the same semantics
// as the SQL store: full-day replace for observations, first-write-wins
// for compositions and performance.
type memStore struct {
	observations map[time.Time][]contracts.StockObservation
	compositions map[time.Time][]contracts.IndexComposition
	performance  map[time.Time]contracts.IndexPerformance

	compositionInserts int
	performanceInserts int
}

func newMemStore() *memStore {
	return &memStore{
		observations: make(map[time.Time][]contracts.StockObservation),
		compositions: make(map[time.Time][]contracts.IndexComposition),
		performance:  make(map[time.Time]contracts.IndexPerformance),
	}
}

func (s *memStore) GetObservations(ctx context.Context, date time.Time) ([]contracts.StockObservation, error) {
	return s.observations[index.Day(date)], nil
}

func (s *memStore) ReplaceObservations(ctx context.Context, date time.Time, obs []contracts.StockObservation) error {
	s.observations[index.Day(date)] = obs
	return nil
}

func (s *memStore) CountObservations(ctx context.Context, date time.Time) (int, error) {
	return len(s.observations[index.Day(date)]), nil
}

func (s *memStore) DatesWithObservations(ctx context.Context, dates []time.Time) (map[time.Time]bool, error) {
	present := make(map[time.Time]bool)
	for _, d := range dates {
		if len(s.observations[index.Day(d)]) > 0 {
			present[index.Day(d)] = true
		}
	}
	return present, nil
}

func (s *memStore) AvailableDates(ctx context.Context) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(s.observations))
	for d := range s.observations {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

func (s *memStore) GetComposition(ctx context.Context, date time.Time) ([]contracts.IndexComposition, error) {
	return s.compositions[index.Day(date)], nil
}

func (s *memStore) InsertCompositionIfAbsent(ctx context.Context, rows []contracts.IndexComposition) error {
	if len(rows) == 0 {
		return nil
	}
	day := index.Day(rows[0].Date)
	if _, exists := s.compositions[day]; exists {
		return nil
	}
	s.compositions[day] = rows
	s.compositionInserts++
	return nil
}

func (s *memStore) DatesWithCompositions(ctx context.Context, dates []time.Time) (map[time.Time]bool, error) {
	present := make(map[time.Time]bool)
	for _, d := range dates {
		if len(s.compositions[index.Day(d)]) > 0 {
			present[index.Day(d)] = true
		}
	}
	return present, nil
}

func (s *memStore) GetPerformance(ctx context.Context, date time.Time) (*contracts.IndexPerformance, error) {
	if p, ok := s.performance[index.Day(date)]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *memStore) GetPerformanceRange(ctx context.Context, start, end time.Time) ([]contracts.IndexPerformance, error) {
	out := make([]contracts.IndexPerformance, 0)
	for d, p := range s.performance {
		if !d.Before(index.Day(start)) && !d.After(index.Day(end)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memStore) InsertPerformanceIfAbsent(ctx context.Context, perf contracts.IndexPerformance) error {
	day := index.Day(perf.Date)
	if _, exists := s.performance[day]; exists {
		return nil
	}
	s.performance[day] = perf
	s.performanceInserts++
	return nil
}

func (s *memStore) DatesWithPerformance(ctx context.Context, dates []time.Time) (map[time.Time]bool, error) {
	present := make(map[time.Time]bool)
	for _, d := range dates {
		if _, ok := s.performance[index.Day(d)]; ok {
			present[index.Day(d)] = true
		}
	}
	return present, nil
}

func (s *memStore) LastBuiltDate(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	for d := range s.performance {
		if last == nil || d.After(*last) {
			day := d
			last = &day
		}
	}
	return last, nil
}

// fakeFetcher serves canned observations per date and counts calls.
// Dates listed in failDates return an error.
type fakeFetcher struct {
	byDate    map[time.Time][]contracts.StockObservation
	failDates map[time.Time]bool
	calls     int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		byDate:    make(map[time.Time][]contracts.StockObservation),
		failDates: make(map[time.Time]bool),
	}
}

func (f *fakeFetcher) FetchTopStocks(ctx context.Context, date time.Time, limit int) ([]contracts.StockObservation, error) {
	f.calls++
	day := index.Day(date)
	if f.failDates[day] {
		return nil, fmt.Errorf("provider unavailable for %s", day.Format("2006-01-02"))
	}
	obs := f.byDate[day]
	if len(obs) > limit {
		obs = obs[:limit]
	}
	return obs, nil
}

// stock builds one observation for tests.
func stock(symbol string, date time.Time, marketCap, price, ret float64) contracts.StockObservation {
	return contracts.StockObservation{
		Symbol:              symbol,
		CompanyName:         symbol + " Inc.",
		Date:                index.Day(date),
		LastPrice:           price,
		MarketCap:           marketCap,
		OneDayReturnPercent: ret,
		DataSource:          "test",
	}
}
