package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
)

// Postgres implements contracts.ObservationStore on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new Postgres-backed observation store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// GetObservations retrieves all observations for a date, market cap
// descending.
func (s *Postgres) GetObservations(ctx context.Context, date time.Time) ([]contracts.StockObservation, error) {
	query := `
		SELECT symbol, company_name, obs_date, last_price, market_cap, one_day_return_percent, data_source
		FROM stock_observations
		WHERE obs_date = $1
		ORDER BY market_cap DESC
	`

	rows, err := s.pool.Query(ctx, query, index.Day(date))
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	obs := make([]contracts.StockObservation, 0)
	for rows.Next() {
		var o contracts.StockObservation
		if err := rows.Scan(&o.Symbol, &o.CompanyName, &o.Date, &o.LastPrice, &o.MarketCap, &o.OneDayReturnPercent, &o.DataSource); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// ReplaceObservations replaces the full observation snapshot for a date in
// a single transaction.
func (s *Postgres) ReplaceObservations(ctx context.Context, date time.Time, obs []contracts.StockObservation) error {
	date = index.Day(date)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM stock_observations WHERE obs_date = $1`, date); err != nil {
		return fmt.Errorf("delete observations: %w", err)
	}

	query := `
		INSERT INTO stock_observations (symbol, company_name, obs_date, last_price, market_cap, one_day_return_percent, data_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, o := range obs {
		if _, err := tx.Exec(ctx, query,
			o.Symbol, o.CompanyName, date, o.LastPrice, o.MarketCap, o.OneDayReturnPercent, o.DataSource,
		); err != nil {
			return fmt.Errorf("insert observation %s: %w", o.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit observations: %w", err)
	}
	return nil
}

// CountObservations returns the observation count for a date.
func (s *Postgres) CountObservations(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_observations WHERE obs_date = $1`,
		index.Day(date),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return count, nil
}

// DatesWithObservations reports which of the given dates hold at least one
// observation.
func (s *Postgres) DatesWithObservations(ctx context.Context, dates []time.Time) (map[time.Time]bool, error) {
	return s.datesPresent(ctx, `SELECT DISTINCT obs_date FROM stock_observations WHERE obs_date = ANY($1)`, dates)
}

// AvailableDates returns all dates holding observations, descending.
func (s *Postgres) AvailableDates(ctx context.Context) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT obs_date FROM stock_observations ORDER BY obs_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query available dates: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, index.Day(d))
	}
	return dates, rows.Err()
}

// GetComposition retrieves the persisted composition for a date, market cap
// descending.
func (s *Postgres) GetComposition(ctx context.Context, date time.Time) ([]contracts.IndexComposition, error) {
	query := `
		SELECT comp_date, symbol, company_name, weight_percent, market_cap, price, return_percent
		FROM index_compositions
		WHERE comp_date = $1
		ORDER BY market_cap DESC
	`

	rows, err := s.pool.Query(ctx, query, index.Day(date))
	if err != nil {
		return nil, fmt.Errorf("query composition: %w", err)
	}
	defer rows.Close()

	comps := make([]contracts.IndexComposition, 0)
	for rows.Next() {
		var c contracts.IndexComposition
		if err := rows.Scan(&c.Date, &c.Symbol, &c.CompanyName, &c.WeightPercent, &c.MarketCap, &c.Price, &c.ReturnPercent); err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// InsertCompositionIfAbsent inserts composition rows, silently skipping any
// (date, symbol) that already exists. First write wins; rows are never
// recomputed or overwritten.
func (s *Postgres) InsertCompositionIfAbsent(ctx context.Context, rows []contracts.IndexComposition) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO index_compositions (comp_date, symbol, company_name, weight_percent, market_cap, price, return_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (comp_date, symbol) DO NOTHING
	`

	for _, c := range rows {
		if _, err := s.pool.Exec(ctx, query,
			index.Day(c.Date), c.Symbol, c.CompanyName, c.WeightPercent, c.MarketCap, c.Price, c.ReturnPercent,
		); err != nil {
			return fmt.Errorf("insert composition %s/%s: %w", c.Date.Format("2006-01-02"), c.Symbol, err)
		}
	}
	return nil
}

// DatesWithCompositions reports which of the given dates hold a persisted
// composition.
func (s *Postgres) DatesWithCompositions(ctx context.Context, dates []time.Time) (map[time.Time]bool, error) {
	return s.datesPresent(ctx, `SELECT DISTINCT comp_date FROM index_compositions WHERE comp_date = ANY($1)`, dates)
}

// GetPerformance retrieves the performance record for a date, or nil when
// none is persisted.
func (s *Postgres) GetPerformance(ctx context.Context, date time.Time) (*contracts.IndexPerformance, error) {
	query := `
		SELECT perf_date, daily_return_percent, cumulative_return_percent, index_value, companies_count
		FROM index_performance
		WHERE perf_date = $1
	`

	var p contracts.IndexPerformance
	err := s.pool.QueryRow(ctx, query, index.Day(date)).Scan(
		&p.Date, &p.DailyReturnPercent, &p.CumulativeReturnPercent, &p.IndexValue, &p.CompaniesCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query performance: %w", err)
	}
	return &p, nil
}

// GetPerformanceRange retrieves performance records between start and end,
// ascending by date.
func (s *Postgres) GetPerformanceRange(ctx context.Context, start, end time.Time) ([]contracts.IndexPerformance, error) {
	query := `
		SELECT perf_date, daily_return_percent, cumulative_return_percent, index_value, companies_count
		FROM index_performance
		WHERE perf_date BETWEEN $1 AND $2
		ORDER BY perf_date ASC
	`

	rows, err := s.pool.Query(ctx, query, index.Day(start), index.Day(end))
	if err != nil {
		return nil, fmt.Errorf("query performance range: %w", err)
	}
	defer rows.Close()

	perfs := make([]contracts.IndexPerformance, 0)
	for rows.Next() {
		var p contracts.IndexPerformance
		if err := rows.Scan(&p.Date, &p.DailyReturnPercent, &p.CumulativeReturnPercent, &p.IndexValue, &p.CompaniesCount); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		perfs = append(perfs, p)
	}
	return perfs, rows.Err()
}

// InsertPerformanceIfAbsent inserts a performance record unless its date
// already has one. First write wins.
func (s *Postgres) InsertPerformanceIfAbsent(ctx context.Context, perf contracts.IndexPerformance) error {
	query := `
		INSERT INTO index_performance (perf_date, daily_return_percent, cumulative_return_percent, index_value, companies_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (perf_date) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query,
		index.Day(perf.Date), perf.DailyReturnPercent, perf.CumulativeReturnPercent, perf.IndexValue, perf.CompaniesCount,
	)
	if err != nil {
		return fmt.Errorf("insert performance %s: %w", perf.Date.Format("2006-01-02"), err)
	}
	return nil
}

// DatesWithPerformance reports which of the given dates hold a persisted
// performance record.
func (s *Postgres) DatesWithPerformance(ctx context.Context, dates []time.Time) (map[time.Time]bool, error) {
	return s.datesPresent(ctx, `SELECT perf_date FROM index_performance WHERE perf_date = ANY($1)`, dates)
}

// LastBuiltDate returns the most recent date with persisted performance,
// or nil when the index has never been built.
func (s *Postgres) LastBuiltDate(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := s.pool.QueryRow(ctx, `SELECT MAX(perf_date) FROM index_performance`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("query last built date: %w", err)
	}
	if last == nil {
		return nil, nil
	}
	d := index.Day(*last)
	return &d, nil
}

// datesPresent runs a membership query over a date list and returns the
// found dates as a set.
func (s *Postgres) datesPresent(ctx context.Context, query string, dates []time.Time) (map[time.Time]bool, error) {
	present := make(map[time.Time]bool, len(dates))
	if len(dates) == 0 {
		return present, nil
	}

	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = index.Day(d)
	}

	rows, err := s.pool.Query(ctx, query, normalized)
	if err != nil {
		return nil, fmt.Errorf("query date presence: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		present[index.Day(d)] = true
	}
	return present, rows.Err()
}
