package store

import (
	"context"
	"fmt"
)

// schema holds the idempotent DDL for the three persisted relations.
// Observations key on (date, symbol) and form a replaceable snapshot;
// compositions key on (date, symbol) and performance on (date) alone,
// both guarded by their primary keys so inserts can rely on
// ON CONFLICT DO NOTHING for first-write-wins semantics.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS stock_observations (
		symbol                 VARCHAR(30)  NOT NULL,
		company_name           VARCHAR(100) NOT NULL,
		obs_date               DATE         NOT NULL,
		last_price             DOUBLE PRECISION NOT NULL CHECK (last_price > 0),
		market_cap             DOUBLE PRECISION NOT NULL CHECK (market_cap > 0),
		one_day_return_percent DOUBLE PRECISION NOT NULL,
		data_source            VARCHAR(50)  NOT NULL DEFAULT '',
		created_at             TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		PRIMARY KEY (obs_date, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS index_compositions (
		comp_date      DATE         NOT NULL,
		symbol         VARCHAR(30)  NOT NULL,
		company_name   VARCHAR(100) NOT NULL,
		weight_percent DOUBLE PRECISION NOT NULL,
		market_cap     DOUBLE PRECISION NOT NULL,
		price          DOUBLE PRECISION NOT NULL,
		return_percent DOUBLE PRECISION NOT NULL,
		created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		PRIMARY KEY (comp_date, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS index_performance (
		perf_date                 DATE NOT NULL,
		daily_return_percent      DOUBLE PRECISION NOT NULL,
		cumulative_return_percent DOUBLE PRECISION NOT NULL,
		index_value               DOUBLE PRECISION NOT NULL,
		companies_count           INTEGER NOT NULL,
		created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (perf_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_observations_market_cap
		ON stock_observations (obs_date, market_cap DESC)`,
}

// EnsureSchema creates the persisted relations when missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
