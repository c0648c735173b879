package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hedgineer/eqindex/internal/build"
	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// Catchup builds everything missed since the last completed build, run
// once at scheduler startup. When the store is empty it reaches back
// backfillDays calendar days.
type Catchup struct {
	store        contracts.ObservationStore
	orchestrator *build.Orchestrator
	calendar     *index.Calendar
	backfillDays int
	logger       *logger.Logger
}

// NewCatchup creates a startup catch-up runner.
func NewCatchup(store contracts.ObservationStore, orchestrator *build.Orchestrator, calendar *index.Calendar, backfillDays int, log *logger.Logger) *Catchup {
	return &Catchup{
		store:        store,
		orchestrator: orchestrator,
		calendar:     calendar,
		backfillDays: backfillDays,
		logger:       log.WithField("module", "catchup"),
	}
}

// Run builds from the day after the last built date through today.
func (c *Catchup) Run(ctx context.Context) error {
	today := index.Day(time.Now().UTC())

	last, err := c.store.LastBuiltDate(ctx)
	if err != nil {
		return fmt.Errorf("resolve last built date: %w", err)
	}

	var start time.Time
	if last == nil {
		start = today.AddDate(0, 0, -c.backfillDays)
		c.logger.WithField("start", start.Format("2006-01-02")).Info("Empty store, backfilling from scratch")
	} else {
		start = last.AddDate(0, 0, 1)
		if start.After(today) {
			c.logger.Info("Index already current, nothing to catch up")
			return nil
		}
	}

	result := c.orchestrator.Build(ctx, start, today)
	if !result.Success {
		return fmt.Errorf("catch-up build failed: %s", result.ErrorMessage)
	}

	c.logger.WithFields(map[string]interface{}{
		"start":              start.Format("2006-01-02"),
		"end":                today.Format("2006-01-02"),
		"trading_days":       result.TradingDays,
		"compositions_built": result.CompositionsBuilt,
		"nothing_to_do":      result.NothingToDo,
	}).Info("Catch-up build completed")

	return nil
}
