// Package jobs holds the scheduled index maintenance jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hedgineer/eqindex/internal/build"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// DailyBuildJob ingests the day's observations after market close and
// extends the index through today.
type DailyBuildJob struct {
	ingestor     *build.Ingestor
	orchestrator *build.Orchestrator
	calendar     *index.Calendar
	schedule     string
	logger       *logger.Logger
}

// NewDailyBuildJob creates the daily ingest-and-build job.
func NewDailyBuildJob(ingestor *build.Ingestor, orchestrator *build.Orchestrator, calendar *index.Calendar, schedule string, log *logger.Logger) *DailyBuildJob {
	return &DailyBuildJob{
		ingestor:     ingestor,
		orchestrator: orchestrator,
		calendar:     calendar,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name.
func (j *DailyBuildJob) Name() string {
	return "daily_build"
}

// Schedule returns the configured cron expression.
func (j *DailyBuildJob) Schedule() string {
	return j.schedule
}

// Run dumps today's observations and builds the index for today.
// Non-trading days are a no-op.
func (j *DailyBuildJob) Run(ctx context.Context) error {
	today := index.Day(time.Now().UTC())

	if !j.calendar.IsTradingDay(today) {
		j.logger.WithField("date", today.Format("2006-01-02")).Info("Not a trading day, skipping daily build")
		return nil
	}

	dump := j.ingestor.RunDailyDump(ctx, today)
	if !dump.Success {
		return fmt.Errorf("daily dump failed: %s", dump.ErrorMessage)
	}

	result := j.orchestrator.Build(ctx, today, today)
	if !result.Success {
		return fmt.Errorf("daily build failed: %s", result.ErrorMessage)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":               today.Format("2006-01-02"),
		"records":            dump.RecordsProcessed,
		"compositions_built": result.CompositionsBuilt,
	}).Info("Daily build completed")

	return nil
}
