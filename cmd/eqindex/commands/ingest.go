package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest market data observations",
	Long: `Fetches and stores the top-stock snapshot for one date or a range.

A date that already holds observations is left untouched. With --start
and --end, every trading day in the range is ingested and per-date
failures do not stop the run.

Example:
  go run ./cmd/eqindex ingest --date 2025-09-10
  go run ./cmd/eqindex ingest --start 2025-09-01 --end 2025-09-12`,
	RunE: runIngest,
}

var (
	ingestDate  string
	ingestStart string
	ingestEnd   string
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "single date to ingest (YYYY-MM-DD, defaults to today)")
	ingestCmd.Flags().StringVar(&ingestStart, "start", "", "range start (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&ingestEnd, "end", "", "range end (YYYY-MM-DD)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	if ingestStart != "" || ingestEnd != "" {
		if ingestStart == "" || ingestEnd == "" {
			return fmt.Errorf("--start and --end must be given together")
		}
		start, err := time.Parse("2006-01-02", ingestStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := time.Parse("2006-01-02", ingestEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		results := app.ingestor.RunBackfill(ctx, start, end)
		failed := 0
		for _, r := range results {
			status := "ok"
			if !r.Success {
				status = "FAILED: " + r.ErrorMessage
				failed++
			}
			fmt.Printf("  %s  %4d records  %.1fs  %s\n", r.Date.Format("2006-01-02"), r.RecordsProcessed, r.Duration, status)
		}
		fmt.Printf("Backfill complete: %d dates, %d failed\n", len(results), failed)
		if failed > 0 {
			return fmt.Errorf("%d dates failed to ingest", failed)
		}
		return nil
	}

	date := time.Now().UTC()
	if ingestDate != "" {
		date, err = time.Parse("2006-01-02", ingestDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	result := app.ingestor.RunDailyDump(ctx, date)
	if !result.Success {
		return fmt.Errorf("ingest failed: %s", result.ErrorMessage)
	}

	fmt.Printf("Ingested %d records for %s (%.1fs)\n", result.RecordsProcessed, result.Date.Format("2006-01-02"), result.Duration)
	return nil
}
