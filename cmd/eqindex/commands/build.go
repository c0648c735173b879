package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the index over a date range",
	Long: `Runs an incremental index build over [start, end].

Only missing pieces are filled: observations are fetched for days
without them, compositions derived for days lacking one, and the
performance chain extended in date order. Re-running over an
already-built range is a no-op.

Example:
  go run ./cmd/eqindex build --start 2025-09-01
  go run ./cmd/eqindex build --start 2025-09-01 --end 2025-09-12`,
	RunE: runBuild,
}

var (
	buildStart string
	buildEnd   string
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildStart, "start", "", "start date (YYYY-MM-DD, required)")
	buildCmd.Flags().StringVar(&buildEnd, "end", "", "end date (YYYY-MM-DD, defaults to start)")
	buildCmd.MarkFlagRequired("start")
}

func runBuild(cmd *cobra.Command, args []string) error {
	start, err := time.Parse("2006-01-02", buildStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	var end time.Time
	if buildEnd != "" {
		end, err = time.Parse("2006-01-02", buildEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		if end.Before(start) {
			return fmt.Errorf("--end must not precede --start")
		}
	}

	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	result := app.orchestrator.Build(context.Background(), start, end)
	if !result.Success {
		return fmt.Errorf("build failed: %s", result.ErrorMessage)
	}

	fmt.Printf("Build complete: %s .. %s\n", result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))
	fmt.Printf("  Trading days:       %d\n", result.TradingDays)
	fmt.Printf("  Compositions built: %d\n", result.CompositionsBuilt)
	if len(result.FailedFetchDates) > 0 {
		fmt.Printf("  Fetch failures:     %s\n", strings.Join(result.FailedFetchDates, ", "))
	}
	if result.NothingToDo {
		fmt.Println("  Nothing to do, range was already built")
	}
	return nil
}
