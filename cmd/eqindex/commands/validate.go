package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate stored observation data",
	Long: `Checks whether stored dates hold the expected observation count.

Without flags, every date holding observations is checked. With --date,
only that date is checked.

Example:
  go run ./cmd/eqindex validate
  go run ./cmd/eqindex validate --date 2025-09-10`,
	RunE: runValidate,
}

var validateDate string

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateDate, "date", "", "single date to validate (YYYY-MM-DD)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	var dates []time.Time
	if validateDate != "" {
		date, err := time.Parse("2006-01-02", validateDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		dates = []time.Time{date}
	} else {
		dates, err = app.ingestor.AvailableDates(ctx)
		if err != nil {
			return fmt.Errorf("list available dates: %w", err)
		}
		if len(dates) == 0 {
			fmt.Println("No observation data stored")
			return nil
		}
	}

	invalid := 0
	for _, date := range dates {
		result := app.ingestor.ValidateDate(ctx, date)
		status := "ok"
		if !result.IsValid {
			status = "INCOMPLETE"
			invalid++
		}
		if !result.HasData {
			status = "NO DATA"
		}
		fmt.Printf("  %s  %4d/%d  %s\n", result.Date.Format("2006-01-02"), result.ActualCount, result.ExpectedCount, status)
	}

	fmt.Printf("Validated %d dates, %d incomplete\n", len(dates), invalid)
	return nil
}
