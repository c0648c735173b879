package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eqindex",
	Short: "Equal-weight top-100 market cap index service",
	Long: `eqindex builds and serves a daily equal-weight stock index.

The index holds the top companies by market capitalization, each at an
equal weight, rebalanced every trading day. Daily returns are compounded
into a continuous index value series.

Usage:
  go run ./cmd/eqindex [command]

Examples:
  go run ./cmd/eqindex migrate
  go run ./cmd/eqindex ingest --date 2025-09-10
  go run ./cmd/eqindex build --start 2025-09-01 --end 2025-09-12
  go run ./cmd/eqindex api
  go run ./cmd/eqindex scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
