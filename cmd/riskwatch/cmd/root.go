package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "riskwatch",
	Short: "Portfolio risk monitoring for simulated trading accounts",
	Long: `Riskwatch watches trading accounts and raises alerts when risk limits
are crossed.

It provides tools for:
  - Continuous margin-level and portfolio-threshold monitoring
  - Batched per-symbol risk recalculation under tick bursts
  - Alert lifecycle management with anti-spam status tracking
  - Journaling alert and risk history to CSV or SQLite
  - Position sizing and liquidation-distance analytics

Complete documentation is available at https://github.com/rustyeddy/riskwatch`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
