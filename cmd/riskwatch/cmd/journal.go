package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskwatch/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled alert history",
}

var journalAlertsCmd = &cobra.Command{
	Use:   "alerts <user_id>",
	Short: "List recent alerts for a user, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalAlerts,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalAlertsCmd)

	journalCmd.PersistentFlags().StringVar(&journalDBPath, "db", "./riskwatch.sqlite", "path to SQLite journal DB")
	journalAlertsCmd.Flags().IntVarP(&journalLimit, "limit", "n", 50, "maximum alerts to list")
}

func runJournalAlerts(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	alerts, err := j.ListAlerts(args[0], journalLimit)
	if err != nil {
		return fmt.Errorf("query alerts: %w", err)
	}
	if len(alerts) == 0 {
		fmt.Println("no alerts found")
		return nil
	}

	for _, a := range alerts {
		status := string(a.Status)
		if a.ResolvedAt != nil {
			status += " at " + a.ResolvedAt.Format(time.RFC3339)
		}
		fmt.Printf("%s  [%s] %s/%s: %s (%s)\n",
			a.CreatedAt.Format(time.RFC3339), a.Severity, a.Kind, a.Scope, a.Message, status)
	}
	return nil
}
