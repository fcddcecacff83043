package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/report"
)

var summaryTop int

// summaryCmd is the cobra command for displaying a cohort overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the cohort",
	Long: `Display aggregate statistics about the eligible cohort: number of
players and matches, date range, cohort-wide win and return rates, and the
most active players.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 10, "number of most active players to list")
}

func runSummary(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}
	report.PrintCohortOverview(os.Stdout, d, summaryTop)
	return nil
}
