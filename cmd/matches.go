package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/aggregator"
	"github.com/pable/go-cr-dashboard/internal/loader"
	"github.com/pable/go-cr-dashboard/internal/model"
	"github.com/pable/go-cr-dashboard/internal/report"
)

var (
	matchesWins   bool
	matchesLosses bool
	matchesSince  string
	matchesLast   int
)

var matchesCmd = &cobra.Command{
	Use:   "matches <player>",
	Short: "List a player's individual battles",
	Long: `Drill down into one player's match log. Filters narrow the listed battles
and the statistics printed below them; the cohort comparison is not affected.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatches,
}

func init() {
	matchesCmd.Flags().BoolVar(&matchesWins, "wins", false, "only wins")
	matchesCmd.Flags().BoolVar(&matchesLosses, "losses", false, "only losses")
	matchesCmd.Flags().StringVar(&matchesSince, "since", "", "only battles on or after this date (YYYY-MM-DD)")
	matchesCmd.Flags().IntVar(&matchesLast, "last", 0, "only the N most recent battles")
	matchesCmd.MarkFlagsMutuallyExclusive("wins", "losses")
}

// matchFilter narrows a player's rows for the drill-down listing.
type matchFilter struct {
	wins, losses bool
	since        time.Time
	last         int
}

func (f matchFilter) apply(rows []model.MatchRecord) []model.MatchRecord {
	var out []model.MatchRecord
	for _, r := range rows {
		if f.wins && !r.IsWin() || f.losses && r.IsWin() {
			continue
		}
		if !f.since.IsZero() && r.BattleTime.Before(f.since) {
			continue
		}
		out = append(out, r)
	}
	if f.last > 0 && len(out) > f.last {
		out = out[len(out)-f.last:]
	}
	return out
}

func runMatches(cmd *cobra.Command, args []string) error {
	f := matchFilter{wins: matchesWins, losses: matchesLosses, last: matchesLast}
	if matchesSince != "" {
		t, err := loader.ParseTime(matchesSince)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		f.since = t
	}

	d, err := loadDashboard()
	if err != nil {
		return err
	}
	v, err := d.Select(args[0])
	if err != nil {
		return err
	}

	rows := f.apply(v.Rows)
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No battles match the filters.")
		return nil
	}
	report.PrintMatches(os.Stdout, rows)

	s := aggregator.Summarize(rows, d.Cohort.HasStreaks)
	fmt.Fprintf(os.Stdout, "\n%d of %d battles  |  win rate %s  |  net trophies %s  |  fast returns %s\n",
		len(rows), len(v.Rows), report.FormatPercent(s.WinRate),
		report.FormatSignedInt(s.NetTrophyChange), report.FormatPercent(s.FastReturnRate))
	return nil
}
