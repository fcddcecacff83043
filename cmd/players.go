package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/report"
)

var playersByMatches bool

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List players eligible for the dashboard",
	Long:  "List every player with at least --min-matches battles, sorted by player tag, with their match counts.",
	Args:  cobra.NoArgs,
	RunE:  runPlayers,
}

func init() {
	playersCmd.Flags().BoolVar(&playersByMatches, "by-matches", false, "sort by match count instead of player tag")
}

func runPlayers(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}

	players := d.Counts()
	if playersByMatches {
		players = d.MostActive(0)
	}

	fmt.Fprintln(os.Stdout, report.CohortLine(d.Threshold, len(d.Players)))
	report.PrintPlayers(os.Stdout, players)
	return nil
}
