package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart <player> <out.png|out.svg>",
	Short: "Write a player's trophy progression chart",
	Long: `Render starting trophies over match time for one player, with wins and
losses drawn as separate series. The output format follows the file extension.`,
	Args: cobra.ExactArgs(2),
	RunE: runChart,
}

func runChart(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}
	v, err := d.Select(args[0])
	if err != nil {
		return err
	}
	if err := writeChart(args[1], v); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Chart written to %s (%d matches)\n", args[1], len(v.Rows))
	return nil
}
