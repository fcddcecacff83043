package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/chart"
	"github.com/pable/go-cr-dashboard/internal/model"
	"github.com/pable/go-cr-dashboard/internal/report"
)

var (
	showRaw   bool
	showChart string
)

var showCmd = &cobra.Command{
	Use:   "show [player]",
	Short: "Show the dashboard for one player",
	Long: `Print the dashboard for a player: summary tiles and the comparison
against the cohort. Without an argument the first eligible player is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, fmt.Sprintf("include the raw match preview (first %d rows)", report.PreviewRows))
	showCmd.Flags().StringVar(&showChart, "chart", "", "also write the trophy chart to this file (.png or .svg)")
}

func runShow(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}
	var id string
	if len(args) == 1 {
		id = args[0]
	}

	v, err := d.Select(id)
	if err != nil {
		return err
	}
	report.PrintView(os.Stdout, v, showRaw)

	if showChart != "" {
		if err := writeChart(showChart, v); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Chart written to %s\n", showChart)
	}
	return nil
}

// writeChart renders the trophy chart of v to path, picking the format from its extension.
func writeChart(path string, v *model.View) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	err = chart.Render(f, v.Rows, chart.Options{
		Format: chart.FormatFromPath(path),
		Title:  report.Title(v.PlayerID),
	})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close chart file: %w", cerr)
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
