package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/model"
)

var (
	exportOut    string
	exportNoRows bool
)

var exportCmd = &cobra.Command{
	Use:   "export <player>",
	Short: "Export a player's dashboard view as JSON",
	Long: `Write the full view bundle for one player as JSON: player and cohort
statistics, player-vs-cohort deltas and the player's battles. Undefined
statistics are written as null.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportNoRows, "no-rows", false, "omit the battle list")
}

// exportBundle is the JSON document written by export.
type exportBundle struct {
	Source      string `json:"source"`
	GeneratedAt string `json:"generated_at"`
	*model.View
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}
	v, err := d.Select(args[0])
	if err != nil {
		return err
	}
	if exportNoRows {
		v.Rows = nil
	}

	b, err := json.MarshalIndent(exportBundle{
		Source:      d.Source,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		View:        v,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	b = append(b, '\n')

	if exportOut == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(exportOut, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d matches)\n", exportOut, len(v.Rows))
	return nil
}
