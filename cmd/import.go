package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/loader"
	"github.com/pable/go-cr-dashboard/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Store a match-history CSV as a SQLite snapshot",
	Long: `Load a match-history CSV and store it in the snapshot database (--db).
The snapshot replaces any previous one and can be used as --data, or queried
with 'crdash sql'.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	tbl, err := loader.Load(args[0])
	if err != nil {
		return err
	}
	if tbl.RejectedGaps > 0 {
		cWarn.Fprintf(os.Stderr, "warning: %d negative or non-finite hours_until_next values treated as missing\n", tbl.RejectedGaps)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Storing %d matches from %s...\n", tbl.Len(), args[0])
	if err := db.ReplaceMatches(tbl); err != nil {
		return fmt.Errorf("store matches: %w", err)
	}

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Imported %d matches from %d players (%s → %s) into %s\n",
		ov.Matches, ov.Players, ov.Earliest, ov.Latest, dbPath)
	return nil
}
