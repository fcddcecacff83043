package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/cohort"
	"github.com/pable/go-cr-dashboard/internal/dashboard"
	"github.com/pable/go-cr-dashboard/internal/loader"
)

const (
	envData       = "CRDASH_DATA"
	envMinMatches = "CRDASH_MIN_MATCHES"

	defaultDataPath = "clash_retention_sampled_100k.csv"
)

var (
	dataPath   string
	minMatches int
	dbPath     string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "crdash",
	Short: "Clash Royale player dashboard",
	Long: `Explore the match history of high-activity Clash Royale players.

A match-history file is loaded once, filtered to players with at least
--min-matches battles, and every player view shows win/loss performance,
return behavior and a comparison against the whole cohort.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: resolveConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cError.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".crdash", "matches.db")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataPath, "data", defaultDataPath, "match-history CSV (.csv, .csv.zst, .csv.gz) or snapshot database (env "+envData+")")
	pf.IntVar(&minMatches, "min-matches", cohort.DefaultMinMatches, "minimum matches for a player to join the cohort (env "+envMinMatches+")")
	pf.StringVar(&dbPath, "db", defaultDB, "path to the SQLite snapshot database")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// resolveConfig loads the dotenv file and applies environment defaults to
// flags the user did not set explicitly.
func resolveConfig(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	flags := cmd.Flags()
	if v := os.Getenv(envData); v != "" && !flags.Changed("data") {
		dataPath = v
	}
	if v := os.Getenv(envMinMatches); v != "" && !flags.Changed("min-matches") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s=%q: %w", envMinMatches, v, err)
		}
		minMatches = n
	}
	return nil
}

// loadDashboard loads the configured source and filters it into the cohort.
func loadDashboard() (*dashboard.Dashboard, error) {
	tbl, err := loader.Cached(dataPath)
	if err != nil {
		return nil, err
	}
	if tbl.RejectedGaps > 0 {
		cWarn.Fprintf(os.Stderr, "warning: %d negative or non-finite hours_until_next values treated as missing\n", tbl.RejectedGaps)
	}
	d, err := dashboard.Build(tbl, minMatches)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
