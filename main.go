// Package main is the entry point for the crdash CLI tool, which loads a
// Clash Royale match-history dataset and presents per-player dashboards
// compared against the cohort of high-activity players.
package main

import "github.com/pable/go-cr-dashboard/cmd"

func main() {
	cmd.Execute()
}
