package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/dashboard"
	"github.com/pable/go-cr-dashboard/internal/model"
	"github.com/pable/go-cr-dashboard/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session over the loaded cohort and switch between players. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession holds the REPL state: the cohort and the current view.
// Every selection change rebuilds the view from scratch.
type shellSession struct {
	dash *dashboard.Dashboard
	view *model.View
	out  io.Writer
}

func (s *shellSession) use(id string) error {
	v, err := s.dash.Select(id)
	if err != nil {
		return err
	}
	s.view = v
	return nil
}

func runShell(_ *cobra.Command, _ []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}
	s := &shellSession{dash: d, out: os.Stdout}
	if err := s.use(""); err != nil {
		return err
	}

	cGreeting.Println("crdash shell")
	cMuted.Println(report.CohortLine(d.Threshold, len(d.Players)))
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print(s.view.PlayerID)
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "players":
			report.PrintPlayers(s.out, d.Counts())
		case "use":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: use <player>")
				continue
			}
			if err := s.use(args[0]); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			report.PrintView(s.out, s.view, false)
		case "next", "prev":
			step := 1
			if cmd == "prev" {
				step = -1
			}
			if err := s.use(d.Neighbor(s.view.PlayerID, step)); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			report.PrintView(s.out, s.view, false)
		case "show":
			report.PrintView(s.out, s.view, false)
		case "raw":
			report.PrintRawPreview(s.out, s.view.Rows, report.PreviewRows)
		case "summary":
			report.PrintCohortOverview(s.out, d, 10)
		case "chart":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: chart <out.png|out.svg>")
				continue
			}
			if err := writeChart(args[0], s.view); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			cMuted.Printf("chart written to %s\n", args[0])
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"players", "list eligible players with match counts"},
		{"use <player>", "select a player and show their dashboard"},
		{"next / prev", "select the next or previous player in sorted order"},
		{"show", "show the current player's dashboard"},
		{"raw", fmt.Sprintf("show the first %d raw matches", report.PreviewRows)},
		{"chart <file>", "write the trophy chart (.png or .svg)"},
		{"summary", "cohort overview"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	cHeader.Println("commands")
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-20s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}
