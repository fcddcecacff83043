package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pable/go-cr-dashboard/internal/dashboard"
	"github.com/pable/go-cr-dashboard/internal/model"
)

// PreviewRows is the number of raw rows shown in the match preview.
const PreviewRows = 50

const timeFormat = "2006-01-02 15:04"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintHeader prints the dashboard title, caption and cohort line.
func PrintHeader(w io.Writer, v *model.View) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n\n", Title(v.PlayerID), Caption, CohortLine(v.Threshold, v.EligiblePlayers))
}

// PrintSummaryTiles prints the five summary tiles as a single-row table.
func PrintSummaryTiles(w io.Writer, s model.Summary) {
	tiles := SummaryTiles(s)
	table := newTable(w)
	header := make([]any, len(tiles))
	row := make([]any, len(tiles))
	for i, t := range tiles {
		header[i] = t.Label
		row[i] = t.Value
	}
	table.Header(header...)
	table.Append(row...)
	table.Render()
}

// PrintComparison prints the player-vs-cohort tiles.
// Columns: METRIC | PLAYER | COHORT | DELTA
func PrintComparison(w io.Writer, c model.Comparison) {
	table := newTable(w)
	table.Header("METRIC", "PLAYER", "COHORT", "DELTA")
	for _, t := range ComparisonTiles(c) {
		table.Append(t.Label, t.Value, t.Cohort, t.Delta)
	}
	table.Render()
}

// PrintView prints the full text dashboard for one player. The raw preview is
// printed only when raw is set.
func PrintView(w io.Writer, v *model.View, raw bool) {
	PrintHeader(w, v)
	if raw {
		fmt.Fprintf(w, "Raw match data for this player (first %d rows)\n", PreviewRows)
		PrintRawPreview(w, v.Rows, PreviewRows)
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "Player Summary")
	PrintSummaryTiles(w, v.Player)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "How does this player compare to similar players?")
	PrintComparison(w, v.Comparison)
	if v.Player.LongestWinStreak > 0 || v.Player.LongestLossStreak > 0 {
		fmt.Fprintf(w, "Longest win streak: %d  |  Longest loss streak: %d\n",
			v.Player.LongestWinStreak, v.Player.LongestLossStreak)
	}
}

// PrintRawPreview prints up to limit rows with every source column.
// A limit of zero prints all rows.
func PrintRawPreview(w io.Writer, rows []model.MatchRecord, limit int) {
	shown := rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	table := newTable(w)
	table.Header(
		"playerId", "battleTime", "next_battleTime", "hour", "result", "TrophyChange",
		"StartingTrophies", "hours_until_next", "win_streak", "loss_streak", "match_count",
	)
	for _, r := range shown {
		next := Placeholder
		if r.NextBattleTime != nil {
			next = r.NextBattleTime.Format(timeFormat)
		}
		table.Append(
			r.PlayerID,
			r.BattleTime.Format(timeFormat),
			next,
			optFloat(r.Hour, "%.0f"),
			strconv.Itoa(int(r.Result)),
			strconv.Itoa(r.TrophyChange),
			strconv.Itoa(r.StartingTrophies),
			optFloat(r.HoursUntilNext, "%.2f"),
			optInt(r.WinStreak),
			optInt(r.LossStreak),
			strconv.Itoa(r.MatchCount),
		)
	}
	table.Render()
	if len(shown) < len(rows) {
		fmt.Fprintf(w, "(showing %d of %s rows)\n", len(shown), FormatThousands(len(rows)))
	}
}

// PrintMatches prints a compact match log, one battle per row.
// Columns: # | BATTLE TIME | RESULT | START | CHANGE | NEXT IN
func PrintMatches(w io.Writer, rows []model.MatchRecord) {
	table := newTable(w)
	table.Header("#", "BATTLE TIME", "RESULT", "START", "CHANGE", "NEXT IN")
	for i, r := range rows {
		table.Append(
			strconv.Itoa(i+1),
			r.BattleTime.Format(timeFormat),
			r.Result.String(),
			strconv.Itoa(r.StartingTrophies),
			FormatSignedInt(r.TrophyChange),
			optFloat(r.HoursUntilNext, "%.2fh"),
		)
	}
	table.Render()
}

// PrintPlayers prints the eligible players with their match counts.
func PrintPlayers(w io.Writer, players []dashboard.PlayerCount) {
	table := newTable(w)
	table.Header("#", "PLAYER", "MATCHES")
	for i, p := range players {
		table.Append(strconv.Itoa(i+1), p.PlayerID, strconv.Itoa(p.Matches))
	}
	table.Render()
}

// PrintCohortOverview prints cohort size, date range, cohort statistics and
// the top most active players.
func PrintCohortOverview(w io.Writer, d *dashboard.Dashboard, top int) {
	fmt.Fprintf(w, "\nSource: %s\n%s\n", d.Source, CohortLine(d.Threshold, len(d.Players)))
	if rows := d.Cohort.Rows; len(rows) > 0 {
		first, last := rows[0].BattleTime, rows[0].BattleTime
		for _, r := range rows[1:] {
			if r.BattleTime.Before(first) {
				first = r.BattleTime
			}
			if r.BattleTime.After(last) {
				last = r.BattleTime
			}
		}
		fmt.Fprintf(w, "Matches: %s  |  %s → %s\n",
			FormatThousands(len(rows)), first.Format(timeFormat), last.Format(timeFormat))
	}
	if d.Cohort.RejectedGaps > 0 {
		fmt.Fprintf(w, "Rejected gap values: %s\n", FormatThousands(d.Cohort.RejectedGaps))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Cohort")
	PrintSummaryTiles(w, d.CohortStats)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Most active players (top %d)\n", top)
	PrintPlayers(w, d.MostActive(top))
}
