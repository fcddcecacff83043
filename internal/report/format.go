package report

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pable/go-cr-dashboard/internal/model"
)

// Placeholders for undefined statistics.
const (
	NA          = "N/A"
	NoDelta     = "–"
	Placeholder = "—" // empty table cell
)

// Caption is the subtitle shown under every dashboard title.
const Caption = "Match history, win/loss performance, and return behavior for a single high-activity player."

// Title returns the dashboard heading for a player.
func Title(playerID string) string {
	return "Clash Royale Player Dashboard – " + playerID
}

// CohortLine describes the size of the eligible cohort.
func CohortLine(threshold, players int) string {
	return fmt.Sprintf("Players with ≥ %d matches: %s", threshold, FormatThousands(players))
}

// FormatThousands renders n with comma thousands separators.
func FormatThousands(n int) string {
	return humanize.Comma(int64(n))
}

// FormatPercent renders a rate such as "60.0%".
func FormatPercent(m model.Metric) string {
	if !m.Valid {
		return NA
	}
	return fmt.Sprintf("%.1f%%", m.Value)
}

// FormatHours renders a duration in hours such as "2.50 hrs".
func FormatHours(m model.Metric) string {
	if !m.Valid {
		return NA
	}
	return fmt.Sprintf("%.2f hrs", m.Value)
}

// FormatSignedInt renders an always-signed integer.
func FormatSignedInt(n int) string {
	return fmt.Sprintf("%+d", n)
}

// FormatSigned renders an always-signed value with one decimal.
func FormatSigned(m model.Metric) string {
	if !m.Valid {
		return NA
	}
	return fmt.Sprintf("%+.1f", m.Value)
}

// FormatDelta renders a player-vs-cohort difference in its unit.
func FormatDelta(d model.Delta) string {
	if !d.Diff.Valid {
		return NoDelta
	}
	switch d.Unit {
	case model.UnitPercentPoints:
		return fmt.Sprintf("%+.1f pp", d.Diff.Value)
	case model.UnitHours:
		return fmt.Sprintf("%+.2f hrs", d.Diff.Value)
	default:
		return fmt.Sprintf("%+.1f trophies", d.Diff.Value)
	}
}

// formatValue renders one side of a delta in the delta's unit.
func formatValue(unit model.Unit, m model.Metric) string {
	switch unit {
	case model.UnitPercentPoints:
		return FormatPercent(m)
	case model.UnitHours:
		return FormatHours(m)
	default:
		return FormatSigned(m)
	}
}

// Tile is one labelled figure of the dashboard.
type Tile struct {
	Label  string
	Value  string
	Cohort string // comparison tiles only
	Delta  string // comparison tiles only
}

// SummaryTiles returns the five headline tiles of a player summary.
func SummaryTiles(s model.Summary) []Tile {
	return []Tile{
		{Label: "Total Matches", Value: strconv.Itoa(s.Matches)},
		{Label: "Win Rate", Value: FormatPercent(s.WinRate)},
		{Label: "Fast Return Rate (<1 hr)", Value: FormatPercent(s.FastReturnRate)},
		{Label: "Net Trophy Change", Value: FormatSignedInt(s.NetTrophyChange)},
		{Label: "Avg Trophy Change / Match", Value: FormatSigned(s.AvgTrophyChange)},
	}
}

// ComparisonTiles returns the three player-vs-cohort tiles.
func ComparisonTiles(c model.Comparison) []Tile {
	tile := func(label string, d model.Delta) Tile {
		return Tile{
			Label:  label,
			Value:  formatValue(d.Unit, d.Player),
			Cohort: formatValue(d.Unit, d.Cohort),
			Delta:  FormatDelta(d),
		}
	}
	return []Tile{
		tile("Win Rate vs Cohort", c.WinRate),
		tile("Fast Return Rate (<1 hr) vs Cohort", c.FastReturnRate),
		tile("Avg Return Time vs Cohort", c.AvgGapHours),
	}
}

// optFloat renders an optional value with the given verb, or the empty-cell placeholder.
func optFloat(v *float64, verb string) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf(verb, *v)
}

func optInt(v *int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.Itoa(*v)
}
