package model

import (
	"encoding/json"
	"time"
)

// Result is the binary outcome of a battle.
type Result int

const (
	Loss Result = 0
	Win  Result = 1
)

func (r Result) String() string {
	if r == Win {
		return "Win"
	}
	return "Loss"
}

// ---- Source rows ----

// MatchRecord is one battle row of the match-history dataset.
type MatchRecord struct {
	Seq      int    `json:"-"` // row index in the source file
	PlayerID string `json:"player_id"`

	BattleTime     time.Time  `json:"battle_time"`
	NextBattleTime *time.Time `json:"next_battle_time"` // nil when the player has no later battle

	Hour   *float64 `json:"hour"` // hour of day; nil when the source value failed coercion
	Result Result   `json:"result"`

	TrophyChange     int `json:"trophy_change"`
	StartingTrophies int `json:"starting_trophies"`

	HoursUntilNext *float64 `json:"hours_until_next"` // nil when absent or rejected by the gap range rule

	// Precomputed upstream; nil when the column is missing or the cell is empty.
	WinStreak  *int `json:"win_streak,omitempty"`
	LossStreak *int `json:"loss_streak,omitempty"`

	// Derived by the cohort filter: total matches of this player in the source.
	MatchCount int `json:"match_count"`
}

// IsWin reports whether the battle was won.
func (r *MatchRecord) IsWin() bool { return r.Result == Win }

// Table is an ordered, read-only set of match records sorted by
// (PlayerID, BattleTime) ascending.
type Table struct {
	Source string
	Rows   []MatchRecord

	HasStreaks bool // win_streak / loss_streak columns present in the source
	HasGaps    bool // hours_until_next present or derivable

	// Gap values dropped because they were negative or not finite.
	RejectedGaps int
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Derive returns a new table sharing t's schema flags with the given rows.
func (t *Table) Derive(rows []MatchRecord) *Table {
	return &Table{
		Source:       t.Source,
		Rows:         rows,
		HasStreaks:   t.HasStreaks,
		HasGaps:      t.HasGaps,
		RejectedGaps: t.RejectedGaps,
	}
}

// ---- Derived statistics ----

// Metric is a statistic that may be undefined. The zero value is undefined.
type Metric struct {
	Value float64
	Valid bool
}

// Some returns a defined metric.
func Some(v float64) Metric { return Metric{Value: v, Valid: true} }

// None returns an undefined metric.
func None() Metric { return Metric{} }

// Get returns the value and whether it is defined.
func (m Metric) Get() (float64, bool) { return m.Value, m.Valid }

// MarshalJSON encodes an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// Summary holds the statistics computed identically for the cohort and for one player.
type Summary struct {
	Matches int `json:"matches"`
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`

	WinRate        Metric `json:"win_rate"`         // percent
	FastReturnRate Metric `json:"fast_return_rate"` // percent of gap samples under one hour
	AvgGapHours    Metric `json:"avg_gap_hours"`
	GapSamples     int    `json:"gap_samples"`

	NetTrophyChange int    `json:"net_trophy_change"`
	AvgTrophyChange Metric `json:"avg_trophy_change"`

	LongestWinStreak  int `json:"longest_win_streak"`
	LongestLossStreak int `json:"longest_loss_streak"`
}

// Unit describes how a delta is expressed.
type Unit int

const (
	UnitPercentPoints Unit = iota
	UnitHours
	UnitTrophies
)

// MarshalText encodes the unit by its short name.
func (u Unit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u Unit) String() string {
	switch u {
	case UnitPercentPoints:
		return "pp"
	case UnitHours:
		return "hrs"
	default:
		return "trophies"
	}
}

// Delta is a player-vs-cohort comparison of one statistic.
type Delta struct {
	Name   string `json:"name"`
	Unit   Unit   `json:"unit"`
	Player Metric `json:"player"`
	Cohort Metric `json:"cohort"`
	Diff   Metric `json:"diff"` // Player - Cohort; undefined when either side is
}

// Comparison holds every player-vs-cohort delta.
type Comparison struct {
	WinRate         Delta `json:"win_rate"`
	FastReturnRate  Delta `json:"fast_return_rate"`
	AvgGapHours     Delta `json:"avg_gap_hours"`
	AvgTrophyChange Delta `json:"avg_trophy_change"`
}

// View is the result bundle of a single player selection.
type View struct {
	PlayerID        string `json:"player_id"`
	Threshold       int    `json:"min_matches"`
	EligiblePlayers int    `json:"eligible_players"`

	Rows       []MatchRecord `json:"matches,omitempty"`
	Player     Summary       `json:"player"`
	Cohort     Summary       `json:"cohort"`
	Comparison Comparison    `json:"comparison"`
}
