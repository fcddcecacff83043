// Package dashboard wires the pipeline stages together: a loaded table is
// filtered into the active cohort once, and every player selection produces a
// fresh view with player statistics and player-vs-cohort deltas.
package dashboard

import (
	"sort"

	"github.com/pable/go-cr-dashboard/internal/aggregator"
	"github.com/pable/go-cr-dashboard/internal/cohort"
	"github.com/pable/go-cr-dashboard/internal/model"
)

// Dashboard is the cohort-level state shared by every selection.
type Dashboard struct {
	Source    string
	Threshold int

	Cohort      *model.Table
	CohortStats model.Summary
	Players     []string // eligible player IDs, sorted
}

// Build filters tbl to players with at least threshold matches and computes
// the cohort statistics.
func Build(tbl *model.Table, threshold int) (*Dashboard, error) {
	if threshold < 1 {
		threshold = 1
	}
	filtered, err := cohort.Filter(tbl, threshold)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Source:      tbl.Source,
		Threshold:   threshold,
		Cohort:      filtered,
		CohortStats: aggregator.Summarize(filtered.Rows, filtered.HasStreaks),
		Players:     cohort.Players(filtered),
	}, nil
}

// DefaultPlayer returns the first eligible player in sorted order.
func (d *Dashboard) DefaultPlayer() string {
	if len(d.Players) == 0 {
		return ""
	}
	return d.Players[0]
}

// Has reports whether id is an eligible player.
func (d *Dashboard) Has(id string) bool {
	i := sort.SearchStrings(d.Players, id)
	return i < len(d.Players) && d.Players[i] == id
}

// Neighbor returns the player offset steps away from id in sorted order,
// wrapping around at either end. An unknown id yields the default player.
func (d *Dashboard) Neighbor(id string, offset int) string {
	n := len(d.Players)
	if n == 0 {
		return ""
	}
	i := sort.SearchStrings(d.Players, id)
	if i >= n || d.Players[i] != id {
		return d.DefaultPlayer()
	}
	return d.Players[((i+offset)%n+n)%n]
}

// Select builds the view for one player. An empty id selects the default player.
func (d *Dashboard) Select(id string) (*model.View, error) {
	if id == "" {
		id = d.DefaultPlayer()
	}
	rows, err := cohort.Select(d.Cohort, id)
	if err != nil {
		return nil, err
	}
	player := aggregator.Summarize(rows, d.Cohort.HasStreaks)
	return &model.View{
		PlayerID:        id,
		Threshold:       d.Threshold,
		EligiblePlayers: len(d.Players),
		Rows:            rows,
		Player:          player,
		Cohort:          d.CohortStats,
		Comparison:      aggregator.Compare(player, d.CohortStats),
	}, nil
}

// Counts returns every eligible player with their match count, sorted by player ID.
func (d *Dashboard) Counts() []PlayerCount {
	counts := cohort.CountByPlayer(d.Cohort)
	out := make([]PlayerCount, 0, len(d.Players))
	for _, id := range d.Players {
		out = append(out, PlayerCount{PlayerID: id, Matches: counts[id]})
	}
	return out
}

// MostActive returns up to n eligible players ordered by match count
// descending, ties broken by player ID. n <= 0 returns all players.
func (d *Dashboard) MostActive(n int) []PlayerCount {
	out := d.Counts()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Matches > out[j].Matches
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PlayerCount pairs a player with their match count.
type PlayerCount struct {
	PlayerID string `json:"player_id"`
	Matches  int    `json:"matches"`
}
