// Package cohort narrows a loaded table to active players and to a single player.
package cohort

import (
	"fmt"
	"sort"

	"github.com/pable/go-cr-dashboard/internal/model"
)

// DefaultMinMatches is the activity threshold used when none is configured.
const DefaultMinMatches = 10

// EmptyCohortError means no player reaches the activity threshold.
type EmptyCohortError struct {
	Threshold int
}

func (e *EmptyCohortError) Error() string {
	return fmt.Sprintf("no players have ≥ %d matches; lower --min-matches", e.Threshold)
}

// EmptySelectionError means the selected player has no rows in the cohort.
type EmptySelectionError struct {
	PlayerID string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("no matches found for player %s", e.PlayerID)
}

// CountByPlayer returns the number of matches per player.
func CountByPlayer(tbl *model.Table) map[string]int {
	counts := make(map[string]int)
	for i := range tbl.Rows {
		counts[tbl.Rows[i].PlayerID]++
	}
	return counts
}

// Filter keeps the rows of players with at least threshold matches, in the
// original order, and stamps each kept row with its player's match count.
// A threshold below 1 is treated as 1.
func Filter(tbl *model.Table, threshold int) (*model.Table, error) {
	if threshold < 1 {
		threshold = 1
	}
	counts := CountByPlayer(tbl)

	rows := make([]model.MatchRecord, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		n := counts[r.PlayerID]
		if n < threshold {
			continue
		}
		r.MatchCount = n
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return nil, &EmptyCohortError{Threshold: threshold}
	}
	return tbl.Derive(rows), nil
}

// Players returns the distinct player IDs of tbl in ascending order.
func Players(tbl *model.Table) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range tbl.Rows {
		id := tbl.Rows[i].PlayerID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Select returns the rows of one player, keeping table order.
func Select(tbl *model.Table, playerID string) ([]model.MatchRecord, error) {
	var out []model.MatchRecord
	for i := range tbl.Rows {
		if tbl.Rows[i].PlayerID == playerID {
			out = append(out, tbl.Rows[i])
		}
	}
	if len(out) == 0 {
		return nil, &EmptySelectionError{PlayerID: playerID}
	}
	return out, nil
}
