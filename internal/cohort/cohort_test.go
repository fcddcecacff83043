package cohort

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pable/go-cr-dashboard/internal/model"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// makeTable builds a sorted table where player "P<i>" has counts[i] matches.
func makeTable(counts ...int) *model.Table {
	tbl := &model.Table{Source: "test"}
	seq := 0
	for p, n := range counts {
		id := fmt.Sprintf("P%02d", p)
		for i := 0; i < n; i++ {
			tbl.Rows = append(tbl.Rows, model.MatchRecord{
				Seq:        seq,
				PlayerID:   id,
				BattleTime: t0.Add(time.Duration(i) * time.Hour),
			})
			seq++
		}
	}
	return tbl
}

func TestFilterExcludesLowActivityPlayers(t *testing.T) {
	// 12 players with ≥10 matches, 3 with fewer.
	counts := []int{10, 11, 12, 15, 20, 10, 30, 14, 10, 18, 25, 10, 9, 1, 5}
	tbl := makeTable(counts...)

	got, err := Filter(tbl, 10)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}

	players := Players(got)
	if len(players) != 12 {
		t.Fatalf("expected 12 eligible players, got %d: %v", len(players), players)
	}
	for _, excluded := range []string{"P12", "P13", "P14"} {
		for _, p := range players {
			if p == excluded {
				t.Errorf("low-activity player %s survived the filter", excluded)
			}
		}
	}
	for _, r := range got.Rows {
		if r.MatchCount < 10 {
			t.Errorf("row for %s has match count %d below threshold", r.PlayerID, r.MatchCount)
		}
	}
}

func TestFilterHoldsForAnyThreshold(t *testing.T) {
	tbl := makeTable(1, 3, 5, 7, 9, 11)
	for threshold := 1; threshold <= 11; threshold++ {
		got, err := Filter(tbl, threshold)
		if err != nil {
			t.Fatalf("threshold %d: %v", threshold, err)
		}
		counts := CountByPlayer(got)
		for p, n := range counts {
			if n < threshold {
				t.Errorf("threshold %d: player %s kept with %d matches", threshold, p, n)
			}
		}
		for p, n := range CountByPlayer(tbl) {
			if _, kept := counts[p]; n >= threshold && !kept {
				t.Errorf("threshold %d: eligible player %s dropped", threshold, p)
			}
		}
	}
}

func TestFilterPreservesOrderAndSource(t *testing.T) {
	tbl := makeTable(3, 1, 4)
	tbl.HasStreaks = true

	got, err := Filter(tbl, 2)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	for i := 1; i < len(got.Rows); i++ {
		if got.Rows[i].Seq < got.Rows[i-1].Seq {
			t.Fatalf("order changed at %d", i)
		}
	}
	if !got.HasStreaks || got.Source != "test" {
		t.Errorf("schema flags not carried: %+v", got)
	}
	// The source table is not touched.
	if tbl.Rows[0].MatchCount != 0 {
		t.Error("filter mutated the input table")
	}
}

func TestFilterEmptyCohort(t *testing.T) {
	_, err := Filter(makeTable(2, 3), 10)
	var ec *EmptyCohortError
	if !errors.As(err, &ec) {
		t.Fatalf("expected *EmptyCohortError, got %v", err)
	}
	if ec.Threshold != 10 {
		t.Errorf("expected threshold 10 in error, got %d", ec.Threshold)
	}
}

func TestPlayersSorted(t *testing.T) {
	tbl := &model.Table{Rows: []model.MatchRecord{
		{PlayerID: "#Z"}, {PlayerID: "#A"}, {PlayerID: "#Z"}, {PlayerID: "#M"},
	}}
	got := Players(tbl)
	want := []string{"#A", "#M", "#Z"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Players = %v, want %v", got, want)
	}
}

func TestSelect(t *testing.T) {
	tbl := makeTable(3, 2)

	rows, err := Select(tbl, "P01")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	_, err = Select(tbl, "nobody")
	var es *EmptySelectionError
	if !errors.As(err, &es) {
		t.Fatalf("expected *EmptySelectionError, got %v", err)
	}
	if es.PlayerID != "nobody" {
		t.Errorf("unexpected player in error: %s", es.PlayerID)
	}
}
