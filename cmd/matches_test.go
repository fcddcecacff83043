package cmd

import (
	"testing"
	"time"

	"github.com/pable/go-cr-dashboard/internal/model"
)

func TestMatchFilter(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var rows []model.MatchRecord
	for i := 0; i < 10; i++ {
		rows = append(rows, model.MatchRecord{
			PlayerID:   "#A",
			BattleTime: t0.AddDate(0, 0, i),
			Result:     model.Result(i % 2),
		})
	}

	cases := []struct {
		name string
		f    matchFilter
		want int
	}{
		{"no filter", matchFilter{}, 10},
		{"wins", matchFilter{wins: true}, 5},
		{"losses", matchFilter{losses: true}, 5},
		{"since", matchFilter{since: t0.AddDate(0, 0, 7)}, 3},
		{"last", matchFilter{last: 4}, 4},
		{"wins since last", matchFilter{wins: true, since: t0.AddDate(0, 0, 2), last: 2}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.f.apply(rows)
			if len(got) != tc.want {
				t.Fatalf("got %d rows, want %d", len(got), tc.want)
			}
			if tc.f.last > 0 && !got[len(got)-1].BattleTime.Equal(rows[len(rows)-1].BattleTime) {
				t.Error("--last should keep the most recent battles")
			}
		})
	}
}
