package aggregator

import (
	"math"
	"testing"
	"time"

	"github.com/pable/go-cr-dashboard/internal/model"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int { return &v }

// makeRows builds n rows for one player; wins marks the first w rows as wins.
func makeRows(n, w int) []model.MatchRecord {
	rows := make([]model.MatchRecord, n)
	for i := range rows {
		rows[i] = model.MatchRecord{
			Seq:        i,
			PlayerID:   "#P",
			BattleTime: t0.Add(time.Duration(i) * time.Hour),
		}
		if i < w {
			rows[i].Result = model.Win
		}
	}
	return rows
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ---- Summarize ----

func TestWinRate(t *testing.T) {
	s := Summarize(makeRows(20, 12), false)

	if s.Matches != 20 || s.Wins != 12 || s.Losses != 8 {
		t.Fatalf("counts = %d/%d/%d, want 20/12/8", s.Matches, s.Wins, s.Losses)
	}
	if v, ok := s.WinRate.Get(); !ok || !approx(v, 60.0) {
		t.Errorf("win rate = %v, want 60.0", s.WinRate)
	}
}

func TestTrophyChange(t *testing.T) {
	rows := makeRows(3, 0)
	for i, tc := range []int{30, -20, 15} {
		rows[i].TrophyChange = tc
	}
	s := Summarize(rows, false)

	if s.NetTrophyChange != 25 {
		t.Errorf("net trophy change = %d, want 25", s.NetTrophyChange)
	}
	if v, ok := s.AvgTrophyChange.Get(); !ok || !approx(v, 25.0/3) {
		t.Errorf("avg trophy change = %v, want 8.333", s.AvgTrophyChange)
	}
}

func TestNoGapsLeavesReturnStatsUndefined(t *testing.T) {
	s := Summarize(makeRows(5, 2), false)

	if s.FastReturnRate.Valid {
		t.Errorf("fast return rate should be undefined, got %v", s.FastReturnRate.Value)
	}
	if s.AvgGapHours.Valid {
		t.Errorf("avg gap should be undefined, got %v", s.AvgGapHours.Value)
	}
	if s.GapSamples != 0 {
		t.Errorf("gap samples = %d, want 0", s.GapSamples)
	}
}

func TestFastReturnIsStrictlyUnderOneHour(t *testing.T) {
	rows := makeRows(5, 0)
	rows[0].HoursUntilNext = fptr(0.25)
	rows[1].HoursUntilNext = fptr(1.0) // not fast
	rows[2].HoursUntilNext = fptr(0.99)
	rows[3].HoursUntilNext = fptr(5.76)
	// rows[4] has no next battle

	s := Summarize(rows, false)

	if s.GapSamples != 4 {
		t.Fatalf("gap samples = %d, want 4", s.GapSamples)
	}
	if v, ok := s.FastReturnRate.Get(); !ok || !approx(v, 50.0) {
		t.Errorf("fast return rate = %v, want 50.0", s.FastReturnRate)
	}
	if v, ok := s.AvgGapHours.Get(); !ok || !approx(v, (0.25+1.0+0.99+5.76)/4) {
		t.Errorf("avg gap = %v", s.AvgGapHours)
	}
}

func TestRatesStayInRange(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for w := 0; w <= n; w++ {
			rows := makeRows(n, w)
			for i := range rows {
				rows[i].HoursUntilNext = fptr(float64(i) * 0.4)
			}
			s := Summarize(rows, false)
			if s.WinRate.Value < 0 || s.WinRate.Value > 100 {
				t.Fatalf("n=%d w=%d: win rate %v out of range", n, w, s.WinRate.Value)
			}
			if s.FastReturnRate.Value < 0 || s.FastReturnRate.Value > 100 {
				t.Fatalf("n=%d w=%d: fast return %v out of range", n, w, s.FastReturnRate.Value)
			}
			if s.Wins+s.Losses != s.Matches {
				t.Fatalf("n=%d w=%d: wins+losses != matches", n, w)
			}
		}
	}
}

func TestEmptyRows(t *testing.T) {
	s := Summarize(nil, true)
	if s.Matches != 0 || s.WinRate.Valid || s.AvgTrophyChange.Valid {
		t.Errorf("expected undefined summary for no rows, got %+v", s)
	}
}

// ---- Streaks ----

func TestStreaksFromColumns(t *testing.T) {
	rows := makeRows(4, 2)
	rows[0].WinStreak, rows[0].LossStreak = iptr(1), iptr(0)
	rows[1].WinStreak, rows[1].LossStreak = iptr(4), iptr(0)
	rows[2].WinStreak, rows[2].LossStreak = iptr(0), iptr(2)
	// rows[3] has empty streak cells

	s := Summarize(rows, true)
	if s.LongestWinStreak != 4 || s.LongestLossStreak != 2 {
		t.Errorf("streaks = %d/%d, want 4/2", s.LongestWinStreak, s.LongestLossStreak)
	}
}

func TestStreaksWithoutColumns(t *testing.T) {
	rows := makeRows(3, 3)
	rows[0].WinStreak = iptr(7)

	s := Summarize(rows, false)
	if s.LongestWinStreak != 0 || s.LongestLossStreak != 0 {
		t.Errorf("streaks should be 0 without streak columns, got %d/%d",
			s.LongestWinStreak, s.LongestLossStreak)
	}

	// Columns present but every cell empty.
	s = Summarize(makeRows(3, 1), true)
	if s.LongestWinStreak != 0 || s.LongestLossStreak != 0 {
		t.Errorf("streaks should be 0 for all-absent cells, got %d/%d",
			s.LongestWinStreak, s.LongestLossStreak)
	}
}

// ---- Compare ----

func TestCompareDiffs(t *testing.T) {
	player := model.Summary{
		WinRate:         model.Some(62.5),
		FastReturnRate:  model.Some(40),
		AvgGapHours:     model.Some(2.5),
		AvgTrophyChange: model.Some(4),
	}
	cohort := model.Summary{
		WinRate:         model.Some(50),
		FastReturnRate:  model.Some(55),
		AvgGapHours:     model.Some(3.25),
		AvgTrophyChange: model.Some(-1),
	}

	c := Compare(player, cohort)

	cases := []struct {
		name string
		d    model.Delta
		want float64
		unit model.Unit
	}{
		{"win rate", c.WinRate, 12.5, model.UnitPercentPoints},
		{"fast return", c.FastReturnRate, -15, model.UnitPercentPoints},
		{"avg gap", c.AvgGapHours, -0.75, model.UnitHours},
		{"avg trophy", c.AvgTrophyChange, 5, model.UnitTrophies},
	}
	for _, tc := range cases {
		if v, ok := tc.d.Diff.Get(); !ok || !approx(v, tc.want) {
			t.Errorf("%s: diff = %v, want %v", tc.name, tc.d.Diff, tc.want)
		}
		if tc.d.Unit != tc.unit {
			t.Errorf("%s: unit = %s, want %s", tc.name, tc.d.Unit, tc.unit)
		}
	}
}

func TestCompareUndefinedSide(t *testing.T) {
	player := Summarize(makeRows(4, 2), false) // no gaps

	cohortRows := makeRows(6, 3)
	for i := range cohortRows {
		cohortRows[i].HoursUntilNext = fptr(0.5)
	}
	cohort := Summarize(cohortRows, false)

	c := Compare(player, cohort)
	if c.FastReturnRate.Diff.Valid {
		t.Errorf("fast return diff should be undefined, got %v", c.FastReturnRate.Diff.Value)
	}
	if c.AvgGapHours.Diff.Valid {
		t.Errorf("avg gap diff should be undefined, got %v", c.AvgGapHours.Diff.Value)
	}
	if !c.FastReturnRate.Cohort.Valid {
		t.Error("cohort side should still be reported")
	}
	if v, ok := c.WinRate.Diff.Get(); !ok || !approx(v, 0) {
		t.Errorf("win rate diff = %v, want 0", c.WinRate.Diff)
	}
}

func TestRounded(t *testing.T) {
	if got := Rounded(model.Some(8.3333)); got.Value != 8.33 {
		t.Errorf("Rounded = %v, want 8.33", got.Value)
	}
	if got := Rounded(model.None()); got.Valid {
		t.Error("Rounded must keep undefined metrics undefined")
	}
}
