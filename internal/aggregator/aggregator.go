package aggregator

import (
	"math"

	"github.com/pable/go-cr-dashboard/internal/model"
)

// FastReturnHours is the gap below which a follow-up battle counts as a fast return.
const FastReturnHours = 1.0

// Summarize computes the summary statistics over rows. The same definitions
// apply to the whole cohort and to a single player's rows.
// Streak maxima are read from the precomputed columns only when hasStreaks is set.
func Summarize(rows []model.MatchRecord, hasStreaks bool) model.Summary {
	var s model.Summary
	s.Matches = len(rows)
	if s.Matches == 0 {
		return s
	}

	var (
		gapSum   float64
		fastGaps int
	)
	for i := range rows {
		r := &rows[i]
		if r.IsWin() {
			s.Wins++
		} else {
			s.Losses++
		}
		s.NetTrophyChange += r.TrophyChange

		if g := r.HoursUntilNext; g != nil && !math.IsNaN(*g) && !math.IsInf(*g, 0) {
			s.GapSamples++
			gapSum += *g
			if *g < FastReturnHours {
				fastGaps++
			}
		}

		if hasStreaks {
			if r.WinStreak != nil && *r.WinStreak > s.LongestWinStreak {
				s.LongestWinStreak = *r.WinStreak
			}
			if r.LossStreak != nil && *r.LossStreak > s.LongestLossStreak {
				s.LongestLossStreak = *r.LossStreak
			}
		}
	}

	n := float64(s.Matches)
	s.WinRate = model.Some(float64(s.Wins) / n * 100)
	s.AvgTrophyChange = model.Some(float64(s.NetTrophyChange) / n)

	// No gap samples leaves both return statistics undefined rather than zero.
	if s.GapSamples > 0 {
		g := float64(s.GapSamples)
		s.FastReturnRate = model.Some(float64(fastGaps) / g * 100)
		s.AvgGapHours = model.Some(gapSum / g)
	}
	return s
}

// Compare computes player-minus-cohort deltas for every comparable statistic.
func Compare(player, cohort model.Summary) model.Comparison {
	return model.Comparison{
		WinRate:         delta("Win Rate", model.UnitPercentPoints, player.WinRate, cohort.WinRate),
		FastReturnRate:  delta("Fast Return Rate (<1 hr)", model.UnitPercentPoints, player.FastReturnRate, cohort.FastReturnRate),
		AvgGapHours:     delta("Avg Return Time", model.UnitHours, player.AvgGapHours, cohort.AvgGapHours),
		AvgTrophyChange: delta("Avg Trophy Change / Match", model.UnitTrophies, player.AvgTrophyChange, cohort.AvgTrophyChange),
	}
}

func delta(name string, unit model.Unit, player, cohort model.Metric) model.Delta {
	d := model.Delta{Name: name, Unit: unit, Player: player, Cohort: cohort}
	if player.Valid && cohort.Valid {
		d.Diff = model.Some(player.Value - cohort.Value)
	}
	return d
}

// round2 rounds to two decimals for exported figures.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rounded returns a copy of m with its value rounded to two decimals.
func Rounded(m model.Metric) model.Metric {
	if !m.Valid {
		return m
	}
	return model.Some(round2(m.Value))
}
