package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/pable/go-cr-dashboard/internal/model"
)

// timeLayout is fixed-width so battle_time sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Overview describes what a snapshot holds.
type Overview struct {
	Source       string
	ImportedAt   string
	Matches      int
	Players      int
	Earliest     string
	Latest       string
	HasStreaks   bool
	RejectedGaps int
}

// ReplaceMatches swaps the stored snapshot for the given table in one transaction.
func (db *DB) ReplaceMatches(tbl *model.Table) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM matches`); err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM snapshot_meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO matches(
			seq, player_id, battle_time, next_battle_time, hour, result,
			trophy_change, starting_trophies, hours_until_next, win_streak, loss_streak
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range tbl.Rows {
		var next sql.NullString
		if r.NextBattleTime != nil {
			next = sql.NullString{String: r.NextBattleTime.UTC().Format(timeLayout), Valid: true}
		}
		_, err = stmt.Exec(
			r.Seq, r.PlayerID, r.BattleTime.UTC().Format(timeLayout), next,
			nullFloat(r.Hour), int(r.Result),
			r.TrophyChange, r.StartingTrophies,
			nullFloat(r.HoursUntilNext), nullInt(r.WinStreak), nullInt(r.LossStreak),
		)
		if err != nil {
			return fmt.Errorf("insert match %d for %s: %w", r.Seq, r.PlayerID, err)
		}
	}

	meta := map[string]string{
		"source":        tbl.Source,
		"imported_at":   time.Now().UTC().Format(time.RFC3339),
		"has_streaks":   strconv.FormatBool(tbl.HasStreaks),
		"has_gaps":      strconv.FormatBool(tbl.HasGaps),
		"rejected_gaps": strconv.Itoa(tbl.RejectedGaps),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO snapshot_meta(key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// LoadTable reads the whole snapshot ordered by player and battle time.
func (db *DB) LoadTable() (*model.Table, error) {
	meta, err := db.meta()
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT seq, player_id, battle_time, next_battle_time, hour, result,
		       trophy_change, starting_trophies, hours_until_next, win_streak, loss_streak
		FROM matches
		ORDER BY player_id, battle_time, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tbl := &model.Table{
		Source:     meta["source"],
		HasStreaks: meta["has_streaks"] == "true",
		HasGaps:    meta["has_gaps"] == "true",
	}
	tbl.RejectedGaps, _ = strconv.Atoi(meta["rejected_gaps"])

	for rows.Next() {
		var (
			r                     model.MatchRecord
			battle                string
			next                  sql.NullString
			hour, gap             sql.NullFloat64
			result                int
			winStreak, lossStreak sql.NullInt64
		)
		if err := rows.Scan(
			&r.Seq, &r.PlayerID, &battle, &next, &hour, &result,
			&r.TrophyChange, &r.StartingTrophies, &gap, &winStreak, &lossStreak,
		); err != nil {
			return nil, err
		}
		r.BattleTime, err = time.Parse(timeLayout, battle)
		if err != nil {
			return nil, fmt.Errorf("match %d: battle_time %q: %w", r.Seq, battle, err)
		}
		if next.Valid {
			t, err := time.Parse(timeLayout, next.String)
			if err != nil {
				return nil, fmt.Errorf("match %d: next_battle_time %q: %w", r.Seq, next.String, err)
			}
			r.NextBattleTime = &t
		}
		r.Result = model.Result(result)
		r.Hour = floatPtr(hour)
		r.HoursUntilNext = floatPtr(gap)
		r.WinStreak = intPtr(winStreak)
		r.LossStreak = intPtr(lossStreak)
		tbl.Rows = append(tbl.Rows, r)
	}
	return tbl, rows.Err()
}

// GetOverview summarises the stored snapshot.
func (db *DB) GetOverview() (Overview, error) {
	meta, err := db.meta()
	if err != nil {
		return Overview{}, err
	}
	ov := Overview{
		Source:     meta["source"],
		ImportedAt: meta["imported_at"],
		HasStreaks: meta["has_streaks"] == "true",
	}
	ov.RejectedGaps, _ = strconv.Atoi(meta["rejected_gaps"])

	var earliest, latest sql.NullString
	err = db.conn.QueryRow(`
		SELECT COUNT(1), COUNT(DISTINCT player_id), MIN(battle_time), MAX(battle_time)
		FROM matches`).Scan(&ov.Matches, &ov.Players, &earliest, &latest)
	if err != nil {
		return Overview{}, err
	}
	ov.Earliest = shortDate(earliest)
	ov.Latest = shortDate(latest)
	return ov, nil
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = formatCell(v)
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func (db *DB) meta() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT key, value FROM snapshot_meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func shortDate(s sql.NullString) string {
	if !s.Valid || len(s.String) < 10 {
		return "—"
	}
	return s.String[:10]
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
