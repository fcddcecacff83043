// Package loader reads a match-history dataset into an ordered, read-only table.
//
// A source is either a CSV export (one row per battle, optionally compressed
// as .csv.zst or .csv.gz) or a SQLite snapshot written by "crdash import". Rows come back sorted by (player, battle time)
// with ties kept in source order.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pable/go-cr-dashboard/internal/model"
	"github.com/pable/go-cr-dashboard/internal/storage"
)

// Source column names.
const (
	ColPlayerID         = "playerId"
	ColBattleTime       = "battleTime"
	ColNextBattleTime   = "next_battleTime"
	ColHour             = "hour"
	ColResult           = "result"
	ColTrophyChange     = "TrophyChange"
	ColStartingTrophies = "StartingTrophies"
	ColHoursUntilNext   = "hours_until_next"
	ColWinStreak        = "win_streak"
	ColLossStreak       = "loss_streak"
)

var requiredColumns = []string{ColPlayerID, ColBattleTime, ColResult, ColTrophyChange, ColStartingTrophies}

// LoadError is a fatal problem with the source file.
type LoadError struct {
	Path string
	Row  int    // 1-based data row; 0 when the error is not row-specific
	Col  string // column name; empty when not column-specific
	Err  error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Col != "":
		return fmt.Sprintf("load %s: row %d, column %s: %v", e.Path, e.Row, e.Col, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Path, e.Row, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the dataset at path. SQLite snapshots are recognised by extension.
func Load(path string) (*model.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return loadSnapshot(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		defer f.Close()

		src, closeSrc, err := decompress(path, f)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		defer closeSrc()
		return ReadCSV(path, src)
	}
}

// decompress wraps r according to the compression suffix of path.
// Plain files are returned as-is.
func decompress(path string, r io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return dec, dec.Close, nil
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	default:
		return r, func() {}, nil
	}
}

func loadSnapshot(path string) (*model.Table, error) {
	db, err := storage.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer db.Close()

	tbl, err := db.LoadTable()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(tbl.Rows) == 0 {
		return nil, &LoadError{Path: path, Err: errors.New("snapshot holds no matches")}
	}
	// Snapshots are stored sorted, but sort again so the ordering contract
	// does not depend on how the file was produced.
	sortRows(tbl.Rows)
	return tbl, nil
}

// ReadCSV parses a CSV stream. name is used in error messages and as the table source.
func ReadCSV(name string, r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &LoadError{Path: name, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("read header: %w", err)}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, &LoadError{Path: name, Col: c, Err: fmt.Errorf("missing required column %q", c)}
		}
	}

	_, hasGapCol := idx[ColHoursUntilNext]
	_, hasNextCol := idx[ColNextBattleTime]
	_, hasWin := idx[ColWinStreak]
	_, hasLoss := idx[ColLossStreak]

	tbl := &model.Table{
		Source:     name,
		HasStreaks: hasWin || hasLoss,
		HasGaps:    hasGapCol || hasNextCol,
	}

	cell := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for seq := 0; ; seq++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		row := seq + 1
		if err != nil {
			return nil, &LoadError{Path: name, Row: row, Err: err}
		}

		r := model.MatchRecord{Seq: seq}

		r.PlayerID = cell(rec, ColPlayerID)
		if r.PlayerID == "" {
			return nil, &LoadError{Path: name, Row: row, Col: ColPlayerID, Err: errors.New("empty player id")}
		}

		r.BattleTime, err = ParseTime(cell(rec, ColBattleTime))
		if err != nil {
			return nil, &LoadError{Path: name, Row: row, Col: ColBattleTime, Err: err}
		}
		if s := cell(rec, ColNextBattleTime); s != "" {
			if t, err := ParseTime(s); err == nil {
				r.NextBattleTime = &t
			}
		}

		r.Hour = coerceFloat(cell(rec, ColHour))

		res, err := parseInt(cell(rec, ColResult))
		if err != nil {
			return nil, &LoadError{Path: name, Row: row, Col: ColResult, Err: err}
		}
		if res != 0 && res != 1 {
			return nil, &LoadError{Path: name, Row: row, Col: ColResult, Err: fmt.Errorf("result must be 0 or 1, got %d", res)}
		}
		r.Result = model.Result(res)

		if r.TrophyChange, err = parseInt(cell(rec, ColTrophyChange)); err != nil {
			return nil, &LoadError{Path: name, Row: row, Col: ColTrophyChange, Err: err}
		}
		if r.StartingTrophies, err = parseInt(cell(rec, ColStartingTrophies)); err != nil {
			return nil, &LoadError{Path: name, Row: row, Col: ColStartingTrophies, Err: err}
		}

		var gap *float64
		if hasGapCol {
			gap = coerceFloat(cell(rec, ColHoursUntilNext))
		} else if r.NextBattleTime != nil {
			h := r.NextBattleTime.Sub(r.BattleTime).Hours()
			gap = &h
		}
		if gap != nil && !ValidGap(*gap) {
			tbl.RejectedGaps++
			gap = nil
		}
		r.HoursUntilNext = gap

		if hasWin {
			if r.WinStreak, err = parseOptInt(cell(rec, ColWinStreak)); err != nil {
				return nil, &LoadError{Path: name, Row: row, Col: ColWinStreak, Err: err}
			}
		}
		if hasLoss {
			if r.LossStreak, err = parseOptInt(cell(rec, ColLossStreak)); err != nil {
				return nil, &LoadError{Path: name, Row: row, Col: ColLossStreak, Err: err}
			}
		}

		tbl.Rows = append(tbl.Rows, r)
	}

	sortRows(tbl.Rows)
	return tbl, nil
}

// ValidGap reports whether an hours-until-next value is usable: finite and not negative.
func ValidGap(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h >= 0
}

func sortRows(rows []model.MatchRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PlayerID != rows[j].PlayerID {
			return rows[i].PlayerID < rows[j].PlayerID
		}
		return rows[i].BattleTime.Before(rows[j].BattleTime)
	})
}

// coerceFloat converts numeric text; anything that fails becomes absent.
func coerceFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// parseInt accepts integers and integral floats such as "30.0".
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func parseOptInt(s string) (*int, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := parseInt(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"20060102T150405.000Z",
	"20060102T150405Z",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses the timestamp forms found in match-history exports.
// Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
