// Package chart renders the trophy progression chart of a player: starting
// trophies over battle time, one series per outcome.
package chart

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pable/go-cr-dashboard/internal/model"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the output encoding.
type Format int

const (
	PNG Format = iota
	SVG
)

// FormatFromPath picks the encoding from a file extension; anything but .svg is PNG.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return SVG
	}
	return PNG
}

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Outcome colors.
var (
	WinColor  = drawing.ColorFromHex("2149A7")
	LossColor = drawing.ColorFromHex("E9C455")
)

const (
	defaultWidth  = 1024
	defaultHeight = 480
)

// Options controls chart rendering. Zero sizes use the defaults.
type Options struct {
	Format Format
	Width  int
	Height int
	Title  string
}

func outcomeStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotWidth:    4,
		DotColor:    col,
	}
}

// Render draws the starting-trophy chart for rows to w.
func Render(w io.Writer, rows []model.MatchRecord, opts Options) error {
	if len(rows) == 0 {
		return fmt.Errorf("render chart: no matches")
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}

	var series []gochart.Series
	for _, o := range []struct {
		result model.Result
		color  drawing.Color
	}{
		{model.Win, WinColor},
		{model.Loss, LossColor},
	} {
		var xs []time.Time
		var ys []float64
		for _, r := range rows {
			if r.Result != o.result {
				continue
			}
			xs = append(xs, r.BattleTime)
			ys = append(ys, float64(r.StartingTrophies))
		}
		if len(xs) == 0 {
			continue
		}
		st := outcomeStyle(o.color)
		if len(xs) == 1 {
			// go-chart needs two points per series.
			st.DotWidth = 6
			xs = append(xs, xs[0].Add(time.Second))
			ys = append(ys, ys[0])
		}
		series = append(series, gochart.TimeSeries{
			Name:    o.result.String(),
			XValues: xs,
			YValues: ys,
			Style:   st,
		})
	}

	xr, yr := ranges(rows)
	ch := gochart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:           "Match Time",
			Range:          xr,
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: gochart.YAxis{
			Name:  "Starting Trophies",
			Range: yr,
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	provider := gochart.PNG
	if opts.Format == SVG {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// ranges returns axis ranges covering rows, padded so a single battle or a
// flat trophy count still spans a non-zero range.
func ranges(rows []model.MatchRecord) (x, y *gochart.ContinuousRange) {
	minT, maxT := rows[0].BattleTime, rows[0].BattleTime
	minY, maxY := rows[0].StartingTrophies, rows[0].StartingTrophies
	for _, r := range rows[1:] {
		if r.BattleTime.Before(minT) {
			minT = r.BattleTime
		}
		if r.BattleTime.After(maxT) {
			maxT = r.BattleTime
		}
		minY = min(minY, r.StartingTrophies)
		maxY = max(maxY, r.StartingTrophies)
	}

	minX := gochart.TimeToFloat64(minT)
	maxX := gochart.TimeToFloat64(maxT.Add(time.Second))
	if span := maxX - minX; span < float64(time.Hour) {
		minX -= float64(time.Hour)
		maxX += float64(time.Hour)
	}

	lo, hi := float64(minY), float64(maxY)
	pad := (hi - lo) * 0.05
	if pad < 10 {
		pad = 10
	}
	return &gochart.ContinuousRange{Min: minX, Max: maxX},
		&gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
