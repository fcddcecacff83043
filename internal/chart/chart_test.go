package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-cr-dashboard/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func makeRows(results ...model.Result) []model.MatchRecord {
	t0 := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	rows := make([]model.MatchRecord, len(results))
	for i, res := range results {
		rows[i] = model.MatchRecord{
			PlayerID:         "#ABC",
			BattleTime:       t0.Add(time.Duration(i) * 45 * time.Minute),
			Result:           res,
			StartingTrophies: 6000 + 30*i,
		}
	}
	return rows
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	rows := makeRows(model.Win, model.Loss, model.Win, model.Win, model.Loss)
	if err := Render(&buf, rows, Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestRenderSingleMatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, makeRows(model.Loss), Options{Width: 400, Height: 300}); err != nil {
		t.Fatalf("Render single match: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestRenderFlatTrophiesSVG(t *testing.T) {
	rows := makeRows(model.Win, model.Win, model.Win)
	for i := range rows {
		rows[i].StartingTrophies = 5000
	}
	var buf bytes.Buffer
	if err := Render(&buf, rows, Options{Format: SVG, Title: "#ABC"}); err != nil {
		t.Fatalf("Render svg: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatal("output is not an SVG document")
	}
}

func TestRenderNoRows(t *testing.T) {
	if err := Render(&bytes.Buffer{}, nil, Options{}); err == nil {
		t.Fatal("expected an error for an empty selection")
	}
}

func TestFormatFromPath(t *testing.T) {
	if FormatFromPath("out.SVG") != SVG || FormatFromPath("out.png") != PNG || FormatFromPath("out") != PNG {
		t.Error("unexpected format detection")
	}
	if SVG.ContentType() != "image/svg+xml" || PNG.ContentType() != "image/png" {
		t.Error("unexpected content types")
	}
}
