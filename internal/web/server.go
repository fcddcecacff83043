// Package web serves the dashboard in a browser: a player selector, the
// summary and comparison tiles, a collapsible raw preview and the trophy
// chart, plus a small JSON API over the same views.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/pable/go-cr-dashboard/internal/chart"
	"github.com/pable/go-cr-dashboard/internal/cohort"
	"github.com/pable/go-cr-dashboard/internal/dashboard"
	"github.com/pable/go-cr-dashboard/internal/model"
	"github.com/pable/go-cr-dashboard/internal/report"
)

//go:embed templates/*
var templates embed.FS

type Server struct {
	dash *dashboard.Dashboard
	tmpl *template.Template
}

func NewServer(d *dashboard.Dashboard) (*Server, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{dash: d, tmpl: tmpl}, nil
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /chart.png", s.handleChart)
	mux.HandleFunc("GET /chart.svg", s.handleChart)
	mux.HandleFunc("GET /api/players", s.handlePlayers)
	mux.HandleFunc("GET /api/view", s.handleView)

	return loggingMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type playerOption struct {
	ID       string
	Selected bool
}

type previewRow struct {
	BattleTime   string
	Result       string
	Starting     int
	TrophyChange string
	Gap          string
}

type pageData struct {
	Title      string
	Caption    string
	CohortLine string
	Players    []playerOption
	Selected   string
	Tiles      []report.Tile
	Comparison []report.Tile
	Preview    []previewRow
	TotalRows  int
	Streaks    *model.Summary
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, ok := s.selectView(w, r)
	if !ok {
		return
	}

	data := pageData{
		Title:      report.Title(v.PlayerID),
		Caption:    report.Caption,
		CohortLine: report.CohortLine(v.Threshold, v.EligiblePlayers),
		Selected:   v.PlayerID,
		Tiles:      report.SummaryTiles(v.Player),
		Comparison: report.ComparisonTiles(v.Comparison),
		TotalRows:  len(v.Rows),
	}
	for _, id := range s.dash.Players {
		data.Players = append(data.Players, playerOption{ID: id, Selected: id == v.PlayerID})
	}
	for i, row := range v.Rows {
		if i == report.PreviewRows {
			break
		}
		gap := report.Placeholder
		if row.HoursUntilNext != nil {
			gap = report.FormatHours(model.Some(*row.HoursUntilNext))
		}
		data.Preview = append(data.Preview, previewRow{
			BattleTime:   row.BattleTime.Format("2006-01-02 15:04"),
			Result:       row.Result.String(),
			Starting:     row.StartingTrophies,
			TrophyChange: report.FormatSignedInt(row.TrophyChange),
			Gap:          gap,
		})
	}
	if v.Player.LongestWinStreak > 0 || v.Player.LongestLossStreak > 0 {
		data.Streaks = &v.Player
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.selectView(w, r)
	if !ok {
		return
	}
	format := chart.FormatFromPath(r.URL.Path)

	var buf bytes.Buffer
	if err := chart.Render(&buf, v.Rows, chart.Options{Format: format}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "max-age=300")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handlePlayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"min_matches": s.dash.Threshold,
		"players":     s.dash.Counts(),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.selectView(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("rows") != "true" {
		v.Rows = nil
	}
	writeJSON(w, http.StatusOK, v)
}

// selectView resolves the ?player= query. It writes the error response itself
// and reports false when no view could be built.
func (s *Server) selectView(w http.ResponseWriter, r *http.Request) (*model.View, bool) {
	v, err := s.dash.Select(r.URL.Query().Get("player"))
	if err != nil {
		var es *cohort.EmptySelectionError
		if errors.As(err, &es) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return v, true
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s duration=%s", r.Method, r.URL.Path, time.Since(start))
	})
}
