package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pable/go-cr-dashboard/internal/dashboard"
	"github.com/pable/go-cr-dashboard/internal/model"
)

// testDashboard has three eligible players "P00".."P02" with 10, 12 and 14
// matches, none of them with gap data.
func testDashboard(t *testing.T) *dashboard.Dashboard {
	t.Helper()
	t0 := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	tbl := &model.Table{Source: "fixture.csv"}
	for p, n := range []int{10, 12, 14} {
		for i := 0; i < n; i++ {
			tbl.Rows = append(tbl.Rows, model.MatchRecord{
				PlayerID:         fmt.Sprintf("P%02d", p),
				BattleTime:       t0.Add(time.Duration(i) * time.Hour),
				Result:           model.Result(i % 2),
				TrophyChange:     5,
				StartingTrophies: 7000,
			})
		}
	}
	d, err := dashboard.Build(tbl, 10)
	if err != nil {
		t.Fatalf("build dashboard: %v", err)
	}
	return d
}

func connectMCP(t *testing.T, d *dashboard.Dashboard) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()
	if _, err := newMCPServer(d).Connect(ctx, st, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestMCPListPlayers(t *testing.T) {
	cs := connectMCP(t, testDashboard(t))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "list_players",
		Arguments: map[string]any{"limit": 2, "by_matches": true},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	var got struct {
		Eligible int                     `json:"eligible_players"`
		Players  []dashboard.PlayerCount `json:"players"`
	}
	if err := json.Unmarshal([]byte(toolText(t, res)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Eligible != 3 || len(got.Players) != 2 || got.Players[0].PlayerID != "P02" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestMCPPlayerSummary(t *testing.T) {
	cs := connectMCP(t, testDashboard(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "player_summary",
		Arguments: map[string]any{"player_id": "P01"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", toolText(t, res))
	}
	text := toolText(t, res)
	if !strings.Contains(text, `"player_id": "P01"`) || !strings.Contains(text, `"fast_return_rate": null`) {
		t.Errorf("unexpected summary:\n%s", text)
	}

	res, err = cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "player_summary",
		Arguments: map[string]any{"player_id": "#NOBODY"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError || !strings.Contains(toolText(t, res), "no matches found for player #NOBODY") {
		t.Errorf("expected a tool error for an unknown player")
	}
}
