package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/dashboard"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server over stdio",
	Long: `Expose the dashboard to MCP clients over stdin/stdout.

Tools:
  list_players    eligible players with match counts
  player_summary  player and cohort statistics with player-vs-cohort deltas`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

type listPlayersArgs struct {
	Limit     int  `json:"limit,omitempty" jsonschema:"Maximum number of players to return (0 = all)"`
	ByMatches bool `json:"by_matches,omitempty" jsonschema:"If true, order by match count descending instead of player tag"`
}

type playerSummaryArgs struct {
	PlayerID string `json:"player_id,omitempty" jsonschema:"Player tag, e.g. #2PP; empty selects the first eligible player"`
}

func runMCP(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}
	server := newMCPServer(d)
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}

func newMCPServer(d *dashboard.Dashboard) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "crdash",
			Version: "0.1.0",
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_players",
		Description: fmt.Sprintf("Lists players with at least %d matches and their match counts", d.Threshold),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listPlayersArgs) (*mcp.CallToolResult, any, error) {
		players := d.Counts()
		if args.ByMatches {
			players = d.MostActive(0)
		}
		if args.Limit > 0 && len(players) > args.Limit {
			players = players[:args.Limit]
		}
		return toolJSON(map[string]any{
			"min_matches":      d.Threshold,
			"eligible_players": len(d.Players),
			"players":          players,
		}), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_summary",
		Description: "Returns a player's win rate, return behavior and trophy statistics next to the cohort's, with player-minus-cohort deltas. Undefined statistics are null.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args playerSummaryArgs) (*mcp.CallToolResult, any, error) {
		v, err := d.Select(args.PlayerID)
		if err != nil {
			return toolError(err), nil, nil
		}
		v.Rows = nil
		return toolJSON(v), nil, nil
	})

	return server
}

func toolJSON(v any) *mcp.CallToolResult {
	b, _ := json.MarshalIndent(v, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
