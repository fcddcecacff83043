package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-cr-dashboard/internal/aggregator"
	"github.com/pable/go-cr-dashboard/internal/model"
)

const analyzeSystemPrompt = `You are a Clash Royale ladder analyst. You are given structured statistics
for one player and for the cohort of active players they belong to, plus a
question from the user.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- A null value means the statistic is undefined for that population; say so instead of guessing.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and concrete.

Metrics glossary:
- win_rate: % of battles won.
- fast_return_rate: % of battles followed by another battle within 1 hour (among battles with a known gap).
- avg_gap_hours: mean hours until the next battle.
- net_trophy_change: sum of trophy changes; avg_trophy_change is per battle.
- longest_win_streak / longest_loss_streak: maximum precomputed consecutive-outcome runs.
- comparison.*.diff: player minus cohort, in percentage points (pp), hours or trophies.`

// analyzeRecentMatches is the number of most recent battles included in the context.
const analyzeRecentMatches = 30

var (
	analyzeModel  string
	analyzeAPIKey string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <player> <question>",
	Short: "AI-powered grounded analysis of a player (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	d, err := loadDashboard()
	if err != nil {
		return err
	}
	v, err := d.Select(args[0])
	if err != nil {
		return err
	}

	contextJSON, err := buildPlayerContext(v)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, contextJSON, args[1])
}

// buildPlayerContext serialises a view into compact JSON with rounded figures.
func buildPlayerContext(v *model.View) (string, error) {
	summary := func(s model.Summary) map[string]any {
		return map[string]any{
			"matches":             s.Matches,
			"wins":                s.Wins,
			"losses":              s.Losses,
			"win_rate":            aggregator.Rounded(s.WinRate),
			"fast_return_rate":    aggregator.Rounded(s.FastReturnRate),
			"avg_gap_hours":       aggregator.Rounded(s.AvgGapHours),
			"net_trophy_change":   s.NetTrophyChange,
			"avg_trophy_change":   aggregator.Rounded(s.AvgTrophyChange),
			"longest_win_streak":  s.LongestWinStreak,
			"longest_loss_streak": s.LongestLossStreak,
		}
	}
	delta := func(d model.Delta) map[string]any {
		return map[string]any{
			"player": aggregator.Rounded(d.Player),
			"cohort": aggregator.Rounded(d.Cohort),
			"diff":   aggregator.Rounded(d.Diff),
			"unit":   d.Unit.String(),
		}
	}

	recent := v.Rows
	if len(recent) > analyzeRecentMatches {
		recent = recent[len(recent)-analyzeRecentMatches:]
	}
	battles := make([]map[string]any, 0, len(recent))
	for _, r := range recent {
		b := map[string]any{
			"time":              r.BattleTime.Format("2006-01-02 15:04"),
			"result":            r.Result.String(),
			"starting_trophies": r.StartingTrophies,
			"trophy_change":     r.TrophyChange,
		}
		if r.HoursUntilNext != nil {
			b["hours_until_next"] = aggregator.Rounded(model.Some(*r.HoursUntilNext))
		}
		battles = append(battles, b)
	}

	out := map[string]any{
		"player_id":        v.PlayerID,
		"cohort_rule":      fmt.Sprintf("players with at least %d matches", v.Threshold),
		"eligible_players": v.EligiblePlayers,
		"player":           summary(v.Player),
		"cohort":           summary(v.Cohort),
		"comparison": map[string]any{
			"win_rate":          delta(v.Comparison.WinRate),
			"fast_return_rate":  delta(v.Comparison.FastReturnRate),
			"avg_gap_hours":     delta(v.Comparison.AvgGapHours),
			"avg_trophy_change": delta(v.Comparison.AvgTrophyChange),
		},
		"recent_battles": battles,
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
