package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/store"
)

// NewAQICmd constructs the `microagents aqi` command, which answers one
// air-quality question and prints the JSON response.
func NewAQICmd() *cobra.Command {
	var req agent.AQIRequest
	var file string

	cmd := &cobra.Command{
		Use:   "aqi [question]",
		Short: "Ask about air quality in a city on a date",
		Long: `Answer an air-quality question from the daily readings under
<data dir>/aqi/*.json, or from a single reading passed with --file.

When the LLM call fails the answer falls back to a fixed summary of the
reading and its health category.

Examples:
  microagents aqi --city Delhi --date 2025-10-23 "Is it safe to go for a run?"
  microagents aqi --city Pune --date 2025-10-23 --file pune.json "Should I wear a mask?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inline, err := readInline(file)
			if err != nil {
				return fmt.Errorf("aqi: %w", err)
			}
			req.Question = strings.TrimSpace(args[0])
			req.AQIFile = inline

			agents, _, err := buildAgents(logging.FromContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("aqi: %w", err)
			}
			return runAgent(cmd, "aqi", req, agents.AQI.Answer, agent.AQIFailure,
				func(r agent.AQIRequest, resp *agent.AQIResponse) store.Interaction {
					return store.Interaction{Query: r.Question, Answer: resp.Answer, Outcome: resp.Outcome}
				})
		},
	}

	cmd.Flags().StringVar(&req.City, "city", "", "City name (matched case-insensitively)")
	cmd.Flags().StringVar(&req.Date, "date", "", "Reading date, e.g. 2025-10-23")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a single AQI reading (JSON) used instead of the data directory")
	addSelectionFlags(cmd, &req.LLMSelection)
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
