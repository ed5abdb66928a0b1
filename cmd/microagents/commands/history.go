package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/microagents-go/internal/logging"
)

// NewHistoryCmd constructs the `microagents history` command, which prints
// recent interactions from the local interaction log.
func NewHistoryCmd() *cobra.Command {
	var agentName string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent agent interactions",
		Long: `Print recent interactions recorded by the server and the one-shot
commands, newest first.

The log lives at ~/.microagents/history.db unless MICROAGENTS_HISTORY_DB
points elsewhere.

Examples:
  microagents history
  microagents history --agent aqi --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return errors.New("history: --limit must be at least 1")
			}

			h, closeHistory := openHistory(logging.FromContext(cmd.Context()))
			defer closeHistory()
			if h == nil {
				return errors.New("history: interaction log is disabled or unavailable")
			}

			items, err := h.Recent(cmd.Context(), agentName, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().StringVarP(&agentName, "agent", "a", "", "Only show one agent (aqi, documents, video)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of interactions")

	return cmd
}
