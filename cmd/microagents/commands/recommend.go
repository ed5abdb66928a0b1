package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/store"
)

// NewRecommendCmd constructs the `microagents recommend` command, which
// suggests follow-up videos for a prompt and prints them as JSON.
func NewRecommendCmd() *cobra.Command {
	var req agent.VideoRequest
	var topK int
	var csvPath string

	cmd := &cobra.Command{
		Use:   "recommend [prompt]",
		Short: "Suggest follow-up videos based on past video performance",
		Long: `Suggest follow-up videos for a prompt.

Past videos from <data dir>/youtube.csv (or --csv) are ranked by a blend of
text similarity to the prompt and normalised engagement. One LLM call per
top video drafts a title, hook, and outline; when the model answer is not
usable a fixed template is used and marked "default".

The CSV needs title, views and likes columns; script is optional.

Examples:
  microagents recommend "AI agents for beginners"
  microagents recommend --top-k 2 --csv my_channel.csv "travel on a budget"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inline, err := readInline(csvPath)
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			req.Prompt = args[0]
			req.TopK = topKFlag(cmd, topK)
			req.YouTubeFile = inline

			agents, _, err := buildAgents(logging.FromContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			return runAgent(cmd, "video", req, agents.Video.Recommend, agent.VideoFailure,
				func(r agent.VideoRequest, resp *agent.VideoResponse) store.Interaction {
					answer := resp.Error
					if answer == "" {
						answer = fmt.Sprintf("%d recommendations", len(resp.Recommendations))
					}
					return store.Interaction{Query: r.Prompt, Answer: answer, Outcome: resp.Outcome}
				})
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", agent.DefaultTopK, "Number of recommendations")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to a video CSV used instead of the data directory")
	addSelectionFlags(cmd, &req.LLMSelection)

	return cmd
}
