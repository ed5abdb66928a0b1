package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/store"
)

// NewDocsCmd constructs the `microagents docs` command, which answers one
// question from the document corpus and prints the answer with citations.
func NewDocsCmd() *cobra.Command {
	var req agent.DocumentRequest
	var topK int

	cmd := &cobra.Command{
		Use:   "docs [question]",
		Short: "Ask a question answered from the local documents",
		Long: `Answer a question from the .txt and .pdf files under <data dir>/pdfs.

Documents are split into overlapping chunks, ranked against the question
with TF-IDF, and the best chunks are sent to the LLM as context. The
response cites each chunk used.

Examples:
  microagents docs "What do agents use tools for?"
  microagents docs --top-k 5 "Where should I travel in autumn?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Question = args[0]
			req.TopK = topKFlag(cmd, topK)

			agents, _, err := buildAgents(logging.FromContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("docs: %w", err)
			}
			return runAgent(cmd, "documents", req, agents.Documents.Answer, agent.DocumentFailure,
				func(r agent.DocumentRequest, resp *agent.DocumentResponse) store.Interaction {
					return store.Interaction{Query: r.Question, Answer: resp.Answer, Outcome: resp.Outcome}
				})
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", agent.DefaultTopK, "Number of chunks used as context")
	addSelectionFlags(cmd, &req.LLMSelection)

	return cmd
}
