// Package commands defines all Cobra CLI commands for the microagents binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/54b3r/microagents-go/internal/audit"
	"github.com/54b3r/microagents-go/internal/config"
	"github.com/54b3r/microagents-go/internal/logging"
)

// configPath holds the --config flag value for config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "microagents",
		Short: "Small LLM agents over local air-quality, document, and video data",
		Long: `microagents answers questions with three small agents:

  aqi        air-quality questions over daily city readings
  docs       questions over a local text/PDF corpus, with citations
  recommend  follow-up video ideas from past video performance

Each agent retrieves local records, builds a prompt, and makes one LLM call.
The model backend is selected with MODEL_PROVIDER (openrouter by default) or
a config file (~/.microagents/config.yaml or config.toml).
See 'microagents --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Env vars always override file and .env values.
			path, err := config.Load(configPath, logging.New())
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Rebuild the logger: the config may have set LOG_LEVEL or LOG_FORMAT.
			log := logging.New()
			cmd.SetContext(logging.WithLogger(cmd.Context(), log))

			audit.LogCommandStart(cmd.Context(), log, cmd.Name(), loadedConfigPath)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or TOML config file (default: ~/.microagents/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewAQICmd(),
		NewDocsCmd(),
		NewRecommendCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
