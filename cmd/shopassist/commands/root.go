// ABOUTME: Root command, global flags and shared setup for every subcommand
// ABOUTME: Builds the application stack from .env, an optional YAML file and the environment
package commands

import (
	"errors"
	"fmt"

	"github.com/harper/shopassist/internal/app"
	"github.com/harper/shopassist/internal/config"
	"github.com/harper/shopassist/internal/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
 ███████╗██╗  ██╗ ██████╗ ██████╗
 ██╔════╝██║  ██║██╔═══██╗██╔══██╗
 ███████╗███████║██║   ██║██████╔╝
 ╚════██║██╔══██║██║   ██║██╔═══╝
 ███████║██║  ██║╚██████╔╝██║
 ╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚═╝  assist
`

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopassist",
		Short: "Retrieval-augmented shopping assistant",
		Long: banner + `
A shopping assistant that answers questions about a product catalog.

Each user turn is checked to decide whether the catalog needs searching.
When it does, a search query is written from the conversation, embedded,
and matched against product descriptions by cosine similarity. The best
matches are handed to the chat model together with the question.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "table", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unknown format %q (want auto, table, json or yaml)", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json, yaml")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (environment variables override it)")

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewCatalogCmd())
	cmd.AddCommand(NewTranscriptCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env, the optional config file and the environment
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.LoadFile(configPath)
}

// newLogger picks a logger for interactive commands: debug output with
// --verbose or ASSISTANT_DEBUG, errors only otherwise
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if verbose || cfg.Debug {
		return util.NewLogger(true)
	}
	return util.NewQuietLogger()
}

// openApp builds the full OpenAI-backed stack
func openApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// jsonOutput reports whether results should be printed as JSON
func jsonOutput() bool {
	return outputFormat == "json"
}
