// Package cli provides the kwclassify commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kwclassify/internal/classifier"
	"kwclassify/internal/config"
	"kwclassify/internal/logging"
	"kwclassify/internal/ollama"
	"kwclassify/internal/validation"
)

// globalOptions are the persistent flags shared by all commands.
type globalOptions struct {
	logLevel string
}

// NewRootCommand builds the kwclassify command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "kwclassify",
		Short: "Classify keywords for topic relevance and content category",
		Long: `kwclassify screens search keywords against a topic with a local Ollama model.

Each keyword gets a relevance verdict and, when relevant, a content category.
Results are exported as accepted and rejected CSV files.

COMMANDS:
  serve     Run the HTTP API and web UI
  classify  Classify a CSV file or keyword list in the foreground
  models    Show Ollama availability and installed models`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewModelsCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime holds what every command derives from the environment.
type runtime struct {
	cfg      *config.Config
	log      zerolog.Logger
	defaults classifier.Settings
}

func loadRuntime(opts *globalOptions, logOut io.Writer) (*runtime, error) {
	cfg := config.Load()
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	if valid, msg := validation.ValidateURL(cfg.OllamaBaseURL); !valid {
		return nil, fmt.Errorf("invalid OLLAMA_BASE_URL %q: %s", cfg.OllamaBaseURL, msg)
	}

	log := logging.New(cfg.LogLevel, cfg.IsDev(), logOut)

	sf, err := config.LoadSettingsFile(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	if sf != nil {
		log.Info().Str("path", cfg.SettingsFile).Msg("loaded settings file")
	}

	return &runtime{
		cfg:      cfg,
		log:      log,
		defaults: classifier.DefaultSettings().ApplyFile(sf),
	}, nil
}

func (r *runtime) ollamaClient() *ollama.Client {
	return ollama.New(r.cfg.OllamaBaseURL,
		ollama.WithModel(r.cfg.OllamaModel),
		ollama.WithMaxRetries(r.cfg.OllamaMaxRetries),
		ollama.WithTimeout(r.cfg.OllamaTimeout),
		ollama.WithLogger(r.log),
	)
}
