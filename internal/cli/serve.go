package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kwclassify/internal/classifier"
	"kwclassify/internal/jobs"
	"kwclassify/internal/metrics"
	"kwclassify/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web UI",
		Long: `Run the HTTP API on SERVER_ADDR.

Configuration comes from environment variables (OLLAMA_BASE_URL, OLLAMA_MODEL,
UPLOAD_DIR, OUTPUT_DIR, ...) plus an optional SETTINGS_FILE overlay for the
default classification settings. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(opts, os.Stdout)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), rt)
		},
	}
}

func runServe(ctx context.Context, rt *runtime) error {
	cfg, log := rt.cfg, rt.log

	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	client := rt.ollamaClient()
	if client.IsAvailable(ctx) {
		log.Info().Str("url", cfg.OllamaBaseURL).Strs("models", client.ListModels(ctx)).Msg("ollama reachable")
	} else {
		log.Warn().Str("url", cfg.OllamaBaseURL).Msg("ollama not reachable, keywords will be rejected until it is")
	}

	store := jobs.NewStore()
	coordinator := jobs.NewCoordinator(store, classifier.New(client, log), cfg.OutputDir, log)
	metrics.Init(store)

	srv := server.New(cfg, log)
	srv.RegisterRoutes(server.Deps{
		Probe:    client,
		Jobs:     coordinator,
		Defaults: rt.defaults,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}
