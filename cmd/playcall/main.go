package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"playcall/internal/annotate"
	"playcall/internal/config"
	"playcall/internal/logging"
	"playcall/internal/odds"
	"playcall/internal/pipeline"
	"playcall/internal/server"
	"playcall/internal/types"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "playcall",
	Short: "playcall - deterministic matchup analysis with a constrained LLM annotator",
	Long: `playcall runs independent detector agents over a matchup's statistical
context, has an external LLM annotate the findings under a strict schema,
and merges, validates, correlates, and hashes the result.

Code owns every number; the model may only annotate.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// analyzeCmd runs one matchup context file through the pipeline.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <context.json>",
	Short: "Analyze a matchup context file and print the response as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read context: %w", err)
		}
		var mc types.MatchupContext
		if err := json.Unmarshal(data, &mc); err != nil {
			return fmt.Errorf("parse context: %w", err)
		}

		annotator, err := buildAnnotator(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		pl := pipeline.New(func() *config.Config { return cfg }, annotator, logger)
		resp, err := pl.Analyze(cmd.Context(), &mc)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// serveCmd runs the HTTP server with threshold hot-reload.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		watcher, err := config.NewWatcher(configPath, cfg, logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			logger.Warn("config watcher unavailable", zap.Error(err))
		} else {
			defer watcher.Stop()
		}

		annotator, err := buildAnnotator(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		var provider odds.Provider
		var opts []pipeline.Option
		if cfg.Server.OddsBase != "" {
			cached := odds.NewCachedProvider(odds.NewHTTPProvider(cfg.Server.OddsBase), 5*time.Minute, logger)
			provider = cached
			opts = append(opts, pipeline.WithCacheStats(cached.Stats))
		}

		pl := pipeline.New(watcher.Current, annotator, logger, opts...)
		engine := server.New(pl, provider, logger)

		srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: engine}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("serving", zap.String("addr", cfg.Server.ListenAddr))
			errCh <- srv.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

// buildAnnotator picks the collaborator: Gemini when a key is configured,
// otherwise the deterministic offline annotator.
func buildAnnotator(ctx context.Context, cfg *config.Config) (annotate.Annotator, error) {
	if cfg.LLM.APIKey == "" {
		logger.Info("no LLM API key configured, using offline annotator")
		return annotate.StaticAnnotator{}, nil
	}
	return annotate.NewGeminiAnnotator(ctx, cfg.LLM)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "playcall.yaml", "path to config file")
	rootCmd.AddCommand(analyzeCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
