package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wabisaby/toolrank/internal/config"
	"github.com/wabisaby/toolrank/internal/handler"
	"github.com/wabisaby/toolrank/internal/model"
	"github.com/wabisaby/toolrank/internal/service"
	"github.com/wabisaby/toolrank/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configFile string
	flags      *pflag.FlagSet
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "toolrank",
		Short:         "Rank open-source tools by GitHub popularity and serve the catalog",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "optional config file (yaml, toml or json)")
	config.RegisterFlags(root.PersistentFlags())
	opts.flags = root.PersistentFlags()

	root.AddCommand(
		newServeCmd(opts),
		newScrapeCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Build the ranked catalog and serve GET /tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newScrapeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Build the ranked catalog, write the cache file and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			snapshot, err := buildSnapshot(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tools, %d ranked, cache %s\n", snapshot.Len(), snapshot.RankedCount(), cfg.CachePath)
			if snapshot.Empty() {
				return service.ErrEmptySnapshot
			}
			return nil
		},
	}
}

func setup(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configFile, opts.flags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildSnapshot runs the startup pipeline once. metrics may be nil.
func buildSnapshot(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics, logger *zap.Logger) (*model.Snapshot, error) {
	client := service.NewGitHubClient(
		service.WithBaseURL(cfg.GitHubAPIURL),
		service.WithTimeout(cfg.GitHubTimeout),
		service.WithToken(cfg.GitHubToken),
	)

	// metrics may be a nil *Metrics; its methods are nil-safe.
	pipeline := &service.Pipeline{
		Loader:   service.NewCatalogLoader(cfg.CatalogPath, logger),
		Fetcher:  service.NewPopularityFetcher(client, metrics, logger),
		Cache:    service.NewCacheWriter(cfg.CachePath, logger),
		Observer: metrics,
		Logger:   logger,
	}

	logger.Info("Scraping GitHub and updating cache...")
	snapshot, err := pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Done.")
	return snapshot, nil
}

func runServe(parent context.Context, opts *rootOptions) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(registry)

	snapshot, err := buildSnapshot(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}

	router := NewRouter(handler.NewToolsHandler(snapshot, metrics), logger)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := telemetry.StartServer(ctx, telemetry.ServerOptions{
			Addr:     cfg.MetricsAddr,
			Registry: registry,
			Tools:    snapshot.Len,
		}, logger)
		if err != nil {
			logger.Error("observability server", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info(fmt.Sprintf(config.StartupServerURLFormat, cfg.Addr()),
		zap.String("catalog", cfg.CatalogPath),
		zap.Int("tools", snapshot.Len()),
	)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
