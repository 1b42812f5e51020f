package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/learning-roadmaps/internal/api"
	"github.com/terra-clan/learning-roadmaps/internal/cache"
	"github.com/terra-clan/learning-roadmaps/internal/config"
	"github.com/terra-clan/learning-roadmaps/internal/content"
	"github.com/terra-clan/learning-roadmaps/internal/metrics"
	"github.com/terra-clan/learning-roadmaps/internal/probes"
	"github.com/terra-clan/learning-roadmaps/internal/refresh"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
	"github.com/terra-clan/learning-roadmaps/internal/site"
	"github.com/terra-clan/learning-roadmaps/internal/storage"
	"github.com/terra-clan/learning-roadmaps/internal/watch"
)

func serveCmd() *cobra.Command {
	var (
		port      int
		dir       string
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("port") {
					cfg.Server.Port = port
				}
				if cmd.Flags().Changed("content") {
					cfg.Content.Dir = dir
				}
				if cmd.Flags().Changed("watch") {
					cfg.Content.Watch = watchMode
				}
			})
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides SERVER_PORT)")
	cmd.Flags().StringVar(&dir, "content", "./content", "Content directory (overrides CONTENT_DIR)")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "Reload when content files change (overrides CONTENT_WATCH)")

	return cmd
}

func serve(cfg *config.Config) error {
	slog.Info("starting roadmaps",
		"version", Version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"source", cfg.Content.Source,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	m := metrics.New()
	probeRegistry := probes.NewRegistry()

	// Content source
	var source content.Source
	switch cfg.Content.Source {
	case config.SourcePostgres:
		repo, err := openRepository(initCtx, cfg.Database)
		if err != nil {
			return err
		}
		defer repo.Close()
		source = repo

		pgProbe, err := probes.NewPostgresProbe(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("create postgres probe: %w", err)
		}
		defer pgProbe.Close()
		probeRegistry.Register(pgProbe)
	default:
		source = content.NewLoader(cfg.Content.Dir)
	}

	// Initial registry
	reg, err := source.Load(initCtx)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	for _, issue := range reg.Validate() {
		slog.Warn("content issue", "issue", issue.String())
	}
	holder := registry.NewHolder(reg)
	m.SetRegistryStats(reg.Stats())

	probeRegistry.Register(probes.Func("content", func(ctx context.Context) error {
		if len(holder.Load().AllRoadmaps()) == 0 {
			return fmt.Errorf("catalog is empty")
		}
		return nil
	}))

	// Page cache
	pageCache, err := cache.New(initCtx, cfg.Redis, m)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer pageCache.Close()

	renderer, err := site.NewRenderer(cfg.Content.Watch)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	var pages *site.Handler
	if pageCache != nil {
		probeRegistry.Register(pageCache)
		pages = site.NewHandler(holder, renderer, pageCache)
	} else {
		pages = site.NewHandler(holder, renderer, nil)
	}

	// Refresh worker
	hub := api.NewHub()
	refresher := refresh.NewRefresher(source, holder, cfg.Content.RefreshInterval,
		refresh.WithPurger(pageCache),
		refresh.WithNotifier(hub),
		refresh.WithMetrics(m),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher.Start(ctx)

	if cfg.Content.Watch {
		watcher, err := watch.NewWatcher(watch.Config{Root: cfg.Content.Dir}, refresher)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Stop()
		slog.Info("watching content for changes", "dir", cfg.Content.Dir)
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, cfg.Admin, api.Deps{
		Holder:   holder,
		Probes:   probeRegistry,
		Pages:    pages,
		Reloader: refresher,
		Hub:      hub,
		Metrics:  m,
	})
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("roadmaps stopped")
	return nil
}

// openRepository connects to PostgreSQL and applies pending migrations
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (*storage.PostgresRepository, error) {
	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:      cfg.DSN,
		MaxConns: int32(cfg.MaxConns),
		MinConns: int32(cfg.MinConns),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	slog.Info("running database migrations", "dir", cfg.MigrationsDir)
	if err := storage.RunMigrations(ctx, repo.Pool(), storage.MigrationsFS(cfg.MigrationsDir)); err != nil {
		repo.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("database connected successfully")
	return repo, nil
}
