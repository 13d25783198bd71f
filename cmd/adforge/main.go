package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"adforge/internal/api"
	"adforge/pkg/cache"
	"adforge/pkg/catalog"
	"adforge/pkg/config"
	"adforge/pkg/db"
	"adforge/pkg/jobs"
	"adforge/pkg/logging"
	"adforge/pkg/picture"
	"adforge/pkg/prompt"
	"adforge/pkg/request"
	"adforge/pkg/store"
	"adforge/pkg/tracker"
	"adforge/pkg/veo"
	"adforge/pkg/version"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/adforge.yaml", "Path to config file")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("adforge started", "version", version.Version)

	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dbConn.Close()

	if retention := time.Duration(cfg.DB.Retention); retention > 0 {
		if err := dbConn.PruneCache(retention); err != nil {
			slog.Warn("Failed to prune request cache", "error", err)
		}
	}

	tr := tracker.New()
	rc := request.New(cache.NewSQLiteCache(dbConn), tr, time.Duration(cfg.Request.Timeout), cfg.Request.Retries)

	catalogClient := catalog.New(cfg.Catalog.BaseURL, rc)
	fetcher := picture.NewFetcher(rc, &picture.PrefixResolver{
		Prefix:  cfg.Frontend.StaticPrefix,
		BaseURL: cfg.Frontend.BaseURL,
	})

	veoClient, err := veo.NewClient(ctx, cfg.Veo)
	if err != nil {
		return fmt.Errorf("failed to initialize video generator: %w", err)
	}

	videoStore, err := store.New(cfg.Videos.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize video store: %w", err)
	}

	mgr := jobs.NewManager(catalogClient, fetcher, veoClient, videoStore, prompt.NewHistory(cfg.Log.Prompts.Path))

	srv := api.NewServer(cfg.Server.Address,
		api.NewAdHandler(mgr),
		api.NewProductHandler(catalogClient),
		api.NewVideoHandler(videoStore),
		api.NewWatchHandler(mgr, time.Duration(cfg.Watch.Interval)),
		api.NewStatsHandler(tr),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("HTTP server listening", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
