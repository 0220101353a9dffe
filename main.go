package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/virtual-tryon/api"
	"github.com/raushankrgupta/virtual-tryon/cache"
	"github.com/raushankrgupta/virtual-tryon/config"
	"github.com/raushankrgupta/virtual-tryon/inference"
	"github.com/raushankrgupta/virtual-tryon/scrapers"
	"github.com/raushankrgupta/virtual-tryon/scrapers/base"
	"github.com/raushankrgupta/virtual-tryon/storage"
	"github.com/raushankrgupta/virtual-tryon/store"
	"github.com/raushankrgupta/virtual-tryon/tryon"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB
	mongoClient, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	db := mongoClient.Database(cfg.DBName)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	// Blob storage
	blobs, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init blob storage: %w", err)
	}

	checks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		"storage":  blobs.Ping,
	}

	// Scrape cache is optional
	var scrapeCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		defer redisCache.Close()
		scrapeCache = redisCache
		checks["cache"] = redisCache.Ping
	} else {
		slog.Info("REDIS_URL not set, scrape results will not be cached")
	}

	renderer, err := base.NewRenderer(cfg.Scrape.Renderer, cfg.Scrape.FetchTimeout)
	if err != nil {
		return err
	}
	fetcher := base.NewBaseScraper(
		cfg.Scrape.FetchTimeout,
		base.NewHostLimiter(cfg.Scrape.RatePerHost, cfg.Scrape.Burst),
		renderer,
	)
	resolver := scrapers.NewResolver(fetcher, scrapeCache, cfg.Scrape.CacheTTL)

	httpClient := &http.Client{Timeout: cfg.Scrape.FetchTimeout}
	adapter := inference.NewAdapter(cfg.Inference, blobs, httpClient)
	generator, err := inference.NewGenerator(cfg.Inference, adapter, blobs, httpClient)
	if err != nil {
		return err
	}

	tryOns := store.NewTryOnStore(db)
	orchestrator := tryon.NewOrchestrator(
		&tryon.BlobPhotoUploader{Store: blobs, MaxDimension: cfg.MaxPhotoDimension},
		resolver,
		generator,
		tryOns,
	)

	handler := &api.Handler{
		Scraper:      resolver,
		Segmenter:    adapter,
		Orchestrator: orchestrator,
		Users:        store.NewUserStore(db),
		TryOns:       tryOns,
		Catalog:      store.NewProductStore(db),
		Checks:       checks,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handler, api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.SessionCookieName), cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env,
			"inference_provider", cfg.Inference.Provider, "renderer", cfg.Scrape.Renderer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
