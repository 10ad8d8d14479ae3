// Package main is the entrypoint for the FailWatch API server.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zylker/failwatch/internal/ai"
	"github.com/zylker/failwatch/internal/api"
	"github.com/zylker/failwatch/internal/api/handler"
	mw "github.com/zylker/failwatch/internal/api/middleware"
	"github.com/zylker/failwatch/internal/api/response"
	"github.com/zylker/failwatch/internal/cache"
	"github.com/zylker/failwatch/internal/config"
	"github.com/zylker/failwatch/internal/metrics"
	"github.com/zylker/failwatch/internal/source"
	"github.com/zylker/failwatch/pkg/deeplink"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 3. Register metrics
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// 4. Create source client and aggregator
	sourceClient := source.NewHTTPClient(cfg.Source.BaseURL, cfg.Source.AuthToken, cfg.Source.Timeout)
	aggregator := source.NewAggregator(sourceClient, redisCache, source.DefaultSources, cfg.Source.CacheTTL)

	// 5. Create AI provider and chat service
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())
	chatService := ai.NewChatService(provider, cfg.AI.InferenceTimeout)

	// 6. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, 60),

		HealthHandler:     healthHandler(redisCache, sourceClient),
		FailuresHandler:   handler.NewFailuresHandler(aggregator),
		DiagnoseHandler:   handler.NewDiagnoseHandler(deeplink.NewBuilder(cfg.DeepLink.BaseURL)),
		ChatHandler:       handler.NewChatHandler(chatService),
		ClearCacheHandler: handler.NewClearCacheHandler(redisCache),

		MetricsHandler: promhttp.Handler(),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks cache and upstream connectivity.
func healthHandler(c cache.Cache, src source.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"cache":  "ok",
			"source": "ok",
		}

		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}
		if err := src.Ready(r.Context()); err != nil {
			checks["source"] = "degraded"
		}

		degraded := checks["cache"] != "ok" || checks["source"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
