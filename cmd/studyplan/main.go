package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"studyplan/internal/backend"
	"studyplan/internal/cache"
	"studyplan/internal/cli"
	"studyplan/internal/core"
	apphttp "studyplan/internal/http"
	applog "studyplan/internal/log"
	"studyplan/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	grids := cache.NewLRUCache[[]core.DayCell](cfg.GridCacheSize, cfg.GridCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(grids)
	cacheManager.StartCleanup(cfg.GridCacheTTL)

	calendar, err := services.NewCalendarService(result.Backend, result.Backend, cfg.SessionStrategy,
		services.WithGridCache(grids),
		services.WithLocation(cfg.Location()))
	if err != nil {
		logger.Error("Failed to initialize calendar", "error", err, "strategy", cfg.SessionStrategy)
		os.Exit(1)
	}
	completions := services.NewCompletionService(calendar, result.Backend, result.Publisher)

	srv := apphttp.NewServer(":"+cfg.Port, cfg.RateLimitPerMinute, apphttp.Dependencies{
		Calendar:     calendar,
		Completions:  completions,
		Achievements: result.Backend,
		Health:       result.Backend,
		Logger:       logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting studyplan server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"strategy", cfg.SessionStrategy,
		"timezone", cfg.Location().String(),
		"amqp_enabled", result.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
