package main

import (
	"net"
	"os"
	"time"

	"rentdash/internal/backend"
	"rentdash/internal/cache"
	"rentdash/internal/cli"
	apphttp "rentdash/internal/http"
	applog "rentdash/internal/log"
	"rentdash/internal/services"
	"rentdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create dataset backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	svc := services.NewDashboardService(result.Source, services.Options{
		DatasetTTL:      cfg.DatasetCacheTTL,
		RenderCacheSize: cfg.RenderCacheSize,
		SourceTimeout:   cfg.SourceTimeout,
		Logger:          logger,
	})

	// A dataset that cannot be read, lacks a column or fails to parse is
	// fatal at startup.
	ls, err := svc.Listings(ctx)
	if err != nil {
		logger.Error("Failed to load dataset", applog.FieldError, err,
			applog.FieldSource, svc.Source(),
			applog.FieldOperation, applog.OpStartup)
		os.Exit(1)
	}
	logger.Info("Dataset ready",
		applog.FieldSource, svc.Source(),
		applog.FieldRows, len(ls),
		applog.FieldCities, len(ls.Cities()))

	cacheManager := cache.NewManager()
	for _, c := range svc.Caches() {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	if amqpClient := cli.InitAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		refresh := worker.NewRefreshWorker(amqpClient, svc)
		go func() {
			if err := refresh.Run(ctx); err != nil {
				logger.WithComponent(applog.ComponentWorker).Error("Refresh worker stopped", applog.FieldError, err)
			}
		}()
		logger.Info("Refresh worker started", "queue", cfg.AMQPQueue)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RateLimitRPM: cfg.RateLimitRPM,
		StaticMaxAge: 3600,
		Logger:       logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Starting rentdash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.Run(ctx, ln, 30*time.Second); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully", "requests", srv.TotalRequests())
}
