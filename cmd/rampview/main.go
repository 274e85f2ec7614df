package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"rampview/internal/amqp"
	"rampview/internal/backend"
	"rampview/internal/cli"
	"rampview/internal/config"
	apphttp "rampview/internal/http"
	"rampview/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(cfg, logger)

	// run owns the defers, so cleanup happens even on the error path
	if err := run(cfg, store, logger); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, store backend.TransactionStore, logger *log.Logger) error {
	defer store.Close()

	srv := apphttp.NewServer(apphttp.Config{
		Addr:         ":" + cfg.Port,
		FeeRate:      cfg.FeeRateDecimal(),
		CacheTTL:     cfg.CacheTTL,
		CacheMaxSize: cfg.CacheMaxSize,
	}, store, logger)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	consumeCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	// Refresh announcements from the worker invalidate the snapshot cache.
	// The server runs fine without a broker, caches then expire by TTL.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without cache invalidation", "error", err)
		} else {
			defer amqpClient.Close()
			go func() {
				err := amqpClient.ConsumeRefresh(consumeCtx, func(msg *amqp.RefreshMessage) error {
					srv.InvalidateAll()
					return nil
				})
				if err != nil && consumeCtx.Err() == nil {
					logger.Error("Refresh consumer stopped", "error", err)
				}
			}()
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopConsumer()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting rampview server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
