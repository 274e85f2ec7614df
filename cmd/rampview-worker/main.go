package main

import (
	"context"
	"errors"
	"time"

	"rampview/internal/amqp"
	"rampview/internal/cli"
	"rampview/internal/log"
	"rampview/internal/services"
	"rampview/internal/upstream"
	"rampview/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentPoller)

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.UpstreamBaseURL == "" {
		logger.Error("UPSTREAM_BASE_URL is required for the worker")
		return
	}

	store := cli.InitStore(cfg, logger)
	defer store.Close()

	source := upstream.NewClient(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Token:   cfg.UpstreamToken,
		Timeout: cfg.UpstreamTimeout,
	}, logger)

	var publisher services.RefreshPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, refreshes will not be announced", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	refreshService := services.NewRefreshService(source, store, publisher)
	poller := worker.NewPoller(refreshService, cfg.PollInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting rampview worker",
		"poll_interval", cfg.PollInterval.String(),
		"upstream", cfg.UpstreamBaseURL,
		"backend", cfg.DataBackend)

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Poller stopped with error", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
