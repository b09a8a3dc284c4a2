package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"rewards/internal/amqp"
	"rewards/internal/backend"
	"rewards/internal/cli"
	apphttp "rewards/internal/http"
	"rewards/internal/log"
	"rewards/internal/middleware/ratelimit"
	"rewards/internal/services"
	"rewards/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	reports := services.NewReportService(res.Provider, services.ReportServiceConfig{
		Retries: cfg.FetchRetries,
		Backoff: cfg.FetchBackoff,
		Timeout: cfg.FetchTimeout,
	}, logger)

	srv := apphttp.NewServer(":"+cfg.Port, reports, apphttp.Options{
		DefaultRangeMonths: cfg.DefaultRangeMonths,
		RateLimit:          ratelimit.DefaultConfig(),
		Provider:           res.Provider,
	}, logger)

	// Ingest in-process when the backend can store what arrives on the queue.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" && res.Writer != nil {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, ingest disabled", log.FieldError, err)
			amqpClient = nil
		}
	} else if cfg.AMQPURL != "" {
		logger.Info("AMQP ingest skipped: backend is read-only", "backend", cfg.DataBackend)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			amqpClient.Close()
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	})

	if amqpClient != nil {
		ingest := worker.NewIngestWorker(res.Writer, logger)
		ingest.OnIngested(res.Provider.Invalidate)
		go func() {
			if err := ingest.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ingest worker stopped", log.FieldError, err)
			}
		}()
	}

	logger.Info("Starting rewards server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
