package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"saldo/internal/analytics"
	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/core"
	"saldo/internal/format"
	apphttp "saldo/internal/http"
	"saldo/internal/identity"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.MustLoadConfig(logger, false)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	formatter, err := format.NewFormatter(cfg.Currency, cfg.Language)
	if err != nil {
		logger.Error("Invalid currency", log.FieldError, err)
		os.Exit(1)
	}
	labels := format.NewLabels(cfg.Language)
	catalog := core.DefaultCatalog()

	sessions := ledger.NewSessions(result.Store,
		ledger.WithCatalog(catalog),
		ledger.WithLogger(logger))
	engine := analytics.NewEngine(catalog, cfg.AnalyticsCacheSize, cfg.AnalyticsCacheTTL,
		analytics.WithLabeler(labels, labels.Locale()))

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Sessions:           sessions,
		Engine:             engine,
		Formatter:          formatter,
		Identity:           identity.New(cfg.OwnerHeader, cfg.OwnerID),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting saldo server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"language", labels.Locale(),
		"currency", formatter.Code())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
