package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/config"
	"github.com/rajsexperiments/scanner-final/internal/httpapi"
	"github.com/rajsexperiments/scanner-final/internal/inventory/ledger"
	"github.com/rajsexperiments/scanner-final/internal/inventory/service"
	"github.com/rajsexperiments/scanner-final/internal/logging"
	"github.com/rajsexperiments/scanner-final/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout).With("component", "scanner-server")

	if cfg.LedgerAPIKey == "" && cfg.Env == "prod" {
		logger.Error("SCANNER_LEDGER_API_KEY is required in prod")
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// Ledger client and proxy
	lc := ledger.NewClient(ledger.Config{
		URL:     cfg.LedgerURL,
		APIKey:  cfg.LedgerAPIKey,
		Timeout: cfg.LedgerTimeout(),
		Logger:  logger,
		Metrics: m,
	})
	proxy := service.NewProxyService(lc)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logger,
		Addr:           cfg.HTTPAddr,
		Proxy:          proxy,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var health *httpapi.HealthServer
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Error("grpc listen", "addr", cfg.GRPCAddr, "error", err)
			os.Exit(1)
		}
		health = httpapi.NewHealthServer(logger)
		go func() {
			if err := health.Serve(lis); err != nil {
				logger.Error("grpc health error", "error", err)
				stop()
			}
		}()
	}

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "ledger", cfg.LedgerURL, "env", cfg.Env)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if health != nil {
		health.Shutdown()
	}
	_ = srv.Shutdown(shutdownCtx)
}
