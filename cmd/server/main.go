/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tax-calendar alert service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (YAML file + TAXENGINE_* env overrides)
  2. Build the zap logger
  3. Open the SQLite client store
  4. Pick the notifier (Resend when an API key is configured, log-only otherwise)
  5. Wire scheduler, metrics, handler and router
  6. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional; env/defaults apply without it)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests (an in-flight alert run finishes or times out with them), close
  the database, exit.

SEE ALSO:
  - config/config.go: configuration shape and defaults
  - api/server.go: router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/contaflow/tax-engine/alert"
	"github.com/contaflow/tax-engine/api"
	"github.com/contaflow/tax-engine/config"
	"github.com/contaflow/tax-engine/factory"
	"github.com/contaflow/tax-engine/notify"
	"github.com/contaflow/tax-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	var notifier notify.Notifier
	if cfg.Email.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, logger)
		logger.Info("email delivery enabled", zap.String("from", cfg.Email.FromAddress))
	} else {
		notifier = notify.NewLogNotifier(logger)
		logger.Warn("no email API key configured, reminders will only be logged")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	profileFactory := factory.NewProfileFactoryWithDefaults(cfg.Alerts.DefaultDays)
	scheduler := alert.NewScheduler(store, profileFactory, notifier, logger)
	scheduler.Metrics = alert.NewMetrics(registry)
	scheduler.HorizonDays = cfg.Alerts.HorizonDays
	scheduler.DispatchTimeout = time.Duration(cfg.Alerts.DispatchTimeout) * time.Second
	scheduler.Parallelism = cfg.Alerts.Parallelism

	handler := api.NewHandler(store, profileFactory, scheduler, logger, cfg.Cron.Secret)
	router := api.NewRouter(handler, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
