package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickwarner/garminsync/internal/api"
	"github.com/patrickwarner/garminsync/internal/config"
	"github.com/patrickwarner/garminsync/internal/middleware"
	"github.com/patrickwarner/garminsync/internal/notify"
	"github.com/patrickwarner/garminsync/internal/observability"
	"github.com/patrickwarner/garminsync/internal/wellness"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	// .env.local wins over .env; real environment variables win over both
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	// A broken Garmin setup keeps the server up; the sync endpoint then
	// reports the library as unavailable.
	svc, err := wellness.NewFromConfig(cfg, logger, metricsRegistry)
	if err != nil {
		logger.Error("garmin client unavailable", zap.Error(err))
	}

	var notifier api.Notifier
	if cfg.WhatsAppConfigured() {
		notifier = notify.NewWhatsAppClient(notify.WhatsAppConfig{
			GraphURL:  cfg.WhatsAppGraphURL,
			PhoneID:   cfg.WhatsAppPhoneID,
			Token:     cfg.WhatsAppToken,
			Recipient: cfg.WhatsAppUserNumber,
			Timeout:   cfg.WhatsAppTimeout,
		}, logger.Named("whatsapp"), metricsRegistry)
	}

	srvDeps := api.NewServer(logger, metricsRegistry, cfg, svc, notifier)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      newHandler(srvDeps, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Garmin sync server running",
		zap.String("addr", addr),
		zap.Bool("garmin_library", srvDeps.GarminAvailable()),
		zap.Bool("whatsapp", notifier != nil))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

// newHandler builds the router. Unknown methods on a known path get 405 from mux.
func newHandler(s *api.Server, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()
	for _, path := range []string{"/", "/api/garmin/sync"} {
		r.HandleFunc(path, s.SyncHandler).Methods("OPTIONS", "GET", "POST")
	}
	r.HandleFunc("/api/cron/daily-sync", s.DailySyncHandler).Methods("GET", "POST")
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	r.Use(middleware.WithRequestID, middleware.WithTraceLogger(logger))

	return otelhttp.NewHandler(r, "garminsync")
}
