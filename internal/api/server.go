package api

import (
	"context"
	"time"

	"github.com/patrickwarner/garminsync/internal/config"
	"github.com/patrickwarner/garminsync/internal/observability"
	"github.com/patrickwarner/garminsync/internal/wellness"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("garminsync")

// Notifier delivers the daily knee status question.
type Notifier interface {
	SendKneeCheck(ctx context.Context) error
}

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger  *zap.Logger
	Metrics observability.MetricsRegistry
	Config  config.Config
	// Wellness is nil when the Garmin client could not be set up at start.
	Wellness *wellness.Service
	// Notifier is nil when WhatsApp is not configured.
	Notifier Notifier
	Now      func() time.Time
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, metrics observability.MetricsRegistry, cfg config.Config, svc *wellness.Service, notifier Notifier) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:   logger,
		Metrics:  metrics,
		Config:   cfg,
		Wellness: svc,
		Notifier: notifier,
		Now:      time.Now,
	}
}

// GarminAvailable reports whether the Garmin client loaded at start.
func (s *Server) GarminAvailable() bool {
	return s.Wellness != nil
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
