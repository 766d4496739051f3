package wellness

import (
	"fmt"

	"github.com/patrickwarner/garminsync/internal/config"
	"github.com/patrickwarner/garminsync/internal/garmin"
	"github.com/patrickwarner/garminsync/internal/observability"

	"go.uber.org/zap"
)

// NewFromConfig builds the Garmin client and a Service on top of it. It
// returns a nil Service and nil error when the integration is disabled.
func NewFromConfig(cfg config.Config, logger *zap.Logger, metrics observability.MetricsRegistry) (*Service, error) {
	if !cfg.GarminEnabled {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := garmin.NewClient(garmin.Config{
		SSOURL:     cfg.GarminSSOURL,
		ConnectURL: cfg.GarminConnectURL,
		Timeout:    cfg.GarminTimeout,
		UserAgent:  cfg.GarminUserAgent,
	}, logger.Named("garmin"), metrics)
	if err != nil {
		return nil, fmt.Errorf("garmin client: %w", err)
	}
	return NewService(GarminOpener(client), logger, metrics, cfg.Location()), nil
}
