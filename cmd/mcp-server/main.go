package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/patrickwarner/garminsync/internal/config"
	"github.com/patrickwarner/garminsync/internal/garmin"
	"github.com/patrickwarner/garminsync/internal/observability"
	"github.com/patrickwarner/garminsync/internal/wellness"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type SyncMetricsInput struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// SyncMetricsOutput mirrors the HTTP sync payload with lastSync as RFC 3339.
type SyncMetricsOutput struct {
	LastSync    string   `json:"lastSync"`
	SleepHours  *float64 `json:"sleepHours"`
	SleepScore  *int     `json:"sleepScore"`
	BodyBattery *int     `json:"bodyBattery"`
	HRV         *int     `json:"hrv"`
	HRVAvg7d    *int     `json:"hrvAvg7d"`
	RestingHR   *int     `json:"restingHR"`
	Steps       *int     `json:"steps"`
	StressLevel *int     `json:"stressLevel"`
}

// SyncServer exposes the daily sync as an MCP tool.
type SyncServer struct {
	svc    *wellness.Service
	cfg    config.Config
	logger *zap.Logger
}

// SyncMetrics implements the sync_garmin_metrics tool. Missing credentials
// fall back to GARMIN_EMAIL and GARMIN_PASSWORD.
func (s *SyncServer) SyncMetrics(ctx context.Context, req *mcp.CallToolRequest, input SyncMetricsInput) (*mcp.CallToolResult, SyncMetricsOutput, error) {
	if s.svc == nil {
		return nil, SyncMetricsOutput{}, errors.New("garminconnect library not available")
	}

	if s.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WriteTimeout)
		defer cancel()
	}

	creds := wellness.Credentials{Email: input.Email, Password: input.Password}
	if creds.Email == "" {
		creds.Email = s.cfg.GarminEmail
	}
	if creds.Password == "" {
		creds.Password = s.cfg.GarminPassword
	}

	res, err := s.svc.Sync(ctx, creds)
	if err != nil {
		s.logger.Warn("sync tool failed", zap.String("email_domain", wellness.EmailDomain(creds.Email)), zap.Error(err))
		if garmin.IsAuthenticationError(err) {
			return nil, SyncMetricsOutput{}, fmt.Errorf("Authentication failed: %w", err)
		}
		return nil, SyncMetricsOutput{}, err
	}

	s.logger.Info("sync tool completed", zap.String("email_domain", wellness.EmailDomain(creds.Email)))
	return nil, toOutput(res), nil
}

func toOutput(r *wellness.SyncResult) SyncMetricsOutput {
	return SyncMetricsOutput{
		LastSync:    r.LastSync.UTC().Format(time.RFC3339),
		SleepHours:  r.SleepHours,
		SleepScore:  r.SleepScore,
		BodyBattery: r.BodyBattery,
		HRV:         r.HRV,
		HRVAvg7d:    r.HRVAvg7d,
		RestingHR:   r.RestingHR,
		Steps:       r.Steps,
		StressLevel: r.StressLevel,
	}
}

func newMCPServer(s *SyncServer) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "garminsync",
		Version: observability.ServiceVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_garmin_metrics",
		Description: "Log into Garmin Connect and return today's sleep, HRV, body battery, resting heart rate and stress plus yesterday's steps",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"email": map[string]interface{}{
					"type":        "string",
					"description": "Garmin account email (optional, defaults to GARMIN_EMAIL)",
				},
				"password": map[string]interface{}{
					"type":        "string",
					"description": "Garmin account password (optional, defaults to GARMIN_PASSWORD)",
				},
			},
		},
	}, s.SyncMetrics)

	return server
}

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := config.Load()

	// stdout carries the MCP stream
	logger, err := observability.InitStderrLogger(cfg.ServiceName + "-mcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	svc, err := wellness.NewFromConfig(cfg, logger, observability.NewNoOpRegistry())
	if err != nil {
		logger.Error("garmin client unavailable", zap.Error(err))
	}

	server := newMCPServer(&SyncServer{svc: svc, cfg: cfg, logger: logger})

	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    &logBuffer,
	}

	logger.Info("MCP Server running via stdio", zap.Bool("garmin_library", svc != nil))

	if err := server.Run(context.Background(), loggingTransport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
