package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/patrickwarner/garminsync/internal/middleware"
	"github.com/patrickwarner/garminsync/internal/wellness"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const credentialsHint = "Set GARMIN_EMAIL and GARMIN_PASSWORD in the service environment"

type cronBody struct {
	Success      bool                 `json:"success"`
	GarminData   *wellness.SyncResult `json:"garminData"`
	WhatsAppSent bool                 `json:"whatsappSent"`
	Timestamp    string               `json:"timestamp"`
}

type cronErrorBody struct {
	Error     string `json:"error"`
	Hint      string `json:"hint,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// DailySyncHandler is triggered by the scheduler once a day. It syncs the
// configured account and then asks the user about their knee over WhatsApp.
// A failed sync is logged and does not stop the message.
func (s *Server) DailySyncHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "daily_sync"
	method := r.Method

	ctx, span := tracer.Start(r.Context(), "DailySyncHandler")
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	respond := func(status int, body any) {
		span.SetAttributes(attribute.Int("http.status_code", status))
		writeJSON(w, logger, status, body)
		s.observe(endpoint, method, status, start)
	}

	if !s.authorizedCron(r) {
		logger.Warn("unauthorized cron request")
		respond(http.StatusUnauthorized, cronErrorBody{Error: "Unauthorized"})
		return
	}

	logger.Info("daily sync started")

	if !s.Config.HasGarminCredentials() {
		logger.Error("garmin credentials not configured")
		respond(http.StatusInternalServerError, cronErrorBody{
			Error: "Garmin credentials not configured",
			Hint:  credentialsHint,
		})
		return
	}

	var data *wellness.SyncResult
	if s.Wellness == nil {
		logger.Warn("garmin client unavailable, skipping sync")
	} else {
		result, err := s.Wellness.Sync(ctx, wellness.Credentials{
			Email:    s.Config.GarminEmail,
			Password: s.Config.GarminPassword,
		})
		if err != nil {
			// the user can still enter today's values by hand
			logger.Error("garmin sync failed", zap.Error(err))
		} else {
			data = result
			logger.Info("garmin data fetched", zap.Time("last_sync", result.LastSync))
		}
	}

	sent := false
	if s.Notifier == nil {
		logger.Info("whatsapp not configured, skipping message")
	} else {
		if err := s.Notifier.SendKneeCheck(ctx); err != nil {
			logger.Error("daily sync failed", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			respond(http.StatusInternalServerError, cronErrorBody{Error: err.Error(), Timestamp: s.timestamp()})
			return
		}
		sent = true
	}

	respond(http.StatusOK, cronBody{
		Success:      true,
		GarminData:   data,
		WhatsAppSent: sent,
		Timestamp:    s.timestamp(),
	})
}

// authorizedCron accepts every request when no secret is configured.
func (s *Server) authorizedCron(r *http.Request) bool {
	if s.Config.CronSecret == "" {
		return true
	}
	want := "Bearer " + s.Config.CronSecret
	got := r.Header.Get("Authorization")
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
