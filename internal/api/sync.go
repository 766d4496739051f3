package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickwarner/garminsync/internal/garmin"
	"github.com/patrickwarner/garminsync/internal/middleware"
	"github.com/patrickwarner/garminsync/internal/wellness"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	maxSyncBodyBytes = 64 << 10

	msgLibraryUnavailable = "garminconnect library not available"
	msgInvalidJSON        = "Invalid JSON"
	msgMissingCredentials = "Email and password required"
	authFailedPrefix      = "Authentication failed: "
)

type healthBody struct {
	Status        string `json:"status"`
	GarminLibrary bool   `json:"garmin_library"`
	Timestamp     string `json:"timestamp"`
}

type syncBody struct {
	Success bool                 `json:"success"`
	Data    *wellness.SyncResult `json:"data"`
}

// SyncHandler serves the sync endpoint: OPTIONS is a CORS preflight, GET is a
// health probe and POST logs in with the posted credentials and returns the
// daily metrics.
func (s *Server) SyncHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "sync"
	method := r.Method

	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		s.observe(endpoint, method, http.StatusOK, start)
	case http.MethodGet:
		writeJSON(w, s.Logger, http.StatusOK, healthBody{
			Status:        "ok",
			GarminLibrary: s.GarminAvailable(),
			Timestamp:     s.timestamp(),
		})
		s.observe(endpoint, method, http.StatusOK, start)
	case http.MethodPost:
		status := s.handleSync(w, r)
		s.observe(endpoint, method, status, start)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeJSON(w, s.Logger, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		s.observe(endpoint, method, http.StatusMethodNotAllowed, start)
	}
}

// handleSync runs the POST flow and returns the status it wrote.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) (status int) {
	ctx, span := tracer.Start(r.Context(), "SyncHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", r.URL.Path),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	fail := func(code int, msg string) int {
		span.SetAttributes(attribute.Int("http.status_code", code))
		if code >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, msg)
		}
		writeJSON(w, logger, code, errorBody{Error: msg})
		return code
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("sync panicked", zap.Any("panic", rec), zap.Stack("stack"))
			status = fail(http.StatusInternalServerError, fmt.Sprint(rec))
		}
	}()

	if !s.GarminAvailable() {
		logger.Error("garmin client unavailable")
		return fail(http.StatusInternalServerError, msgLibraryUnavailable)
	}

	creds, err := decodeCredentials(io.LimitReader(r.Body, maxSyncBodyBytes))
	if err != nil {
		logger.Info("rejected sync request", zap.Error(err))
		if errors.Is(err, wellness.ErrMissingCredentials) {
			return fail(http.StatusBadRequest, msgMissingCredentials)
		}
		return fail(http.StatusBadRequest, msgInvalidJSON)
	}
	span.SetAttributes(attribute.String("garmin.email_domain", wellness.EmailDomain(creds.Email)))

	result, err := s.Wellness.Sync(ctx, creds)
	if err != nil {
		var authErr *garmin.AuthenticationError
		switch {
		case errors.Is(err, wellness.ErrMissingCredentials):
			return fail(http.StatusBadRequest, msgMissingCredentials)
		case errors.As(err, &authErr):
			return fail(http.StatusUnauthorized, authFailedPrefix+authErr.Error())
		default:
			logger.Error("sync failed", zap.Error(err))
			return fail(http.StatusInternalServerError, err.Error())
		}
	}

	logger.Info("sync completed",
		zap.String("email_domain", wellness.EmailDomain(creds.Email)),
		zap.Time("last_sync", result.LastSync))
	writeJSON(w, logger, http.StatusOK, syncBody{Success: true, Data: result})
	return http.StatusOK
}

// errInvalidJSON marks a body that is not JSON at all.
var errInvalidJSON = errors.New("invalid json body")

// decodeCredentials parses the request body. Malformed JSON yields
// errInvalidJSON; well-formed JSON that is not an object with non-empty
// string email and password yields wellness.ErrMissingCredentials.
func decodeCredentials(body io.Reader) (wellness.Credentials, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return wellness.Credentials{}, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if !json.Valid(raw) {
		return wellness.Credentials{}, errInvalidJSON
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return wellness.Credentials{}, wellness.ErrMissingCredentials
	}
	email, _ := fields["email"].(string)
	password, _ := fields["password"].(string)

	creds := wellness.Credentials{Email: email, Password: password}
	if err := wellness.ValidateCredentials(creds); err != nil {
		return wellness.Credentials{}, err
	}
	return creds, nil
}
