package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/patrickwarner/garminsync/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	calls int
	err   error
}

func (n *stubNotifier) SendKneeCheck(context.Context) error {
	n.calls++
	return n.err
}

func cronServer(t *testing.T, session *stubSession, notifier Notifier) *Server {
	t.Helper()
	srv := newTestServer(t, session, nil)
	srv.Config = config.Config{
		CronSecret:     "s3cret",
		GarminEmail:    "me@example.com",
		GarminPassword: "pw",
	}
	srv.Notifier = notifier
	return srv
}

func doCron(srv *Server, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/cron/daily-sync", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	srv.DailySyncHandler(rec, req)
	return rec
}

func TestDailySyncHandler_Unauthorized(t *testing.T) {
	notifier := &stubNotifier{}
	srv := cronServer(t, newStubSession(), notifier)

	for _, auth := range []string{"", "Bearer wrong", "s3cret"} {
		rec := doCron(srv, auth)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	}
	assert.Zero(t, notifier.calls)
}

func TestDailySyncHandler_NoSecretAllowsAll(t *testing.T) {
	srv := cronServer(t, newStubSession(), nil)
	srv.Config.CronSecret = ""

	rec := doCron(srv, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDailySyncHandler_MissingCredentials(t *testing.T) {
	srv := cronServer(t, newStubSession(), nil)
	srv.Config.GarminPassword = ""

	rec := doCron(srv, "Bearer s3cret")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body cronErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Garmin credentials not configured", body.Error)
	assert.Contains(t, body.Hint, "GARMIN_EMAIL")
}

func TestDailySyncHandler_SyncsAndNotifies(t *testing.T) {
	session := newStubSession()
	notifier := &stubNotifier{}
	srv := cronServer(t, session, notifier)

	rec := doCron(srv, "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success      bool           `json:"success"`
		GarminData   map[string]any `json:"garminData"`
		WhatsAppSent bool           `json:"whatsappSent"`
		Timestamp    string         `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.WhatsAppSent)
	assert.Equal(t, 8123.0, body.GarminData["steps"])
	assert.NotEmpty(t, body.Timestamp)
	assert.Equal(t, "me@example.com", session.email)
	assert.Equal(t, 1, notifier.calls)
}

func TestDailySyncHandler_SyncFailureStillNotifies(t *testing.T) {
	session := newStubSession()
	session.loginErr = errors.New("sso down")
	notifier := &stubNotifier{}

	rec := doCron(cronServer(t, session, notifier), "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body["garminData"])
	assert.Equal(t, true, body["whatsappSent"])
	assert.Equal(t, 1, notifier.calls)
}

func TestDailySyncHandler_WhatsAppNotConfigured(t *testing.T) {
	rec := doCron(cronServer(t, newStubSession(), nil), "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["whatsappSent"])
}

func TestDailySyncHandler_NotifyFailure(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("WhatsApp API error: bad token")}

	rec := doCron(cronServer(t, newStubSession(), notifier), "Bearer s3cret")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body cronErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "WhatsApp API error: bad token", body.Error)
	assert.NotEmpty(t, body.Timestamp)
}
