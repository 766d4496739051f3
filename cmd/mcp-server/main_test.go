package main

import (
	"context"
	"testing"
	"time"

	"github.com/patrickwarner/garminsync/internal/config"
	"github.com/patrickwarner/garminsync/internal/garmin"
	"github.com/patrickwarner/garminsync/internal/wellness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stepsOnly struct {
	loginErr error
	email    string
}

func (s *stepsOnly) Login(context.Context) error { return s.loginErr }
func (s *stepsOnly) SleepData(context.Context, string) (garmin.Payload, error) {
	return garmin.Payload{}, nil
}
func (s *stepsOnly) HRVData(context.Context, string) (garmin.Payload, error) {
	return garmin.Payload{}, nil
}
func (s *stepsOnly) BodyBattery(context.Context, string) (garmin.Payload, error) {
	return garmin.Payload{}, nil
}
func (s *stepsOnly) RestingHeartRateDay(context.Context, string) (garmin.Payload, error) {
	return garmin.Payload{}, nil
}
func (s *stepsOnly) StepsData(context.Context, string) (garmin.Payload, error) {
	return garmin.NewPayload(map[string]any{"totalSteps": 4321.0}), nil
}
func (s *stepsOnly) StressData(context.Context, string) (garmin.Payload, error) {
	return garmin.Payload{}, nil
}

func newSyncServer(t *testing.T, session *stepsOnly) *SyncServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := wellness.NewService(func(email, _ string) wellness.Session {
		session.email = email
		return session
	}, logger, nil, time.UTC)
	svc.SetClock(func() time.Time { return time.Date(2026, 10, 18, 6, 30, 0, 0, time.UTC) })
	return &SyncServer{
		svc:    svc,
		cfg:    config.Config{GarminEmail: "env@example.com", GarminPassword: "pw"},
		logger: logger,
	}
}

func TestSyncMetrics_FallsBackToConfiguredCredentials(t *testing.T) {
	session := &stepsOnly{}
	_, out, err := newSyncServer(t, session).SyncMetrics(context.Background(), nil, SyncMetricsInput{})
	require.NoError(t, err)

	assert.Equal(t, "env@example.com", session.email)
	require.NotNil(t, out.Steps)
	assert.Equal(t, 4321, *out.Steps)
	assert.Nil(t, out.SleepHours)
	assert.Equal(t, "2026-10-18T06:30:00Z", out.LastSync)
}

func TestSyncMetrics_ExplicitCredentials(t *testing.T) {
	session := &stepsOnly{}
	_, _, err := newSyncServer(t, session).SyncMetrics(context.Background(), nil, SyncMetricsInput{Email: "me@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "me@b.com", session.email)
}

func TestSyncMetrics_AuthenticationFailure(t *testing.T) {
	session := &stepsOnly{loginErr: &garmin.AuthenticationError{Reason: "invalid email or password"}}
	_, _, err := newSyncServer(t, session).SyncMetrics(context.Background(), nil, SyncMetricsInput{})
	require.Error(t, err)
	assert.Equal(t, "Authentication failed: invalid email or password", err.Error())
}

func TestSyncMetrics_Unavailable(t *testing.T) {
	s := &SyncServer{logger: zaptest.NewLogger(t)}
	_, _, err := s.SyncMetrics(context.Background(), nil, SyncMetricsInput{})
	assert.EqualError(t, err, "garminconnect library not available")
}

func TestNewMCPServer(t *testing.T) {
	assert.NotNil(t, newMCPServer(newSyncServer(t, &stepsOnly{})))
}
