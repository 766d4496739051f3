package wellness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/patrickwarner/garminsync/internal/garmin"
	"github.com/patrickwarner/garminsync/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeSession answers each getter from a canned payload or error and records
// the date each getter was called with.
type fakeSession struct {
	loginErr error
	payloads map[string]garmin.Payload
	errs     map[string]error
	panics   map[string]bool
	dates    map[string]string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		payloads: map[string]garmin.Payload{},
		errs:     map[string]error{},
		panics:   map[string]bool{},
		dates:    map[string]string{},
	}
}

func (f *fakeSession) Login(context.Context) error { return f.loginErr }

func (f *fakeSession) answer(metric, date string) (garmin.Payload, error) {
	f.dates[metric] = date
	if f.panics[metric] {
		panic(metric + " exploded")
	}
	return f.payloads[metric], f.errs[metric]
}

func (f *fakeSession) SleepData(_ context.Context, date string) (garmin.Payload, error) {
	return f.answer("sleep", date)
}
func (f *fakeSession) HRVData(_ context.Context, date string) (garmin.Payload, error) {
	return f.answer("hrv", date)
}
func (f *fakeSession) BodyBattery(_ context.Context, date string) (garmin.Payload, error) {
	return f.answer("body_battery", date)
}
func (f *fakeSession) RestingHeartRateDay(_ context.Context, date string) (garmin.Payload, error) {
	return f.answer("resting_hr", date)
}
func (f *fakeSession) StepsData(_ context.Context, date string) (garmin.Payload, error) {
	return f.answer("steps", date)
}
func (f *fakeSession) StressData(_ context.Context, date string) (garmin.Payload, error) {
	return f.answer("stress", date)
}

func fullSession() *fakeSession {
	f := newFakeSession()
	f.payloads["sleep"] = garmin.NewPayload(map[string]any{
		"dailySleepDTO": map[string]any{
			"sleepTimeSeconds": 27000.0,
			"sleepScores":      map[string]any{"overall": map[string]any{"value": 84.0}},
		},
	})
	f.payloads["hrv"] = garmin.NewPayload(map[string]any{
		"hrvSummary": map[string]any{"lastNightAvg": 45.0, "weeklyAvg": 49.0},
	})
	f.payloads["body_battery"] = garmin.NewPayload([]any{
		map[string]any{"bodyBatteryLevel": 20.0},
		map[string]any{"bodyBatteryLevel": 67.0, "charged": 70.0},
	})
	f.payloads["resting_hr"] = garmin.NewPayload(map[string]any{"restingHeartRate": 52.0})
	f.payloads["steps"] = garmin.NewPayload(map[string]any{"totalSteps": 10342.0})
	f.payloads["stress"] = garmin.NewPayload(map[string]any{"overallStressLevel": 31.0})
	return f
}

var fixedNow = time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, session *fakeSession, metrics observability.MetricsRegistry) *Service {
	t.Helper()
	svc := NewService(func(email, password string) Session { return session }, zaptest.NewLogger(t), metrics, time.UTC)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

func TestSync_AllMetrics(t *testing.T) {
	session := fullSession()
	res, err := newTestService(t, session, nil).Sync(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, 7.5, *res.SleepHours)
	assert.Equal(t, 84, *res.SleepScore)
	assert.Equal(t, 45, *res.HRV)
	assert.Equal(t, 49, *res.HRVAvg7d)
	assert.Equal(t, 67, *res.BodyBattery)
	assert.Equal(t, 52, *res.RestingHR)
	assert.Equal(t, 10342, *res.Steps)
	assert.Equal(t, 31, *res.StressLevel)
	assert.Equal(t, fixedNow, res.LastSync)
}

func TestSync_StepsUseYesterday(t *testing.T) {
	session := fullSession()
	_, err := newTestService(t, session, nil).Sync(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, "2026-10-17", session.dates["steps"])
	for _, metric := range []string{"sleep", "hrv", "body_battery", "resting_hr", "stress"} {
		assert.Equal(t, "2026-10-18", session.dates[metric], metric)
	}
}

func TestSync_DateAnchorsFollowLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	session := fullSession()
	svc := NewService(func(string, string) Session { return session }, zaptest.NewLogger(t), nil, berlin)
	// 23:30 UTC on the 17th is already the 18th in Berlin
	svc.SetClock(func() time.Time { return time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC) })

	_, err = svc.Sync(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", session.dates["sleep"])
	assert.Equal(t, "2026-10-17", session.dates["steps"])
}

func TestSync_FailureIsolation(t *testing.T) {
	session := fullSession()
	session.errs["hrv"] = errors.New("hrv endpoint down")
	session.panics["body_battery"] = true

	metrics := observability.NewMockMetricsRegistry()
	res, err := newTestService(t, session, metrics).Sync(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	assert.Nil(t, res.HRV)
	assert.Nil(t, res.HRVAvg7d)
	assert.Nil(t, res.BodyBattery)
	assert.Equal(t, 7.5, *res.SleepHours)
	assert.Equal(t, 52, *res.RestingHR)
	assert.Equal(t, 10342, *res.Steps)
	assert.Equal(t, 31, *res.StressLevel)

	assert.Equal(t, 1, metrics.Count("metric_fetch", "hrv", "failure"))
	assert.Equal(t, 1, metrics.Count("metric_fetch", "body_battery", "failure"))
	assert.Equal(t, 1, metrics.Count("metric_fetch", "stress", "success"))
}

func TestSync_EmptyPayloadsLeaveNulls(t *testing.T) {
	metrics := observability.NewMockMetricsRegistry()
	res, err := newTestService(t, newFakeSession(), metrics).Sync(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	assert.Nil(t, res.SleepHours)
	assert.Nil(t, res.Steps)
	assert.Equal(t, fixedNow, res.LastSync)
	assert.Equal(t, 1, metrics.Count("metric_fetch", "sleep", "empty"))
}

func TestSync_LoginErrorIsReturnedUnchanged(t *testing.T) {
	authErr := &garmin.AuthenticationError{Reason: "invalid email or password"}
	session := fullSession()
	session.loginErr = authErr

	res, err := newTestService(t, session, nil).Sync(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	assert.Nil(t, res)
	assert.Same(t, authErr, err)
	assert.Empty(t, session.dates)
}

func TestSync_MissingCredentials(t *testing.T) {
	svc := newTestService(t, fullSession(), nil)

	for _, creds := range []Credentials{{}, {Email: "a@b.com"}, {Password: "x"}} {
		_, err := svc.Sync(context.Background(), creds)
		assert.ErrorIs(t, err, ErrMissingCredentials)
	}
}

func TestFetchSleep_Rounding(t *testing.T) {
	tests := []struct {
		name    string
		seconds any
		want    *float64
	}{
		{name: "seven and a half hours", seconds: 27000.0, want: ptr(7.5)},
		{name: "rounds to one decimal", seconds: 25321.0, want: ptr(7.0)},
		{name: "rounds up", seconds: 25400.0, want: ptr(7.1)},
		{name: "zero is no data", seconds: 0.0, want: nil},
		{name: "missing", seconds: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeSession()
			dto := map[string]any{}
			if tt.seconds != nil {
				dto["sleepTimeSeconds"] = tt.seconds
			}
			f.payloads["sleep"] = garmin.NewPayload(map[string]any{"dailySleepDTO": dto})

			res, err := fetchSleep(context.Background(), f, "2026-10-18")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SleepHours)
		})
	}
}

func TestFetchBodyBattery_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    *int
	}{
		{name: "single object", payload: map[string]any{"bodyBatteryLevel": 55.0}, want: ptr(55)},
		{name: "falls back to charged", payload: []any{map[string]any{"charged": 38.0}}, want: ptr(38)},
		{name: "zero level falls back to charged", payload: map[string]any{"bodyBatteryLevel": 0.0, "charged": 12.0}, want: ptr(12)},
		{name: "empty list", payload: []any{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeSession()
			f.payloads["body_battery"] = garmin.NewPayload(tt.payload)

			res, err := fetchBodyBattery(context.Background(), f, "2026-10-18")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.BodyBattery)
		})
	}
}

func TestFetchRestingHR_MetricsMapFallback(t *testing.T) {
	f := newFakeSession()
	f.payloads["resting_hr"] = garmin.NewPayload(map[string]any{
		"allMetrics": map[string]any{"metricsMap": map[string]any{
			"WELLNESS_RESTING_HEART_RATE": []any{map[string]any{"value": 49.0}},
		}},
	})

	res, err := fetchRestingHR(context.Background(), f, "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 49, *res.RestingHR)
}

func TestFetchStress_AverageFallback(t *testing.T) {
	f := newFakeSession()
	f.payloads["stress"] = garmin.NewPayload(map[string]any{"avgStressLevel": 27.0})

	res, err := fetchStress(context.Background(), f, "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 27, *res.StressLevel)
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "b.com", EmailDomain("a@b.com"))
	assert.Equal(t, "", EmailDomain("nobody"))
}

func ptr[T any](v T) *T { return &v }
