package wellness

import (
	"context"
	"strings"
	"time"

	"github.com/patrickwarner/garminsync/internal/garmin"
)

// Credentials are supplied per request and never persisted.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SyncResult is the normalized daily snapshot. A nil field means that metric
// could not be fetched or had no data.
type SyncResult struct {
	LastSync    time.Time `json:"lastSync"`
	SleepHours  *float64  `json:"sleepHours"`
	SleepScore  *int      `json:"sleepScore"`
	BodyBattery *int      `json:"bodyBattery"`
	HRV         *int      `json:"hrv"`
	HRVAvg7d    *int      `json:"hrvAvg7d"`
	RestingHR   *int      `json:"restingHR"`
	Steps       *int      `json:"steps"`
	StressLevel *int      `json:"stressLevel"`
}

// merge copies every field set in partial into r.
func (r *SyncResult) merge(partial SyncResult) {
	if partial.SleepHours != nil {
		r.SleepHours = partial.SleepHours
	}
	if partial.SleepScore != nil {
		r.SleepScore = partial.SleepScore
	}
	if partial.BodyBattery != nil {
		r.BodyBattery = partial.BodyBattery
	}
	if partial.HRV != nil {
		r.HRV = partial.HRV
	}
	if partial.HRVAvg7d != nil {
		r.HRVAvg7d = partial.HRVAvg7d
	}
	if partial.RestingHR != nil {
		r.RestingHR = partial.RestingHR
	}
	if partial.Steps != nil {
		r.Steps = partial.Steps
	}
	if partial.StressLevel != nil {
		r.StressLevel = partial.StressLevel
	}
}

func (r SyncResult) empty() bool {
	return r.SleepHours == nil && r.SleepScore == nil && r.BodyBattery == nil &&
		r.HRV == nil && r.HRVAvg7d == nil && r.RestingHR == nil &&
		r.Steps == nil && r.StressLevel == nil
}

// Source is the set of daily getters a logged-in account exposes.
type Source interface {
	SleepData(ctx context.Context, date string) (garmin.Payload, error)
	HRVData(ctx context.Context, date string) (garmin.Payload, error)
	BodyBattery(ctx context.Context, date string) (garmin.Payload, error)
	RestingHeartRateDay(ctx context.Context, date string) (garmin.Payload, error)
	StepsData(ctx context.Context, date string) (garmin.Payload, error)
	StressData(ctx context.Context, date string) (garmin.Payload, error)
}

// Session is an account session that must log in before serving a Source.
type Session interface {
	Source
	Login(ctx context.Context) error
}

// Opener creates an unauthenticated session for one account.
type Opener func(email, password string) Session

// GarminOpener adapts a garmin.Client to an Opener.
func GarminOpener(c *garmin.Client) Opener {
	return func(email, password string) Session {
		return c.NewSession(email, password)
	}
}

// DateAnchors returns today and yesterday for now, formatted YYYY-MM-DD.
func DateAnchors(now time.Time) (today, yesterday string) {
	const layout = "2006-01-02"
	return now.Format(layout), now.AddDate(0, 0, -1).Format(layout)
}

// EmailDomain returns the part after '@' so logs never carry the full address.
func EmailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}
