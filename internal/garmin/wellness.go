package garmin

import (
	"context"
	"net/url"
)

// Daily wellness getters. Every date is a calendar day formatted YYYY-MM-DD.

// SleepData returns the daily sleep document (dailySleepDTO, sleep scores, ...).
func (s *Session) SleepData(ctx context.Context, date string) (Payload, error) {
	return s.get(ctx, "sleep", "/wellness-service/wellness/dailySleepData/"+url.PathEscape(s.displayName),
		url.Values{"date": {date}, "nonSleepBufferMinutes": {"60"}})
}

// HRVData returns the heart rate variability summary for the night ending on date.
func (s *Session) HRVData(ctx context.Context, date string) (Payload, error) {
	return s.get(ctx, "hrv", "/hrv-service/hrv/"+url.PathEscape(date), nil)
}

// BodyBattery returns the body battery daily reports for date. The vendor
// answers with a list of day reports.
func (s *Session) BodyBattery(ctx context.Context, date string) (Payload, error) {
	return s.get(ctx, "body_battery", "/wellness-service/wellness/bodyBattery/reports/daily",
		url.Values{"startDate": {date}, "endDate": {date}})
}

// RestingHeartRateDay returns the resting heart rate statistics for date.
func (s *Session) RestingHeartRateDay(ctx context.Context, date string) (Payload, error) {
	return s.get(ctx, "resting_hr", "/userstats-service/wellness/daily/"+url.PathEscape(s.displayName),
		url.Values{"fromDate": {date}, "untilDate": {date}, "metricId": {"60"}})
}

// StepsData returns the daily summary carrying totalSteps for date.
func (s *Session) StepsData(ctx context.Context, date string) (Payload, error) {
	return s.get(ctx, "steps", "/usersummary-service/usersummary/daily/"+url.PathEscape(s.displayName),
		url.Values{"calendarDate": {date}})
}

// StressData returns the daily stress document for date.
func (s *Session) StressData(ctx context.Context, date string) (Payload, error) {
	return s.get(ctx, "stress", "/wellness-service/wellness/dailyStress/"+url.PathEscape(date), nil)
}
