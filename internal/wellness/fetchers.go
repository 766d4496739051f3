package wellness

import (
	"context"
	"math"
)

// fetch is one independent metric query. run returns only the fields it owns.
type fetch struct {
	metric    string
	yesterday bool
	run       func(ctx context.Context, src Source, date string) (SyncResult, error)
}

// fetches run in this order. Steps are read for the previous day because the
// current day's total is still accumulating when the sync runs.
var fetches = []fetch{
	{metric: "sleep", run: fetchSleep},
	{metric: "hrv", run: fetchHRV},
	{metric: "body_battery", run: fetchBodyBattery},
	{metric: "resting_hr", run: fetchRestingHR},
	{metric: "steps", yesterday: true, run: fetchSteps},
	{metric: "stress", run: fetchStress},
}

func fetchSleep(ctx context.Context, src Source, date string) (SyncResult, error) {
	p, err := src.SleepData(ctx, date)
	if err != nil || p.IsEmpty() {
		return SyncResult{}, err
	}
	var out SyncResult
	if secs := p.Float("dailySleepDTO", "sleepTimeSeconds"); secs != nil && *secs != 0 {
		hours := math.Round(*secs/3600*10) / 10
		out.SleepHours = &hours
	}
	out.SleepScore = p.Int("dailySleepDTO", "sleepScores", "overall", "value")
	return out, nil
}

func fetchHRV(ctx context.Context, src Source, date string) (SyncResult, error) {
	p, err := src.HRVData(ctx, date)
	if err != nil || p.IsEmpty() {
		return SyncResult{}, err
	}
	return SyncResult{
		HRV:      p.Int("hrvSummary", "lastNightAvg"),
		HRVAvg7d: p.Int("hrvSummary", "weeklyAvg"),
	}, nil
}

func fetchBodyBattery(ctx context.Context, src Source, date string) (SyncResult, error) {
	p, err := src.BodyBattery(ctx, date)
	if err != nil || p.IsEmpty() {
		return SyncResult{}, err
	}
	latest := p.Last()
	level := latest.Int("bodyBatteryLevel")
	if level == nil || *level == 0 {
		level = latest.Int("charged")
	}
	return SyncResult{BodyBattery: level}, nil
}

func fetchRestingHR(ctx context.Context, src Source, date string) (SyncResult, error) {
	p, err := src.RestingHeartRateDay(ctx, date)
	if err != nil || p.IsEmpty() {
		return SyncResult{}, err
	}
	rhr := p.Int("restingHeartRate")
	if rhr == nil {
		rhr = p.Int("allMetrics", "metricsMap", "WELLNESS_RESTING_HEART_RATE", 0, "value")
	}
	return SyncResult{RestingHR: rhr}, nil
}

func fetchSteps(ctx context.Context, src Source, date string) (SyncResult, error) {
	p, err := src.StepsData(ctx, date)
	if err != nil || p.IsEmpty() {
		return SyncResult{}, err
	}
	return SyncResult{Steps: p.Int("totalSteps")}, nil
}

func fetchStress(ctx context.Context, src Source, date string) (SyncResult, error) {
	p, err := src.StressData(ctx, date)
	if err != nil || p.IsEmpty() {
		return SyncResult{}, err
	}
	stress := p.Int("overallStressLevel")
	if stress == nil {
		stress = p.Int("avgStressLevel")
	}
	return SyncResult{StressLevel: stress}, nil
}
