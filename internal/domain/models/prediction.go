package models

import "time"

// PredictionRecord is the persisted outcome of one forecast request.
// ActualPrice and IsAccurate stay unset until the accuracy validator
// resolves the record after the target date has passed.
type PredictionRecord struct {
	ID              int64
	Ticker          string
	Market          Market
	TargetDate      time.Time
	PredictedPrice  float64
	LowerBound      float64
	UpperBound      float64
	CurrentPrice    float64
	DaysAhead       int
	RSquared        float64
	TrainingSamples int
	Volatility      float64
	ActualPrice     *float64
	IsAccurate      *bool
	CreatedAt       time.Time
}

// Resolved reports whether the record has been reconciled against a
// realized price.
func (r *PredictionRecord) Resolved() bool { return r.ActualPrice != nil }

// ValidationReport summarizes one accuracy validator pass.
type ValidationReport struct {
	Validated    int `json:"validated"`
	Errors       int `json:"errors"`
	TotalChecked int `json:"total_checked"`
}

// AccuracyStats aggregates resolved records for a ticker or globally.
type AccuracyStats struct {
	Resolved int     `json:"resolved"`
	Accurate int     `json:"accurate"`
	HitRate  float64 `json:"hit_rate"`
}
