package api

import (
	"time"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

type predictionView struct {
	ID              int64    `json:"id"`
	Ticker          string   `json:"ticker"`
	Market          string   `json:"market"`
	TargetDate      string   `json:"target_date"`
	PredictedPrice  float64  `json:"predicted_price"`
	LowerBound      float64  `json:"lower_bound"`
	UpperBound      float64  `json:"upper_bound"`
	CurrentPrice    float64  `json:"current_price"`
	DaysAhead       int      `json:"days_ahead"`
	RSquared        float64  `json:"r_squared"`
	TrainingSamples int      `json:"training_samples"`
	Volatility      float64  `json:"volatility"`
	ActualPrice     *float64 `json:"actual_price,omitempty"`
	IsAccurate      *bool    `json:"is_accurate,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func toPredictionViews(recs []*models.PredictionRecord) []predictionView {
	out := make([]predictionView, 0, len(recs))
	for _, r := range recs {
		out = append(out, predictionView{
			ID:              r.ID,
			Ticker:          r.Ticker,
			Market:          string(r.Market),
			TargetDate:      util.FormatDay(r.TargetDate),
			PredictedPrice:  util.RoundTo(r.PredictedPrice, 2),
			LowerBound:      util.RoundTo(r.LowerBound, 2),
			UpperBound:      util.RoundTo(r.UpperBound, 2),
			CurrentPrice:    util.RoundTo(r.CurrentPrice, 2),
			DaysAhead:       r.DaysAhead,
			RSquared:        util.RoundTo(r.RSquared, 4),
			TrainingSamples: r.TrainingSamples,
			Volatility:      util.RoundTo(r.Volatility, 4),
			ActualPrice:     r.ActualPrice,
			IsAccurate:      r.IsAccurate,
			CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
