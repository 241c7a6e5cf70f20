package models

// Requests and responses for forecast HTTP endpoints. Defined in domain for
// consistency and reuse.

type ForecastRequest struct {
	Ticker     string `json:"ticker" validate:"required"`
	Market     string `json:"market" default:"US" validate:"oneof=US TSX"`
	TargetDate string `json:"target_date" validate:"required"`
}

type ForecastResponse struct {
	Ticker          string  `json:"ticker"`
	Market          Market  `json:"market"`
	TargetDate      string  `json:"target_date"`
	DaysAhead       int     `json:"days_ahead"`
	CurrentPrice    float64 `json:"current_price"`
	PredictedPrice  float64 `json:"predicted_price"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
	Currency        string  `json:"currency"`
	RSquared        float64 `json:"r_squared"`
	TrainingSamples int     `json:"training_samples"`
	Volatility      float64 `json:"volatility"`
}

type PredictionsRequest struct {
	Ticker string `param:"ticker" validate:"required"`
	Limit  int    `query:"limit" default:"20" validate:"gte=1,lte=200"`
}
