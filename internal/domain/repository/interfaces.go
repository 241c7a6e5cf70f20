package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// HistoryProvider returns daily bars for a ticker over a lookback window,
// ordered by date ascending.
type HistoryProvider interface {
	DailyHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.DailyBar, error)
}

// MacroProvider returns the latest macroeconomic snapshot. Implementations
// are tolerant of absence: they substitute defaults instead of failing.
type MacroProvider interface {
	Latest(ctx context.Context) (models.MacroSnapshot, error)
}

// QuoteProvider returns the realized close price for a ticker on a date.
// A nil result with nil error means the provider has no data for the date.
type QuoteProvider interface {
	CloseOn(ctx context.Context, ticker string, date time.Time) (*float64, error)
}

// PredictionStore is the keyed prediction table.
type PredictionStore interface {
	Insert(ctx context.Context, rec *models.PredictionRecord) error
	// ListMature returns up to limit unresolved records whose target date
	// is on or before the given day.
	ListMature(ctx context.Context, day time.Time, limit int) ([]*models.PredictionRecord, error)
	// RecordOutcome writes actualPrice and isAccurate only if the record is
	// still unresolved. It returns false when another run already claimed it.
	RecordOutcome(ctx context.Context, id int64, actualPrice float64, isAccurate bool) (bool, error)
	ListByTicker(ctx context.Context, ticker string, limit int) ([]*models.PredictionRecord, error)
	AccuracyStats(ctx context.Context, ticker string) (models.AccuracyStats, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits domain events for downstream consumers.
type EventPublisher interface {
	ForecastCreated(ctx context.Context, rec *models.PredictionRecord) error
	PredictionValidated(ctx context.Context, rec *models.PredictionRecord, actualPrice float64, isAccurate bool) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordForecast(market string)
	RecordForecastError(kind string)
	RecordValidation(result string)
	RecordPredictedPrice(ticker string, price float64)
	RecordProviderLatency(provider string, seconds float64)
}
