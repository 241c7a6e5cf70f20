package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/pkg/kafka"
	"StockCast/pkg/util"
)

// KafkaEventPublisher emits forecast lifecycle events keyed by ticker so
// per-ticker ordering is preserved across partitions.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *kafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

type forecastCreatedEvent struct {
	Event           string  `json:"event"`
	PredictionID    int64   `json:"prediction_id"`
	Ticker          string  `json:"ticker"`
	Market          string  `json:"market"`
	TargetDate      string  `json:"target_date"`
	PredictedPrice  float64 `json:"predicted_price"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
	CurrentPrice    float64 `json:"current_price"`
	DaysAhead       int     `json:"days_ahead"`
	RSquared        float64 `json:"r_squared"`
	TrainingSamples int     `json:"training_samples"`
	CreatedAt       string  `json:"created_at"`
}

type predictionValidatedEvent struct {
	Event          string  `json:"event"`
	PredictionID   int64   `json:"prediction_id"`
	Ticker         string  `json:"ticker"`
	TargetDate     string  `json:"target_date"`
	PredictedPrice float64 `json:"predicted_price"`
	ActualPrice    float64 `json:"actual_price"`
	IsAccurate     bool    `json:"is_accurate"`
	ValidatedAt    string  `json:"validated_at"`
}

func (p *KafkaEventPublisher) ForecastCreated(ctx context.Context, rec *models.PredictionRecord) error {
	ev := forecastCreatedEvent{
		Event:           "forecast.created",
		PredictionID:    rec.ID,
		Ticker:          rec.Ticker,
		Market:          string(rec.Market),
		TargetDate:      util.FormatDay(rec.TargetDate),
		PredictedPrice:  rec.PredictedPrice,
		LowerBound:      rec.LowerBound,
		UpperBound:      rec.UpperBound,
		CurrentPrice:    rec.CurrentPrice,
		DaysAhead:       rec.DaysAhead,
		RSquared:        rec.RSquared,
		TrainingSamples: rec.TrainingSamples,
		CreatedAt:       rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	return p.producer.Publish(ctx, p.topic, []byte(rec.Ticker), ev)
}

func (p *KafkaEventPublisher) PredictionValidated(ctx context.Context, rec *models.PredictionRecord, actualPrice float64, isAccurate bool) error {
	ev := predictionValidatedEvent{
		Event:          "prediction.validated",
		PredictionID:   rec.ID,
		Ticker:         rec.Ticker,
		TargetDate:     util.FormatDay(rec.TargetDate),
		PredictedPrice: rec.PredictedPrice,
		ActualPrice:    actualPrice,
		IsAccurate:     isAccurate,
		ValidatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	return p.producer.Publish(ctx, p.topic, []byte(rec.Ticker), ev)
}

func (p *KafkaEventPublisher) Close() error { return p.producer.Close() }

// NoopEventPublisher is used when Kafka is disabled.
type NoopEventPublisher struct{}

func (NoopEventPublisher) ForecastCreated(context.Context, *models.PredictionRecord) error {
	return nil
}

func (NoopEventPublisher) PredictionValidated(context.Context, *models.PredictionRecord, float64, bool) error {
	return nil
}

func (NoopEventPublisher) Close() error { return nil }

var (
	_ repository.EventPublisher = (*KafkaEventPublisher)(nil)
	_ repository.EventPublisher = NoopEventPublisher{}
)
