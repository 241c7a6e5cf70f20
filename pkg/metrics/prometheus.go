package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"StockCast/internal/domain/repository"
)

// Recorder exposes pipeline counters and gauges via Prometheus.
type Recorder struct {
	forecastsTotal      *prometheus.CounterVec
	forecastErrorsTotal *prometheus.CounterVec
	validationsTotal    *prometheus.CounterVec
	predictedPrice      *prometheus.GaugeVec
	providerLatency     *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	return &Recorder{
		forecastsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockcast_forecasts_total",
			Help: "Completed forecasts by market",
		}, []string{"market"}),
		forecastErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockcast_forecast_errors_total",
			Help: "Failed forecasts by error kind",
		}, []string{"kind"}),
		validationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockcast_validations_total",
			Help: "Validated predictions by outcome",
		}, []string{"result"}),
		predictedPrice: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockcast_predicted_price",
			Help: "Most recent predicted price per ticker",
		}, []string{"ticker"}),
		providerLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockcast_provider_request_seconds",
			Help:    "Upstream provider request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

func (r *Recorder) RecordForecast(market string) {
	r.forecastsTotal.WithLabelValues(market).Inc()
}

func (r *Recorder) RecordForecastError(kind string) {
	r.forecastErrorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordValidation(result string) {
	r.validationsTotal.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordPredictedPrice(ticker string, price float64) {
	r.predictedPrice.WithLabelValues(ticker).Set(price)
}

func (r *Recorder) RecordProviderLatency(provider string, seconds float64) {
	r.providerLatency.WithLabelValues(provider).Observe(seconds)
}

var _ repository.Metrics = (*Recorder)(nil)
