package di

import (
	"fmt"

	"StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/cache"
	"StockCast/internal/service/fred"
	"StockCast/internal/service/pacing"
	"StockCast/internal/service/polygon"
	"StockCast/internal/usecase"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	"StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.NewRecorder()
}

// ProvidePolygonClient creates the Polygon market data client.
func ProvidePolygonClient(cfg *config.Config, m repository.Metrics) *polygon.Client {
	return polygon.New(cfg.Polygon.BaseURL, cfg.Polygon.APIKey, cfg.Polygon.Timeout, m)
}

// ProvideFREDClient creates the FRED macro data client.
func ProvideFREDClient(cfg *config.Config, m repository.Metrics) *fred.Client {
	return fred.New(cfg.FRED.BaseURL, cfg.FRED.APIKey, cfg.FRED.Timeout, m)
}

// ProvideCache selects Redis when configured, in-process TTL cache otherwise.
func ProvideCache(cfg *config.Config) cache.BytesCache {
	if cfg.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideHistoryProvider wraps the Polygon client with response caching.
func ProvideHistoryProvider(client *polygon.Client, c cache.BytesCache, cfg *config.Config) repository.HistoryProvider {
	return internalrepo.NewCachedHistoryProvider(client, c, cfg.Redis.HistoryTTL)
}

// ProvideMacroProvider wraps the FRED client with response caching.
func ProvideMacroProvider(client *fred.Client, c cache.BytesCache, cfg *config.Config) repository.MacroProvider {
	return internalrepo.NewCachedMacroProvider(client, c, cfg.Redis.MacroTTL)
}

// ProvideQuoteProvider exposes the Polygon client as the close-price source.
func ProvideQuoteProvider(client *polygon.Client) repository.QuoteProvider {
	return client
}

// ProvidePredictionStore opens the Postgres prediction table.
func ProvidePredictionStore(cfg *config.Config) (repository.PredictionStore, error) {
	store, err := internalrepo.NewPostgresPredictionStore(internalrepo.PostgresConfig{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("prediction store: %w", err)
	}
	return store, nil
}

// ProvideEventPublisher creates a Kafka publisher, or a noop one when
// Kafka is disabled.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopEventPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvidePacer creates the validator's request pacer.
func ProvidePacer(cfg *config.Config) *pacing.Pacer {
	return pacing.New(cfg.Validator.RequestDelay, cfg.Validator.Cooldown, cfg.Validator.CooldownEvery)
}

// ProvideForecaster creates the forecast pipeline use case.
func ProvideForecaster(
	cfg *config.Config,
	history repository.HistoryProvider,
	macro repository.MacroProvider,
	store repository.PredictionStore,
	events repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Forecaster {
	return usecase.NewForecaster(usecase.ForecasterConfig{
		LookbackYears:   cfg.Polygon.LookbackYears,
		WarmUp:          cfg.Engine.WarmUp,
		MinRawBars:      cfg.Engine.MinRawBars,
		MinTrainingRows: cfg.Engine.MinTrainingRows,
		SplitRatio:      cfg.Engine.SplitRatio,
		TrendWindow:     cfg.Engine.TrendWindow,
		VolPeriod:       cfg.Engine.VolPeriod,
	}, history, macro, store, events, m, log)
}

// ProvideValidator creates the accuracy validation use case.
func ProvideValidator(
	cfg *config.Config,
	quotes repository.QuoteProvider,
	store repository.PredictionStore,
	events repository.EventPublisher,
	m repository.Metrics,
	pacer *pacing.Pacer,
	log *logger.Logger,
) *usecase.Validator {
	return usecase.NewValidator(usecase.ValidatorConfig{
		BatchSize:    cfg.Validator.BatchSize,
		FetchTimeout: cfg.Validator.FetchTimeout,
	}, quotes, store, events, m, pacer, log)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(log *logger.Logger, forecaster *usecase.Forecaster, validator *usecase.Validator) xhttp.Handler {
	return api.NewForecastHandler(log, forecaster, validator)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	validator *usecase.Validator,
	store repository.PredictionStore,
	events repository.EventPublisher,
) *server.App {
	return server.New(cfg, log, handler, validator, store, events)
}
