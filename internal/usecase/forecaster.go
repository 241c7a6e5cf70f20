package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/services/features"
	"StockCast/internal/services/regression"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// ForecasterConfig tunes the forecast pipeline thresholds.
type ForecasterConfig struct {
	LookbackYears   int
	WarmUp          int
	MinRawBars      int
	MinTrainingRows int
	SplitRatio      float64
	TrendWindow     int
	VolPeriod       int
}

// Forecaster runs the end-to-end prediction pipeline: fetch history and
// macro data, engineer features, fit a linear model, project the price at
// the target date, and persist the record.
type Forecaster struct {
	cfg     ForecasterConfig
	history repository.HistoryProvider
	macro   repository.MacroProvider
	store   repository.PredictionStore
	events  repository.EventPublisher
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewForecaster(
	cfg ForecasterConfig,
	history repository.HistoryProvider,
	macro repository.MacroProvider,
	store repository.PredictionStore,
	events repository.EventPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *Forecaster {
	return &Forecaster{
		cfg:     cfg,
		history: history,
		macro:   macro,
		store:   store,
		events:  events,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Forecast produces a price prediction for the request's ticker at its
// target date. Any failing step aborts the request; nothing partial is
// persisted.
func (f *Forecaster) Forecast(ctx context.Context, req *models.ForecastRequest) (*models.ForecastResponse, error) {
	resp, err := f.forecast(ctx, req)
	if err != nil {
		f.metrics.RecordForecastError(string(models.KindOf(err)))
		return nil, err
	}
	f.metrics.RecordForecast(string(resp.Market))
	f.metrics.RecordPredictedPrice(resp.Ticker, resp.PredictedPrice)
	return resp, nil
}

func (f *Forecaster) forecast(ctx context.Context, req *models.ForecastRequest) (*models.ForecastResponse, error) {
	market := models.Market(req.Market)
	ticker := models.NormalizeTicker(req.Ticker, market)

	target, ok := util.ParseDay(req.TargetDate)
	if !ok {
		return nil, models.InvalidRequestError("target date %q is not a valid YYYY-MM-DD date", req.TargetDate)
	}
	now := f.now().UTC()
	daysAhead := util.DaysUntil(util.StartOfDay(now), target)
	if daysAhead <= 0 {
		return nil, models.InvalidRequestError("target date %s must be in the future", req.TargetDate)
	}

	bars, macro, err := f.fetchInputs(ctx, ticker, now)
	if err != nil {
		return nil, err
	}
	if len(bars) < f.cfg.MinRawBars {
		return nil, models.InsufficientDataError(
			"%s has %d daily bars, need at least %d", ticker, len(bars), f.cfg.MinRawBars)
	}

	rows := features.BuildRows(bars, macro, f.cfg.WarmUp)
	if len(rows) < daysAhead+30 {
		return nil, models.InsufficientDataError(
			"%s has %d usable rows, need at least %d for a %d-day horizon",
			ticker, len(rows), daysAhead+30, daysAhead)
	}

	x, y, err := features.TrainingSet(rows, f.cfg.MinTrainingRows)
	if err != nil {
		return nil, err
	}

	split := int(float64(len(x)) * f.cfg.SplitRatio)
	model, err := regression.Fit(x[:split], y[:split])
	if err != nil {
		return nil, err
	}
	eval := regression.Evaluate(model, x[split:], y[split:])

	currentPrice := bars[len(bars)-1].Close
	predicted := model.Predict(features.LatestVector(rows))

	// The model targets the next day. Longer horizons extrapolate the
	// recent daily trend on top of the one-day prediction.
	if daysAhead > 1 {
		predicted += features.AvgDailyChange(bars, f.cfg.TrendWindow) * float64(daysAhead-1)
	}

	dailyVol := features.DailyVolatility(bars, f.cfg.VolPeriod)
	sigma := dailyVol * math.Sqrt(float64(daysAhead))
	lower := currentPrice * (1 - 2*sigma)
	upper := currentPrice * (1 + 2*sigma)
	predicted = math.Min(math.Max(predicted, lower), upper)

	rec := &models.PredictionRecord{
		Ticker:          ticker,
		Market:          market,
		TargetDate:      target,
		PredictedPrice:  predicted,
		LowerBound:      lower,
		UpperBound:      upper,
		CurrentPrice:    currentPrice,
		DaysAhead:       daysAhead,
		RSquared:        eval.RSquared,
		TrainingSamples: len(x),
		Volatility:      dailyVol,
	}
	if err := f.store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	if err := f.events.ForecastCreated(ctx, rec); err != nil {
		f.log.Warn("forecast event publish failed",
			logger.String("ticker", ticker), logger.Error(err))
	}

	f.log.Info("forecast created",
		logger.String("ticker", ticker),
		logger.String("market", string(market)),
		logger.Int("days_ahead", daysAhead),
		logger.Float64("predicted", predicted),
		logger.Float64("r_squared", eval.RSquared),
		logger.Int("training_samples", len(x)))

	return &models.ForecastResponse{
		Ticker:          ticker,
		Market:          market,
		TargetDate:      util.FormatDay(target),
		DaysAhead:       daysAhead,
		CurrentPrice:    util.RoundTo(currentPrice, 2),
		PredictedPrice:  util.RoundTo(predicted, 2),
		LowerBound:      util.RoundTo(lower, 2),
		UpperBound:      util.RoundTo(upper, 2),
		Currency:        market.Currency(),
		RSquared:        util.RoundTo(eval.RSquared, 4),
		TrainingSamples: len(x),
		Volatility:      util.RoundTo(dailyVol, 4),
	}, nil
}

// fetchInputs pulls price history and the macro snapshot concurrently. A
// macro failure degrades to defaults; a history failure is fatal.
func (f *Forecaster) fetchInputs(ctx context.Context, ticker string, now time.Time) ([]models.DailyBar, models.MacroSnapshot, error) {
	var (
		wg      sync.WaitGroup
		bars    []models.DailyBar
		barsErr error
		macro   = models.DefaultMacro()
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		from := now.AddDate(-f.cfg.LookbackYears, 0, 0)
		bars, barsErr = f.history.DailyHistory(ctx, ticker, from, now)
	}()
	go func() {
		defer wg.Done()
		snap, err := f.macro.Latest(ctx)
		if err != nil {
			f.log.Warn("macro fetch failed, using defaults", logger.Error(err))
			return
		}
		macro = snap
	}()
	wg.Wait()

	if barsErr != nil {
		return nil, macro, barsErr
	}
	return bars, macro, nil
}

// Predictions returns recent forecasts for a ticker, newest first.
func (f *Forecaster) Predictions(ctx context.Context, ticker string, limit int) ([]*models.PredictionRecord, error) {
	return f.store.ListByTicker(ctx, models.NormalizeTicker(ticker, models.MarketUS), limit)
}

// Accuracy aggregates resolved predictions, optionally per ticker.
func (f *Forecaster) Accuracy(ctx context.Context, ticker string) (models.AccuracyStats, error) {
	return f.store.AccuracyStats(ctx, ticker)
}
