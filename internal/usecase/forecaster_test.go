package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	"StockCast/pkg/logger"
)

// --- fakes ---

type fakeHistory struct {
	bars []models.DailyBar
	err  error
}

func (f *fakeHistory) DailyHistory(_ context.Context, _ string, _, _ time.Time) ([]models.DailyBar, error) {
	return f.bars, f.err
}

type fakeMacro struct {
	snap models.MacroSnapshot
	err  error
}

func (f *fakeMacro) Latest(context.Context) (models.MacroSnapshot, error) {
	return f.snap, f.err
}

type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	recs   []*models.PredictionRecord
	insErr error
}

func (s *fakeStore) Insert(_ context.Context, rec *models.PredictionRecord) error {
	if s.insErr != nil {
		return s.insErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.recs = append(s.recs, &cp)
	return nil
}

func (s *fakeStore) ListMature(_ context.Context, day time.Time, limit int) ([]*models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PredictionRecord
	for _, r := range s.recs {
		if !r.Resolved() && !r.TargetDate.After(day) {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) RecordOutcome(_ context.Context, id int64, actualPrice float64, isAccurate bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.ID == id {
			if r.Resolved() {
				return false, nil
			}
			r.ActualPrice = &actualPrice
			r.IsAccurate = &isAccurate
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListByTicker(_ context.Context, ticker string, limit int) ([]*models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PredictionRecord
	for i := len(s.recs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.recs[i].Ticker == ticker {
			out = append(out, s.recs[i])
		}
	}
	return out, nil
}

func (s *fakeStore) AccuracyStats(_ context.Context, ticker string) (models.AccuracyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats models.AccuracyStats
	for _, r := range s.recs {
		if ticker != "" && r.Ticker != ticker {
			continue
		}
		if r.Resolved() {
			stats.Resolved++
			if r.IsAccurate != nil && *r.IsAccurate {
				stats.Accurate++
			}
		}
	}
	if stats.Resolved > 0 {
		stats.HitRate = float64(stats.Accurate) / float64(stats.Resolved)
	}
	return stats, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

type fakeEvents struct {
	created   int
	validated int
	err       error
}

func (e *fakeEvents) ForecastCreated(context.Context, *models.PredictionRecord) error {
	e.created++
	return e.err
}

func (e *fakeEvents) PredictionValidated(context.Context, *models.PredictionRecord, float64, bool) error {
	e.validated++
	return e.err
}

func (e *fakeEvents) Close() error { return nil }

type fakeMetrics struct {
	forecasts   int
	errors      map[string]int
	validations map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, validations: map[string]int{}}
}

func (m *fakeMetrics) RecordForecast(string)            { m.forecasts++ }
func (m *fakeMetrics) RecordForecastError(kind string)  { m.errors[kind]++ }
func (m *fakeMetrics) RecordValidation(result string)   { m.validations[result]++ }
func (m *fakeMetrics) RecordPredictedPrice(string, float64) {}
func (m *fakeMetrics) RecordProviderLatency(string, float64) {}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

// --- helpers ---

func risingBars(n int, start, step float64, end time.Time) []models.DailyBar {
	bars := make([]models.DailyBar, n)
	for i := 0; i < n; i++ {
		px := start + float64(i)*step
		bars[i] = models.DailyBar{
			Date:   end.AddDate(0, 0, i-n+1),
			Open:   px - 0.2,
			High:   px + 0.5,
			Low:    px - 0.5,
			Close:  px,
			Volume: 1_000_000 + float64(i%7)*50_000,
		}
	}
	return bars
}

func testForecasterConfig() ForecasterConfig {
	return ForecasterConfig{
		LookbackYears:   2,
		WarmUp:          50,
		MinRawBars:      100,
		MinTrainingRows: 30,
		SplitRatio:      0.8,
		TrendWindow:     20,
		VolPeriod:       20,
	}
}

func newTestForecaster(t *testing.T, history *fakeHistory, macro *fakeMacro, store *fakeStore, events *fakeEvents, metrics *fakeMetrics) *Forecaster {
	t.Helper()
	f := NewForecaster(testForecasterConfig(), history, macro, store, events, metrics, newTestLogger(t))
	f.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	return f
}

// --- tests ---

func TestForecastRisingTrend(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{bars: risingBars(160, 100, 0.5, now)}
	store := &fakeStore{}
	events := &fakeEvents{}
	metrics := newFakeMetrics()
	f := newTestForecaster(t, history, &fakeMacro{snap: models.DefaultMacro()}, store, events, metrics)

	resp, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker:     "aapl",
		Market:     "US",
		TargetDate: "2026-03-15",
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, models.MarketUS, resp.Market)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, 5, resp.DaysAhead)
	assert.Greater(t, resp.PredictedPrice, resp.CurrentPrice)
	assert.GreaterOrEqual(t, resp.PredictedPrice, resp.LowerBound)
	assert.LessOrEqual(t, resp.PredictedPrice, resp.UpperBound)
	assert.GreaterOrEqual(t, resp.RSquared, 0.0)
	assert.LessOrEqual(t, resp.RSquared, 1.0)
	assert.GreaterOrEqual(t, resp.TrainingSamples, 30)

	require.Len(t, store.recs, 1)
	assert.False(t, store.recs[0].Resolved())
	assert.Equal(t, 1, events.created)
	assert.Equal(t, 1, metrics.forecasts)
}

func TestForecastTSXNormalization(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{bars: risingBars(160, 40, 0.25, now)}
	f := newTestForecaster(t, history, &fakeMacro{snap: models.DefaultMacro()}, &fakeStore{}, &fakeEvents{}, newFakeMetrics())

	resp, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker:     " shop ",
		Market:     "TSX",
		TargetDate: "2026-03-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "SHOP.TO", resp.Ticker)
	assert.Equal(t, "CAD", resp.Currency)
}

func TestForecastRejectsPastTargetDate(t *testing.T) {
	f := newTestForecaster(t, &fakeHistory{}, &fakeMacro{}, &fakeStore{}, &fakeEvents{}, newFakeMetrics())

	for _, date := range []string{"2026-03-10", "2025-12-01"} {
		_, err := f.Forecast(context.Background(), &models.ForecastRequest{
			Ticker: "AAPL", Market: "US", TargetDate: date,
		})
		require.Error(t, err)
		assert.Equal(t, models.KindInvalidRequest, models.KindOf(err))
	}
}

func TestForecastRejectsMalformedDate(t *testing.T) {
	f := newTestForecaster(t, &fakeHistory{}, &fakeMacro{}, &fakeStore{}, &fakeEvents{}, newFakeMetrics())

	_, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker: "AAPL", Market: "US", TargetDate: "15-03-2026",
	})
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidRequest, models.KindOf(err))
}

func TestForecastInsufficientRawBars(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{bars: risingBars(40, 100, 0.5, now)}
	store := &fakeStore{}
	metrics := newFakeMetrics()
	f := newTestForecaster(t, history, &fakeMacro{snap: models.DefaultMacro()}, store, &fakeEvents{}, metrics)

	_, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker: "NEWCO", Market: "US", TargetDate: "2026-03-15",
	})
	require.Error(t, err)
	assert.Equal(t, models.KindInsufficientData, models.KindOf(err))
	assert.Empty(t, store.recs)
	assert.Equal(t, 1, metrics.errors[string(models.KindInsufficientData)])
}

func TestForecastInsufficientRowsForHorizon(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	// 160 bars minus 50 warm-up leaves 110 rows, short of the 120 a
	// 90-day horizon needs
	history := &fakeHistory{bars: risingBars(160, 100, 0.5, now)}
	f := newTestForecaster(t, history, &fakeMacro{snap: models.DefaultMacro()}, &fakeStore{}, &fakeEvents{}, newFakeMetrics())

	_, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker: "AAPL", Market: "US", TargetDate: "2026-06-08",
	})
	require.Error(t, err)
	assert.Equal(t, models.KindInsufficientData, models.KindOf(err))
}

func TestForecastToleratesMacroFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{bars: risingBars(160, 100, 0.5, now)}
	macro := &fakeMacro{err: errors.New("fred unavailable")}
	f := newTestForecaster(t, history, macro, &fakeStore{}, &fakeEvents{}, newFakeMetrics())

	_, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker: "AAPL", Market: "US", TargetDate: "2026-03-15",
	})
	require.NoError(t, err)
}

func TestForecastHistoryFailureAborts(t *testing.T) {
	history := &fakeHistory{err: models.UpstreamFetchError("polygon", errors.New("timeout"))}
	store := &fakeStore{}
	f := newTestForecaster(t, history, &fakeMacro{snap: models.DefaultMacro()}, store, &fakeEvents{}, newFakeMetrics())

	_, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker: "AAPL", Market: "US", TargetDate: "2026-03-15",
	})
	require.Error(t, err)
	assert.Equal(t, models.KindUpstreamFetch, models.KindOf(err))
	assert.Empty(t, store.recs)
}

func TestForecastEventFailureIsNotFatal(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{bars: risingBars(160, 100, 0.5, now)}
	events := &fakeEvents{err: errors.New("broker down")}
	f := newTestForecaster(t, history, &fakeMacro{snap: models.DefaultMacro()}, &fakeStore{}, events, newFakeMetrics())

	_, err := f.Forecast(context.Background(), &models.ForecastRequest{
		Ticker: "AAPL", Market: "US", TargetDate: "2026-03-15",
	})
	require.NoError(t, err)
}
