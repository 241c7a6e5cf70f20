package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/service/pacing"
)

type fakeQuotes struct {
	closes map[string]float64 // ticker -> close
	err    error
	calls  int
}

func (q *fakeQuotes) CloseOn(_ context.Context, ticker string, _ time.Time) (*float64, error) {
	q.calls++
	if q.err != nil {
		return nil, q.err
	}
	px, ok := q.closes[ticker]
	if !ok {
		return nil, nil
	}
	return &px, nil
}

func noSleep() pacing.Option {
	return pacing.WithSleeper(func(context.Context, time.Duration) error { return nil })
}

func matureRecord(id int64, ticker string, lower, upper float64, target time.Time) *models.PredictionRecord {
	return &models.PredictionRecord{
		ID:             id,
		Ticker:         ticker,
		Market:         models.MarketUS,
		TargetDate:     target,
		PredictedPrice: (lower + upper) / 2,
		LowerBound:     lower,
		UpperBound:     upper,
		CurrentPrice:   (lower + upper) / 2,
		DaysAhead:      5,
	}
}

func newTestValidator(t *testing.T, quotes *fakeQuotes, store repository.PredictionStore, events *fakeEvents, metrics *fakeMetrics) *Validator {
	t.Helper()
	cfg := ValidatorConfig{BatchSize: 50, FetchTimeout: time.Second}
	pacer := pacing.New(time.Second, time.Minute, 5, noSleep())
	v := NewValidator(cfg, quotes, store, events, metrics, pacer, newTestLogger(t))
	v.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }
	return v
}

func TestValidatorResolvesMatureRecords(t *testing.T) {
	target := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{nextID: 2, recs: []*models.PredictionRecord{
		matureRecord(1, "AAPL", 170, 190, target),
		matureRecord(2, "MSFT", 400, 420, target),
	}}
	quotes := &fakeQuotes{closes: map[string]float64{
		"AAPL": 185.0, // inside bounds
		"MSFT": 395.0, // below lower bound
	}}
	events := &fakeEvents{}
	metrics := newFakeMetrics()
	v := newTestValidator(t, quotes, store, events, metrics)

	report, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalChecked)
	assert.Equal(t, 2, report.Validated)
	assert.Equal(t, 0, report.Errors)

	require.True(t, store.recs[0].Resolved())
	assert.True(t, *store.recs[0].IsAccurate)
	require.True(t, store.recs[1].Resolved())
	assert.False(t, *store.recs[1].IsAccurate)

	assert.Equal(t, 2, events.validated)
	assert.Equal(t, 1, metrics.validations["accurate"])
	assert.Equal(t, 1, metrics.validations["inaccurate"])
}

func TestValidatorBoundsAreInclusive(t *testing.T) {
	target := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{nextID: 2, recs: []*models.PredictionRecord{
		matureRecord(1, "LOW", 170, 190, target),
		matureRecord(2, "HIGH", 400, 420, target),
	}}
	quotes := &fakeQuotes{closes: map[string]float64{"LOW": 170.0, "HIGH": 420.0}}
	v := newTestValidator(t, quotes, store, &fakeEvents{}, newFakeMetrics())

	_, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, *store.recs[0].IsAccurate)
	assert.True(t, *store.recs[1].IsAccurate)
}

func TestValidatorCountsFetchErrors(t *testing.T) {
	target := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{nextID: 2, recs: []*models.PredictionRecord{
		matureRecord(1, "AAPL", 170, 190, target),
		matureRecord(2, "MSFT", 400, 420, target),
	}}
	quotes := &fakeQuotes{err: errors.New("rate limited")}
	metrics := newFakeMetrics()
	v := newTestValidator(t, quotes, store, &fakeEvents{}, metrics)

	report, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalChecked)
	assert.Equal(t, 0, report.Validated)
	assert.Equal(t, 2, report.Errors)
	assert.False(t, store.recs[0].Resolved())
	assert.False(t, store.recs[1].Resolved())
	assert.Equal(t, 2, metrics.validations["error"])
}

func TestValidatorLeavesPendingWhenNoClose(t *testing.T) {
	target := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{nextID: 1, recs: []*models.PredictionRecord{
		matureRecord(1, "AAPL", 170, 190, target),
	}}
	quotes := &fakeQuotes{closes: map[string]float64{}} // no data yet
	metrics := newFakeMetrics()
	v := newTestValidator(t, quotes, store, &fakeEvents{}, metrics)

	report, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Validated)
	assert.Equal(t, 0, report.Errors)
	assert.False(t, store.recs[0].Resolved())
	assert.Equal(t, 1, metrics.validations["pending"])
}

func TestValidatorNeverTouchesResolvedRecords(t *testing.T) {
	target := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	resolved := matureRecord(1, "AAPL", 170, 190, target)
	actual := 180.0
	acc := true
	resolved.ActualPrice = &actual
	resolved.IsAccurate = &acc

	store := &fakeStore{nextID: 1, recs: []*models.PredictionRecord{resolved}}
	quotes := &fakeQuotes{closes: map[string]float64{"AAPL": 100.0}}
	v := newTestValidator(t, quotes, store, &fakeEvents{}, newFakeMetrics())

	report, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalChecked)
	assert.Equal(t, 0, quotes.calls)
	assert.Equal(t, 180.0, *store.recs[0].ActualPrice)
}

func TestValidatorSkipsLostClaims(t *testing.T) {
	target := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	store := &claimRacingStore{fakeStore{nextID: 1, recs: []*models.PredictionRecord{
		matureRecord(1, "AAPL", 170, 190, target),
	}}}
	quotes := &fakeQuotes{closes: map[string]float64{"AAPL": 185.0}}
	events := &fakeEvents{}
	metrics := newFakeMetrics()
	v := newTestValidator(t, quotes, store, events, metrics)

	report, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Validated)
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 0, events.validated)
	assert.Equal(t, 1, metrics.validations["skipped"])
}

// claimRacingStore simulates a concurrent run winning every claim.
type claimRacingStore struct {
	fakeStore
}

func (s *claimRacingStore) RecordOutcome(context.Context, int64, float64, bool) (bool, error) {
	return false, nil
}

func TestValidatorHonorsContextCancellation(t *testing.T) {
	target := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{nextID: 1, recs: []*models.PredictionRecord{
		matureRecord(1, "AAPL", 170, 190, target),
	}}
	quotes := &fakeQuotes{closes: map[string]float64{"AAPL": 185.0}}

	cfg := ValidatorConfig{BatchSize: 50, FetchTimeout: time.Second}
	pacer := pacing.New(time.Second, time.Minute, 5) // real sleeper
	v := NewValidator(cfg, quotes, store, &fakeEvents{}, newFakeMetrics(), pacer, newTestLogger(t))
	v.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, store.recs[0].Resolved())
}
