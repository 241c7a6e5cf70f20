package usecase

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/service/pacing"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// ValidatorConfig tunes the accuracy validation job.
type ValidatorConfig struct {
	BatchSize    int
	FetchTimeout time.Duration
}

// Validator reconciles mature predictions against realized closing prices.
// One run processes a single batch; scheduling is the caller's concern.
type Validator struct {
	cfg     ValidatorConfig
	quotes  repository.QuoteProvider
	store   repository.PredictionStore
	events  repository.EventPublisher
	metrics repository.Metrics
	pacer   *pacing.Pacer
	log     *logger.Logger
	now     func() time.Time
}

func NewValidator(
	cfg ValidatorConfig,
	quotes repository.QuoteProvider,
	store repository.PredictionStore,
	events repository.EventPublisher,
	metrics repository.Metrics,
	pacer *pacing.Pacer,
	log *logger.Logger,
) *Validator {
	return &Validator{
		cfg:     cfg,
		quotes:  quotes,
		store:   store,
		events:  events,
		metrics: metrics,
		pacer:   pacer,
		log:     log,
		now:     time.Now,
	}
}

// Run validates one batch of mature predictions. Individual failures are
// counted and skipped; only context cancellation aborts the pass.
func (v *Validator) Run(ctx context.Context) (models.ValidationReport, error) {
	var report models.ValidationReport

	today := util.StartOfDay(v.now())
	recs, err := v.store.ListMature(ctx, today, v.cfg.BatchSize)
	if err != nil {
		return report, err
	}
	report.TotalChecked = len(recs)
	if len(recs) == 0 {
		return report, nil
	}

	v.log.Info("validation pass started", logger.Int("candidates", len(recs)))

	for _, rec := range recs {
		if err := v.pacer.Wait(ctx); err != nil {
			return report, err
		}

		actual, err := v.fetchClose(ctx, rec)
		if err != nil {
			report.Errors++
			v.metrics.RecordValidation("error")
			v.log.Warn("close fetch failed",
				logger.String("ticker", rec.Ticker),
				logger.Int64("prediction_id", rec.ID),
				logger.Error(err))
			continue
		}
		v.pacer.Success()
		if actual == nil {
			// no trading data yet for the target date, retry next pass
			v.metrics.RecordValidation("pending")
			continue
		}

		isAccurate := *actual >= rec.LowerBound && *actual <= rec.UpperBound
		claimed, err := v.store.RecordOutcome(ctx, rec.ID, *actual, isAccurate)
		if err != nil {
			report.Errors++
			v.metrics.RecordValidation("error")
			continue
		}
		if !claimed {
			// another run resolved this record first
			v.metrics.RecordValidation("skipped")
			continue
		}

		report.Validated++
		if isAccurate {
			v.metrics.RecordValidation("accurate")
		} else {
			v.metrics.RecordValidation("inaccurate")
		}

		if err := v.events.PredictionValidated(ctx, rec, *actual, isAccurate); err != nil {
			v.log.Warn("validation event publish failed",
				logger.Int64("prediction_id", rec.ID), logger.Error(err))
		}
	}

	v.log.Info("validation pass finished",
		logger.Int("validated", report.Validated),
		logger.Int("errors", report.Errors),
		logger.Int("total_checked", report.TotalChecked))
	return report, nil
}

func (v *Validator) fetchClose(ctx context.Context, rec *models.PredictionRecord) (*float64, error) {
	fetchCtx := ctx
	if v.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, v.cfg.FetchTimeout)
		defer cancel()
	}
	return v.quotes.CloseOn(fetchCtx, rec.Ticker, rec.TargetDate)
}
