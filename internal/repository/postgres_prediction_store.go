package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
)

// PostgresPredictionStore persists forecasts in the stock_predictions table.
type PostgresPredictionStore struct {
	db *sql.DB
}

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewPostgresPredictionStore(cfg PostgresConfig) (*PostgresPredictionStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &PostgresPredictionStore{db: db}, nil
}

// NewPostgresPredictionStoreWithDB wraps an existing connection, used in tests.
func NewPostgresPredictionStoreWithDB(db *sql.DB) *PostgresPredictionStore {
	return &PostgresPredictionStore{db: db}
}

func (s *PostgresPredictionStore) Insert(ctx context.Context, rec *models.PredictionRecord) error {
	const q = `
		INSERT INTO stock_predictions (
			ticker, market, target_date, predicted_price, lower_bound, upper_bound,
			current_price, days_ahead, r_squared, training_samples, volatility, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	err := s.db.QueryRowContext(ctx, q,
		rec.Ticker, string(rec.Market), rec.TargetDate, rec.PredictedPrice,
		rec.LowerBound, rec.UpperBound, rec.CurrentPrice, rec.DaysAhead,
		rec.RSquared, rec.TrainingSamples, rec.Volatility, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return models.PersistenceError("insert prediction", err)
	}
	return nil
}

func (s *PostgresPredictionStore) ListMature(ctx context.Context, day time.Time, limit int) ([]*models.PredictionRecord, error) {
	const q = `
		SELECT id, ticker, market, target_date, predicted_price, lower_bound, upper_bound,
		       current_price, days_ahead, r_squared, training_samples, volatility,
		       actual_price, is_accurate, created_at
		FROM stock_predictions
		WHERE target_date <= $1 AND actual_price IS NULL
		ORDER BY target_date ASC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, q, day, limit)
	if err != nil {
		return nil, models.PersistenceError("list mature predictions", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresPredictionStore) RecordOutcome(ctx context.Context, id int64, actualPrice float64, isAccurate bool) (bool, error) {
	const q = `
		UPDATE stock_predictions
		SET actual_price = $2, is_accurate = $3
		WHERE id = $1 AND actual_price IS NULL`

	res, err := s.db.ExecContext(ctx, q, id, actualPrice, isAccurate)
	if err != nil {
		return false, models.PersistenceError("record outcome", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, models.PersistenceError("record outcome", err)
	}
	return n == 1, nil
}

func (s *PostgresPredictionStore) ListByTicker(ctx context.Context, ticker string, limit int) ([]*models.PredictionRecord, error) {
	const q = `
		SELECT id, ticker, market, target_date, predicted_price, lower_bound, upper_bound,
		       current_price, days_ahead, r_squared, training_samples, volatility,
		       actual_price, is_accurate, created_at
		FROM stock_predictions
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, q, ticker, limit)
	if err != nil {
		return nil, models.PersistenceError("list predictions", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresPredictionStore) AccuracyStats(ctx context.Context, ticker string) (models.AccuracyStats, error) {
	q := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_accurate THEN 1 ELSE 0 END), 0)
		FROM stock_predictions
		WHERE actual_price IS NOT NULL`
	args := []interface{}{}
	if ticker != "" {
		q += ` AND ticker = $1`
		args = append(args, ticker)
	}

	var stats models.AccuracyStats
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&stats.Resolved, &stats.Accurate); err != nil {
		return models.AccuracyStats{}, models.PersistenceError("accuracy stats", err)
	}
	if stats.Resolved > 0 {
		stats.HitRate = float64(stats.Accurate) / float64(stats.Resolved)
	}
	return stats, nil
}

func (s *PostgresPredictionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresPredictionStore) Close() error { return s.db.Close() }

func scanRecords(rows *sql.Rows) ([]*models.PredictionRecord, error) {
	var out []*models.PredictionRecord
	for rows.Next() {
		var (
			rec    models.PredictionRecord
			market string
			actual sql.NullFloat64
			acc    sql.NullBool
		)
		err := rows.Scan(
			&rec.ID, &rec.Ticker, &market, &rec.TargetDate, &rec.PredictedPrice,
			&rec.LowerBound, &rec.UpperBound, &rec.CurrentPrice, &rec.DaysAhead,
			&rec.RSquared, &rec.TrainingSamples, &rec.Volatility,
			&actual, &acc, &rec.CreatedAt,
		)
		if err != nil {
			return nil, models.PersistenceError("scan prediction", err)
		}
		rec.Market = models.Market(market)
		if actual.Valid {
			v := actual.Float64
			rec.ActualPrice = &v
		}
		if acc.Valid {
			v := acc.Bool
			rec.IsAccurate = &v
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, models.PersistenceError("scan predictions", err)
	}
	return out, nil
}

var _ repository.PredictionStore = (*PostgresPredictionStore)(nil)
