package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/service/cache"
	"StockCast/pkg/util"
)

// CachedHistoryProvider memoizes daily history responses. Bars for a closed
// trading day never change, so a short TTL only guards the current day.
type CachedHistoryProvider struct {
	next  repository.HistoryProvider
	cache cache.BytesCache
	ttl   time.Duration
}

func NewCachedHistoryProvider(next repository.HistoryProvider, c cache.BytesCache, ttl time.Duration) *CachedHistoryProvider {
	return &CachedHistoryProvider{next: next, cache: c, ttl: ttl}
}

func (p *CachedHistoryProvider) DailyHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.DailyBar, error) {
	key := fmt.Sprintf("history:%s:%s:%s", ticker, util.FormatDay(from), util.FormatDay(to))
	if b, ok, err := p.cache.GetBytes(key); err == nil && ok {
		var bars []models.DailyBar
		if err := json.Unmarshal(b, &bars); err == nil {
			return bars, nil
		}
	}

	bars, err := p.next.DailyHistory(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(bars); err == nil {
		_ = p.cache.SetBytes(key, b, p.ttl)
	}
	return bars, nil
}

// CachedMacroProvider memoizes the latest macro snapshot. The upstream series
// update monthly at most, so an hourly TTL is generous.
type CachedMacroProvider struct {
	next  repository.MacroProvider
	cache cache.BytesCache
	ttl   time.Duration
}

func NewCachedMacroProvider(next repository.MacroProvider, c cache.BytesCache, ttl time.Duration) *CachedMacroProvider {
	return &CachedMacroProvider{next: next, cache: c, ttl: ttl}
}

func (p *CachedMacroProvider) Latest(ctx context.Context) (models.MacroSnapshot, error) {
	const key = "macro:latest"
	if b, ok, err := p.cache.GetBytes(key); err == nil && ok {
		var snap models.MacroSnapshot
		if err := json.Unmarshal(b, &snap); err == nil {
			return snap, nil
		}
	}

	snap, err := p.next.Latest(ctx)
	if err != nil {
		return snap, err
	}
	if b, err := json.Marshal(snap); err == nil {
		_ = p.cache.SetBytes(key, b, p.ttl)
	}
	return snap, nil
}

var (
	_ repository.HistoryProvider = (*CachedHistoryProvider)(nil)
	_ repository.MacroProvider   = (*CachedMacroProvider)(nil)
)
