package features

import (
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/indicators"
)

// Fixed feature vector layout. Order is significant: training rows and the
// inference row must agree on it.
//
//	0: previous close (lag 1)
//	1: 20-day SMA of close
//	2: 50-day SMA of close
//	3: 14-day RSI
//	4: 14-day ATR
//	5: volume / 20-day SMA of volume
//	6: fed funds rate
//	7: CPI
const FeatureCount = 8

const (
	smaShortPeriod = 20
	smaLongPeriod  = 50
	rsiPeriod      = 14
	atrPeriod      = 14
	volPeriod      = 20
)

// Row is one engineered observation anchored at a bar date. Every
// indicator in Features uses data at or before the anchor only.
type Row struct {
	Anchor   time.Time
	Features []float64
	Close    float64
}

// BuildRows computes the full indicator set over the history and emits one
// row per anchor index at or past the warm-up window, skipping any index
// where an indicator is still undefined. Missing macro fields substitute
// fixed defaults.
func BuildRows(bars []models.DailyBar, macro models.MacroSnapshot, warmUp int) []Row {
	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	smaShort := indicators.SMA(closes, smaShortPeriod)
	smaLong := indicators.SMA(closes, smaLongPeriod)
	rsi := indicators.RSI(closes, rsiPeriod)
	atr := indicators.ATR(highs, lows, closes, atrPeriod)
	volumeSMA := indicators.SMA(volumes, volPeriod)

	fedFunds := macro.FedFundsRate
	if fedFunds == 0 {
		fedFunds = models.DefaultFedFundsRate
	}
	cpi := macro.CPI
	if cpi == 0 {
		cpi = models.DefaultCPI
	}

	rows := make([]Row, 0, len(bars))
	for i := warmUp; i < len(bars); i++ {
		if indicators.Undefined(smaShort[i]) || indicators.Undefined(smaLong[i]) ||
			indicators.Undefined(rsi[i]) || indicators.Undefined(atr[i]) {
			continue
		}

		volumeRatio := 1.0
		if !indicators.Undefined(volumeSMA[i]) && volumeSMA[i] != 0 {
			volumeRatio = volumes[i] / volumeSMA[i]
		}

		rows = append(rows, Row{
			Anchor: bars[i].Date,
			Features: []float64{
				closes[i-1],
				smaShort[i],
				smaLong[i],
				rsi[i],
				atr[i],
				volumeRatio,
				fedFunds,
				cpi,
			},
			Close: closes[i],
		})
	}
	return rows
}

// TrainingSet pairs each row's features with the next row's close as the
// target, dropping the final row which has no target yet. Index i of the
// features always predicts index i of the targets.
func TrainingSet(rows []Row, minRows int) ([][]float64, []float64, error) {
	if len(rows) < 2 || len(rows)-1 < minRows {
		return nil, nil, models.InsufficientDataError(
			"need at least %d training rows, have %d", minRows, max(len(rows)-1, 0))
	}

	x := make([][]float64, 0, len(rows)-1)
	y := make([]float64, 0, len(rows)-1)
	for i := 0; i+1 < len(rows); i++ {
		x = append(x, rows[i].Features)
		y = append(y, rows[i+1].Close)
	}
	return x, y, nil
}

// LatestVector returns the most recent feature row for inference, or nil
// when no rows exist.
func LatestVector(rows []Row) []float64 {
	if len(rows) == 0 {
		return nil
	}
	return rows[len(rows)-1].Features
}

// DailyVolatility is the latest log-return standard deviation over the
// volatility window, used to derive confidence bounds.
func DailyVolatility(bars []models.DailyBar, period int) float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	vol := indicators.Volatility(closes, period)
	for i := len(vol) - 1; i >= 0; i-- {
		if !indicators.Undefined(vol[i]) {
			return vol[i]
		}
	}
	return 0
}

// AvgDailyChange measures the mean per-day close change over a fixed
// trailing window, used for the multi-day horizon adjustment.
func AvgDailyChange(bars []models.DailyBar, window int) float64 {
	if len(bars) <= window || window <= 0 {
		return 0
	}
	last := bars[len(bars)-1].Close
	first := bars[len(bars)-1-window].Close
	return (last - first) / float64(window)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
