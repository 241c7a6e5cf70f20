package models

import (
	"strings"
	"time"
)

// Market identifies the exchange a ticker trades on.
type Market string

const (
	MarketUS  Market = "US"
	MarketTSX Market = "TSX"
)

// Currency returns the quote currency for the market.
func (m Market) Currency() string {
	if m == MarketTSX {
		return "CAD"
	}
	return "USD"
}

// NormalizeTicker uppercases and trims a raw ticker and appends the
// Toronto suffix for TSX listings when it is not already present.
func NormalizeTicker(raw string, market Market) string {
	clean := strings.ToUpper(strings.TrimSpace(raw))
	if market == MarketTSX && !strings.HasSuffix(clean, ".TO") {
		return clean + ".TO"
	}
	return clean
}

// DailyBar is one day of OHLCV data for an instrument. Bars arrive from
// the history provider ordered by date ascending.
type DailyBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Default macro readings substituted when the macro provider has no data.
// The pipeline never fails solely for missing macro inputs.
const (
	DefaultFedFundsRate = 4.5
	DefaultCPI          = 300.0
)

// MacroSnapshot is the most recent macroeconomic reading.
type MacroSnapshot struct {
	FedFundsRate float64
	CPI          float64
}

// DefaultMacro returns the fallback snapshot.
func DefaultMacro() MacroSnapshot {
	return MacroSnapshot{FedFundsRate: DefaultFedFundsRate, CPI: DefaultCPI}
}
