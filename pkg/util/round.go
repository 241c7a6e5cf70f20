package util

import "github.com/shopspring/decimal"

// RoundTo rounds a float to a fixed number of decimal places for display.
// Monetary fields use 2, ratios 3-4.
func RoundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
