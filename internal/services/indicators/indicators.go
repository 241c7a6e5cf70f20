package indicators

import "math"

// Indicator outputs are aligned with their input series. Entries inside the
// warm-up window are NaN, which marks "undefined" rather than zero so that
// downstream row filters cannot mistake missing history for a real value.

// Undefined reports whether an indicator value is inside its warm-up window.
func Undefined(v float64) bool { return math.IsNaN(v) }

// SMA computes the trailing arithmetic mean over period values. The first
// period-1 entries are NaN.
func SMA(data []float64, period int) []float64 {
	out := make([]float64, len(data))
	var sum float64
	for i := range data {
		sum += data[i]
		if i >= period {
			sum -= data[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// RSI computes the relative strength index over trailing period gains and
// losses, on a 0-100 scale. When the trailing average loss is zero the
// value saturates at exactly 100.
func RSI(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	out[0] = math.NaN()

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	for i := range gains {
		if i < period-1 {
			out[i+1] = math.NaN()
			continue
		}
		var avgGain, avgLoss float64
		for j := i - period + 1; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		if avgLoss == 0 {
			out[i+1] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i+1] = 100 - 100/(1+rs)
	}
	return out
}

// ATR computes the average true range: the SMA over period of the per-step
// true range max(high-low, |high-prevClose|, |low-prevClose|). The first
// step has no previous close and uses high-low alone.
func ATR(high, low, close []float64, period int) []float64 {
	tr := make([]float64, len(high))
	for i := range high {
		if i == 0 {
			tr[i] = high[i] - low[i]
			continue
		}
		tr[i] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-close[i-1]), math.Abs(low[i]-close[i-1])))
	}
	return SMA(tr, period)
}

// Volatility computes the standard deviation of the trailing period log
// returns at each index. Entries before period observations exist are NaN.
func Volatility(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range prices {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		rets := make([]float64, 0, period)
		for j := i - period + 1; j <= i; j++ {
			r := math.Log(prices[j] / prices[j-1])
			rets = append(rets, r)
			sum += r
		}
		mean := sum / float64(period)
		var variance float64
		for _, r := range rets {
			variance += (r - mean) * (r - mean)
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}
