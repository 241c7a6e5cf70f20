package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"StockCast/internal/domain/models"
)

// Model holds ordinary least-squares coefficients plus intercept. It is
// immutable after Fit and safe for concurrent Predict calls.
type Model struct {
	intercept float64
	coeffs    []float64
}

// Fit solves the least-squares linear system over the training rows via QR
// decomposition. Near-collinear columns are accepted as-is: no
// regularization is applied.
func Fit(x [][]float64, y []float64) (*Model, error) {
	if len(x) == 0 {
		return nil, models.TrainingError("empty feature matrix")
	}
	if len(x) != len(y) {
		return nil, models.TrainingError("feature rows %d do not match targets %d", len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return nil, models.TrainingError("feature rows are empty")
	}
	for i, row := range x {
		if len(row) != width {
			return nil, models.TrainingError("ragged feature row %d: want %d values, got %d", i, width, len(row))
		}
	}

	// Design matrix with a leading column of ones for the intercept.
	a := mat.NewDense(len(x), width+1, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}

	var qr mat.QR
	qr.Factorize(a)

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, mat.NewVecDense(len(y), y)); err != nil {
		// An ill-conditioned system still yields a usable solution.
		if _, ok := err.(mat.Condition); !ok {
			return nil, models.TrainingError("least squares solve: %v", err)
		}
	}

	coeffs := make([]float64, width)
	for j := 0; j < width; j++ {
		coeffs[j] = sol.AtVec(j + 1)
	}
	return &Model{intercept: sol.AtVec(0), coeffs: coeffs}, nil
}

// Predict returns intercept + coefficients · features. The vector length
// must match the training width.
func (m *Model) Predict(features []float64) float64 {
	out := m.intercept
	for j, c := range m.coeffs {
		out += c * features[j]
	}
	return out
}

// NumFeatures is the trained feature width.
func (m *Model) NumFeatures() int { return len(m.coeffs) }

// Coefficients returns a copy of the fitted weights.
func (m *Model) Coefficients() []float64 {
	out := make([]float64, len(m.coeffs))
	copy(out, m.coeffs)
	return out
}

// Intercept returns the fitted bias term.
func (m *Model) Intercept() float64 { return m.intercept }

// Metrics are fit-quality measurements over an evaluation partition.
// RSquared is clamped to [0,1] for display; RawRSquared keeps the
// unclamped value for diagnostics.
type Metrics struct {
	RSquared    float64
	RawRSquared float64
	MAE         float64
}

// Evaluate computes R-squared and mean absolute error of the model over
// the given partition.
func Evaluate(m *Model, x [][]float64, y []float64) Metrics {
	if len(x) == 0 || len(x) != len(y) {
		return Metrics{}
	}

	meanY := stat.Mean(y, nil)
	var ssRes, ssTot, sumAbs float64
	for i, row := range x {
		pred := m.Predict(row)
		ssRes += (pred - y[i]) * (pred - y[i])
		ssTot += (y[i] - meanY) * (y[i] - meanY)
		sumAbs += math.Abs(pred - y[i])
	}

	raw := 0.0
	if ssTot > 0 {
		raw = 1 - ssRes/ssTot
	}
	return Metrics{
		RSquared:    clamp01(raw),
		RawRSquared: raw,
		MAE:         sumAbs / float64(len(y)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
