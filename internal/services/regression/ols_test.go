package regression

import (
	"errors"
	"math/rand"
	"testing"

	"StockCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRecoversKnownCoefficients(t *testing.T) {
	// y = 3 + 2*x0 - 0.5*x1, exactly linear.
	rng := rand.New(rand.NewSource(7))
	x := make([][]float64, 200)
	y := make([]float64, 200)
	for i := range x {
		a, b := rng.Float64()*10, rng.Float64()*10
		x[i] = []float64{a, b}
		y[i] = 3 + 2*a - 0.5*b
	}

	m, err := Fit(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 3, m.Intercept(), 1e-8)
	coeffs := m.Coefficients()
	require.Len(t, coeffs, 2)
	assert.InDelta(t, 2, coeffs[0], 1e-8)
	assert.InDelta(t, -0.5, coeffs[1], 1e-8)
	assert.Equal(t, 2, m.NumFeatures())
}

func TestPredictWithinReportedMAE(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	x := make([][]float64, 300)
	y := make([]float64, 300)
	for i := range x {
		a, b, c := rng.Float64(), rng.Float64(), rng.Float64()
		x[i] = []float64{a, b, c}
		y[i] = 10 + a - 2*b + 0.25*c + rng.NormFloat64()*0.1
	}

	m, err := Fit(x, y)
	require.NoError(t, err)
	metrics := Evaluate(m, x, y)

	// Residuals on the training rows must be consistent with the model's
	// own reported MAE: none can exceed a loose multiple of it.
	for i, row := range x {
		resid := m.Predict(row) - y[i]
		if resid < 0 {
			resid = -resid
		}
		assert.LessOrEqual(t, resid, metrics.MAE*10+1e-9)
	}
	assert.Greater(t, metrics.RSquared, 0.9)
}

func TestFitEmptyMatrix(t *testing.T) {
	_, err := Fit(nil, nil)
	require.Error(t, err)
	var pe *models.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, models.KindTraining, pe.Kind)
}

func TestFitRowTargetMismatch(t *testing.T) {
	_, err := Fit([][]float64{{1}, {2}}, []float64{1})
	require.Error(t, err)
	assert.Equal(t, models.KindTraining, models.KindOf(err))
}

func TestFitRaggedRows(t *testing.T) {
	_, err := Fit([][]float64{{1, 2}, {3}}, []float64{1, 2})
	require.Error(t, err)
	assert.Equal(t, models.KindTraining, models.KindOf(err))
}

func TestFitToleratesCollinearColumns(t *testing.T) {
	// Second column is an exact copy of the first.
	x := make([][]float64, 50)
	y := make([]float64, 50)
	for i := range x {
		v := float64(i)
		x[i] = []float64{v, v}
		y[i] = 5 + 3*v
	}

	m, err := Fit(x, y)
	require.NoError(t, err)

	// Predictions stay correct even if individual weights are not unique.
	assert.InDelta(t, 5+3*10, m.Predict([]float64{10, 10}), 1e-6)
}

func TestEvaluateClampsNegativeRSquared(t *testing.T) {
	// Train on one regime, evaluate on an inverted one: raw R-squared
	// goes negative, displayed value floors at zero.
	xTrain := [][]float64{{1}, {2}, {3}, {4}, {5}}
	yTrain := []float64{1, 2, 3, 4, 5}
	m, err := Fit(xTrain, yTrain)
	require.NoError(t, err)

	xEval := [][]float64{{1}, {2}, {3}, {4}, {5}}
	yEval := []float64{5, 4, 3, 2, 1}
	metrics := Evaluate(m, xEval, yEval)

	assert.Less(t, metrics.RawRSquared, 0.0)
	assert.Equal(t, 0.0, metrics.RSquared)
}

func TestEvaluateConstantTargets(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{2, 2, 2}
	m, err := Fit(x, y)
	require.NoError(t, err)

	metrics := Evaluate(m, x, y)
	assert.Equal(t, 0.0, metrics.RSquared)
	assert.InDelta(t, 0, metrics.MAE, 1e-9)
}
