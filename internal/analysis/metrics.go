// Package analysis computes forecast accuracy metrics over flattened
// prediction/actual arrays.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MAE returns the mean absolute error between forecasts and actuals.
// Mismatched or empty inputs yield NaN.
func MAE(forecasts, actuals []float64) float64 {
	if len(forecasts) != len(actuals) || len(forecasts) == 0 {
		return math.NaN()
	}
	absErr := make([]float64, len(forecasts))
	for i := range forecasts {
		absErr[i] = math.Abs(forecasts[i] - actuals[i])
	}
	return stat.Mean(absErr, nil)
}

// RMSE returns the root mean squared error between forecasts and actuals.
func RMSE(forecasts, actuals []float64) float64 {
	if len(forecasts) != len(actuals) || len(forecasts) == 0 {
		return math.NaN()
	}
	sqErr := make([]float64, len(forecasts))
	for i := range forecasts {
		diff := forecasts[i] - actuals[i]
		sqErr[i] = diff * diff
	}
	return math.Sqrt(stat.Mean(sqErr, nil))
}

// MAPE returns the mean absolute percentage error. Observations with an
// actual of zero are skipped; electricity prices cross zero, so MAPE is a
// rough signal here and MAE/RMSE are the primary metrics.
func MAPE(forecasts, actuals []float64) float64 {
	if len(forecasts) != len(actuals) || len(forecasts) == 0 {
		return math.NaN()
	}
	sum, count := 0.0, 0
	for i := range forecasts {
		if actuals[i] == 0 {
			continue
		}
		sum += math.Abs((forecasts[i] - actuals[i]) / actuals[i])
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return 100 * sum / float64(count)
}

// Coverage returns the fraction of actuals falling inside [lower, upper].
func Coverage(actuals, lower, upper []float64) float64 {
	n := len(actuals)
	if n == 0 || len(lower) != n || len(upper) != n {
		return math.NaN()
	}
	hits := 0
	for i := range actuals {
		if actuals[i] >= lower[i] && actuals[i] <= upper[i] {
			hits++
		}
	}
	return float64(hits) / float64(n)
}
