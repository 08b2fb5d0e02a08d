package stats

import "math"

// ADFResult is the outcome of an augmented Dickey-Fuller unit-root test.
// The null hypothesis is that the series has a unit root; p-value < 0.05
// rejects it, so IsStationary is true when the series looks stationary.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64
	IsStationary bool
}

// ADF runs the augmented Dickey-Fuller test with a constant term.
// maxLag <= 0 selects the Schwert default floor((n-1)^(1/3)). Returns nil
// when the series is too short for the regression; callers treat that as
// "insufficient data", not as an error.
func ADF(values []float64, maxLag int) *ADFResult {
	n := len(values)
	if n < 10 {
		return nil
	}

	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff[i-1] = values[i] - values[i-1]
	}

	// Regression: delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i*delta_y_{t-i}).
	// The unit-root test is the t-statistic on beta.
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	y := make([]float64, nObs)
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff[t]

		row := make([]float64, 2+maxLag)
		row[0] = 1
		row[1] = values[t]
		for j := 1; j <= maxLag; j++ {
			row[1+j] = diff[t-j]
		}
		x[i] = row
	}

	coeffs, se, err := OLS(x, y)
	if err != nil || se == nil || len(coeffs) < 2 || se[1] == 0 {
		return nil
	}

	tStat := coeffs[1] / se[1]
	pValue := mackinnonPValue(tStat)

	return &ADFResult{
		Statistic: tStat,
		PValue:    pValue,
		Lags:      maxLag,
		NObs:      nObs,
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// mackinnonPValue approximates the ADF p-value by interpolating the
// MacKinnon (1994) asymptotic critical values for the constant-only case.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}
