package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"pricecast/internal/stats"
	"pricecast/internal/timeseries"
)

// FittedModel is an immutable snapshot of one estimation: orders, estimated
// coefficients, in-sample fit and information criteria. Re-fitting an Engine
// produces a new FittedModel; the previous one is discarded, never mutated.
type FittedModel struct {
	Order    Order
	Seasonal *SeasonalOrder

	ARCoeffs   []float64
	MACoeffs   []float64
	SARCoeffs  []float64
	SMACoeffs  []float64
	ExogCoeffs []float64
	Intercept  float64

	Variance float64
	AIC      float64
	BIC      float64
	LogLik   float64

	train      *timeseries.Series
	target     []float64 // series the ARIMA part was estimated on (exog effect removed)
	diff       []float64 // target after (seasonal) differencing
	residuals  []float64
	fittedVals []float64
}

// Residuals returns a copy of the in-sample residuals (actual minus fitted,
// on the differenced scale).
func (m *FittedModel) Residuals() []float64 {
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// FittedValues returns a copy of the in-sample fitted values on the
// differenced scale.
func (m *FittedModel) FittedValues() []float64 {
	out := make([]float64, len(m.fittedVals))
	copy(out, m.fittedVals)
	return out
}

// newFittedModel estimates a (S)ARIMA model by conditional sum of squares.
// Coefficients are clamped to (-1, 1) during optimization instead of
// enforcing stationarity/invertibility at the boundary, which keeps the
// estimator from hard-failing on borderline price series.
func newFittedModel(series *timeseries.Series, order Order, seasonal *SeasonalOrder, exog [][]float64) (*FittedModel, error) {
	if seasonal != nil && (seasonal.Period <= 1 || seasonal.P+seasonal.D+seasonal.Q == 0) {
		seasonal = nil
	}

	n := series.Len()
	needed := order.P + order.D + order.Q + 1 + seasonal.span()
	if n < needed {
		return nil, &InsufficientDataError{Needed: needed, Got: n}
	}

	m := &FittedModel{
		Order:    order,
		Seasonal: seasonal,
		ARCoeffs: make([]float64, order.P),
		MACoeffs: make([]float64, order.Q),
		train:    series,
	}
	if seasonal != nil {
		m.SARCoeffs = make([]float64, seasonal.P)
		m.SMACoeffs = make([]float64, seasonal.Q)
	}

	// Optional exogenous regressors: regression with ARIMA errors. The
	// linear effect is removed first and the ARIMA part models what is left.
	target := series.Values
	if len(exog) > 0 {
		if len(exog) != n {
			return nil, fmt.Errorf("exog has %d rows, series has %d", len(exog), n)
		}
		coeffs, _, err := stats.OLS(exog, series.Values)
		if err != nil {
			return nil, &ConvergenceError{Reason: "exogenous regression: " + err.Error()}
		}
		m.ExogCoeffs = coeffs
		target = make([]float64, n)
		for i := range target {
			target[i] = series.Values[i] - dot(exog[i], coeffs)
		}
	}
	m.target = target

	diff := target
	for i := 0; i < order.D; i++ {
		diff = diffValues(diff, 1)
	}
	if seasonal != nil {
		for i := 0; i < seasonal.D; i++ {
			diff = diffValues(diff, seasonal.Period)
		}
	}
	if len(diff) < 2 {
		return nil, &InsufficientDataError{Needed: needed, Got: n}
	}
	m.diff = diff

	m.initCoeffs()
	m.optimizeCSS()

	if !m.finite() {
		return nil, &ConvergenceError{Reason: fmt.Sprintf("non-finite coefficients for order %s", order)}
	}

	m.calculateIC()
	return m, nil
}

// initCoeffs seeds the optimizer: AR terms from the ACF of the differenced
// series, seasonal AR terms from the ACF at seasonal lags, MA terms small.
func (m *FittedModel) initCoeffs() {
	p := m.Order.P
	if p > 0 {
		if acf := stats.ACF(m.diff, p); acf != nil {
			for i := 0; i < p && i+1 < len(acf); i++ {
				m.ARCoeffs[i] = acf[i+1] * 0.5
			}
		}
	}

	if m.Seasonal != nil && m.Seasonal.P > 0 {
		if acf := stats.ACF(m.diff, m.Seasonal.P*m.Seasonal.Period); acf != nil {
			for i := 0; i < m.Seasonal.P; i++ {
				idx := (i + 1) * m.Seasonal.Period
				if idx < len(acf) {
					m.SARCoeffs[i] = acf[idx] * 0.5
				}
			}
		}
	}

	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}
	for i := range m.SMACoeffs {
		m.SMACoeffs[i] = 0.1
	}
}

// predictOne evaluates the one-step conditional expectation at index t given
// lagged values y and lagged residuals resid.
func (m *FittedModel) predictOne(t int, y, resid []float64, residLimit int) float64 {
	pred := m.Intercept

	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	if m.Seasonal != nil {
		for i := 0; i < m.Seasonal.P; i++ {
			lag := (i + 1) * m.Seasonal.Period
			if t-lag >= 0 {
				pred += m.SARCoeffs[i] * (y[t-lag] - m.Intercept)
			}
		}
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0 && t-i-1 < residLimit; i++ {
		pred += m.MACoeffs[i] * resid[t-i-1]
	}
	if m.Seasonal != nil {
		for i := 0; i < m.Seasonal.Q; i++ {
			lag := (i + 1) * m.Seasonal.Period
			if t-lag >= 0 && t-lag < residLimit {
				pred += m.SMACoeffs[i] * resid[t-lag]
			}
		}
	}
	return pred
}

// optimizeCSS minimizes the conditional sum of squares with momentum
// gradient descent, tracking the best parameter set seen.
func (m *FittedModel) optimizeCSS() {
	y := m.diff
	n := len(y)
	p := m.Order.P
	q := m.Order.Q
	sp, sq, period := 0, 0, 0
	if m.Seasonal != nil {
		sp, sq, period = m.Seasonal.P, m.Seasonal.Q, m.Seasonal.Period
	}

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	m.Intercept = mean / float64(n)

	const (
		maxIter   = 200
		tolerance = 1e-8
		momentum  = 0.9
		decay     = 0.99
	)
	learningRate := 0.005

	arMom := make([]float64, p)
	maMom := make([]float64, q)
	sarMom := make([]float64, sp)
	smaMom := make([]float64, sq)

	startIdx := max(max(p, q), max(sp*period, sq*period))
	if startIdx >= n-2 {
		startIdx = 0
	}

	bestSSE := math.Inf(1)
	bestAR := make([]float64, p)
	bestMA := make([]float64, q)
	bestSAR := make([]float64, sp)
	bestSMA := make([]float64, sq)
	noImprove := 0

	for iter := 0; iter < maxIter; iter++ {
		resid := make([]float64, n)
		sse := 0.0
		for t := startIdx; t < n; t++ {
			resid[t] = y[t] - m.predictOne(t, y, resid, n)
			sse += resid[t] * resid[t]
		}

		if sse < bestSSE {
			bestSSE = sse
			copy(bestAR, m.ARCoeffs)
			copy(bestMA, m.MACoeffs)
			copy(bestSAR, m.SARCoeffs)
			copy(bestSMA, m.SMACoeffs)
			noImprove = 0
		} else {
			noImprove++
		}
		if noImprove > 20 {
			break
		}
		if p+q+sp+sq == 0 {
			break
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		sarGrad := make([]float64, sp)
		smaGrad := make([]float64, sq)

		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * resid[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < sp; i++ {
				lag := (i + 1) * period
				if t-lag >= 0 {
					sarGrad[i] -= 2 * resid[t] * (y[t-lag] - m.Intercept)
				}
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * resid[t] * resid[t-i-1]
			}
			for i := 0; i < sq; i++ {
				lag := (i + 1) * period
				if t-lag >= 0 {
					smaGrad[i] -= 2 * resid[t] * resid[t-lag]
				}
			}
		}

		step := func(coeffs, mom, grad []float64) {
			for i := range coeffs {
				mom[i] = momentum*mom[i] + learningRate*grad[i]/float64(n)
				coeffs[i] -= mom[i]
				coeffs[i] = clamp(coeffs[i], -0.99, 0.99)
			}
		}
		step(m.ARCoeffs, arMom, arGrad)
		step(m.SARCoeffs, sarMom, sarGrad)
		step(m.MACoeffs, maMom, maGrad)
		step(m.SMACoeffs, smaMom, smaGrad)

		learningRate *= decay

		if iter > 0 && math.Abs(sse-bestSSE) < tolerance {
			break
		}
	}

	copy(m.ARCoeffs, bestAR)
	copy(m.MACoeffs, bestMA)
	copy(m.SARCoeffs, bestSAR)
	copy(m.SMACoeffs, bestSMA)

	// Final residuals and fitted values with the best parameters.
	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := 0; t < n; t++ {
		m.fittedVals[t] = m.predictOne(t, y, m.residuals, n)
		m.residuals[t] = y[t] - m.fittedVals[t]
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	numParams := p + q + sp + sq + 1
	if count > numParams {
		m.Variance = sse / float64(count-numParams)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}
}

func (m *FittedModel) calculateIC() {
	n := len(m.residuals)
	k := m.Order.P + m.Order.Q + 1 + len(m.ExogCoeffs)
	if m.Seasonal != nil {
		k += m.Seasonal.P + m.Seasonal.Q
	}

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	if m.Variance > 0 {
		m.LogLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(m.Variance) - sse/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(-1)
	}

	m.AIC = -2*m.LogLik + 2*float64(k)
	m.BIC = -2*m.LogLik + float64(k)*math.Log(float64(n))
}

func (m *FittedModel) finite() bool {
	vals := []float64{m.Intercept, m.Variance}
	vals = append(vals, m.ARCoeffs...)
	vals = append(vals, m.MACoeffs...)
	vals = append(vals, m.SARCoeffs...)
	vals = append(vals, m.SMACoeffs...)
	vals = append(vals, m.ExogCoeffs...)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// predict returns the point forecast with symmetric interval bounds at the
// given confidence level. Bounds widen with horizon for integrated models;
// that is the expected forecast-error variance growth, not a defect.
func (m *FittedModel) predict(steps int, confidence float64, exog [][]float64) (points, lower, upper []float64, err error) {
	if steps < 1 {
		return nil, nil, nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	if len(m.ExogCoeffs) > 0 {
		if len(exog) != steps {
			return nil, nil, nil, fmt.Errorf("model was fit with exogenous regressors: need %d exog rows, got %d", steps, len(exog))
		}
	}

	y := m.diff
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResid := make([]float64, n+steps)
	copy(extResid, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		extY[t] = m.predictOne(t, extY, extResid, n)
		extResid[t] = 0
	}

	points = make([]float64, steps)
	copy(points, extY[n:])
	points = m.integrate(points)

	if len(m.ExogCoeffs) > 0 {
		for h := range points {
			points[h] += dot(exog[h], m.ExogCoeffs)
		}
	}

	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	d := m.Order.D
	sd, period := 0, 0
	if m.Seasonal != nil {
		sd, period = m.Seasonal.D, m.Seasonal.Period
	}

	lower = make([]float64, steps)
	upper = make([]float64, steps)
	for h := 0; h < steps; h++ {
		se := math.Sqrt(m.Variance)
		if d > 0 {
			se *= math.Sqrt(float64(h + 1))
		}
		if sd > 0 && period > 0 {
			se *= math.Sqrt(float64(h/period + 1))
		}
		lower[h] = points[h] - z*se
		upper[h] = points[h] + z*se
	}

	return points, lower, upper, nil
}

// integrate undoes differencing to put forecasts back on the original scale.
// Fit differences non-seasonally first, then seasonally; integration undoes
// the seasonal part first, anchored on the non-seasonally differenced tail.
func (m *FittedModel) integrate(forecasts []float64) []float64 {
	d := m.Order.D
	sd, period := 0, 0
	if m.Seasonal != nil {
		sd, period = m.Seasonal.D, m.Seasonal.Period
	}

	original := m.target

	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	// levels[i] is the series after i non-seasonal differencing passes.
	// Undoing pass i needs the last value of levels[d-1-i] as its anchor.
	levels := make([][]float64, d+1)
	levels[0] = original
	for i := 1; i <= d; i++ {
		levels[i] = diffValues(levels[i-1], 1)
	}
	nonSeasonal := levels[d]

	if sd > 0 && period > 0 {
		nDiff := len(nonSeasonal)
		for i := 0; i < sd; i++ {
			for j := 0; j < len(result); j++ {
				if j < period {
					idx := nDiff - period + j
					if idx >= 0 && idx < nDiff {
						result[j] += nonSeasonal[idx]
					}
				} else {
					result[j] += result[j-period]
				}
			}
		}
	}

	for i := 0; i < d; i++ {
		anchor := levels[d-1-i]
		if len(anchor) == 0 {
			continue
		}
		lastVal := anchor[len(anchor)-1]
		for j := 0; j < len(result); j++ {
			if j == 0 {
				result[j] += lastVal
			} else {
				result[j] += result[j-1]
			}
		}
	}

	return result
}

func diffValues(values []float64, k int) []float64 {
	if k <= 0 || len(values) <= k {
		return []float64{}
	}
	out := make([]float64, len(values)-k)
	for i := k; i < len(values); i++ {
		out[i-k] = values[i] - values[i-k]
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range b {
		if i < len(a) {
			sum += a[i] * b[i]
		}
	}
	return sum
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
