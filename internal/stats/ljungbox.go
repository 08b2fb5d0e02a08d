package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxLag is the test statistic and p-value at a single lag.
type LjungBoxLag struct {
	Lag       int     `json:"lag"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// LjungBoxResult holds per-lag Ljung-Box statistics for lags 1..maxLag.
// The null hypothesis at lag k is "no autocorrelation up to lag k"; a small
// p-value at any lag suggests structure left in the residuals.
type LjungBoxResult struct {
	Lags      []LjungBoxLag `json:"lags"`
	MinPValue float64       `json:"min_p_value"`
}

// LjungBox computes the Ljung-Box Q statistic for each lag 1..maxLag, with
// k degrees of freedom at lag k. Returns nil when the series is too short.
func LjungBox(values []float64, maxLag int) *LjungBoxResult {
	n := len(values)
	if n < 10 || maxLag < 1 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	acf := ACF(values, maxLag)
	if acf == nil {
		return nil
	}

	result := &LjungBoxResult{
		Lags:      make([]LjungBoxLag, 0, maxLag),
		MinPValue: math.Inf(1),
	}

	q := 0.0
	for k := 1; k <= maxLag; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
		stat := q * float64(n*(n+2))

		chi2 := distuv.ChiSquared{K: float64(k)}
		p := 1 - chi2.CDF(stat)

		result.Lags = append(result.Lags, LjungBoxLag{Lag: k, Statistic: stat, PValue: p})
		if p < result.MinPValue {
			result.MinPValue = p
		}
	}

	return result
}

// IsWhiteNoise reports whether every per-lag p-value exceeds the given
// significance level. Informational: residuals consistent with white noise.
func (r *LjungBoxResult) IsWhiteNoise(alpha float64) bool {
	if r == nil || len(r.Lags) == 0 {
		return false
	}
	return r.MinPValue > alpha
}
