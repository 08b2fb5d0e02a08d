package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// OLS fits y = X*beta by least squares and returns the coefficients with
// their standard errors. x is row-major: one row per observation, one column
// per regressor (include a column of ones for an intercept). stdErrors is nil
// when there are too few observations to estimate them.
func OLS(x [][]float64, y []float64) (coeffs, stdErrors []float64, err error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, nil, errors.New("ols: mismatched inputs")
	}
	k := len(x[0])
	if k == 0 || n < k {
		return nil, nil, errors.New("ols: more regressors than observations")
	}

	flat := make([]float64, 0, n*k)
	for _, row := range x {
		if len(row) != k {
			return nil, nil, errors.New("ols: ragged design matrix")
		}
		flat = append(flat, row...)
	}

	design := mat.NewDense(n, k, flat)
	response := mat.NewVecDense(n, y)

	var beta mat.VecDense
	if err := beta.SolveVec(design, response); err != nil {
		return nil, nil, err
	}

	coeffs = make([]float64, k)
	for i := range coeffs {
		coeffs[i] = beta.AtVec(i)
	}

	// Residual variance.
	sse := 0.0
	for i := 0; i < n; i++ {
		pred := 0.0
		for j := 0; j < k; j++ {
			pred += coeffs[j] * x[i][j]
		}
		resid := y[i] - pred
		sse += resid * resid
	}
	if n <= k {
		return coeffs, nil, nil
	}
	s2 := sse / float64(n-k)

	// Standard errors from the diagonal of s2 * (X'X)^-1.
	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return coeffs, nil, nil
	}

	stdErrors = make([]float64, k)
	for i := 0; i < k; i++ {
		v := s2 * xtxInv.At(i, i)
		if v > 0 {
			stdErrors[i] = math.Sqrt(v)
		}
	}
	return coeffs, stdErrors, nil
}
