package stats

import (
	"math"
	"math/rand"
	"testing"
)

func TestOLSExactFit(t *testing.T) {
	// y = 2 + 3x, no noise.
	x := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range x {
		xi := float64(i)
		x[i] = []float64{1, xi}
		y[i] = 2 + 3*xi
	}

	coeffs, _, err := OLS(x, y)
	if err != nil {
		t.Fatalf("OLS failed: %v", err)
	}
	if math.Abs(coeffs[0]-2) > 1e-9 || math.Abs(coeffs[1]-3) > 1e-9 {
		t.Errorf("Expected [2 3], got %v", coeffs)
	}
}

func TestOLSWithNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(30))
	n := 500
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		xi := rng.Float64() * 10
		x[i] = []float64{1, xi}
		y[i] = 1.5 - 0.8*xi + rng.NormFloat64()*0.5
	}

	coeffs, se, err := OLS(x, y)
	if err != nil {
		t.Fatalf("OLS failed: %v", err)
	}
	if math.Abs(coeffs[0]-1.5) > 0.2 || math.Abs(coeffs[1]+0.8) > 0.05 {
		t.Errorf("Coefficients off: %v", coeffs)
	}
	if se == nil || se[0] <= 0 || se[1] <= 0 {
		t.Errorf("Expected positive standard errors, got %v", se)
	}
}

func TestOLSBadInputs(t *testing.T) {
	if _, _, err := OLS(nil, nil); err == nil {
		t.Error("Expected error for empty inputs")
	}
	if _, _, err := OLS([][]float64{{1, 2, 3}}, []float64{1}); err == nil {
		t.Error("Expected error for more regressors than observations")
	}
	if _, _, err := OLS([][]float64{{1, 2}, {1}}, []float64{1, 2}); err == nil {
		t.Error("Expected error for ragged design matrix")
	}
}
