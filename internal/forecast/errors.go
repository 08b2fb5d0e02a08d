package forecast

import (
	"errors"
	"fmt"
)

// ErrNotFitted is returned by Forecast and Diagnostics before a successful Fit.
var ErrNotFitted = errors.New("model is not fitted")

// InsufficientDataError means the series is too short for the requested
// order, or a backtest configuration produces no windows.
type InsufficientDataError struct {
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d observations, got %d", e.Needed, e.Got)
}

// ConvergenceError means the estimator could not produce finite coefficients,
// or every candidate in an order search failed to fit.
type ConvergenceError struct {
	Reason string
}

func (e *ConvergenceError) Error() string {
	return "estimation failed to converge: " + e.Reason
}
