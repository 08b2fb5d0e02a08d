package models

import (
	"time"

	"pricecast/internal/forecast"
	"pricecast/internal/stats"
)

// ModelInfo summarizes the fitted model attached to a response.
type ModelInfo struct {
	Order    string  `json:"order"`              // "(p,d,q)"
	Seasonal string  `json:"seasonal,omitempty"` // "(P,D,Q)[s]"
	AIC      float64 `json:"aic"`
	BIC      float64 `json:"bic"`
	NObs     int     `json:"n_obs"`
}

// ForecastPoint is one step of a forecast with its prediction interval.
// Timestamp is omitted when the training series has no inferable frequency.
type ForecastPoint struct {
	Index     int        `json:"index"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Forecast  float64    `json:"forecast"`
	Lower     float64    `json:"lower"`
	Upper     float64    `json:"upper"`
}

// ForecastResponse represents the response from POST /api/v1/forecast.
type ForecastResponse struct {
	Status     string          `json:"status"`
	Model      ModelInfo       `json:"model"`
	Confidence float64         `json:"confidence"`
	Points     []ForecastPoint `json:"points"`
}

// BacktestSummary contains aggregated walk-forward metrics.
type BacktestSummary struct {
	NWindows int     `json:"n_windows"`
	Horizon  int     `json:"horizon"`
	MAE      float64 `json:"mae"`
	RMSE     float64 `json:"rmse"`
	Coverage float64 `json:"coverage"`
}

// BacktestResponse represents the response from POST /api/v1/backtest.
type BacktestResponse struct {
	Status  string                    `json:"status"`
	Summary BacktestSummary           `json:"summary"`
	Windows []forecast.BacktestWindow `json:"windows,omitempty"`
}

// DiagnosticsResponse represents the response from POST /api/v1/diagnostics.
type DiagnosticsResponse struct {
	Status      string                `json:"status"`
	Model       ModelInfo             `json:"model"`
	Diagnostics *forecast.Diagnostics `json:"diagnostics"`
	Stationarity *stats.ADFResult     `json:"stationarity,omitempty"`
	SeasonalPeriod int                `json:"seasonal_period"`
}

// SourcesResponse represents the response from GET /api/v1/sources.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

// ErrorResponse is the error envelope returned on any failure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
