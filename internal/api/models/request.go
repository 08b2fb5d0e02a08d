package models

import "pricecast/internal/forecast"

// PricePoint is one observation of an inline series.
type PricePoint struct {
	Timestamp string  `json:"timestamp" binding:"required"` // RFC 3339 or "2006-01-02 15:04:05"
	Price     float64 `json:"price_per_mwh"`
}

// DataSourceConfig defines how to fetch market data when the request does
// not carry an inline series.
type DataSourceConfig struct {
	Type       string `json:"type" binding:"required"` // "synthetic", "gridstatus" or "eia"
	APIKey     string `json:"api_key,omitempty"`
	DatasetID  string `json:"dataset_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
	Region     string `json:"region,omitempty"`
	StartDate  string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Seed       int64  `json:"seed,omitempty"`
	Hours      int    `json:"hours,omitempty"` // synthetic only, default 336
}

// OrderSpec pins the non-seasonal order instead of auto-selecting.
type OrderSpec struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

// SeasonalOrderSpec pins the seasonal order.
type SeasonalOrderSpec struct {
	P      int `json:"p"`
	D      int `json:"d"`
	Q      int `json:"q"`
	Period int `json:"period" binding:"required"`
}

// ForecastRequest represents the request body for POST /api/v1/forecast.
// Exactly one of Series or DataSource must be provided.
type ForecastRequest struct {
	Series     []PricePoint       `json:"series,omitempty"`
	DataSource *DataSourceConfig  `json:"data_source,omitempty"`
	Steps      int                `json:"steps" binding:"required,min=1"`
	Confidence float64            `json:"confidence,omitempty"` // default 1-alpha
	Order      *OrderSpec         `json:"order,omitempty"`
	Seasonal   *SeasonalOrderSpec `json:"seasonal,omitempty"`
	Config     *forecast.Config   `json:"config,omitempty"`
}

// BacktestRequest represents the request body for POST /api/v1/backtest.
type BacktestRequest struct {
	Series           []PricePoint      `json:"series,omitempty"`
	DataSource       *DataSourceConfig `json:"data_source,omitempty"`
	InitialTrainSize int               `json:"initial_train_size" binding:"required,min=1"`
	Horizon          int               `json:"horizon" binding:"required,min=1"`
	StepSize         int               `json:"step_size,omitempty"`      // default 1
	RefitInterval    int               `json:"refit_interval,omitempty"` // accepted, currently refits every window
	Config           *forecast.Config  `json:"config,omitempty"`
	IncludeWindows   bool              `json:"include_windows,omitempty"`
}

// DiagnosticsRequest represents the request body for POST /api/v1/diagnostics.
type DiagnosticsRequest struct {
	Series     []PricePoint       `json:"series,omitempty"`
	DataSource *DataSourceConfig  `json:"data_source,omitempty"`
	Order      *OrderSpec         `json:"order,omitempty"`
	Seasonal   *SeasonalOrderSpec `json:"seasonal,omitempty"`
	Config     *forecast.Config   `json:"config,omitempty"`
}
