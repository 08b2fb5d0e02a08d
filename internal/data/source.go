// Package data provides electricity-price series sources: grid-operator API
// clients, a synthetic generator and an optional response cache. Every
// source normalizes its payload to a (timestamp, price_per_mwh) series in
// $/MWh with ascending timestamps.
package data

import (
	"context"
	"fmt"
	"time"

	"pricecast/internal/timeseries"
)

// Source is the capability every price source implements. Implementations
// make blocking network calls with fixed timeouts and no retries; a failure
// is reported as an error and callers should also check for an empty series
// before fitting.
type Source interface {
	Name() string
	// FetchCurrent returns the most recent window the source offers.
	FetchCurrent(ctx context.Context) (*timeseries.Series, error)
	// FetchHistorical returns prices in [start, end].
	FetchHistorical(ctx context.Context, start, end time.Time) (*timeseries.Series, error)
}

// Config selects and parameterizes a source. API keys are injected here
// explicitly; sources never read the environment themselves.
type Config struct {
	Type       string `yaml:"type" json:"type"` // "synthetic", "gridstatus" or "eia"
	APIKey     string `yaml:"-" json:"-"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	DatasetID  string `yaml:"dataset_id,omitempty" json:"dataset_id,omitempty"`
	LocationID string `yaml:"location_id,omitempty" json:"location_id,omitempty"`
	Region     string `yaml:"region,omitempty" json:"region,omitempty"`
	Seed       int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// New builds a source from config.
func New(cfg Config) (Source, error) {
	switch cfg.Type {
	case "synthetic", "":
		return NewSyntheticSource(cfg.Seed), nil
	case "gridstatus":
		return NewGridStatusSource(cfg)
	case "eia":
		return NewEIASource(cfg)
	default:
		return nil, fmt.Errorf("unsupported source type: %q", cfg.Type)
	}
}

// Types lists the supported source type names.
func Types() []string {
	return []string{"synthetic", "gridstatus", "eia"}
}
