package data

import (
	"context"
	"math"
	"math/rand"
	"time"

	"pricecast/internal/timeseries"
)

// Synthetic price shape: a $50/MWh base with a daily sinusoid, a milder
// weekly cycle and Gaussian noise. Prices can dip negative on quiet nights,
// which matches real LMP behavior.
const (
	syntheticBase      = 50.0
	syntheticDailyAmp  = 10.0
	syntheticWeeklyAmp = 3.0
	syntheticNoiseStd  = 2.0
)

// SyntheticSource generates seeded synthetic hourly prices. Deterministic
// for a given seed, which makes it the fixture source for demos and tests.
type SyntheticSource struct {
	seed int64
}

func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{seed: seed}
}

func (s *SyntheticSource) Name() string { return "synthetic" }

// FetchCurrent returns the trailing 7 days of hourly prices.
func (s *SyntheticSource) FetchCurrent(_ context.Context) (*timeseries.Series, error) {
	end := time.Now().UTC().Truncate(time.Hour)
	return s.FetchHistorical(context.Background(), end.Add(-7*24*time.Hour), end)
}

// FetchHistorical generates hourly prices in [start, end].
func (s *SyntheticSource) FetchHistorical(_ context.Context, start, end time.Time) (*timeseries.Series, error) {
	start = start.Truncate(time.Hour)
	n := int(end.Sub(start)/time.Hour) + 1
	if n < 1 {
		n = 1
	}
	return GenerateHourly(start, n, s.seed), nil
}

// GenerateHourly builds n hourly synthetic prices starting at start, seeded
// for reproducibility.
func GenerateHourly(start time.Time, n int, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))

	timestamps := make([]time.Time, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		timestamps[i] = ts

		hour := float64(i % 24)
		dayOfWeek := float64((i / 24) % 7)

		daily := syntheticDailyAmp * math.Sin(2*math.Pi*hour/24)
		weekly := syntheticWeeklyAmp * math.Sin(2*math.Pi*dayOfWeek/7)
		noise := rng.NormFloat64() * syntheticNoiseStd

		values[i] = syntheticBase + daily + weekly + noise
	}

	return &timeseries.Series{Timestamps: timestamps, Values: values, Name: "synthetic"}
}
