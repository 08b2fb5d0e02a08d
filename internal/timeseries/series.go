// Package timeseries provides the price series data model shared by the
// data sources and the forecasting engine.
package timeseries

import (
	"errors"
	"math"
	"time"
)

// Series is an ordered sequence of (timestamp, value) observations.
// Timestamps are strictly increasing. Values are prices in $/MWh and may be
// negative or zero; negative prices are valid market data.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a series from bare values with a synthetic hourly index
// starting at the epoch. Useful for tests and for callers that only care
// about positions.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	base := time.Unix(0, 0).UTC()
	for i := range timestamps {
		timestamps[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return &Series{Timestamps: timestamps, Values: values}
}

// NewWithTimestamps creates a series with an explicit index.
// Timestamps must be strictly increasing.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, errors.New("timestamps must be strictly increasing")
		}
	}
	return &Series{Timestamps: timestamps, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean returns the arithmetic mean of the values.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance returns the sample variance of the values.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// Std returns the sample standard deviation of the values.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the smallest value, or NaN for an empty series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value, or NaN for an empty series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Diff returns the first difference of the series.
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// SeasonalDiff returns the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

func (s *Series) lagDiff(k int, suffix string) *Series {
	if k <= 0 || len(s.Values) <= k {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, len(s.Values)-k)
	for i := k; i < len(s.Values); i++ {
		values[i-k] = s.Values[i] - s.Values[i-k]
	}

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) > k {
		copy(timestamps, s.Timestamps[k:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name + suffix,
	}
}

// Slice returns a copy of the series in [start, end).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}
}

// InferFreq returns the sampling interval of the series when every
// consecutive pair of timestamps is the same distance apart, and zero
// otherwise. A series shorter than two points has no inferable frequency.
func (s *Series) InferFreq() time.Duration {
	if len(s.Timestamps) < 2 || len(s.Timestamps) != len(s.Values) {
		return 0
	}
	step := s.Timestamps[1].Sub(s.Timestamps[0])
	if step <= 0 {
		return 0
	}
	for i := 2; i < len(s.Timestamps); i++ {
		if s.Timestamps[i].Sub(s.Timestamps[i-1]) != step {
			return 0
		}
	}
	return step
}

// FutureTimestamps continues the series index for `steps` periods at the
// inferred frequency. Returns nil when the frequency cannot be inferred;
// callers fall back to a plain integer index in that case.
func (s *Series) FutureTimestamps(steps int) []time.Time {
	freq := s.InferFreq()
	if freq == 0 || steps <= 0 {
		return nil
	}
	last := s.Timestamps[len(s.Timestamps)-1]
	out := make([]time.Time, steps)
	for i := 0; i < steps; i++ {
		out[i] = last.Add(time.Duration(i+1) * freq)
	}
	return out
}

// Resample buckets observations into fixed intervals and averages each
// bucket. Buckets are aligned to the interval (truncated timestamps); empty
// buckets are skipped, so the result may not have an inferable frequency.
func (s *Series) Resample(interval time.Duration) *Series {
	if interval <= 0 || s.Len() == 0 || len(s.Timestamps) != len(s.Values) {
		return s.Copy()
	}

	var timestamps []time.Time
	var values []float64

	bucket := s.Timestamps[0].Truncate(interval)
	sum, count := 0.0, 0

	flush := func() {
		if count > 0 {
			timestamps = append(timestamps, bucket)
			values = append(values, sum/float64(count))
		}
	}

	for i, ts := range s.Timestamps {
		b := ts.Truncate(interval)
		if !b.Equal(bucket) {
			flush()
			bucket = b
			sum, count = 0, 0
		}
		sum += s.Values[i]
		count++
	}
	flush()

	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}
}
