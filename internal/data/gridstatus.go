package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"pricecast/internal/logging"
	"pricecast/internal/timeseries"
)

// GridStatusSource fetches LMP data from the Grid Status API.
type GridStatusSource struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// GridStatusError is a typed error from the Grid Status API.
type GridStatusError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *GridStatusError) Error() string {
	return e.Message
}

// gridStatusResponse matches the Grid Status LMP query payload.
type gridStatusResponse struct {
	StatusCode int               `json:"status_code"`
	Data       []lmpIntervalJSON `json:"data"`
}

type lmpIntervalJSON struct {
	IntervalStartUTC time.Time `json:"interval_start_utc"`
	Location         string    `json:"location"`
	Market           string    `json:"market"`
	LMP              float64   `json:"lmp"` // $/MWh
}

const gridStatusBaseURL = "https://api.gridstatus.io"

// NewGridStatusSource creates a Grid Status client. One request per second
// keeps well under the API's free-tier rate limit.
func NewGridStatusSource(cfg Config) (*GridStatusSource, error) {
	if cfg.APIKey == "" {
		return nil, &GridStatusError{Code: "MISSING_API_KEY", Message: "Grid Status API key is required"}
	}
	if cfg.DatasetID == "" || cfg.LocationID == "" {
		return nil, fmt.Errorf("gridstatus source requires dataset_id and location_id")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = gridStatusBaseURL
	}
	return &GridStatusSource{
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		log:     logging.Component("gridstatus"),
	}, nil
}

func (s *GridStatusSource) Name() string { return "gridstatus" }

// FetchCurrent returns the last 7 days of prices.
func (s *GridStatusSource) FetchCurrent(ctx context.Context) (*timeseries.Series, error) {
	end := time.Now().UTC()
	return s.FetchHistorical(ctx, end.AddDate(0, 0, -7), end)
}

// FetchHistorical queries the LMP dataset for [start, end].
func (s *GridStatusSource) FetchHistorical(ctx context.Context, start, end time.Time) (*timeseries.Series, error) {
	if start.After(end) {
		return nil, fmt.Errorf("start %s is after end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	cacheKey := CacheKey(s.Name(), s.cfg.DatasetID, s.cfg.LocationID, start, end)
	if cache := GetCache(); cache != nil {
		if series, ok := cache.Get(cacheKey); ok {
			s.log.Debug().Str("key", cacheKey).Msg("cache hit")
			return series, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v1/datasets/%s/query/location/%s", s.cfg.DatasetID, s.cfg.LocationID)
	u, err := url.Parse(s.cfg.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("start_time", start.Format("2006-01-02"))
	q.Set("end_time", end.Format("2006-01-02"))
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Dur("duration", time.Since(began)).Msg("request failed")
		return nil, fmt.Errorf("gridstatus request: %w", err)
	}
	defer resp.Body.Close()

	s.log.Info().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(began)).
		Str("dataset", s.cfg.DatasetID).
		Str("location", s.cfg.LocationID).
		Msg("gridstatus response")

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, &GridStatusError{StatusCode: resp.StatusCode, Code: "UNAUTHORIZED", Message: "invalid API key"}
	case http.StatusForbidden:
		return nil, &GridStatusError{StatusCode: resp.StatusCode, Code: "INVALID_API_KEY", Message: "invalid API key or insufficient permissions"}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("rate limit exceeded, retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d", resp.StatusCode),
		}
	}

	var payload gridStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode gridstatus response: %w", err)
	}

	series, err := intervalsToSeries(payload.Data)
	if err != nil {
		return nil, err
	}

	if cache := GetCache(); cache != nil {
		cache.Set(cacheKey, series)
	}
	return series, nil
}

// intervalsToSeries normalizes LMP intervals into a series. Intervals arrive
// ascending by interval start; duplicate timestamps are dropped, keeping the
// first.
func intervalsToSeries(intervals []lmpIntervalJSON) (*timeseries.Series, error) {
	timestamps := make([]time.Time, 0, len(intervals))
	values := make([]float64, 0, len(intervals))
	for _, it := range intervals {
		if n := len(timestamps); n > 0 && !it.IntervalStartUTC.After(timestamps[n-1]) {
			continue
		}
		timestamps = append(timestamps, it.IntervalStartUTC)
		values = append(values, it.LMP)
	}
	return timeseries.NewWithTimestamps(timestamps, values)
}
