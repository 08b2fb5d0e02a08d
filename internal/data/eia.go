package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"pricecast/internal/logging"
	"pricecast/internal/timeseries"
)

// EIASource fetches hourly wholesale electricity prices from the U.S.
// Energy Information Administration v2 API. A free API key is required.
type EIASource struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

const (
	eiaBaseURL    = "https://api.eia.gov/v2/electricity/wholesale-prices/data"
	eiaMaxRows    = 5000
	eiaHourLayout = "2006-01-02T15"
)

// NewEIASource creates an EIA client. Region defaults to NYIS.
func NewEIASource(cfg Config) (*EIASource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("EIA API key is required (https://www.eia.gov/opendata/)")
	}
	if cfg.Region == "" {
		cfg.Region = "NYIS"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = eiaBaseURL
	}
	return &EIASource{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		log:     logging.Component("eia"),
	}, nil
}

func (s *EIASource) Name() string { return "eia" }

// FetchCurrent returns the last 7 days of hourly prices.
func (s *EIASource) FetchCurrent(ctx context.Context) (*timeseries.Series, error) {
	end := time.Now().UTC()
	return s.FetchHistorical(ctx, end.AddDate(0, 0, -7), end)
}

type eiaResponse struct {
	Response struct {
		Data []eiaRow `json:"data"`
	} `json:"response"`
}

// Price is kept raw because the API mixes numbers and quoted strings, and
// a strict decode would abort the whole payload over one bad row.
type eiaRow struct {
	Period string          `json:"period"`
	Price  json.RawMessage `json:"price"`
}

// FetchHistorical queries hourly wholesale prices for [start, end].
func (s *EIASource) FetchHistorical(ctx context.Context, start, end time.Time) (*timeseries.Series, error) {
	if start.After(end) {
		return nil, fmt.Errorf("start %s is after end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	cacheKey := CacheKey(s.Name(), s.cfg.Region, "", start, end)
	if cache := GetCache(); cache != nil {
		if series, ok := cache.Get(cacheKey); ok {
			return series, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("api_key", s.cfg.APIKey)
	q.Set("frequency", "hourly")
	q.Set("data[0]", "price")
	q.Set("facets[respondent][]", s.cfg.Region)
	q.Set("sort[0][column]", "period")
	q.Set("sort[0][direction]", "desc")
	q.Set("offset", "0")
	q.Set("length", fmt.Sprint(eiaMaxRows))
	q.Set("start", start.Format(eiaHourLayout))
	q.Set("end", end.Format(eiaHourLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Dur("duration", time.Since(began)).Msg("request failed")
		return nil, fmt.Errorf("eia request: %w", err)
	}
	defer resp.Body.Close()

	s.log.Info().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(began)).
		Str("region", s.cfg.Region).
		Msg("eia response")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eia API returned status %d", resp.StatusCode)
	}

	var payload eiaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode eia response: %w", err)
	}

	series, err := eiaRowsToSeries(payload.Response.Data)
	if err != nil {
		return nil, err
	}

	if cache := GetCache(); cache != nil {
		cache.Set(cacheKey, series)
	}
	return series, nil
}

// eiaRowsToSeries normalizes EIA rows (returned newest-first) into an
// ascending series, dropping rows with unparseable fields and duplicate
// hours.
func eiaRowsToSeries(rows []eiaRow) (*timeseries.Series, error) {
	type point struct {
		ts    time.Time
		price float64
	}
	points := make([]point, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(eiaHourLayout, row.Period)
		if err != nil {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(string(row.Price)), `"`)
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		points = append(points, point{ts: ts, price: price})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].ts.Before(points[j].ts) })

	timestamps := make([]time.Time, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if n := len(timestamps); n > 0 && !p.ts.After(timestamps[n-1]) {
			continue
		}
		timestamps = append(timestamps, p.ts)
		values = append(values, p.price)
	}
	return timeseries.NewWithTimestamps(timestamps, values)
}
