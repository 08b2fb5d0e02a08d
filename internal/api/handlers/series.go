package handlers

import (
	"errors"
	"net/http"
	"time"

	"pricecast/internal/api/models"
	"pricecast/internal/data"
	"pricecast/internal/forecast"
	"pricecast/internal/timeseries"

	"github.com/gin-gonic/gin"
)

const defaultSyntheticHours = 336 // two weeks

// resolveSeries materializes the input series for a request, from either the
// inline points or a data source. On failure it writes the error response
// and returns ok=false.
func resolveSeries(c *gin.Context, points []models.PricePoint, ds *models.DataSourceConfig) (*timeseries.Series, bool) {
	if len(points) > 0 && ds != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"provide either series or data_source, not both")
		return nil, false
	}

	if len(points) > 0 {
		series, err := seriesFromPoints(points)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_SERIES", err.Error())
			return nil, false
		}
		return series, true
	}

	if ds == nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"either series or data_source is required")
		return nil, false
	}

	series, err := fetchFromSource(c, ds)
	if err != nil {
		writeFetchError(c, err)
		return nil, false
	}
	if series.Len() == 0 {
		writeError(c, http.StatusUnprocessableEntity, "EMPTY_SERIES",
			"data source returned no observations for the requested range")
		return nil, false
	}
	return series, true
}

func seriesFromPoints(points []models.PricePoint) (*timeseries.Series, error) {
	timestamps := make([]time.Time, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		ts, err := timeseries.ParseTimestamp(p.Timestamp)
		if err != nil {
			return nil, err
		}
		timestamps[i] = ts
		values[i] = p.Price
	}
	return timeseries.NewWithTimestamps(timestamps, values)
}

func fetchFromSource(c *gin.Context, ds *models.DataSourceConfig) (*timeseries.Series, error) {
	src, err := data.New(data.Config{
		Type:       ds.Type,
		APIKey:     ds.APIKey,
		DatasetID:  ds.DatasetID,
		LocationID: ds.LocationID,
		Region:     ds.Region,
		Seed:       ds.Seed,
	})
	if err != nil {
		return nil, err
	}

	// Synthetic requests without a date range get a fixed-size window so
	// responses stay reproducible across runs.
	if ds.Type == "synthetic" && ds.StartDate == "" {
		hours := ds.Hours
		if hours <= 0 {
			hours = defaultSyntheticHours
		}
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		return data.GenerateHourly(start, hours, ds.Seed), nil
	}

	if ds.StartDate == "" || ds.EndDate == "" {
		return src.FetchCurrent(c.Request.Context())
	}

	start, err := time.Parse("2006-01-02", ds.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse("2006-01-02", ds.EndDate)
	if err != nil {
		return nil, err
	}
	return src.FetchHistorical(c.Request.Context(), start, end)
}

func fitOptions(order *models.OrderSpec, seasonal *models.SeasonalOrderSpec) forecast.FitOptions {
	var opts forecast.FitOptions
	if order != nil {
		opts.Order = &forecast.Order{P: order.P, D: order.D, Q: order.Q}
	}
	if seasonal != nil {
		opts.Seasonal = &forecast.SeasonalOrder{
			P: seasonal.P, D: seasonal.D, Q: seasonal.Q, Period: seasonal.Period,
		}
	}
	return opts
}

func engineConfig(override *forecast.Config, base forecast.Config) forecast.Config {
	if override != nil {
		return *override
	}
	return base
}

func modelInfo(m *forecast.FittedModel, nObs int) models.ModelInfo {
	info := models.ModelInfo{
		Order: m.Order.String(),
		AIC:   m.AIC,
		BIC:   m.BIC,
		NObs:  nObs,
	}
	if m.Seasonal != nil {
		info.Seasonal = m.Seasonal.String()
	}
	return info
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}

// writeModelError maps fitting and forecasting failures onto HTTP statuses.
func writeModelError(c *gin.Context, err error) {
	var insufficient *forecast.InsufficientDataError
	var convergence *forecast.ConvergenceError

	switch {
	case errors.Is(err, forecast.ErrNotFitted):
		writeError(c, http.StatusConflict, "NOT_FITTED", err.Error())
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INSUFFICIENT_DATA",
				Message: err.Error(),
				Details: map[string]interface{}{
					"needed": insufficient.Needed,
					"got":    insufficient.Got,
				},
			},
		})
	case errors.As(err, &convergence):
		writeError(c, http.StatusUnprocessableEntity, "CONVERGENCE_FAILURE", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func writeFetchError(c *gin.Context, err error) {
	if gsErr, ok := err.(*data.GridStatusError); ok {
		statusCode := http.StatusBadRequest
		if gsErr.StatusCode == http.StatusForbidden || gsErr.StatusCode == http.StatusUnauthorized {
			statusCode = http.StatusUnauthorized
		} else if gsErr.StatusCode == http.StatusTooManyRequests {
			statusCode = http.StatusTooManyRequests
		}
		c.JSON(statusCode, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    gsErr.Code,
				Message: gsErr.Message,
				Details: map[string]interface{}{
					"status_code": gsErr.StatusCode,
					"retry_after": gsErr.RetryAfter,
				},
			},
		})
		return
	}
	writeError(c, http.StatusBadRequest, "DATA_FETCH_ERROR", err.Error())
}
