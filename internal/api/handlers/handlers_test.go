package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecast/internal/api/models"
	"pricecast/internal/forecast"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	cfg := forecast.DefaultConfig()
	cfg.AutoSelect = false
	cfg.Seasonal = false

	router.POST("/api/v1/forecast", NewForecastHandler(cfg).Run)
	router.POST("/api/v1/backtest", NewBacktestHandler(cfg).Run)
	router.POST("/api/v1/diagnostics", NewDiagnosticsHandler(cfg).Run)
	router.GET("/api/v1/sources", NewSourcesHandler().List)
	router.GET("/health", Health)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func inlineSeries(n int) []models.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := range points {
		hour := i % 24
		points[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			Price:     50 + 10*float64(hour%12) - 5*float64(hour%7),
		}
	}
	return points
}

func TestHealth(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSources(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SourcesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Sources, "synthetic")
	assert.Contains(t, resp.Sources, "gridstatus")
	assert.Contains(t, resp.Sources, "eia")
}

func TestForecastInlineSeries(t *testing.T) {
	router := testRouter()
	w := postJSON(t, router, "/api/v1/forecast", models.ForecastRequest{
		Series: inlineSeries(120),
		Steps:  24,
		Order:  &models.OrderSpec{P: 1, D: 1, Q: 1},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "(1,1,1)", resp.Model.Order)
	assert.Equal(t, 120, resp.Model.NObs)
	assert.Len(t, resp.Points, 24)
	for _, p := range resp.Points {
		assert.NotNil(t, p.Timestamp, "hourly inline series has an inferable frequency")
		assert.LessOrEqual(t, p.Lower, p.Forecast)
		assert.GreaterOrEqual(t, p.Upper, p.Forecast)
	}
	assert.Equal(t, 120, resp.Points[0].Index)
}

func TestForecastSyntheticSource(t *testing.T) {
	router := testRouter()
	w := postJSON(t, router, "/api/v1/forecast", models.ForecastRequest{
		DataSource: &models.DataSourceConfig{Type: "synthetic", Seed: 42, Hours: 168},
		Steps:      12,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Points, 12)
	assert.Equal(t, 168, resp.Model.NObs)
}

func TestForecastRequestValidation(t *testing.T) {
	router := testRouter()

	// Missing steps.
	w := postJSON(t, router, "/api/v1/forecast", gin.H{"series": inlineSeries(50)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Neither series nor source.
	w = postJSON(t, router, "/api/v1/forecast", gin.H{"steps": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Both series and source.
	w = postJSON(t, router, "/api/v1/forecast", models.ForecastRequest{
		Series:     inlineSeries(50),
		DataSource: &models.DataSourceConfig{Type: "synthetic"},
		Steps:      5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestForecastInsufficientData(t *testing.T) {
	router := testRouter()
	w := postJSON(t, router, "/api/v1/forecast", models.ForecastRequest{
		Series: inlineSeries(3),
		Steps:  5,
		Order:  &models.OrderSpec{P: 3, D: 1, Q: 3},
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_DATA", resp.Error.Code)
	assert.EqualValues(t, 3, resp.Error.Details["got"])
}

func TestBacktestEndpoint(t *testing.T) {
	router := testRouter()
	w := postJSON(t, router, "/api/v1/backtest", models.BacktestRequest{
		Series:           inlineSeries(240),
		InitialTrainSize: 168,
		Horizon:          24,
		StepSize:         24,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 2, resp.Summary.NWindows)
	assert.Equal(t, 24, resp.Summary.Horizon)
	assert.Empty(t, resp.Windows, "windows omitted unless requested")

	w = postJSON(t, router, "/api/v1/backtest", models.BacktestRequest{
		Series:           inlineSeries(240),
		InitialTrainSize: 168,
		Horizon:          24,
		StepSize:         24,
		IncludeWindows:   true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Windows, 2)
}

func TestBacktestTooShort(t *testing.T) {
	router := testRouter()
	w := postJSON(t, router, "/api/v1/backtest", models.BacktestRequest{
		Series:           inlineSeries(100),
		InitialTrainSize: 90,
		Horizon:          24,
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_DATA", resp.Error.Code)
}

func TestDiagnosticsEndpoint(t *testing.T) {
	router := testRouter()
	w := postJSON(t, router, "/api/v1/diagnostics", models.DiagnosticsRequest{
		Series: inlineSeries(200),
		Order:  &models.OrderSpec{P: 1, D: 1, Q: 1},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.DiagnosticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Diagnostics)
	assert.NotEmpty(t, resp.Diagnostics.ResidualACF)
	require.NotNil(t, resp.Diagnostics.LjungBox)
	assert.Len(t, resp.Diagnostics.LjungBox.Lags, 10)
}

func TestForecastBadTimestamps(t *testing.T) {
	router := testRouter()
	w := postJSON(t, router, "/api/v1/forecast", models.ForecastRequest{
		Series: []models.PricePoint{
			{Timestamp: "2024-01-01T00:00:00Z", Price: 50},
			{Timestamp: "garbage", Price: 51},
		},
		Steps: 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
