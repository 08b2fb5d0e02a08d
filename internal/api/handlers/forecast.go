package handlers

import (
	"net/http"

	"pricecast/internal/api/models"
	"pricecast/internal/forecast"

	"github.com/gin-gonic/gin"
)

// ForecastHandler handles forecast requests.
type ForecastHandler struct {
	cfg forecast.Config
}

// NewForecastHandler creates a forecast handler with the server's default
// engine configuration. Requests may override it per-call.
func NewForecastHandler(cfg forecast.Config) *ForecastHandler {
	return &ForecastHandler{cfg: cfg}
}

// Run handles POST /api/v1/forecast.
func (h *ForecastHandler) Run(c *gin.Context) {
	var req models.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	series, ok := resolveSeries(c, req.Series, req.DataSource)
	if !ok {
		return
	}

	// One engine per request; handlers share no fitted state.
	engine := forecast.New(engineConfig(req.Config, h.cfg))
	model, err := engine.Fit(series, fitOptions(req.Order, req.Seasonal))
	if err != nil {
		writeModelError(c, err)
		return
	}

	result, err := engine.Forecast(req.Steps, forecast.ForecastOptions{
		Confidence: req.Confidence,
	})
	if err != nil {
		writeModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ForecastResponse{
		Status:     "completed",
		Model:      modelInfo(model, series.Len()),
		Confidence: result.Confidence,
		Points:     forecastPoints(result),
	})
}

func forecastPoints(result *forecast.Result) []models.ForecastPoint {
	points := make([]models.ForecastPoint, len(result.Points))
	for i := range result.Points {
		points[i] = models.ForecastPoint{
			Index:    result.Index[i],
			Forecast: result.Points[i],
			Lower:    result.Lower[i],
			Upper:    result.Upper[i],
		}
		if i < len(result.Timestamps) {
			ts := result.Timestamps[i]
			points[i].Timestamp = &ts
		}
	}
	return points
}
