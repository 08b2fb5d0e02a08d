package handlers

import (
	"net/http"

	"pricecast/internal/api/models"
	"pricecast/internal/forecast"

	"github.com/gin-gonic/gin"
)

// DiagnosticsHandler handles residual-diagnostics requests.
type DiagnosticsHandler struct {
	cfg forecast.Config
}

func NewDiagnosticsHandler(cfg forecast.Config) *DiagnosticsHandler {
	return &DiagnosticsHandler{cfg: cfg}
}

// Run handles POST /api/v1/diagnostics. It fits a model to the supplied
// series and reports residual diagnostics plus the pre-fit stationarity and
// seasonality checks.
func (h *DiagnosticsHandler) Run(c *gin.Context) {
	var req models.DiagnosticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	series, ok := resolveSeries(c, req.Series, req.DataSource)
	if !ok {
		return
	}

	engine := forecast.New(engineConfig(req.Config, h.cfg))
	stationarity := engine.CheckStationarity(series)
	period := engine.DetectSeasonality(series, 0)

	model, err := engine.Fit(series, fitOptions(req.Order, req.Seasonal))
	if err != nil {
		writeModelError(c, err)
		return
	}

	diag, err := engine.Diagnostics()
	if err != nil {
		writeModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DiagnosticsResponse{
		Status:         "completed",
		Model:          modelInfo(model, series.Len()),
		Diagnostics:    diag,
		Stationarity:   stationarity,
		SeasonalPeriod: period,
	})
}
