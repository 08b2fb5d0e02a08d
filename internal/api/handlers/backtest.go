package handlers

import (
	"net/http"

	"pricecast/internal/api/models"
	"pricecast/internal/forecast"

	"github.com/gin-gonic/gin"
)

// BacktestHandler handles walk-forward backtest requests.
type BacktestHandler struct {
	cfg forecast.Config
}

func NewBacktestHandler(cfg forecast.Config) *BacktestHandler {
	return &BacktestHandler{cfg: cfg}
}

// Run handles POST /api/v1/backtest.
func (h *BacktestHandler) Run(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	series, ok := resolveSeries(c, req.Series, req.DataSource)
	if !ok {
		return
	}

	engine := forecast.New(engineConfig(req.Config, h.cfg))
	result, err := engine.RollingForecast(series,
		req.InitialTrainSize, req.Horizon, req.StepSize, req.RefitInterval)
	if err != nil {
		writeModelError(c, err)
		return
	}

	resp := models.BacktestResponse{
		Status: "completed",
		Summary: models.BacktestSummary{
			NWindows: result.NWindows,
			Horizon:  result.Horizon,
			MAE:      result.MAE,
			RMSE:     result.RMSE,
			Coverage: result.Coverage,
		},
	}
	if req.IncludeWindows {
		resp.Windows = result.Windows
	}

	c.JSON(http.StatusOK, resp)
}
