package forecast

import (
	"pricecast/internal/analysis"
	"pricecast/internal/timeseries"
)

// BacktestWindow pairs one window's forecast with the actual values it was
// scored against.
type BacktestWindow struct {
	TrainEnd int       `json:"train_end"` // exclusive end index of the training slice
	Forecast *Result   `json:"forecast"`
	Actuals  []float64 `json:"actuals"`
}

// BacktestResult aggregates all windows of a walk-forward backtest. The
// metrics are computed by flattening every window's arrays; windows are
// scored independently with no smoothing or weighting.
type BacktestResult struct {
	Windows  []BacktestWindow `json:"windows"`
	NWindows int              `json:"n_windows"`
	Horizon  int              `json:"horizon"`

	MAE      float64 `json:"mae"`
	RMSE     float64 `json:"rmse"`
	Coverage float64 `json:"coverage"`
}

// RollingForecast runs a walk-forward backtest: for each window the model is
// fit on series[0:initialTrainSize+i] and scored against the next horizon
// points, stepping i by stepSize.
//
// refitInterval is accepted for interface stability but does not currently
// change behavior: the model is refit on every window. An interval-based
// refit-or-append scheme was considered and deferred; callers should not
// rely on it reducing fit count.
//
// The backtest fits through the engine, so it replaces the engine's current
// model as a side effect; the last window's fit is what remains.
func (e *Engine) RollingForecast(series *timeseries.Series, initialTrainSize, horizon, stepSize, refitInterval int) (*BacktestResult, error) {
	_ = refitInterval

	if series == nil {
		return nil, &InsufficientDataError{Needed: 1, Got: 0}
	}
	if stepSize <= 0 {
		stepSize = 1
	}
	if horizon <= 0 || initialTrainSize <= 0 {
		return nil, &InsufficientDataError{Needed: 2, Got: series.Len()}
	}

	n := series.Len()
	nWindows := (n - initialTrainSize - horizon + 1) / stepSize
	if nWindows <= 0 {
		return nil, &InsufficientDataError{Needed: initialTrainSize + horizon, Got: n}
	}

	windows := make([]BacktestWindow, 0, nWindows)
	var flatForecasts, flatActuals, flatLower, flatUpper []float64

	for i := 0; i < nWindows*stepSize; i += stepSize {
		trainEnd := initialTrainSize + i
		testEnd := trainEnd + horizon
		if testEnd > n {
			break
		}

		train := series.Slice(0, trainEnd)
		actuals := series.Slice(trainEnd, testEnd).Values

		if _, err := e.Fit(train, FitOptions{}); err != nil {
			return nil, err
		}
		fc, err := e.Forecast(horizon, ForecastOptions{})
		if err != nil {
			return nil, err
		}

		windows = append(windows, BacktestWindow{
			TrainEnd: trainEnd,
			Forecast: fc,
			Actuals:  actuals,
		})

		flatForecasts = append(flatForecasts, fc.Points...)
		flatActuals = append(flatActuals, actuals...)
		flatLower = append(flatLower, fc.Lower...)
		flatUpper = append(flatUpper, fc.Upper...)
	}

	return &BacktestResult{
		Windows:  windows,
		NWindows: len(windows),
		Horizon:  horizon,
		MAE:      analysis.MAE(flatForecasts, flatActuals),
		RMSE:     analysis.RMSE(flatForecasts, flatActuals),
		Coverage: analysis.Coverage(flatActuals, flatLower, flatUpper),
	}, nil
}
