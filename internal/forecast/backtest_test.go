package forecast

import (
	"errors"
	"math"
	"testing"
)

// backtestConfig keeps the walk-forward tests fast: fixed small order, no
// order search on every window.
func backtestEngine() *Engine {
	cfg := DefaultConfig()
	cfg.AutoSelect = false
	cfg.Seasonal = false
	return New(cfg)
}

func TestRollingForecastWindowCount(t *testing.T) {
	series := hourlyPrices(240, 1.0, 60)
	engine := backtestEngine()

	// floor((240 - 168 - 24 + 1) / 24) = 2.
	result, err := engine.RollingForecast(series, 168, 24, 24, 0)
	if err != nil {
		t.Fatalf("RollingForecast failed: %v", err)
	}
	if result.NWindows != 2 {
		t.Errorf("Expected 2 windows, got %d", result.NWindows)
	}
	if len(result.Windows) != result.NWindows {
		t.Errorf("Window slice length %d does not match NWindows %d",
			len(result.Windows), result.NWindows)
	}
	if result.Horizon != 24 {
		t.Errorf("Expected horizon 24, got %d", result.Horizon)
	}
}

func TestRollingForecastStepDefaultsToOne(t *testing.T) {
	series := hourlyPrices(130, 1.0, 61)
	engine := backtestEngine()

	// floor((130 - 120 - 6 + 1) / 1) = 5.
	result, err := engine.RollingForecast(series, 120, 6, 0, 0)
	if err != nil {
		t.Fatalf("RollingForecast failed: %v", err)
	}
	if result.NWindows != 5 {
		t.Errorf("Expected 5 windows with step 1, got %d", result.NWindows)
	}
}

func TestRollingForecastWindowShapes(t *testing.T) {
	series := hourlyPrices(200, 1.0, 62)
	engine := backtestEngine()

	result, err := engine.RollingForecast(series, 150, 12, 12, 0)
	if err != nil {
		t.Fatalf("RollingForecast failed: %v", err)
	}

	for i, w := range result.Windows {
		if len(w.Actuals) != 12 || len(w.Forecast.Points) != 12 {
			t.Errorf("Window %d: expected 12 actuals and points, got %d/%d",
				i, len(w.Actuals), len(w.Forecast.Points))
		}
		wantEnd := 150 + i*12
		if w.TrainEnd != wantEnd {
			t.Errorf("Window %d: expected TrainEnd %d, got %d", i, wantEnd, w.TrainEnd)
		}
		// Actuals come straight from the source series.
		for j, a := range w.Actuals {
			if a != series.Values[w.TrainEnd+j] {
				t.Errorf("Window %d actual %d mismatch", i, j)
			}
		}
	}

	if math.IsNaN(result.MAE) || math.IsNaN(result.RMSE) {
		t.Errorf("Metrics must be finite: MAE=%v RMSE=%v", result.MAE, result.RMSE)
	}
	if result.Coverage < 0 || result.Coverage > 1 {
		t.Errorf("Coverage out of range: %v", result.Coverage)
	}
}

func TestRollingForecastInsufficientData(t *testing.T) {
	series := hourlyPrices(100, 1.0, 63)
	engine := backtestEngine()

	_, err := engine.RollingForecast(series, 90, 24, 1, 0)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientDataError, got %v", err)
	}
	if insufficient.Needed != 114 || insufficient.Got != 100 {
		t.Errorf("Expected Needed=114 Got=100, got %+v", insufficient)
	}
}

func TestRollingForecastInvalidParams(t *testing.T) {
	series := hourlyPrices(100, 1.0, 64)
	engine := backtestEngine()

	if _, err := engine.RollingForecast(series, 0, 24, 1, 0); err == nil {
		t.Error("Expected error for zero train size")
	}
	if _, err := engine.RollingForecast(series, 50, 0, 1, 0); err == nil {
		t.Error("Expected error for zero horizon")
	}
	if _, err := engine.RollingForecast(nil, 50, 24, 1, 0); err == nil {
		t.Error("Expected error for nil series")
	}
}

func TestRollingForecastCoverageNearConfidence(t *testing.T) {
	series := hourlyPrices(400, 2.0, 65)
	engine := backtestEngine()

	result, err := engine.RollingForecast(series, 300, 12, 12, 0)
	if err != nil {
		t.Fatalf("RollingForecast failed: %v", err)
	}
	// 95% nominal; anything far below says the intervals are broken.
	if result.Coverage < 0.5 {
		t.Errorf("Coverage unreasonably low for 95%% intervals: %v", result.Coverage)
	}
}
