package main

import (
	"flag"
	"fmt"
	"time"

	"pricecast/internal/data"
	"pricecast/internal/forecast"
	"pricecast/internal/logging"
)

// Demo:
// - Generate two weeks of synthetic hourly prices
// - Fit a model with automatic order selection
// - Print a day-ahead forecast and residual diagnostics
func main() {
	hours := flag.Int("hours", 336, "Hours of synthetic history to generate")
	steps := flag.Int("steps", 24, "Forecast horizon in hours")
	seed := flag.Int64("seed", 42, "Synthetic generator seed")
	flag.Parse()

	logging.Setup("info", true)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := data.GenerateHourly(start, *hours, *seed)
	fmt.Printf("Generated %d hourly prices (mean $%.2f/MWh, std %.2f)\n",
		series.Len(), series.Mean(), series.Std())

	engine := forecast.New(forecast.DefaultConfig())

	model, err := engine.Fit(series, forecast.FitOptions{})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Selected %s", model.Order)
	if model.Seasonal != nil {
		fmt.Printf(" x %s", model.Seasonal)
	}
	fmt.Printf("  AIC=%.2f BIC=%.2f\n\n", model.AIC, model.BIC)

	result, err := engine.Forecast(*steps, forecast.ForecastOptions{})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Day-ahead forecast (%.0f%% intervals):\n", 100*result.Confidence)
	for i, p := range result.Points {
		ts := result.Timestamps[i]
		fmt.Printf("  %s  %7.2f  [%7.2f, %7.2f]\n",
			ts.Format("Jan 02 15:04"), p, result.Lower[i], result.Upper[i])
	}

	diag, err := engine.Diagnostics()
	if err != nil {
		panic(err)
	}
	fmt.Printf("\nResiduals: mean=%.4f std=%.4f white-noise=%v\n",
		diag.ResidualMean, diag.ResidualStd, diag.WhiteNoise)
}
