package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"pricecast/internal/config"
	"pricecast/internal/data"
	"pricecast/internal/forecast"
	"pricecast/internal/logging"
	"pricecast/internal/timeseries"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	switch os.Args[1] {
	case "fetch":
		cmdFetch(os.Args[2:])
	case "forecast":
		cmdForecast(os.Args[2:])
	case "backtest":
		cmdBacktest(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli fetch --source synthetic --start 2024-01-01 --end 2024-01-14 --out prices.csv")
	fmt.Println("  cli forecast --data prices.csv --steps 24 [--order 1,1,1] [--period 24]")
	fmt.Println("  cli backtest --data prices.csv --train 168 --horizon 24 [--step 24]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - fetch writes a CSV with timestamp,price_per_mwh columns")
	fmt.Println("  - gridstatus/eia sources read their API key from the environment")
}

func cmdFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	sourceType := fs.String("source", "synthetic", "Source type (synthetic, gridstatus, eia)")
	dataset := fs.String("dataset", "", "Dataset ID (gridstatus)")
	location := fs.String("location", "", "Location ID (gridstatus)")
	region := fs.String("region", "", "Region / respondent (eia)")
	seed := fs.Int64("seed", 42, "Seed (synthetic)")
	startStr := fs.String("start", "", "Start date YYYY-MM-DD")
	endStr := fs.String("end", "", "End date YYYY-MM-DD")
	outPath := fs.String("out", "prices.csv", "Output CSV path")
	cfgPath := fs.String("config", "", "Optional YAML config")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	srcCfg := cfg.Source
	if *sourceType != "" {
		srcCfg.Type = *sourceType
	}
	if *dataset != "" {
		srcCfg.DatasetID = *dataset
	}
	if *location != "" {
		srcCfg.LocationID = *location
	}
	if *region != "" {
		srcCfg.Region = *region
	}
	srcCfg.Seed = *seed
	switch srcCfg.Type {
	case "gridstatus":
		srcCfg.APIKey = os.Getenv("GRIDSTATUS_API_KEY")
	case "eia":
		srcCfg.APIKey = os.Getenv("EIA_API_KEY")
	}

	src, err := data.New(srcCfg)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var series *timeseries.Series
	if *startStr != "" && *endStr != "" {
		start := parseDate(*startStr)
		end := parseDate(*endStr)
		series, err = src.FetchHistorical(ctx, start, end)
	} else {
		series, err = src.FetchCurrent(ctx)
	}
	if err != nil {
		fatal(err)
	}

	if err := timeseries.WriteCSV(*outPath, series); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %d rows to %s\n", series.Len(), *outPath)
}

func cmdForecast(args []string) {
	fs := flag.NewFlagSet("forecast", flag.ExitOnError)
	dataPath := fs.String("data", "", "Path to prices CSV")
	steps := fs.Int("steps", 24, "Forecast horizon in steps")
	orderStr := fs.String("order", "", "Fixed order p,d,q (default: auto-select)")
	period := fs.Int("period", 0, "Seasonal period (0 = auto-detect)")
	confidence := fs.Float64("confidence", 0.95, "Interval confidence level")
	outPath := fs.String("out", "", "Optional CSV output path for the forecast")
	cfgPath := fs.String("config", "", "Optional YAML config")
	_ = fs.Parse(args)

	if *dataPath == "" {
		fmt.Println("--data is required")
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	series, err := timeseries.LoadCSV(*dataPath)
	if err != nil {
		fatal(err)
	}

	fcfg := cfg.Forecast
	if *period > 0 {
		fcfg.SeasonalPeriod = *period
	}
	engine := forecast.New(fcfg)

	var opts forecast.FitOptions
	if *orderStr != "" {
		order, err := parseOrder(*orderStr)
		if err != nil {
			fatal(err)
		}
		opts.Order = order
	}

	model, err := engine.Fit(series, opts)
	if err != nil {
		fatal(err)
	}

	result, err := engine.Forecast(*steps, forecast.ForecastOptions{Confidence: *confidence})
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Model %s", model.Order)
	if model.Seasonal != nil {
		fmt.Printf(" x %s", model.Seasonal)
	}
	fmt.Printf("  AIC=%.2f BIC=%.2f\n", model.AIC, model.BIC)
	for i, p := range result.Points {
		label := fmt.Sprintf("t+%d", i+1)
		if i < len(result.Timestamps) {
			label = result.Timestamps[i].Format("2006-01-02 15:04")
		}
		fmt.Printf("%s  %8.2f  [%8.2f, %8.2f]\n", label, p, result.Lower[i], result.Upper[i])
	}

	if *outPath != "" {
		if err := writeForecastCSV(*outPath, result); err != nil {
			fatal(err)
		}
		fmt.Printf("Wrote %s\n", *outPath)
	}
}

func writeForecastCSV(path string, result *forecast.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "forecast", "lower", "upper"}); err != nil {
		return err
	}
	for i, p := range result.Points {
		ts := fmt.Sprintf("t+%d", i+1)
		if i < len(result.Timestamps) {
			ts = result.Timestamps[i].Format(time.RFC3339)
		}
		row := []string{
			ts,
			strconv.FormatFloat(p, 'f', 6, 64),
			strconv.FormatFloat(result.Lower[i], 'f', 6, 64),
			strconv.FormatFloat(result.Upper[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	dataPath := fs.String("data", "", "Path to prices CSV")
	train := fs.Int("train", 168, "Initial training size")
	horizon := fs.Int("horizon", 24, "Forecast horizon per window")
	step := fs.Int("step", 24, "Step size between windows")
	cfgPath := fs.String("config", "", "Optional YAML config")
	_ = fs.Parse(args)

	if *dataPath == "" {
		fmt.Println("--data is required")
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	series, err := timeseries.LoadCSV(*dataPath)
	if err != nil {
		fatal(err)
	}

	engine := forecast.New(cfg.Forecast)
	result, err := engine.RollingForecast(series, *train, *horizon, *step, 0)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Windows=%d Horizon=%d\n", result.NWindows, result.Horizon)
	fmt.Printf("MAE=%.3f RMSE=%.3f Coverage=%.1f%%\n",
		result.MAE, result.RMSE, 100*result.Coverage)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Console)
	return cfg
}

func parseDate(raw string) time.Time {
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fatal(fmt.Errorf("parse date %q: %w", raw, err))
	}
	return ts
}

func parseOrder(raw string) (*forecast.Order, error) {
	var p, d, q int
	if _, err := fmt.Sscanf(raw, "%d,%d,%d", &p, &d, &q); err != nil {
		return nil, fmt.Errorf("parse order %q (want p,d,q): %w", raw, err)
	}
	return &forecast.Order{P: p, D: d, Q: q}, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
