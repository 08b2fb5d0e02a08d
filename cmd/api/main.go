package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"pricecast/internal/api/handlers"
	"pricecast/internal/api/middleware"
	"pricecast/internal/config"
	"pricecast/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Console)

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	forecastHandler := handlers.NewForecastHandler(cfg.Forecast)
	backtestHandler := handlers.NewBacktestHandler(cfg.Forecast)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(cfg.Forecast)
	sourcesHandler := handlers.NewSourcesHandler()

	router.GET("/health", handlers.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/forecast", forecastHandler.Run)
		api.POST("/backtest", backtestHandler.Run)
		api.POST("/diagnostics", diagnosticsHandler.Run)
		api.GET("/sources", sourcesHandler.List)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
