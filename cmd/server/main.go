package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/app"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/config"
	metricsSvc "github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/metrics"
	"github.com/Nazarious-ucu/weather-forecast-proxy/pkg/logger"
)

// @title Weather Forecast Proxy API
// @version 1.0
// @description Pass-through proxy over OpenWeatherMap current weather and forecast endpoints.
// @host localhost:5000
// @BasePath /api/
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.LogsPath, "weather-proxy")
	if err != nil {
		log.Panicf("failed to create logger: %v", err)
	}

	application := app.New(*cfg, l, metricsSvc.NewMetrics("weather_proxy"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Fatal().Err(err).Msg("application failed to run")
	}
}
