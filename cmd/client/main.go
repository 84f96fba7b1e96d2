package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/client"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/config"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/history"
	"github.com/Nazarious-ucu/weather-forecast-proxy/pkg/logger"
)

const (
	backendSQLite = "sqlite"
	backendRedis  = "redis"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewClientConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewQuietLogger(cfg.LogsPath, "weather-client")
	if err != nil {
		log.Panicf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slot, closeSlot, err := openSlot(ctx, cfg, l)
	if err != nil {
		l.Error().Err(err).Str("backend", cfg.History.Backend).Msg("failed to open history backend")
		log.Panicf("failed to open history backend: %v", err)
	}
	defer func() {
		if err := closeSlot(); err != nil {
			l.Error().Err(err).Msg("failed to close history backend")
		}
	}()

	store := history.NewStore(slot, cfg.History.Key, l)
	api := client.NewAPIClient(cfg.ProxyURL, cfg.RequestTimeout(), l)
	locator := client.NewStaticLocator(cfg.Location.Latitude, cfg.Location.Longitude)

	ctrl := client.NewController(ctx, api, locator, store, l)
	repl := client.NewREPL(ctrl, os.Stdin, os.Stdout, l)

	if err := repl.Run(ctx); err != nil && ctx.Err() == nil {
		l.Error().Err(err).Msg("client stopped with error")
	}
}

func openSlot(ctx context.Context, cfg *config.ClientConfig, l zerolog.Logger) (history.Slot, func() error, error) {
	switch cfg.History.Backend {
	case backendSQLite:
		db, err := history.OpenSQLite(cfg.History.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return history.NewSQLiteSlot(db, l), db.Close, nil
	case backendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Address(),
			DB:   cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return history.NewRedisSlot(rdb, l), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}
