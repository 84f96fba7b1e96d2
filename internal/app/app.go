package app

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Nazarious-ucu/weather-forecast-proxy/docs"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/config"
	weatherHTTP "github.com/Nazarious-ucu/weather-forecast-proxy/internal/handlers/http"
	loggerT "github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/logger"
	metricsSvc "github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/metrics"
	serviceWeather "github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/weather"
	fLogger "github.com/Nazarious-ucu/weather-forecast-proxy/pkg/logger"
)

const upstreamName = "OpenWeatherMap"

// ServiceContainer holds initialized dependencies for the HTTP server.
type ServiceContainer struct {
	WeatherService *serviceWeather.Service
	Breaker        *serviceWeather.BreakerClient

	Router     *gin.Engine
	Srv        *http.Server
	fileLogger *zap.Logger
}

// App ties together config, logger, and metrics for startup/shutdown.
type App struct {
	cfg config.Config
	l   zerolog.Logger
	m   *metricsSvc.Metrics
}

// New prepares a new App with given config, zerolog logger, and metrics.
func New(cfg config.Config, logger zerolog.Logger, met *metricsSvc.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   logger,
		m:   met,
	}
}

// Start serves until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Start(ctx context.Context) error {
	srvContainer := a.Init()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		a.l.Info().
			Str("address", srvContainer.Srv.Addr).
			Msg("starting weather proxy")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.l.Info().Msg("shutdown signal received, stopping weather proxy")
	case err := <-errCh:
		if err != nil {
			a.l.Error().Err(err).Msg("weather proxy server failed")
			return err
		}
	}

	if err := a.Shutdown(srvContainer); err != nil {
		a.l.Error().Err(err).Msg("failed to shutdown application")
		return err
	}
	a.l.Info().Msg("application shutdown successfully")
	return nil
}

// Shutdown drains the HTTP server and syncs the upstream traffic log.
func (a *App) Shutdown(srvContainer ServiceContainer) error {
	a.l.Info().Msg("stopping weather proxy…")

	defer func(logger *zap.Logger) {
		if err := logger.Sync(); err != nil {
			a.l.Error().Err(err).Msg("failed to sync file logger")
		} else {
			a.l.Info().Msg("file logger synced successfully")
		}
	}(srvContainer.fileLogger)

	ctx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(a.cfg.Server.ReadTimeout)*time.Second)
	defer cancel()

	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		return err
	}
	a.l.Info().Msg("shutdown complete")
	return nil
}

// Init wires logging, metrics, the upstream client chain and the router
// without starting the listener.
func (a *App) Init() ServiceContainer {
	a.l.Info().
		Str("address", a.cfg.ServerAddress()).
		Str("upstream", a.cfg.Upstream.URL).
		Msg("initializing weather proxy")

	fileLogger, err := fLogger.NewFileLogger(a.cfg.HTTPLogsPath)
	if err != nil {
		a.l.Error().Err(err).Msg("failed to create file logger, upstream traffic will not be logged")
		fileLogger = zap.NewNop()
	}

	// HTTP client logging
	roundTripper := loggerT.NewRoundTripper(fileLogger)
	httpLogClient := &http.Client{
		Transport: roundTripper,
		Timeout:   a.cfg.UpstreamTimeout(),
	}

	openWeather := serviceWeather.NewClientOpenWeatherMap(
		a.cfg.Upstream.APIKey,
		a.cfg.Upstream.URL,
		httpLogClient,
		a.l,
	)
	instrumented := serviceWeather.NewMetricsClient(openWeather, metricsSvc.NewPromCollector(a.m.Registerer()))

	breaker := serviceWeather.NewBreakerClient(upstreamName, serviceWeather.BreakerConfig{
		TimeInterval: time.Duration(a.cfg.Breaker.TimeInterval) * time.Second,
		TimeTimeOut:  time.Duration(a.cfg.Breaker.TimeTimeOut) * time.Second,
		RepeatNumber: a.cfg.Breaker.RepeatNumber,
	}, instrumented)

	weatherService := serviceWeather.NewService(a.l, breaker)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(a.m.HTTPMiddleware())
	router.Use(cors.New(a.corsConfig()))

	weatherHandler := weatherHTTP.NewHandler(weatherService, a.m, a.l, a.cfg.UpstreamTimeout())

	api := router.Group("/api")
	{
		api.GET("/weather", weatherHandler.GetWeather)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "upstream_breaker": breaker.State().String()})
	})
	router.GET("/metrics", gin.WrapH(a.m.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	httpServer := &http.Server{
		Addr:              a.cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		ReadTimeout:       time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	return ServiceContainer{
		WeatherService: weatherService,
		Breaker:        breaker,
		Router:         router,
		Srv:            httpServer,
		fileLogger:     fileLogger,
	}
}

func (a *App) corsConfig() cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	if len(a.cfg.AllowedOrigins) == 0 || slices.Contains(a.cfg.AllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = a.cfg.AllowedOrigins
	return corsCfg
}
