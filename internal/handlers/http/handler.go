package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/weather"
)

const timeoutDuration = 10 * time.Second

const (
	msgMissingLocation     = "Either city or lat/lon coordinates are required"
	msgInvalidCoordinates  = "Invalid coordinates"
	msgLocationNotFound    = "Location not found"
	msgInvalidCredentials  = "Invalid API key"
	msgUpstreamUnavailable = "Error fetching weather data"
)

type weatherFetcher interface {
	FetchWeather(ctx context.Context, q models.LocationQuery) (models.WeatherReport, error)
}

type requestObserver interface {
	ObserveWeatherRequest(byName bool)
	ObserveWeatherError(errorType string)
}

type coordinatesQuery struct {
	Lat *float64 `form:"lat" binding:"required,latitude"`
	Lon *float64 `form:"lon" binding:"required,longitude"`
}

type Handler struct {
	service  weatherFetcher
	observer requestObserver
	logger   zerolog.Logger
	timeout  time.Duration
}

// NewHandler builds the weather endpoint. A non-positive timeout falls back to 10s.
func NewHandler(svc weatherFetcher, observer requestObserver, logger zerolog.Logger, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = timeoutDuration
	}
	return &Handler{
		service:  svc,
		observer: observer,
		logger:   logger.With().Str("component", "WeatherHandler").Logger(),
		timeout:  timeout,
	}
}

// GetWeather
// @Summary Get current weather and forecast
// @Description Returns current conditions and a daily forecast for a city or a coordinate pair
// @Tags weather
// @Produce json
// @Param city query string false "City name"
// @Param lat query number false "Latitude"
// @Param lon query number false "Longitude"
// @Success 200 {object} models.WeatherReport
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /weather [get]
func (h *Handler) GetWeather(c *gin.Context) {
	query, ok := h.parseQuery(c)
	if !ok {
		return
	}
	h.observer.ObserveWeatherRequest(query.ByName())

	ctxWithTimeout, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	data, err := h.service.FetchWeather(ctxWithTimeout, query)
	if err != nil {
		status, message, errorType := mapError(err)
		h.observer.ObserveWeatherError(errorType)
		h.logger.Error().
			Ctx(c.Request.Context()).
			Err(err).
			Int("status", status).
			Msg("weather request failed")
		c.JSON(status, models.ErrorResponse{Error: message})
		return
	}

	c.JSON(http.StatusOK, data)
}

func (h *Handler) parseQuery(c *gin.Context) (models.LocationQuery, bool) {
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		return models.CityQuery(city), true
	}

	if c.Query("lat") == "" || c.Query("lon") == "" {
		h.observer.ObserveWeatherError("missing_location")
		h.logger.Warn().
			Str("client_ip", c.ClientIP()).
			Msg("missing location query parameters")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingLocation})
		return models.LocationQuery{}, false
	}

	var coords coordinatesQuery
	if err := c.ShouldBindQuery(&coords); err != nil {
		h.observer.ObserveWeatherError("invalid_coordinates")
		h.logger.Warn().
			Err(err).
			Str("lat", c.Query("lat")).
			Str("lon", c.Query("lon")).
			Msg("invalid coordinates")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidCoordinates})
		return models.LocationQuery{}, false
	}

	return models.CoordQuery(*coords.Lat, *coords.Lon), true
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, weather.ErrMissingLocation):
		return http.StatusBadRequest, msgMissingLocation, "missing_location"
	case errors.Is(err, weather.ErrLocationNotFound):
		return http.StatusNotFound, msgLocationNotFound, "location_not_found"
	case errors.Is(err, weather.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials, "invalid_credentials"
	default:
		return http.StatusInternalServerError, msgUpstreamUnavailable, "upstream_unavailable"
	}
}
