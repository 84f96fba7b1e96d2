package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

// forecastStride picks one 3-hour entry out of every eight, roughly one per day.
const forecastStride = 8

const locationSuffix = " (Your Location)"

type upstreamClient interface {
	FetchCurrent(ctx context.Context, q models.LocationQuery) (CurrentResponse, error)
	FetchForecast(ctx context.Context, q models.LocationQuery) (ForecastResponse, error)
}

// Service aggregates the current and forecast upstream answers into one report.
type Service struct {
	logger zerolog.Logger
	client upstreamClient
}

func NewService(logger zerolog.Logger, client upstreamClient) *Service {
	return &Service{
		logger: logger.With().Str("component", "WeatherService").Logger(),
		client: client,
	}
}

// FetchWeather issues both upstream calls concurrently and succeeds only when
// both do. Returned errors unwrap to one of ErrMissingLocation,
// ErrLocationNotFound, ErrInvalidCredentials or ErrUpstreamUnavailable.
func (s *Service) FetchWeather(ctx context.Context, q models.LocationQuery) (models.WeatherReport, error) {
	if !q.Valid() {
		return models.WeatherReport{}, ErrMissingLocation
	}

	start := time.Now()
	s.logger.Info().Ctx(ctx).
		Str("city", q.City).
		Bool("by_name", q.ByName()).
		Msg("fetching weather")

	var (
		current  CurrentResponse
		forecast ForecastResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.client.FetchCurrent(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = s.client.FetchForecast(gctx, q)
		return err
	})

	if err := g.Wait(); err != nil {
		kind := Classify(err)
		s.logger.Error().Ctx(ctx).
			Str("city", q.City).
			Err(err).
			Msg("weather fetch failed")
		if errors.Is(err, kind) {
			return models.WeatherReport{}, err
		}
		return models.WeatherReport{}, fmt.Errorf("%w: %w", kind, err)
	}

	report := models.WeatherReport{
		Current:  MapCurrent(current),
		Forecast: Downsample(forecast.List),
	}
	report.SearchedCity = SearchedCity(q, report.Current.City)

	s.logger.Info().Ctx(ctx).
		Str("searched_city", report.SearchedCity).
		Int("forecast_days", len(report.Forecast)).
		Dur("duration_ms", time.Since(start)).
		Msg("weather fetch succeeded")

	return report, nil
}

// MapCurrent copies the upstream current-conditions payload.
func MapCurrent(raw CurrentResponse) models.CurrentConditions {
	cond := firstCondition(raw.Weather)
	return models.CurrentConditions{
		City:        raw.Name,
		Country:     raw.Sys.Country,
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		WindSpeed:   raw.Wind.Speed,
		Pressure:    raw.Main.Pressure,
		Visibility:  raw.Visibility,
		Description: cond.Description,
		Icon:        cond.Icon,
		Coord:       raw.Coord,
	}
}

// Downsample keeps the entries whose index is a multiple of forecastStride.
// It assumes a 3-hour series; the alignment to local midnight is not checked.
func Downsample(list []ForecastEntry) []models.ForecastDay {
	days := make([]models.ForecastDay, 0, (len(list)+forecastStride-1)/forecastStride)
	for i := 0; i < len(list); i += forecastStride {
		entry := list[i]
		cond := firstCondition(entry.Weather)
		days = append(days, models.ForecastDay{
			Date:        entry.DtTxt,
			Temp:        entry.Main.Temp,
			FeelsLike:   entry.Main.FeelsLike,
			Humidity:    entry.Main.Humidity,
			WindSpeed:   entry.Wind.Speed,
			Description: cond.Description,
			Icon:        cond.Icon,
		})
	}
	return days
}

// SearchedCity is the display name of a report: the query text for name
// queries, the resolved place marked as the caller's location otherwise.
func SearchedCity(q models.LocationQuery, resolved string) string {
	if q.ByName() {
		return q.City
	}
	return resolved + locationSuffix
}

func firstCondition(list []ConditionPayload) ConditionPayload {
	if len(list) == 0 {
		return ConditionPayload{}
	}
	return list[0]
}
