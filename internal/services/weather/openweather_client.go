package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

const (
	currentEndpoint  = "weather"
	forecastEndpoint = "forecast"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ConditionPayload struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainPayload struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type windPayload struct {
	Speed float64 `json:"speed"`
}

// CurrentResponse is the subset of the upstream "current weather" payload we read.
type CurrentResponse struct {
	Name  string       `json:"name"`
	Coord models.Coord `json:"coord"`
	Sys   struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main       mainPayload        `json:"main"`
	Wind       windPayload        `json:"wind"`
	Visibility int                `json:"visibility"`
	Weather    []ConditionPayload `json:"weather"`
}

// ForecastEntry is one 3-hour step of the upstream forecast.
type ForecastEntry struct {
	Dt      int64              `json:"dt"`
	DtTxt   string             `json:"dt_txt"`
	Main    mainPayload        `json:"main"`
	Wind    windPayload        `json:"wind"`
	Weather []ConditionPayload `json:"weather"`
}

// ForecastResponse is the subset of the upstream "5 day / 3 hour" payload we read.
type ForecastResponse struct {
	List []ForecastEntry `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// ClientOpenWeatherMap calls the OpenWeatherMap current and forecast endpoints.
type ClientOpenWeatherMap struct {
	APIKey string
	apiURL string
	client HTTPClient
	logger zerolog.Logger
}

// NewClientOpenWeatherMap constructs a new OpenWeatherMap client. apiURL is the
// API root, e.g. https://api.openweathermap.org/data/2.5.
func NewClientOpenWeatherMap(apiKey, apiURL string,
	httpClient HTTPClient, logger zerolog.Logger,
) *ClientOpenWeatherMap {
	return &ClientOpenWeatherMap{
		APIKey: apiKey,
		apiURL: strings.TrimRight(apiURL, "/"),
		client: httpClient,
		logger: logger.With().Str("component", "ClientOpenWeatherMap").Logger(),
	}
}

func (s *ClientOpenWeatherMap) FetchCurrent(ctx context.Context, q models.LocationQuery) (CurrentResponse, error) {
	var raw CurrentResponse
	if err := s.get(ctx, currentEndpoint, q, &raw); err != nil {
		return CurrentResponse{}, err
	}
	return raw, nil
}

func (s *ClientOpenWeatherMap) FetchForecast(ctx context.Context, q models.LocationQuery) (ForecastResponse, error) {
	var raw ForecastResponse
	if err := s.get(ctx, forecastEndpoint, q, &raw); err != nil {
		return ForecastResponse{}, err
	}
	return raw, nil
}

// LocationFilter builds the provider query parameters for q.
func LocationFilter(q models.LocationQuery) url.Values {
	values := url.Values{}
	if q.ByName() {
		values.Set("q", q.City)
		return values
	}
	if q.Coord != nil {
		values.Set("lat", strconv.FormatFloat(q.Coord.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(q.Coord.Lon, 'f', -1, 64))
	}
	return values
}

func (s *ClientOpenWeatherMap) get(ctx context.Context, endpoint string, q models.LocationQuery, out any) error {
	start := time.Now()

	values := LocationFilter(q)
	values.Set("appid", s.APIKey)
	values.Set("units", "metric")
	target := fmt.Sprintf("%s/%s?%s", s.apiURL, endpoint, values.Encode())

	log := s.logger.With().
		Str("endpoint", endpoint).
		Str("city", q.City).
		Logger()

	log.Debug().Ctx(ctx).Msg("starting OpenWeatherMap request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("failed to create HTTP request")
		return transportError(endpoint, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("error sending HTTP request to OpenWeatherMap")
		return transportError(endpoint, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Error().Ctx(ctx).Err(cerr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Ctx(ctx).
			Int("status", resp.StatusCode).
			Msg("OpenWeatherMap API returned non-200 status")
		return statusError(endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("failed to decode OpenWeatherMap response")
		return transportError(endpoint, fmt.Errorf("decode: %w", err))
	}

	log.Info().Ctx(ctx).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully fetched weather data")
	return nil
}
