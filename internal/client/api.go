package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

const weatherPath = "/api/weather"

// APIError is a non-2xx reply of the proxy.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("weather proxy returned %d", e.StatusCode)
	}
	return fmt.Sprintf("weather proxy returned %d: %s", e.StatusCode, e.Message)
}

// APIClient calls the weather proxy endpoint.
type APIClient struct {
	client *resty.Client
	log    zerolog.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *APIClient {
	logger = logger.With().Str("component", "APIClient").Logger()

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("calling weather proxy")
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Msg("weather proxy responded")
		return nil
	})

	return &APIClient{client: client, log: logger}
}

// GetWeather fetches the report for q. Non-2xx replies become *APIError
// carrying the proxy's error message when it sent one.
func (a *APIClient) GetWeather(ctx context.Context, q models.LocationQuery) (models.WeatherReport, error) {
	var (
		report models.WeatherReport
		apiErr models.ErrorResponse
	)

	req := a.client.R().
		SetContext(ctx).
		SetResult(&report).
		SetError(&apiErr)

	if q.ByName() {
		req.SetQueryParam("city", strings.TrimSpace(q.City))
	} else if q.Coord != nil {
		req.SetQueryParams(map[string]string{
			"lat": strconv.FormatFloat(q.Coord.Lat, 'f', -1, 64),
			"lon": strconv.FormatFloat(q.Coord.Lon, 'f', -1, 64),
		})
	}

	resp, err := req.Get(weatherPath)
	if err != nil {
		a.log.Error().Err(err).Ctx(ctx).Msg("weather proxy request failed")
		return models.WeatherReport{}, fmt.Errorf("request weather: %w", err)
	}
	if resp.IsError() || resp.StatusCode() != http.StatusOK {
		return models.WeatherReport{}, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}

	return report, nil
}
