package app_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/app"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/config"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
	metricsSvc "github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/metrics"
)

const testAPIKey = "secret-key-open-weather"

func forecastList(n int, temp float64) string {
	entries := make([]string, n)
	for i := range entries {
		entries[i] = fmt.Sprintf(
			`{"dt_txt":"2024-05-%02d %02d:00:00","main":{"temp":%v,"feels_like":%v,"humidity":70},
			  "wind":{"speed":2.1},"weather":[{"description":"few clouds","icon":"02d"}]}`,
			1+i/8, (i%8)*3, temp, temp)
	}
	return `{"list":[` + strings.Join(entries, ",") + `]}`
}

func currentPayload(name string, temp float64) string {
	return fmt.Sprintf(`{
	  "name": %q,
	  "coord": {"lat": 10, "lon": 20},
	  "sys": {"country": "FR"},
	  "main": {"temp": %v, "feels_like": %v, "pressure": 1013, "humidity": 60},
	  "wind": {"speed": 3.6},
	  "visibility": 10000,
	  "weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}]
	}`, name, temp, temp)
}

func newUpstream(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		if q.Get("appid") != testAPIKey {
			http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		if q.Get("units") != "metric" {
			http.Error(w, "units must be metric", http.StatusBadRequest)
			return
		}

		name := q.Get("q")
		switch {
		case name == "Atlantis":
			http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
			return
		case name == "":
			name = "Kaduna"
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/data/2.5/weather":
			_, _ = w.Write([]byte(currentPayload(name, 15)))
		case "/data/2.5/forecast":
			_, _ = w.Write([]byte(forecastList(40, 12)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRouter(t *testing.T, upstreamURL, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Server:         config.Server{Host: "127.0.0.1", Port: "0", ReadTimeout: 5},
		Upstream:       config.Upstream{APIKey: apiKey, URL: upstreamURL + "/data/2.5", Timeout: 5},
		Breaker:        config.Breaker{TimeInterval: 30, TimeTimeOut: 10, RepeatNumber: 5},
		AllowedOrigins: []string{"*"},
		HTTPLogsPath:   filepath.Join(t.TempDir(), "upstream.log"),
	}

	application := app.New(cfg, zerolog.Nop(), metricsSvc.NewMetrics("test"))
	return application.Init().Router
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(rec, req)
	return rec
}

func TestWeatherFlow_Paris(t *testing.T) {
	var calls atomic.Int32
	router := newRouter(t, newUpstream(t, &calls).URL, testAPIKey)

	rec := get(t, router, "/api/weather?city=Paris")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var report models.WeatherReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, "Paris", report.SearchedCity)
	assert.Equal(t, 15.0, report.Current.Temperature)
	assert.Equal(t, "01d", report.Current.Icon)
	assert.Equal(t, 10000, report.Current.Visibility)
	require.Len(t, report.Forecast, 5)
	for i, day := range report.Forecast {
		assert.Equal(t, 12.0, day.Temp)
		assert.Equal(t, fmt.Sprintf("2024-05-%02d 00:00:00", i+1), day.Date)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestWeatherFlow_Coordinates(t *testing.T) {
	var calls atomic.Int32
	router := newRouter(t, newUpstream(t, &calls).URL, testAPIKey)

	rec := get(t, router, "/api/weather?lat=10&lon=20")
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.WeatherReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Kaduna (Your Location)", report.SearchedCity)
}

func TestWeatherFlow_Errors(t *testing.T) {
	var calls atomic.Int32
	upstream := newUpstream(t, &calls)

	rec := get(t, newRouter(t, upstream.URL, testAPIKey), "/api/weather?city=Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Location not found"}`, rec.Body.String())

	rec = get(t, newRouter(t, upstream.URL, "wrong-key"), "/api/weather?city=Paris")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid API key"}`, rec.Body.String())

	before := calls.Load()
	rec = get(t, newRouter(t, upstream.URL, testAPIKey), "/api/weather")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, before, calls.Load())
}

func TestWeatherFlow_UpstreamDown(t *testing.T) {
	var calls atomic.Int32
	upstream := newUpstream(t, &calls)
	router := newRouter(t, upstream.URL, testAPIKey)
	upstream.Close()

	rec := get(t, router, "/api/weather?city=Paris")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error fetching weather data"}`, rec.Body.String())
}

func TestOperationalEndpoints(t *testing.T) {
	var calls atomic.Int32
	router := newRouter(t, newUpstream(t, &calls).URL, testAPIKey)

	rec := get(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","upstream_breaker":"closed"}`, rec.Body.String())

	_ = get(t, router, "/api/weather?city=Paris")
	rec = get(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_weather_requests_total{query_kind="city"} 1`)
	assert.Contains(t, rec.Body.String(), `weather_app_upstream_requests_total{endpoint="forecast",result="success"} 1`)
}
