package weather_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/weather"
)

type recordingCollector struct {
	latencies []string
	counters  [][]string
}

func (r *recordingCollector) ObserveLatency(operation string, _ time.Duration) {
	r.latencies = append(r.latencies, operation)
}

func (r *recordingCollector) IncrementCounter(metric string, labels ...string) {
	r.counters = append(r.counters, append([]string{metric}, labels...))
}

func TestMetricsClient_RecordsOutcome(t *testing.T) {
	wrapped := &mockUpstream{}
	wrapped.On("FetchCurrent", mock.Anything, lviv).Return(currentFixture("Lviv", 1), nil).Once()
	wrapped.On("FetchForecast", mock.Anything, lviv).
		Return(nil, fmt.Errorf("%w: status 401", weather.ErrInvalidCredentials)).Once()

	rec := &recordingCollector{}
	mc := weather.NewMetricsClient(wrapped, rec)

	_, err := mc.FetchCurrent(context.Background(), lviv)
	assert.NoError(t, err)
	_, err = mc.FetchForecast(context.Background(), lviv)
	assert.ErrorIs(t, err, weather.ErrInvalidCredentials)

	assert.Equal(t, []string{"weather", "forecast"}, rec.latencies)
	assert.Equal(t, [][]string{{"weather", "success"}, {"forecast", "unauthorized"}}, rec.counters)
	wrapped.AssertExpectations(t)
}
