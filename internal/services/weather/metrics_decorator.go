package weather

import (
	"context"
	"time"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

type metricsCollector interface {
	ObserveLatency(operation string, duration time.Duration)
	IncrementCounter(metric string, labels ...string)
}

// MetricsClient records latency and outcome of every upstream call.
type MetricsClient struct {
	next      upstreamClient
	collector metricsCollector
}

func NewMetricsClient(next upstreamClient, collector metricsCollector) *MetricsClient {
	return &MetricsClient{next: next, collector: collector}
}

func (m *MetricsClient) FetchCurrent(ctx context.Context, q models.LocationQuery) (CurrentResponse, error) {
	start := time.Now()
	res, err := m.next.FetchCurrent(ctx, q)
	m.observe(currentEndpoint, time.Since(start), err)
	return res, err
}

func (m *MetricsClient) FetchForecast(ctx context.Context, q models.LocationQuery) (ForecastResponse, error) {
	start := time.Now()
	res, err := m.next.FetchForecast(ctx, q)
	m.observe(forecastEndpoint, time.Since(start), err)
	return res, err
}

func (m *MetricsClient) observe(endpoint string, d time.Duration, err error) {
	m.collector.ObserveLatency(endpoint, d)
	result := "success"
	switch Classify(err) {
	case nil:
	case ErrLocationNotFound:
		result = "not_found"
	case ErrInvalidCredentials:
		result = "unauthorized"
	default:
		result = "unavailable"
	}
	m.collector.IncrementCounter(endpoint, result)
}
