package weather_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/services/weather"
)

var fastBreakerCfg = weather.BreakerConfig{
	TimeInterval: time.Minute,
	TimeTimeOut:  50 * time.Millisecond,
	RepeatNumber: 1,
}

var paris = models.CityQuery("Paris")

// flakyUpstream answers after a short delay. While down, current fails and
// forecast either fails too or, with hangForecast, waits for cancellation.
type flakyUpstream struct {
	down         atomic.Bool
	hangForecast atomic.Bool
	delay        time.Duration
}

func (f *flakyUpstream) FetchCurrent(ctx context.Context, _ models.LocationQuery) (weather.CurrentResponse, error) {
	if err := f.wait(ctx); err != nil {
		return weather.CurrentResponse{}, err
	}
	if f.down.Load() {
		return weather.CurrentResponse{}, fmt.Errorf("%w: weather endpoint returned status 503", weather.ErrUpstreamUnavailable)
	}
	return currentFixture("Paris", 15), nil
}

func (f *flakyUpstream) FetchForecast(ctx context.Context, _ models.LocationQuery) (weather.ForecastResponse, error) {
	if f.down.Load() && f.hangForecast.Load() {
		<-ctx.Done()
		return weather.ForecastResponse{}, fmt.Errorf("%w: %w", weather.ErrUpstreamUnavailable, ctx.Err())
	}
	if err := f.wait(ctx); err != nil {
		return weather.ForecastResponse{}, err
	}
	if f.down.Load() {
		return weather.ForecastResponse{}, fmt.Errorf("%w: forecast endpoint returned status 503", weather.ErrUpstreamUnavailable)
	}
	return forecastFixture(40, 12), nil
}

func (f *flakyUpstream) wait(ctx context.Context) error {
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", weather.ErrUpstreamUnavailable, ctx.Err())
	}
}

func tripBoth(t *testing.T, bc *weather.BreakerClient) {
	t.Helper()
	_, err := bc.FetchCurrent(context.Background(), paris)
	require.Error(t, err)
	_, err = bc.FetchForecast(context.Background(), paris)
	require.Error(t, err)
	require.Equal(t, gobreaker.StateOpen, bc.EndpointState("weather"))
	require.Equal(t, gobreaker.StateOpen, bc.EndpointState("forecast"))
}

func TestBreakerClient_HalfOpenTrialServesAggregatedFetch(t *testing.T) {
	upstream := &flakyUpstream{delay: 20 * time.Millisecond}
	upstream.down.Store(true)
	bc := weather.NewBreakerClient(breakerName, fastBreakerCfg, upstream)
	svc := weather.NewService(zerolog.Nop(), bc)

	tripBoth(t, bc)

	time.Sleep(70 * time.Millisecond)
	upstream.down.Store(false)
	assert.Equal(t, gobreaker.StateHalfOpen, bc.State())

	report, err := svc.FetchWeather(context.Background(), paris)
	require.NoError(t, err)
	assert.Equal(t, "Paris", report.SearchedCity)
	assert.Len(t, report.Forecast, 5)

	assert.Equal(t, gobreaker.StateClosed, bc.EndpointState("weather"))
	assert.Equal(t, gobreaker.StateClosed, bc.EndpointState("forecast"))
}

func TestBreakerClient_CancelledHalfOpenTrialReopens(t *testing.T) {
	upstream := &flakyUpstream{delay: 20 * time.Millisecond}
	upstream.down.Store(true)
	bc := weather.NewBreakerClient(breakerName, fastBreakerCfg, upstream)
	svc := weather.NewService(zerolog.Nop(), bc)

	tripBoth(t, bc)

	time.Sleep(70 * time.Millisecond)
	upstream.hangForecast.Store(true)

	_, err := svc.FetchWeather(context.Background(), paris)
	require.ErrorIs(t, err, weather.ErrUpstreamUnavailable)

	assert.Equal(t, gobreaker.StateOpen, bc.EndpointState("weather"))
	assert.Equal(t, gobreaker.StateOpen, bc.EndpointState("forecast"))
	assert.Equal(t, gobreaker.StateOpen, bc.State())
}

func TestBreakerClient_CancellationWhileClosedDoesNotTrip(t *testing.T) {
	upstream := &flakyUpstream{delay: time.Second}
	bc := weather.NewBreakerClient(breakerName, fastBreakerCfg, upstream)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := bc.FetchForecast(ctx, paris)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, bc.EndpointState("forecast"))
}

func TestBreakerClient_CancelledRequestSkipsUpstream(t *testing.T) {
	wrapped := &mockUpstream{}
	bc := weather.NewBreakerClient(breakerName, fastBreakerCfg, wrapped)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bc.FetchCurrent(ctx, paris)
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	wrapped.AssertNotCalled(t, "FetchCurrent", mock.Anything, mock.Anything)
	assert.Equal(t, gobreaker.StateClosed, bc.State())
}
