package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

type BreakerConfig struct {
	TimeInterval time.Duration
	TimeTimeOut  time.Duration
	RepeatNumber uint32
}

// BreakerClient guards each upstream endpoint with its own circuit breaker,
// so a half-open trial of one endpoint never rejects its sibling call.
// Answers that blame the caller (unknown location, bad key) count as
// successes. A cancelled call counts as a success only when it was admitted
// by a closed breaker; a cancelled half-open trial proves nothing and
// counts as a failure.
type BreakerClient struct {
	name     string
	current  *gobreaker.TwoStepCircuitBreaker
	forecast *gobreaker.TwoStepCircuitBreaker
	wrapped  upstreamClient
}

func NewBreakerClient(name string, cfg BreakerConfig, wrapped upstreamClient) *BreakerClient {
	settings := func(endpoint string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name + "/" + endpoint,
			MaxRequests: 1,
			Interval:    cfg.TimeInterval,
			Timeout:     cfg.TimeTimeOut,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.RepeatNumber
			},
		}
	}
	return &BreakerClient{
		name:     name,
		current:  gobreaker.NewTwoStepCircuitBreaker(settings(currentEndpoint)),
		forecast: gobreaker.NewTwoStepCircuitBreaker(settings(forecastEndpoint)),
		wrapped:  wrapped,
	}
}

func (b *BreakerClient) FetchCurrent(ctx context.Context, q models.LocationQuery) (CurrentResponse, error) {
	return guarded(ctx, b, b.current, func(ctx context.Context) (CurrentResponse, error) {
		return b.wrapped.FetchCurrent(ctx, q)
	})
}

func (b *BreakerClient) FetchForecast(ctx context.Context, q models.LocationQuery) (ForecastResponse, error) {
	return guarded(ctx, b, b.forecast, func(ctx context.Context) (ForecastResponse, error) {
		return b.wrapped.FetchForecast(ctx, q)
	})
}

// State is the worst state across the endpoint breakers.
func (b *BreakerClient) State() gobreaker.State {
	cur, fc := b.current.State(), b.forecast.State()
	switch {
	case cur == gobreaker.StateOpen || fc == gobreaker.StateOpen:
		return gobreaker.StateOpen
	case cur == gobreaker.StateHalfOpen || fc == gobreaker.StateHalfOpen:
		return gobreaker.StateHalfOpen
	default:
		return gobreaker.StateClosed
	}
}

// EndpointState reports the breaker state of one upstream endpoint
// ("weather" or "forecast").
func (b *BreakerClient) EndpointState(endpoint string) gobreaker.State {
	if endpoint == forecastEndpoint {
		return b.forecast.State()
	}
	return b.current.State()
}

func guarded[T any](
	ctx context.Context,
	b *BreakerClient,
	cb *gobreaker.TwoStepCircuitBreaker,
	call func(context.Context) (T, error),
) (T, error) {
	var zero T

	// a request already cancelled never reaches the breaker
	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("%w: %s unavailable: %w", ErrUpstreamUnavailable, b.name, err)
	}

	admittedClosed := cb.State() == gobreaker.StateClosed
	done, err := cb.Allow()
	if err != nil {
		return zero, b.wrap(err)
	}

	res, err := call(ctx)
	done(countsAsSuccess(err, admittedClosed))
	if err != nil {
		return zero, b.wrap(err)
	}
	return res, nil
}

func countsAsSuccess(err error, admittedClosed bool) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrLocationNotFound), errors.Is(err, ErrInvalidCredentials):
		return true
	case errors.Is(err, context.Canceled):
		return admittedClosed
	default:
		return false
	}
}

func (b *BreakerClient) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s unavailable: %w", ErrUpstreamUnavailable, b.name, err)
	}
	return fmt.Errorf("%s unavailable: %w", b.name, err)
}
