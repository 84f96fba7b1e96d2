package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

var (
	ErrGeolocationUnsupported = errors.New("geolocation is not supported")
	ErrGeolocationDenied      = errors.New("geolocation denied")
)

// Locator reports the device position.
type Locator interface {
	Locate(ctx context.Context) (models.Coord, error)
}

// StaticLocator reports a position fixed at startup.
type StaticLocator struct {
	coord *models.Coord
}

// NewStaticLocator reports lat/lon; with either missing it reports
// ErrGeolocationUnsupported.
func NewStaticLocator(lat, lon *float64) *StaticLocator {
	if lat == nil || lon == nil {
		return &StaticLocator{}
	}
	return &StaticLocator{coord: &models.Coord{Lat: *lat, Lon: *lon}}
}

func (s *StaticLocator) Locate(ctx context.Context) (models.Coord, error) {
	if s.coord == nil {
		return models.Coord{}, ErrGeolocationUnsupported
	}
	if err := ctx.Err(); err != nil {
		return models.Coord{}, fmt.Errorf("%w: %w", ErrGeolocationDenied, err)
	}
	if s.coord.Lat < -90 || s.coord.Lat > 90 || s.coord.Lon < -180 || s.coord.Lon > 180 {
		return models.Coord{}, fmt.Errorf("%w: position out of range", ErrGeolocationDenied)
	}
	return *s.coord, nil
}
