package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/history"
	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

const (
	msgFetchFailed            = "Failed to fetch weather data"
	msgGeolocationPrefix      = "Geolocation error: "
	msgGeolocationUnsupported = "Geolocation is not supported by your device"
)

var (
	// ErrRequestInFlight rejects a fetch while another one is running.
	ErrRequestInFlight = errors.New("weather request already in flight")
	ErrHistoryIndex    = errors.New("no such history entry")
)

// Phase of the view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

type weatherAPI interface {
	GetWeather(ctx context.Context, q models.LocationQuery) (models.WeatherReport, error)
}

type historyStore interface {
	Load(ctx context.Context) []string
	Save(ctx context.Context, list []string) error
}

// State is a point-in-time copy of the view.
type State struct {
	Phase Phase
	// City is the search field contents.
	City string
	// Report is the last successful report; it survives later failures.
	Report  *models.WeatherReport
	Error   string
	Unit    Unit
	History []string
	Coord   *models.Coord
}

// Controller owns the view state of the interactive client.
type Controller struct {
	api     weatherAPI
	locator Locator
	store   historyStore
	log     zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	state    State
}

// NewController loads the persisted history and starts Idle in Celsius.
func NewController(
	ctx context.Context,
	api weatherAPI,
	locator Locator,
	store historyStore,
	logger zerolog.Logger,
) *Controller {
	return &Controller{
		api:     api,
		locator: locator,
		store:   store,
		log:     logger.With().Str("component", "Controller").Logger(),
		state: State{
			Phase:   PhaseIdle,
			Unit:    Celsius,
			History: store.Load(ctx),
		},
	}
}

// SetCity edits the search field without fetching.
func (c *Controller) SetCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.City = city
}

// SubmitCity fetches by name, or by the known coordinate when name is blank.
// Blank input with no known coordinate is a no-op.
func (c *Controller) SubmitCity(ctx context.Context, name string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	c.state.City = name

	var q models.LocationQuery
	switch {
	case strings.TrimSpace(name) != "":
		q = models.CityQuery(strings.TrimSpace(name))
	case c.state.Coord != nil:
		q = models.CoordQuery(c.state.Coord.Lat, c.state.Coord.Lon)
	default:
		c.mu.Unlock()
		return nil
	}
	c.begin()
	c.mu.Unlock()

	return c.fetch(ctx, q)
}

// SubmitLocation asks the locator for a position, clears the search field
// and fetches by coordinate.
func (c *Controller) SubmitLocation(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	coord, err := c.locator.Locate(ctx)

	c.mu.Lock()
	if err != nil {
		c.inFlight = false
		c.state.Phase = PhaseError
		c.state.Error = geolocationMessage(err)
		c.mu.Unlock()
		c.log.Warn().Err(err).Ctx(ctx).Msg("geolocation failed")
		return err
	}
	c.state.Coord = &coord
	c.state.City = ""
	c.state.Phase = PhaseLoading
	c.state.Error = ""
	c.mu.Unlock()

	return c.fetch(ctx, models.CoordQuery(coord.Lat, coord.Lon))
}

// SelectHistory searches for the i-th history entry, bypassing the field.
func (c *Controller) SelectHistory(ctx context.Context, i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.state.History) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrHistoryIndex, i+1)
	}
	city := c.state.History[i]
	c.mu.Unlock()

	return c.SubmitCity(ctx, city)
}

func (c *Controller) SetUnit(u Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Unit = u
}

func (c *Controller) ToggleUnit() Unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Unit = c.state.Unit.Other()
	return c.state.Unit
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.History = append([]string(nil), c.state.History...)
	if c.state.Report != nil {
		r := *c.state.Report
		r.Forecast = append([]models.ForecastDay(nil), c.state.Report.Forecast...)
		s.Report = &r
	}
	if c.state.Coord != nil {
		coord := *c.state.Coord
		s.Coord = &coord
	}
	return s
}

// begin must be called with mu held.
func (c *Controller) begin() {
	c.inFlight = true
	c.state.Phase = PhaseLoading
	c.state.Error = ""
}

func (c *Controller) fetch(ctx context.Context, q models.LocationQuery) error {
	report, err := c.api.GetWeather(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		c.state.Phase = PhaseError
		c.state.Error = fetchMessage(err)
		c.log.Error().Err(err).Ctx(ctx).Bool("by_name", q.ByName()).Msg("weather fetch failed")
		return err
	}

	c.state.Phase = PhaseLoaded
	c.state.Report = &report
	coord := report.Current.Coord
	c.state.Coord = &coord

	if q.ByName() {
		if next, changed := history.Remember(c.state.History, q.City); changed {
			c.state.History = next
			if err := c.store.Save(ctx, next); err != nil {
				c.log.Error().Err(err).Ctx(ctx).Msg("failed to persist search history")
			}
		}
	}

	c.log.Info().Ctx(ctx).Str("searched_city", report.SearchedCity).Msg("weather loaded")
	return nil
}

func fetchMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgFetchFailed
}

func geolocationMessage(err error) string {
	if errors.Is(err, ErrGeolocationUnsupported) {
		return msgGeolocationUnsupported
	}
	return msgGeolocationPrefix + err.Error()
}
