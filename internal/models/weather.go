package models

import "strings"

// Coord is a geographic coordinate in decimal degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationQuery selects a place either by name or by coordinate.
// Exactly one of City and Coord is set.
type LocationQuery struct {
	City  string
	Coord *Coord
}

func CityQuery(city string) LocationQuery {
	return LocationQuery{City: city}
}

func CoordQuery(lat, lon float64) LocationQuery {
	return LocationQuery{Coord: &Coord{Lat: lat, Lon: lon}}
}

// ByName reports whether the query uses the place-name form.
func (q LocationQuery) ByName() bool {
	return strings.TrimSpace(q.City) != ""
}

// Valid reports whether exactly one form is present.
func (q LocationQuery) Valid() bool {
	return q.ByName() != (q.Coord != nil)
}

type CurrentConditions struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    int     `json:"pressure"`
	Visibility  int     `json:"visibility"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Coord       Coord   `json:"coord"`
}

type ForecastDay struct {
	Date        string  `json:"date"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// WeatherReport is the aggregated answer for one query.
type WeatherReport struct {
	Current      CurrentConditions `json:"current"`
	Forecast     []ForecastDay     `json:"forecast"`
	SearchedCity string            `json:"searchedCity"`
}

// ErrorResponse is the body of every non-200 answer of the proxy.
type ErrorResponse struct {
	Error string `json:"error"`
}
