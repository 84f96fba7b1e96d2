package client

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/models"
)

const (
	forecastDateLayout = "2006-01-02 15:04:05"
	headerDateLayout   = "Monday, January 2, 2006"
)

var iconGlyphs = map[string]string{
	"01": "☀",
	"02": "☁",
	"03": "☁",
	"04": "☁",
	"09": "🌧",
	"10": "🌧",
	"11": "⛈",
	"13": "❄",
	"50": "☁",
}

// IconGlyph maps an OpenWeatherMap icon code to a condition glyph by its
// first two characters. Unknown families render as clear sky.
func IconGlyph(code string) string {
	if len(code) >= 2 {
		if g, ok := iconGlyphs[code[:2]]; ok {
			return g
		}
	}
	return iconGlyphs["01"]
}

// Weekday labels a forecast date with its short weekday name.
func Weekday(date string) string {
	t, err := time.Parse(forecastDateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon")
}

// VisibilityKm converts metres to kilometres without rounding.
func VisibilityKm(metres int) string {
	return strconv.FormatFloat(float64(metres)/1000, 'f', -1, 64)
}

// Render writes the view for s to w. now dates the header.
func Render(w io.Writer, s State, now time.Time) {
	fmt.Fprintln(w, "Weather Forecast")
	if s.Report != nil {
		fmt.Fprintln(w, now.Format(headerDateLayout))
	}
	fmt.Fprintf(w, "[unit: °%s]\n", s.Unit.Symbol())

	if s.Phase == PhaseLoading {
		fmt.Fprintln(w, "Loading…")
	}
	if s.Error != "" {
		fmt.Fprintf(w, "! %s\n", s.Error)
	}
	if s.Report == nil {
		return
	}

	renderReport(w, *s.Report, s.Unit)
	RenderHistory(w, s.History)
}

// RenderHistory writes the numbered search history.
func RenderHistory(w io.Writer, list []string) {
	fmt.Fprintln(w, "\nSearch History")
	if len(list) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for i, city := range list {
		fmt.Fprintf(w, "  %d. %s\n", i+1, city)
	}
}

func renderReport(w io.Writer, r models.WeatherReport, u Unit) {
	cur := r.Current
	title := cases.Title(language.English)

	fmt.Fprintf(w, "\n%s\n", r.SearchedCity)
	fmt.Fprintf(w, "%s %s\n", IconGlyph(cur.Icon), title.String(cur.Description))
	fmt.Fprintf(w, "%s  (feels like: %s)\n", u.Format(cur.Temperature), u.Format(cur.FeelsLike))

	fmt.Fprintln(w, "\n5-Day Forecast")
	for _, day := range r.Forecast {
		fmt.Fprintf(w, "  %-4s %s  %s\n", Weekday(day.Date), IconGlyph(day.Icon), u.Format(day.Temp))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Humidity:   %d%%\n", cur.Humidity)
	fmt.Fprintf(w, "Wind Speed: %s m/s\n", strconv.FormatFloat(cur.WindSpeed, 'f', -1, 64))
	fmt.Fprintf(w, "Pressure:   %d hPa\n", cur.Pressure)
	fmt.Fprintf(w, "Visibility: %s km\n", VisibilityKm(cur.Visibility))
}

// helpText lists the REPL commands.
var helpText = strings.TrimSpace(`
Commands:
  search <city>   fetch weather for a city (blank repeats the last location)
  locate          fetch weather for the device location
  unit <c|f>      display temperatures in Celsius or Fahrenheit
  toggle          switch between °C and °F
  history         list recent searches
  pick <n>        search the n-th history entry
  show            redraw the current view
  help            show this help
  quit            exit
Any other input is searched as a city name.`)
