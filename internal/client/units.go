package client

import (
	"fmt"
	"math"
	"strings"
)

// Unit is the display temperature unit. Reports always carry Celsius.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ParseUnit accepts "c", "f" or the full unit name, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown unit %q", s)
	}
}

// Convert turns a Celsius value into a whole number in u.
func (u Unit) Convert(celsius float64) int {
	if u == Fahrenheit {
		return roundHalfUp(celsius*9/5 + 32)
	}
	return roundHalfUp(celsius)
}

func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// Other is the unit a toggle switches to.
func (u Unit) Other() Unit {
	if u == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}

// Format renders a Celsius value as e.g. "15°C".
func (u Unit) Format(celsius float64) string {
	return fmt.Sprintf("%d°%s", u.Convert(celsius), u.Symbol())
}

// halves round towards +Inf, so -2.5 becomes -2
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
