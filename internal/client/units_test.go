package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-forecast-proxy/internal/client"
)

func TestUnit_Convert(t *testing.T) {
	tests := []struct {
		celsius    float64
		celsiusOut int
		fahrenOut  int
	}{
		{celsius: 15, celsiusOut: 15, fahrenOut: 59},
		{celsius: 15.5, celsiusOut: 16, fahrenOut: 60},
		{celsius: 0, celsiusOut: 0, fahrenOut: 32},
		{celsius: -2.5, celsiusOut: -2, fahrenOut: 28},
		{celsius: -40, celsiusOut: -40, fahrenOut: -40},
		{celsius: 21.3, celsiusOut: 21, fahrenOut: 70},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.celsiusOut, client.Celsius.Convert(tt.celsius), "C(%v)", tt.celsius)
		assert.Equal(t, tt.fahrenOut, client.Fahrenheit.Convert(tt.celsius), "F(%v)", tt.celsius)
	}
}

func TestUnit_ToggleDoesNotCompound(t *testing.T) {
	const stored = 15.5
	u := client.Celsius
	for range 6 {
		u = u.Other()
	}
	assert.Equal(t, client.Celsius, u)
	assert.Equal(t, 16, u.Convert(stored))
	assert.Equal(t, 60, u.Other().Convert(stored))
}

func TestParseUnit(t *testing.T) {
	u, err := client.ParseUnit("F")
	require.NoError(t, err)
	assert.Equal(t, client.Fahrenheit, u)

	u, err = client.ParseUnit(" celsius ")
	require.NoError(t, err)
	assert.Equal(t, client.Celsius, u)

	_, err = client.ParseUnit("kelvin")
	assert.Error(t, err)
}

func TestUnit_Format(t *testing.T) {
	assert.Equal(t, "15°C", client.Celsius.Format(15.2))
	assert.Equal(t, "59°F", client.Fahrenheit.Format(15))
}
