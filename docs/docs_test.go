package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestReadDoc_WeatherOperation(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Description string `json:"description"`
		} `json:"info"`
		Paths map[string]map[string]struct {
			Summary     string `json:"summary"`
			Description string `json:"description"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	op, ok := doc.Paths["/weather"]["get"]
	require.True(t, ok)
	assert.Equal(t, "Get current weather and forecast", op.Summary)
	assert.Equal(t, "Returns current conditions and a daily forecast for a city or a coordinate pair", op.Description)
	assert.Equal(t, "Pass-through proxy over OpenWeatherMap current weather and forecast endpoints.", doc.Info.Description)
}
