package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParsesEmbeddedYAML(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 1200.0, c.DayLengthSeconds)
	assert.Equal(t, 30, c.DaysPerSeason)
	assert.Equal(t, 4096, c.Water.MaxUpdatesPerTick)
	assert.Equal(t, 100, c.Temperature.HeatSourceTempC)
	assert.Equal(t, -10, c.Temperature.ColdSourceTempC)
	assert.Equal(t, 3000, c.Wear.Max)
	assert.False(t, c.Wear.SaplingRegrowthEnabled)
}

func TestLoadWithNoOverrideMatchesDefault(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)
	loaded, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, def, loaded)
}

func TestLoadOverlaysOnlyGivenFields(t *testing.T) {
	override := []byte(`
wear:
  sapling_regrowth_enabled: true
`)
	c, err := Load(override)
	require.NoError(t, err)
	assert.True(t, c.Wear.SaplingRegrowthEnabled)
	// untouched fields keep their defaults
	assert.Equal(t, 3000, c.Wear.Max)
	assert.Equal(t, 1200.0, c.DayLengthSeconds)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load([]byte("not: [valid: yaml"))
	assert.Error(t, err)
}
