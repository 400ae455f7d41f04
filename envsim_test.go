package envsim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhollow/envsim/config"
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/weather"
)

func newTestWorld(t *testing.T, dims grid.Dims) *SimulationWorld {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return New(dims, weather.TemperateForest, 7, cfg)
}

func TestNewInitializesEveryField(t *testing.T) {
	w := newTestWorld(t, grid.Dims{Width: 4, Height: 4, Depth: 4})
	assert.NotNil(t, w.Grid)
	assert.NotNil(t, w.Water)
	assert.NotNil(t, w.Fire)
	assert.NotNil(t, w.Smoke)
	assert.NotNil(t, w.Steam)
	assert.NotNil(t, w.Temperature)
	assert.NotNil(t, w.Wear)
	assert.NotNil(t, w.FloorDirt)
	assert.NotNil(t, w.Presence.Water)
	assert.NotEqual(t, w.ID.String(), "")
}

func TestTickAdvancesClockAndSettlesWater(t *testing.T) {
	dims := grid.Dims{Width: 3, Height: 3, Depth: 3}
	w := newTestWorld(t, dims)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			w.Grid.SetKind(x, y, 0, grid.KindDirt)
		}
	}
	w.Water.AddWater(1, 1, 1, 7)

	startTime := w.Clock.GameTime
	for i := 0; i < 50; i++ {
		w.Tick()
	}

	assert.Greater(t, w.Clock.GameTime, startTime)
	assert.True(t, w.Water.HasWater(1, 1, 1), "water should still be present somewhere after settling")
}

func TestLightningIgnitesFlammableGround(t *testing.T) {
	dims := grid.Dims{Width: 1, Height: 1, Depth: 2}
	w := newTestWorld(t, dims)
	w.Grid.SetKind(0, 0, 0, grid.KindDirt)
	w.Material.SetWallMaterial(0, 0, 0, grid.MatWood, true)
	w.Material.SetFloorMaterial(0, 0, 0, grid.MatWood)

	w.Weather.State.Type = weather.Thunderstorm
	for i := 0; i < 5000 && !w.Fire.HasFire(0, 0, 0); i++ {
		w.Weather.State.Type = weather.Thunderstorm
		w.Tick()
	}

	assert.True(t, w.Fire.HasFire(0, 0, 0) || len(w.EventLog.All()) > 0)
}

func TestSaveLoadRoundTripPreservesFieldState(t *testing.T) {
	dims := grid.Dims{Width: 2, Height: 2, Depth: 2}
	w := newTestWorld(t, dims)
	w.Grid.SetKind(0, 0, 0, grid.KindDirt)
	w.Water.AddWater(0, 0, 1, 4)
	w.Smoke.AddSmoke(1, 0, 1, 3)
	w.Steam.AddSteam(0, 1, 1, 2)
	w.Temperature.SetTemperature(1, 1, 1, 42)
	w.Wear.TrampleGround(0, 0, 1)

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))

	loaded, err := Load(&buf, weather.TemperateForest)
	require.NoError(t, err)

	assert.Equal(t, w.ID, loaded.ID)
	assert.Equal(t, grid.KindDirt, loaded.Grid.Kind(0, 0, 0))
	assert.Equal(t, w.Water.GetWaterLevel(0, 0, 1), loaded.Water.GetWaterLevel(0, 0, 1))
	assert.Equal(t, w.Smoke.GetSmokeLevel(1, 0, 1), loaded.Smoke.GetSmokeLevel(1, 0, 1))
	assert.Equal(t, w.Steam.GetSteamLevel(0, 1, 1), loaded.Steam.GetSteamLevel(0, 1, 1))
	assert.Equal(t, 42, loaded.Temperature.GetTemperature(1, 1, 1))
	assert.Equal(t, w.Wear.GetGroundWear(0, 0, 0), loaded.Wear.GetGroundWear(0, 0, 0))
}

func TestRebuildSimActivityCountsAfterLoadMatchesLiveCounts(t *testing.T) {
	dims := grid.Dims{Width: 2, Height: 2, Depth: 2}
	w := newTestWorld(t, dims)
	w.Water.AddWater(0, 0, 0, 5)
	w.Smoke.AddSmoke(1, 1, 1, 3)

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))
	loaded, err := Load(&buf, weather.TemperateForest)
	require.NoError(t, err)

	counts := loaded.RebuildSimActivityCounts()
	assert.Equal(t, loaded.Water.ActiveCells(), counts.WaterActiveCells)
	assert.Equal(t, loaded.Smoke.ActiveCells(), counts.SmokeActiveCells)
}

func TestResetTestStateReseedsRNG(t *testing.T) {
	w := newTestWorld(t, grid.Dims{Width: 1, Height: 1, Depth: 1})
	first := w.RNG.Chance(50)
	w.ResetTestState(7)
	second := w.RNG.Chance(50)
	assert.Equal(t, first, second)
}
