package temperature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhollow/envsim/grid"
)

func flatAmbient(v float64) AmbientFunc {
	return func(z int) float64 { return v }
}

func TestSetTemperatureClampsToRange(t *testing.T) {
	g := grid.New(grid.Dims{Width: 2, Height: 2, Depth: 2}, nil)
	mat := grid.NewMaterialOverlay(g)
	f := New(g, mat)

	f.SetTemperature(0, 0, 0, 1000)
	assert.Equal(t, TempMax, f.GetTemperature(0, 0, 0))
	f.SetTemperature(0, 0, 0, -1000)
	assert.Equal(t, TempMin, f.GetTemperature(0, 0, 0))
}

func TestHeatSourcePinsTemperature(t *testing.T) {
	g := grid.New(grid.Dims{Width: 2, Height: 2, Depth: 2}, nil)
	mat := grid.NewMaterialOverlay(g)
	f := New(g, mat)

	f.SetHeatSource(1, 1, 1, true)
	for i := 0; i < 10; i++ {
		f.Update(flatAmbient(0))
	}
	assert.Equal(t, DefaultHeatSourceTemp, f.GetTemperature(1, 1, 1))
}

func TestColdSourcePinsTemperature(t *testing.T) {
	g := grid.New(grid.Dims{Width: 2, Height: 2, Depth: 2}, nil)
	mat := grid.NewMaterialOverlay(g)
	f := New(g, mat)

	f.SetColdSource(0, 0, 0, true)
	for i := 0; i < 10; i++ {
		f.Update(flatAmbient(20))
	}
	assert.Equal(t, DefaultColdSourceTemp, f.GetTemperature(0, 0, 0))
}

func TestDecaysTowardAmbientWithoutSources(t *testing.T) {
	g := grid.New(grid.Dims{Width: 3, Height: 3, Depth: 3}, nil)
	mat := grid.NewMaterialOverlay(g)
	f := New(g, mat)

	f.SetTemperature(1, 1, 1, 50)
	for i := 0; i < 500; i++ {
		f.Update(flatAmbient(0))
	}
	assert.InDelta(t, 0, f.GetTemperature(1, 1, 1), 1)
}

func TestStoneInsulatesDiffusionMoreThanAir(t *testing.T) {
	dims := grid.Dims{Width: 5, Height: 1, Depth: 1}

	runWithWall := func(mat grid.Material) int {
		g := grid.New(dims, nil)
		overlay := grid.NewMaterialOverlay(g)
		if mat != grid.MatNone {
			for x := 0; x < dims.Width; x++ {
				overlay.SetWallMaterial(x, 0, 0, mat, true)
			}
		}
		f := New(g, overlay)
		f.SetHeatSource(0, 0, 0, true)
		for i := 0; i < 30; i++ {
			f.Update(flatAmbient(0))
		}
		return f.GetTemperature(4, 0, 0)
	}

	airReach := runWithWall(grid.MatNone)
	stoneReach := runWithWall(grid.MatStone)
	assert.Greater(t, airReach, stoneReach)
}

func TestApplyFireHeatRaisesButNeverJumpsInstantly(t *testing.T) {
	g := grid.New(grid.Dims{Width: 1, Height: 1, Depth: 1}, nil)
	mat := grid.NewMaterialOverlay(g)
	f := New(g, mat)

	f.ApplyFireHeat(0, 0, 0, 7)
	first := f.GetTemperature(0, 0, 0)
	require.Greater(t, first, 0)
	target := FireMinTemp + 7*FireStepPerLevel
	assert.Less(t, first, target)
}

func TestRebuildCountsMatchesDirectState(t *testing.T) {
	g := grid.New(grid.Dims{Width: 2, Height: 2, Depth: 2}, nil)
	mat := grid.NewMaterialOverlay(g)
	f := New(g, mat)
	f.SetHeatSource(0, 0, 0, true)
	f.SetColdSource(1, 1, 1, true)

	before := f.SourceCount()
	f.RebuildCounts()
	assert.Equal(t, before, f.SourceCount())
}

func TestOutOfBoundsIsSilent(t *testing.T) {
	g := grid.New(grid.Dims{Width: 2, Height: 2, Depth: 2}, nil)
	mat := grid.NewMaterialOverlay(g)
	f := New(g, mat)
	f.SetTemperature(99, 99, 99, 50)
	assert.Equal(t, 0, f.GetTemperature(99, 99, 99))
}
