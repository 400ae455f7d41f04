package fire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
	"github.com/duskhollow/envsim/surface"
)

type noopHeatSink struct{ calls []int }

func (h *noopHeatSink) ApplyFireHeat(x, y, z, level int) { h.calls = append(h.calls, level) }

type noopSmokeSink struct{ calls int }

func (s *noopSmokeSink) GenerateSmokeFromFire(x, y, z, level, wetness int) { s.calls++ }

func noWater(x, y, z int) bool { return false }

type mockWearSink struct{ wear map[[3]int]int }

func newMockWearSink() *mockWearSink { return &mockWearSink{wear: map[[3]int]int{}} }

func (s *mockWearSink) SetGroundWear(x, y, z, wear int) { s.wear[[3]int{x, y, z}] = wear }

func newField(dims grid.Dims) (*Field, *grid.Grid) {
	g := grid.New(dims, nil)
	mat := grid.NewMaterialOverlay(g)
	return New(g, mat), g
}

func TestIgniteCellRequiresFuelAndOpenAbove(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 2})
	g.SetKind(0, 0, 0, grid.KindRock) // no fuel
	f.IgniteCell(0, 0, 0)
	assert.False(t, f.HasFire(0, 0, 0))

	g.SetKind(0, 0, 0, grid.KindSapling)
	f.IgniteCell(0, 0, 0)
	assert.True(t, f.HasFire(0, 0, 0))
	assert.Equal(t, MaxLevel, f.GetFireLevel(0, 0, 0))
}

func TestIgniteCellBlockedByBurnedFlag(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	g.SetFlag(0, 0, 0, grid.FlagBurned)
	f.IgniteCell(0, 0, 0)
	assert.False(t, f.HasFire(0, 0, 0))
}

func TestFuelExhaustionBurnsOutAndTransformsKind(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	f.IgniteCell(0, 0, 0)
	require.True(t, f.HasFire(0, 0, 0))

	r := rng.New(1)
	heat := &noopHeatSink{}
	smoke := &noopSmokeSink{}
	for i := 0; i < int(255)+10; i++ {
		f.Update(r, FuelInterval, noWater, nil, heat, smoke, nil)
	}

	assert.False(t, f.HasFire(0, 0, 0))
	assert.Equal(t, grid.KindAir, g.Kind(0, 0, 0))
	assert.True(t, g.HasFlag(0, 0, 0, grid.FlagBurned))
}

func TestWaterExtinguishesFire(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	f.IgniteCell(0, 0, 0)

	r := rng.New(1)
	heat := &noopHeatSink{}
	smoke := &noopSmokeSink{}
	hasWater := func(x, y, z int) bool { return true }
	f.Update(r, SpreadInterval, hasWater, nil, heat, smoke, nil)

	assert.False(t, f.HasFire(0, 0, 0))
}

func TestDeepSnowExtinguishesFire(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	f.IgniteCell(0, 0, 0)

	r := rng.New(1)
	heat := &noopHeatSink{}
	smoke := &noopSmokeSink{}
	snow := func(x, y int) int { return 2 }
	f.Update(r, SpreadInterval, noWater, snow, heat, smoke, nil)

	assert.False(t, f.HasFire(0, 0, 0))
}

func TestFireSourceStaysLitAndNeverConsumesFuel(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	heat := &noopHeatSink{}
	f.SetFireSource(0, 0, 0, true, heat)

	r := rng.New(1)
	smoke := &noopSmokeSink{}
	for i := 0; i < 2000; i++ {
		f.Update(r, FuelInterval, noWater, nil, heat, smoke, nil)
	}

	assert.True(t, f.HasFire(0, 0, 0))
	assert.Equal(t, MaxLevel, f.GetFireLevel(0, 0, 0))
	assert.Equal(t, uint8(255), f.cell[f.index(0, 0, 0)].fuel)
	assert.Greater(t, smoke.calls, 0)
}

func TestSpreadIgnitesAdjacentFuel(t *testing.T) {
	f, g := newField(grid.Dims{Width: 3, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	g.SetKind(1, 0, 0, grid.KindSapling)
	g.SetKind(2, 0, 0, grid.KindSapling)
	f.IgniteCell(0, 0, 0)

	r := rng.New(7)
	heat := &noopHeatSink{}
	smoke := &noopSmokeSink{}
	spread := false
	for i := 0; i < 500; i++ {
		f.Update(r, SpreadInterval, noWater, nil, heat, smoke, nil)
		if f.HasFire(1, 0, 0) || f.HasFire(2, 0, 0) {
			spread = true
			break
		}
	}
	assert.True(t, spread, "fire should eventually spread to adjacent fuel")
}

func TestBurnoutIntoDirtSetsWearToMax(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindPeat) // burnsInto KindDirt
	f.IgniteCell(0, 0, 0)
	require.True(t, f.HasFire(0, 0, 0))

	r := rng.New(1)
	heat := &noopHeatSink{}
	smoke := &noopSmokeSink{}
	wear := newMockWearSink()
	for i := 0; i < 30; i++ {
		f.Update(r, FuelInterval, noWater, nil, heat, smoke, wear)
	}

	assert.Equal(t, grid.KindDirt, g.Kind(0, 0, 0))
	assert.Equal(t, surface.WearMax, wear.wear[[3]int{0, 0, 0}])
}

func TestRebuildCountsMatchesActiveCells(t *testing.T) {
	f, g := newField(grid.Dims{Width: 2, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	f.IgniteCell(0, 0, 0)
	before := f.ActiveCells()
	f.RebuildCounts()
	assert.Equal(t, before, f.ActiveCells())
}

func TestClearResetsField(t *testing.T) {
	f, g := newField(grid.Dims{Width: 1, Height: 1, Depth: 1})
	g.SetKind(0, 0, 0, grid.KindSapling)
	f.IgniteCell(0, 0, 0)
	f.Clear()
	assert.Equal(t, 0, f.ActiveCells())
	assert.False(t, f.HasFire(0, 0, 0))
}
