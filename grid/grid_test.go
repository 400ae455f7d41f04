package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridAllAir(t *testing.T) {
	g := New(Dims{Width: 4, Height: 4, Depth: 4}, nil)
	for z := 0; z < 4; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				require.Equal(t, KindAir, g.Kind(x, y, z))
			}
		}
	}
}

func TestOutOfBoundsReadsAreSafe(t *testing.T) {
	g := New(Dims{Width: 2, Height: 2, Depth: 2}, nil)
	assert.Equal(t, KindAir, g.Kind(-1, 0, 0))
	assert.Equal(t, KindAir, g.Kind(0, 0, 99))
	assert.False(t, g.HasFlag(5, 5, 5, FlagBurned))
	assert.Equal(t, SurfaceBare, g.Surface(5, 5, 5))
	assert.Equal(t, 0, g.Wetness(5, 5, 5))
}

func TestOutOfBoundsWritesAreNoops(t *testing.T) {
	g := New(Dims{Width: 2, Height: 2, Depth: 2}, nil)
	g.SetKind(99, 99, 99, KindRock)
	g.SetFlag(99, 99, 99, FlagBurned)
	g.SetSurface(99, 99, 99, SurfaceTrampled)
	// none of these should have panicked; nothing else to assert.
}

func TestFlagsRoundTrip(t *testing.T) {
	g := New(Dims{Width: 3, Height: 3, Depth: 3}, nil)
	g.SetFlag(1, 1, 1, FlagHasFloor)
	g.SetFlag(1, 1, 1, FlagBurned)
	assert.True(t, g.HasFlag(1, 1, 1, FlagHasFloor))
	assert.True(t, g.HasFlag(1, 1, 1, FlagBurned))
	assert.False(t, g.HasFlag(1, 1, 1, FlagExplored))
	g.ClearFlag(1, 1, 1, FlagHasFloor)
	assert.False(t, g.HasFlag(1, 1, 1, FlagHasFloor))
	assert.True(t, g.HasFlag(1, 1, 1, FlagBurned))
}

func TestSurfaceAndWetnessPackingDoNotCollide(t *testing.T) {
	g := New(Dims{Width: 2, Height: 2, Depth: 2}, nil)
	g.SetFlag(0, 0, 0, FlagHasFloor)
	g.SetSurface(0, 0, 0, SurfaceTrampled)
	g.SetWetness(0, 0, 0, 3)
	assert.True(t, g.HasFlag(0, 0, 0, FlagHasFloor))
	assert.Equal(t, SurfaceTrampled, g.Surface(0, 0, 0))
	assert.Equal(t, 3, g.Wetness(0, 0, 0))

	g.SetSurface(0, 0, 0, SurfaceGrass)
	assert.True(t, g.HasFlag(0, 0, 0, FlagHasFloor))
	assert.Equal(t, 3, g.Wetness(0, 0, 0))
}

func TestWetnessClamped(t *testing.T) {
	g := New(Dims{Width: 1, Height: 1, Depth: 1}, nil)
	g.SetWetness(0, 0, 0, 99)
	assert.Equal(t, 3, g.Wetness(0, 0, 0))
	g.SetWetness(0, 0, 0, -5)
	assert.Equal(t, 0, g.Wetness(0, 0, 0))
}

func TestMarkChunkDirtyInvokesCallback(t *testing.T) {
	var got [3]int
	calls := 0
	g := New(Dims{Width: 2, Height: 2, Depth: 2}, func(x, y, z int) {
		calls++
		got = [3]int{x, y, z}
	})
	g.SetKind(1, 0, 1, KindRock)
	assert.Equal(t, 1, calls)
	assert.Equal(t, [3]int{1, 0, 1}, got)
}

func TestIsCellWalkableAt(t *testing.T) {
	g := New(Dims{Width: 2, Height: 2, Depth: 2}, nil)
	g.SetKind(0, 0, 0, KindDirt)
	assert.True(t, g.IsCellWalkableAt(0, 0, 1))
	g.SetKind(0, 0, 0, KindAir)
	assert.False(t, g.IsCellWalkableAt(0, 0, 1))
	g.SetFlag(0, 0, 0, FlagHasFloor)
	assert.True(t, g.IsCellWalkableAt(0, 0, 1))
}

func TestCellIsSolidAndBurnsInto(t *testing.T) {
	assert.True(t, CellIsSolid(KindRock))
	assert.False(t, CellIsSolid(KindAir))
	assert.Equal(t, KindDirt, CellBurnsInto(KindPeat))
	assert.Equal(t, KindAir, CellBurnsInto(KindTreeTrunk))
}

func TestMaterialOverlayRoundTrip(t *testing.T) {
	g := New(Dims{Width: 2, Height: 2, Depth: 2}, nil)
	m := NewMaterialOverlay(g)
	m.SetWallMaterial(1, 1, 1, MatOak, true)
	assert.Equal(t, MatOak, m.WallMaterial(1, 1, 1))
	assert.True(t, m.IsWallNatural(1, 1, 1))
	assert.Equal(t, MatNone, m.FloorMaterial(1, 1, 1))

	m.SetFloorMaterial(1, 1, 1, MatStone)
	assert.Equal(t, MatStone, m.FloorMaterial(1, 1, 1))

	assert.False(t, m.HasFinish(1, 1, 1))
	m.SetFinish(1, 1, 1, true)
	assert.True(t, m.HasFinish(1, 1, 1))
}

func TestMaterialTierAndIsSoil(t *testing.T) {
	assert.Equal(t, InsulationAir, MatNone.Tier())
	assert.Equal(t, InsulationWood, MatOak.Tier())
	assert.Equal(t, InsulationStone, MatStone.Tier())
	assert.True(t, MatDirt.IsSoil())
	assert.False(t, MatStone.IsSoil())
	assert.InDelta(t, 1.0, InsulationRate(InsulationAir), 1e-9)
	assert.InDelta(t, 0.20, InsulationRate(InsulationWood), 1e-9)
	assert.InDelta(t, 0.05, InsulationRate(InsulationStone), 1e-9)
}
