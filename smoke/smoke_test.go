package smoke

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
)

func noWind(dx, dy int) float64 { return 0 }

func TestAddSmokeClampsAtMaxLevel(t *testing.T) {
	g := grid.New(grid.Dims{Width: 1, Height: 1, Depth: 1}, nil)
	f := New(g)
	f.AddSmoke(0, 0, 0, 99)
	assert.Equal(t, MaxLevel, f.GetSmokeLevel(0, 0, 0))
}

func TestGenerateSmokeFromFireScalesWithWetness(t *testing.T) {
	g := grid.New(grid.Dims{Width: 3, Height: 1, Depth: 1}, nil)
	f := New(g)
	f.GenerateSmokeFromFire(0, 0, 0, 1, 0)
	f.GenerateSmokeFromFire(1, 0, 0, 1, 1)
	f.GenerateSmokeFromFire(2, 0, 0, 1, 2)
	assert.Equal(t, 1, f.GetSmokeLevel(0, 0, 0))
	assert.Equal(t, 2, f.GetSmokeLevel(1, 0, 0))
	assert.Equal(t, 3, f.GetSmokeLevel(2, 0, 0))
}

func TestSmokeRisesIntoOpenSpaceAbove(t *testing.T) {
	g := grid.New(grid.Dims{Width: 1, Height: 1, Depth: 3}, nil)
	f := New(g)
	r := rng.New(1)
	f.AddSmoke(0, 0, 0, MaxLevel)

	for i := 0; i < 50; i++ {
		f.Update(r, RiseInterval, false, 0, noWind)
	}

	assert.Greater(t, f.GetSmokeLevel(0, 0, 2), 0, "smoke should have worked its way to the top of an open column")
}

func TestSmokeBlockedBySolidCeilingMarksPressure(t *testing.T) {
	g := grid.New(grid.Dims{Width: 1, Height: 1, Depth: 2}, nil)
	g.SetKind(0, 0, 1, grid.KindWall)
	f := New(g)
	r := rng.New(1)
	f.AddSmoke(0, 0, 0, MaxLevel)

	for i := 0; i < 5; i++ {
		f.Update(r, RiseInterval, false, 0, noWind)
	}

	assert.Equal(t, MaxLevel, f.GetSmokeLevel(0, 0, 0))
	assert.Equal(t, 0, f.GetSmokeLevel(0, 0, 1))
	assert.True(t, f.cell[f.index(0, 0, 0)].hasPressure)
}

func TestSmokeSpreadsLaterallyUnderASealedCeiling(t *testing.T) {
	g := grid.New(grid.Dims{Width: 3, Height: 1, Depth: 2}, nil)
	for x := 0; x < 3; x++ {
		g.SetKind(x, 0, 1, grid.KindWall)
	}
	f := New(g)
	r := rng.New(2)
	f.AddSmoke(0, 0, 0, MaxLevel)

	for i := 0; i < 200; i++ {
		f.Update(r, RiseInterval, false, 0, noWind)
	}

	assert.Greater(t, f.GetSmokeLevel(2, 0, 0), 0, "smoke should equalize across a sealed room")
}

func TestSmokeReachesFarColumnBelowWall(t *testing.T) {
	dims := grid.Dims{Width: 3, Height: 1, Depth: 4}
	g := grid.New(dims, nil)
	for x := 0; x < 3; x++ {
		g.SetKind(x, 0, 0, grid.KindDirt) // floor
	}
	g.SetKind(1, 0, 2, grid.KindWall) // seals the direct same-height path
	f := New(g)
	r := rng.New(3)

	f.AddSmoke(0, 0, 3, MaxLevel)
	f.AddSmoke(0, 0, 2, MaxLevel)
	f.AddSmoke(0, 0, 1, MaxLevel)

	for i := 0; i < 3000; i++ {
		f.Update(r, RiseInterval, false, 0, noWind)
	}

	assert.Greater(t, f.GetSmokeLevel(2, 0, 1), 0, "smoke should cross the open level z=1 into the far column")
}

func TestDissipationEventuallyClearsSmoke(t *testing.T) {
	g := grid.New(grid.Dims{Width: 1, Height: 1, Depth: 1}, nil)
	f := New(g)
	r := rng.New(4)
	f.AddSmoke(0, 0, 0, 3)

	for i := 0; i < 2000; i++ {
		f.Update(r, DissipationTime, false, 0, noWind)
	}

	assert.Equal(t, 0, f.GetSmokeLevel(0, 0, 0))
}

func TestRebuildCountsMatchesDirectState(t *testing.T) {
	g := grid.New(grid.Dims{Width: 2, Height: 1, Depth: 1}, nil)
	f := New(g)
	f.AddSmoke(0, 0, 0, 1)
	before := f.ActiveCells()
	f.RebuildCounts()
	assert.Equal(t, before, f.ActiveCells())
}

func TestClearResetsField(t *testing.T) {
	g := grid.New(grid.Dims{Width: 1, Height: 1, Depth: 1}, nil)
	f := New(g)
	f.AddSmoke(0, 0, 0, 3)
	f.Clear()
	assert.Equal(t, 0, f.ActiveCells())
	assert.Equal(t, 0, f.GetSmokeLevel(0, 0, 0))
}
