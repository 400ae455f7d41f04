// Package fire implements per-cell combustion: fuel depletion, spread,
// burnout, source pinning, and its write-effects on temperature and smoke.
package fire

import (
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
	"github.com/duskhollow/envsim/surface"
)

const (
	MaxLevel = 7
	MinSpreadLevel = 2

	MaxUpdatesPerTick = 16384

	SpreadInterval = 0.5 // game-seconds between spread rolls
	FuelInterval   = 1.0 // game-seconds between fuel decrements

	SpreadBase     = 8  // percent
	SpreadPerLevel = 4  // percent per fire level
	WaterReduction = 30 // percent multiplier applied when a neighbor has water
	MinSpreadPercentAfterWater = 5

	GrassFuelOverlay = 16

	GrowthChancePercent = 33 // 1-in-3
)

type cellRec struct {
	level    uint8
	stable   bool
	isSource bool
	fuel     uint8
}

// HeatSink receives ApplyFireHeat calls; implemented by temperature.Field.
type HeatSink interface {
	ApplyFireHeat(x, y, z, level int)
}

// SmokeSink receives GenerateSmokeFromFire calls; implemented by smoke.Field.
type SmokeSink interface {
	GenerateSmokeFromFire(x, y, z, level, wetness int)
}

// WearSink receives SetGroundWear calls; implemented by surface.Wear.
type WearSink interface {
	SetGroundWear(x, y, z, wear int)
}

// Field is the 3-D fire grid.
type Field struct {
	g    *grid.Grid
	mat  *grid.MaterialOverlay
	dims grid.Dims
	cell []cellRec

	activeCells int

	spreadAccum float64
	fuelAccum   float64
}

// New allocates an empty fire field sized to g.
func New(g *grid.Grid, mat *grid.MaterialOverlay) *Field {
	dims := g.Dims()
	return &Field{g: g, mat: mat, dims: dims, cell: make([]cellRec, dims.Width*dims.Height*dims.Depth)}
}

func (f *Field) inBounds(x, y, z int) bool {
	return x >= 0 && x < f.dims.Width && y >= 0 && y < f.dims.Height && z >= 0 && z < f.dims.Depth
}
func (f *Field) index(x, y, z int) int { return (z*f.dims.Height+y)*f.dims.Width + x }

// GetFireLevel returns the fire level (0..7) at (x,y,z); out-of-bounds
// reads return 0.
func (f *Field) GetFireLevel(x, y, z int) int {
	if !f.inBounds(x, y, z) {
		return 0
	}
	return int(f.cell[f.index(x, y, z)].level)
}

// HasFire reports whether level > 0 at (x,y,z).
func (f *Field) HasFire(x, y, z int) bool { return f.GetFireLevel(x, y, z) > 0 }

func (f *Field) adjustActive(before, after cellRec) {
	wasActive := before.level > 0 || before.isSource
	isActive := after.level > 0 || after.isSource
	if !wasActive && isActive {
		f.activeCells++
	} else if wasActive && !isActive {
		f.activeCells--
	}
}

// fuelAt returns the combustible value of (x,y,z): the wall material's
// fuel if present, else the cell kind's static fuel, overridden (not
// added) by GrassFuelOverlay when the surface is grass/tall-grass on dirt
// or bare exposed air — the literal behavior of the original GetFuelAt.
func (f *Field) fuelAt(x, y, z int) int {
	kind := f.g.Kind(x, y, z)
	surf := f.g.Surface(x, y, z)
	if surf == grid.SurfaceGrass || surf == grid.SurfaceTallGrass {
		wall := f.mat.WallMaterial(x, y, z)
		if wall == grid.MatDirt || kind == grid.KindAir {
			return GrassFuelOverlay
		}
	}
	if wall := f.mat.WallMaterial(x, y, z); wall != grid.MatNone {
		return materialFuel(wall)
	}
	return int(grid.CellFuel(kind))
}

func materialFuel(m grid.Material) int {
	switch m {
	case grid.MatOak, grid.MatWood:
		return 48
	case grid.MatBirch:
		return 40
	case grid.MatPine:
		return 36
	case grid.MatWillow:
		return 32
	case grid.MatPeat:
		return 20
	default:
		return 0
	}
}

// CanBurn reports whether (x,y,z) is eligible to ignite: in bounds, not
// already burned, has fuel, and has no fluid-blocking cell directly above.
func (f *Field) CanBurn(x, y, z int) bool {
	if !f.inBounds(x, y, z) {
		return false
	}
	if f.g.HasFlag(x, y, z, grid.FlagBurned) {
		return false
	}
	if f.fuelAt(x, y, z) <= 0 {
		return false
	}
	if !grid.CellAllowsFluids(f.g.Kind(x, y, z+1)) && f.g.Kind(x, y, z+1) != grid.KindAir {
		return false
	}
	return true
}

// IgniteCell sets level=7 at (x,y,z) if CanBurn holds.
func (f *Field) IgniteCell(x, y, z int) {
	if !f.CanBurn(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx]
	f.cell[idx].level = MaxLevel
	f.cell[idx].fuel = uint8(clampFuel(f.fuelAt(x, y, z)))
	f.adjustActive(before, f.cell[idx])
	f.Destabilize(x, y, z)
}

func clampFuel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// SetFireSource pins or unpins (x,y,z) as a source: pinned level stays at
// MaxLevel and fuel never decrements. heatSink is not used here: the cell
// is not registered as a temperature heat source, and a lit source heats
// its cell only through the ApplyFireHeat calls Update makes each tick.
func (f *Field) SetFireSource(x, y, z int, on bool, heatSink HeatSink) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx]
	f.cell[idx].isSource = on
	if on {
		f.cell[idx].level = MaxLevel
		f.cell[idx].fuel = 255
	}
	f.adjustActive(before, f.cell[idx])
	f.Destabilize(x, y, z)
}

// Destabilize is a no-op placeholder kept for symmetry with other fields;
// fire has no stable-bit skip in its scan (spec.md: "fire iterates
// bottom-up without direction alternation" and without a stability gate),
// but setters still need a hook for future instrumentation.
func (f *Field) Destabilize(x, y, z int) {}

// ActiveCells returns the current presence counter.
func (f *Field) ActiveCells() int { return f.activeCells }

// RebuildCounts recomputes activeCells from scratch.
func (f *Field) RebuildCounts() {
	f.activeCells = 0
	for i := range f.cell {
		c := f.cell[i]
		if c.level > 0 || c.isSource {
			f.activeCells++
		}
	}
}

// Clear resets the field to no fire anywhere.
func (f *Field) Clear() {
	for i := range f.cell {
		f.cell[i] = cellRec{}
	}
	f.activeCells = 0
	f.spreadAccum = 0
	f.fuelAccum = 0
}

var neighborOffsets4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func (f *Field) neighborHasWater(x, y, z int, hasWater func(x, y, z int) bool) bool {
	for _, o := range neighborOffsets4 {
		if hasWater(x+o[0], y+o[1], z) {
			return true
		}
	}
	return false
}

// Update runs spread/fuel/extinguish for one tick. hasWater/snowLevel are
// read-only probes into water/weather; heatSink/smokeSink/wearSink receive
// this field's cross-field emission.
func (f *Field) Update(
	r *rng.Source,
	gameDeltaTime float64,
	hasWater func(x, y, z int) bool,
	snowLevel func(x, y int) int,
	heatSink HeatSink,
	smokeSink SmokeSink,
	wearSink WearSink,
) {
	if f.activeCells == 0 {
		return
	}

	f.spreadAccum += gameDeltaTime
	f.fuelAccum += gameDeltaTime
	doSpread := f.spreadAccum >= SpreadInterval
	doFuel := f.fuelAccum >= FuelInterval
	if doSpread {
		f.spreadAccum -= SpreadInterval
	}
	if doFuel {
		f.fuelAccum -= FuelInterval
	}

	processed := 0
	for z := 0; z < f.dims.Depth && processed < MaxUpdatesPerTick; z++ {
		for y := 0; y < f.dims.Height && processed < MaxUpdatesPerTick; y++ {
			for x := 0; x < f.dims.Width && processed < MaxUpdatesPerTick; x++ {
				idx := f.index(x, y, z)
				c := &f.cell[idx]
				if c.level == 0 {
					continue
				}
				processed++

				if hasWater(x, y, z) {
					f.extinguish(x, y, z)
					continue
				}
				if snowLevel != nil && snowLevel(x, y) >= 2 {
					f.extinguish(x, y, z)
					continue
				}

				if c.isSource {
					smokeSink.GenerateSmokeFromFire(x, y, z, int(c.level), f.g.Wetness(x, y, z))
					heatSink.ApplyFireHeat(x, y, z, int(c.level))
					continue
				}

				if doFuel && c.fuel > 0 {
					c.fuel--
					if c.fuel == 0 {
						f.burnout(x, y, z, wearSink)
						continue
					}
				}

				if c.fuel > 2 && c.level < MaxLevel && r.Chance(GrowthChancePercent) {
					before := *c
					c.level++
					f.adjustActive(before, *c)
				}

				if doSpread {
					f.trySpread(x, y, z, r, hasWater)
				}

				smokeSink.GenerateSmokeFromFire(x, y, z, int(c.level), f.g.Wetness(x, y, z))
				heatSink.ApplyFireHeat(x, y, z, int(c.level))
			}
		}
	}
}

func (f *Field) extinguish(x, y, z int) {
	idx := f.index(x, y, z)
	before := f.cell[idx]
	f.cell[idx].level = 0
	f.cell[idx].fuel = 0
	f.adjustActive(before, f.cell[idx])
}

func (f *Field) burnout(x, y, z int, wearSink WearSink) {
	idx := f.index(x, y, z)
	before := f.cell[idx]
	f.cell[idx].level = 0
	f.adjustActive(before, f.cell[idx])
	f.g.SetFlag(x, y, z, grid.FlagBurned)

	kind := f.g.Kind(x, y, z)
	into := grid.CellBurnsInto(kind)
	f.g.SetKind(x, y, z, into)
	if into == grid.KindDirt {
		f.g.SetSurface(x, y, z, grid.SurfaceBare)
		if wearSink != nil {
			wearSink.SetGroundWear(x, y, z, surface.WearMax)
		}
	}
}

func (f *Field) trySpread(x, y, z int, r *rng.Source, hasWater func(x, y, z int) bool) {
	offsets := append([][2]int(nil), neighborOffsets4[:]...)
	r.ShuffleOffsets(offsets)

	level := f.GetFireLevel(x, y, z)
	for _, o := range offsets {
		nx, ny := x+o[0], y+o[1]
		if f.HasFire(nx, ny, z) || !f.CanBurn(nx, ny, z) {
			continue
		}
		percent := SpreadBase + level*SpreadPerLevel
		if f.neighborHasWater(nx, ny, z, hasWater) {
			percent = percent * WaterReduction / 100
			if percent < MinSpreadPercentAfterWater {
				percent = MinSpreadPercentAfterWater
			}
		}
		if r.Chance(percent) {
			idx := f.index(nx, ny, z)
			before := f.cell[idx]
			f.cell[idx].level = MinSpreadLevel
			f.cell[idx].fuel = uint8(clampFuel(f.fuelAt(nx, ny, z)))
			f.adjustActive(before, f.cell[idx])
		}
	}
}
