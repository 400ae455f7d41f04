// Package water implements the DF-style 1..7 level liquid field: gravity,
// lateral equalization, pressure (U-tube) rise, freeze/thaw, evaporation,
// sources and drains.
package water

import (
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
)

const (
	MaxLevel = 7

	MaxUpdatesPerTick = 4096

	// PressureSearchLimit bounds the BFS used to find a lower, non-full
	// cell for pressure to climb into.
	PressureSearchLimit = 512

	// TempWaterFreezes is the Celsius threshold at or below which liquid
	// water becomes ice.
	TempWaterFreezes = 0

	// SteamGenerationTemp is the Celsius threshold at or above which
	// water boils into steam.
	SteamGenerationTemp = 100

	EvapIntervalSeconds = 20.0

	SpeedShallow = 0.8
	SpeedMedium  = 0.55
	SpeedDeep    = 0.3
)

type cellRec struct {
	level           uint8
	stable          bool
	isSource        bool
	isDrain         bool
	hasPressure     bool
	pressureSourceZ uint8
	isFrozen        bool
	visitGen        uint32
}

// SteamSink is satisfied by anything water needs to push generated steam
// into; implemented by package steam's Field, kept as an interface here so
// water never imports package steam, and injected by the master tick.
type SteamSink interface {
	AddSteam(x, y, z, amount int)
}

// Field is the 3-D water grid.
type Field struct {
	g    *grid.Grid
	dims grid.Dims
	cell []cellRec

	activeCells int
	curGen      uint32

	evapAccum float64
}

// New allocates an empty water field sized to g.
func New(g *grid.Grid) *Field {
	dims := g.Dims()
	return &Field{g: g, dims: dims, cell: make([]cellRec, dims.Width*dims.Height*dims.Depth)}
}

func (f *Field) inBounds(x, y, z int) bool {
	return x >= 0 && x < f.dims.Width && y >= 0 && y < f.dims.Height && z >= 0 && z < f.dims.Depth
}
func (f *Field) index(x, y, z int) int { return (z*f.dims.Height+y)*f.dims.Width + x }

// GetWaterLevel returns the level (0..7) at (x,y,z); out-of-bounds reads
// return 0.
func (f *Field) GetWaterLevel(x, y, z int) int {
	if !f.inBounds(x, y, z) {
		return 0
	}
	return int(f.cell[f.index(x, y, z)].level)
}

// HasWater reports whether level > 0 at (x,y,z).
func (f *Field) HasWater(x, y, z int) bool { return f.GetWaterLevel(x, y, z) > 0 }

// IsFull reports whether level == MaxLevel at (x,y,z).
func (f *Field) IsFull(x, y, z int) bool { return f.GetWaterLevel(x, y, z) == MaxLevel }

// IsFrozen reports whether the water at (x,y,z) is currently ice.
func (f *Field) IsFrozen(x, y, z int) bool {
	if !f.inBounds(x, y, z) {
		return false
	}
	return f.cell[f.index(x, y, z)].isFrozen
}

// CanHoldWater reports whether (x,y,z) can currently accept liquid water:
// it must allow fluids and not be frozen.
func (f *Field) CanHoldWater(x, y, z int) bool {
	if !f.inBounds(x, y, z) {
		return false
	}
	if f.cell[f.index(x, y, z)].isFrozen {
		return false
	}
	return grid.CellAllowsFluids(f.g.Kind(x, y, z))
}

func clampLevel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return uint8(v)
}

func (f *Field) adjustActive(before, after cellRec) {
	wasActive := before.level > 0 || before.isSource || before.isDrain
	isActive := after.level > 0 || after.isSource || after.isDrain
	if !wasActive && isActive {
		f.activeCells++
	} else if wasActive && !isActive {
		f.activeCells--
	}
}

// SetWaterLevel sets the level at (x,y,z), clamped to 0..7, and
// destabilizes the cell.
func (f *Field) SetWaterLevel(x, y, z, level int) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx]
	f.cell[idx].level = clampLevel(level)
	f.adjustActive(before, f.cell[idx])
	f.Destabilize(x, y, z)
}

// AddWater adds amount units of water to (x,y,z), clamped at MaxLevel.
func (f *Field) AddWater(x, y, z, amount int) {
	f.SetWaterLevel(x, y, z, f.GetWaterLevel(x, y, z)+amount)
}

// RemoveWater removes amount units of water from (x,y,z), clamped at 0.
func (f *Field) RemoveWater(x, y, z, amount int) {
	f.SetWaterLevel(x, y, z, f.GetWaterLevel(x, y, z)-amount)
}

// SetWaterSource marks or unmarks (x,y,z) as an infinite source.
func (f *Field) SetWaterSource(x, y, z int, on bool) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx]
	f.cell[idx].isSource = on
	f.adjustActive(before, f.cell[idx])
	f.Destabilize(x, y, z)
}

// SetWaterDrain marks or unmarks (x,y,z) as a drain.
func (f *Field) SetWaterDrain(x, y, z int, on bool) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx]
	f.cell[idx].isDrain = on
	f.adjustActive(before, f.cell[idx])
	f.Destabilize(x, y, z)
}

// DisplaceWater is called by a construction collaborator before placing a
// solid at (x,y,z); it removes any water present so the solid doesn't trap
// liquid inside it.
func (f *Field) DisplaceWater(x, y, z int) {
	f.SetWaterLevel(x, y, z, 0)
}

// FreezeWater converts liquid at (x,y,z) into ice. Idempotent.
func (f *Field) FreezeWater(x, y, z int) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	if f.cell[idx].isFrozen {
		return
	}
	f.cell[idx].isFrozen = true
	f.Destabilize(x, y, z)
}

// ThawWater converts ice at (x,y,z) back into liquid, preserving level.
// Idempotent.
func (f *Field) ThawWater(x, y, z int) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	if !f.cell[idx].isFrozen {
		return
	}
	f.cell[idx].isFrozen = false
	f.Destabilize(x, y, z)
}

var neighborOffsets4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Destabilize clears the stable bit on (x,y,z) and its six
// orthogonal+vertical neighbors.
func (f *Field) Destabilize(x, y, z int) {
	f.clearStable(x, y, z)
	for _, o := range neighborOffsets4 {
		f.clearStable(x+o[0], y+o[1], z)
	}
	f.clearStable(x, y, z+1)
	f.clearStable(x, y, z-1)
}

func (f *Field) clearStable(x, y, z int) {
	if f.inBounds(x, y, z) {
		f.cell[f.index(x, y, z)].stable = false
	}
}

// GetWaterSpeedMultiplier returns the mover speed multiplier for the water
// level at (x,y,z). Frozen water returns 1.0 (acts as solid ground).
func (f *Field) GetWaterSpeedMultiplier(x, y, z int) float64 {
	if f.IsFrozen(x, y, z) {
		return 1.0
	}
	lvl := f.GetWaterLevel(x, y, z)
	switch {
	case lvl >= 5:
		return SpeedDeep
	case lvl >= 3:
		return SpeedMedium
	case lvl >= 1:
		return SpeedShallow
	default:
		return 1.0
	}
}

// ActiveCells returns the current presence counter.
func (f *Field) ActiveCells() int { return f.activeCells }

// RebuildCounts recomputes activeCells from scratch.
func (f *Field) RebuildCounts() {
	f.activeCells = 0
	for i := range f.cell {
		c := f.cell[i]
		if c.level > 0 || c.isSource || c.isDrain {
			f.activeCells++
		}
	}
}

// Clear resets the field to empty.
func (f *Field) Clear() {
	for i := range f.cell {
		f.cell[i] = cellRec{}
	}
	f.activeCells = 0
	f.evapAccum = 0
}

// isOpenSky reports whether there is no fluid-blocking cell above (x,y,z)
// up to the top of the grid.
func (f *Field) isOpenSky(x, y, z int) bool {
	for zz := z + 1; zz < f.dims.Depth; zz++ {
		if !grid.CellAllowsFluids(f.g.Kind(x, y, zz)) {
			return false
		}
	}
	return true
}

// Update runs one tick: sources, fall/equalize/pressure per unstable
// cell, drains, and (at its own accumulator interval) evaporation.
// isRaining/windDotFn are supplied by the master tick from weather state.
func (f *Field) Update(r *rng.Source, gameDeltaTime float64, isRaining bool, windStrength float64, windDotFn func(dx, dy int) float64) {
	if f.activeCells == 0 {
		return
	}

	for z := 0; z < f.dims.Depth; z++ {
		for y := 0; y < f.dims.Height; y++ {
			for x := 0; x < f.dims.Width; x++ {
				idx := f.index(x, y, z)
				if f.cell[idx].isSource {
					if f.cell[idx].level != MaxLevel || !f.cell[idx].hasPressure {
						f.cell[idx].level = MaxLevel
						f.cell[idx].hasPressure = true
						f.cell[idx].pressureSourceZ = uint8(clampPSZ(z))
						f.Destabilize(x, y, z)
					}
				}
			}
		}
	}

	processed := 0
	for z := 0; z < f.dims.Depth && processed < MaxUpdatesPerTick; z++ {
		for y := 0; y < f.dims.Height && processed < MaxUpdatesPerTick; y++ {
			for x := 0; x < f.dims.Width && processed < MaxUpdatesPerTick; x++ {
				idx := f.index(x, y, z)
				c := &f.cell[idx]
				if c.stable || c.level == 0 || c.isFrozen {
					continue
				}
				processed++
				changed := f.stepCell(x, y, z, r, windStrength, windDotFn)
				if !changed {
					c.stable = true
				}
			}
		}
	}

	for z := 0; z < f.dims.Depth; z++ {
		for y := 0; y < f.dims.Height; y++ {
			for x := 0; x < f.dims.Width; x++ {
				idx := f.index(x, y, z)
				if f.cell[idx].isDrain && f.cell[idx].level > 0 {
					f.RemoveWater(x, y, z, 1)
				}
			}
		}
	}

	f.evapAccum += gameDeltaTime
	if f.evapAccum >= EvapIntervalSeconds {
		f.evapAccum -= EvapIntervalSeconds
		if !isRaining {
			for z := 0; z < f.dims.Depth; z++ {
				for y := 0; y < f.dims.Height; y++ {
					for x := 0; x < f.dims.Width; x++ {
						idx := f.index(x, y, z)
						if f.cell[idx].level == 1 && !f.cell[idx].isFrozen && f.isOpenSky(x, y, z) {
							f.RemoveWater(x, y, z, 1)
							if z > 0 {
								f.g.SetWetness(x, y, z-1, f.g.Wetness(x, y, z-1)+1)
							}
						}
					}
				}
			}
		}
	}
}

func clampPSZ(z int) int {
	if z > 15 {
		return 15
	}
	if z < 0 {
		return 0
	}
	return z
}

// stepCell applies fall, equalize, and pressure rise for one cell; returns
// true if anything changed.
func (f *Field) stepCell(x, y, z int, r *rng.Source, windStrength float64, windDotFn func(dx, dy int) float64) bool {
	changed := false
	idx := f.index(x, y, z)

	if f.CanHoldWater(x, y, z-1) {
		below := f.GetWaterLevel(x, y, z-1)
		space := MaxLevel - below
		if space > 0 {
			amount := f.GetWaterLevel(x, y, z)
			if amount > space {
				amount = space
			}
			if amount > 0 {
				f.RemoveWater(x, y, z, amount)
				f.AddWater(x, y, z-1, amount)
				return true
			}
		}
	}

	offsets := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	r.ShuffleOffsets(offsets)
	if windStrength > 0.5 && windDotFn != nil {
		best, bestDot := -1, -2.0
		for i, o := range offsets {
			d := windDotFn(o[0], o[1])
			if d > bestDot {
				bestDot, best = d, i
			}
		}
		if best > 0 {
			offsets[0], offsets[best] = offsets[best], offsets[0]
		}
	}

	myLevel := int(f.cell[idx].level)
	transferred := false
	for _, o := range offsets {
		nx, ny := x+o[0], y+o[1]
		if !f.CanHoldWater(nx, ny, z) {
			continue
		}
		nLevel := f.GetWaterLevel(nx, ny, z)
		diff := myLevel - nLevel
		if diff >= 2 {
			f.RemoveWater(x, y, z, 1)
			f.AddWater(nx, ny, z, 1)
			transferred = true
			break
		}
		if diff == 1 && myLevel >= 2 && !transferred {
			f.RemoveWater(x, y, z, 1)
			f.AddWater(nx, ny, z, 1)
			transferred = true
			break
		}
	}
	if transferred {
		return true
	}

	c := &f.cell[idx]
	if c.level == MaxLevel && c.hasPressure && f.CanHoldWater(x, y, z+1) {
		if dz, dy2, dx2, found := f.pressureBFS(x, y, z, int(c.pressureSourceZ)); found {
			f.RemoveWater(x, y, z, 1)
			f.AddWater(dx2, dy2, dz, 1)
			f.cell[f.index(dx2, dy2, dz)].hasPressure = true
			f.cell[f.index(dx2, dy2, dz)].pressureSourceZ = c.pressureSourceZ
			changed = true
		}
	}

	return changed
}

// pressureBFS searches, bounded by PressureSearchLimit, through fully
// filled reachable cells for a non-full cell at z' < sourceZ. Uses the
// field's generation-counter visited array rather than a per-call reset.
func (f *Field) pressureBFS(sx, sy, sz, sourceZ int) (z, y, x int, found bool) {
	f.curGen++
	gen := f.curGen

	type pt struct{ x, y, z int }
	queue := make([]pt, 0, 64)
	queue = append(queue, pt{sx, sy, sz})
	f.cell[f.index(sx, sy, sz)].visitGen = gen

	steps := 0
	for len(queue) > 0 && steps < PressureSearchLimit {
		cur := queue[0]
		queue = queue[1:]
		steps++

		dirs := [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
		for _, d := range dirs {
			nx, ny, nz := cur.x+d[0], cur.y+d[1], cur.z+d[2]
			if !f.inBounds(nx, ny, nz) || nz > sourceZ {
				continue
			}
			if !grid.CellAllowsFluids(f.g.Kind(nx, ny, nz)) {
				continue
			}
			idx := f.index(nx, ny, nz)
			if f.cell[idx].visitGen == gen {
				continue
			}
			f.cell[idx].visitGen = gen
			if f.cell[idx].level < MaxLevel {
				return nz, ny, nx, true
			}
			queue = append(queue, pt{nx, ny, nz})
		}
	}
	return 0, 0, 0, false
}

// UpdateFreezing applies freeze/thaw transitions based on temperature, and
// boils water into steam via steamSink when hot enough. getTemp is
// supplied by the master tick (backed by temperature.Field.GetTemperature).
func (f *Field) UpdateFreezing(getTemp func(x, y, z int) int, steamSink SteamSink) {
	for z := 0; z < f.dims.Depth; z++ {
		for y := 0; y < f.dims.Height; y++ {
			for x := 0; x < f.dims.Width; x++ {
				idx := f.index(x, y, z)
				if f.cell[idx].level == 0 {
					continue
				}
				t := getTemp(x, y, z)
				switch {
				case t <= TempWaterFreezes:
					f.FreezeWater(x, y, z)
				case t > TempWaterFreezes:
					f.ThawWater(x, y, z)
				}
				if t >= SteamGenerationTemp && !f.cell[idx].isFrozen {
					f.RemoveWater(x, y, z, 1)
					if steamSink != nil {
						steamSink.AddSteam(x, y, z, 1)
						if z+1 < f.dims.Depth {
							steamSink.AddSteam(x, y, z+1, 1)
						}
					}
				}
			}
		}
	}
}
