// Package steam implements a rising/spreading gas field like smoke, but
// temperature-coupled: it carries heat upward and condenses back into
// water below a threshold instead of pressurizing and filling down.
package steam

import (
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
)

const (
	MaxLevel = 7

	MaxUpdatesPerTick = 8192

	RiseInterval = 0.3

	// CondensationTemp is the Celsius threshold below which steam rolls to
	// condense back into water.
	CondensationTemp = 60

	// CondensationChance is the 1-in-N roll per tick for a steam cell
	// below CondensationTemp to condense.
	CondensationChance = 8

	// RiseHeatTransferPercent is the fraction of the temperature
	// difference transferred to the destination cell when steam rises
	// into it.
	RiseHeatTransferPercent = 0.75
)

type cellRec struct {
	level    uint8
	stable   bool
	risenGen uint32
}

// HeatField is the narrow surface of temperature.Field steam needs: read
// the current temperature and nudge it, without importing package
// temperature's cross-field setters wholesale.
type HeatField interface {
	GetTemperature(x, y, z int) int
	SetTemperature(x, y, z, v int)
}

// CondensationEvent is returned by Update for the master tick to apply
// into the water field, so neither package imports the other (water emits
// boiling steam through its own SteamSink interface).
type CondensationEvent struct {
	X, Y, Z int
	Amount  int
}

// Field is the 3-D steam grid.
type Field struct {
	g    *grid.Grid
	dims grid.Dims
	cell []cellRec

	activeCells int
	genCtr      uint32

	riseAccum float64
	tick      uint64
}

// New allocates an empty steam field sized to g.
func New(g *grid.Grid) *Field {
	dims := g.Dims()
	return &Field{g: g, dims: dims, cell: make([]cellRec, dims.Width*dims.Height*dims.Depth)}
}

func (f *Field) inBounds(x, y, z int) bool {
	return x >= 0 && x < f.dims.Width && y >= 0 && y < f.dims.Height && z >= 0 && z < f.dims.Depth
}
func (f *Field) index(x, y, z int) int { return (z*f.dims.Height+y)*f.dims.Width + x }

// GetSteamLevel returns the level (0..7) at (x,y,z); out-of-bounds reads
// return 0.
func (f *Field) GetSteamLevel(x, y, z int) int {
	if !f.inBounds(x, y, z) {
		return 0
	}
	return int(f.cell[f.index(x, y, z)].level)
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

func (f *Field) adjustActive(before, after uint8) {
	if before == 0 && after > 0 {
		f.activeCells++
	} else if before > 0 && after == 0 {
		f.activeCells--
	}
}

// AddSteam adds amount units of steam to (x,y,z), clamped at MaxLevel.
// This is water's boiling emission hook.
func (f *Field) AddSteam(x, y, z, amount int) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx].level
	f.cell[idx].level = clampLevel(int(before) + amount)
	f.adjustActive(before, f.cell[idx].level)
	f.Destabilize(x, y, z)
}

func (f *Field) removeOne(x, y, z int) {
	idx := f.index(x, y, z)
	before := f.cell[idx].level
	if before == 0 {
		return
	}
	f.cell[idx].level--
	f.adjustActive(before, f.cell[idx].level)
	f.Destabilize(x, y, z)
}

var neighborOffsets4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Destabilize clears the stable bit on (x,y,z) and its neighbors.
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

// ActiveCells returns the current presence counter.
func (f *Field) ActiveCells() int { return f.activeCells }

// RebuildCounts recomputes activeCells from scratch.
func (f *Field) RebuildCounts() {
	f.activeCells = 0
	for i := range f.cell {
		if f.cell[i].level > 0 {
			f.activeCells++
		}
	}
}

// Clear resets the field to no steam anywhere.
func (f *Field) Clear() {
	for i := range f.cell {
		f.cell[i] = cellRec{}
	}
	f.activeCells = 0
	f.riseAccum = 0
}

// Update runs one tick of rise (with heat transfer and top-of-world
// escape), spread, and condensation. Returns any condensation events for
// the master tick to apply to the water field.
func (f *Field) Update(r *rng.Source, gameDeltaTime float64, heat HeatField) []CondensationEvent {
	if f.activeCells == 0 {
		return nil
	}
	f.tick++

	f.riseAccum += gameDeltaTime
	doRise := f.riseAccum >= RiseInterval
	if doRise {
		f.riseAccum -= RiseInterval
		f.genCtr++
	}

	var events []CondensationEvent

	processed := 0
	for z := 0; z < f.dims.Depth && processed < MaxUpdatesPerTick; z++ {
		for y := 0; y < f.dims.Height && processed < MaxUpdatesPerTick; y++ {
			for x := 0; x < f.dims.Width && processed < MaxUpdatesPerTick; x++ {
				idx := f.index(x, y, z)
				c := &f.cell[idx]
				if c.stable || c.level == 0 {
					continue
				}
				processed++

				changed := false
				if doRise {
					changed = f.tryRise(x, y, z, heat) || changed
				}
				changed = f.trySpread(x, y, z, r) || changed

				if heat != nil && heat.GetTemperature(x, y, z) < CondensationTemp && r.Chance(100/CondensationChance) {
					f.removeOne(x, y, z)
					wx, wy, wz := f.fallTarget(x, y, z)
					events = append(events, CondensationEvent{X: wx, Y: wy, Z: wz, Amount: 1})
					changed = true
				}

				if !changed {
					c.stable = true
				}
			}
		}
	}
	return events
}

func (f *Field) tryRise(x, y, z int, heat HeatField) bool {
	if z+1 >= f.dims.Depth {
		f.removeOne(x, y, z)
		return true
	}
	if !grid.CellAllowsFluids(f.g.Kind(x, y, z+1)) {
		return false
	}
	above := f.GetSteamLevel(x, y, z+1)
	if above >= MaxLevel {
		return false
	}
	idx := f.index(x, y, z)
	if f.cell[idx].risenGen == f.genCtr {
		return false
	}
	aIdx := f.index(x, y, z+1)
	f.removeOne(x, y, z)
	f.AddSteam(x, y, z+1, 1)
	f.cell[aIdx].risenGen = f.genCtr

	if heat != nil {
		below := heat.GetTemperature(x, y, z)
		above := heat.GetTemperature(x, y, z+1)
		diff := below - above
		if diff > 0 {
			heat.SetTemperature(x, y, z+1, above+int(float64(diff)*RiseHeatTransferPercent))
		}
	}
	return true
}

func (f *Field) trySpread(x, y, z int, r *rng.Source) bool {
	offsets := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	r.ShuffleOffsets(offsets)
	myLevel := f.GetSteamLevel(x, y, z)
	for _, o := range offsets {
		nx, ny := x+o[0], y+o[1]
		if !f.inBounds(nx, ny, z) || !grid.CellAllowsFluids(f.g.Kind(nx, ny, z)) {
			continue
		}
		nLevel := f.GetSteamLevel(nx, ny, z)
		diff := myLevel - nLevel
		if diff >= 2 || (diff == 1 && myLevel > 1) {
			f.removeOne(x, y, z)
			f.AddSteam(nx, ny, z, 1)
			return true
		}
	}
	return false
}

// fallTarget walks straight down from (x,y,z) looking for the nearest
// empty cell to deposit condensed water into, or returns the same cell if
// it cannot fall.
func (f *Field) fallTarget(x, y, z int) (int, int, int) {
	for zz := z; zz > 0; zz-- {
		if grid.CellAllowsFluids(f.g.Kind(x, y, zz-1)) {
			continue
		}
		return x, y, zz
	}
	return x, y, 0
}
