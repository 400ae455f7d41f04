// Package smoke implements the rising/spreading/fill-down gas field shared
// in shape by steam, generalized here for smoke's own dissipation and
// pressure fill-down behavior.
package smoke

import (
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
)

const (
	MaxLevel = 7

	// MaxPressureSourceZ documents the original's 3-bit pressureSourceZ
	// field explicitly as a hard cap rather than silently truncating: a
	// pressure column that started climbing above z=7 loses fill-down
	// protection below that level. See SPEC_FULL.md open question 1.
	MaxPressureSourceZ = 7

	MaxUpdatesPerTick = 65536

	PressureSearchLimit = 1024

	RiseInterval         = 0.3
	DissipationTime      = 8.0 // divided by MaxLevel to get the per-level interval
	RainIntervalMultiplier = 1.75

	GrowthOnEmit = 1
)

type cellRec struct {
	level           uint8
	stable          bool
	hasPressure     bool
	pressureSourceZ uint8
	risenGen        uint32
	visitGen        uint32
}

// Field is the 3-D smoke grid.
type Field struct {
	g    *grid.Grid
	dims grid.Dims
	cell []cellRec

	activeCells int
	curGen      uint32
	visitGenCtr uint32

	riseAccum         float64
	dissipationAccum  float64
	tick              uint64
}

// New allocates an empty smoke field sized to g.
func New(g *grid.Grid) *Field {
	dims := g.Dims()
	return &Field{g: g, dims: dims, cell: make([]cellRec, dims.Width*dims.Height*dims.Depth)}
}

func (f *Field) inBounds(x, y, z int) bool {
	return x >= 0 && x < f.dims.Width && y >= 0 && y < f.dims.Height && z >= 0 && z < f.dims.Depth
}
func (f *Field) index(x, y, z int) int { return (z*f.dims.Height+y)*f.dims.Width + x }

// GetSmokeLevel returns the level (0..7) at (x,y,z); out-of-bounds reads
// return 0.
func (f *Field) GetSmokeLevel(x, y, z int) int {
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

// AddSmoke adds amount units of smoke to (x,y,z), clamped at MaxLevel.
func (f *Field) AddSmoke(x, y, z, amount int) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx].level
	f.cell[idx].level = clampLevel(int(before) + amount)
	f.adjustActive(before, f.cell[idx].level)
	f.Destabilize(x, y, z)
}

// GenerateSmokeFromFire is fire's emission hook: wetness multiplies the
// amount of smoke 2-3x per spec.md section 4.8 (wet cells smoke more).
func (f *Field) GenerateSmokeFromFire(x, y, z, level, wetness int) {
	amount := 1
	if level >= 5 {
		amount = 2
	}
	if wetness >= 2 {
		amount = amount * 3
	} else if wetness == 1 {
		amount = amount * 2
	}
	f.AddSmoke(x, y, z, amount)
}

// setPressureSourceZ clamps sourceZ to [0,MaxPressureSourceZ] and stamps it on
// the cell, documenting the 3-bit field's hard cap explicitly.
func (f *Field) setPressureSourceZ(x, y, z, sourceZ int) {
	if sourceZ > MaxPressureSourceZ {
		sourceZ = MaxPressureSourceZ
	}
	if sourceZ < 0 {
		sourceZ = 0
	}
	f.cell[f.index(x, y, z)].pressureSourceZ = uint8(sourceZ)
}

var neighborOffsets4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Destabilize clears the stable bit on (x,y,z) and its four lateral plus
// two vertical neighbors.
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

// Clear resets the field to no smoke anywhere.
func (f *Field) Clear() {
	for i := range f.cell {
		f.cell[i] = cellRec{}
	}
	f.activeCells = 0
	f.riseAccum = 0
	f.dissipationAccum = 0
}

func xyzOrder(dims grid.Dims, tick uint64) (xs, ys []int) {
	xs = make([]int, dims.Width)
	for i := range xs {
		xs[i] = i
	}
	ys = make([]int, dims.Height)
	for i := range ys {
		ys[i] = i
	}
	if tick&1 != 0 {
		for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
			xs[i], xs[j] = xs[j], xs[i]
		}
	}
	if tick&2 != 0 {
		for i, j := 0, len(ys)-1; i < j; i, j = i+1, j-1 {
			ys[i], ys[j] = ys[j], ys[i]
		}
	}
	return
}

// Update runs one tick of rise, spread, fill-down, and dissipation.
func (f *Field) Update(r *rng.Source, gameDeltaTime float64, isRaining bool, windStrength float64, windDotFn func(dx, dy int) float64) {
	if f.activeCells == 0 {
		return
	}
	f.tick++

	riseInterval := RiseInterval
	dissipationTime := DissipationTime
	if isRaining {
		riseInterval *= RainIntervalMultiplier
		dissipationTime *= RainIntervalMultiplier
	}

	f.riseAccum += gameDeltaTime
	doRise := f.riseAccum >= riseInterval
	if doRise {
		f.riseAccum -= riseInterval
		f.visitGenCtr++ // acts as the "has-risen this generation" token
	}

	f.dissipationAccum += gameDeltaTime
	doDissipate := f.dissipationAccum >= dissipationTime/MaxLevel
	if doDissipate {
		f.dissipationAccum -= dissipationTime / MaxLevel
	}

	xs, ys := xyzOrder(f.dims, f.tick)

	processed := 0
	for z := 0; z < f.dims.Depth && processed < MaxUpdatesPerTick; z++ {
		for _, y := range ys {
			if processed >= MaxUpdatesPerTick {
				break
			}
			for _, x := range xs {
				if processed >= MaxUpdatesPerTick {
					break
				}
				idx := f.index(x, y, z)
				c := &f.cell[idx]
				if c.stable || c.level == 0 {
					continue
				}
				processed++

				changed := false
				if doRise {
					changed = f.tryRise(x, y, z, r) || changed
				}
				changed = f.trySpread(x, y, z, r, windStrength, windDotFn) || changed
				changed = f.tryFillDown(x, y, z) || changed
				if doDissipate {
					changed = f.tryDissipate(x, y, z, r) || changed
				}
				if !changed {
					c.stable = true
				}
			}
		}
	}
}

func (f *Field) tryRise(x, y, z int, r *rng.Source) bool {
	if z+1 >= f.dims.Depth {
		return false
	}
	if !grid.CellAllowsFluids(f.g.Kind(x, y, z+1)) {
		idx := f.index(x, y, z)
		f.cell[idx].hasPressure = true
		f.setPressureSourceZ(x, y, z, z)
		return false
	}
	above := f.GetSmokeLevel(x, y, z+1)
	if above >= MaxLevel {
		idx := f.index(x, y, z)
		f.cell[idx].hasPressure = true
		f.setPressureSourceZ(x, y, z, z)
		return false
	}
	idx := f.index(x, y, z)
	if f.cell[idx].risenGen == f.visitGenCtr {
		return false
	}
	aIdx := f.index(x, y, z+1)
	f.RemoveSmokeOne(x, y, z)
	f.AddSmoke(x, y, z+1, 1)
	f.cell[aIdx].risenGen = f.visitGenCtr
	return true
}

// RemoveSmokeOne decrements level by one at (x,y,z) if nonzero.
func (f *Field) RemoveSmokeOne(x, y, z int) {
	if !f.inBounds(x, y, z) {
		return
	}
	idx := f.index(x, y, z)
	before := f.cell[idx].level
	if before == 0 {
		return
	}
	f.cell[idx].level--
	f.adjustActive(before, f.cell[idx].level)
	f.Destabilize(x, y, z)
}

func (f *Field) trySpread(x, y, z int, r *rng.Source, windStrength float64, windDotFn func(dx, dy int) float64) bool {
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

	myLevel := f.GetSmokeLevel(x, y, z)
	for _, o := range offsets {
		nx, ny := x+o[0], y+o[1]
		if !f.inBounds(nx, ny, z) || !grid.CellAllowsFluids(f.g.Kind(nx, ny, z)) {
			continue
		}
		nLevel := f.GetSmokeLevel(nx, ny, z)
		diff := myLevel - nLevel
		if diff >= 2 || (diff == 1 && myLevel > 1) {
			f.RemoveSmokeOne(x, y, z)
			f.AddSmoke(nx, ny, z, 1)
			return true
		}
	}
	return false
}

func (f *Field) tryFillDown(x, y, z int) bool {
	idx := f.index(x, y, z)
	c := &f.cell[idx]
	if c.level != MaxLevel || !c.hasPressure {
		return false
	}
	if dz, dy, dx, found := f.fillDownBFS(x, y, z, int(c.pressureSourceZ)); found {
		f.RemoveSmokeOne(x, y, z)
		f.AddSmoke(dx, dy, dz, 1)
		return true
	}
	return false
}

// fillDownBFS searches, bounded by PressureSearchLimit, through full
// reachable cells downward and horizontally (never above sourceZ) for a
// non-full cell, using the generation-counter visited array.
func (f *Field) fillDownBFS(sx, sy, sz, sourceZ int) (z, y, x int, found bool) {
	f.curGen++
	gen := f.curGen

	type pt struct{ x, y, z int }
	queue := []pt{{sx, sy, sz}}
	f.cell[f.index(sx, sy, sz)].visitGen = gen

	steps := 0
	dirs := [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, -1}, {0, 0, 1}}
	for len(queue) > 0 && steps < PressureSearchLimit {
		cur := queue[0]
		queue = queue[1:]
		steps++
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

func (f *Field) tryDissipate(x, y, z int, r *rng.Source) bool {
	idx := f.index(x, y, z)
	c := &f.cell[idx]
	if c.risenGen == f.visitGenCtr {
		return false
	}
	trapped := c.hasPressure || !grid.CellAllowsFluids(f.g.Kind(x, y, z+1))
	if trapped && !r.Chance(33) {
		return false
	}
	f.RemoveSmokeOne(x, y, z)
	return true
}
