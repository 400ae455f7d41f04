// Package temperature models the signed-Celsius heat field: diffusion
// modulated by material insulation, decay toward ambient, and source
// pinning.
package temperature

import (
	"github.com/duskhollow/envsim/grid"
)

const (
	// TempMin/TempMax bound the persisted int8 range.
	TempMin = -128
	TempMax = 127

	// DefaultHeatSourceTemp/DefaultColdSourceTemp are the Celsius values
	// source cells are pinned to. temperature.h is authoritative here;
	// an index-scale "125" comment elsewhere in the original is stale.
	DefaultHeatSourceTemp = 100
	DefaultColdSourceTemp = -10

	// FireMinTemp/FireStepPerLevel drive ApplyFireHeat.
	FireMinTemp     = 300
	FireStepPerLevel = 40

	// MaxUpdatesPerTick bounds per-tick work.
	MaxUpdatesPerTick = 4096

	// DecayRate is degrees nudged toward ambient per tick.
	DecayRate = 1

	// HeatTransferSpeed is the fraction of the gap to the neighbor-weighted
	// average closed per tick.
	HeatTransferSpeed = 0.35
)

type cellRec struct {
	current      int8
	stable       bool
	isHeatSource bool
	isColdSource bool
}

// AmbientFunc returns the ambient temperature at z for the current tick;
// supplied by the master tick (backed by weather.Driver.AmbientTemperature)
// so this package stays free of a weather import.
type AmbientFunc func(z int) float64

// Field is the 3-D temperature grid.
type Field struct {
	g    *grid.Grid
	mat  *grid.MaterialOverlay
	dims grid.Dims
	cell []cellRec

	heatSourceTemp int8
	coldSourceTemp int8

	sourceCount    int
	unstableCells  int
}

// New allocates a zero-Celsius field sized to g.
func New(g *grid.Grid, mat *grid.MaterialOverlay) *Field {
	dims := g.Dims()
	n := dims.Width * dims.Height * dims.Depth
	return &Field{
		g: g, mat: mat, dims: dims,
		cell:           make([]cellRec, n),
		heatSourceTemp: DefaultHeatSourceTemp,
		coldSourceTemp: DefaultColdSourceTemp,
		// every cell starts with stable=false (its zero value), so the
		// unstable counter must start matching that or Update's early-exit
		// would skip a fresh field with no pinned sources forever.
		unstableCells: n,
	}
}

func (f *Field) inBounds(x, y, z int) bool {
	return x >= 0 && x < f.dims.Width && y >= 0 && y < f.dims.Height && z >= 0 && z < f.dims.Depth
}

func (f *Field) index(x, y, z int) int { return (z*f.dims.Height+y)*f.dims.Width + x }

// GetTemperature returns the temperature at (x,y,z); out-of-bounds reads
// return 0.
func (f *Field) GetTemperature(x, y, z int) int {
	if !f.inBounds(x, y, z) {
		return 0
	}
	return int(f.cell[f.index(x, y, z)].current)
}

// IsFreezing reports whether the temperature at (x,y,z) is at or below
// water's freeze point.
func (f *Field) IsFreezing(x, y, z, freezePoint int) bool {
	return f.GetTemperature(x, y, z) <= freezePoint
}

func clampTemp(v int) int8 {
	if v < TempMin {
		v = TempMin
	}
	if v > TempMax {
		v = TempMax
	}
	return int8(v)
}

// SetTemperature sets the temperature at (x,y,z), clamped to
// [TempMin,TempMax], and destabilizes the cell.
func (f *Field) SetTemperature(x, y, z, v int) {
	if !f.inBounds(x, y, z) {
		return
	}
	f.cell[f.index(x, y, z)].current = clampTemp(v)
	f.Destabilize(x, y, z)
}

// SetHeatSource marks or unmarks (x,y,z) as a pinned heat emitter.
func (f *Field) SetHeatSource(x, y, z int, on bool) {
	if !f.inBounds(x, y, z) {
		return
	}
	c := &f.cell[f.index(x, y, z)]
	if c.isHeatSource == on {
		return
	}
	c.isHeatSource = on
	if on {
		f.sourceCount++
	} else {
		f.sourceCount--
	}
	f.Destabilize(x, y, z)
}

// SetColdSource marks or unmarks (x,y,z) as a pinned cold emitter.
func (f *Field) SetColdSource(x, y, z int, on bool) {
	if !f.inBounds(x, y, z) {
		return
	}
	c := &f.cell[f.index(x, y, z)]
	if c.isColdSource == on {
		return
	}
	c.isColdSource = on
	if on {
		f.sourceCount++
	} else {
		f.sourceCount--
	}
	f.Destabilize(x, y, z)
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
}

// Destabilize clears the stable bit on (x,y,z) and its six face neighbors.
func (f *Field) Destabilize(x, y, z int) {
	if f.inBounds(x, y, z) {
		idx := f.index(x, y, z)
		if f.cell[idx].stable {
			f.cell[idx].stable = false
			f.unstableCells++
		}
	}
	for _, o := range neighborOffsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if f.inBounds(nx, ny, nz) {
			idx := f.index(nx, ny, nz)
			if f.cell[idx].stable {
				f.cell[idx].stable = false
				f.unstableCells++
			}
		}
	}
}

func (f *Field) insulationAt(x, y, z int) grid.InsulationTier {
	return f.mat.WallMaterial(x, y, z).Tier()
}

// ApplyFireHeat raises the temperature at (x,y,z) toward FireMinTemp plus
// level*FireStepPerLevel and destabilizes it. Called by package fire.
func (f *Field) ApplyFireHeat(x, y, z, level int) {
	target := FireMinTemp + level*FireStepPerLevel
	cur := f.GetTemperature(x, y, z)
	if target > cur {
		f.SetTemperature(x, y, z, cur+(target-cur)/2)
	}
}

// Update runs one tick of diffusion, decay, and source pinning.
func (f *Field) Update(ambient AmbientFunc) {
	if f.sourceCount == 0 && f.unstableCells == 0 {
		return
	}

	for z := 0; z < f.dims.Depth; z++ {
		for y := 0; y < f.dims.Height; y++ {
			for x := 0; x < f.dims.Width; x++ {
				idx := f.index(x, y, z)
				c := &f.cell[idx]
				if c.isHeatSource {
					if c.current != f.heatSourceTemp {
						c.current = f.heatSourceTemp
						f.Destabilize(x, y, z)
					}
				} else if c.isColdSource {
					if c.current != f.coldSourceTemp {
						c.current = f.coldSourceTemp
						f.Destabilize(x, y, z)
					}
				}
			}
		}
	}

	processed := 0
	tierRate := func(x, y, z int) float64 { return grid.InsulationRate(f.insulationAt(x, y, z)) }

	for z := 0; z < f.dims.Depth && processed < MaxUpdatesPerTick; z++ {
		for y := 0; y < f.dims.Height && processed < MaxUpdatesPerTick; y++ {
			for x := 0; x < f.dims.Width && processed < MaxUpdatesPerTick; x++ {
				idx := f.index(x, y, z)
				c := &f.cell[idx]
				if c.stable || c.isHeatSource || c.isColdSource {
					continue
				}
				processed++

				selfRate := tierRate(x, y, z)
				sum := float64(c.current)
				weightSum := 1.0
				for _, o := range neighborOffsets {
					nx, ny, nz := x+o[0], y+o[1], z+o[2]
					if !f.inBounds(nx, ny, nz) {
						continue
					}
					nRate := tierRate(nx, ny, nz)
					w := selfRate
					if nRate < w {
						w = nRate
					}
					if w <= 0 {
						continue
					}
					sum += float64(f.cell[f.index(nx, ny, nz)].current) * w
					weightSum += w
				}
				avg := sum / weightSum

				before := c.current
				newVal := float64(c.current) + (avg-float64(c.current))*HeatTransferSpeed

				amb := ambient(z)
				if newVal > amb {
					newVal -= DecayRate
					if newVal < amb {
						newVal = amb
					}
				} else if newVal < amb {
					newVal += DecayRate
					if newVal > amb {
						newVal = amb
					}
				}

				c.current = clampTemp(int(newVal))
				if c.current != before {
					f.Destabilize(x, y, z)
				}
				if c.current == before && float64(c.current) == amb {
					if !c.stable {
						c.stable = true
						f.unstableCells--
					}
				}
			}
		}
	}
}

// SourceCount returns the number of pinned heat/cold source cells.
func (f *Field) SourceCount() int { return f.sourceCount }

// UnstableCells returns the number of cells not currently marked stable.
func (f *Field) UnstableCells() int { return f.unstableCells }

// RebuildCounts recomputes sourceCount and unstableCells from scratch,
// required after a save load.
func (f *Field) RebuildCounts() {
	f.sourceCount = 0
	f.unstableCells = 0
	for i := range f.cell {
		c := &f.cell[i]
		if c.isHeatSource || c.isColdSource {
			f.sourceCount++
		}
		if !c.stable {
			f.unstableCells++
		}
	}
}

// Clear resets the field to all-zero Celsius with no sources.
func (f *Field) Clear() {
	for i := range f.cell {
		f.cell[i] = cellRec{}
	}
	f.sourceCount = 0
	// every cell's stable flag is now false (its zero value), same as New,
	// so unstableCells must match every cell again, not zero.
	f.unstableCells = len(f.cell)
}
