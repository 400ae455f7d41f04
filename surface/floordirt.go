package surface

import "github.com/duskhollow/envsim/grid"

// FloorDirt tracks mud/dirt accumulation on constructed floors, driven by
// mover cell transitions rather than by a per-tick scan.
type FloorDirt struct {
	g    *grid.Grid
	mat  *grid.MaterialOverlay
	dims grid.Dims
	cell []uint8

	activeCells int
}

// NewFloorDirt allocates an empty floor-dirt layer sized to g.
func NewFloorDirt(g *grid.Grid, mat *grid.MaterialOverlay) *FloorDirt {
	dims := g.Dims()
	return &FloorDirt{g: g, mat: mat, dims: dims, cell: make([]uint8, dims.Width*dims.Height*dims.Depth)}
}

func (d *FloorDirt) inBounds(x, y, z int) bool {
	return x >= 0 && x < d.dims.Width && y >= 0 && y < d.dims.Height && z >= 0 && z < d.dims.Depth
}
func (d *FloorDirt) index(x, y, z int) int { return (z*d.dims.Height+y)*d.dims.Width + x }

// GetFloorDirt returns the dirt accumulation (0..255) at (x,y,z);
// out-of-bounds reads return 0.
func (d *FloorDirt) GetFloorDirt(x, y, z int) int {
	if !d.inBounds(x, y, z) {
		return 0
	}
	return int(d.cell[d.index(x, y, z)])
}

func clampDirt(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// isDirtSource reports whether (x,y,z) is natural soil that can track dirt
// onto a mover's boots.
func (d *FloorDirt) isDirtSource(x, y, z int) bool {
	return grid.CellIsSolid(d.g.Kind(x, y, z)) && d.mat.IsWallNatural(x, y, z) && d.mat.WallMaterial(x, y, z).IsSoil()
}

// isDirtTarget reports whether (x,y,z) is a constructed floor that can
// receive tracked-in dirt.
func (d *FloorDirt) isDirtTarget(x, y, z int) bool {
	return d.g.HasFlag(x, y, z, grid.FlagHasFloor) && !d.mat.IsWallNatural(x, y, z)
}

// MoverTrackDirt is called once per mover cell transition. If the previous
// cell was a natural soil source and the new cell is a constructed floor
// target, it adds DirtTrackAmount, tripled when the source soil is muddy
// and halved when the target floor is stone.
func (d *FloorDirt) MoverTrackDirt(prevX, prevY, prevZ, x, y, z int) {
	if !d.isDirtSource(prevX, prevY, prevZ) || !d.isDirtTarget(x, y, z) {
		return
	}
	amount := float64(DirtTrackAmount)
	if d.g.Wetness(prevX, prevY, prevZ) >= MuddyWetnessThreshold {
		amount *= MuddySourceMultiplier
	}
	if d.mat.FloorMaterial(x, y, z) == grid.MatStone {
		amount *= StoneFloorMultiplier
	}

	idx := d.index(x, y, z)
	before := d.cell[idx]
	after := clampDirt(int(before) + int(amount))
	d.cell[idx] = after
	if before == 0 && after > 0 {
		d.activeCells++
	}
}

// SetFloorDirt sets the dirt accumulation at (x,y,z) directly, clamped to
// [0,255], and keeps the presence counter in sync. Used by save/load to
// restore floor dirt without replaying mover tracking history.
func (d *FloorDirt) SetFloorDirt(x, y, z, amount int) {
	if !d.inBounds(x, y, z) {
		return
	}
	idx := d.index(x, y, z)
	before := d.cell[idx]
	after := clampDirt(amount)
	d.cell[idx] = after
	if before == 0 && after > 0 {
		d.activeCells++
	} else if before > 0 && after == 0 {
		d.activeCells--
	}
}

// ActiveCells returns the current floor-dirt presence counter.
func (d *FloorDirt) ActiveCells() int { return d.activeCells }

// RebuildCounts recomputes the floor-dirt presence counter from scratch.
func (d *FloorDirt) RebuildCounts() {
	d.activeCells = 0
	for i := range d.cell {
		if d.cell[i] > 0 {
			d.activeCells++
		}
	}
}

// Clear resets floor dirt to zero everywhere.
func (d *FloorDirt) Clear() {
	for i := range d.cell {
		d.cell[i] = 0
	}
	d.activeCells = 0
}

// CleanFloor removes all tracked dirt at (x,y,z), e.g. after a mover mops
// it.
func (d *FloorDirt) CleanFloor(x, y, z int) {
	if !d.inBounds(x, y, z) {
		return
	}
	idx := d.index(x, y, z)
	if d.cell[idx] > 0 {
		d.cell[idx] = 0
		d.activeCells--
	}
}
