package grid

// Flag bits packed into the same byte as Surface/Wetness in the flags
// overlay array.
type Flag uint8

const (
	FlagHasFloor Flag = 1 << iota
	FlagBurned
	FlagExplored
)

// Surface is the trample-derived ground cover, exactly the four values
// spec.md names. The richer internal vegetation tiers used to decay into
// this value live in package surface, not here.
type Surface uint8

const (
	SurfaceBare Surface = iota
	SurfaceGrass
	SurfaceTallGrass
	SurfaceTrampled
)

const (
	surfaceShift = 3
	surfaceMask  = 0x3
	wetnessShift = 5
	wetnessMask  = 0x3
	flagBitsMask = 0x7 // HasFloor|Burned|Explored occupy bits 0-2
)

// cell is the packed flags byte: bits 0-2 boolean flags, bits 3-4 surface,
// bits 5-6 wetness (0..3), bit 7 unused.
type cell = uint8

// Dims is the fixed (width, height, depth) of a Grid, set once at init.
type Dims struct {
	Width, Height, Depth int
}

// Grid is the dense 3-D voxel store plus its parallel flags byte array.
// z increases upward; z=0 is the lowest layer.
type Grid struct {
	dims   Dims
	kinds  []Kind
	flags  []cell
	dirty  func(x, y, z int)
}

// New allocates a zero-filled grid of the given dimensions (all air, no
// flags set). dirty may be nil; when non-nil it is invoked by
// MarkChunkDirty.
func New(dims Dims, dirty func(x, y, z int)) *Grid {
	n := dims.Width * dims.Height * dims.Depth
	return &Grid{
		dims:  dims,
		kinds: make([]Kind, n),
		flags: make([]cell, n),
		dirty: dirty,
	}
}

// Dims returns the grid's fixed dimensions.
func (g *Grid) Dims() Dims { return g.dims }

func (g *Grid) inBounds(x, y, z int) bool {
	return x >= 0 && x < g.dims.Width && y >= 0 && y < g.dims.Height && z >= 0 && z < g.dims.Depth
}

func (g *Grid) index(x, y, z int) int {
	return (z*g.dims.Height+y)*g.dims.Width + x
}

// Kind returns the cell kind at (x,y,z), or KindAir if out of bounds.
func (g *Grid) Kind(x, y, z int) Kind {
	if !g.inBounds(x, y, z) {
		return KindAir
	}
	return g.kinds[g.index(x, y, z)]
}

// SetKind assigns the cell kind at (x,y,z). Out-of-bounds writes are
// silent no-ops, per the grid's hard bounds contract.
func (g *Grid) SetKind(x, y, z int, k Kind) {
	if !g.inBounds(x, y, z) {
		return
	}
	g.kinds[g.index(x, y, z)] = k
	g.MarkChunkDirty(x, y, z)
}

// IsCellWalkableAt reports whether a mover can stand at (x,y,z): the cell
// itself must not be solid or movement-blocking, and the cell directly
// below must be solid or carry a constructed floor.
func (g *Grid) IsCellWalkableAt(x, y, z int) bool {
	k := g.Kind(x, y, z)
	if CellIsSolid(k) || CellBlocksMovement(k) {
		return false
	}
	below := g.Kind(x, y, z-1)
	return CellIsSolid(below) || g.HasFlag(x, y, z-1, FlagHasFloor)
}

// HasFlag reports whether flag is set at (x,y,z). Out-of-bounds reads
// return false.
func (g *Grid) HasFlag(x, y, z int, flag Flag) bool {
	if !g.inBounds(x, y, z) {
		return false
	}
	return g.flags[g.index(x, y, z)]&uint8(flag) != 0
}

// SetFlag sets flag at (x,y,z); out-of-bounds writes are no-ops.
func (g *Grid) SetFlag(x, y, z int, flag Flag) {
	if !g.inBounds(x, y, z) {
		return
	}
	g.flags[g.index(x, y, z)] |= uint8(flag)
}

// ClearFlag clears flag at (x,y,z); out-of-bounds writes are no-ops.
func (g *Grid) ClearFlag(x, y, z int, flag Flag) {
	if !g.inBounds(x, y, z) {
		return
	}
	g.flags[g.index(x, y, z)] &^= uint8(flag)
}

// Surface returns the surface overlay at (x,y,z); out-of-bounds reads
// return SurfaceBare.
func (g *Grid) Surface(x, y, z int) Surface {
	if !g.inBounds(x, y, z) {
		return SurfaceBare
	}
	return Surface((g.flags[g.index(x, y, z)] >> surfaceShift) & surfaceMask)
}

// SetSurface sets the surface overlay at (x,y,z); out-of-bounds writes are
// no-ops.
func (g *Grid) SetSurface(x, y, z int, s Surface) {
	if !g.inBounds(x, y, z) {
		return
	}
	i := g.index(x, y, z)
	g.flags[i] = (g.flags[i] &^ (surfaceMask << surfaceShift)) | (uint8(s)&surfaceMask)<<surfaceShift
	g.MarkChunkDirty(x, y, z)
}

// Wetness returns the 0..3 wetness value at (x,y,z); out-of-bounds reads
// return 0.
func (g *Grid) Wetness(x, y, z int) int {
	if !g.inBounds(x, y, z) {
		return 0
	}
	return int((g.flags[g.index(x, y, z)] >> wetnessShift) & wetnessMask)
}

// SetWetness clamps w to 0..3 and stores it at (x,y,z); out-of-bounds
// writes are no-ops.
func (g *Grid) SetWetness(x, y, z, w int) {
	if !g.inBounds(x, y, z) {
		return
	}
	if w < 0 {
		w = 0
	}
	if w > 3 {
		w = 3
	}
	i := g.index(x, y, z)
	g.flags[i] = (g.flags[i] &^ (wetnessMask << wetnessShift)) | (uint8(w)&wetnessMask)<<wetnessShift
}

// MarkChunkDirty is the only mutation-visible side channel the simulation
// exposes to a renderer. It is a no-op if no callback was supplied to New.
func (g *Grid) MarkChunkDirty(x, y, z int) {
	if g.dirty != nil {
		g.dirty(x, y, z)
	}
}
