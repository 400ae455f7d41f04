// Package surface models the ground-wear, wetness, and floor-dirt layers:
// trample-driven paths through grass, mud from standing water, and dirt
// tracked onto constructed floors by movers.
package surface

import (
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
)

const (
	WearMax = 3000

	WearTallerToTall    = 200
	WearTallToNormal    = 600
	WearNormalToTrampled = 1000
	WearGrassToDirt     = 1500

	WearTrampleAmount = 40
	WearDecayRate     = 15

	WearRecoveryIntervalHours = 2.0

	SaplingRegrowthChance      = 5 // per 10000
	SaplingMinTreeDistance     = 4

	DirtTrackAmount        = 6
	MuddySourceMultiplier  = 3
	StoneFloorMultiplier   = 0.5

	MuddyWetnessThreshold = 2
)

// Vegetation is the four-tier wear→vegetation state the original tracks
// alongside the public four-value grid.Surface enum. It is stored per cell
// inside Wear and no exported function returns it; GET_CELL_SURFACE
// callers only ever see grid.Surface.
type Vegetation uint8

const (
	VegNone Vegetation = iota
	VegGrassShort
	VegGrassTall
	VegGrassTaller
)

type wearCell struct {
	wear       int
	vegetation Vegetation
}

// SpeciesBySoil maps a soil material to the tree species regrown on it.
type SpeciesBySoil = map[grid.Material]grid.Material

// WaterProbe answers whether water currently sits in or above a cell, used
// to gate wetness drying.
type WaterProbe func(x, y, z int) bool

// FireProbe answers whether a cell is currently on fire, used to skip wear
// decay and sapling regrowth while burning.
type FireProbe func(x, y, z int) bool

// Wear is the ground-wear + wetness layer over a grid.
type Wear struct {
	g    *grid.Grid
	mat  *grid.MaterialOverlay
	dims grid.Dims
	cell []wearCell

	activeCells int

	recoveryAccum float64

	SaplingRegrowthEnabled bool
	SpeciesBySoil          SpeciesBySoil
}

// NewWear allocates an empty wear layer sized to g.
func NewWear(g *grid.Grid, mat *grid.MaterialOverlay, species SpeciesBySoil) *Wear {
	dims := g.Dims()
	return &Wear{g: g, mat: mat, dims: dims, cell: make([]wearCell, dims.Width*dims.Height*dims.Depth), SpeciesBySoil: species}
}

func (w *Wear) inBounds(x, y, z int) bool {
	return x >= 0 && x < w.dims.Width && y >= 0 && y < w.dims.Height && z >= 0 && z < w.dims.Depth
}
func (w *Wear) index(x, y, z int) int { return (z*w.dims.Height+y)*w.dims.Width + x }

// GetGroundWear returns the wear value (0..WearMax) at (x,y,z);
// out-of-bounds reads return 0.
func (w *Wear) GetGroundWear(x, y, z int) int {
	if !w.inBounds(x, y, z) {
		return 0
	}
	return w.cell[w.index(x, y, z)].wear
}

// SetGroundWear sets the wear value at (x,y,z) directly, clamped to
// [0,WearMax], and refreshes its surface/vegetation and presence-counter
// state. Used by save/load to restore wear without replaying trample
// history.
func (w *Wear) SetGroundWear(x, y, z, wear int) {
	if !w.inBounds(x, y, z) {
		return
	}
	idx := w.index(x, y, z)
	oldWear := w.cell[idx].wear
	newWear := clampWear(wear)
	w.cell[idx].wear = newWear
	if oldWear == 0 && newWear > 0 {
		w.activeCells++
	} else if oldWear > 0 && newWear == 0 {
		w.activeCells--
	}
	w.updateSurfaceFromWear(x, y, z)
}

func clampWear(v int) int {
	if v < 0 {
		return 0
	}
	if v > WearMax {
		return WearMax
	}
	return v
}

func (w *Wear) isNaturalDirt(x, y, z int) bool {
	return grid.CellIsSolid(w.g.Kind(x, y, z)) && w.mat.IsWallNatural(x, y, z) && w.mat.WallMaterial(x, y, z) == grid.MatDirt
}

// updateSurfaceFromWear maps the current wear value onto a vegetation tier
// and the public four-value surface enum, following the original's five
// threshold bands collapsed onto spec.md's four public states.
func (w *Wear) updateSurfaceFromWear(x, y, z int) {
	idx := w.index(x, y, z)
	wear := w.cell[idx].wear
	switch {
	case wear >= WearGrassToDirt:
		w.g.SetSurface(x, y, z, grid.SurfaceBare)
		w.cell[idx].vegetation = VegNone
	case wear >= WearNormalToTrampled:
		w.g.SetSurface(x, y, z, grid.SurfaceTrampled)
		w.cell[idx].vegetation = VegNone
	case wear >= WearTallToNormal:
		w.g.SetSurface(x, y, z, grid.SurfaceGrass)
		w.cell[idx].vegetation = VegGrassShort
	case wear >= WearTallerToTall:
		w.g.SetSurface(x, y, z, grid.SurfaceTallGrass)
		w.cell[idx].vegetation = VegGrassTall
	default:
		w.g.SetSurface(x, y, z, grid.SurfaceTallGrass)
		w.cell[idx].vegetation = VegGrassTaller
	}
}

// TrampleGround is called by mover agents each step; it trample-damages a
// standing sapling, or accumulates wear on the dirt cell at z or z-1 (when
// standing on a floor above dirt).
func (w *Wear) TrampleGround(x, y, z int) {
	if !w.inBounds(x, y, z) {
		return
	}
	if w.g.Kind(x, y, z) == grid.KindSapling {
		idx := w.index(x, y, z)
		w.cell[idx].wear = clampWear(w.cell[idx].wear + 1)
		if w.cell[idx].wear >= WearMax/2 {
			w.g.SetKind(x, y, z, grid.KindAir)
			w.mat.SetWallMaterial(x, y, z, grid.MatNone, false)
			w.cell[idx].wear = 0
		}
		return
	}

	targetZ := z
	if !w.isNaturalDirt(x, y, z) {
		if z > 0 && w.isNaturalDirt(x, y, z-1) {
			targetZ = z - 1
		} else {
			return
		}
	}

	idx := w.index(x, y, targetZ)
	oldWear := w.cell[idx].wear
	newWear := clampWear(oldWear + WearTrampleAmount)
	w.cell[idx].wear = newWear
	if oldWear == 0 && newWear > 0 {
		w.activeCells++
	}
	w.updateSurfaceFromWear(x, y, targetZ)
}

// ActiveCells returns the current wear presence counter.
func (w *Wear) ActiveCells() int { return w.activeCells }

// RebuildCounts recomputes the wear presence counter from scratch.
func (w *Wear) RebuildCounts() {
	w.activeCells = 0
	for i := range w.cell {
		if w.cell[i].wear > 0 {
			w.activeCells++
		}
	}
}

// Clear resets wear (not wetness, which lives on grid.Grid) to zero
// everywhere.
func (w *Wear) Clear() {
	for i := range w.cell {
		w.cell[i] = wearCell{}
	}
	w.activeCells = 0
	w.recoveryAccum = 0
}

// SeasonalGrowthRateFn returns the multiplier applied to wear decay for
// the current season; supplied by the master tick (weather.Season-aware),
// with winter expected to return 0.
type SeasonalGrowthRateFn func() float64

// PlaceSaplingFn is the external collaborator hook for actually placing a
// sapling cell, since construction/world-gen owns cell placement mechanics
// beyond this package's scope.
type PlaceSaplingFn func(x, y, z int, species grid.Material)

// Update runs ground wear decay, sapling regrowth, and wetness drying,
// gated by WearRecoveryIntervalHours of accumulated game time.
func (w *Wear) Update(
	r *rng.Source,
	gameDeltaTime float64,
	gameHoursToGameSeconds func(h float64) float64,
	seasonalGrowthRate SeasonalGrowthRateFn,
	fireProbe FireProbe,
	waterProbe WaterProbe,
	windStrength float64,
	isExposedToSky func(x, y, z int) bool,
	hasNearbyTree func(x, y, z, dist int) bool,
	placeSapling PlaceSaplingFn,
) {
	if w.activeCells == 0 && !w.SaplingRegrowthEnabled {
		return
	}

	w.recoveryAccum += gameDeltaTime
	interval := gameHoursToGameSeconds(WearRecoveryIntervalHours)
	if w.recoveryAccum < interval {
		return
	}
	w.recoveryAccum -= interval

	vegRate := 1.0
	if seasonalGrowthRate != nil {
		vegRate = seasonalGrowthRate()
	}

	for z := 0; z < w.dims.Depth; z++ {
		for y := 0; y < w.dims.Height; y++ {
			for x := 0; x < w.dims.Width; x++ {
				if !grid.CellIsSolid(w.g.Kind(x, y, z)) || !w.mat.IsWallNatural(x, y, z) {
					continue
				}
				isDirt := w.mat.WallMaterial(x, y, z) == grid.MatDirt
				if fireProbe != nil && fireProbe(x, y, z) {
					continue
				}

				idx := w.index(x, y, z)
				if isDirt {
					effectiveDecay := int(float64(WearDecayRate) * vegRate)
					oldWear := w.cell[idx].wear
					if effectiveDecay > 0 && oldWear > effectiveDecay {
						w.cell[idx].wear = oldWear - effectiveDecay
					} else if effectiveDecay > 0 && oldWear > 0 {
						w.cell[idx].wear = 0
						w.activeCells--
					}
					w.updateSurfaceFromWear(x, y, z)
				}

				if w.SaplingRegrowthEnabled && w.cell[idx].wear == 0 {
					if !isDirt || w.cell[idx].vegetation >= VegGrassTall {
						if z+1 < w.dims.Depth && w.g.Kind(x, y, z+1) == grid.KindAir {
							if r.Intn(10000) < SaplingRegrowthChance {
								if hasNearbyTree == nil || !hasNearbyTree(x, y, z, SaplingMinTreeDistance) {
									soil := w.mat.WallMaterial(x, y, z)
									species := w.pickTreeSpecies(soil)
									if placeSapling != nil {
										placeSapling(x, y, z+1, species)
									}
								}
							}
						}
					}
				}

				wetness := w.g.Wetness(x, y, z)
				if wetness > 0 && w.mat.WallMaterial(x, y, z).IsSoil() {
					present := false
					if waterProbe != nil {
						present = waterProbe(x, y, z) || (z+1 < w.dims.Depth && waterProbe(x, y, z+1))
					}
					if !present {
						if r.Chance(50) {
							w.g.SetWetness(x, y, z, wetness-1)
						}
						if windStrength > 0.5 && isExposedToSky != nil && isExposedToSky(x, y, z) {
							cur := w.g.Wetness(x, y, z)
							if cur > 0 && r.Chance(int(windStrength*10)) {
								w.g.SetWetness(x, y, z, cur-1)
							}
						}
					}
				}
			}
		}
	}
}

func (w *Wear) pickTreeSpecies(soil grid.Material) grid.Material {
	if w.SpeciesBySoil != nil {
		if sp, ok := w.SpeciesBySoil[soil]; ok {
			return sp
		}
	}
	return grid.MatOak
}
