// Package grid owns the canonical voxel storage: cell kinds, per-cell flag
// overlays, and the wall/floor material overlay. Every other field in
// envsim reads this package but only fire and weather are allowed to
// mutate it.
package grid

// Kind identifies what a voxel fundamentally is. Field engines consult the
// static cellDefs table keyed by Kind rather than branching on it directly.
type Kind uint8

const (
	KindAir Kind = iota
	KindDirt
	KindClay
	KindSand
	KindGravel
	KindPeat
	KindRock
	KindWall
	KindSapling
	KindTreeTrunk
	KindTreeLeaves
	KindTrack
	KindLadder
	KindRamp
	KindDoor
	KindGrate
	kindCount
)

// CellSize is the pixel-per-cell constant used by external collaborators to
// convert between world-space agent positions and grid coordinates. The
// simulation core never uses it itself.
const CellSize = 32.0

type cellDef struct {
	solid          bool
	blocksMovement bool
	blocksFluids   bool
	allowsFluids   bool
	fuel           uint8
	burnsInto      Kind
}

// cellDefs is the static per-kind definition table. Dirt and peat burn
// into dirt (ash); clay/sand/gravel, rock/wall, track, ramp and grate carry
// no fuel of their own (0); ladder and door carry their own static fuel and
// burn into air.
var cellDefs = [kindCount]cellDef{
	KindAir:        {solid: false, blocksMovement: false, blocksFluids: false, allowsFluids: true, fuel: 0, burnsInto: KindAir},
	KindDirt:       {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 4, burnsInto: KindDirt},
	KindClay:       {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 0, burnsInto: KindClay},
	KindSand:       {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 0, burnsInto: KindSand},
	KindGravel:     {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 0, burnsInto: KindGravel},
	KindPeat:       {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 20, burnsInto: KindDirt},
	KindRock:       {solid: true, blocksMovement: true, blocksFluids: true, allowsFluids: false, fuel: 0, burnsInto: KindRock},
	KindWall:       {solid: true, blocksMovement: true, blocksFluids: true, allowsFluids: false, fuel: 0, burnsInto: KindWall},
	KindSapling:    {solid: false, blocksMovement: false, blocksFluids: false, allowsFluids: true, fuel: 8, burnsInto: KindAir},
	KindTreeTrunk:  {solid: true, blocksMovement: true, blocksFluids: false, allowsFluids: true, fuel: 64, burnsInto: KindAir},
	KindTreeLeaves: {solid: false, blocksMovement: false, blocksFluids: false, allowsFluids: true, fuel: 24, burnsInto: KindAir},
	KindTrack:      {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 0, burnsInto: KindTrack},
	KindLadder:     {solid: false, blocksMovement: false, blocksFluids: false, allowsFluids: true, fuel: 12, burnsInto: KindAir},
	KindRamp:       {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 0, burnsInto: KindRamp},
	KindDoor:       {solid: true, blocksMovement: false, blocksFluids: true, allowsFluids: false, fuel: 20, burnsInto: KindAir},
	KindGrate:      {solid: true, blocksMovement: false, blocksFluids: false, allowsFluids: true, fuel: 0, burnsInto: KindGrate},
}

func defOf(k Kind) cellDef {
	if k >= kindCount {
		return cellDefs[KindAir]
	}
	return cellDefs[k]
}

// CellIsSolid reports whether kind occupies its voxel (affects walkability
// and whether it can hold a wall material).
func CellIsSolid(k Kind) bool { return defOf(k).solid }

// CellBlocksMovement reports whether an agent cannot path through kind
// (rock, wall and tree trunk in the table).
func CellBlocksMovement(k Kind) bool { return defOf(k).blocksMovement }

// CellBlocksFluids reports whether kind stops water/gas from entering.
func CellBlocksFluids(k Kind) bool { return defOf(k).blocksFluids }

// CellAllowsFluids is the complement used by field engines when deciding
// whether liquid or gas may occupy or pass through a cell.
func CellAllowsFluids(k Kind) bool { return defOf(k).allowsFluids }

// CellFuel returns the static fuel value for kind, before any material or
// surface overlay is applied.
func CellFuel(k Kind) uint8 { return defOf(k).fuel }

// CellBurnsInto returns what kind becomes once its fuel is exhausted.
func CellBurnsInto(k Kind) Kind { return defOf(k).burnsInto }
