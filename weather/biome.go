package weather

import "github.com/duskhollow/envsim/grid"

// Season is one of the four quarters of a year, derived from day number.
type Season uint8

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

// Abbr returns the 3-letter season abbreviation used in event log
// timestamps.
func (s Season) Abbr() string {
	switch s {
	case SeasonSpring:
		return "Spr"
	case SeasonSummer:
		return "Sum"
	case SeasonAutumn:
		return "Aut"
	default:
		return "Win"
	}
}

// DaysPerSeason is the default season length in in-game days.
const DaysPerSeason = 30

// SeasonOf returns the season for a 1-based dayNumber.
func SeasonOf(dayNumber, daysPerSeason int) Season {
	if daysPerSeason <= 0 {
		daysPerSeason = DaysPerSeason
	}
	idx := ((dayNumber - 1) / daysPerSeason) % 4
	if idx < 0 {
		idx += 4
	}
	return Season(idx)
}

// DayInSeason returns the 1-based day index within the current season.
func DayInSeason(dayNumber, daysPerSeason int) int {
	if daysPerSeason <= 0 {
		daysPerSeason = DaysPerSeason
	}
	return ((dayNumber - 1) % daysPerSeason) + 1
}

// SoilWeight pairs a soil material with its world-generation frequency
// weight, used for both terrain generation flavor and (via Preset) tree
// species selection.
type SoilWeight struct {
	Material grid.Material
	Weight   float64
}

// Preset is a set of world-generation and climate constants chosen once at
// world creation; it never mutates at runtime.
type Preset struct {
	Name string

	SoilWeights   []SoilWeight
	StoneType     grid.Material
	TreeSpeciesBySoil map[grid.Material]grid.Material

	BaseAmbientC        float64 // annual mean surface temperature
	SeasonalAmplitudeC  float64 // swing between summer and winter
	DiurnalAmplitudeC   float64 // swing between day and night
	AmbientDepthDecayC  float64 // degrees C lost per z-level underground

	RiverCount, LakeCount int
	DensityMultiplier     float64
}

// TemperateForest is a reasonable default preset grounded in the original
// source's biome.h climate fields, giving the test suite and any embedding
// host a usable out-of-the-box climate.
var TemperateForest = Preset{
	Name: "temperate_forest",
	SoilWeights: []SoilWeight{
		{Material: grid.MatDirt, Weight: 0.55},
		{Material: grid.MatClay, Weight: 0.15},
		{Material: grid.MatSand, Weight: 0.10},
		{Material: grid.MatGravel, Weight: 0.10},
		{Material: grid.MatPeat, Weight: 0.10},
	},
	StoneType: grid.MatStone,
	TreeSpeciesBySoil: map[grid.Material]grid.Material{
		grid.MatPeat:   grid.MatWillow,
		grid.MatSand:   grid.MatBirch,
		grid.MatGravel: grid.MatPine,
		grid.MatClay:   grid.MatOak,
		grid.MatDirt:   grid.MatOak,
	},
	BaseAmbientC:       12,
	SeasonalAmplitudeC: 15,
	DiurnalAmplitudeC:  6,
	AmbientDepthDecayC: 0.5,
	RiverCount:         2,
	LakeCount:          1,
	DensityMultiplier:  1.0,
}

// PickTreeSpeciesForSoil returns the tree species this preset regrows on
// soil material mat, defaulting to oak.
func (p Preset) PickTreeSpeciesForSoil(mat grid.Material) grid.Material {
	if sp, ok := p.TreeSpeciesBySoil[mat]; ok {
		return sp
	}
	return grid.MatOak
}
