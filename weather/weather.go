package weather

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/rng"
	"github.com/duskhollow/envsim/worldtime"
)

// Type is the current precipitation/sky state.
type Type uint8

const (
	Clear Type = iota
	Cloudy
	Rain
	HeavyRain
	Thunderstorm
	Snow
	Mist
	Fog
	typeCount
)

// IsRaining reports whether t is one of the rain-bearing types that slow
// smoke rise/dissipation and add water to open-sky cells.
func (t Type) IsRaining() bool { return t == Rain || t == HeavyRain || t == Thunderstorm }

// State is the weather/season signal every other field reads.
type State struct {
	Type            Type
	Intensity       float64 // 0..1
	Wind            mgl32.Vec2
	WindStrength    float64
	TransitionTimer float64 // game-seconds remaining until next transition roll

	DaysPerSeason int
}

// Driver owns the weather state machine plus the noise generator that
// drifts wind direction smoothly instead of jittering it every tick.
type Driver struct {
	State  State
	Preset Preset

	windNoise opensimplex.Noise
	noiseT    float64

	snowDims grid.Dims
	snow     []uint8 // accumulation 0..255 per (x,y) column, top exposed cell

	pendingStrike *LightningStrike
}

// New creates a Driver for the given biome preset and grid dimensions (used
// to size the snow accumulation layer).
func New(preset Preset, dims grid.Dims, seed int64) *Driver {
	return &Driver{
		State: State{
			Type:          Clear,
			Wind:          mgl32.Vec2{1, 0},
			DaysPerSeason: DaysPerSeason,
		},
		Preset:    preset,
		windNoise: opensimplex.New(seed),
		snowDims:  dims,
		snow:      make([]uint8, dims.Width*dims.Height),
	}
}

// transitionWeights gives the relative weight of every type as the next
// weather state. The weights depend on the season only (winter favors Snow
// over Rain, summer favors Clear/Thunderstorm); the current type does not
// affect them.
func (d *Driver) transitionWeights(season Season) []float64 {
	w := make([]float64, typeCount)
	w[Clear] = 5
	w[Cloudy] = 3
	w[Rain] = 2
	w[HeavyRain] = 1
	w[Thunderstorm] = 0.5
	w[Snow] = 0
	w[Mist] = 1
	w[Fog] = 1
	switch season {
	case SeasonWinter:
		w[Snow] = 3
		w[Rain] = 0.3
		w[HeavyRain] = 0.1
		w[Thunderstorm] = 0
	case SeasonSummer:
		w[Clear] = 7
		w[Thunderstorm] = 1.5
		w[Fog] = 0.3
	}
	return w
}

// AmbientSurfaceTemperature computes the surface-level ambient temperature
// from year phase (season cycle) and day phase (diurnal cycle), per
// spec.md's cosine formula.
func (p Preset) AmbientSurfaceTemperature(dayNumber int, timeOfDay float64, daysPerSeason int) float64 {
	yearDays := float64(daysPerSeason * 4)
	yearPhase := 2 * math.Pi * float64((dayNumber-1)%int(yearDays)) / yearDays
	dayPhase := 2 * math.Pi * timeOfDay / 24.0
	return p.BaseAmbientC +
		p.SeasonalAmplitudeC*math.Cos(yearPhase) +
		p.DiurnalAmplitudeC*math.Cos(dayPhase)
}

// AmbientTemperature returns the ambient temperature at depth level z
// (z counted down from the surface z-level), decaying by
// AmbientDepthDecayC per underground level.
func (p Preset) AmbientTemperature(dayNumber int, timeOfDay float64, daysPerSeason, surfaceZ, z int) float64 {
	surface := p.AmbientSurfaceTemperature(dayNumber, timeOfDay, daysPerSeason)
	below := surfaceZ - z
	if below <= 0 {
		return surface
	}
	return surface - p.AmbientDepthDecayC*float64(below)
}

// Update advances the weather state machine by clock.GameDeltaTime,
// consulting r for transition rolls and lightning strikes.
func (d *Driver) Update(clock *worldtime.Clock, r *rng.Source, g *grid.Grid, mat *grid.MaterialOverlay) {
	season := SeasonOf(clock.DayNumber, d.State.DaysPerSeason)

	d.noiseT += clock.GameDeltaTime * 0.02
	angle := d.windNoise.Eval2(d.noiseT, 0) * math.Pi
	d.State.Wind = mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))}

	targetStrength := 0.1
	switch {
	case d.State.Type == Thunderstorm:
		targetStrength = 0.9
	case d.State.Type == HeavyRain:
		targetStrength = 0.7
	case d.State.Type == Rain || d.State.Type == Snow:
		targetStrength = 0.4
	}
	d.State.WindStrength += (targetStrength - d.State.WindStrength) * 0.05

	d.State.TransitionTimer -= clock.GameDeltaTime
	if d.State.TransitionTimer <= 0 {
		weights := d.transitionWeights(season)
		sampler := sampleuv.NewWeighted(weights, r.Rand())
		if idx, ok := sampler.Take(); ok {
			d.State.Type = Type(idx)
		}
		d.State.TransitionTimer = clock.GameHoursToGameSeconds(2 + r.Float64()*6)
	}

	targetIntensity := 0.0
	switch d.State.Type {
	case Cloudy, Mist, Fog:
		targetIntensity = 0.3
	case Rain, Snow:
		targetIntensity = 0.6
	case HeavyRain, Thunderstorm:
		targetIntensity = 1.0
	}
	d.State.Intensity += (targetIntensity - d.State.Intensity) * 0.1

	if d.State.Type == Thunderstorm && r.Chance(1) {
		d.strikeLightning(r, g, mat)
	}

	d.updateSnow(clock, r, g, mat)
}

// GetWindDotProduct returns the dot product of the current wind vector
// with (dx,dy), used to bias neighbor iteration order downwind-first.
func (d *Driver) GetWindDotProduct(dx, dy int) float64 {
	return float64(d.State.Wind.Dot(mgl32.Vec2{float32(dx), float32(dy)}))
}

func (d *Driver) idx(x, y int) int { return y*d.snowDims.Width + x }

func (d *Driver) inBoundsXY(x, y int) bool {
	return x >= 0 && x < d.snowDims.Width && y >= 0 && y < d.snowDims.Height
}

// GetSnowLevel returns the snow accumulation (0..255) at grid column
// (x,y); out-of-bounds reads return 0.
func (d *Driver) GetSnowLevel(x, y int) uint8 {
	if !d.inBoundsXY(x, y) {
		return 0
	}
	return d.snow[d.idx(x, y)]
}

func (d *Driver) setSnowLevel(x, y int, v uint8) {
	if !d.inBoundsXY(x, y) {
		return
	}
	d.snow[d.idx(x, y)] = v
}

// updateSnow adds snow to every column on a 5% roll per tick during Snow
// weather, and melts it on a 3% roll otherwise. It does not check whether
// a column is exposed or below freezing.
func (d *Driver) updateSnow(clock *worldtime.Clock, r *rng.Source, g *grid.Grid, mat *grid.MaterialOverlay) {
	_ = mat
	for y := 0; y < d.snowDims.Height; y++ {
		for x := 0; x < d.snowDims.Width; x++ {
			level := d.GetSnowLevel(x, y)
			if d.State.Type == Snow {
				if r.Chance(5) && level < 255 {
					d.setSnowLevel(x, y, level+1)
				}
			} else if level > 0 && r.Chance(3) {
				d.setSnowLevel(x, y, level-1)
			}
		}
	}
}

// strikeLightning rolls a random exposed cell and ignites it if its floor
// material is flammable, the caller supplying ignite via a callback would
// create an import cycle with fire; instead Driver records the last strike
// location for the master tick to act on.
type LightningStrike struct {
	X, Y, Z int
}

var _ = LightningStrike{}

func (d *Driver) strikeLightning(r *rng.Source, g *grid.Grid, mat *grid.MaterialOverlay) {
	dims := g.Dims()
	x := r.Intn(dims.Width)
	y := r.Intn(dims.Height)
	z := dims.Depth - 1
	for z > 0 && g.Kind(x, y, z) == grid.KindAir {
		z--
	}
	d.pendingStrike = &LightningStrike{X: x, Y: y, Z: z}
}

// TakePendingStrike returns and clears any lightning strike rolled this
// tick, for the master tick to forward into fire.IgniteCell.
func (d *Driver) TakePendingStrike() *LightningStrike {
	s := d.pendingStrike
	d.pendingStrike = nil
	return s
}
