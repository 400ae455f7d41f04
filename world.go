// Package envsim composes the cellular environmental simulation core: a
// voxel grid and its coupled water, fire, smoke, steam, temperature,
// ground-wear, and weather fields, advanced one fixed-order tick at a
// time by SimulationWorld.Tick.
package envsim

import (
	"github.com/google/uuid"

	"github.com/duskhollow/envsim/applog"
	"github.com/duskhollow/envsim/config"
	"github.com/duskhollow/envsim/eventlog"
	"github.com/duskhollow/envsim/fire"
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/presence"
	"github.com/duskhollow/envsim/rng"
	"github.com/duskhollow/envsim/smoke"
	"github.com/duskhollow/envsim/steam"
	"github.com/duskhollow/envsim/surface"
	"github.com/duskhollow/envsim/temperature"
	"github.com/duskhollow/envsim/water"
	"github.com/duskhollow/envsim/weather"
	"github.com/duskhollow/envsim/worldtime"
)

// SimulationWorld is the single value every tick is applied to. It
// replaces the source system's process-global fields and tunables with an
// explicit record the caller owns and passes by reference into every step.
type SimulationWorld struct {
	ID uuid.UUID

	Config config.SimConfig
	Logger applog.Logger

	Grid     *grid.Grid
	Material *grid.MaterialOverlay

	Clock   *worldtime.Clock
	Weather *weather.Driver

	Temperature *temperature.Field
	Water       *water.Field
	Fire        *fire.Field
	Smoke       *smoke.Field
	Steam       *steam.Field
	Wear        *surface.Wear
	FloorDirt   *surface.FloorDirt

	RNG       *rng.Source
	EventLog  *eventlog.Log
	Presence  *presence.Registry

	surfaceZ int // z-level considered "surface" for ambient-temperature depth decay
}

// New creates a SimulationWorld of the given dimensions, biome preset, and
// seed, with every field initialized to empty per spec.md's Init<Field>
// lifecycle contract.
func New(dims grid.Dims, preset weather.Preset, seed int64, cfg config.SimConfig) *SimulationWorld {
	g := grid.New(dims, nil)
	mat := grid.NewMaterialOverlay(g)

	speciesBySoil := preset.TreeSpeciesBySoil

	w := &SimulationWorld{
		ID:          uuid.New(),
		Config:      cfg,
		Logger:      applog.Nop,
		Grid:        g,
		Material:    mat,
		Clock:       worldtime.New(cfg.DayLengthSeconds),
		Weather:     weather.New(preset, dims, seed),
		Temperature: temperature.New(g, mat),
		Water:       water.New(g),
		Fire:        fire.New(g, mat),
		Smoke:       smoke.New(g),
		Steam:       steam.New(g),
		Wear:        surface.NewWear(g, mat, speciesBySoil),
		FloorDirt:   surface.NewFloorDirt(g, mat),
		RNG:         rng.New(seed),
		EventLog:    eventlog.New(),
		surfaceZ:    dims.Depth - 1,
	}
	w.Weather.State.DaysPerSeason = cfg.DaysPerSeason

	w.Presence = &presence.Registry{
		Water:       w.Water,
		Fire:        w.Fire,
		Smoke:       w.Smoke,
		Steam:       w.Steam,
		Temperature: w.Temperature,
		Wear:        w.Wear,
		Dirt:        w.FloorDirt,
	}
	return w
}

// ResetTestState reseeds the world's PRNG, the deterministic-test entry
// point spec.md calls ResetTestState(seed). Weather, wind noise and field
// state are left as they are.
func (w *SimulationWorld) ResetTestState(seed int64) {
	w.RNG.ResetTestState(seed)
}

// RebuildSimActivityCounts recomputes every presence counter from ground
// truth. Must be called once after a save is loaded and before the first
// tick of the restored world.
func (w *SimulationWorld) RebuildSimActivityCounts() presence.Counts {
	return w.Presence.RebuildSimActivityCounts()
}

// logEvent appends a season/time-stamped diagnostic line to the event log,
// in the exact "[SeasonAbbr DdayInSeason HH:MM] message" format the
// original source's debug dumps used.
func (w *SimulationWorld) logEvent(format string, args ...interface{}) {
	season := weather.SeasonOf(w.Clock.DayNumber, w.Weather.State.DaysPerSeason)
	dayInSeason := weather.DayInSeason(w.Clock.DayNumber, w.Weather.State.DaysPerSeason)
	now := w.Clock.Now()
	w.EventLog.Append(eventlog.Stamp{
		SeasonAbbr:  season.Abbr(),
		DayInSeason: dayInSeason,
		Hour:        now.Hour,
		Minute:      now.Minute,
	}, format, args...)
}
