package envsim

import (
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/weather"
	"github.com/duskhollow/envsim/worldtime"
)

// Tick runs one fixed-order master-tick step, exactly the order spec.md
// section 5 fixes: time → weather → temperature → water freezing → fire →
// smoke → steam → water → wear. No field may observe another field's
// mid-tick state; each reads only the previous tick's results of the
// fields ahead of it in this order.
func (w *SimulationWorld) Tick() {
	w.TickWithDT(worldtime.TickDT)
}

// TickWithDT runs one tick with an explicit real-time delta, used by tests
// that want to drive the clock directly instead of at the fixed TickDT.
func (w *SimulationWorld) TickWithDT(tickDt float64) {
	if !w.Clock.Update(tickDt) {
		return
	}

	w.Weather.Update(w.Clock, w.RNG, w.Grid, w.Material)
	if strike := w.Weather.TakePendingStrike(); strike != nil {
		if w.Fire.CanBurn(strike.X, strike.Y, strike.Z) {
			floorMat := w.Material.FloorMaterial(strike.X, strike.Y, strike.Z)
			if floorMat != grid.MatNone {
				w.Fire.IgniteCell(strike.X, strike.Y, strike.Z)
				w.logEvent("lightning strike ignites (%d,%d,%d)", strike.X, strike.Y, strike.Z)
			}
		}
	}

	ambient := func(z int) float64 {
		return w.Weather.Preset.AmbientTemperature(w.Clock.DayNumber, w.Clock.TimeOfDay, w.Weather.State.DaysPerSeason, w.surfaceZ, z)
	}
	w.Temperature.Update(ambient)

	w.Water.UpdateFreezing(w.Temperature.GetTemperature, w.Steam)

	hasWater := func(x, y, z int) bool { return w.Water.HasWater(x, y, z) }
	snowLevel := func(x, y int) int { return int(w.Weather.GetSnowLevel(x, y)) }
	w.Fire.Update(w.RNG, w.Clock.GameDeltaTime, hasWater, snowLevel, w.Temperature, w.Smoke, w.Wear)

	windDot := w.Weather.GetWindDotProduct
	w.Smoke.Update(w.RNG, w.Clock.GameDeltaTime, w.Weather.State.Type.IsRaining(), w.Weather.State.WindStrength, windDot)

	condensations := w.Steam.Update(w.RNG, w.Clock.GameDeltaTime, w.Temperature)
	for _, ev := range condensations {
		w.Water.AddWater(ev.X, ev.Y, ev.Z, ev.Amount)
	}

	w.Water.Update(w.RNG, w.Clock.GameDeltaTime, w.Weather.State.Type.IsRaining(), w.Weather.State.WindStrength, windDot)
	if w.Weather.State.Type.IsRaining() {
		w.rainAddsWater()
	}

	w.updateWear()
}

// rainAddsWater adds water to open-sky cells while it is raining, per
// spec.md 4.8's "water (rain adds water to open-sky cells)" consumer note.
func (w *SimulationWorld) rainAddsWater() {
	dims := w.Grid.Dims()
	top := dims.Depth - 1
	for y := 0; y < dims.Height; y++ {
		for x := 0; x < dims.Width; x++ {
			if w.Grid.Kind(x, y, top) == grid.KindAir {
				if w.RNG.Chance(2) {
					w.Water.AddWater(x, y, top, 1)
				}
			}
		}
	}
}

func (w *SimulationWorld) updateWear() {
	fireProbe := func(x, y, z int) bool { return w.Fire.HasFire(x, y, z) }
	waterProbe := func(x, y, z int) bool { return w.Water.HasWater(x, y, z) }
	isExposed := func(x, y, z int) bool {
		dims := w.Grid.Dims()
		for zz := z + 1; zz < dims.Depth; zz++ {
			if w.Grid.Kind(x, y, zz) != grid.KindAir {
				return false
			}
		}
		return true
	}
	seasonRate := func() float64 {
		season := weather.SeasonOf(w.Clock.DayNumber, w.Weather.State.DaysPerSeason)
		if season == weather.SeasonWinter {
			return 0
		}
		return 1
	}
	w.Wear.Update(
		w.RNG,
		w.Clock.GameDeltaTime,
		w.Clock.GameHoursToGameSeconds,
		seasonRate,
		fireProbe,
		waterProbe,
		w.Weather.State.WindStrength,
		isExposed,
		nil,
		nil,
	)
}
