// Package worldtime translates real tick time into game time: the
// gameSpeed-scaled delta, the wall clock (time of day, day number), and
// helpers for converting game-hours to game-seconds.
package worldtime

// TickDT is the fixed per-tick real-time delta the master scheduler uses.
// Determinism requires every tick to advance by exactly this much.
const TickDT = 1.0 / 60.0

// DefaultDayLength is the default game-seconds-per-day.
const DefaultDayLength = 1200.0

// Clock holds the world's wall-clock state and the gameSpeed multiplier
// that scales real ticks into game-seconds.
type Clock struct {
	GameSpeed float64 // <= 0 pauses the clock
	DayLength float64 // game-seconds per in-game day

	GameTime      float64 // total elapsed game-seconds since world start
	GameDeltaTime float64 // game-seconds elapsed this tick (set by Update)
	TimeOfDay     float64 // 0..24
	DayNumber     int     // 1-based
}

// New returns a Clock at day 1, midnight, running at normal speed with the
// given day length.
func New(dayLength float64) *Clock {
	return &Clock{GameSpeed: 1.0, DayLength: dayLength, DayNumber: 1}
}

// GameHoursToGameSeconds converts h game-hours to game-seconds using this
// clock's day length.
func (c *Clock) GameHoursToGameSeconds(h float64) float64 {
	return h * c.DayLength / 24.0
}

// RatePerGameSecond converts a "per game-hour" rate into "per game-second",
// the inverse scaling an accumulator-gated system needs to convert a
// tunable hourly rate into the amount to apply for a given
// GameDeltaTime slice.
func (c *Clock) RatePerGameSecond(perHour float64) float64 {
	if c.DayLength <= 0 {
		return 0
	}
	return perHour * 24.0 / c.DayLength
}

// Update advances the clock by tickDt real seconds. Returns false without
// advancing anything when the clock is paused (GameSpeed <= 0).
func (c *Clock) Update(tickDt float64) bool {
	if c.GameSpeed <= 0 {
		c.GameDeltaTime = 0
		return false
	}
	c.GameDeltaTime = tickDt * c.GameSpeed
	c.GameTime += c.GameDeltaTime
	c.TimeOfDay += c.GameDeltaTime / c.DayLength * 24.0
	for c.TimeOfDay >= 24.0 {
		c.TimeOfDay -= 24.0
		c.DayNumber++
	}
	return true
}

// Stamp captures hour/minute for the event log timestamp prefix; season
// information is layered on by package weather, which knows the calendar.
type Stamp struct {
	Hour, Minute int
}

// Now returns the current hour/minute split of TimeOfDay.
func (c *Clock) Now() Stamp {
	hour := int(c.TimeOfDay)
	minute := int((c.TimeOfDay - float64(hour)) * 60.0)
	return Stamp{Hour: hour, Minute: minute}
}

// RunGameSeconds is a test helper: it calls tick repeatedly (each call
// representing one master-tick invocation at TickDT) until GameTime has
// advanced by at least seconds, or maxTicks is exhausted as a safety
// valve against a paused clock.
func RunGameSeconds(c *Clock, seconds float64, tick func()) {
	target := c.GameTime + seconds
	const maxTicks = 10_000_000
	for i := 0; i < maxTicks && c.GameTime < target; i++ {
		tick()
	}
}
