package envsim

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/duskhollow/envsim/config"
	"github.com/duskhollow/envsim/grid"
	"github.com/duskhollow/envsim/weather"
)

// saveMagic/saveVersion guard against loading a stream from an
// incompatible build.
const (
	saveMagic   uint32 = 0x454e5653 // "ENVS"
	saveVersion uint16 = 1
)

// header carries dimensions, identity, the tunables, and the weather and
// clock scalars, per spec.md section 6's persisted state layout.
type header struct {
	Magic     uint32
	Version   uint16
	WorldID   uuid.UUID
	Dims      grid.Dims
	Config    config.SimConfig
	Weather   weatherSnapshot
	Clock     clockSnapshot
}

type clockSnapshot struct {
	GameSpeed, DayLength, GameTime, TimeOfDay float64
	DayNumber                                 int
}

type weatherSnapshot struct {
	Type            weather.Type
	Intensity       float64
	WindX, WindY    float32
	WindStrength    float64
	TransitionTimer float64
	DaysPerSeason   int
}

// Save writes a snapshot of the world to out: a gob-encoded header (dims,
// uuid, tunables, weather/clock scalars — boundary metadata, not per-cell
// state) followed by dense row-major (z,y,x) streams of grid kinds,
// water/fire/smoke/steam levels, floor dirt, temperature and ground wear,
// and finally the event log. Only those per-cell values are written: water
// source/drain/pressure/frozen bits, heat and cold sources, fire fuel and
// source pins, smoke pressure, stable bits, grid flags, the material
// overlay and the RNG state are not saved.
func (w *SimulationWorld) Save(out io.Writer) error {
	dims := w.Grid.Dims()
	h := header{
		Magic:   saveMagic,
		Version: saveVersion,
		WorldID: w.ID,
		Dims:    dims,
		Config:  w.Config,
		Weather: weatherSnapshot{
			Type:            w.Weather.State.Type,
			Intensity:       w.Weather.State.Intensity,
			WindX:           w.Weather.State.Wind.X(),
			WindY:           w.Weather.State.Wind.Y(),
			WindStrength:    w.Weather.State.WindStrength,
			TransitionTimer: w.Weather.State.TransitionTimer,
			DaysPerSeason:   w.Weather.State.DaysPerSeason,
		},
		Clock: clockSnapshot{
			GameSpeed: w.Clock.GameSpeed,
			DayLength: w.Clock.DayLength,
			GameTime:  w.Clock.GameTime,
			TimeOfDay: w.Clock.TimeOfDay,
			DayNumber: w.Clock.DayNumber,
		},
	}

	var headerBuf bytes.Buffer
	if err := gob.NewEncoder(&headerBuf).Encode(&h); err != nil {
		return fmt.Errorf("envsim: encode save header: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(headerBuf.Len())); err != nil {
		return fmt.Errorf("envsim: write header length: %w", err)
	}
	if _, err := out.Write(headerBuf.Bytes()); err != nil {
		return fmt.Errorf("envsim: write header: %w", err)
	}

	n := dims.Width * dims.Height * dims.Depth
	kinds := make([]uint8, n)
	for z := 0; z < dims.Depth; z++ {
		for y := 0; y < dims.Height; y++ {
			for x := 0; x < dims.Width; x++ {
				idx := (z*dims.Height+y)*dims.Width + x
				kinds[idx] = uint8(w.Grid.Kind(x, y, z))
			}
		}
	}
	if _, err := out.Write(kinds); err != nil {
		return fmt.Errorf("envsim: write grid kinds: %w", err)
	}

	waterLevels := make([]uint8, n)
	fireLevels := make([]uint8, n)
	smokeLevels := make([]uint8, n)
	steamLevels := make([]uint8, n)
	tempVals := make([]int8, n)
	wearVals := make([]int32, n)
	dirtVals := make([]uint8, n)
	for z := 0; z < dims.Depth; z++ {
		for y := 0; y < dims.Height; y++ {
			for x := 0; x < dims.Width; x++ {
				idx := (z*dims.Height+y)*dims.Width + x
				waterLevels[idx] = uint8(w.Water.GetWaterLevel(x, y, z))
				fireLevels[idx] = uint8(w.Fire.GetFireLevel(x, y, z))
				smokeLevels[idx] = uint8(w.Smoke.GetSmokeLevel(x, y, z))
				steamLevels[idx] = uint8(w.Steam.GetSteamLevel(x, y, z))
				tempVals[idx] = int8(w.Temperature.GetTemperature(x, y, z))
				wearVals[idx] = int32(w.Wear.GetGroundWear(x, y, z))
				dirtVals[idx] = uint8(w.FloorDirt.GetFloorDirt(x, y, z))
			}
		}
	}
	for _, buf := range [][]uint8{waterLevels, fireLevels, smokeLevels, steamLevels, dirtVals} {
		if _, err := out.Write(buf); err != nil {
			return fmt.Errorf("envsim: write field array: %w", err)
		}
	}
	if err := binary.Write(out, binary.LittleEndian, tempVals); err != nil {
		return fmt.Errorf("envsim: write temperature array: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, wearVals); err != nil {
		return fmt.Errorf("envsim: write wear array: %w", err)
	}

	entries := w.EventLog.All()
	if err := binary.Write(out, binary.LittleEndian, uint32(len(entries))); err != nil {
		return fmt.Errorf("envsim: write event log count: %w", err)
	}
	for _, e := range entries {
		b := []byte(e)
		if err := binary.Write(out, binary.LittleEndian, uint32(len(b))); err != nil {
			return fmt.Errorf("envsim: write event log entry length: %w", err)
		}
		if _, err := out.Write(b); err != nil {
			return fmt.Errorf("envsim: write event log entry: %w", err)
		}
	}
	return nil
}

// Load reconstructs a SimulationWorld from a stream written by Save. The
// caller must call RebuildSimActivityCounts on the result before the first
// tick, per spec.md section 3's lifecycle contract.
func Load(in io.Reader, preset weather.Preset) (*SimulationWorld, error) {
	var headerLen uint32
	if err := binary.Read(in, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("envsim: read header length: %w", err)
	}
	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(in, headerBuf); err != nil {
		return nil, fmt.Errorf("envsim: read header: %w", err)
	}
	var h header
	if err := gob.NewDecoder(bytes.NewReader(headerBuf)).Decode(&h); err != nil {
		return nil, fmt.Errorf("envsim: decode header: %w", err)
	}
	if h.Magic != saveMagic {
		return nil, fmt.Errorf("envsim: bad magic %x", h.Magic)
	}
	if h.Version != saveVersion {
		return nil, fmt.Errorf("envsim: unsupported save version %d", h.Version)
	}

	w := New(h.Dims, preset, 0, h.Config)
	w.ID = h.WorldID
	w.Clock.GameSpeed = h.Clock.GameSpeed
	w.Clock.DayLength = h.Clock.DayLength
	w.Clock.GameTime = h.Clock.GameTime
	w.Clock.TimeOfDay = h.Clock.TimeOfDay
	w.Clock.DayNumber = h.Clock.DayNumber
	w.Weather.State.Type = h.Weather.Type
	w.Weather.State.Intensity = h.Weather.Intensity
	w.Weather.State.Wind[0] = h.Weather.WindX
	w.Weather.State.Wind[1] = h.Weather.WindY
	w.Weather.State.WindStrength = h.Weather.WindStrength
	w.Weather.State.TransitionTimer = h.Weather.TransitionTimer
	w.Weather.State.DaysPerSeason = h.Weather.DaysPerSeason

	dims := h.Dims
	n := dims.Width * dims.Height * dims.Depth

	kinds := make([]uint8, n)
	if _, err := io.ReadFull(in, kinds); err != nil {
		return nil, fmt.Errorf("envsim: read grid kinds: %w", err)
	}

	waterLevels := make([]uint8, n)
	fireLevels := make([]uint8, n)
	smokeLevels := make([]uint8, n)
	steamLevels := make([]uint8, n)
	dirtVals := make([]uint8, n)
	for _, buf := range [][]uint8{waterLevels, fireLevels, smokeLevels, steamLevels, dirtVals} {
		if _, err := io.ReadFull(in, buf); err != nil {
			return nil, fmt.Errorf("envsim: read field array: %w", err)
		}
	}
	tempVals := make([]int8, n)
	if err := binary.Read(in, binary.LittleEndian, tempVals); err != nil {
		return nil, fmt.Errorf("envsim: read temperature array: %w", err)
	}
	wearVals := make([]int32, n)
	if err := binary.Read(in, binary.LittleEndian, wearVals); err != nil {
		return nil, fmt.Errorf("envsim: read wear array: %w", err)
	}

	for z := 0; z < dims.Depth; z++ {
		for y := 0; y < dims.Height; y++ {
			for x := 0; x < dims.Width; x++ {
				idx := (z*dims.Height+y)*dims.Width + x
				w.Grid.SetKind(x, y, z, grid.Kind(kinds[idx]))
				w.Water.SetWaterLevel(x, y, z, int(waterLevels[idx]))
				if fireLevels[idx] > 0 {
					w.Fire.IgniteCell(x, y, z)
				}
				w.Smoke.AddSmoke(x, y, z, int(smokeLevels[idx]))
				w.Steam.AddSteam(x, y, z, int(steamLevels[idx]))
				w.Temperature.SetTemperature(x, y, z, int(tempVals[idx]))
				w.Wear.SetGroundWear(x, y, z, int(wearVals[idx]))
				w.FloorDirt.SetFloorDirt(x, y, z, int(dirtVals[idx]))
			}
		}
	}

	var logCount uint32
	if err := binary.Read(in, binary.LittleEndian, &logCount); err != nil {
		return nil, fmt.Errorf("envsim: read event log count: %w", err)
	}
	for i := uint32(0); i < logCount; i++ {
		var entryLen uint32
		if err := binary.Read(in, binary.LittleEndian, &entryLen); err != nil {
			return nil, fmt.Errorf("envsim: read event log entry length: %w", err)
		}
		entryBuf := make([]byte, entryLen)
		if _, err := io.ReadFull(in, entryBuf); err != nil {
			return nil, fmt.Errorf("envsim: read event log entry: %w", err)
		}
		w.EventLog.AppendRaw(string(entryBuf))
	}

	w.RebuildSimActivityCounts()
	return w, nil
}
