// Package config holds every simulation tunable as a single nested
// SimConfig record, defaulted from an embedded YAML file and overridable
// by a caller-supplied fragment.
package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type WaterConfig struct {
	MaxUpdatesPerTick   int     `yaml:"max_updates_per_tick"`
	EvapIntervalSeconds float64 `yaml:"evap_interval_seconds"`
	PressureSearchLimit int     `yaml:"pressure_search_limit"`
}

type FireConfig struct {
	MaxUpdatesPerTick      int     `yaml:"max_updates_per_tick"`
	SpreadIntervalSeconds  float64 `yaml:"spread_interval_seconds"`
	FuelIntervalSeconds    float64 `yaml:"fuel_interval_seconds"`
	SpreadBasePercent      int     `yaml:"spread_base_percent"`
	SpreadPerLevelPercent  int     `yaml:"spread_per_level_percent"`
	WaterReductionPercent  int     `yaml:"water_reduction_percent"`
}

type SmokeConfig struct {
	MaxUpdatesPerTick       int     `yaml:"max_updates_per_tick"`
	RiseIntervalSeconds     float64 `yaml:"rise_interval_seconds"`
	DissipationTimeSeconds  float64 `yaml:"dissipation_time_seconds"`
	PressureSearchLimit     int     `yaml:"pressure_search_limit"`
}

type SteamConfig struct {
	MaxUpdatesPerTick     int     `yaml:"max_updates_per_tick"`
	RiseIntervalSeconds   float64 `yaml:"rise_interval_seconds"`
	CondensationTempC     int     `yaml:"condensation_temp_c"`
	CondensationChanceInN int     `yaml:"condensation_chance_in_n"`
}

type TemperatureConfig struct {
	MaxUpdatesPerTick  int     `yaml:"max_updates_per_tick"`
	HeatSourceTempC    int     `yaml:"heat_source_temp_c"`
	ColdSourceTempC    int     `yaml:"cold_source_temp_c"`
	DecayRate          int     `yaml:"decay_rate"`
	HeatTransferSpeed  float64 `yaml:"heat_transfer_speed"`
}

type WearConfig struct {
	Max                        int     `yaml:"max"`
	TrampleAmount              int     `yaml:"trample_amount"`
	DecayRate                  int     `yaml:"decay_rate"`
	RecoveryIntervalHours      float64 `yaml:"recovery_interval_hours"`
	SaplingRegrowthEnabled     bool    `yaml:"sapling_regrowth_enabled"`
	SaplingRegrowthChancePer10K int    `yaml:"sapling_regrowth_chance_per_10000"`
	SaplingMinTreeDistance     int     `yaml:"sapling_min_tree_distance"`
}

type WeatherConfig struct {
	AmbientDepthDecayC float64 `yaml:"ambient_depth_decay_c"`
}

// SimConfig is the nested tunables record, persisted alongside save state
// so a reloaded world replays deterministically.
type SimConfig struct {
	DayLengthSeconds float64 `yaml:"day_length_seconds"`
	DaysPerSeason    int     `yaml:"days_per_season"`

	Water       WaterConfig       `yaml:"water"`
	Fire        FireConfig        `yaml:"fire"`
	Smoke       SmokeConfig       `yaml:"smoke"`
	Steam       SteamConfig       `yaml:"steam"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Wear        WearConfig        `yaml:"wear"`
	Weather     WeatherConfig     `yaml:"weather"`
}

// Default returns the built-in tunables parsed from the embedded YAML.
func Default() (SimConfig, error) {
	var c SimConfig
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		return SimConfig{}, fmt.Errorf("config: parse embedded defaults: %w", err)
	}
	return c, nil
}

// Load starts from Default and overlays override (a YAML fragment
// containing only the fields the caller wants to change).
func Load(override []byte) (SimConfig, error) {
	c, err := Default()
	if err != nil {
		return SimConfig{}, err
	}
	if len(override) == 0 {
		return c, nil
	}
	if err := yaml.Unmarshal(override, &c); err != nil {
		return SimConfig{}, fmt.Errorf("config: parse override: %w", err)
	}
	return c, nil
}
