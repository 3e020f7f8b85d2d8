package config

import "sort"

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"cinematic": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "giant_impact"
		cfg.Physics.G = 10
		cfg.Duration = 30
		return cfg
	},
	"precise": func() *Config {
		cfg := DefaultConfig()
		cfg.Integrator = "rk4"
		cfg.Physics.FixedDt = 1.0 / 240
		cfg.Physics.MaxSubsteps = 12
		return cfg
	},
	"orbit": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "orbit"
		cfg.Integrator = "leapfrog"
		cfg.Duration = 60
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
