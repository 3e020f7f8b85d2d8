package config

import (
	"fmt"
	"os"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/integrators"
	"gopkg.in/yaml.v3"
)

const (
	DefaultG               = 100.0
	DefaultFixedDt         = 1.0 / 60
	DefaultMaxSubsteps     = 3
	DefaultFrameDt         = 1.0 / 60
	DefaultDuration        = 20.0
	DefaultMergeDelay      = 0.05
	DefaultCollisionFactor = 0.9
	DefaultDeformReach     = 1.4
	DefaultDeformContact   = 0.7
	DefaultImpactorSpeed   = 20.0
	DefaultImpactSubsteps  = 10
	DefaultSampleEvery     = 6
	DefaultIntegrator      = "semi_implicit"
	DefaultLogLevel        = "info"
)

type Config struct {
	Scenario    string          `yaml:"scenario"`
	Integrator  string          `yaml:"integrator"`
	Dt          float64         `yaml:"dt"`
	Duration    float64         `yaml:"duration"`
	SampleEvery int             `yaml:"sample_every"`
	Seed        int64           `yaml:"seed"`
	LogLevel    string          `yaml:"log_level"`
	Physics     PhysicsConfig   `yaml:"physics"`
	Cinematic   CinematicConfig `yaml:"cinematic"`
}

type PhysicsConfig struct {
	G               float64     `yaml:"g"`
	FixedDt         float64     `yaml:"fixed_dt"`
	MaxSubsteps     int         `yaml:"max_substeps"`
	Gravity         dynamo.Vec3 `yaml:"gravity"`
	CollisionFactor float64     `yaml:"collision_factor"`
	MergeDelay      float64     `yaml:"merge_delay"`
	DeformReach     float64     `yaml:"deform_reach"`
	DeformContact   float64     `yaml:"deform_contact"`
}

type CinematicConfig struct {
	ImpactorSpeed float64 `yaml:"impactor_speed"`
	// ImpactSubsteps raises the substep cap while the impact plays in slow motion.
	ImpactSubsteps int `yaml:"impact_substeps"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:    "collision",
		Integrator:  DefaultIntegrator,
		Dt:          DefaultFrameDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Seed:        1,
		LogLevel:    DefaultLogLevel,
		Physics: PhysicsConfig{
			G:               DefaultG,
			FixedDt:         DefaultFixedDt,
			MaxSubsteps:     DefaultMaxSubsteps,
			CollisionFactor: DefaultCollisionFactor,
			MergeDelay:      DefaultMergeDelay,
			DeformReach:     DefaultDeformReach,
			DeformContact:   DefaultDeformContact,
		},
		Cinematic: CinematicConfig{
			ImpactorSpeed:  DefaultImpactorSpeed,
			ImpactSubsteps: DefaultImpactSubsteps,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, dynamo.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting the engine cannot run with.
func (c *Config) Validate() error {
	invalid := func(field string, v any) error {
		return fmt.Errorf("%s = %v: %w", field, v, dynamo.ErrInvalidConfig)
	}
	switch {
	case c.Dt <= 0:
		return invalid("dt", c.Dt)
	case c.Duration < 0:
		return invalid("duration", c.Duration)
	case c.SampleEvery < 1:
		return invalid("sample_every", c.SampleEvery)
	case c.Physics.G < 0:
		return invalid("physics.g", c.Physics.G)
	case c.Physics.FixedDt <= 0:
		return invalid("physics.fixed_dt", c.Physics.FixedDt)
	case c.Physics.MaxSubsteps < 1:
		return invalid("physics.max_substeps", c.Physics.MaxSubsteps)
	case !c.Physics.Gravity.IsFinite():
		return invalid("physics.gravity", c.Physics.Gravity)
	case c.Physics.CollisionFactor <= 0:
		return invalid("physics.collision_factor", c.Physics.CollisionFactor)
	case c.Physics.MergeDelay < 0:
		return invalid("physics.merge_delay", c.Physics.MergeDelay)
	case c.Physics.DeformContact <= 0 || c.Physics.DeformReach < c.Physics.DeformContact:
		return invalid("physics.deform_reach", c.Physics.DeformReach)
	case c.Cinematic.ImpactorSpeed <= 0:
		return invalid("cinematic.impactor_speed", c.Cinematic.ImpactorSpeed)
	case c.Cinematic.ImpactSubsteps < 1:
		return invalid("cinematic.impact_substeps", c.Cinematic.ImpactSubsteps)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return err
	}
	return nil
}

// Steps is the number of frames a headless run of Duration takes.
func (c *Config) Steps() int {
	return int(c.Duration/c.Dt + 0.5)
}
