package scenario

import (
	"fmt"

	"github.com/san-kum/celestia/internal/dynamo"
)

// Registry maps each mode to the builder that lays out its bodies.
type Registry struct {
	builders map[Mode]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[Mode]Builder)}

	r.builders[ModeCollision] = buildCollision
	r.builders[ModeOrbit] = buildOrbit
	r.builders[ModePlanetBirth] = buildBirth
	r.builders[ModeSolarEclipse] = buildSolarEclipse
	r.builders[ModeLunarEclipse] = buildLunarEclipse
	r.builders[ModeGiantImpact] = buildGiantImpact
	r.builders[ModeCustom] = buildCustom

	return r
}

// Register replaces the builder for a mode.
func (r *Registry) Register(m Mode, b Builder) {
	r.builders[m] = b
}

// Build validates d and constructs its scenario. On error nothing is returned,
// so callers never see a partially built scenario.
func (r *Registry) Build(d *Descriptor, env Env) (*Setup, error) {
	if d == nil {
		return nil, fmt.Errorf("nil descriptor: %w", dynamo.ErrInvalidScenario)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	mode, _ := d.Mode()

	build, ok := r.builders[mode]
	if !ok {
		return nil, fmt.Errorf("no builder for %s: %w", mode, dynamo.ErrUnknownMode)
	}
	setup, err := build(d, env)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w: %w", mode, dynamo.ErrInvalidScenario, err)
	}
	setup.Mode = mode
	return setup, nil
}
