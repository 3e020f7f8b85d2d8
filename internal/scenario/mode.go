package scenario

import (
	"fmt"
	"strings"

	"github.com/san-kum/celestia/internal/dynamo"
)

// Mode is the active scenario kind. Exactly one is active per session.
type Mode int

const (
	ModeCustom Mode = iota
	ModeCollision
	ModeOrbit
	ModeSolarEclipse
	ModeLunarEclipse
	ModePlanetBirth
	ModeGiantImpact
)

var modeNames = map[Mode]string{
	ModeCustom:       "custom",
	ModeCollision:    "collision",
	ModeOrbit:        "solar_system",
	ModeSolarEclipse: "solar_eclipse",
	ModeLunarEclipse: "lunar_eclipse",
	ModePlanetBirth:  "planet_birth",
	ModeGiantImpact:  "giant_impact",
}

var modeAliases = map[string]Mode{
	"custom":        ModeCustom,
	"collision":     ModeCollision,
	"orbit":         ModeOrbit,
	"solar_system":  ModeOrbit,
	"solar_eclipse": ModeSolarEclipse,
	"lunar_eclipse": ModeLunarEclipse,
	"planet_birth":  ModePlanetBirth,
	"giant_impact":  ModeGiantImpact,
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a scenarioType tag to a Mode. Matching trims whitespace and
// ignores case.
func ParseMode(tag string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if key == "" {
		return ModeCustom, fmt.Errorf("empty scenarioType: %w", dynamo.ErrUnknownMode)
	}
	m, ok := modeAliases[key]
	if !ok {
		return ModeCustom, fmt.Errorf("%q: %w", tag, dynamo.ErrUnknownMode)
	}
	return m, nil
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{ModeCustom, ModeCollision, ModeOrbit, ModeSolarEclipse, ModeLunarEclipse, ModePlanetBirth, ModeGiantImpact}
}

// Policy is the rule table row for one mode.
type Policy struct {
	Gravity     bool
	Collisions  bool
	Deformation bool
	Cinematic   bool
	StarImmune  bool
	SingleMerge bool
	Triggerable bool
}

var policies = map[Mode]Policy{
	// collision scripts trajectories directly and lets stars break apart
	ModeCollision:    {Gravity: false, Collisions: true},
	ModeOrbit:        {Gravity: true, Collisions: true, StarImmune: true},
	ModeSolarEclipse: {Gravity: true, Collisions: false, StarImmune: true, Triggerable: true},
	ModeLunarEclipse: {Gravity: true, Collisions: false, StarImmune: true, Triggerable: true},
	ModePlanetBirth:  {Gravity: false, Collisions: true, StarImmune: true},
	ModeGiantImpact: {
		Gravity:     true,
		Collisions:  true,
		Deformation: true,
		Cinematic:   true,
		StarImmune:  true,
		SingleMerge: true,
	},
	ModeCustom: {Gravity: true, Collisions: true, StarImmune: true},
}

func (m Mode) Policy() Policy {
	return policies[m]
}
