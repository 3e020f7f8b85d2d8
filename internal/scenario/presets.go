package scenario

import (
	"fmt"
	"sort"

	"github.com/san-kum/celestia/internal/dynamo"
)

// Presets holds built-in descriptors, one per mode plus a few custom layouts.
var Presets = map[string]func() *Descriptor{
	"collision": func() *Descriptor { return &Descriptor{ScenarioType: "collision"} },
	"orbit": func() *Descriptor {
		return &Descriptor{ScenarioType: "orbit", Objects: []ObjectSpec{
			Object("Sun", "Sun", 6, 500),
			Object("Mercury", "Mercury", 1, 0.5),
			Object("Venus", "Venus", 1.8, 1),
			Object("Earth", "Earth", 2, 1),
		}}
	},
	"solar_eclipse": func() *Descriptor { return &Descriptor{ScenarioType: "solar_eclipse"} },
	"lunar_eclipse": func() *Descriptor { return &Descriptor{ScenarioType: "lunar_eclipse"} },
	"planet_birth":  func() *Descriptor { return &Descriptor{ScenarioType: "planet_birth"} },
	"giant_impact":  func() *Descriptor { return &Descriptor{ScenarioType: "giant_impact"} },
	"two_body": func() *Descriptor {
		return &Descriptor{ScenarioType: "custom", Objects: []ObjectSpec{
			Object("A", "Earth", 5, 10).At(dynamo.V(-10, 0, 0), dynamo.V(5, 0, 0)),
			Object("B", "Mars", 3, 5).At(dynamo.V(10, 0, 0), dynamo.V(-5, 0, 0)),
		}}
	},
	"inner_planets": func() *Descriptor {
		return &Descriptor{
			ScenarioType: "custom",
			Objects: []ObjectSpec{
				Object("Sun", "Sun", 8, 800).At(dynamo.Vec3{}, dynamo.Vec3{}),
				Object("Mercury", "Mercury", 1, 0.3).At(dynamo.V(25, 0, 0), dynamo.V(0, 0, 56)),
				Object("Venus", "Venus", 1.8, 0.8).At(dynamo.V(40, 0, 0), dynamo.V(0, 0, 44)),
				Object("Earth", "Earth", 2, 1).At(dynamo.V(60, 0, 0), dynamo.V(0, 0, 36)),
				Object("Mars", "Mars", 1.4, 0.6).At(dynamo.V(85, 0, 0), dynamo.V(0, 0, 30)),
			},
			CameraPosition: &dynamo.Vec3{Y: 120, Z: 160},
		}
	},
}

func Preset(name string) (*Descriptor, error) {
	fn, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q: %w", name, dynamo.ErrInvalidScenario)
	}
	return fn(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
