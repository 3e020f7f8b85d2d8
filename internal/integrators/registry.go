package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/celestia/internal/dynamo"
)

var registry = map[string]func() dynamo.Stepper{
	"euler":         func() dynamo.Stepper { return NewEuler() },
	"semi_implicit": func() dynamo.Stepper { return NewSemiImplicitEuler() },
	"leapfrog":      func() dynamo.Stepper { return NewLeapfrog() },
	"verlet":        func() dynamo.Stepper { return NewVerlet() },
	"rk4":           func() dynamo.Stepper { return NewRK4() },
}

// New returns a fresh stepper by name. Steppers keep scratch buffers, so each
// world needs its own instance.
func New(name string) (dynamo.Stepper, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v): %w", name, Names(), dynamo.ErrInvalidConfig)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
