package metrics

import "github.com/san-kum/celestia/internal/physics"

// Metric accumulates a scalar over the bodies of successive samples. The
// bodies passed in include merge products still waiting to spawn.
type Metric interface {
	Name() string
	Observe(bodies []*physics.Body, t float64)
	Value() float64
	Reset()
}

// Standard returns the metrics recorded for every run.
func Standard() []Metric {
	return []Metric{
		NewMass(),
		NewMassDrift(),
		NewMomentumDrift(),
		NewKineticEnergy(),
		NewBodyCount(),
	}
}
