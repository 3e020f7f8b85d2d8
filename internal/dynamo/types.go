package dynamo

import "math"

// State is the flat vector a Stepper integrates.
type State []float64

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order system. Derive returns dX/dt at (x, t).
//
// Mechanical systems lay their state out as all positions followed by all
// velocities, so symplectic steppers can split the vector in half.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Stepper advances a System by one fixed step.
type Stepper interface {
	Step(sys System, x State, t, dt float64) State
}
