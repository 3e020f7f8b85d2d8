package metrics

import (
	"math"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/physics"
)

func TotalMass(bodies []*physics.Body) float64 {
	sum := 0.0
	for _, b := range bodies {
		sum += b.Mass
	}
	return sum
}

func Momentum(bodies []*physics.Body) dynamo.Vec3 {
	var p dynamo.Vec3
	for _, b := range bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

func KineticEnergy(bodies []*physics.Body) float64 {
	ke := 0.0
	for _, b := range bodies {
		ke += 0.5 * b.Mass * b.Velocity.LengthSq()
	}
	return ke
}

type Mass struct {
	name  string
	value float64
}

func NewMass() *Mass { return &Mass{name: "total_mass"} }

func (m *Mass) Name() string { return m.name }

func (m *Mass) Observe(bodies []*physics.Body, t float64) {
	m.value = TotalMass(bodies)
}

func (m *Mass) Value() float64 { return m.value }
func (m *Mass) Reset()         { m.value = 0 }

// MassDrift is the largest relative change of total mass from the first
// sample. Merges conserve mass, so anything above rounding is a bug.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift { return &MassDrift{name: "mass_drift"} }

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(bodies []*physics.Body, t float64) {
	mass := TotalMass(bodies)
	if m.samples == 0 {
		m.initial = mass
	}
	m.samples++
	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(mass-m.initial)/m.initial)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// MomentumDrift is the largest change in total momentum magnitude from the
// first sample.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{name: "momentum_drift"} }

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []*physics.Body, t float64) {
	p := Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Length())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}

// KineticEnergyMetric averages kinetic energy over all samples.
type KineticEnergyMetric struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergyMetric {
	return &KineticEnergyMetric{name: "kinetic_energy"}
}

func (k *KineticEnergyMetric) Name() string { return k.name }

func (k *KineticEnergyMetric) Observe(bodies []*physics.Body, t float64) {
	k.total += KineticEnergy(bodies)
	k.samples++
}

func (k *KineticEnergyMetric) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergyMetric) Reset() {
	k.total = 0
	k.samples = 0
}

// BodyCount is the body count at the last sample.
type BodyCount struct {
	name  string
	count int
}

func NewBodyCount() *BodyCount { return &BodyCount{name: "body_count"} }

func (c *BodyCount) Name() string { return c.name }

func (c *BodyCount) Observe(bodies []*physics.Body, t float64) {
	c.count = len(bodies)
}

func (c *BodyCount) Value() float64 { return float64(c.count) }
func (c *BodyCount) Reset()         { c.count = 0 }
