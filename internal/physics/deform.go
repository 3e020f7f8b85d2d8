package physics

import "math"

const (
	DefaultDeformReach   = 1.4
	DefaultDeformContact = 0.7
)

// Deformer produces the visual squish signal for bodies in near contact.
// It never touches position or velocity.
type Deformer struct {
	Reach   float64
	Contact float64
}

func NewDeformer() *Deformer {
	return &Deformer{Reach: DefaultDeformReach, Contact: DefaultDeformContact}
}

// Apply resets every live body's signal and recomputes it pairwise. A body
// near several others keeps the strongest signal.
func (d *Deformer) Apply(bodies []*Body) {
	live := make([]*Body, 0, len(bodies))
	for _, b := range bodies {
		if !b.IsDead() {
			b.ResetDeform()
			live = append(live, b)
		}
	}

	for i := 0; i < len(live); i++ {
		for j := i + 1; j < len(live); j++ {
			a, b := live[i], live[j]
			sumR := a.Radius + b.Radius
			dist := a.Position.DistanceTo(b.Position)
			if dist > sumR*d.Reach {
				continue
			}

			contact := sumR * d.Contact
			t := clamp(1-(dist-contact)/contact, 0, 1)
			if t <= 0 {
				continue
			}

			dirAB := b.Position.Sub(a.Position).Normalize()
			a.setDeform(dirAB.Neg(), t)
			b.setDeform(dirAB, t)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
