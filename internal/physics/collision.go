package physics

import (
	"math"

	"github.com/san-kum/celestia/internal/dynamo"
)

const (
	// DefaultCollisionFactor declares contact at 90% of the summed radii.
	// Discrete steps let bodies interpenetrate slightly before detection.
	DefaultCollisionFactor = 0.9

	// MinMergeMass is the combined-mass floor below which merge weighting
	// falls back to an even split.
	MinMergeMass = 1e-9

	MoltenName    = "Molten-Earth"
	MoltenTexture = "MoltenEarth"
	mergedPrefix  = "Merged-"
)

// CollisionRules are the per-tick switches the caller derives from the
// active scenario.
type CollisionRules struct {
	// StarImmune makes stars indestructible: the other body of a star pair
	// is destroyed without a merge.
	StarImmune bool

	// SingleMerge allows at most one merge for the whole scenario. Latched
	// reports that it already happened.
	SingleMerge bool
	Latched     bool
}

// Merge is the ephemeral result of two colliding bodies.
type Merge struct {
	A, B *Body

	Name       string
	TextureKey string
	Kind       Kind
	Impact     bool

	Mass     float64
	Radius   float64
	Position dynamo.Vec3
	Velocity dynamo.Vec3
}

// NewMerge computes the successor of a and b: summed mass, volume-conserving
// radius, mass-weighted position and momentum-conserving velocity. It does not
// kill the inputs.
func NewMerge(a, b *Body) Merge {
	mass := a.Mass + b.Mass
	radius := math.Cbrt(a.Radius*a.Radius*a.Radius + b.Radius*b.Radius*b.Radius)

	ratio := 0.5
	if mass >= MinMergeMass {
		ratio = a.Mass / mass
	}
	pos := a.Position.Scale(ratio).Add(b.Position.Scale(1 - ratio))
	vel := a.Velocity.Scale(ratio).Add(b.Velocity.Scale(1 - ratio))
	if mass >= MinMergeMass {
		vel = a.Velocity.Scale(a.Mass).Add(b.Velocity.Scale(b.Mass)).Scale(1 / mass)
	}

	m := Merge{
		A: a, B: b,
		Mass:     mass,
		Radius:   radius,
		Position: pos,
		Velocity: vel,
	}
	if a.IsImpactor() || b.IsImpactor() {
		m.Name = MoltenName
		m.TextureKey = MoltenTexture
		m.Kind = KindMolten
		m.Impact = true
		return m
	}
	m.Name = mergedPrefix + a.Name
	m.Kind = KindMerged
	m.TextureKey = b.TextureKey
	if a.Mass > b.Mass {
		m.TextureKey = a.TextureKey
	}
	return m
}

// Spec returns the parameters of the body the merge spawns.
func (m Merge) Spec() BodySpec {
	return BodySpec{
		Name:       m.Name,
		TextureKey: m.TextureKey,
		Radius:     m.Radius,
		Mass:       m.Mass,
		Position:   m.Position,
		Velocity:   m.Velocity,
		Kind:       m.Kind,
	}
}

// Outcome lists what one collision sweep did.
type Outcome struct {
	Merges    []Merge
	Destroyed []*Body
}

// Resolver detects overlapping bodies by center distance.
type Resolver struct {
	Factor float64
}

func NewResolver(factor float64) *Resolver {
	if factor <= 0 {
		factor = DefaultCollisionFactor
	}
	return &Resolver{Factor: factor}
}

// Colliding reports whether a and b are closer than Factor·(ra+rb).
func (r *Resolver) Colliding(a, b *Body) bool {
	return a.Position.DistanceTo(b.Position) < r.Factor*(a.Radius+b.Radius)
}

// Resolve checks every unordered pair of live bodies once. Merged and
// destroyed bodies are killed immediately, so a body is consumed by at most
// one pair per sweep.
func (r *Resolver) Resolve(bodies []*Body, rules CollisionRules) Outcome {
	var out Outcome
	if rules.SingleMerge && rules.Latched {
		return out
	}

	live := make([]*Body, 0, len(bodies))
	for _, b := range bodies {
		if !b.IsDead() {
			live = append(live, b)
		}
	}
	if len(live) < 2 {
		return out
	}

	for i := 0; i < len(live); i++ {
		for j := i + 1; j < len(live); j++ {
			a, b := live[i], live[j]
			if a.IsDead() || b.IsDead() {
				continue
			}
			if !r.Colliding(a, b) {
				continue
			}

			if rules.StarImmune && (a.IsStar || b.IsStar) {
				if a.IsStar && b.IsStar {
					continue
				}
				victim := b
				if b.IsStar {
					victim = a
				}
				victim.Kill()
				out.Destroyed = append(out.Destroyed, victim)
				continue
			}

			m := NewMerge(a, b)
			a.Kill()
			b.Kill()
			out.Merges = append(out.Merges, m)
			if rules.SingleMerge {
				return out
			}
		}
	}
	return out
}
