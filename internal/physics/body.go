package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/celestia/internal/dynamo"
)

const (
	// DefaultMaxAge is the birth animation length in ticks (about 2s at 60fps).
	DefaultMaxAge = 120

	// SpinPerTick is the cosmetic self-rotation applied every tick.
	SpinPerTick = 0.005

	// ImpactorTag marks the impactor of a giant-impact scenario by name.
	ImpactorTag = "theia"

	growthStartScale = 0.01
)

// AxialTilt is the initial orientation of every body: a rotation of π/23.5
// about +z.
var AxialTilt = dynamo.AxisAngle(dynamo.V(0, 0, 1), math.Pi/23.5)

type Kind int

const (
	KindNatural Kind = iota
	KindMerged
	KindMolten
)

func (k Kind) String() string {
	switch k {
	case KindMerged:
		return "merged"
	case KindMolten:
		return "molten"
	default:
		return "natural"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// BodySpec carries everything needed to create a Body.
type BodySpec struct {
	Name       string
	TextureKey string
	Radius     float64
	Mass       float64
	Position   dynamo.Vec3
	Velocity   dynamo.Vec3
	IsStar     bool
	Growing    bool
	Kind       Kind
}

type Body struct {
	ID         uint64
	Name       string
	TextureKey string
	Kind       Kind

	Position    dynamo.Vec3
	Velocity    dynamo.Vec3
	Orientation dynamo.Quat

	Mass   float64
	Radius float64
	IsStar bool

	IsGrowing   bool
	Age         int
	MaxAge      int
	GrowthScale float64

	DeformAmount    float64
	DeformDirection dynamo.Vec3

	dead  bool
	force dynamo.Vec3
}

// NewBody validates spec and returns a live body. ID is assigned by World.Add.
func NewBody(spec BodySpec) (*Body, error) {
	if !(spec.Mass > 0) || math.IsInf(spec.Mass, 0) {
		return nil, fmt.Errorf("mass %v: %w", spec.Mass, dynamo.ErrInvalidBody)
	}
	if !(spec.Radius > 0) || math.IsInf(spec.Radius, 0) {
		return nil, fmt.Errorf("radius %v: %w", spec.Radius, dynamo.ErrInvalidBody)
	}
	if !spec.Position.IsFinite() || !spec.Velocity.IsFinite() {
		return nil, fmt.Errorf("non-finite position or velocity: %w", dynamo.ErrInvalidBody)
	}

	b := &Body{
		Name:        spec.Name,
		TextureKey:  spec.TextureKey,
		Kind:        spec.Kind,
		Position:    spec.Position,
		Velocity:    spec.Velocity,
		Orientation: AxialTilt,
		Mass:        spec.Mass,
		Radius:      spec.Radius,
		IsStar:      spec.IsStar,
		IsGrowing:   spec.Growing,
		MaxAge:      DefaultMaxAge,
		GrowthScale: 1,
	}
	if b.IsGrowing {
		b.GrowthScale = growthStartScale
	}
	return b, nil
}

func (b *Body) IsDead() bool { return b.dead }

// Kill flags the body dead. It reports whether this call did the killing.
func (b *Body) Kill() bool {
	if b.dead {
		return false
	}
	b.dead = true
	b.force = dynamo.Vec3{}
	return true
}

// IsImpactor reports whether the name designates a giant-impact impactor.
func (b *Body) IsImpactor() bool {
	return strings.Contains(strings.ToLower(b.Name), ImpactorTag)
}

// ApplyForce accumulates f for the current tick. Dead bodies ignore it.
func (b *Body) ApplyForce(f dynamo.Vec3) {
	if b.dead {
		return
	}
	b.force = b.force.Add(f)
}

func (b *Body) Force() dynamo.Vec3 { return b.force }

// Update advances the cosmetic per-tick state: birth growth and spin.
func (b *Body) Update() {
	if b.dead {
		return
	}

	if b.IsGrowing {
		b.Age++
		progress := math.Min(float64(b.Age)/float64(b.MaxAge), 1.0)
		// ease-out cubic
		b.GrowthScale = 1 - math.Pow(1-progress, 3)
		if progress >= 1 {
			b.IsGrowing = false
			b.GrowthScale = 1
		}
	}

	b.Orientation = b.Orientation.Mul(dynamo.AxisAngle(dynamo.V(0, 1, 0), SpinPerTick)).Normalize()
}

// ResetDeform clears the deformation signal before it is recomputed.
func (b *Body) ResetDeform() {
	b.DeformAmount = 0
	b.DeformDirection = dynamo.Vec3{}
}

func (b *Body) setDeform(dir dynamo.Vec3, amount float64) {
	if amount > b.DeformAmount {
		b.DeformAmount = amount
		b.DeformDirection = dir
	}
}

func (b *Body) String() string {
	return fmt.Sprintf("%s#%d(m=%.3g r=%.3g)", b.Name, b.ID, b.Mass, b.Radius)
}
