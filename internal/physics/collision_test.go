package physics

import (
	"math"
	"testing"

	"github.com/san-kum/celestia/internal/dynamo"
)

func TestResolver_Threshold(t *testing.T) {
	r := NewResolver(DefaultCollisionFactor)
	tests := []struct {
		separation float64
		colliding  bool
	}{
		{8.9, true},
		{9.1, false},
		{0, true},
		{20, false},
	}

	for _, tt := range tests {
		a := mustBody(t, "a", 1, 5, dynamo.Vec3{}, dynamo.Vec3{})
		b := mustBody(t, "b", 1, 5, dynamo.V(tt.separation, 0, 0), dynamo.Vec3{})
		if got := r.Colliding(a, b); got != tt.colliding {
			t.Errorf("separation %.1f: colliding = %v, want %v", tt.separation, got, tt.colliding)
		}
	}
}

func TestNewMerge_Conservation(t *testing.T) {
	a := mustBody(t, "Alpha", 10, 3, dynamo.V(-10, 0, 0), dynamo.V(5, 0, 0))
	b := mustBody(t, "Beta", 5, 3, dynamo.V(10, 0, 0), dynamo.V(-5, 0, 0))
	a.TextureKey, b.TextureKey = "Mars", "Venus"

	m := NewMerge(a, b)

	if m.Mass != 15 {
		t.Errorf("mass not conserved: %v", m.Mass)
	}
	if math.Abs(m.Radius*m.Radius*m.Radius-54) > 1e-9 {
		t.Errorf("volume not conserved: r³=%v", m.Radius*m.Radius*m.Radius)
	}
	if math.Abs(m.Radius-math.Cbrt(54)) > 1e-12 {
		t.Errorf("expected radius cbrt(54), got %v", m.Radius)
	}
	if math.Abs(m.Position.X+10.0/3) > 1e-9 || m.Position.Y != 0 || m.Position.Z != 0 {
		t.Errorf("expected position (-3.33,0,0), got %v", m.Position)
	}
	if math.Abs(m.Velocity.X-5.0/3) > 1e-9 {
		t.Errorf("expected velocity 1.67, got %v", m.Velocity.X)
	}

	before := a.Velocity.Scale(a.Mass).Add(b.Velocity.Scale(b.Mass))
	after := m.Velocity.Scale(m.Mass)
	if before.Sub(after).Length() > 1e-9 {
		t.Errorf("momentum not conserved: before %v after %v", before, after)
	}

	if m.Name != "Merged-Alpha" || m.TextureKey != "Mars" || m.Kind != KindMerged || m.Impact {
		t.Errorf("unexpected merge tagging: %+v", m)
	}
	if a.IsDead() || b.IsDead() {
		t.Error("NewMerge must not kill its inputs")
	}
}

func TestNewMerge_ImpactorProducesMoltenBody(t *testing.T) {
	gaia := mustBody(t, "Gaia", 100, 5, dynamo.Vec3{}, dynamo.Vec3{})
	theia := mustBody(t, "Theia", 18, 2.8, dynamo.V(6, 0, 0), dynamo.V(-20, 0, 0))

	m := NewMerge(gaia, theia)
	if !m.Impact || m.Kind != KindMolten || m.Name != MoltenName || m.TextureKey != MoltenTexture {
		t.Errorf("expected molten impact product, got %+v", m)
	}

	spec := m.Spec()
	if spec.Mass != 118 || spec.Kind != KindMolten {
		t.Errorf("unexpected spawn spec: %+v", spec)
	}
}

func TestResolver_MergesAndKills(t *testing.T) {
	r := NewResolver(DefaultCollisionFactor)
	a := mustBody(t, "a", 1, 5, dynamo.Vec3{}, dynamo.Vec3{})
	b := mustBody(t, "b", 2, 5, dynamo.V(5, 0, 0), dynamo.Vec3{})
	far := mustBody(t, "far", 1, 1, dynamo.V(100, 0, 0), dynamo.Vec3{})

	out := r.Resolve([]*Body{a, b, far}, CollisionRules{})
	if len(out.Merges) != 1 {
		t.Fatalf("expected 1 merge, got %d", len(out.Merges))
	}
	if !a.IsDead() || !b.IsDead() || far.IsDead() {
		t.Error("only the colliding pair should die")
	}

	again := r.Resolve([]*Body{a, b, far}, CollisionRules{})
	if len(again.Merges) != 0 {
		t.Error("dead bodies merged twice")
	}
}

func TestResolver_DoubleMergeRace(t *testing.T) {
	r := NewResolver(DefaultCollisionFactor)
	a := mustBody(t, "a", 1, 5, dynamo.Vec3{}, dynamo.Vec3{})
	b := mustBody(t, "b", 1, 5, dynamo.V(1, 0, 0), dynamo.Vec3{})
	c := mustBody(t, "c", 1, 5, dynamo.V(2, 0, 0), dynamo.Vec3{})

	out := r.Resolve([]*Body{a, b, c}, CollisionRules{})
	if len(out.Merges) != 1 {
		t.Fatalf("each body may be consumed once per sweep, got %d merges", len(out.Merges))
	}
	if c.IsDead() {
		t.Error("third body should survive the sweep")
	}
}

func TestResolver_StarImmunity(t *testing.T) {
	r := NewResolver(DefaultCollisionFactor)
	star := mustBody(t, "Sun", 500, 6, dynamo.Vec3{}, dynamo.Vec3{})
	star.IsStar = true
	planet := mustBody(t, "Earth", 1, 2, dynamo.V(3, 0, 0), dynamo.Vec3{})

	out := r.Resolve([]*Body{star, planet}, CollisionRules{StarImmune: true})
	if len(out.Merges) != 0 {
		t.Error("collision with an immune star must not merge")
	}
	if len(out.Destroyed) != 1 || out.Destroyed[0] != planet {
		t.Fatalf("expected planet destroyed, got %v", out.Destroyed)
	}
	if star.IsDead() {
		t.Error("star must survive")
	}
}

func TestResolver_StarMergesWhenNotImmune(t *testing.T) {
	r := NewResolver(DefaultCollisionFactor)
	star := mustBody(t, "Sun", 500, 6, dynamo.Vec3{}, dynamo.Vec3{})
	star.IsStar = true
	planet := mustBody(t, "Earth", 1, 2, dynamo.V(3, 0, 0), dynamo.Vec3{})

	out := r.Resolve([]*Body{star, planet}, CollisionRules{})
	if len(out.Merges) != 1 || !star.IsDead() {
		t.Error("without immunity a star merges like any body")
	}
}

func TestResolver_TwoStarsIgnored(t *testing.T) {
	r := NewResolver(DefaultCollisionFactor)
	a := mustBody(t, "SunA", 500, 6, dynamo.Vec3{}, dynamo.Vec3{})
	b := mustBody(t, "SunB", 500, 6, dynamo.V(1, 0, 0), dynamo.Vec3{})
	a.IsStar, b.IsStar = true, true

	out := r.Resolve([]*Body{a, b}, CollisionRules{StarImmune: true})
	if len(out.Merges)+len(out.Destroyed) != 0 || a.IsDead() || b.IsDead() {
		t.Error("two immune stars should pass through each other")
	}
}

func TestResolver_SingleMergeLatch(t *testing.T) {
	r := NewResolver(DefaultCollisionFactor)
	bodies := []*Body{
		mustBody(t, "a", 1, 5, dynamo.Vec3{}, dynamo.Vec3{}),
		mustBody(t, "b", 1, 5, dynamo.V(1, 0, 0), dynamo.Vec3{}),
		mustBody(t, "c", 1, 5, dynamo.V(50, 0, 0), dynamo.Vec3{}),
		mustBody(t, "d", 1, 5, dynamo.V(51, 0, 0), dynamo.Vec3{}),
	}

	out := r.Resolve(bodies, CollisionRules{SingleMerge: true})
	if len(out.Merges) != 1 {
		t.Fatalf("single-merge rule allows one merge, got %d", len(out.Merges))
	}
	if bodies[2].IsDead() || bodies[3].IsDead() {
		t.Error("second pair must be left alone")
	}

	latched := r.Resolve(bodies, CollisionRules{SingleMerge: true, Latched: true})
	if len(latched.Merges) != 0 {
		t.Error("latched scenario must ignore further collisions")
	}
}
