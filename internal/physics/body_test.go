package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/celestia/internal/dynamo"
)

func mustBody(t *testing.T, name string, mass, radius float64, pos, vel dynamo.Vec3) *Body {
	t.Helper()
	b, err := NewBody(BodySpec{Name: name, Mass: mass, Radius: radius, Position: pos, Velocity: vel})
	if err != nil {
		t.Fatalf("NewBody(%s): %v", name, err)
	}
	return b
}

func TestNewBody_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		spec BodySpec
	}{
		{"zero mass", BodySpec{Mass: 0, Radius: 1}},
		{"negative mass", BodySpec{Mass: -1, Radius: 1}},
		{"zero radius", BodySpec{Mass: 1, Radius: 0}},
		{"NaN radius", BodySpec{Mass: 1, Radius: math.NaN()}},
		{"inf mass", BodySpec{Mass: math.Inf(1), Radius: 1}},
		{"NaN position", BodySpec{Mass: 1, Radius: 1, Position: dynamo.V(math.NaN(), 0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBody(tt.spec)
			if !errors.Is(err, dynamo.ErrInvalidBody) {
				t.Errorf("expected ErrInvalidBody, got %v", err)
			}
		})
	}
}

func TestBody_KillIsIdempotent(t *testing.T) {
	b := mustBody(t, "a", 1, 1, dynamo.Vec3{}, dynamo.Vec3{})
	if !b.Kill() {
		t.Fatal("first Kill should report true")
	}
	if b.Kill() {
		t.Error("second Kill should report false")
	}

	pos := b.Position
	b.ApplyForce(dynamo.V(10, 0, 0))
	b.Update()
	if b.Force() != (dynamo.Vec3{}) {
		t.Error("dead body accumulated force")
	}
	if b.Position != pos {
		t.Error("dead body moved")
	}
}

func TestBody_Growth(t *testing.T) {
	b, err := NewBody(BodySpec{Name: "baby", Mass: 1, Radius: 2, Growing: true})
	if err != nil {
		t.Fatal(err)
	}
	if b.GrowthScale != growthStartScale {
		t.Fatalf("expected start scale %v, got %v", growthStartScale, b.GrowthScale)
	}

	for i := 0; i < DefaultMaxAge/2; i++ {
		b.Update()
	}
	if math.Abs(b.GrowthScale-0.875) > 1e-12 {
		t.Errorf("expected scale 0.875 at half age, got %v", b.GrowthScale)
	}

	for i := 0; i < DefaultMaxAge; i++ {
		b.Update()
	}
	if b.IsGrowing || b.GrowthScale != 1 {
		t.Errorf("expected growth finished at scale 1, got growing=%v scale=%v", b.IsGrowing, b.GrowthScale)
	}
	if b.Age != DefaultMaxAge {
		t.Errorf("age should stop at %d, got %d", DefaultMaxAge, b.Age)
	}
}

func TestBody_SpinKeepsUnitQuaternion(t *testing.T) {
	b := mustBody(t, "a", 1, 1, dynamo.Vec3{}, dynamo.Vec3{})
	for i := 0; i < 1000; i++ {
		b.Update()
	}
	q := b.Orientation
	n := q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
	if math.Abs(n-1) > 1e-9 {
		t.Errorf("orientation norm drifted: %v", n)
	}
}

func TestBody_IsImpactor(t *testing.T) {
	for name, want := range map[string]bool{"Theia": true, "proto-THEIA": true, "Gaia": false, "": false} {
		b := &Body{Name: name}
		if got := b.IsImpactor(); got != want {
			t.Errorf("IsImpactor(%q) = %v, want %v", name, got, want)
		}
	}
}
