package cinematic

import (
	"math"
	"testing"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/physics"
)

func body(t *testing.T, name string, mass float64, pos dynamo.Vec3) *physics.Body {
	t.Helper()
	b, err := physics.NewBody(physics.BodySpec{Name: name, Mass: mass, Radius: 1, Position: pos})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestDirector_PhaseTimeScales(t *testing.T) {
	tests := []struct {
		at    float64
		scale float64
		phase Phase
	}{
		{3.9, 0.7, PhaseApproach},
		{4.1, 0.3, PhaseImpact},
		{7.9, 0.3, PhaseImpact},
		{8.1, 0.5, PhaseAftermath},
		{60, 0.5, PhaseAftermath},
	}
	for _, tt := range tests {
		d := NewDirector(0)
		d.Start(nil, nil)
		cam := &Camera{}
		d.Advance(tt.at, cam)
		if d.TimeScale() != tt.scale || d.Phase() != tt.phase {
			t.Errorf("at %v: scale %v phase %v, want %v %v", tt.at, d.TimeScale(), d.Phase(), tt.scale, tt.phase)
		}
	}
}

func TestDirector_IdleTimeScale(t *testing.T) {
	d := NewDirector(0)
	cam := &Camera{Position: dynamo.V(1, 2, 3)}
	if d.Advance(0.1, cam) {
		t.Error("idle director reported a phase change")
	}
	if d.TimeScale() != 1 || d.Playing() || cam.Position != dynamo.V(1, 2, 3) {
		t.Errorf("idle director touched state: scale %v cam %v", d.TimeScale(), cam.Position)
	}
}

func TestDirector_StartLaunchesImpactor(t *testing.T) {
	gaia := body(t, "Gaia", 100, dynamo.Vec3{})
	theia := body(t, "Theia", 18, dynamo.V(-30, 0, 40))

	d := NewDirector(0)
	d.Start(theia, gaia)

	want := dynamo.V(0.6, 0, -0.8).Scale(DefaultImpactorSpeed)
	if theia.Velocity.Sub(want).Length() > 1e-9 {
		t.Errorf("impactor velocity = %v, want %v", theia.Velocity, want)
	}
	if gaia.Velocity != (dynamo.Vec3{}) {
		t.Errorf("dominant body moved: %v", gaia.Velocity)
	}
	if !d.Playing() || d.Phase() != PhaseApproach {
		t.Errorf("playing=%v phase=%v", d.Playing(), d.Phase())
	}
}

func TestDirector_PhaseChangesReported(t *testing.T) {
	d := NewDirector(0)
	d.Start(nil, nil)
	cam := &Camera{}

	var changes []Phase
	for i := 0; i < 600; i++ {
		if d.Advance(1.0/60, cam) {
			changes = append(changes, d.Phase())
		}
	}
	if len(changes) != 2 || changes[0] != PhaseImpact || changes[1] != PhaseAftermath {
		t.Errorf("changes = %v", changes)
	}
	if math.Abs(d.Elapsed()-10) > 1e-9 {
		t.Errorf("elapsed = %v", d.Elapsed())
	}
}

func TestDirector_CameraEasing(t *testing.T) {
	d := NewDirector(0)
	d.Start(nil, nil)
	cam := &Camera{Position: dynamo.V(0, 35, 160), Target: dynamo.V(10, 0, 0)}
	d.Advance(0.1, cam)

	if math.Abs(cam.Position.Z-163) > 1e-9 {
		t.Errorf("position z = %v, want 163", cam.Position.Z)
	}
	if math.Abs(cam.Target.X-9) > 1e-9 {
		t.Errorf("target x = %v, want 9", cam.Target.X)
	}

	d.Advance(10, cam)
	if cam.Target != (dynamo.Vec3{}) {
		t.Errorf("aftermath target = %v", cam.Target)
	}
}

func TestDirector_Reset(t *testing.T) {
	d := NewDirector(0)
	d.Start(nil, nil)
	d.Advance(5, &Camera{})
	d.Reset()
	if d.Playing() || d.Elapsed() != 0 || d.Phase() != PhaseIdle || d.TimeScale() != 1 {
		t.Errorf("after reset: playing=%v elapsed=%v phase=%v scale=%v", d.Playing(), d.Elapsed(), d.Phase(), d.TimeScale())
	}
}

func TestFollow(t *testing.T) {
	cam := &Camera{Position: dynamo.V(0, 0, 100)}
	Follow(cam, dynamo.V(20, 0, 0))
	if cam.Target != dynamo.V(1, 0, 0) {
		t.Errorf("target = %v", cam.Target)
	}
	if cam.Position.Z >= 100 {
		t.Errorf("camera did not pull in: %v", cam.Position)
	}

	near := &Camera{Position: dynamo.V(0, 0, 10)}
	Follow(near, dynamo.Vec3{})
	if near.Position != dynamo.V(0, 0, 10) {
		t.Errorf("camera within range moved: %v", near.Position)
	}
}
