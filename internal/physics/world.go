package physics

import (
	"math"
	"sort"

	"github.com/san-kum/celestia/internal/dynamo"
)

const (
	DefaultG = 100.0

	// MinDistanceSq is the squared-distance floor below which gravity skips a
	// body for the tick.
	MinDistanceSq = 1.0
)

// World owns the live bodies of a scenario.
type World struct {
	G float64

	// Gravity is a uniform acceleration applied to every live body during
	// integration. Usually zero.
	Gravity dynamo.Vec3

	stepper     dynamo.Stepper
	bodies      []*Body
	nextID      uint64
	accumulator float64
	time        float64
}

func NewWorld(g float64, stepper dynamo.Stepper) *World {
	return &World{
		G:       g,
		stepper: stepper,
		bodies:  make([]*Body, 0, 16),
	}
}

// Add assigns the body an ID and appends it to the world.
func (w *World) Add(b *Body) uint64 {
	w.nextID++
	b.ID = w.nextID
	w.bodies = append(w.bodies, b)
	return b.ID
}

func (w *World) Find(id uint64) *Body {
	for _, b := range w.bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Remove disposes of one body regardless of its death flag.
func (w *World) Remove(id uint64) bool {
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return true
		}
	}
	return false
}

// Sweep rebuilds the body list without dead bodies and returns the removed ones.
func (w *World) Sweep() []*Body {
	var removed []*Body
	live := w.bodies[:0]
	for _, b := range w.bodies {
		if b.IsDead() {
			removed = append(removed, b)
			continue
		}
		live = append(live, b)
	}
	for i := len(live); i < len(w.bodies); i++ {
		w.bodies[i] = nil
	}
	w.bodies = live
	return removed
}

// Clear disposes every body and resets the integration clock.
func (w *World) Clear() {
	w.bodies = w.bodies[:0]
	w.accumulator = 0
	w.time = 0
}

// Bodies returns every body still held by the world, dead or alive.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) Live() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		if !b.IsDead() {
			out = append(out, b)
		}
	}
	return out
}

func (w *World) Len() int      { return len(w.bodies) }
func (w *World) Time() float64 { return w.time }

// Dominant returns the heaviest live body; ties go to the earliest added.
func (w *World) Dominant() *Body {
	live := w.Live()
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].Mass > live[j].Mass })
	return live[0]
}

// ApplyGravity pulls every live body toward the dominant body with
// G·M·m/r². The dominant body itself feels nothing and bodies do not attract
// each other. Bodies closer than sqrt(MinDistanceSq) are skipped.
func (w *World) ApplyGravity() {
	live := w.Live()
	if len(live) < 2 {
		return
	}
	star := w.Dominant()

	for _, b := range live {
		if b == star {
			continue
		}
		d := star.Position.Sub(b.Position)
		rSq := d.LengthSq()
		if rSq < MinDistanceSq {
			continue
		}
		force := w.G * star.Mass * b.Mass / rSq
		b.ApplyForce(d.Normalize().Scale(force))
	}
}

// Step feeds scaledDelta into the accumulator and integrates as many fixed
// steps as it covers, at most maxSubsteps. Time beyond the cap is dropped.
// Forces accumulated this tick act on every internal step and are cleared
// afterwards. It returns the number of internal steps taken.
func (w *World) Step(fixedDelta, scaledDelta float64, maxSubsteps int) int {
	defer w.clearForces()

	if fixedDelta <= 0 || scaledDelta <= 0 {
		return 0
	}
	w.accumulator += scaledDelta

	live := w.Live()
	steps := 0
	if len(live) == 0 {
		w.accumulator = math.Mod(w.accumulator, fixedDelta)
		return 0
	}

	sys := newBodySystem(live, w.Gravity)
	x := sys.pack()
	for w.accumulator >= fixedDelta && steps < maxSubsteps {
		x = w.stepper.Step(sys, x, w.time, fixedDelta)
		w.accumulator -= fixedDelta
		w.time += fixedDelta
		steps++
	}
	if w.accumulator >= fixedDelta {
		w.accumulator = math.Mod(w.accumulator, fixedDelta)
	}
	if steps > 0 && x.IsValid() {
		sys.unpack(x)
	}
	return steps
}

func (w *World) clearForces() {
	for _, b := range w.bodies {
		b.force = dynamo.Vec3{}
	}
}

// bodySystem exposes live bodies as a dynamo.System laid out as
// [positions..., velocities...] with per-body accelerations held constant
// over the tick.
type bodySystem struct {
	bodies []*Body
	acc    []dynamo.Vec3
}

func newBodySystem(bodies []*Body, gravity dynamo.Vec3) *bodySystem {
	acc := make([]dynamo.Vec3, len(bodies))
	for i, b := range bodies {
		acc[i] = b.force.Scale(1 / b.Mass).Add(gravity)
	}
	return &bodySystem{bodies: bodies, acc: acc}
}

func (s *bodySystem) StateDim() int { return len(s.bodies) * 6 }

func (s *bodySystem) Derive(x dynamo.State, t float64) dynamo.State {
	half := len(x) / 2
	dx := make(dynamo.State, len(x))
	copy(dx[:half], x[half:])
	for i, a := range s.acc {
		dx[half+i*3] = a.X
		dx[half+i*3+1] = a.Y
		dx[half+i*3+2] = a.Z
	}
	return dx
}

func (s *bodySystem) pack() dynamo.State {
	n := len(s.bodies)
	x := make(dynamo.State, n*6)
	half := n * 3
	for i, b := range s.bodies {
		x[i*3], x[i*3+1], x[i*3+2] = b.Position.X, b.Position.Y, b.Position.Z
		x[half+i*3], x[half+i*3+1], x[half+i*3+2] = b.Velocity.X, b.Velocity.Y, b.Velocity.Z
	}
	return x
}

func (s *bodySystem) unpack(x dynamo.State) {
	half := len(s.bodies) * 3
	for i, b := range s.bodies {
		b.Position = dynamo.V(x[i*3], x[i*3+1], x[i*3+2])
		b.Velocity = dynamo.V(x[half+i*3], x[half+i*3+1], x[half+i*3+2])
	}
}
