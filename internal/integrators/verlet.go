package integrators

import "github.com/san-kum/celestia/internal/dynamo"

// Verlet and Leapfrog are both written as kick-drift-kick over the
// positions-then-velocities layout bodies are packed in. They differ only in
// the velocities the closing derivative is evaluated with, which matters for
// velocity-dependent systems. A world's body system holds each body's
// acceleration fixed for the tick, so there the two are the same scheme and
// both are exact for the parabolic path that fixed acceleration gives.

// halves splits a state into its position and velocity views.
func halves(x dynamo.State) (pos, vel dynamo.State) {
	h := len(x) / 2
	return x[:h], x[h:]
}

func accel(sys dynamo.System, x dynamo.State, t float64) dynamo.State {
	_, a := halves(sys.Derive(x, t))
	return a
}

func kick(vel, acc dynamo.State, h float64) {
	for i := range vel {
		vel[i] += h * acc[i]
	}
}

func drift(pos, vel dynamo.State, h float64) {
	for i := range pos {
		pos[i] += h * vel[i]
	}
}

// kickDriftKick advances x by dt. The closing acceleration is taken at the
// drifted positions with the start velocities when startVel is set, and with
// the half-kicked velocities otherwise.
func kickDriftKick(sys dynamo.System, scratch, x dynamo.State, t, dt float64, startVel bool) dynamo.State {
	out := make(dynamo.State, len(x))
	copy(out, x)
	pos, vel := halves(out)

	kick(vel, accel(sys, x, t), dt/2)
	drift(pos, vel, dt)

	copy(scratch, out)
	if startVel {
		_, v0 := halves(x)
		_, sv := halves(scratch)
		copy(sv, v0)
	}
	kick(vel, accel(sys, scratch, t+dt), dt/2)
	return out
}

// Verlet is velocity Verlet. The end-of-step force is evaluated with the
// velocities the step started from.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if len(v.scratch) != len(x) {
		v.scratch = make(dynamo.State, len(x))
	}
	return kickDriftKick(sys, v.scratch, x, t, dt, true)
}

// Leapfrog is the synchronised kick-drift-kick form, which evaluates the
// closing force with the half-step velocities.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if len(l.scratch) != len(x) {
		l.scratch = make(dynamo.State, len(x))
	}
	return kickDriftKick(sys, l.scratch, x, t, dt, false)
}
