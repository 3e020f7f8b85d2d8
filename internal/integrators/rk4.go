package integrators

import "github.com/san-kum/celestia/internal/dynamo"

// RK4 is the classic four-stage Runge-Kutta method. Stage buffers are reused
// between steps of the same dimension.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

// stage evaluates sys at x + h*prev and stores the slope in dst.
func (r *RK4) stage(sys dynamo.System, dst, x, prev dynamo.State, t, h float64) {
	for i := range x {
		r.scratch[i] = x[i] + h*prev[i]
	}
	copy(dst, sys.Derive(r.scratch, t+h))
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.ensureScratch(len(x))

	copy(r.k[0], sys.Derive(x, t))
	r.stage(sys, r.k[1], x, r.k[0], t, dt/2)
	r.stage(sys, r.k[2], x, r.k[1], t, dt/2)
	r.stage(sys, r.k[3], x, r.k[2], t, dt)

	result := make(dynamo.State, len(x))
	dt6 := dt / 6
	for i := range x {
		result[i] = x[i] + dt6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return result
}
