// Package dynamo provides core primitives shared by the celestia engine.
//
// The package defines the numeric building blocks every other package leans on:
//
//   - [Vec3] and [Quat]: value types for positions, velocities and orientation
//   - [State]: flat vector integrated by a [Stepper]
//   - [System]: interface for first-order systems (dX/dt = f(X, t))
//   - [Stepper]: fixed-step numerical integrator interface
//
// # Example
//
//	step, _ := integrators.New("semi_implicit")
//	world := physics.NewWorld(100, step)
//	world.Step(1.0/60, frameDelta, 3)
//
// # Errors
//
// Domain errors are exported as sentinels (see errors.go) and wrapped with
// context by callers, so errors.Is works across package boundaries.
package dynamo
