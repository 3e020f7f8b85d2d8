// Package physics implements the celestial body simulation.
//
//   - [Body]: one celestial object with physical and cosmetic state
//   - [World]: owns the live bodies, applies central gravity and advances
//     them with a fixed-step [dynamo.Stepper]
//   - [Resolver]: distance-based collision detection and mass, momentum and
//     volume conserving merges
//   - [Deformer]: proximity squish signal for near-contact bodies
//
// The package knows nothing about scenario modes. Callers decide which rules
// run on a tick and pass the relevant switches in (see [CollisionRules]).
//
// # Death
//
// A body is killed at most once. From that moment it is skipped by gravity,
// integration, collision and deformation, and [World.Sweep] removes it.
package physics
