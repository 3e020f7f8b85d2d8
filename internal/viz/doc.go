// Package viz is the terminal front end for a simulation session.
//
// [Model] ticks a [sim.Session] once per frame inside the Bubble Tea update
// loop and draws it on a braille [Canvas] through a perspective [Projector]
// that follows the session camera. [App] is a preset picker that hands over
// to the live view.
//
// # Key Bindings
//
//	Space  - Pause/resume
//	R      - Reload the current scenario
//	E      - Trigger the scenario action (eclipses)
//	F / U  - Follow the next body / free camera
//	Arrows - Orbit the view
//	+ / -  - Zoom
//	1-9    - Load a scenario preset
//	T      - Cycle colour themes
//	G      - Toggle GIF recording
//	S      - Save an SVG snapshot
//	?      - Show help overlay
package viz
