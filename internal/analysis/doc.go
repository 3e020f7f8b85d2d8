// Package analysis inspects stored runs.
//
// [Tracks] splits samples into per-body paths. [Orbits] measures each body's
// apsides and period about the heaviest body, the period coming from the
// [PowerSpectrum] of its offset. [Portrait] draws the paths from above as
// text.
package analysis
