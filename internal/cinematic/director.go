// Package cinematic scripts the giant-impact camera timeline and the
// free-camera follow behaviour.
package cinematic

import (
	"math"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/physics"
)

const (
	DefaultImpactorSpeed = 20.0

	approachEnd = 4.0
	impactEnd   = 8.0
	orbitRadius = 150.0
	orbitOmega  = 0.2
)

// Phase of the giant-impact timeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseApproach
	PhaseImpact
	PhaseAftermath
)

func (p Phase) String() string {
	switch p {
	case PhaseApproach:
		return "approach"
	case PhaseImpact:
		return "impact"
	case PhaseAftermath:
		return "aftermath"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Camera is the view the renderer should use.
type Camera struct {
	Position dynamo.Vec3 `json:"position"`
	Target   dynamo.Vec3 `json:"target"`
}

// Ease moves the camera a fraction k of the way toward pos and target.
func (c *Camera) Ease(pos, target dynamo.Vec3, kPos, kTarget float64) {
	c.Position = c.Position.Lerp(pos, kPos)
	c.Target = c.Target.Lerp(target, kTarget)
}

// Director plays the giant-impact timeline. The timeline is keyed on elapsed
// wall time only.
type Director struct {
	ImpactorSpeed float64

	playing   bool
	elapsed   float64
	timeScale float64
	phase     Phase
}

func NewDirector(impactorSpeed float64) *Director {
	if impactorSpeed <= 0 {
		impactorSpeed = DefaultImpactorSpeed
	}
	return &Director{ImpactorSpeed: impactorSpeed, timeScale: 1}
}

// Start begins the timeline and launches the impactor toward dominant.
func (d *Director) Start(impactor, dominant *physics.Body) {
	d.playing = true
	d.elapsed = 0
	d.phase = PhaseApproach
	d.timeScale = 0.7

	if impactor == nil || dominant == nil || impactor == dominant {
		return
	}
	dir := dominant.Position.Sub(impactor.Position)
	if dir.LengthSq() == 0 {
		return
	}
	impactor.Velocity = dir.Normalize().Scale(d.ImpactorSpeed)
}

// Advance moves the timeline by rawDelta seconds and eases cam. It reports
// whether the phase changed.
func (d *Director) Advance(rawDelta float64, cam *Camera) bool {
	if !d.playing {
		d.timeScale = 1
		return false
	}
	d.elapsed += rawDelta
	prev := d.phase

	origin := dynamo.Vec3{}
	switch {
	case d.elapsed < approachEnd:
		d.phase = PhaseApproach
		d.timeScale = 0.7
		cam.Ease(dynamo.V(0, 35, 260), origin, 0.03, 0.1)
	case d.elapsed < impactEnd:
		d.phase = PhaseImpact
		d.timeScale = 0.3
		cam.Position = cam.Position.Lerp(dynamo.V(0, 20, 120), 0.05)
	default:
		d.phase = PhaseAftermath
		d.timeScale = 0.5
		t := d.elapsed - impactEnd
		orbit := dynamo.V(math.Cos(orbitOmega*t)*orbitRadius, 25, math.Sin(orbitOmega*t)*orbitRadius)
		cam.Position = cam.Position.Lerp(orbit, 0.08)
		cam.Target = origin
	}
	return d.phase != prev
}

// Reset returns the director to idle.
func (d *Director) Reset() {
	d.playing = false
	d.elapsed = 0
	d.phase = PhaseIdle
	d.timeScale = 1
}

// TimeScale is the simulation speed factor for the next tick.
func (d *Director) TimeScale() float64 {
	if !d.playing {
		return 1
	}
	return d.timeScale
}

func (d *Director) Phase() Phase     { return d.phase }
func (d *Director) Playing() bool    { return d.playing }
func (d *Director) Elapsed() float64 { return d.elapsed }
