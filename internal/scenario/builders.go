package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/physics"
)

// View is a camera placement requested by a scenario.
type View struct {
	Position dynamo.Vec3
	LookAt   dynamo.Vec3
}

// Setup is a fully built scenario, not yet attached to a world.
type Setup struct {
	Mode   Mode
	Bodies []*physics.Body
	View   View

	// Impactor and Target are set for giant_impact.
	Impactor *physics.Body
	Target   *physics.Body

	// Trigger runs the scenario's scripted action, if any, and may move the
	// camera.
	Trigger func() (View, bool)
}

// Env carries the engine parameters builders depend on.
type Env struct {
	G    float64
	Rand *rand.Rand
}

type Builder func(d *Descriptor, env Env) (*Setup, error)

var defaultView = View{Position: dynamo.V(0, 50, 100)}

func newBodies(specs ...physics.BodySpec) ([]*physics.Body, error) {
	bodies := make([]*physics.Body, 0, len(specs))
	for i, spec := range specs {
		b, err := physics.NewBody(spec)
		if err != nil {
			return nil, &dynamo.ScenarioError{Index: i, Field: "body", Wrapped: err}
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func buildCollision(d *Descriptor, env Env) (*Setup, error) {
	left := Object("Player1", "Mars", 3, 10)
	right := Object("Player2", "Venus", 3, 10)
	if len(d.Objects) > 0 {
		left = d.Objects[0]
	}
	if len(d.Objects) > 1 {
		right = d.Objects[1]
	}

	// positions and velocities are forced so the pair always meets
	a := left.BodySpec()
	a.Position, a.Velocity = dynamo.V(-40, 0, 0), dynamo.V(20, 0, 0)
	b := right.BodySpec()
	b.Position, b.Velocity = dynamo.V(40, 0, 0), dynamo.V(-20, 0, 0)

	bodies, err := newBodies(a, b)
	if err != nil {
		return nil, err
	}
	return &Setup{Mode: ModeCollision, Bodies: bodies, View: View{Position: dynamo.V(0, 30, 80)}}, nil
}

const (
	orbitStart   = 30.0
	orbitSpacing = 20.0
)

func buildOrbit(d *Descriptor, env Env) (*Setup, error) {
	sunIdx := -1
	for i, o := range d.Objects {
		if strings.Contains(strings.ToLower(o.Name), "sun") {
			sunIdx = i
			break
		}
	}
	if sunIdx < 0 && len(d.Objects) > 0 {
		sunIdx = 0
	}

	sunObj := Object("Sun", "Sun", 6, 500)
	var planets []ObjectSpec
	for i, o := range d.Objects {
		if i == sunIdx {
			sunObj = o
			continue
		}
		planets = append(planets, o)
	}
	if len(planets) == 0 {
		planets = append(planets, Object("Earth", "Earth", 2, 1))
	}

	sun := sunObj.BodySpec()
	sun.Position, sun.Velocity = dynamo.Vec3{}, dynamo.Vec3{}
	specs := []physics.BodySpec{sun}

	distance := orbitStart
	for _, p := range planets {
		spec := p.BodySpec()
		speed := math.Sqrt(env.G * sun.Mass / distance)
		spec.Position = dynamo.V(distance, 0, 0)
		spec.Velocity = dynamo.V(0, 0, speed)
		specs = append(specs, spec)
		distance += orbitSpacing
	}

	bodies, err := newBodies(specs...)
	if err != nil {
		return nil, err
	}
	return &Setup{Mode: ModeOrbit, Bodies: bodies, View: View{Position: dynamo.V(0, 100, 150)}}, nil
}

const birthCount = 10

func buildBirth(d *Descriptor, env Env) (*Setup, error) {
	rng := env.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	specs := make([]physics.BodySpec, 0, birthCount)
	for i := 0; i < birthCount; i++ {
		texture := "Mars"
		if rng.Float64() > 0.5 {
			texture = "Earth"
		}
		specs = append(specs, physics.BodySpec{
			Name:       fmt.Sprintf("BabyPlanet_%d", i),
			TextureKey: texture,
			Radius:     2 + rng.Float64()*2,
			Mass:       1,
			Position:   dynamo.V((rng.Float64()-0.5)*60, 0, (rng.Float64()-0.5)*60),
			Growing:    true,
		})
	}

	bodies, err := newBodies(specs...)
	if err != nil {
		return nil, err
	}
	return &Setup{Mode: ModePlanetBirth, Bodies: bodies, View: View{Position: dynamo.V(0, 60, 60)}}, nil
}

// eclipseBodies returns sun, earth and moon with unit masses.
func eclipseBodies(sunPos, earthPos, moonPos dynamo.Vec3) (sun, earth, moon *physics.Body, err error) {
	bodies, err := newBodies(
		physics.BodySpec{Name: "Sun", TextureKey: "Sun", Radius: 20, Mass: 1, Position: sunPos, IsStar: true},
		physics.BodySpec{Name: "Earth", TextureKey: "Earth", Radius: 1.5, Mass: 1, Position: earthPos},
		physics.BodySpec{Name: "Moon", TextureKey: "Moon", Radius: 0.5, Mass: 1, Position: moonPos},
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return bodies[0], bodies[1], bodies[2], nil
}

func buildSolarEclipse(d *Descriptor, env Env) (*Setup, error) {
	sun, earth, moon, err := eclipseBodies(dynamo.V(0, 0, -300), dynamo.Vec3{}, dynamo.V(0, 0, -5))
	if err != nil {
		return nil, err
	}
	setup := &Setup{
		Mode:   ModeSolarEclipse,
		Bodies: []*physics.Body{sun, earth, moon},
		View:   View{Position: dynamo.V(0, 10, 90)},
	}
	setup.Trigger = func() (View, bool) {
		if moon.IsDead() || earth.IsDead() {
			return View{}, false
		}
		// the moon starts just off the line and drifts across the solar disc
		moon.Position = dynamo.V(3, 0, -5)
		moon.Velocity = dynamo.V(-0.7, 0, 0)
		return View{Position: earth.Position, LookAt: sun.Position}, true
	}
	return setup, nil
}

func buildLunarEclipse(d *Descriptor, env Env) (*Setup, error) {
	sun, earth, moon, err := eclipseBodies(dynamo.V(0, 0, -90), dynamo.V(0, 0, -6), dynamo.V(3, 0, 0))
	if err != nil {
		return nil, err
	}
	setup := &Setup{
		Mode:   ModeLunarEclipse,
		Bodies: []*physics.Body{sun, earth, moon},
		View:   View{Position: dynamo.V(90, 4, -30)},
	}
	setup.Trigger = func() (View, bool) {
		if moon.IsDead() || earth.IsDead() {
			return View{}, false
		}
		moon.Velocity = dynamo.V(-1, 0, 0)
		return View{Position: earth.Position, LookAt: moon.Position}, true
	}
	return setup, nil
}

func defaultGiantImpact() []ObjectSpec {
	return []ObjectSpec{
		Object("Gaia", "Mars", 5, 100).At(dynamo.Vec3{}, dynamo.Vec3{}),
		Object("Theia", "Mars", 2.8, 18).At(dynamo.V(-140, 18, 70), dynamo.V(16, -4, -10)),
	}
}

func buildGiantImpact(d *Descriptor, env Env) (*Setup, error) {
	objects := d.Objects
	impactorIdx := -1
	for i, o := range objects {
		if isImpactorName(o.Name) {
			impactorIdx = i
			break
		}
	}
	if impactorIdx < 0 || len(objects) < 2 {
		objects = defaultGiantImpact()
		impactorIdx = 1
	}

	// target is the heaviest non-impactor; ties keep descriptor order
	order := make([]int, 0, len(objects)-1)
	for i := range objects {
		if i != impactorIdx {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return objects[order[a]].mass() > objects[order[b]].mass() })
	targetIdx := order[0]

	specs := make([]physics.BodySpec, len(objects))
	for i, o := range objects {
		specs[i] = o.BodySpec()
	}
	bodies, err := newBodies(specs...)
	if err != nil {
		return nil, err
	}

	return &Setup{
		Mode:     ModeGiantImpact,
		Bodies:   bodies,
		View:     View{Position: dynamo.V(60, 35, 180)},
		Impactor: bodies[impactorIdx],
		Target:   bodies[targetIdx],
	}, nil
}

func buildCustom(d *Descriptor, env Env) (*Setup, error) {
	specs := make([]physics.BodySpec, len(d.Objects))
	for i, o := range d.Objects {
		specs[i] = o.BodySpec()
		if specs[i].Name == "" {
			specs[i].Name = fmt.Sprintf("Body-%d", i)
		}
	}
	bodies, err := newBodies(specs...)
	if err != nil {
		return nil, err
	}
	view := defaultView
	if d.CameraPosition != nil {
		view.Position = *d.CameraPosition
	}
	return &Setup{Mode: ModeCustom, Bodies: bodies, View: view}, nil
}
