package viz

import (
	"math"
	"sort"

	"github.com/san-kum/celestia/internal/cinematic"
	"github.com/san-kum/celestia/internal/dynamo"
)

var worldUp = dynamo.V(0, 1, 0)

// Projector maps world coordinates onto the canvas from a cinematic camera.
// Yaw, Pitch and Zoom are the viewer's own adjustments on top of it.
type Projector struct {
	FOV, Near        float64
	Yaw, Pitch, Zoom float64
}

func NewProjector() *Projector {
	return &Projector{FOV: math.Pi / 3, Near: 0.1, Zoom: 1.0}
}

func (p *Projector) RotateYaw(a float64) { p.Yaw += a }
func (p *Projector) RotatePitch(a float64) {
	p.Pitch = math.Max(-1.4, math.Min(1.4, p.Pitch+a))
}
func (p *Projector) ZoomIn()  { p.Zoom = math.Min(10, p.Zoom*1.2) }
func (p *Projector) ZoomOut() { p.Zoom = math.Max(0.1, p.Zoom/1.2) }
func (p *Projector) ResetView() {
	p.Yaw, p.Pitch, p.Zoom = 0, 0, 1
}

// eye returns the camera position after the viewer's orbit adjustment.
func (p *Projector) eye(cam cinematic.Camera) dynamo.Vec3 {
	off := cam.Position.Sub(cam.Target)
	cy, sy := math.Cos(p.Yaw), math.Sin(p.Yaw)
	off = dynamo.V(off.X*cy+off.Z*sy, off.Y, -off.X*sy+off.Z*cy)
	if p.Pitch != 0 {
		horiz := math.Hypot(off.X, off.Z)
		elev := math.Atan2(off.Y, horiz) + p.Pitch
		elev = math.Max(-1.5, math.Min(1.5, elev))
		dist := off.Length()
		scale := 0.0
		if horiz > 0 {
			scale = dist * math.Cos(elev) / horiz
		}
		off = dynamo.V(off.X*scale, dist*math.Sin(elev), off.Z*scale)
	}
	return cam.Target.Add(off)
}

// View is a resolved camera basis for one frame.
type View struct {
	eye, fwd, right, up dynamo.Vec3
	focal               float64
	w, h                int
	near                float64
}

// Resolve fixes the camera basis for a canvas of w x h pixels.
func (p *Projector) Resolve(cam cinematic.Camera, w, h int) View {
	eye := p.eye(cam)
	fwd := cam.Target.Sub(eye).Normalize()
	if fwd.LengthSq() == 0 {
		fwd = dynamo.V(0, 0, -1)
	}
	right := fwd.Cross(worldUp).Normalize()
	if right.LengthSq() == 0 {
		right = dynamo.V(1, 0, 0)
	}
	up := right.Cross(fwd)

	minDim := float64(min(w, h))
	focal := minDim / (2 * math.Tan(p.FOV/2)) * p.Zoom
	return View{eye: eye, fwd: fwd, right: right, up: up, focal: focal, w: w, h: h, near: p.Near}
}

// Project returns screen coordinates, depth and whether the point lies in
// front of the camera and on screen.
func (v View) Project(pt dynamo.Vec3) (int, int, float64, bool) {
	d := pt.Sub(v.eye)
	z := d.Dot(v.fwd)
	if z <= v.near {
		return 0, 0, z, false
	}
	sx := int(math.Round(d.Dot(v.right)/z*v.focal)) + v.w/2
	sy := int(math.Round(-d.Dot(v.up)/z*v.focal)) + v.h/2
	return sx, sy, z, sx >= 0 && sx < v.w && sy >= 0 && sy < v.h
}

// far reports a pixel so far off screen that rasterizing toward it is waste.
func (v View) far(x, y int) bool {
	return absInt(x) > 8*v.w || absInt(y) > 8*v.h
}

// Radius is the on-screen radius of a sphere of radius r at depth z.
func (v View) Radius(r, z float64) int {
	if z <= v.near {
		return 0
	}
	return int(r / z * v.focal)
}

type Edge struct {
	Start, End dynamo.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e dynamo.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }

// AddRing adds a circle of radius r in the xz plane around center.
func (w *Wireframe) AddRing(center dynamo.Vec3, r float64, segments int) {
	prev := center.Add(dynamo.V(r, 0, 0))
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		next := center.Add(dynamo.V(r*math.Cos(a), 0, r*math.Sin(a)))
		w.AddEdge(prev, next)
		prev = next
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe far to near.
func Render3D(c *Canvas, w *Wireframe, v View) {
	if c == nil || w == nil {
		return
	}
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := v.Project(e.Start)
		x2, y2, d2, v2 := v.Project(e.End)
		// both ends must be in front of the camera, at least one on screen
		if d1 <= v.near || d2 <= v.near || !(v1 || v2) {
			continue
		}
		if v.far(x1, y1) || v.far(x2, y2) {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}
