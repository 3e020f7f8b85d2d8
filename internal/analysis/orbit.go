package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/sim"
)

// Track is the sampled path of one body.
type Track struct {
	ID     uint64
	Name   string
	Times  []float64
	Points []dynamo.Vec3
	Masses []float64
}

// Tracks splits stored samples into per-body paths, ordered by body ID.
func Tracks(samples []sim.Sample) []Track {
	byID := make(map[uint64]*Track)
	for _, s := range samples {
		for _, b := range s.Bodies {
			t, ok := byID[b.ID]
			if !ok {
				t = &Track{ID: b.ID, Name: b.Name}
				byID[b.ID] = t
			}
			t.Times = append(t.Times, s.Time)
			t.Points = append(t.Points, b.Position)
			t.Masses = append(t.Masses, b.Mass)
		}
	}
	tracks := make([]Track, 0, len(byID))
	for _, t := range byID {
		tracks = append(tracks, *t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })
	return tracks
}

// Central returns the track with the largest initial mass, the body the others
// orbit.
func Central(tracks []Track) (Track, bool) {
	best := -1
	for i, t := range tracks {
		if len(t.Masses) == 0 {
			continue
		}
		if best < 0 || t.Masses[0] > tracks[best].Masses[0] {
			best = i
		}
	}
	if best < 0 {
		return Track{}, false
	}
	return tracks[best], true
}

// OrbitStats summarises one body's motion about the central body.
type OrbitStats struct {
	ID        uint64
	Name      string
	MinRadius float64
	MaxRadius float64
	Period    float64
	Periodic  bool
}

// Eccentricity approximates e from the apsides.
func (o OrbitStats) Eccentricity() float64 {
	if o.MaxRadius+o.MinRadius == 0 {
		return 0
	}
	return (o.MaxRadius - o.MinRadius) / (o.MaxRadius + o.MinRadius)
}

// Orbits measures every non-central track. Only samples taken while both
// bodies were alive count. The period comes from the spectrum of the x
// offset, which oscillates once per revolution.
func Orbits(tracks []Track, dt float64) []OrbitStats {
	center, ok := Central(tracks)
	if !ok {
		return nil
	}
	at := make(map[float64]dynamo.Vec3, len(center.Times))
	for i, t := range center.Times {
		at[t] = center.Points[i]
	}

	var stats []OrbitStats
	for _, t := range tracks {
		if t.ID == center.ID {
			continue
		}
		o := OrbitStats{ID: t.ID, Name: t.Name, MinRadius: math.Inf(1)}
		var offsets []float64
		for i, time := range t.Times {
			c, ok := at[time]
			if !ok {
				continue
			}
			off := t.Points[i].Sub(c)
			r := off.Length()
			o.MinRadius = math.Min(o.MinRadius, r)
			o.MaxRadius = math.Max(o.MaxRadius, r)
			offsets = append(offsets, off.X)
		}
		if len(offsets) == 0 {
			continue
		}
		o.Period, o.Periodic = DominantPeriod(offsets, dt)
		stats = append(stats, o)
	}
	return stats
}

var trackGlyphs = []rune{'•', '○', '◆', '◇', '▲', '△', '■', '□', '★', '☆'}

// Portrait draws the tracks seen from above (x right, z down) as text.
func Portrait(tracks []Track, width, height int) string {
	if len(tracks) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, t := range tracks {
		for _, p := range t.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
		}
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	rangeX := maxX - minX
	rangeZ := maxZ - minZ
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}
	minX -= rangeX * 0.1
	minZ -= rangeZ * 0.1
	rangeX *= 1.2
	rangeZ *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && minX+rangeX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := range canvas {
			canvas[row][col] = '│'
		}
	}
	if minZ <= 0 && minZ+rangeZ >= 0 {
		row := int(-minZ / rangeZ * float64(height-1))
		for col := range canvas[row] {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for i, t := range tracks {
		glyph := trackGlyphs[i%len(trackGlyphs)]
		for _, p := range t.Points {
			col := int((p.X - minX) / rangeX * float64(width-1))
			row := int((p.Z - minZ) / rangeZ * float64(height-1))
			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = glyph
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	for i, t := range tracks {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteRune(trackGlyphs[i%len(trackGlyphs)])
		sb.WriteString(" " + t.Name)
	}
	sb.WriteRune('\n')
	return sb.String()
}
