package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/celestia/internal/analysis"
)

var braillePixels = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// BrailleToSVG renders a grid of braille cells as dots, scale pixels per dot.
func BrailleToSVG(grid [][]rune, scale float64) string {
	if len(grid) == 0 {
		return ""
	}
	rows, cols := len(grid), len(grid[0])
	width := float64(cols) * scale * 2
	height := float64(rows) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#e0f0ff">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for row := range grid {
		for col, r := range grid[row] {
			pattern := r - 0x2800
			if pattern <= 0 {
				continue
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&braillePixels[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

var trackColors = []string{"#ffd700", "#00ccff", "#ff6b6b", "#5fd068", "#ff9ff3", "#feca57", "#0077be", "#ffffff"}

// TracksToSVG draws body paths seen from above (x right, z down), one
// coloured polyline per track with a dot at its final position.
func TracksToSVG(tracks []analysis.Track, width, height int) string {
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

	// equal scale on both axes keeps orbits round
	span := math.Max(maxX-minX, maxZ-minZ)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cz := (minX+maxX)/2, (minZ+maxZ)/2
	size := float64(min(width, height))
	toScreen := func(p [2]float64) (float64, float64) {
		return float64(width)/2 + (p[0]-cx)/span*size, float64(height)/2 + (p[1]-cz)/span*size
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, t := range tracks {
		if len(t.Points) == 0 {
			continue
		}
		color := trackColors[i%len(trackColors)]
		if len(t.Points) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
			for j, p := range t.Points {
				x, y := toScreen([2]float64{p.X, p.Z})
				if j == 0 {
					fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}
		last := t.Points[len(t.Points)-1]
		x, y := toScreen([2]float64{last.X, last.Z})
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"><title>%s</title></circle>\n", x, y, color, t.Name)
	}

	sb.WriteString("</svg>")
	return sb.String()
}
