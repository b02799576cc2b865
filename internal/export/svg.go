package export

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

const svgPadding = 40.0

var edgeColors = map[dynamo.EdgeType]string{
	dynamo.EdgeRelated:     "#6b7280",
	dynamo.EdgeMentions:    "#60a5fa",
	dynamo.EdgeSupports:    "#34d399",
	dynamo.EdgeContradicts: "#f87171",
	dynamo.EdgeMemberOf:    "#c084fc",
}

// SnapshotToSVG draws every body as a labelled box and every edge between two
// bodies as a line. Canvas coordinates are y-down, same as SVG.
func SnapshotToSVG(bodies dynamo.Bodies, edges []dynamo.Edge) string {
	if len(bodies) == 0 {
		return ""
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX = math.Min(minX, b.Position.X-b.Width/2)
		maxX = math.Max(maxX, b.Position.X+b.Width/2)
		minY = math.Min(minY, b.Position.Y-b.Height/2)
		maxY = math.Max(maxY, b.Position.Y+b.Height/2)
	}
	minX -= svgPadding
	minY -= svgPadding
	width := maxX - minX + svgPadding
	height := maxY - minY + svgPadding

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.1f %.1f %.1f %.1f">
<rect x="%.1f" y="%.1f" width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, minX, minY, width, height, minX, minY))

	sb.WriteString("<g stroke-width=\"2\">\n")
	for _, e := range edges {
		a, okA := bodies[e.Source]
		b, okB := bodies[e.Target]
		if !okA || !okB {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" data-type="%s"/>
`, a.Position.X, a.Position.Y, b.Position.X, b.Position.Y, edgeColors[e.Type], e.Type))
	}
	sb.WriteString("</g>\n")

	sb.WriteString("<g font-family=\"monospace\" font-size=\"14\">\n")
	for _, id := range bodies.IDs() {
		b := bodies[id]
		stroke := "#00ff00"
		dash := ""
		if b.Locked {
			stroke = "#facc15"
			dash = ` stroke-dasharray="6 4"`
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="#111827" stroke="%s"%s/>
<text x="%.1f" y="%.1f" fill="#e5e7eb" text-anchor="middle">%s</text>
`, b.Position.X-b.Width/2, b.Position.Y-b.Height/2, b.Width, b.Height, stroke, dash,
			b.Position.X, b.Position.Y+5, html.EscapeString(id)))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the path of each body over a recorded run.
func TrajectoryToSVG(paths map[string][]dynamo.Vec3, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	n := 0
	for _, pts := range paths {
		for _, p := range pts {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			n++
		}
	}
	if n < 2 {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	ids := make([]string, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		pts := paths[id]
		if len(pts) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="#00ff00" stroke-width="1.5" data-id="%s" d="M`, html.EscapeString(id)))
		for i, p := range pts {
			x := (p.X - minX) / rangeX * float64(width)
			y := (p.Y - minY) / rangeY * float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
