package layout

import (
	"math"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/sim"
)

const minRadius = 200.0

// Circle spaces nodes evenly on a ring around the origin, starting at the
// top. Zero Radius grows the ring until neighbouring boxes clear each other.
type Circle struct {
	Radius float64
}

func (c Circle) Name() string { return "circle" }

func (c Circle) Compute(nodes []sim.Node) Result {
	res := Result{Targets: make(map[string]dynamo.Vec3, len(nodes))}
	n := len(nodes)
	if n == 0 {
		return res
	}

	r := c.Radius
	if r <= 0 {
		w, h := cell(nodes, DefaultSpacing)
		r = math.Max(minRadius, float64(n)*math.Hypot(w, h)/(2*math.Pi))
	}

	step := 2 * math.Pi / float64(n)
	for i, node := range sortedByID(nodes) {
		a := -math.Pi/2 + float64(i)*step
		res.Targets[node.ID] = dynamo.Vec3{X: r * math.Cos(a), Y: r * math.Sin(a), Z: node.Position.Z}
	}
	return res
}
