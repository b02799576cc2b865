package layout

import (
	"math"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/sim"
)

// Grid places nodes row-major in id order. Zero Columns picks a square-ish
// grid.
type Grid struct {
	Columns int
	Spacing float64
}

func (g Grid) Name() string { return "grid" }

func (g Grid) Compute(nodes []sim.Node) Result {
	res := Result{Targets: make(map[string]dynamo.Vec3, len(nodes))}
	if len(nodes) == 0 {
		return res
	}

	cols := g.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(nodes)))))
	}
	spacing := g.Spacing
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	w, h := cell(nodes, spacing)

	for i, n := range sortedByID(nodes) {
		row, col := i/cols, i%cols
		res.Targets[n.ID] = dynamo.Vec3{X: float64(col) * w, Y: float64(row) * h, Z: n.Position.Z}
	}
	return res
}
