package layout

import (
	"math"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/sim"
)

// Cluster gathers nodes by type into compact blocks laid out left to right.
// Each block is reported as a layout group.
type Cluster struct {
	Spacing float64
}

func (c Cluster) Name() string { return "cluster" }

func (c Cluster) Compute(nodes []sim.Node) Result {
	res := Result{
		Targets: make(map[string]dynamo.Vec3, len(nodes)),
		Groups:  make(map[string][]string),
	}
	spacing := c.Spacing
	if spacing <= 0 {
		spacing = DefaultSpacing
	}

	byType := make(map[bounds.NodeType][]sim.Node)
	for _, n := range sortedByID(nodes) {
		t := n.Type
		if t == bounds.Unknown {
			t = bounds.Article
		}
		byType[t] = append(byType[t], n)
	}

	x := 0.0
	for _, t := range bounds.Types() {
		members := byType[t]
		if len(members) == 0 {
			continue
		}
		size := bounds.Lookup(t)
		w, h := size.Width+spacing, size.Height+spacing
		cols := int(math.Ceil(math.Sqrt(float64(len(members)))))

		ids := make([]string, 0, len(members))
		for i, n := range members {
			row, col := i/cols, i%cols
			res.Targets[n.ID] = dynamo.Vec3{X: x + float64(col)*w, Y: float64(row) * h, Z: n.Position.Z}
			ids = append(ids, n.ID)
		}
		res.Groups[t.String()] = ids
		x += float64(cols)*w + 3*spacing
	}
	return res
}
