package layout

import (
	"slices"
	"strings"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/sim"
)

// DefaultSpacing is the gap left between neighbouring boxes.
const DefaultSpacing = 40.0

// Layout computes target positions for a node list.
type Layout interface {
	Name() string
	Compute(nodes []sim.Node) Result
}

// Result holds the computed targets. Groups lists the layout groups whose
// members the engine must not push apart.
type Result struct {
	Targets map[string]dynamo.Vec3
	Groups  map[string][]string
}

// Apply runs l over the driver's current nodes and animates the transition.
// Locked bodies keep their place.
func Apply(d *sim.Driver, nodes []sim.Node, l Layout) Result {
	var free []sim.Node
	for _, n := range nodes {
		if b, ok := d.Body(n.ID); ok && b.Locked {
			continue
		}
		free = append(free, n)
	}
	res := l.Compute(free)
	d.SetLayoutGroups(res.Groups)
	d.AnimateTo(res.Targets)
	return res
}

func sortedByID(nodes []sim.Node) []sim.Node {
	out := slices.Clone(nodes)
	slices.SortFunc(out, func(a, b sim.Node) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// cell is the largest box among nodes, grown by spacing.
func cell(nodes []sim.Node, spacing float64) (w, h float64) {
	for _, n := range nodes {
		s := bounds.Lookup(n.Type)
		w = max(w, s.Width)
		h = max(h, s.Height)
	}
	return w + spacing, h + spacing
}
