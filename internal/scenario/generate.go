package scenario

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/canvasflow/internal/bounds"
)

// Generate builds a random workspace of n nodes scattered over a square that
// leaves them heavily overlapped, with roughly one edge per node. The same
// seed always yields the same scenario.
func Generate(n int, seed int64) *Scenario {
	rng := rand.New(rand.NewSource(seed))
	types := bounds.Types()
	side := 60.0 * float64(n)
	if side > 6000 {
		side = 6000
	}

	s := &Scenario{
		Name:        fmt.Sprintf("generated-%d", n),
		Description: fmt.Sprintf("%d random nodes, seed %d", n, seed),
	}
	for i := 0; i < n; i++ {
		s.Nodes = append(s.Nodes, NodeSpec{
			ID:   fmt.Sprintf("n%04d", i),
			Type: types[rng.Intn(len(types))].String(),
			X:    rng.Float64() * side,
			Y:    rng.Float64() * side,
		})
	}
	for i := 1; i < n; i++ {
		s.Edges = append(s.Edges, EdgeSpec{
			Source: s.Nodes[i].ID,
			Target: s.Nodes[rng.Intn(i)].ID,
			Type:   "related",
		})
	}
	return s
}
