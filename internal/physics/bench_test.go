package physics

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

func benchScene(n int) (dynamo.Bodies, []dynamo.Edge) {
	rng := rand.New(rand.NewSource(1))
	bs := dynamo.Bodies{}
	for i := 0; i < n; i++ {
		bs.Spawn(fmt.Sprintf("n%04d", i), dynamo.Vec3{X: rng.Float64() * 4000, Y: rng.Float64() * 4000}, 240, 110)
	}
	edges := make([]dynamo.Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, dynamo.Edge{
			Source: fmt.Sprintf("n%04d", i),
			Target: fmt.Sprintf("n%04d", rng.Intn(n)),
		})
	}
	return bs, edges
}

func benchmarkStep(b *testing.B, n int) {
	bs, edges := benchScene(n)
	cfg := dynamo.DefaultConfig()
	s := NewSolver()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(1.0/60, bs, edges, &cfg)
	}
}

func BenchmarkStep100(b *testing.B)  { benchmarkStep(b, 100) }
func BenchmarkStep1000(b *testing.B) { benchmarkStep(b, 1000) }
func BenchmarkStep5000(b *testing.B) { benchmarkStep(b, 5000) }
