package layout

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/physics"
	"github.com/san-kum/canvasflow/internal/sim"
)

func mixedNodes() []sim.Node {
	types := []bounds.NodeType{bounds.Article, bounds.Entity, bounds.Claim, bounds.Unknown, bounds.Entity}
	var nodes []sim.Node
	for i := 0; i < 10; i++ {
		nodes = append(nodes, sim.Node{ID: fmt.Sprintf("n%02d", i), Type: types[i%len(types)]})
	}
	return nodes
}

// targetsOverlap checks the computed targets as boxes with no margin.
func targetsOverlap(t *testing.T, nodes []sim.Node, res Result) int {
	t.Helper()
	bs := dynamo.Bodies{}
	for _, n := range nodes {
		p, ok := res.Targets[n.ID]
		if !ok {
			t.Fatalf("missing target for %s", n.ID)
		}
		s := bounds.Lookup(n.Type)
		bs.Spawn(n.ID, p, s.Width, s.Height)
	}
	return physics.CountOverlaps(bs, 0)
}

func TestGrid(t *testing.T) {
	nodes := mixedNodes()
	res := Grid{Columns: 4}.Compute(nodes)

	if len(res.Targets) != len(nodes) {
		t.Fatalf("expected %d targets, got %d", len(nodes), len(res.Targets))
	}
	if res.Targets["n00"] != (dynamo.Vec3{}) {
		t.Errorf("first cell should be the origin, got %v", res.Targets["n00"])
	}
	if res.Targets["n04"].Y <= res.Targets["n03"].Y {
		t.Errorf("n04 should start the second row")
	}
	if n := targetsOverlap(t, nodes, res); n != 0 {
		t.Errorf("grid produced %d overlaps", n)
	}
	if res.Groups != nil {
		t.Errorf("grid should not report layout groups")
	}
}

func TestGrid_DefaultColumns(t *testing.T) {
	nodes := mixedNodes()[:9]
	res := Grid{}.Compute(nodes)

	rows := map[float64]int{}
	for _, p := range res.Targets {
		rows[p.Y]++
	}
	if len(rows) != 3 {
		t.Errorf("expected a 3x3 grid, got %d rows", len(rows))
	}
}

func TestCircle(t *testing.T) {
	nodes := mixedNodes()

	res := Circle{Radius: 500}.Compute(nodes)
	for id, p := range res.Targets {
		if r := math.Hypot(p.X, p.Y); math.Abs(r-500) > 1e-9 {
			t.Errorf("%s at radius %v", id, r)
		}
	}
	if p := res.Targets["n00"]; math.Abs(p.X) > 1e-9 || math.Abs(p.Y+500) > 1e-9 {
		t.Errorf("first node should sit at the top, got %v", p)
	}

	auto := Circle{}.Compute(nodes)
	if n := targetsOverlap(t, nodes, auto); n != 0 {
		t.Errorf("auto radius produced %d overlaps", n)
	}
}

func TestCluster(t *testing.T) {
	nodes := mixedNodes()
	res := Cluster{}.Compute(nodes)

	if n := targetsOverlap(t, nodes, res); n != 0 {
		t.Errorf("cluster produced %d overlaps", n)
	}

	want := map[string]int{"article": 4, "entity": 4, "claim": 2}
	if len(res.Groups) != len(want) {
		t.Fatalf("expected %d groups, got %v", len(want), res.Groups)
	}
	for g, n := range want {
		if len(res.Groups[g]) != n {
			t.Errorf("group %s has %d members, want %d", g, len(res.Groups[g]), n)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	for _, l := range []Layout{Grid{}, Circle{}, Cluster{}} {
		if res := l.Compute(nil); len(res.Targets) != 0 {
			t.Errorf("%s: expected no targets", l.Name())
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.Names() {
		l, err := r.Get(name, nil)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if l.Name() != name {
			t.Errorf("Get(%q) returned %q", name, l.Name())
		}
	}

	l, _ := r.Get("grid", map[string]float64{"columns": 2, "spacing": 10})
	if g := l.(Grid); g.Columns != 2 || g.Spacing != 10 {
		t.Errorf("params not applied: %+v", g)
	}

	if _, err := r.Get("spiral", nil); !errors.Is(err, dynamo.ErrUnknownLayout) {
		t.Errorf("expected ErrUnknownLayout, got %v", err)
	}
}

func TestApply(t *testing.T) {
	nodes := mixedNodes()
	nodes[0].Locked = true
	nodes[0].Position = dynamo.Vec3{X: -5000}

	d := sim.New(dynamo.DefaultConfig())
	d.Sync(nodes, nil)
	res := Apply(d, nodes, Cluster{})

	if _, ok := res.Targets["n00"]; ok {
		t.Error("locked node should not be laid out")
	}
	if cfg := d.Config(); !cfg.SameLayoutGroup("n01", "n06") {
		t.Error("entity nodes should share a layout group")
	}

	for i := 0; i < 3000 && d.Tick(1.0/60); i++ {
	}
	for id, want := range res.Targets {
		b, _ := d.Body(id)
		if b.Position.Sub(want).Length() > 1 {
			t.Errorf("%s settled at %v, want %v", id, b.Position, want)
		}
	}
	if b, _ := d.Body("n00"); b.Position != (dynamo.Vec3{X: -5000}) {
		t.Errorf("locked node moved to %v", b.Position)
	}
}
