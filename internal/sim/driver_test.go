package sim_test

import (
	"context"
	"fmt"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/physics"
	"github.com/san-kum/canvasflow/internal/sim"
)

const frame = 1.0 / 60

func node(id string, x, y float64) sim.Node {
	return sim.Node{ID: id, Type: bounds.Entity, Position: dynamo.Vec3{X: x, Y: y}}
}

func settle(d *sim.Driver, limit int) int {
	for i := 0; i < limit; i++ {
		if !d.Tick(frame) {
			return i
		}
	}
	return limit
}

var _ = Describe("Driver", func() {
	var d *sim.Driver

	BeforeEach(func() {
		d = sim.New(dynamo.DefaultConfig())
	})

	Describe("Sync", func() {
		It("spawns bodies sized by node type", func() {
			d.Sync([]sim.Node{
				{ID: "a", Type: bounds.Claim},
				{ID: "b", Type: bounds.Unknown, Position: dynamo.Vec3{X: 2000}},
			}, nil)

			a, ok := d.Body("a")
			Expect(ok).To(BeTrue())
			Expect(a.Width).To(Equal(bounds.Lookup(bounds.Claim).Width))
			Expect(a.Height).To(Equal(bounds.Lookup(bounds.Claim).Height))

			b, _ := d.Body("b")
			Expect(b.Width).To(Equal(bounds.Lookup(bounds.Article).Width))
			Expect(d.Len()).To(Equal(2))
			Expect(d.Awake()).To(BeTrue())
		})

		It("runs warm-up steps when new bodies join a crowd", func() {
			d.Sync([]sim.Node{node("a", 0, 0), node("b", 0, 0)}, nil)

			a, _ := d.Body("a")
			b, _ := d.Body("b")
			Expect(a.Position).NotTo(Equal(b.Position))
		})

		It("does not warm up a lone body", func() {
			d.Sync([]sim.Node{node("a", 5, 5)}, nil)

			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{X: 5, Y: 5}))
		})

		It("snaps large external moves", func() {
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			d.Sync([]sim.Node{node("a", 0, 120)}, nil)

			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{Y: 120}))
			Expect(a.Target).To(Equal(dynamo.Vec3{Y: 120}))
			Expect(a.Velocity).To(Equal(dynamo.Vec3{}))
		})

		It("springs small external moves", func() {
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			d.Sync([]sim.Node{node("a", 30, -20)}, nil)

			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{}))
			Expect(a.Target).To(Equal(dynamo.Vec3{X: 30, Y: -20}))

			settle(d, 1000)
			a, _ = d.Body("a")
			Expect(a.Position).To(Equal(a.Target))
		})

		It("keeps separated targets when the list is unchanged", func() {
			nodes := []sim.Node{node("a", 0, 0), node("b", 10, 0)}
			d.Sync(nodes, nil)
			Expect(settle(d, 2000)).To(BeNumerically("<", 2000))

			before := d.Positions()
			d.Sync(nodes, nil)
			Expect(settle(d, 2000)).To(BeNumerically("<", 2000))
			Expect(d.Positions()).To(Equal(before))
		})

		It("leaves dragged bodies alone", func() {
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			Expect(d.StartDrag("a")).To(BeTrue())
			d.Drag("a", dynamo.Vec3{X: 15})
			d.Sync([]sim.Node{node("a", 400, 400)}, nil)

			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{X: 15}))
			Expect(a.Dragging).To(BeTrue())
		})

		It("refreshes lock flags", func() {
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			locked := node("a", 0, 0)
			locked.Locked = true
			d.Sync([]sim.Node{locked}, nil)

			a, _ := d.Body("a")
			Expect(a.Locked).To(BeTrue())
		})

		It("empties the store on a round trip and falls asleep", func() {
			var nodes []sim.Node
			for i := 0; i < 12; i++ {
				nodes = append(nodes, node(fmt.Sprintf("n%d", i), float64(i*7), 0))
			}
			d.Sync(nodes, []dynamo.Edge{{Source: "n0", Target: "n11"}})
			d.Sync(nil, nil)

			Expect(d.Len()).To(BeZero())
			Expect(d.Awake()).To(BeTrue())
			Expect(d.Tick(frame)).To(BeFalse())
			Expect(d.Awake()).To(BeFalse())
		})
	})

	Describe("drag lifecycle", func() {
		BeforeEach(func() {
			d.Sync([]sim.Node{node("a", 0, 0), node("b", 1000, 0)}, nil)
			settle(d, 1000)
		})

		It("tracks the pointer and ignores forces while dragging", func() {
			Expect(d.StartDrag("a")).To(BeTrue())
			d.Drag("a", dynamo.Vec3{X: 990, Y: 10})

			for i := 0; i < 30; i++ {
				d.Tick(frame)
			}
			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{X: 990, Y: 10}))
		})

		It("ignores Drag for bodies that are not dragging", func() {
			d.Drag("a", dynamo.Vec3{X: 300})
			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{}))
		})

		It("rejects unknown ids", func() {
			Expect(d.StartDrag("ghost")).To(BeFalse())
		})

		It("releases in place without a fling", func() {
			d.StartDrag("a")
			d.Drag("a", dynamo.Vec3{X: -200, Y: 50})
			d.EndDrag("a", nil)

			a, _ := d.Body("a")
			Expect(a.Dragging).To(BeFalse())
			Expect(a.Target).To(Equal(dynamo.Vec3{X: -200, Y: 50}))
			Expect(a.Velocity).To(Equal(dynamo.Vec3{}))
		})

		It("caps fling speed and keeps its direction", func() {
			d.StartDrag("a")
			d.EndDrag("a", &dynamo.Vec3{X: 600, Y: 800})

			a, _ := d.Body("a")
			speed := math.Hypot(a.Velocity.X, a.Velocity.Y)
			Expect(speed).To(BeNumerically("~", sim.MaxFling, 1e-9))
			Expect(a.Velocity.X / speed).To(BeNumerically("~", 0.6, 1e-9))
			Expect(a.Velocity.Y / speed).To(BeNumerically("~", 0.8, 1e-9))
		})

		It("ignores EndDrag for bodies that are not dragging", func() {
			d.SetTargets(map[string]dynamo.Vec3{"a": {X: 300}})
			d.EndDrag("a", &dynamo.Vec3{X: 100})

			a, _ := d.Body("a")
			Expect(a.Target).To(Equal(dynamo.Vec3{X: 300}))
			Expect(a.Velocity).To(Equal(dynamo.Vec3{}))
		})

		It("lets neighbours spring back after a drag passes through them", func() {
			d.StartDrag("a")
			for x := 0.0; x <= 2000; x += 20 {
				d.Drag("a", dynamo.Vec3{X: x})
				d.Tick(frame)
			}
			d.EndDrag("a", nil)
			settle(d, 3000)

			b, _ := d.Body("b")
			Expect(b.Target).To(Equal(dynamo.Vec3{X: 1000}))
			Expect(b.Position).To(Equal(dynamo.Vec3{X: 1000}))

			d.Sync([]sim.Node{node("a", 2000, 0), node("b", 1000, 0)}, nil)
			b, _ = d.Body("b")
			Expect(b.Target).To(Equal(dynamo.Vec3{X: 1000}))
		})

		It("keeps slow flings untouched", func() {
			d.StartDrag("a")
			d.EndDrag("a", &dynamo.Vec3{X: -30, Y: 40})

			a, _ := d.Body("a")
			Expect(a.Velocity).To(Equal(dynamo.Vec3{X: -30, Y: 40}))
		})
	})

	Describe("targets", func() {
		BeforeEach(func() {
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			settle(d, 1000)
		})

		It("springs toward new targets without teleporting", func() {
			d.SetTargets(map[string]dynamo.Vec3{"a": {X: 100}, "ghost": {X: 1}})

			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{}))
			Expect(a.Target).To(Equal(dynamo.Vec3{X: 100}))
			Expect(settle(d, 2000)).To(BeNumerically("<", 2000))
		})

		It("nudges animated transitions most of the way at once", func() {
			d.AnimateTo(map[string]dynamo.Vec3{"a": {X: 100, Y: 200}})

			a, _ := d.Body("a")
			Expect(a.Position.X).To(BeNumerically("~", 85, 1e-9))
			Expect(a.Position.Y).To(BeNumerically("~", 170, 1e-9))
			Expect(d.Config().SpringStiffness).To(Equal(dynamo.DefaultSpringStiffness))
		})
	})

	Describe("config", func() {
		It("merges patches and manages layout groups", func() {
			d.SetConfig(dynamo.ConfigPatch{RepulsionMargin: dynamo.Float(4)})
			d.SetLayoutGroups(map[string][]string{"g": {"a", "b"}})

			cfg := d.Config()
			Expect(cfg.RepulsionMargin).To(Equal(4.0))
			Expect(cfg.SameLayoutGroup("a", "b")).To(BeTrue())

			d.SetLayoutGroups(nil)
			Expect(d.Config().LayoutGroupMap).To(BeNil())
		})
	})

	Describe("Lock", func() {
		It("pins a body against its spring", func() {
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			Expect(d.Lock("a", true)).To(BeTrue())
			d.SetTargets(map[string]dynamo.Vec3{"a": {X: 300}})
			settle(d, 120)

			a, _ := d.Body("a")
			Expect(a.Locked).To(BeTrue())
			Expect(a.Position).To(Equal(dynamo.Vec3{}))

			Expect(d.Lock("a", false)).To(BeTrue())
			settle(d, 2000)
			a, _ = d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{X: 300}))
		})

		It("reports unknown ids", func() {
			Expect(d.Lock("ghost", true)).To(BeFalse())
		})
	})

	Describe("SetLayoutGroups", func() {
		It("exempts members from repulsion until cleared", func() {
			d.SetLayoutGroups(map[string][]string{"g": {"a", "b"}})
			d.Sync([]sim.Node{node("a", 0, 0), node("b", 10, 0)}, nil)
			settle(d, 600)

			cfg := d.Config()
			Expect(cfg.SameLayoutGroup("a", "b")).To(BeTrue())
			a, _ := d.Body("a")
			b, _ := d.Body("b")
			Expect(b.Position.X - a.Position.X).To(BeNumerically("~", 10, 1e-9))

			d.SetLayoutGroups(nil)
			Expect(d.Awake()).To(BeTrue())
			settle(d, 600)

			cfg = d.Config()
			Expect(cfg.SameLayoutGroup("a", "b")).To(BeFalse())
			a, _ = d.Body("a")
			b, _ = d.Body("b")
			gap := math.Hypot(b.Position.X-a.Position.X, b.Position.Y-a.Position.Y)
			Expect(gap).To(BeNumerically(">", bounds.Lookup(bounds.Entity).Height))
		})
	})

	Describe("SetGroups", func() {
		It("resolves edges that end at a group", func() {
			d.Sync([]sim.Node{node("e", 0, 0)}, []dynamo.Edge{{Source: "e", Target: "g"}})
			settle(d, 10)
			e, _ := d.Body("e")
			Expect(e.Position).To(Equal(dynamo.Vec3{}))

			d.SetGroups([]dynamo.Group{{ID: "g", Centroid: dynamo.Vec3{X: 3000}}})
			Expect(d.Awake()).To(BeTrue())
			for i := 0; i < 10; i++ {
				d.Tick(frame)
			}
			e, _ = d.Body("e")
			Expect(e.Position.X).To(BeNumerically(">", 0))
		})
	})

	Describe("Tick", func() {
		It("does nothing once asleep", func() {
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			Expect(d.Tick(frame)).To(BeFalse())

			v := d.Version()
			Expect(d.Tick(frame)).To(BeFalse())
			Expect(d.Version()).To(Equal(v))
		})

		It("agrees with the bare step function", func() {
			bodies := dynamo.Bodies{}
			cfg := dynamo.DefaultConfig()
			bodies.Spawn("a", dynamo.Vec3{}, 180, 72).Target = dynamo.Vec3{X: 100}

			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			d.SetTargets(map[string]dynamo.Vec3{"a": {X: 100}})
			for i := 0; i < 10; i++ {
				d.Tick(frame)
				physics.Step(frame, bodies, nil, &cfg)
			}

			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(bodies["a"].Position))
		})
	})

	Describe("Run", func() {
		It("emits frames, parks when idle and wakes on mutation", func() {
			d = sim.New(dynamo.DefaultConfig(), sim.WithFrameRate(240))
			d.Sync([]sim.Node{node("a", 0, 0)}, nil)
			d.SetTargets(map[string]dynamo.Vec3{"a": {X: 100}})

			frames := make(chan dynamo.Frame, 4096)
			idle := make(chan struct{}, 16)
			d.Subscribe(sim.ObserverFunc(func(f dynamo.Frame) {
				select {
				case frames <- f:
				default:
				}
			}))
			d.OnIdle(func() { idle <- struct{}{} })

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- d.Run(ctx) }()

			Eventually(idle, 10*time.Second).Should(Receive())
			Expect(frames).NotTo(BeEmpty())
			a, _ := d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{X: 100}))

			d.SetTargets(map[string]dynamo.Vec3{"a": {X: 150}})
			Eventually(idle, 10*time.Second).Should(Receive())
			a, _ = d.Body("a")
			Expect(a.Position).To(Equal(dynamo.Vec3{X: 150}))

			cancel()
			Eventually(done, time.Second).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
