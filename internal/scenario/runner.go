package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/layout"
	"github.com/san-kum/canvasflow/internal/metrics"
	"github.com/san-kum/canvasflow/internal/sim"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultDuration = 30.0
)

// Options controls a replay.
type Options struct {
	Dt       float64
	Duration float64

	// StopWhenSettled ends the replay at the first sleep after the last action.
	StopWhenSettled bool

	Metrics []metrics.Metric

	// OnFrame sees every frame after its step. Frame.Bodies is only valid
	// during the call.
	OnFrame func(f dynamo.Frame)

	Layouts *layout.Registry
	Logger  *slog.Logger
}

// Result summarises one replay.
type Result struct {
	Name    string
	Steps   int
	Time    float64
	Settled bool
	Metrics map[string]float64
	Final   map[string]dynamo.Vec3
	Config  dynamo.Config

	// Nodes is the host node list at the end, positioned at Final.
	Nodes []sim.Node
	// Bodies is a copy of the body store at the end.
	Bodies dynamo.Bodies
}

// Runner replays scenarios.
type Runner struct {
	opts Options
	log  *slog.Logger
}

func NewRunner(opts Options) *Runner {
	if opts.Dt <= 0 {
		opts.Dt = DefaultDt
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Layouts == nil {
		opts.Layouts = layout.NewRegistry()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{opts: opts, log: log}
}

type activeDrag struct {
	action *DragAction
	start  float64
}

// replay holds the host-side view of the canvas: the node list a real
// frontend would keep and resync after every change.
type replay struct {
	d       *sim.Driver
	layouts *layout.Registry
	nodes   []sim.Node
	edges   []dynamo.Edge
	drags   []activeDrag
}

// Run replays s on a fresh driver configured with base.
func (r *Runner) Run(ctx context.Context, s *Scenario, base dynamo.Config) (*Result, error) {
	d := sim.New(base, sim.WithLogger(r.log))
	s.Setup(d)

	rp := &replay{
		d:       d,
		layouts: r.opts.Layouts,
		nodes:   s.NodeList(),
		edges:   s.EdgeList(),
	}

	for _, m := range r.opts.Metrics {
		m.Reset()
	}

	r.log.Info("scenario started", "name", s.Name, "nodes", len(rp.nodes), "edges", len(rp.edges), "actions", len(s.Actions))

	dt := r.opts.Dt
	steps := int(r.opts.Duration/dt + 0.5)
	lastAction := s.LastAction()
	next := 0
	clock := 0.0
	awake := true
	res := &Result{Name: s.Name}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for next < len(s.Actions) && s.Actions[next].At <= clock+dt/2 {
			if err := rp.apply(&s.Actions[next], clock); err != nil {
				return nil, fmt.Errorf("action at %.3fs: %w", s.Actions[next].At, err)
			}
			next++
		}
		rp.advanceDrags(clock)

		awake = d.Tick(dt)
		clock += dt
		res.Steps++

		d.Inspect(func(f dynamo.Frame) {
			for _, m := range r.opts.Metrics {
				m.Observe(f)
			}
			if r.opts.OnFrame != nil {
				r.opts.OnFrame(f)
			}
		})

		if r.opts.StopWhenSettled && !awake && next == len(s.Actions) && len(rp.drags) == 0 && clock >= lastAction {
			break
		}
	}

	res.Time = clock
	res.Settled = !awake
	res.Metrics = metrics.Summary(r.opts.Metrics)
	res.Final = d.Positions()
	res.Config = d.Config()
	res.Nodes = rp.nodes
	for i := range res.Nodes {
		res.Nodes[i].Position = res.Final[res.Nodes[i].ID]
	}
	d.Inspect(func(f dynamo.Frame) {
		res.Bodies = make(dynamo.Bodies, len(f.Bodies))
		for id, b := range f.Bodies {
			c := *b
			res.Bodies[id] = &c
		}
	})

	r.log.Info("scenario finished", "name", s.Name, "steps", res.Steps, "time", res.Time, "settled", res.Settled)
	return res, nil
}

func (rp *replay) apply(a *Action, clock float64) error {
	resync := false

	if a.Config != nil {
		rp.d.SetConfig(*a.Config)
	}
	if len(a.Add) > 0 {
		for _, n := range a.Add {
			rp.nodes = append(rp.nodes, n.Node())
		}
		resync = true
	}
	if len(a.Remove) > 0 {
		gone := make(map[string]bool, len(a.Remove))
		for _, id := range a.Remove {
			gone[id] = true
		}
		kept := rp.nodes[:0]
		for _, n := range rp.nodes {
			if !gone[n.ID] {
				kept = append(kept, n)
			}
		}
		rp.nodes = kept
		resync = true
	}
	for _, id := range a.Lock {
		resync = rp.setLocked(id, true) || resync
	}
	for _, id := range a.Unlock {
		resync = rp.setLocked(id, false) || resync
	}
	if resync {
		rp.d.Sync(rp.nodes, rp.edges)
	}

	if len(a.Targets) > 0 {
		targets := make(map[string]dynamo.Vec3, len(a.Targets))
		for id, p := range a.Targets {
			targets[id] = p.Vec()
		}
		rp.d.SetTargets(targets)
		rp.moveNodes(targets)
	}

	if a.Layout != nil {
		l, err := rp.layouts.Get(a.Layout.Name, a.Layout.Params)
		if err != nil {
			return err
		}
		res := layout.Apply(rp.d, rp.nodes, l)
		rp.moveNodes(res.Targets)
	}

	if a.Drag != nil {
		if rp.d.StartDrag(a.Drag.ID) {
			rp.drags = append(rp.drags, activeDrag{action: a.Drag, start: clock})
		}
	}
	return nil
}

func (rp *replay) setLocked(id string, locked bool) bool {
	for i := range rp.nodes {
		if rp.nodes[i].ID == id {
			rp.nodes[i].Locked = locked
			return true
		}
	}
	return false
}

// moveNodes records new canonical positions so later syncs see no change.
func (rp *replay) moveNodes(pos map[string]dynamo.Vec3) {
	for i := range rp.nodes {
		if p, ok := pos[rp.nodes[i].ID]; ok {
			rp.nodes[i].Position = p
		}
	}
}

// advanceDrags moves every active drag along its path and releases the ones
// that reached the end.
func (rp *replay) advanceDrags(clock float64) {
	kept := rp.drags[:0]
	for _, ad := range rp.drags {
		a := ad.action
		t := (clock - ad.start) / a.duration()
		pos := pathPoint(a.Path, t)
		rp.d.Drag(a.ID, pos)

		if t < 1 {
			kept = append(kept, ad)
			continue
		}
		var fling *dynamo.Vec3
		if a.Fling != nil {
			v := a.Fling.Vec()
			fling = &v
		}
		rp.d.EndDrag(a.ID, fling)
		rp.moveNodes(map[string]dynamo.Vec3{a.ID: pos})
	}
	rp.drags = kept
}

// pathPoint interpolates linearly along the polyline at fraction t in [0, 1].
func pathPoint(path []Point, t float64) dynamo.Vec3 {
	if t <= 0 || len(path) == 1 {
		return path[0].Vec()
	}
	if t >= 1 {
		return path[len(path)-1].Vec()
	}
	f := t * float64(len(path)-1)
	i := int(f)
	return path[i].Vec().Lerp(path[i+1].Vec(), f-float64(i))
}
