package physics

import (
	"math"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

const (
	// MaxDt caps a single step so a stalled clock cannot blow up the springs.
	MaxDt = 0.05

	// RepulsionDamping scales overlap depth into a velocity impulse.
	RepulsionDamping = 0.02

	// ReferenceHz is the frame rate VelocityDecay is expressed against.
	ReferenceHz = 60.0

	// SnapDistance is the Manhattan distance to target under which a slow body
	// is snapped onto its target.
	SnapDistance = 1.0

	// TargetSlop is added when pushing overlapping targets apart so chains of
	// neighbours end with a small gap instead of float-level contact.
	TargetSlop = 0.5
)

// Solver runs steps against a reusable broad-phase buffer.
type Solver struct {
	// Groups resolves edge endpoints that name a group instead of a body.
	Groups map[string]*dynamo.Group

	sweep sweeper
}

func NewSolver() *Solver {
	return &Solver{}
}

// Step advances bodies by dt using a throwaway Solver.
func Step(dt float64, bodies dynamo.Bodies, edges []dynamo.Edge, cfg *dynamo.Config) bool {
	var s Solver
	return s.Step(dt, bodies, edges, cfg)
}

// Step advances bodies by dt and reports whether any body is still awake.
// Bodies are mutated in place. Besides positions and velocities this includes
// the Target of a movable body whose rest box overlaps the rest box of another
// body that is not being dragged; see relaxTargets. Edges and cfg are only
// read.
func (s *Solver) Step(dt float64, bodies dynamo.Bodies, edges []dynamo.Edge, cfg *dynamo.Config) bool {
	if dt > MaxDt {
		dt = MaxDt
	}
	if dt <= 0 {
		return false
	}

	applySprings(dt, bodies, cfg)
	s.applyRepulsion(dt, bodies, cfg)
	s.relaxTargets(bodies, cfg)
	s.applyEdges(dt, bodies, edges, cfg)
	return integrate(dt, bodies, cfg)
}

func applySprings(dt float64, bodies dynamo.Bodies, cfg *dynamo.Config) {
	k, c := cfg.SpringStiffness, cfg.SpringDamping
	for _, b := range bodies {
		if !b.Movable() {
			continue
		}
		fx := k*(b.Target.X-b.Position.X) - c*b.Velocity.X
		fy := k*(b.Target.Y-b.Position.Y) - c*b.Velocity.Y
		b.Velocity.X += fx * dt
		b.Velocity.Y += fy * dt
	}
}

func (s *Solver) applyRepulsion(dt float64, bodies dynamo.Bodies, cfg *dynamo.Config) {
	margin := cfg.RepulsionMargin
	scale := cfg.RepulsionStrength * RepulsionDamping * dt

	s.sweep.load(bodies, margin, false)
	s.sweep.pairs(func(a, b *entry) {
		if !a.body.Movable() && !b.body.Movable() {
			return
		}
		if cfg.SameLayoutGroup(a.id, b.id) {
			return
		}
		axis, depth, dir, ok := overlap(a.body.Position, b.body.Position, a.body, b.body, margin)
		if !ok {
			return
		}
		impulse := depth * scale * dir
		if a.body.Movable() {
			addAxis(&a.body.Velocity, axis, -impulse)
		}
		if b.body.Movable() {
			addAxis(&b.body.Velocity, axis, impulse)
		}
	})
}

// relaxTargets pushes overlapping rest positions apart. Without it a spring
// anchored inside a neighbour balances the repulsion at a non-zero overlap and
// the pair never sleeps. A dragged body only passes through: pairs involving
// it are left to repulsion so neighbours spring back once it has gone.
func (s *Solver) relaxTargets(bodies dynamo.Bodies, cfg *dynamo.Config) {
	margin := cfg.RepulsionMargin

	s.sweep.load(bodies, margin, true)
	s.sweep.pairs(func(a, b *entry) {
		if a.body.Dragging || b.body.Dragging {
			return
		}
		am, bm := a.body.Movable(), b.body.Movable()
		if !am && !bm {
			return
		}
		if cfg.SameLayoutGroup(a.id, b.id) {
			return
		}
		axis, depth, dir, ok := overlap(a.body.Target, b.body.Target, a.body, b.body, margin)
		if !ok {
			return
		}
		shift := (depth + TargetSlop) * dir
		switch {
		case am && bm:
			addAxis(&a.body.Target, axis, -shift/2)
			addAxis(&b.body.Target, axis, shift/2)
		case am:
			addAxis(&a.body.Target, axis, -shift)
		default:
			addAxis(&b.body.Target, axis, shift)
		}
	})
}

func (s *Solver) applyEdges(dt float64, bodies dynamo.Bodies, edges []dynamo.Edge, cfg *dynamo.Config) {
	for _, e := range edges {
		pa, a, ok := s.endpoint(e.Source, bodies)
		if !ok {
			continue
		}
		pb, b, ok := s.endpoint(e.Target, bodies)
		if !ok {
			continue
		}

		dx, dy := pb.X-pa.X, pb.Y-pa.Y
		dist := math.Hypot(dx, dy)
		if dist <= cfg.EdgeRestLength || dist == 0 {
			continue
		}

		f := (dist - cfg.EdgeRestLength) * cfg.EdgeStiffness * dt
		ux, uy := dx/dist, dy/dist
		if a != nil && a.Movable() {
			a.Velocity.X += ux * f
			a.Velocity.Y += uy * f
		}
		if b != nil && b.Movable() {
			b.Velocity.X -= ux * f
			b.Velocity.Y -= uy * f
		}
	}
}

// endpoint resolves an edge endpoint to a location. Group endpoints return a
// nil body: the centroid is an anchor and receives no force.
func (s *Solver) endpoint(id string, bodies dynamo.Bodies) (dynamo.Vec3, *dynamo.Body, bool) {
	if b, ok := bodies[id]; ok {
		return b.Position, b, true
	}
	g, ok := s.Groups[id]
	if !ok {
		return dynamo.Vec3{}, nil, false
	}
	return Centroid(g, bodies), nil, true
}

func integrate(dt float64, bodies dynamo.Bodies, cfg *dynamo.Config) bool {
	decay := math.Pow(cfg.VelocityDecay, dt*ReferenceHz)
	awake := false

	for _, b := range bodies {
		if !b.Movable() {
			continue
		}

		speed := math.Hypot(b.Velocity.X, b.Velocity.Y)
		if speed > cfg.MaxVelocity && speed > 0 {
			s := cfg.MaxVelocity / speed
			b.Velocity.X *= s
			b.Velocity.Y *= s
		}

		b.Position.X += b.Velocity.X * dt
		b.Position.Y += b.Velocity.Y * dt
		b.Velocity.X *= decay
		b.Velocity.Y *= decay

		moving := math.Abs(b.Velocity.X)+math.Abs(b.Velocity.Y) >= cfg.SleepThreshold
		away := math.Abs(b.Target.X-b.Position.X)+math.Abs(b.Target.Y-b.Position.Y) >= SnapDistance
		if moving || away {
			awake = true
			continue
		}
		b.Velocity.X, b.Velocity.Y = 0, 0
		b.Position.X, b.Position.Y = b.Target.X, b.Target.Y
	}

	return awake
}

func addAxis(v *dynamo.Vec3, axis int, d float64) {
	if axis == 0 {
		v.X += d
	} else {
		v.Y += d
	}
}
