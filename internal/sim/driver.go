package sim

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/physics"
)

const (
	// SnapThreshold is the per-axis jump beyond which an external reposition
	// teleports the body instead of spring-animating it.
	SnapThreshold = 50.0

	WarmupSteps = 8
	WarmupDt    = 1.0 / 60

	// MaxFling caps the planar speed of a release velocity.
	MaxFling = 250.0

	// NudgeFraction is how far AnimateTo moves a body toward its new target
	// before the spring takes over.
	NudgeFraction = 0.85

	BoostFactor   = 3.0
	BoostDuration = 0.6

	DefaultFrameRate = 60
)

// Option configures a Driver.
type Option func(*Driver)

func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithFrameRate sets the tick rate used by Run.
func WithFrameRate(hz int) Option {
	return func(d *Driver) {
		if hz > 0 {
			d.interval = time.Second / time.Duration(hz)
		}
	}
}

type boost struct {
	base  float64
	until float64
}

// Driver binds the step function to a clock and to the external node list.
// All methods are safe for concurrent use.
type Driver struct {
	mu sync.Mutex

	bodies  dynamo.Bodies
	anchors map[string]dynamo.Vec3
	edges   []dynamo.Edge
	cfg     dynamo.Config
	solver  *physics.Solver

	awake   bool
	version uint64
	clock   float64
	boost   *boost

	// parkedAt is set while Run waits for a wake.
	parkedAt time.Time

	observers []Observer
	idle      []func()
	wake      chan struct{}
	interval  time.Duration
	log       *slog.Logger
}

func New(cfg dynamo.Config, opts ...Option) *Driver {
	d := &Driver{
		bodies:   dynamo.Bodies{},
		anchors:  make(map[string]dynamo.Vec3),
		cfg:      cfg,
		solver:   physics.NewSolver(),
		wake:     make(chan struct{}, 1),
		interval: time.Second / DefaultFrameRate,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Sync reconciles the body store with the external node and edge lists.
func (d *Driver) Sync(nodes []Node, edges []dynamo.Edge) {
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := make(map[string]struct{}, len(nodes))
	created, snapped := 0, 0

	for _, n := range nodes {
		seen[n.ID] = struct{}{}
		size := bounds.Lookup(n.Type)

		b, ok := d.bodies[n.ID]
		if !ok {
			b = d.bodies.Spawn(n.ID, n.Position, size.Width, size.Height)
			b.Locked = n.Locked
			d.anchors[n.ID] = n.Position
			created++
			continue
		}

		b.Width, b.Height = size.Width, size.Height
		b.Locked = n.Locked
		if b.Dragging {
			continue
		}

		anchor, ok := d.anchors[n.ID]
		if !ok {
			anchor = b.Target
		}
		delta := n.Position.Sub(anchor)
		switch {
		case math.Abs(delta.X) > SnapThreshold || math.Abs(delta.Y) > SnapThreshold:
			b.Position = n.Position
			b.Target = n.Position
			b.Velocity = dynamo.Vec3{}
			snapped++
		case delta != (dynamo.Vec3{}):
			b.Target = n.Position
		}
		d.anchors[n.ID] = n.Position
	}

	removed := 0
	for id := range d.bodies {
		if _, ok := seen[id]; !ok {
			delete(d.bodies, id)
			delete(d.anchors, id)
			removed++
		}
	}

	d.edges = slices.Clone(edges)

	if created > 0 && len(d.bodies) > 1 {
		for i := 0; i < WarmupSteps; i++ {
			d.solver.Step(WarmupDt, d.bodies, d.edges, &d.cfg)
		}
	}

	if created+removed+snapped > 0 {
		d.log.Debug("sync", "bodies", len(d.bodies), "created", created, "removed", removed, "snapped", snapped)
	}
	d.version++
	d.wakeLocked()
}

// SetLayoutGroups rebuilds the node -> layout group map. An empty assignment
// removes the map so every pair repels again.
func (d *Driver) SetLayoutGroups(groups map[string][]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(groups) == 0 {
		d.cfg.Merge(dynamo.ConfigPatch{ClearLayoutGroups: true})
		d.wakeLocked()
		return
	}
	m := make(map[string]string)
	for gid, members := range groups {
		for _, id := range members {
			m[id] = gid
		}
	}
	d.cfg.Merge(dynamo.ConfigPatch{LayoutGroupMap: m})
	d.wakeLocked()
}

// SetGroups replaces the groups that edges may use as endpoints.
func (d *Driver) SetGroups(groups []dynamo.Group) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := make(map[string]*dynamo.Group, len(groups))
	for i := range groups {
		g := groups[i]
		g.Members = slices.Clone(g.Members)
		m[g.ID] = &g
	}
	d.solver.Groups = m
	d.wakeLocked()
}

// SetTargets retargets every listed body that is not being dragged.
func (d *Driver) SetTargets(targets map[string]dynamo.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.retargetLocked(targets, 0)
	d.wakeLocked()
}

// AnimateTo retargets like SetTargets, moves each body most of the way there
// at once and stiffens the springs for BoostDuration seconds of driver time.
// A transition that starts while a boost is active extends the window and
// keeps the original stiffness as the value to restore.
func (d *Driver) AnimateTo(targets map[string]dynamo.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.catchUpLocked()
	if d.retargetLocked(targets, NudgeFraction) == 0 {
		return
	}
	if d.boost == nil {
		d.boost = &boost{base: d.cfg.SpringStiffness}
		d.cfg.SpringStiffness = d.boost.base * BoostFactor
	}
	d.boost.until = d.clock + BoostDuration
	d.version++
	d.wakeLocked()
}

func (d *Driver) retargetLocked(targets map[string]dynamo.Vec3, nudge float64) int {
	n := 0
	for id, t := range targets {
		b, ok := d.bodies[id]
		if !ok || b.Dragging {
			continue
		}
		b.Target = t
		d.anchors[id] = t
		if nudge > 0 {
			b.Position = b.Position.Lerp(t, nudge)
		}
		n++
	}
	return n
}

// StartDrag pins the body under the pointer. It reports false for unknown ids.
func (d *Driver) StartDrag(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.bodies[id]
	if !ok {
		return false
	}
	b.Dragging = true
	b.Velocity = dynamo.Vec3{}
	d.wakeLocked()
	return true
}

// Drag moves a dragged body 1:1 with the pointer.
func (d *Driver) Drag(id string, pos dynamo.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.bodies[id]
	if !ok || !b.Dragging {
		return
	}
	b.Position = pos
	b.Target = pos
	d.anchors[id] = pos
	d.version++
	d.wakeLocked()
}

// EndDrag releases the body where it is. A non-nil fling becomes its velocity,
// scaled down to MaxFling if faster.
func (d *Driver) EndDrag(id string, fling *dynamo.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.bodies[id]
	if !ok || !b.Dragging {
		return
	}
	b.Dragging = false
	b.Target = b.Position
	d.anchors[id] = b.Position
	if fling != nil {
		v := dynamo.Vec3{X: fling.X, Y: fling.Y}
		if speed := math.Hypot(v.X, v.Y); speed > MaxFling {
			v = v.Scale(MaxFling / speed)
		}
		b.Velocity = v
	}
	d.wakeLocked()
}

// Lock pins or releases a body without going through Sync.
func (d *Driver) Lock(id string, locked bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.bodies[id]
	if !ok {
		return false
	}
	b.Locked = locked
	b.Velocity = dynamo.Vec3{}
	d.wakeLocked()
	return true
}

// SetConfig merges a partial override into the running config. Changing the
// spring stiffness during a boost changes the value restored afterwards.
func (d *Driver) SetConfig(p dynamo.ConfigPatch) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cfg.Merge(p)
	if d.boost != nil && p.SpringStiffness != nil {
		d.boost.base = *p.SpringStiffness
		d.cfg.SpringStiffness = d.boost.base * BoostFactor
	}
	d.wakeLocked()
}

// Config returns a copy of the current config with any boost undone.
func (d *Driver) Config() dynamo.Config {
	d.mu.Lock()
	defer d.mu.Unlock()

	cfg := d.cfg
	if d.boost != nil {
		cfg.SpringStiffness = d.boost.base
	}
	if cfg.LayoutGroupMap != nil {
		m := make(map[string]string, len(cfg.LayoutGroupMap))
		for k, v := range cfg.LayoutGroupMap {
			m[k] = v
		}
		cfg.LayoutGroupMap = m
	}
	return cfg
}

// Tick advances the simulation by dt in externally driven mode. It does not
// notify observers and does nothing while asleep.
func (d *Driver) Tick(dt float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, awake := d.advanceLocked(dt)
	return awake
}

func (d *Driver) advanceLocked(dt float64) (stepped, awake bool) {
	d.elapseLocked(dt)
	if !d.awake {
		return false, false
	}
	d.awake = d.solver.Step(dt, d.bodies, d.edges, &d.cfg)
	d.version++
	return true, d.awake
}

// Run steps the simulation on its own ticker until ctx is cancelled. While
// asleep it parks until the next mutation wakes it.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info("driver loop started", "interval", d.interval)
	last := time.Now()
	parked := false

	for {
		if !d.Awake() {
			if !parked {
				d.notifyIdle()
				parked = true
			}
			if err := d.park(ctx); err != nil {
				d.log.Info("driver loop stopped", "reason", err)
				return err
			}
			last = time.Now()
		}

		select {
		case <-ctx.Done():
			d.log.Info("driver loop stopped", "reason", ctx.Err())
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if d.stepAndEmit(dt) {
				parked = false
			}
		}
	}
}

// park blocks until the next wake. The driver clock keeps running on wall
// time meanwhile, so a stiffness boost still ends on schedule.
func (d *Driver) park(ctx context.Context) error {
	d.mu.Lock()
	d.parkedAt = time.Now()
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.catchUpLocked()
		d.parkedAt = time.Time{}
		d.mu.Unlock()
	}()

	for {
		left, ok := d.boostLeft()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.wake:
				return nil
			}
		}

		timer := time.NewTimer(left)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-d.wake:
			timer.Stop()
			return nil
		case <-timer.C:
			d.mu.Lock()
			d.catchUpLocked()
			d.mu.Unlock()
		}
	}
}

// catchUpLocked adds the wall time spent parked to the driver clock.
func (d *Driver) catchUpLocked() {
	if d.parkedAt.IsZero() {
		return
	}
	now := time.Now()
	d.elapseLocked(now.Sub(d.parkedAt).Seconds())
	d.parkedAt = now
}

// elapseLocked advances the driver clock and ends an expired boost.
func (d *Driver) elapseLocked(dt float64) {
	if dt > 0 {
		d.clock += dt
	}
	if d.boost != nil && d.clock >= d.boost.until {
		d.cfg.SpringStiffness = d.boost.base
		d.boost = nil
	}
}

// boostLeft reports the driver time until the active boost ends.
func (d *Driver) boostLeft() (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.boost == nil {
		return 0, false
	}
	left := max(d.boost.until-d.clock, 0)
	return time.Duration(left*float64(time.Second)) + time.Millisecond, true
}

func (d *Driver) stepAndEmit(dt float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	stepped, _ := d.advanceLocked(dt)
	if stepped && len(d.observers) > 0 {
		f := d.frameLocked()
		for _, o := range d.observers {
			o.OnFrame(f)
		}
	}
	return stepped
}

func (d *Driver) notifyIdle() {
	d.mu.Lock()
	fns := slices.Clone(d.idle)
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers an observer for self-scheduled steps.
func (d *Driver) Subscribe(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

// OnIdle registers a callback fired each time Run parks.
func (d *Driver) OnIdle(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idle = append(d.idle, fn)
}

// Inspect hands fn a frame backed by the live store while the driver is
// locked.
func (d *Driver) Inspect(fn func(f dynamo.Frame)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.frameLocked())
}

func (d *Driver) frameLocked() dynamo.Frame {
	return dynamo.Frame{
		Version:   d.version,
		Time:      d.clock,
		Awake:     d.awake,
		Positions: d.bodies.Positions(),
		Bodies:    d.bodies,
	}
}

// wakeLocked marks the simulation awake and unparks Run if it is waiting.
func (d *Driver) wakeLocked() {
	d.awake = true
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Driver) Positions() map[string]dynamo.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bodies.Positions()
}

// Version changes whenever positions may have changed.
func (d *Driver) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

func (d *Driver) Awake() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.awake
}

func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bodies)
}

// Body returns a copy of the body's state.
func (d *Driver) Body(id string) (dynamo.Body, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.bodies[id]
	if !ok {
		return dynamo.Body{}, false
	}
	return *b, true
}

// Edges returns a copy of the current edge list.
func (d *Driver) Edges() []dynamo.Edge {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.edges)
}

// Clock is the total time fed to the driver so far, in seconds.
func (d *Driver) Clock() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catchUpLocked()
	return d.clock
}
