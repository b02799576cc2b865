package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/physics"
)

// Overlaps counts overlapping pairs in the most recent frame.
type Overlaps struct {
	margin float64
	last   int
}

func NewOverlaps(margin float64) *Overlaps { return &Overlaps{margin: margin} }

func (o *Overlaps) Name() string { return "overlaps" }

func (o *Overlaps) Observe(f dynamo.Frame) {
	o.last = physics.CountOverlaps(f.Bodies, o.margin)
}

func (o *Overlaps) Value() float64 { return float64(o.last) }

func (o *Overlaps) Reset() { o.last = 0 }

// SettleTime is the clock time at which the simulation last fell asleep. If
// it never settled, Value is the time of the last frame seen.
type SettleTime struct {
	settled bool
	at      float64
	last    float64
}

func NewSettleTime() *SettleTime { return &SettleTime{} }

func (s *SettleTime) Name() string { return "settle_time" }

func (s *SettleTime) Observe(f dynamo.Frame) {
	s.last = f.Time
	if f.Awake {
		s.settled = false
		return
	}
	if !s.settled {
		s.settled = true
		s.at = f.Time
	}
}

func (s *SettleTime) Value() float64 {
	if !s.settled {
		return s.last
	}
	return s.at
}

func (s *SettleTime) Settled() bool { return s.settled }

func (s *SettleTime) Reset() { *s = SettleTime{} }

// AwakeFraction is the share of frames in which something was still moving.
type AwakeFraction struct {
	samples []float64
}

func NewAwakeFraction() *AwakeFraction { return &AwakeFraction{} }

func (a *AwakeFraction) Name() string { return "awake_fraction" }

func (a *AwakeFraction) Observe(f dynamo.Frame) {
	v := 0.0
	if f.Awake {
		v = 1
	}
	a.samples = append(a.samples, v)
}

func (a *AwakeFraction) Value() float64 {
	if len(a.samples) == 0 {
		return 0
	}
	return stat.Mean(a.samples, nil)
}

func (a *AwakeFraction) Reset() { a.samples = a.samples[:0] }
