package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

func frameAt(t float64, awake bool, bodies dynamo.Bodies) dynamo.Frame {
	return dynamo.Frame{Time: t, Awake: awake, Bodies: bodies}
}

func TestKineticEnergy(t *testing.T) {
	bs := dynamo.Bodies{}
	b := bs.Spawn("a", dynamo.Vec3{}, 10, 10)
	m := NewKineticEnergy()

	b.Velocity = dynamo.Vec3{X: 2}
	m.Observe(frameAt(0, true, bs))
	b.Velocity = dynamo.Vec3{X: 4}
	m.Observe(frameAt(1, true, bs))

	if got := m.Value(); math.Abs(got-5) > 1e-12 {
		t.Errorf("expected mean energy 5, got %v", got)
	}
	if len(m.Series()) != 2 {
		t.Errorf("expected 2 samples, got %d", len(m.Series()))
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", m.Value())
	}
}

func TestPeakSpeed(t *testing.T) {
	bs := dynamo.Bodies{}
	b := bs.Spawn("a", dynamo.Vec3{}, 10, 10)
	m := NewPeakSpeed()

	for _, v := range []dynamo.Vec3{{X: 3, Y: 4}, {X: 1}, {}} {
		b.Velocity = v
		m.Observe(frameAt(0, true, bs))
	}
	if got := m.Value(); math.Abs(got-5) > 1e-12 {
		t.Errorf("expected peak 5, got %v", got)
	}
}

func TestOverlaps(t *testing.T) {
	bs := dynamo.Bodies{}
	bs.Spawn("a", dynamo.Vec3{}, 100, 100)
	bs.Spawn("b", dynamo.Vec3{X: 105}, 100, 100)
	m := NewOverlaps(12)

	m.Observe(frameAt(0, true, bs))
	if m.Value() != 1 {
		t.Errorf("expected 1 overlap inside the margin, got %v", m.Value())
	}

	bs["b"].Position.X = 200
	m.Observe(frameAt(1, false, bs))
	if m.Value() != 0 {
		t.Errorf("expected 0 overlaps, got %v", m.Value())
	}
}

func TestSettleTime(t *testing.T) {
	m := NewSettleTime()
	seq := []struct {
		t     float64
		awake bool
	}{
		{0.1, true}, {0.2, false}, {0.3, false}, {0.4, true}, {0.5, true}, {0.6, false}, {0.7, false},
	}
	for _, s := range seq {
		m.Observe(frameAt(s.t, s.awake, nil))
	}

	if !m.Settled() || m.Value() != 0.6 {
		t.Errorf("expected settle at 0.6, got %v (settled=%v)", m.Value(), m.Settled())
	}

	m.Reset()
	m.Observe(frameAt(1.5, true, nil))
	if m.Settled() || m.Value() != 1.5 {
		t.Errorf("unsettled run should report its last time, got %v", m.Value())
	}
}

func TestAwakeFraction(t *testing.T) {
	m := NewAwakeFraction()
	for _, awake := range []bool{true, true, true, false} {
		m.Observe(frameAt(0, awake, nil))
	}
	if got := m.Value(); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
}

func TestSummary(t *testing.T) {
	ms := Default(12)
	s := Summary(ms)
	if len(s) != len(ms) {
		t.Fatalf("expected %d entries, got %d", len(ms), len(s))
	}
	names := Names(ms)
	if names[0] != "awake_fraction" || names[len(names)-1] != "settle_time" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 1.0 / 60
	series := make([]float64, 120)
	for i := range series {
		series[i] = 10 + math.Sin(2*math.Pi*2*float64(i)*dt)
	}
	if got := dominantFrequency(series, dt); math.Abs(got-2) > 1e-9 {
		t.Errorf("expected 2Hz, got %v", got)
	}

	flat := make([]float64, 64)
	for i := range flat {
		flat[i] = 3
	}
	if got := dominantFrequency(flat, dt); got != 0 {
		t.Errorf("expected 0 for a flat series, got %v", got)
	}
}

func TestRinging_TooShort(t *testing.T) {
	m := NewRinging()
	bs := dynamo.Bodies{}
	bs.Spawn("a", dynamo.Vec3{}, 10, 10).Velocity = dynamo.Vec3{X: 1}
	for i := 0; i < minRingingSamples-1; i++ {
		m.Observe(frameAt(float64(i), true, bs))
	}
	if m.Value() != 0 {
		t.Errorf("expected 0 below the sample floor, got %v", m.Value())
	}
}
