package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/physics"
)

// KineticEnergy is the mean kinetic energy per frame. The per-frame samples
// are kept for plotting.
type KineticEnergy struct {
	samples []float64
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) Observe(f dynamo.Frame) {
	k.samples = append(k.samples, physics.KineticEnergy(f.Bodies))
}

func (k *KineticEnergy) Value() float64 {
	if len(k.samples) == 0 {
		return 0
	}
	return stat.Mean(k.samples, nil)
}

func (k *KineticEnergy) Series() []float64 { return k.samples }

func (k *KineticEnergy) Reset() { k.samples = k.samples[:0] }

// PeakSpeed is the fastest any movable body went.
type PeakSpeed struct {
	samples []float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(f dynamo.Frame) {
	p.samples = append(p.samples, physics.PeakSpeed(f.Bodies))
}

func (p *PeakSpeed) Value() float64 {
	if len(p.samples) == 0 {
		return 0
	}
	return floats.Max(p.samples)
}

func (p *PeakSpeed) Reset() { p.samples = p.samples[:0] }
