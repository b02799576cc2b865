package metrics

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/physics"
)

const minRingingSamples = 16

// Ringing is the dominant frequency, in Hz, of the kinetic energy series. A
// well damped canvas decays without oscillating and reports 0 or a low value;
// an underdamped one rings at its spring frequency.
type Ringing struct {
	times   []float64
	samples []float64
}

func NewRinging() *Ringing { return &Ringing{} }

func (r *Ringing) Name() string { return "ringing" }

func (r *Ringing) Observe(f dynamo.Frame) {
	r.times = append(r.times, f.Time)
	r.samples = append(r.samples, physics.KineticEnergy(f.Bodies))
}

func (r *Ringing) Value() float64 {
	n := len(r.samples)
	if n < minRingingSamples {
		return 0
	}
	dt := (r.times[n-1] - r.times[0]) / float64(n-1)
	return dominantFrequency(r.samples, dt)
}

func (r *Ringing) Reset() {
	r.times = r.times[:0]
	r.samples = r.samples[:0]
}

// dominantFrequency returns the strongest non-DC frequency of a series
// sampled every dt seconds, or 0 for a flat series.
func dominantFrequency(series []float64, dt float64) float64 {
	n := len(series)
	if n < 2 || dt <= 0 {
		return 0
	}

	mean := stat.Mean(series, nil)
	buf := make([]complex128, n)
	for i, v := range series {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		buf[i] = complex((v-mean)*window, 0)
	}
	spectrum := fft.FFT(buf)

	best, peak := 0, 1e-12
	for k := 1; k <= n/2; k++ {
		if mag := cmplx.Abs(spectrum[k]); mag > peak {
			best, peak = k, mag
		}
	}
	return float64(best) / (float64(n) * dt)
}
