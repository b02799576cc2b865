// Package metrics measures how a canvas simulation behaves over time.
package metrics

import (
	"sort"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

// Metric accumulates one number over a sequence of frames.
type Metric interface {
	Name() string
	Observe(f dynamo.Frame)
	Value() float64
	Reset()
}

// Default returns a fresh set of the standard metrics.
func Default(margin float64) []Metric {
	return []Metric{
		NewKineticEnergy(),
		NewPeakSpeed(),
		NewOverlaps(margin),
		NewSettleTime(),
		NewAwakeFraction(),
		NewRinging(),
	}
}

// Summary collects the current value of each metric by name.
func Summary(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names lists the metric names in sorted order.
func Names(ms []Metric) []string {
	names := make([]string, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}
