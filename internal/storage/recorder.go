package storage

import (
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/physics"
)

// FrameRow is one body's position at one sampled frame.
type FrameRow struct {
	Time float64 `csv:"time"`
	ID   string  `csv:"id"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
	Z    float64 `csv:"z"`
}

// EnergyRow is the whole canvas at one frame.
type EnergyRow struct {
	Time          float64 `csv:"time"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	PeakSpeed     float64 `csv:"peak_speed"`
	Awake         bool    `csv:"awake"`
}

// Recorder collects rows from frames. Energy is kept for every frame while
// positions are sampled every Every frames.
type Recorder struct {
	Every  int
	Frames []FrameRow
	Energy []EnergyRow

	n int
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{Every: every}
}

func (r *Recorder) Observe(f dynamo.Frame) {
	r.Energy = append(r.Energy, EnergyRow{
		Time:          f.Time,
		KineticEnergy: physics.KineticEnergy(f.Bodies),
		PeakSpeed:     physics.PeakSpeed(f.Bodies),
		Awake:         f.Awake,
	})

	if r.n%r.Every == 0 {
		for _, id := range f.Bodies.IDs() {
			p := f.Bodies[id].Position
			r.Frames = append(r.Frames, FrameRow{Time: f.Time, ID: id, X: p.X, Y: p.Y, Z: p.Z})
		}
	}
	r.n++
}

// Trajectories groups frame rows by body id, in time order.
func Trajectories(rows []FrameRow) map[string][]dynamo.Vec3 {
	out := make(map[string][]dynamo.Vec3)
	for _, r := range rows {
		out[r.ID] = append(out[r.ID], dynamo.Vec3{X: r.X, Y: r.Y, Z: r.Z})
	}
	return out
}

// Last returns the final sampled position of every body.
func Last(rows []FrameRow) map[string]dynamo.Vec3 {
	out := make(map[string]dynamo.Vec3)
	for _, r := range rows {
		out[r.ID] = dynamo.Vec3{X: r.X, Y: r.Y, Z: r.Z}
	}
	return out
}
