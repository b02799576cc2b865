package gui

import (
	"sort"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

// flingWindow is how far back pointer samples count towards the release
// velocity, in seconds.
const flingWindow = 0.1

type pointerSample struct {
	pos dynamo.Vec3
	t   float64
}

// flingTracker estimates the pointer velocity at release from recent motion.
type flingTracker struct {
	samples []pointerSample
}

func (f *flingTracker) Reset() { f.samples = f.samples[:0] }

func (f *flingTracker) Add(pos dynamo.Vec3, t float64) {
	f.samples = append(f.samples, pointerSample{pos: pos, t: t})
	cut := 0
	for cut < len(f.samples)-1 && t-f.samples[cut].t > flingWindow {
		cut++
	}
	f.samples = f.samples[cut:]
}

// Velocity is the average velocity across the window, or zero when the
// pointer has been still.
func (f *flingTracker) Velocity() dynamo.Vec3 {
	if len(f.samples) < 2 {
		return dynamo.Vec3{}
	}
	first, last := f.samples[0], f.samples[len(f.samples)-1]
	dt := last.t - first.t
	if dt <= 0 {
		return dynamo.Vec3{}
	}
	v := last.pos.Sub(first.pos).Scale(1 / dt)
	v.Z = 0
	return v
}

// hitTest returns the topmost body containing p. Bodies are drawn in id order
// so the last match is on top.
func hitTest(bodies dynamo.Bodies, p dynamo.Vec3) (string, bool) {
	ids := make([]string, 0, len(bodies))
	for id := range bodies {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	for _, id := range ids {
		b := bodies[id]
		if p.X >= b.Position.X-b.Width/2 && p.X <= b.Position.X+b.Width/2 &&
			p.Y >= b.Position.Y-b.Height/2 && p.Y <= b.Position.Y+b.Height/2 {
			return id, true
		}
	}
	return "", false
}
