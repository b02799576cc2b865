package physics

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

type entry struct {
	id       string
	body     *dynamo.Body
	min, max float64
}

// sweeper is a sweep-and-prune broad phase over X intervals. The entry buffer
// is reused between steps.
type sweeper struct {
	entries []entry
}

// load fills the buffer with every body's X interval, widened by half the
// margin on each side, centred on the position or the target. Ties on the
// left edge are broken by id so pair order does not depend on map order.
func (s *sweeper) load(bodies dynamo.Bodies, margin float64, targets bool) {
	s.entries = s.entries[:0]
	for id, b := range bodies {
		x := b.Position.X
		if targets {
			x = b.Target.X
		}
		half := b.Width/2 + margin/2
		s.entries = append(s.entries, entry{id: id, body: b, min: x - half, max: x + half})
	}
	slices.SortFunc(s.entries, func(a, b entry) int {
		if c := cmp.Compare(a.min, b.min); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
}

// pairs calls fn for every pair whose intervals overlap. The lower sorted
// entry is always passed first.
func (s *sweeper) pairs(fn func(a, b *entry)) {
	for i := range s.entries {
		a := &s.entries[i]
		for j := i + 1; j < len(s.entries); j++ {
			b := &s.entries[j]
			if b.min >= a.max {
				break
			}
			fn(a, b)
		}
	}
}

// overlap runs the exact AABB test for boxes centred at pa and pb. It returns
// the axis of minimum penetration (0 = x, 1 = y), the depth along it and the
// direction from a to b on that axis. Coincident centres push b toward +.
func overlap(pa, pb dynamo.Vec3, a, b *dynamo.Body, margin float64) (axis int, depth, dir float64, ok bool) {
	dx, dy := pb.X-pa.X, pb.Y-pa.Y
	ox := (a.Width+b.Width)/2 + margin - math.Abs(dx)
	oy := (a.Height+b.Height)/2 + margin - math.Abs(dy)
	if ox <= 0 || oy <= 0 {
		return 0, 0, 0, false
	}
	if ox < oy {
		return 0, ox, sign(dx), true
	}
	return 1, oy, sign(dy), true
}

func sign(d float64) float64 {
	if d < 0 {
		return -1
	}
	return 1
}
