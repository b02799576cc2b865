package physics

import (
	"math"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

// Overlaps reports whether two bodies' boxes, grown by margin, intersect at
// their current positions.
func Overlaps(a, b *dynamo.Body, margin float64) bool {
	_, _, _, ok := overlap(a.Position, b.Position, a, b, margin)
	return ok
}

// CountOverlaps counts intersecting pairs using the same broad phase as Step.
func CountOverlaps(bodies dynamo.Bodies, margin float64) int {
	var s sweeper
	s.load(bodies, margin, false)
	n := 0
	s.pairs(func(a, b *entry) {
		if Overlaps(a.body, b.body, margin) {
			n++
		}
	})
	return n
}

// Centroid is the mean position of the group's members present in bodies,
// or the group's stored centroid if none are.
func Centroid(g *dynamo.Group, bodies dynamo.Bodies) dynamo.Vec3 {
	var sum dynamo.Vec3
	n := 0
	for _, id := range g.Members {
		if b, ok := bodies[id]; ok {
			sum = sum.Add(b.Position)
			n++
		}
	}
	if n == 0 {
		return g.Centroid
	}
	return sum.Scale(1 / float64(n))
}

// KineticEnergy sums 0.5*|v|^2 over the movable bodies (unit mass).
func KineticEnergy(bodies dynamo.Bodies) float64 {
	e := 0.0
	for _, b := range bodies {
		if !b.Movable() {
			continue
		}
		e += 0.5 * (b.Velocity.X*b.Velocity.X + b.Velocity.Y*b.Velocity.Y)
	}
	return e
}

// PeakSpeed is the largest planar speed among movable bodies.
func PeakSpeed(bodies dynamo.Bodies) float64 {
	peak := 0.0
	for _, b := range bodies {
		if !b.Movable() {
			continue
		}
		peak = math.Max(peak, math.Hypot(b.Velocity.X, b.Velocity.Y))
	}
	return peak
}
