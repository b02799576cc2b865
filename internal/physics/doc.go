// Package physics implements the canvas step function.
//
// [Step] advances a [dynamo.Bodies] store by one frame. The phases run in a
// fixed order, and each one reads the velocities written by the one before:
//
//  1. dt clamp ([MaxDt])
//  2. spring-to-target
//  3. collision repulsion (sweep-and-prune broad phase, minimum-overlap push)
//  4. edge attraction beyond the rest length
//  5. integration, frame-rate independent decay and sleep snapping
//
// Only x and y are simulated. Z is a layering value and passes through
// untouched.
//
// Dragging bodies are skipped by every phase. Locked bodies never move, but
// they still act as obstacles for their neighbours.
//
// # Targets
//
// Step normally leaves Target alone. The one exception is overlapping rest
// positions: when two targets overlap (neither body dragged), they are pushed
// apart so the springs agree with repulsion. Locked bodies keep their target
// and the movable partner takes the whole shift.
//
// # Allocation
//
// A [Solver] keeps its broad-phase buffer between calls, so a warm solver
// does not allocate. The package-level [Step] builds a throwaway solver and
// is meant for tests and one-off use.
package physics
