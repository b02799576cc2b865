// Package sim drives the canvas physics engine.
//
// A [Driver] owns the body store and binds [physics.Step] to a clock. Hosts
// feed it the logical node and edge lists through [Driver.Sync] and use the
// imperative API for drags, retargeting and config changes:
//
//	d := sim.New(dynamo.DefaultConfig())
//	d.Sync(nodes, edges)
//	d.StartDrag("n1")
//	d.Drag("n1", dynamo.Vec3{X: 40, Y: 10})
//	d.EndDrag("n1", &fling)
//
// # Clock Modes
//
// In external mode the host calls [Driver.Tick] once per rendered frame. In
// self-scheduling mode [Driver.Run] steps on its own ticker while the
// simulation is awake, notifies subscribers after each step and parks once
// everything has settled. Any mutation wakes it again.
package sim
