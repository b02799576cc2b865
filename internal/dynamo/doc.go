// Package dynamo provides the core primitives of the canvas physics engine.
//
// The package defines the data shared by the step function, the driver and
// every tool built on top of them:
//
//   - [Vec3]: three-component vector; z is a layering value and is never simulated
//   - [Body]: mutable physical state of one canvas node
//   - [Bodies]: the body store, keyed by node id
//   - [Edge] and [Group]: relations between bodies, used for attraction
//   - [Config] and [ConfigPatch]: tunable constants and their partial overrides
//
// # Example
//
//	bodies := dynamo.Bodies{}
//	bodies.Spawn("a", dynamo.Vec3{X: 0, Y: 0}, 280, 160)
//	cfg := dynamo.DefaultConfig()
//	awake := physics.Step(1.0/60, bodies, nil, &cfg)
//
// # Thread Safety
//
// Bodies are mutated in place and are NOT safe for concurrent use. The
// sim.Driver serialises access for hosts that touch it from several goroutines.
package dynamo
