// Package dynamo provides the primitives shared by every simulation layer.
//
// The package defines the small vocabulary the physics packages agree on:
//
//   - [Epsilon] and [CmpFloatEq]: the float tolerance used for degenerate geometry
//   - sentinel errors such as [ErrInvalidArgument] and [ErrPreconditionViolated]
//   - [Frame]: a read-only snapshot of particle positions handed to renderers
//   - [Simulation]: anything that can be stepped by a frame time
//   - [Metric]: observers that summarise a run
//
// # Example
//
//	sc, _ := scenario.NewRegistry().Build(cfg)
//	runner := scenario.NewRunner(sc)
//	result, _ := runner.Run(ctx, scenario.RunConfig{Dt: 0.01, Duration: 5})
//
// # Thread Safety
//
// Simulations are single threaded and NOT safe for concurrent use. [ParallelFor]
// is only used for loops whose iterations write disjoint slots.
package dynamo
