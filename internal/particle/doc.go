// Package particle implements point-mass physics with force generators and
// constraint contacts.
//
// Particles live in an [Arena] and are referred to by [Handle]. Force
// generators and contact generators store handles, never pointers, so a
// particle can be shared by any number of them without ownership cycles.
//
// A [World] runs the per-frame pipeline:
//
//	world.StartFrame()          // clear force accumulators
//	world.RunPhysics(dt)        // forces, integrate, generate contacts, resolve
//
// Generators are evaluated in registration order; the order changes numeric
// results and is part of the contract.
package particle
