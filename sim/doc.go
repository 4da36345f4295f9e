// Package sim provides the discrete-event simulation engine behind jit-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - simulator.go: the virtual clock, the event queue and the run loop
//   - process.go: cooperative processes and their yield points
//   - resource.go, container.go: the two blocking primitives processes wait on
//
// # Time and ordering
//
// Time is virtual and only advances when the run loop pops the next event.
// Events are ordered by (time, sequence); the sequence number is handed out
// by Schedule, so events due at the same instant run in the order they were
// scheduled regardless of which process scheduled them. With a fixed seed a
// run is therefore reproducible bit for bit.
//
// # Processes
//
// A process suspends only at Timeout, Acquire, Release, Get, Put and Spawn.
// Hand-offs on Release and Put are decided at the releasing instant in FIFO
// order; the woken process resumes as a zero-delay event. There is no
// cancellation: when Run reaches the horizon, processes still waiting are
// simply abandoned.
//
// # Errors
//
// Programming errors (negative delays, over-capacity grants, releasing a slot
// that is not held, container bounds) panic with an InvariantViolation.
//
// Layout networks built on this package live in sim/layout; sim/trace holds
// the optional per-stage trace records.
package sim
