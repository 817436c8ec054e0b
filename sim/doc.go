// Package sim provides the river-flood contingency simulation: a bank of floodgates
// driven by a central controller that reacts to river depth readings, on top of the
// cooperative-process scheduler in sim/process.
//
// # Reading Guide
//
// Start with these files to understand the simulation:
//   - simulator.go: the driver process (read depth, evaluate, advance time) and Run
//   - controller.go: per-tick evaluation of every gate, in ascending id order
//   - gate.go: a gate's position machine, probabilistic actuation, escalation
//   - maintenance.go: the bounded repair process that reopens a failed gate
//
// # Architecture
//
// The sim package owns the domain; infrastructure lives in sub-packages:
//   - sim/process/: virtual clock, resume queue, process suspension and awaiting
//   - sim/trace/: the append-only action log handed to external reporting
//
// Every process of a run (driver, controller evaluations, gate actuations,
// maintenance repairs) executes one at a time, so gate state and the action log
// need no locking.
//
// # Key Interfaces
//
//   - DepthSource: produces river depth readings (uniform random or scripted)
//   - Drawer: source of actuation success draws (*rand.Rand satisfies it)
//   - EvaluationPolicy: decides which action, if any, each gate needs at a depth
package sim
