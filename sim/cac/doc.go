// Package cac implements airtime-based call admission control for a shared
// wireless medium.
//
// # Reading Guide
//
//   - airtime.go: the cost model turning a flow request into a fraction of channel time
//   - policy.go: static and adaptive admission rules (feedback.go holds the adaptation heuristic)
//   - registry.go: admitted flows and the utilization accumulator
//   - engine.go: the serialized decide-then-admit unit callers interact with
//
// # Ownership
//
// An Engine is constructed explicitly per access point and owns its registry,
// statistics and counters. Engines share no state. All timestamps are logical
// seconds supplied by the caller; nothing in this package reads a wall clock.
package cac
