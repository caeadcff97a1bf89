// Package sim defines the contract between the validation harness and a
// physics simulation backend.
//
// A [World] is an opaque handle to one loaded simulation world; the harness
// receives it explicitly and never resolves worlds by global name. All
// [Body] queries are point-in-time snapshots that are consistent immediately
// after [World.Step] returns.
package sim
