// Package engine is a reference rigid-body simulation backend implementing
// the sim.World contract.
//
// Each body carries a 13-element state (position, orientation quaternion,
// linear velocity, body-frame angular velocity) integrated by a pluggable
// dynamo.Integrator under uniform gravity and Euler's torque-free rotation
// equations. Bodies never interact; a collision flag only records whether a
// box shape is attached.
//
// Engine types are named after their integrator ("rk4", "euler") so the
// harness can compare backends of different numerical quality.
package engine
