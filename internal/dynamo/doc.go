// Package dynamo provides numeric primitives shared by the validation harness
// and the reference simulation backend.
//
// The package defines:
//
//   - [State]: flat vector representing an ODE state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Inertial]: mass and principal moments of a uniform-density box
//   - rotation helpers converting between quaternions and roll/pitch/yaw
//
// Vector, quaternion and matrix values use mgl64 throughout.
//
// # Example
//
//	in, _ := dynamo.BoxInertial(10, mgl64.Vec3{0.1, 0.4, 0.9})
//	w0 := mgl64.Vec3{0.5, 0, 0}
//	h := in.AngularMomentum(mgl64.QuatIdent(), w0)
//	e := in.KineticEnergy(mgl64.QuatIdent(), mgl64.Vec3{}, w0)
//
// # Thread Safety
//
// All functions are pure. Integrators keep scratch buffers and must not be
// shared between goroutines.
package dynamo
