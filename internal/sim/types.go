package sim

import "github.com/go-gl/mathgl/mgl64"

// Pose is a world-frame position and orientation.
type Pose struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// BodyDescriptor describes a single-link box model to spawn.
type BodyDescriptor struct {
	Name string
	Pose Pose
	// Size holds the full box dimensions.
	Size mgl64.Vec3
	Mass float64
	// Inertia holds the principal moments in the body frame.
	Inertia mgl64.Vec3
	// Collision attaches a box collision shape matching Size.
	Collision bool
}

// Body is a spawned rigid body. Velocities and momenta are world-frame
// quantities about the centre of gravity.
type Body interface {
	Name() string
	SetLinearVel(v mgl64.Vec3)
	SetAngularVel(w mgl64.Vec3)
	WorldLinearVel() mgl64.Vec3
	WorldAngularVel() mgl64.Vec3
	WorldInertialPose() Pose
	WorldAngularMomentum() mgl64.Vec3
	// WorldEnergy returns kinetic plus gravitational potential energy.
	WorldEnergy() float64
	// Inertia returns the body-frame moment of inertia matrix.
	Inertia() mgl64.Mat3
	HasCollision() bool
}

// World is a loaded simulation world owned by one run at a time.
type World interface {
	Name() string
	// Type identifies the active physics engine.
	Type() string
	Gravity() mgl64.Vec3
	SetGravity(g mgl64.Vec3)
	SetMaxStepSize(dt float64)
	MaxStepSize() float64
	// SetRealTimeUpdateRate throttles stepping to rate steps per wall second;
	// zero removes the throttle.
	SetRealTimeUpdateRate(rate float64)
	Step(n int)
	SimTime() float64
	SpawnBody(desc BodyDescriptor) (Body, error)
}
