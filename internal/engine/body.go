package engine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/sim"
)

// Body is a single-link box. Its state is only advanced by World.Step.
type Body struct {
	name      string
	world     *World
	inertial  dynamo.Inertial
	collision bool
	state     dynamo.State
}

var _ sim.Body = (*Body)(nil)

func newBody(w *World, desc sim.BodyDescriptor) *Body {
	b := &Body{
		name:      desc.Name,
		world:     w,
		inertial:  dynamo.Inertial{Mass: desc.Mass, Diagonal: desc.Inertia},
		collision: desc.Collision,
		state:     make(dynamo.State, stateDim),
	}

	rot := desc.Pose.Rot
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	setVec(b.state, 0, desc.Pose.Pos)
	setQuat(b.state, rot.Normalize())
	return b
}

func (b *Body) Name() string       { return b.name }
func (b *Body) HasCollision() bool { return b.collision }

func (b *Body) rotation() mgl64.Mat3 {
	return quatAt(b.state).Mat4().Mat3()
}

func (b *Body) SetLinearVel(v mgl64.Vec3) {
	setVec(b.state, 7, v)
}

// SetAngularVel takes a world-frame angular velocity.
func (b *Body) SetAngularVel(w mgl64.Vec3) {
	setVec(b.state, 10, b.rotation().Transpose().Mul3x1(w))
}

func (b *Body) WorldLinearVel() mgl64.Vec3 {
	return vecAt(b.state, 7)
}

func (b *Body) WorldAngularVel() mgl64.Vec3 {
	return b.rotation().Mul3x1(vecAt(b.state, 10))
}

func (b *Body) WorldInertialPose() sim.Pose {
	return sim.Pose{Pos: vecAt(b.state, 0), Rot: quatAt(b.state)}
}

func (b *Body) WorldAngularMomentum() mgl64.Vec3 {
	return b.inertial.AngularMomentum(quatAt(b.state), b.WorldAngularVel())
}

func (b *Body) WorldEnergy() float64 {
	kinetic := b.inertial.KineticEnergy(quatAt(b.state), vecAt(b.state, 7), b.WorldAngularVel())
	return kinetic + b.inertial.PotentialEnergy(b.world.gravity, vecAt(b.state, 0))
}

func (b *Body) Inertia() mgl64.Mat3 {
	return b.inertial.Tensor()
}

func (b *Body) step(sys *rigidBody, integ dynamo.Integrator, t, dt float64) error {
	next := integ.Step(sys, b.state, t, dt)
	if !next.IsValid() {
		return dynamo.ErrInvalidState
	}
	setQuat(next, quatAt(next).Normalize())
	b.state = next
	return nil
}
