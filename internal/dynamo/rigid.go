package dynamo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Inertial holds the mass and principal moments of inertia of a body whose
// principal axes coincide with its local frame.
type Inertial struct {
	Mass     float64
	Diagonal mgl64.Vec3
}

// BoxInertial computes mass properties of a uniform-density box with full
// dimensions size: I = (m/12) * (b² + c²) for each axis.
func BoxInertial(mass float64, size mgl64.Vec3) (Inertial, error) {
	if mass <= 0 {
		return Inertial{}, fmt.Errorf("%w: mass must be positive, got %f", ErrInvalidConfig, mass)
	}
	for i := 0; i < 3; i++ {
		if size[i] <= 0 {
			return Inertial{}, fmt.Errorf("%w: box dimension %d must be positive, got %f", ErrInvalidConfig, i, size[i])
		}
	}

	x, y, z := size.X(), size.Y(), size.Z()
	factor := mass / 12.0
	return Inertial{
		Mass: mass,
		Diagonal: mgl64.Vec3{
			factor * (y*y + z*z),
			factor * (x*x + z*z),
			factor * (x*x + y*y),
		},
	}, nil
}

func (in Inertial) Validate() error {
	if in.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %f", ErrInvalidConfig, in.Mass)
	}
	for i := 0; i < 3; i++ {
		if in.Diagonal[i] <= 0 {
			return fmt.Errorf("%w: principal moment %d must be positive, got %f", ErrInvalidConfig, i, in.Diagonal[i])
		}
	}
	return nil
}

// Tensor returns the body-frame inertia matrix.
func (in Inertial) Tensor() mgl64.Mat3 {
	return mgl64.Diag3(in.Diagonal)
}

// WorldTensor returns R * I * R^T for orientation q.
func (in Inertial) WorldTensor(q mgl64.Quat) mgl64.Mat3 {
	r := q.Mat4().Mat3()
	return r.Mul3(in.Tensor()).Mul3(r.Transpose())
}

// PrincipalMomentum returns diag(I)·w, the angular momentum of a body whose
// principal axes are aligned with the world frame.
func (in Inertial) PrincipalMomentum(w mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		in.Diagonal[0] * w[0],
		in.Diagonal[1] * w[1],
		in.Diagonal[2] * w[2],
	}
}

// AngularMomentum returns the world-frame angular momentum for world-frame
// angular velocity w at orientation q.
func (in Inertial) AngularMomentum(q mgl64.Quat, w mgl64.Vec3) mgl64.Vec3 {
	return in.WorldTensor(q).Mul3x1(w)
}

// KineticEnergy returns translational plus rotational kinetic energy.
func (in Inertial) KineticEnergy(q mgl64.Quat, v, w mgl64.Vec3) float64 {
	linear := 0.5 * in.Mass * v.Dot(v)
	angular := 0.5 * w.Dot(in.AngularMomentum(q, w))
	return linear + angular
}

// PotentialEnergy returns -m g·p, zero at the world origin.
func (in Inertial) PotentialEnergy(gravity, p mgl64.Vec3) float64 {
	return -in.Mass * gravity.Dot(p)
}
