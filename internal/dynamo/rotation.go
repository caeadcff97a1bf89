package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var axes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// EulerFromQuat decomposes q into roll, pitch and yaw, applied in that order
// about fixed X, Y and Z axes.
func EulerFromQuat(q mgl64.Quat) mgl64.Vec3 {
	q = q.Normalize()
	w, x, y, z := q.W, q.V.X(), q.V.Y(), q.V.Z()

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitch := math.Asin(mgl64.Clamp(2*(w*y-z*x), -1, 1))
	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return mgl64.Vec3{roll, pitch, yaw}
}

// QuatFromEuler is the inverse of EulerFromQuat.
func QuatFromEuler(e mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(e.X(), axes[0])
	qy := mgl64.QuatRotate(e.Y(), axes[1])
	qz := mgl64.QuatRotate(e.Z(), axes[2])
	return qz.Mul(qy).Mul(qx).Normalize()
}

// WrapAngle maps a to (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func WrapAngles(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{WrapAngle(v[0]), WrapAngle(v[1]), WrapAngle(v[2])}
}

// SingleAxis reports the index of the only non-zero component of w.
// It returns false when w is zero or has more than one non-zero component.
func SingleAxis(w mgl64.Vec3) (int, bool) {
	axis := -1
	for i := 0; i < 3; i++ {
		if w[i] == 0 {
			continue
		}
		if axis >= 0 {
			return -1, false
		}
		axis = i
	}
	return axis, axis >= 0
}

// Axis returns the unit vector of principal axis i.
func Axis(i int) mgl64.Vec3 {
	return axes[i]
}
