package engine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/dynamo"
)

const stateDim = 13

// rigidBody is the torque-free rigid-body ODE under uniform gravity.
// State layout: p[0:3] q[3:7] (w, x, y, z) v[7:10] wb[10:13].
type rigidBody struct {
	inertia mgl64.Vec3
	gravity mgl64.Vec3
}

func (r *rigidBody) StateDim() int { return stateDim }

func (r *rigidBody) Derive(x dynamo.State, _ float64) dynamo.State {
	dx := make(dynamo.State, stateDim)

	q := quatAt(x)
	wb := vecAt(x, 10)

	// q̇ = ½ q ⊗ (0, ωb)
	dq := q.Mul(mgl64.Quat{W: 0, V: wb}).Scale(0.5)

	// I ω̇ = -ω × (I ω)
	iw := mgl64.Vec3{r.inertia[0] * wb[0], r.inertia[1] * wb[1], r.inertia[2] * wb[2]}
	torque := wb.Cross(iw).Mul(-1)

	dx[0], dx[1], dx[2] = x[7], x[8], x[9]
	dx[3], dx[4], dx[5], dx[6] = dq.W, dq.V[0], dq.V[1], dq.V[2]
	dx[7], dx[8], dx[9] = r.gravity[0], r.gravity[1], r.gravity[2]
	dx[10] = torque[0] / r.inertia[0]
	dx[11] = torque[1] / r.inertia[1]
	dx[12] = torque[2] / r.inertia[2]
	return dx
}

func vecAt(x dynamo.State, i int) mgl64.Vec3 {
	return mgl64.Vec3{x[i], x[i+1], x[i+2]}
}

func setVec(x dynamo.State, i int, v mgl64.Vec3) {
	x[i], x[i+1], x[i+2] = v[0], v[1], v[2]
}

func quatAt(x dynamo.State) mgl64.Quat {
	return mgl64.Quat{W: x[3], V: mgl64.Vec3{x[4], x[5], x[6]}}
}

func setQuat(x dynamo.State, q mgl64.Quat) {
	x[3], x[4], x[5], x[6] = q.W, q.V[0], q.V[1], q.V[2]
}
