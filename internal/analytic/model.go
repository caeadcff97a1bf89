package analytic

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/dynamo"
)

// Regime selects how much of the trajectory has a closed-form prediction.
type Regime int

const (
	// Simple runs with zero gravity and single-axis spin; orientation is predicted.
	Simple Regime = iota
	// Complex runs under gravity with multi-axis spin; only conserved quantities
	// and translation are predicted.
	Complex
)

func (r Regime) String() string {
	switch r {
	case Simple:
		return "simple"
	case Complex:
		return "complex"
	}
	return fmt.Sprintf("Regime(%d)", int(r))
}

// ClassifyRegime returns Simple when g is zero and w0 has exactly one non-zero
// principal component, Complex otherwise.
func ClassifyRegime(g, w0 mgl64.Vec3) Regime {
	if g != (mgl64.Vec3{}) {
		return Complex
	}
	if _, ok := dynamo.SingleAxis(w0); !ok {
		return Complex
	}
	return Simple
}

// InitialConditions is the reference point for every prediction. It is
// captured once from the engine before stepping begins.
type InitialConditions struct {
	T0              float64
	Position        mgl64.Vec3
	LinearVel       mgl64.Vec3
	AngularVel      mgl64.Vec3
	AngularMomentum mgl64.Vec3
	Energy          float64
}

// Model evaluates the ideal state at elapsed time t since T0.
type Model struct {
	ic      InitialConditions
	gravity mgl64.Vec3
	inertia dynamo.Inertial
	regime  Regime

	spinAxis mgl64.Vec3
	spinRate float64
	h0Mag    float64
}

// New builds a model. Declaring the Simple regime for inputs that have no
// closed-form orientation is a configuration error.
func New(ic InitialConditions, gravity mgl64.Vec3, inertia dynamo.Inertial, regime Regime) (*Model, error) {
	if err := inertia.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		ic:      ic,
		gravity: gravity,
		inertia: inertia,
		regime:  regime,
		h0Mag:   ic.AngularMomentum.Len(),
	}

	if regime == Simple {
		if ClassifyRegime(gravity, ic.AngularVel) != Simple {
			return nil, fmt.Errorf("%w: simple regime requires zero gravity and single-axis spin, got g=%v w0=%v",
				dynamo.ErrInvalidConfig, gravity, ic.AngularVel)
		}
		axis, _ := dynamo.SingleAxis(ic.AngularVel)
		m.spinAxis = dynamo.Axis(axis)
		m.spinRate = ic.AngularVel[axis]
	}

	return m, nil
}

func (m *Model) Regime() Regime                    { return m.regime }
func (m *Model) Initial() InitialConditions        { return m.ic }
func (m *Model) Gravity() mgl64.Vec3               { return m.gravity }
func (m *Model) Inertia() dynamo.Inertial          { return m.inertia }
func (m *Model) AngularMomentumMagnitude() float64 { return m.h0Mag }

// Position returns p0 + v0·t + ½·g·t².
func (m *Model) Position(t float64) mgl64.Vec3 {
	return m.ic.Position.Add(m.ic.LinearVel.Mul(t)).Add(m.gravity.Mul(0.5 * t * t))
}

// Velocity returns v0 + g·t.
func (m *Model) Velocity(t float64) mgl64.Vec3 {
	return m.ic.LinearVel.Add(m.gravity.Mul(t))
}

// Orientation returns the rotation by w0·t about the spin axis. The second
// result is false outside the Simple regime.
func (m *Model) Orientation(t float64) (mgl64.Quat, bool) {
	if m.regime != Simple {
		return mgl64.Quat{}, false
	}
	return dynamo.QuatFromEuler(m.spinAxis.Mul(m.spinRate * t)), true
}

// EulerAngles returns the roll/pitch/yaw decomposition of Orientation(t).
func (m *Model) EulerAngles(t float64) (mgl64.Vec3, bool) {
	q, ok := m.Orientation(t)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return dynamo.EulerFromQuat(q), true
}

// AngularMomentum is conserved absent external torque.
func (m *Model) AngularMomentum(float64) mgl64.Vec3 {
	return m.ic.AngularMomentum
}

// Energy is conserved absent non-conservative forces.
func (m *Model) Energy(float64) float64 {
	return m.ic.Energy
}

// CheckMomentum verifies the captured H0 against diag(I)·w0, which holds
// because the body starts aligned with its principal axes.
func (m *Model) CheckMomentum(tol float64) error {
	want := m.inertia.PrincipalMomentum(m.ic.AngularVel)
	for i := 0; i < 3; i++ {
		if math.Abs(m.ic.AngularMomentum[i]-want[i]) > tol {
			return fmt.Errorf("%w: initial angular momentum %v, want %v", dynamo.ErrPrecondition, m.ic.AngularMomentum, want)
		}
	}
	return nil
}
