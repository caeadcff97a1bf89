package harness

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/analytic"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/metrics"
)

// Observation is a point-in-time snapshot of the measured body.
type Observation struct {
	// Elapsed is simulated time since the initial conditions were captured.
	Elapsed         float64
	Pose            Pose
	LinearVel       mgl64.Vec3
	AngularMomentum mgl64.Vec3
	Energy          float64
}

// Observe queries the engine for the state of body at the current step.
func Observe(w World, body Body, t0 float64) Observation {
	return Observation{
		Elapsed:         w.SimTime() - t0,
		Pose:            body.WorldInertialPose(),
		LinearVel:       body.WorldLinearVel(),
		AngularMomentum: body.WorldAngularMomentum(),
		Energy:          body.WorldEnergy(),
	}
}

// Sampler turns observations into residuals against a fixed analytical model.
// It holds no state besides the model, so Sample is a pure function of its input.
type Sampler struct {
	model *analytic.Model
}

func NewSampler(model *analytic.Model) *Sampler {
	return &Sampler{model: model}
}

func (s *Sampler) Model() *analytic.Model { return s.model }

// Sample returns one residual per tracked quantity. AngularPosition is only
// produced in the simple regime.
func (s *Sampler) Sample(obs Observation) []ErrorSample {
	t := obs.Elapsed
	out := make([]ErrorSample, 0, 5)

	out = append(out,
		ErrorSample{Quantity: LinearVelocity, Vector: obs.LinearVel.Sub(s.model.Velocity(t))},
		ErrorSample{Quantity: LinearPosition, Vector: obs.Pose.Pos.Sub(s.model.Position(t))},
		ErrorSample{Quantity: AngularMomentum, Vector: s.momentumResidual(obs.AngularMomentum, t)},
	)

	if predicted, ok := s.model.EulerAngles(t); ok {
		actual := dynamo.EulerFromQuat(obs.Pose.Rot)
		out = append(out, ErrorSample{
			Quantity: AngularPosition,
			Vector:   dynamo.WrapAngles(actual.Sub(predicted)),
		})
	}

	out = append(out, ErrorSample{
		Quantity: Energy,
		Scalar:   metrics.RelativeError(obs.Energy, s.model.Energy(t)),
	})
	return out
}

// momentumResidual is (H - H0) / |H0|, or the raw difference when |H0| is zero.
func (s *Sampler) momentumResidual(h mgl64.Vec3, t float64) mgl64.Vec3 {
	d := h.Sub(s.model.AngularMomentum(t))
	if mag := s.model.AngularMomentumMagnitude(); mag != 0 {
		return d.Mul(1 / mag)
	}
	return d
}
