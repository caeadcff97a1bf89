package harness

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/analytic"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/metrics"
)

const (
	DefaultDuration    = 10.0
	DefaultStatistics  = "maxAbs"
	DefaultModelPrefix = "model"
)

// Config describes one validation run.
type Config struct {
	// Engine must match the Type of the world the run is given.
	Engine     string
	Dt         float64
	Duration   float64
	ModelCount int
	Collision  bool
	// Complex keeps world gravity and allows multi-axis spin. Otherwise
	// gravity is zeroed and AngularVel must have a single non-zero component.
	Complex bool

	Size       mgl64.Vec3
	Mass       float64
	LinearVel  mgl64.Vec3
	AngularVel mgl64.Vec3

	// NominalEnergy is compared to the engine's initial energy when non-zero.
	NominalEnergy float64

	// Statistics lists the summary kinds to track, e.g. "maxAbs,rms".
	Statistics string
	// ModelPrefix is passed to the Namer for each spawned body.
	ModelPrefix string
}

// WithDefaults fills zero Duration, Statistics and ModelPrefix.
func (c Config) WithDefaults() Config {
	if c.Duration == 0 {
		c.Duration = DefaultDuration
	}
	if c.Statistics == "" {
		c.Statistics = DefaultStatistics
	}
	if c.ModelPrefix == "" {
		c.ModelPrefix = DefaultModelPrefix
	}
	return c
}

// Validate reports configuration errors that prevent a run from starting.
func (c Config) Validate() error {
	switch {
	case c.Engine == "":
		return fmt.Errorf("%w: engine required", dynamo.ErrInvalidConfig)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfig, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, c.Duration)
	case c.ModelCount <= 0:
		return fmt.Errorf("%w: model count must be positive, got %d", dynamo.ErrInvalidConfig, c.ModelCount)
	}

	if _, err := dynamo.BoxInertial(c.Mass, c.Size); err != nil {
		return err
	}
	if _, err := metrics.ParseKinds(c.Statistics); err != nil {
		return err
	}
	if c.Regime() == analytic.Simple {
		if _, ok := dynamo.SingleAxis(c.AngularVel); !ok {
			return fmt.Errorf("%w: simple regime needs single-axis angular velocity, got %v",
				dynamo.ErrInvalidConfig, c.AngularVel)
		}
	}
	return nil
}

func (c Config) Regime() analytic.Regime {
	if c.Complex {
		return analytic.Complex
	}
	return analytic.Simple
}
