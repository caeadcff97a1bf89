package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for validation runs.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a run configuration that cannot start.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnsupportedStatistic indicates a statistic name outside the supported set.
	ErrUnsupportedStatistic = errors.New("dynamo: unsupported statistic")

	// ErrStatisticsLocked indicates a statistic declared after data was inserted.
	ErrStatisticsLocked = errors.New("dynamo: statistics cannot change after data insertion")

	// ErrUnknownEngine indicates a physics engine identifier with no registered backend.
	ErrUnknownEngine = errors.New("dynamo: unknown physics engine")

	// ErrEngineMismatch indicates the active engine differs from the requested one.
	ErrEngineMismatch = errors.New("dynamo: active physics engine does not match request")

	// ErrPrecondition indicates captured initial state differs from the intended one.
	ErrPrecondition = errors.New("dynamo: initial state precondition violated")

	// ErrDurationMismatch indicates simulated time drifted beyond one step of the target.
	ErrDurationMismatch = errors.New("dynamo: simulated duration out of tolerance")

	// ErrInvalidTransition indicates a run operation called in the wrong phase.
	ErrInvalidTransition = errors.New("dynamo: invalid run phase transition")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Body    string
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) body %s: %v", e.Step, e.Time, e.Body, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
