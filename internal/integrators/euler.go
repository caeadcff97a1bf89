package integrators

import "github.com/san-kum/rigidcheck/internal/dynamo"

// Euler is the explicit first-order method. It is kept as a deliberately
// weak backend so conservation errors are visible in run statistics.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	return x.Add(dyn.Derive(x, t).Scale(dt))
}
