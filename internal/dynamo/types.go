package dynamo

import (
	"math"
)

// State is a flat ODE state vector.
type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Add returns s + other. Missing trailing entries of other count as zero.
func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Name() string
	Step(dyn System, x State, t float64, dt float64) State
}
