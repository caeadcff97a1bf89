package harness

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Quantity identifies which tracked residual an ErrorSample carries.
type Quantity int

const (
	LinearPosition Quantity = iota
	LinearVelocity
	AngularPosition
	AngularMomentum
	Energy
)

var quantityNames = [...]string{
	LinearPosition:  "linearPosition",
	LinearVelocity:  "linearVelocity",
	AngularPosition: "angularPosition",
	AngularMomentum: "angularMomentum",
	Energy:          "energy",
}

func (q Quantity) String() string {
	if q >= 0 && int(q) < len(quantityNames) {
		return quantityNames[q]
	}
	return fmt.Sprintf("Quantity(%d)", int(q))
}

// IsScalar reports whether samples of q use Scalar rather than Vector.
func (q Quantity) IsScalar() bool {
	return q == Energy
}

// ErrorSample is one residual produced for a single step.
type ErrorSample struct {
	Quantity Quantity
	Vector   mgl64.Vec3
	Scalar   float64
}
