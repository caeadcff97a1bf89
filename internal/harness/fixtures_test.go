package harness_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/engine"
	"github.com/san-kum/rigidcheck/internal/harness"
	"github.com/san-kum/rigidcheck/internal/sim"
)

var boxSize = mgl64.Vec3{0.1, 0.4, 0.9}

func simpleConfig(engineType string) harness.Config {
	return harness.Config{
		Engine:        engineType,
		Dt:            0.001,
		ModelCount:    1,
		Size:          boxSize,
		Mass:          10.0,
		LinearVel:     mgl64.Vec3{-0.9, 0.4, 0.1},
		AngularVel:    mgl64.Vec3{0.5, 0, 0},
		NominalEnergy: 5.001041625,
	}
}

func complexConfig(engineType string) harness.Config {
	return harness.Config{
		Engine:        engineType,
		Dt:            0.001,
		ModelCount:    1,
		Complex:       true,
		Size:          boxSize,
		Mass:          10.0,
		LinearVel:     mgl64.Vec3{-2.0, 2.0, 8.0},
		AngularVel:    mgl64.Vec3{0.1, 5.0, 0.1},
		NominalEnergy: 368.54641249999997,
	}
}

func loadWorld(engineType string) *engine.World {
	w, err := engine.NewRegistry().LoadWorld(engineType, engine.BlankWorld())
	Expect(err).NotTo(HaveOccurred())
	return w
}

type memRecorder struct {
	props   map[string]string
	scalars map[string]float64
	stats   map[string]float64
}

func newMemRecorder() *memRecorder {
	return &memRecorder{
		props:   make(map[string]string),
		scalars: make(map[string]float64),
		stats:   make(map[string]float64),
	}
}

func (m *memRecorder) RecordProperty(name, value string)       { m.props[name] = value }
func (m *memRecorder) RecordScalar(name string, value float64) { m.scalars[name] = value }
func (m *memRecorder) RecordStats(prefix string, stats map[string]float64) {
	for k, v := range stats {
		m.stats[prefix+k] = v
	}
}

// skippingWorld advances two steps for every one requested.
type skippingWorld struct{ *engine.World }

func (w skippingWorld) Step(n int) { w.World.Step(2 * n) }

// lyingBody reports a linear velocity that is off by one ulp-scale nudge.
type lyingBody struct{ sim.Body }

func (b lyingBody) WorldLinearVel() mgl64.Vec3 {
	return b.Body.WorldLinearVel().Add(mgl64.Vec3{1e-12, 0, 0})
}

type lyingWorld struct{ *engine.World }

func (w lyingWorld) SpawnBody(d sim.BodyDescriptor) (sim.Body, error) {
	b, err := w.World.SpawnBody(d)
	if err != nil {
		return nil, err
	}
	return lyingBody{b}, nil
}

// failingWorld reports an integration failure once simulated time passes after.
type failingWorld struct {
	*engine.World
	after float64
}

func (w failingWorld) Err() error {
	if w.SimTime() > w.after {
		return &dynamo.SimulationError{Time: w.SimTime(), Body: "model_0", Wrapped: dynamo.ErrInvalidState}
	}
	return nil
}
