package engine

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/sim"
)

// World holds bodies stepped with a shared integrator and gravity.
type World struct {
	name        string
	engineType  string
	integrator  dynamo.Integrator
	gravity     mgl64.Vec3
	maxStepSize float64
	rtRate      float64
	simTime     float64
	iterations  int
	bodies      []*Body
	byName      map[string]*Body
	lastStep    time.Time
	err         error
}

var _ sim.World = (*World)(nil)

func newWorld(engineType string, integ dynamo.Integrator, desc WorldDescriptor) *World {
	return &World{
		name:        desc.Name,
		engineType:  engineType,
		integrator:  integ,
		gravity:     desc.GravityVec(),
		maxStepSize: desc.MaxStepSize,
		rtRate:      desc.RealTimeUpdateRate,
		byName:      make(map[string]*Body),
	}
}

func (w *World) Name() string              { return w.name }
func (w *World) Type() string              { return w.engineType }
func (w *World) Gravity() mgl64.Vec3       { return w.gravity }
func (w *World) SetGravity(g mgl64.Vec3)   { w.gravity = g }
func (w *World) MaxStepSize() float64      { return w.maxStepSize }
func (w *World) SetMaxStepSize(dt float64) { w.maxStepSize = dt }
func (w *World) SetRealTimeUpdateRate(rate float64) {
	w.rtRate = rate
	w.lastStep = time.Time{}
}
func (w *World) SimTime() float64 { return w.simTime }

// Err returns the first integration failure, if any. A failed world stops advancing.
func (w *World) Err() error { return w.err }

// SpawnBody adds a box body at rest. Names must be unique within the world.
func (w *World) SpawnBody(desc sim.BodyDescriptor) (sim.Body, error) {
	if desc.Name == "" {
		return nil, fmt.Errorf("%w: body name required", dynamo.ErrInvalidConfig)
	}
	if _, dup := w.byName[desc.Name]; dup {
		return nil, fmt.Errorf("%w: body %q already exists in world %q", dynamo.ErrInvalidConfig, desc.Name, w.name)
	}
	in := dynamo.Inertial{Mass: desc.Mass, Diagonal: desc.Inertia}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", desc.Name, err)
	}

	b := newBody(w, desc)
	w.bodies = append(w.bodies, b)
	w.byName[b.name] = b
	return b, nil
}

// Step advances every body n iterations of MaxStepSize.
func (w *World) Step(n int) {
	dt := w.maxStepSize
	for i := 0; i < n && w.err == nil; i++ {
		w.throttle()

		sys := &rigidBody{gravity: w.gravity}
		for _, b := range w.bodies {
			sys.inertia = b.inertial.Diagonal
			if err := b.step(sys, w.integrator, w.simTime, dt); err != nil {
				w.err = &dynamo.SimulationError{Step: w.iterations, Time: w.simTime, Body: b.name, Wrapped: err}
				return
			}
		}

		w.simTime += dt
		w.iterations++
	}
}

func (w *World) throttle() {
	if w.rtRate <= 0 {
		return
	}
	period := time.Duration(float64(time.Second) / w.rtRate)
	if !w.lastStep.IsZero() {
		if wait := period - time.Since(w.lastStep); wait > 0 {
			time.Sleep(wait)
		}
	}
	w.lastStep = time.Now()
}
