package harness

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/analytic"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/metrics"
)

const (
	momentumTolerance = 1e-6
	energyTolerance   = 1e-6
	// durationSlack is the allowed simulated-time deviation in steps.
	durationSlack = 1.1
)

// Phase is the lifecycle position of a ValidationRun.
type Phase int

const (
	Configuring Phase = iota
	Initialized
	Stepping
	Completed
	Aborted
)

func (p Phase) String() string {
	switch p {
	case Configuring:
		return "configuring"
	case Initialized:
		return "initialized"
	case Stepping:
		return "stepping"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// RunError records where a run failed.
type RunError struct {
	Phase Phase
	Step  int
	Time  float64
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s at step %d (t=%.4f): %v", e.Phase, e.Step, e.Time, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Report summarises a completed run.
type Report struct {
	Engine     string
	Dt         float64
	ModelCount int
	Collision  bool
	Complex    bool

	Steps        int
	WallTime     time.Duration
	SimTime      float64
	TimeRatio    float64
	Energy0      float64
	AngMomentum0 float64

	// Metrics holds every recorded statistic by its recorded name.
	Metrics map[string]float64
}

// MetricNames returns the keys of Metrics in sorted order.
func (r *Report) MetricNames() []string {
	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Option func(*ValidationRun)

func WithLogger(l *log.Logger) Option {
	return func(r *ValidationRun) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithNamer(n Namer) Option {
	return func(r *ValidationRun) {
		if n != nil {
			r.namer = n
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *ValidationRun) {
		if rec != nil {
			r.rec = rec
		}
	}
}

// ValidationRun is a single validation run. It owns its world from New until
// Complete or abort and is not safe for concurrent use.
type ValidationRun struct {
	cfg    Config
	world  World
	namer  Namer
	rec    Recorder
	logger *log.Logger

	phase    Phase
	err      error
	kinds    []metrics.Kind
	inertial dynamo.Inertial

	bodies  []Body
	body    Body
	model   *analytic.Model
	sampler *Sampler
	t0      float64

	linPos *metrics.Vector3
	linVel *metrics.Vector3
	angPos *metrics.Vector3
	angMom *metrics.Vector3
	energy *metrics.Signal

	steps    int
	wallTime time.Duration
	report   *Report
}

// New validates cfg against world and returns a run in the Configuring phase.
func New(world World, cfg Config, opts ...Option) (*ValidationRun, error) {
	cfg = cfg.WithDefaults()
	if world == nil {
		return nil, fmt.Errorf("%w: nil world", dynamo.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if got := world.Type(); got != cfg.Engine {
		return nil, fmt.Errorf("%w: requested %q, world %q runs %q", dynamo.ErrEngineMismatch, cfg.Engine, world.Name(), got)
	}

	kinds, _ := metrics.ParseKinds(cfg.Statistics)
	inertial, _ := dynamo.BoxInertial(cfg.Mass, cfg.Size)

	r := &ValidationRun{
		cfg:      cfg,
		world:    world,
		namer:    NewSequentialNamer(),
		rec:      discardRecorder{},
		logger:   log.New(io.Discard),
		kinds:    kinds,
		inertial: inertial,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("engine", cfg.Engine, "dt", cfg.Dt, "models", cfg.ModelCount, "regime", cfg.Regime())
	return r, nil
}

func (r *ValidationRun) Phase() Phase           { return r.phase }
func (r *ValidationRun) Config() Config         { return r.cfg }
func (r *ValidationRun) Err() error             { return r.err }
func (r *ValidationRun) Model() *analytic.Model { return r.model }
func (r *ValidationRun) Report() *Report        { return r.report }

// Body returns the measured body: the last one spawned.
func (r *ValidationRun) Body() Body { return r.body }

func (r *ValidationRun) Bodies() []Body {
	out := make([]Body, len(r.bodies))
	copy(out, r.bodies)
	return out
}

// StepCount is the number of single steps Execute performs.
func (r *ValidationRun) StepCount() int {
	return int(math.Ceil(r.cfg.Duration / r.cfg.Dt))
}

func (r *ValidationRun) LinearPositionError() *metrics.Vector3  { return r.linPos }
func (r *ValidationRun) LinearVelocityError() *metrics.Vector3  { return r.linVel }
func (r *ValidationRun) AngularMomentumError() *metrics.Vector3 { return r.angMom }
func (r *ValidationRun) EnergyError() *metrics.Signal           { return r.energy }

// AngularPositionError is nil outside the simple regime.
func (r *ValidationRun) AngularPositionError() *metrics.Vector3 { return r.angPos }

func (r *ValidationRun) transition(op string, from Phase) error {
	if r.phase != from {
		return fmt.Errorf("%w: %s requires %s, run is %s", dynamo.ErrInvalidTransition, op, from, r.phase)
	}
	return nil
}

func (r *ValidationRun) abort(step int, err error) error {
	rerr := &RunError{Phase: r.phase, Step: step, Time: r.world.SimTime(), Err: err}
	r.phase = Aborted
	r.err = rerr
	r.logger.Error("run aborted", "err", rerr)
	return rerr
}

// Initialize spawns the bodies, applies initial velocities and captures the
// initial conditions of the last body. Every body gets identical initial
// velocities but only the last one is measured.
func (r *ValidationRun) Initialize() error {
	if err := r.transition("initialize", Configuring); err != nil {
		return err
	}

	if r.cfg.Regime() == analytic.Simple {
		r.world.SetGravity(mgl64.Vec3{})
	}
	g := r.world.Gravity()

	spacing := 2 * r.cfg.Size.Z()
	for i := 0; i < r.cfg.ModelCount; i++ {
		desc := BodyDescriptor{
			Name:      r.namer.Unique(r.cfg.ModelPrefix),
			Pose:      Pose{Pos: mgl64.Vec3{0, spacing * float64(i), 0}, Rot: mgl64.QuatIdent()},
			Size:      r.cfg.Size,
			Mass:      r.inertial.Mass,
			Inertia:   r.inertial.Diagonal,
			Collision: r.cfg.Collision,
		}
		body, err := r.world.SpawnBody(desc)
		if err != nil {
			return r.abort(0, fmt.Errorf("spawn %s: %w", desc.Name, err))
		}
		body.SetLinearVel(r.cfg.LinearVel)
		body.SetAngularVel(r.cfg.AngularVel)
		r.bodies = append(r.bodies, body)
	}
	r.body = r.bodies[len(r.bodies)-1]

	if err := r.checkInitialState(); err != nil {
		return r.abort(0, err)
	}

	pose := r.body.WorldInertialPose()
	ic := analytic.InitialConditions{
		T0:              r.world.SimTime(),
		Position:        pose.Pos,
		LinearVel:       r.body.WorldLinearVel(),
		AngularVel:      r.body.WorldAngularVel(),
		AngularMomentum: r.body.WorldAngularMomentum(),
		Energy:          r.body.WorldEnergy(),
	}

	model, err := analytic.New(ic, g, r.inertial, r.cfg.Regime())
	if err != nil {
		return r.abort(0, err)
	}
	if err := model.CheckMomentum(momentumTolerance); err != nil {
		return r.abort(0, err)
	}

	r.model = model
	r.sampler = NewSampler(model)
	r.t0 = ic.T0

	r.linPos = metrics.NewVector3(r.kinds...)
	r.linVel = metrics.NewVector3(r.kinds...)
	r.angMom = metrics.NewVector3(r.kinds...)
	r.energy = metrics.NewSignal(r.kinds...)
	if model.Regime() == analytic.Simple {
		r.angPos = metrics.NewVector3(r.kinds...)
	}

	r.phase = Initialized
	r.logger.Debug("initialized", "body", r.body.Name(), "gravity", g, "E0", ic.Energy, "H0", model.AngularMomentumMagnitude())
	return nil
}

// checkInitialState verifies the engine reports exactly the requested
// velocities and inertia, and the nominal energy when one is configured.
func (r *ValidationRun) checkInitialState() error {
	if v := r.body.WorldLinearVel(); v != r.cfg.LinearVel {
		return fmt.Errorf("%w: linear velocity %v, want %v", dynamo.ErrPrecondition, v, r.cfg.LinearVel)
	}
	if w := r.body.WorldAngularVel(); w != r.cfg.AngularVel {
		return fmt.Errorf("%w: angular velocity %v, want %v", dynamo.ErrPrecondition, w, r.cfg.AngularVel)
	}
	if in := r.body.Inertia(); in != r.inertial.Tensor() {
		return fmt.Errorf("%w: inertia %v, want %v", dynamo.ErrPrecondition, in, r.inertial.Tensor())
	}
	if nominal := r.cfg.NominalEnergy; nominal != 0 {
		e := r.body.WorldEnergy()
		if math.Abs(metrics.RelativeError(e, nominal)) > energyTolerance {
			return fmt.Errorf("%w: energy %.9f, want %.9f", dynamo.ErrPrecondition, e, nominal)
		}
	}
	return nil
}

// Execute steps the world one step at a time for the configured duration,
// sampling and aggregating the residuals after every step.
func (r *ValidationRun) Execute() error {
	if err := r.transition("execute", Initialized); err != nil {
		return err
	}
	r.phase = Stepping

	r.world.SetMaxStepSize(r.cfg.Dt)
	r.world.SetRealTimeUpdateRate(0)

	n := r.StepCount()
	start := time.Now()
	for i := 0; i < n; i++ {
		r.world.Step(1)
		if f, ok := r.world.(interface{ Err() error }); ok {
			if err := f.Err(); err != nil {
				return r.abort(i, err)
			}
		}

		for _, s := range r.sampler.Sample(Observe(r.world, r.body, r.t0)) {
			r.insert(s)
		}
		r.steps++
	}
	r.wallTime = time.Since(start)

	r.logger.Debug("stepping finished", "steps", r.steps, "wallTime", r.wallTime)
	return nil
}

func (r *ValidationRun) insert(s ErrorSample) {
	if s.Quantity.IsScalar() {
		r.energy.InsertData(s.Scalar)
		return
	}
	switch s.Quantity {
	case LinearPosition:
		r.linPos.InsertData(s.Vector)
	case LinearVelocity:
		r.linVel.InsertData(s.Vector)
	case AngularMomentum:
		r.angMom.InsertData(s.Vector)
	case AngularPosition:
		if r.angPos != nil {
			r.angPos.InsertData(s.Vector)
		}
	}
}

// Complete checks the simulated duration and emits every result through the
// recorder.
func (r *ValidationRun) Complete() (*Report, error) {
	if err := r.transition("complete", Stepping); err != nil {
		return nil, err
	}
	simTime := r.world.SimTime() - r.t0
	if math.Abs(simTime-r.cfg.Duration) > r.cfg.Dt*durationSlack {
		return nil, r.abort(r.steps, fmt.Errorf("%w: simulated %.6f, want %.6f ± %.6f",
			dynamo.ErrDurationMismatch, simTime, r.cfg.Duration, r.cfg.Dt*durationSlack))
	}

	rep := &Report{
		Engine:       r.cfg.Engine,
		Dt:           r.cfg.Dt,
		ModelCount:   r.cfg.ModelCount,
		Collision:    r.cfg.Collision,
		Complex:      r.cfg.Complex,
		Steps:        r.steps,
		WallTime:     r.wallTime,
		SimTime:      simTime,
		TimeRatio:    r.wallTime.Seconds() / simTime,
		Energy0:      r.model.Energy(0),
		AngMomentum0: r.model.AngularMomentumMagnitude(),
		Metrics:      make(map[string]float64),
	}
	r.emit(rep)

	r.report = rep
	r.phase = Completed
	r.logger.Info("run complete",
		"wallTime", rep.WallTime,
		"timeRatio", rep.TimeRatio,
		"energyError", r.energy.Value(metrics.MaxAbs),
		"angMomentumErr", r.angMom.Mag().Value(metrics.MaxAbs))
	return rep, nil
}

func (r *ValidationRun) emit(rep *Report) {
	r.rec.RecordProperty("engine", rep.Engine)
	r.rec.RecordProperty("modelCount", strconv.Itoa(rep.ModelCount))
	r.rec.RecordProperty("collision", strconv.FormatBool(rep.Collision))
	r.rec.RecordProperty("isComplex", strconv.FormatBool(rep.Complex))

	r.rec.RecordScalar("dt", rep.Dt)
	r.rec.RecordScalar("wallTime", rep.WallTime.Seconds())
	r.rec.RecordScalar("simTime", rep.SimTime)
	r.rec.RecordScalar("timeRatio", rep.TimeRatio)
	r.rec.RecordScalar("energy0", rep.Energy0)
	r.rec.RecordScalar("angMomentum0", rep.AngMomentum0)

	stats := func(prefix string, m map[string]float64) {
		r.rec.RecordStats(prefix, m)
		for k, v := range m {
			rep.Metrics[prefix+k] = v
		}
	}
	stats("energyError_", r.energy.Map())
	stats("angMomentumErr_", r.angMom.Mag().Map())
	if r.angPos != nil {
		stats("angPositionErr_", r.angPos.Map())
	}
	stats("linPositionErr_", r.linPos.Mag().Map())
	stats("linVelocityErr_", r.linVel.Mag().Map())
}

// Run drives a full validation run against world.
func Run(world World, cfg Config, opts ...Option) (*Report, error) {
	r, err := New(world, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Initialize(); err != nil {
		return nil, err
	}
	if err := r.Execute(); err != nil {
		return nil, err
	}
	return r.Complete()
}
