package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/engine"
	"github.com/san-kum/rigidcheck/internal/harness"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEngine     = "rk4"
	DefaultDt         = 0.001
	DefaultDuration   = harness.DefaultDuration
	DefaultModelCount = 1
	DefaultMass       = 10.0
	DefaultStatistics = harness.DefaultStatistics
	DefaultWorkers    = 4
)

var DefaultBoxSize = [3]float64{0.1, 0.4, 0.9}

// Scenario is the file form of one validation run.
type Scenario struct {
	Engine     string          `yaml:"engine"`
	Dt         float64         `yaml:"dt"`
	Duration   float64         `yaml:"duration"`
	ModelCount int             `yaml:"model_count"`
	Collision  bool            `yaml:"collision"`
	Complex    bool            `yaml:"complex"`
	Statistics string          `yaml:"statistics"`
	Box        BoxConfig       `yaml:"box"`
	InitState  InitStateConfig `yaml:"init_state"`
	// NominalEnergy is checked against the engine's initial energy when set.
	NominalEnergy float64 `yaml:"nominal_energy,omitempty"`
	// World optionally names a world descriptor file; a blank world is used otherwise.
	World string `yaml:"world,omitempty"`
}

type BoxConfig struct {
	Size [3]float64 `yaml:"size"`
	Mass float64    `yaml:"mass"`
}

type InitStateConfig struct {
	LinearVel  [3]float64 `yaml:"linear_vel"`
	AngularVel [3]float64 `yaml:"angular_vel"`
}

// DefaultScenario is the simple-regime reference run.
func DefaultScenario() *Scenario {
	return &Scenario{
		Engine:     DefaultEngine,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		ModelCount: DefaultModelCount,
		Statistics: DefaultStatistics,
		Box:        BoxConfig{Size: DefaultBoxSize, Mass: DefaultMass},
		InitState: InitStateConfig{
			LinearVel:  [3]float64{-0.9, 0.4, 0.1},
			AngularVel: [3]float64{0.5, 0, 0},
		},
		NominalEnergy: SimpleNominalEnergy,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := DefaultScenario()
	// the default nominal energy only holds for the default initial state
	s.NominalEnergy = 0
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", dynamo.ErrInvalidConfig, path, err)
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunConfig converts the scenario to a harness configuration.
func (s *Scenario) RunConfig() harness.Config {
	return harness.Config{
		Engine:        s.Engine,
		Dt:            s.Dt,
		Duration:      s.Duration,
		ModelCount:    s.ModelCount,
		Collision:     s.Collision,
		Complex:       s.Complex,
		Size:          mgl64.Vec3(s.Box.Size),
		Mass:          s.Box.Mass,
		LinearVel:     mgl64.Vec3(s.InitState.LinearVel),
		AngularVel:    mgl64.Vec3(s.InitState.AngularVel),
		NominalEnergy: s.NominalEnergy,
		Statistics:    s.Statistics,
	}
}

// WorldDescriptor returns the world the scenario runs in.
func (s *Scenario) WorldDescriptor() (engine.WorldDescriptor, error) {
	if s.World == "" {
		return engine.BlankWorld(), nil
	}
	return engine.LoadWorldFile(s.World)
}

// Sweep is a parameter matrix. Every combination becomes one Scenario built
// from Base.
type Sweep struct {
	Engines     []string  `yaml:"engines"`
	Dts         []float64 `yaml:"dts"`
	ModelCounts []int     `yaml:"model_counts"`
	Collision   []bool    `yaml:"collision"`
	Complex     []bool    `yaml:"complex"`
	Workers     int       `yaml:"workers"`
	Duration    float64   `yaml:"duration"`
	Statistics  string    `yaml:"statistics"`
}

func DefaultSweep() *Sweep {
	return &Sweep{
		Engines:     []string{"euler", "rk4"},
		Dts:         []float64{0.0005, 0.001, 0.002},
		ModelCounts: []int{1, 4},
		Collision:   []bool{false},
		Complex:     []bool{false, true},
		Workers:     DefaultWorkers,
		Duration:    DefaultDuration,
		Statistics:  DefaultStatistics,
	}
}

func LoadSweep(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sw := DefaultSweep()
	if err := yaml.Unmarshal(data, sw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", dynamo.ErrInvalidConfig, path, err)
	}
	return sw, nil
}

// Size is the number of scenarios in the matrix.
func (sw *Sweep) Size() int {
	return len(sw.Engines) * len(sw.Dts) * len(sw.ModelCounts) * len(sw.Collision) * len(sw.Complex)
}

// Scenarios expands the matrix in engine, dt, model count, collision, complex
// order. Initial conditions come from the simple or complex preset.
func (sw *Sweep) Scenarios() []*Scenario {
	out := make([]*Scenario, 0, sw.Size())
	for _, eng := range sw.Engines {
		for _, dt := range sw.Dts {
			for _, n := range sw.ModelCounts {
				for _, col := range sw.Collision {
					for _, cx := range sw.Complex {
						name := "simple"
						if cx {
							name = "complex"
						}
						s := GetPreset(name)
						s.Engine = eng
						s.Dt = dt
						s.ModelCount = n
						s.Collision = col
						if sw.Duration > 0 {
							s.Duration = sw.Duration
						}
						if sw.Statistics != "" {
							s.Statistics = sw.Statistics
						}
						out = append(out, s)
					}
				}
			}
		}
	}
	return out
}
