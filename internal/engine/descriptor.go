package engine

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWorldName          = "default"
	DefaultMaxStepSize        = 0.001
	DefaultRealTimeUpdateRate = 1000.0
)

// WorldDescriptor describes a world to load.
type WorldDescriptor struct {
	Name               string     `yaml:"name"`
	Gravity            [3]float64 `yaml:"gravity"`
	MaxStepSize        float64    `yaml:"max_step_size"`
	RealTimeUpdateRate float64    `yaml:"real_time_update_rate"`
}

// BlankWorld is an empty world with standard gravity and no ground plane.
func BlankWorld() WorldDescriptor {
	return WorldDescriptor{
		Name:               DefaultWorldName,
		Gravity:            [3]float64{0, 0, -9.8},
		MaxStepSize:        DefaultMaxStepSize,
		RealTimeUpdateRate: DefaultRealTimeUpdateRate,
	}
}

func (d WorldDescriptor) GravityVec() mgl64.Vec3 {
	return mgl64.Vec3(d.Gravity)
}

func (d WorldDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("world name required")
	}
	if d.MaxStepSize <= 0 {
		return fmt.Errorf("max_step_size must be positive, got %f", d.MaxStepSize)
	}
	if d.RealTimeUpdateRate < 0 {
		return fmt.Errorf("real_time_update_rate must not be negative, got %f", d.RealTimeUpdateRate)
	}
	return nil
}

// LoadWorldFile reads a YAML world descriptor. Missing fields keep the
// blank-world defaults.
func LoadWorldFile(path string) (WorldDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorldDescriptor{}, err
	}
	desc := BlankWorld()
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return WorldDescriptor{}, fmt.Errorf("parse world %s: %w", path, err)
	}
	return desc, desc.Validate()
}
