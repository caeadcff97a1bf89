package engine

import (
	"fmt"
	"sort"

	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/integrators"
)

// Registry maps engine types to integrator factories. A Registry is not safe
// for concurrent use; parallel runs each use their own.
type Registry struct {
	engines map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		engines: make(map[string]func() dynamo.Integrator),
	}

	for _, name := range integrators.Names() {
		name := name
		r.engines[name] = func() dynamo.Integrator {
			integ, _ := integrators.New(name)
			return integ
		}
	}

	return r
}

func (r *Registry) Engines() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadWorld creates a fresh world driven by engineType. Every call returns a
// new world with its own integrator.
func (r *Registry) LoadWorld(engineType string, desc WorldDescriptor) (*World, error) {
	fn, ok := r.engines[engineType]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownEngine, engineType, r.Engines())
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}

	return newWorld(engineType, fn(), desc), nil
}
