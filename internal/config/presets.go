package config

import "sort"

// Initial energies of the reference box under the simple and complex initial
// velocities, with inertia rounded to six decimals.
const (
	SimpleNominalEnergy  = 5.001041625
	ComplexNominalEnergy = 368.54641249999997
)

var Presets = map[string]*Scenario{
	"simple": DefaultScenario(),
	"complex": {
		Engine: DefaultEngine, Dt: DefaultDt, Duration: DefaultDuration, ModelCount: DefaultModelCount,
		Complex: true, Statistics: DefaultStatistics,
		Box: BoxConfig{Size: DefaultBoxSize, Mass: DefaultMass},
		InitState: InitStateConfig{
			LinearVel:  [3]float64{-2.0, 2.0, 8.0},
			AngularVel: [3]float64{0.1, 5.0, 0.1},
		},
		NominalEnergy: ComplexNominalEnergy,
	},
	"coarse": {
		Engine: DefaultEngine, Dt: 0.01, Duration: DefaultDuration, ModelCount: DefaultModelCount,
		Complex: true, Statistics: "maxAbs,rms",
		Box: BoxConfig{Size: DefaultBoxSize, Mass: DefaultMass},
		InitState: InitStateConfig{
			LinearVel:  [3]float64{-2.0, 2.0, 8.0},
			AngularVel: [3]float64{0.1, 5.0, 0.1},
		},
		NominalEnergy: ComplexNominalEnergy,
	},
	"crowd": {
		Engine: DefaultEngine, Dt: DefaultDt, Duration: DefaultDuration, ModelCount: 10,
		Collision: true, Complex: true, Statistics: DefaultStatistics,
		Box: BoxConfig{Size: DefaultBoxSize, Mass: DefaultMass},
		InitState: InitStateConfig{
			LinearVel:  [3]float64{-2.0, 2.0, 8.0},
			AngularVel: [3]float64{0.1, 5.0, 0.1},
		},
		NominalEnergy: ComplexNominalEnergy,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
