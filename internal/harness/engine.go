package harness

import (
	"fmt"
	"sync"

	"github.com/san-kum/rigidcheck/internal/sim"
)

// World and Body are the engine capabilities a run depends on. Any backend
// that satisfies them can be validated.
type (
	World          = sim.World
	Body           = sim.Body
	BodyDescriptor = sim.BodyDescriptor
	Pose           = sim.Pose
)

// Namer produces identifiers that are unique for the lifetime of the namer.
type Namer interface {
	Unique(prefix string) string
}

// SequentialNamer appends a per-prefix counter: model_0, model_1, ...
type SequentialNamer struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewSequentialNamer() *SequentialNamer {
	return &SequentialNamer{counts: make(map[string]int)}
}

func (n *SequentialNamer) Unique(prefix string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.counts == nil {
		n.counts = make(map[string]int)
	}
	i := n.counts[prefix]
	n.counts[prefix] = i + 1
	return fmt.Sprintf("%s_%d", prefix, i)
}

// Recorder is a write-only sink for run results.
type Recorder interface {
	RecordProperty(name, value string)
	RecordScalar(name string, value float64)
	// RecordStats records every entry of stats under prefix+key.
	RecordStats(prefix string, stats map[string]float64)
}

type discardRecorder struct{}

func (discardRecorder) RecordProperty(string, string)          {}
func (discardRecorder) RecordScalar(string, float64)           {}
func (discardRecorder) RecordStats(string, map[string]float64) {}
