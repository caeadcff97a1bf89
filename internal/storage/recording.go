package storage

import (
	"sort"
	"strconv"
	"sync"

	"github.com/san-kum/rigidcheck/internal/harness"
)

// Recording collects the results of one run in memory.
type Recording struct {
	mu         sync.Mutex
	properties map[string]string
	scalars    map[string]float64
	stats      map[string]float64
}

var _ harness.Recorder = (*Recording)(nil)

func NewRecording() *Recording {
	return &Recording{
		properties: make(map[string]string),
		scalars:    make(map[string]float64),
		stats:      make(map[string]float64),
	}
}

func (r *Recording) RecordProperty(name, value string) {
	r.mu.Lock()
	r.properties[name] = value
	r.mu.Unlock()
}

func (r *Recording) RecordScalar(name string, value float64) {
	r.mu.Lock()
	r.scalars[name] = value
	r.mu.Unlock()
}

func (r *Recording) RecordStats(prefix string, stats map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range stats {
		r.stats[prefix+k] = v
	}
}

func (r *Recording) Property(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.properties[name]
}

func (r *Recording) Properties() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.properties))
	for k, v := range r.properties {
		out[k] = v
	}
	return out
}

func (r *Recording) Scalars() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyFloats(r.scalars)
}

func (r *Recording) Stats() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyFloats(r.stats)
}

// Value looks a name up among scalars, then statistics.
func (r *Recording) Value(name string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.scalars[name]; ok {
		return v, true
	}
	v, ok := r.stats[name]
	return v, ok
}

func (r *Recording) boolProperty(name string) bool {
	b, _ := strconv.ParseBool(r.Property(name))
	return b
}

func (r *Recording) intProperty(name string) int {
	n, _ := strconv.Atoi(r.Property(name))
	return n
}

func copyFloats(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
