package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	metricsFile  = "metrics.csv"
)

// Store persists recordings under baseDir, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Engine     string             `json:"engine"`
	Dt         float64            `json:"dt"`
	ModelCount int                `json:"model_count"`
	Collision  bool               `json:"collision"`
	Complex    bool               `json:"complex"`
	Properties map[string]string  `json:"properties"`
	Scalars    map[string]float64 `json:"scalars"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Regime names the run's regime for display.
func (m *RunMetadata) Regime() string {
	if m.Complex {
		return "complex"
	}
	return "simple"
}

// Value looks a name up among scalars, then metrics.
func (m *RunMetadata) Value(name string) (float64, bool) {
	if v, ok := m.Scalars[name]; ok {
		return v, true
	}
	v, ok := m.Metrics[name]
	return v, ok
}

// Save writes rec as a new run and returns its ID.
func (s *Store) Save(rec *Recording) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	meta := RunMetadata{
		Timestamp:  now,
		Engine:     rec.Property("engine"),
		ModelCount: rec.intProperty("modelCount"),
		Collision:  rec.boolProperty("collision"),
		Complex:    rec.boolProperty("isComplex"),
		Properties: rec.Properties(),
		Scalars:    rec.Scalars(),
		Metrics:    rec.Stats(),
	}
	meta.Dt = meta.Scalars["dt"]

	runID, runDir, err := s.createRunDir(fmt.Sprintf("%s_%s_%d", meta.Engine, meta.Regime(), now.UnixNano()))
	if err != nil {
		return "", err
	}
	meta.ID = runID

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", err
	}
	if err := writeMetrics(filepath.Join(runDir, metricsFile), &meta); err != nil {
		return "", err
	}
	return runID, nil
}

// createRunDir creates a fresh directory, suffixing base until it is unused.
func (s *Store) createRunDir(base string) (string, string, error) {
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeMetrics(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "kind", "value"}); err != nil {
		return err
	}
	for _, section := range []struct {
		kind   string
		values map[string]float64
	}{
		{"scalar", meta.Scalars},
		{"stat", meta.Metrics},
	} {
		for _, name := range sortedKeys(section.values) {
			row := []string{name, section.kind, strconv.FormatFloat(section.values[name], 'g', -1, 64)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].Timestamp.Before(runs[j].Timestamp)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadMetrics reads the flat name -> value table of a run.
func (s *Store) LoadMetrics(runID string) (map[string]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, metricsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	out := make(map[string]float64)
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		if header {
			header = false
			continue
		}
		v, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: metric %s: %w", runID, record[0], err)
		}
		out[record[0]] = v
	}
	return out, nil
}

// ExportJSON writes runs as an indented JSON array.
func ExportJSON(w io.Writer, runs []RunMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}
