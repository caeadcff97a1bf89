package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/rigidcheck/internal/harness"
	"github.com/san-kum/rigidcheck/internal/storage"
)

func sampleReport() *harness.Report {
	return &harness.Report{
		Engine:     "rk4",
		Dt:         0.001,
		ModelCount: 2,
		Steps:      10000,
		WallTime:   120 * time.Millisecond,
		SimTime:    10,
		TimeRatio:  0.012,
		Energy0:    5.001041625,
		Metrics: map[string]float64{
			"energyError_maxAbs":    3e-12,
			"angMomentumErr_maxAbs": 2e-10,
			"linPositionErr_maxAbs": 1e-13,
		},
	}
}

func sampleRuns() []storage.RunMetadata {
	return []storage.RunMetadata{
		{ID: "rk4_a", Engine: "rk4", Dt: 0.002, ModelCount: 1, Metrics: map[string]float64{"energyError_maxAbs": 1e-9}},
		{ID: "rk4_b", Engine: "rk4", Dt: 0.001, ModelCount: 1, Metrics: map[string]float64{"energyError_maxAbs": 1e-11}},
		{ID: "euler_a", Engine: "euler", Dt: 0.001, ModelCount: 1, Complex: true,
			Metrics: map[string]float64{"energyError_maxAbs": 2e-2},
			Scalars: map[string]float64{"timeRatio": 0.5}},
	}
}

func TestVerdict(t *testing.T) {
	ok, failed := Verdict(sampleReport().Metrics, DefaultTolerances)
	if !ok || len(failed) != 0 {
		t.Errorf("expected pass, got %v", failed)
	}

	ok, failed = Verdict(map[string]float64{"energyError_maxAbs": 0.5, "angMomentumErr_maxAbs": 0}, DefaultTolerances)
	if ok || len(failed) != 1 || failed[0] != "energyError_maxAbs" {
		t.Errorf("expected energy failure, got %v", failed)
	}

	if ok, _ := Verdict(map[string]float64{}, DefaultTolerances); !ok {
		t.Error("missing metrics should not fail")
	}
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(sampleReport(), DefaultTolerances)
	for _, want := range []string{"rk4", "simple", "energyError_maxAbs", "angMomentumErr_maxAbs", "PASS"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	rep := sampleReport()
	rep.Metrics["energyError_maxAbs"] = 0.3
	if out := RenderReport(rep, DefaultTolerances); !strings.Contains(out, "FAIL") {
		t.Error("expected FAIL for out-of-tolerance energy")
	}
}

func TestRenderRuns(t *testing.T) {
	if out := RenderRuns(nil); !strings.Contains(out, "no runs") {
		t.Errorf("unexpected empty output %q", out)
	}

	out := RenderRuns(sampleRuns())
	for _, want := range []string{"rk4_a", "euler_a", "complex", "2.000e-02", "5.000e-01", "-"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestRenderMetadata(t *testing.T) {
	meta := &storage.RunMetadata{
		ID:         "rk4_1",
		Properties: map[string]string{"engine": "rk4"},
		Scalars:    map[string]float64{"dt": 0.001},
		Metrics:    map[string]float64{"energyError_maxAbs": 1e-9},
	}
	out := RenderMetadata(meta)
	for _, want := range []string{"rk4_1", "engine", "dt", "energyError_maxAbs"} {
		if !strings.Contains(out, want) {
			t.Errorf("metadata view missing %q", want)
		}
	}
}

func TestPlotMetric(t *testing.T) {
	out, err := PlotMetric(sampleRuns(), "energyError_maxAbs", PlotOptions{Height: 5, Width: 30, Log: true})
	if err != nil {
		t.Fatalf("PlotMetric failed: %v", err)
	}
	if !strings.Contains(out, "log10") || !strings.Contains(out, "rk4") || !strings.Contains(out, "euler") {
		t.Errorf("plot missing caption or legends:\n%s", out)
	}

	if _, err := PlotMetric(sampleRuns(), "nope", PlotOptions{}); err == nil {
		t.Error("expected error for unrecorded metric")
	}
}

func TestLog10Abs(t *testing.T) {
	if v := log10Abs(-1e-3); v != -3 {
		t.Errorf("log10Abs(-1e-3) = %v", v)
	}
	if v := log10Abs(0); v != -18 {
		t.Errorf("log10Abs(0) = %v", v)
	}
}

func TestProgressModel(t *testing.T) {
	var m tea.Model = NewProgressModel("sweep", 3)

	m, _ = m.Update(ResultMsg{Label: "rk4 dt=0.001", Metrics: map[string]float64{"energyError_maxAbs": 1e-9}})
	m, _ = m.Update(ResultMsg{Label: "euler dt=0.001", Err: errors.New("boom")})

	pm := m.(ProgressModel)
	if pm.Done() != 2 || pm.Failed() != 1 {
		t.Errorf("done=%d failed=%d", pm.Done(), pm.Failed())
	}
	view := pm.View()
	if !strings.Contains(view, "2/3") || !strings.Contains(view, "boom") {
		t.Errorf("unexpected view:\n%s", view)
	}

	m, cmd := m.Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command after DoneMsg")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "failures") {
		t.Error("finished view should mention failures")
	}

	if _, cmd := m.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("finished model should stop ticking")
	}
}

func TestProgressModel_Cancel(t *testing.T) {
	m, cmd := NewProgressModel("sweep", 1).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.(ProgressModel).Cancelled() {
		t.Error("ctrl+c should cancel and quit")
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme(ThemeCyberpunk.Name)

	SetTheme("ocean")
	if CurrentTheme.Name != "ocean" {
		t.Errorf("expected ocean, got %s", CurrentTheme.Name)
	}
	SetTheme("nonexistent")
	if CurrentTheme.Name != ThemeCyberpunk.Name {
		t.Errorf("expected fallback to cyberpunk, got %s", CurrentTheme.Name)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func TestSparklineChart(t *testing.T) {
	if out := SparklineChart(nil, 5); out != "─────" {
		t.Errorf("unexpected empty sparkline %q", out)
	}
	if out := SparklineChart([]float64{1, 2, 3}, 10); out == "" {
		t.Error("expected sparkline output")
	}
}
