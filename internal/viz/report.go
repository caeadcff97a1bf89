package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/san-kum/rigidcheck/internal/harness"
	"github.com/san-kum/rigidcheck/internal/storage"
)

// DefaultTolerances are the bounds a run is checked against in reports.
// Metrics without a tolerance are shown but not judged.
var DefaultTolerances = map[string]float64{
	"angMomentumErr_maxAbs": 1e-2,
	"energyError_maxAbs":    1e-2,
}

// Verdict reports whether every metric with a tolerance is within it, and
// lists the ones that are not.
func Verdict(metrics map[string]float64, tolerances map[string]float64) (bool, []string) {
	var failed []string
	for name, tol := range tolerances {
		v, ok := metrics[name]
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.Abs(v) > tol {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return len(failed) == 0, failed
}

// RenderReport formats a completed run.
func RenderReport(rep *harness.Report, tolerances map[string]float64) string {
	var s strings.Builder

	regime := "simple"
	if rep.Complex {
		regime = "complex"
	}
	s.WriteString(HeaderStyle.Render(fmt.Sprintf("%s · %s · dt=%g · %d model(s)", rep.Engine, regime, rep.Dt, rep.ModelCount)))
	s.WriteString("\n")

	line := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	line("steps", fmt.Sprintf("%d", rep.Steps))
	line("simTime", fmt.Sprintf("%.6f s", rep.SimTime))
	line("wallTime", rep.WallTime.String())
	line("timeRatio", fmt.Sprintf("%.4g", rep.TimeRatio))
	line("energy0", fmt.Sprintf("%.9f", rep.Energy0))
	line("angMomentum0", fmt.Sprintf("%.9f", rep.AngMomentum0))
	s.WriteString("\n")

	for _, name := range rep.MetricNames() {
		v := rep.Metrics[name]
		value := fmt.Sprintf("%.3e", v)
		if tol, ok := tolerances[name]; ok {
			if math.Abs(v) <= tol {
				value += " " + StatusPass.Render("✓")
			} else {
				value += " " + StatusFail.Render(fmt.Sprintf("✗ > %.0e", tol))
			}
		}
		line(name, value)
	}

	ok, _ := Verdict(rep.Metrics, tolerances)
	s.WriteString("\n")
	if ok {
		s.WriteString(StatusPass.Render("PASS"))
	} else {
		s.WriteString(StatusFail.Render("FAIL"))
	}

	return Panel.Render(s.String())
}

// RunColumns are the metrics shown per run in RenderRuns.
var RunColumns = []string{"energyError_maxAbs", "angMomentumErr_maxAbs", "linPositionErr_maxAbs", "timeRatio"}

// RenderRuns formats stored runs as a table.
func RenderRuns(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return Subtle.Render("no runs recorded")
	}

	headers := append([]string{"id", "engine", "regime", "dt", "models"}, RunColumns...)
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		row := []string{r.ID, r.Engine, r.Regime(), fmt.Sprintf("%g", r.Dt), fmt.Sprintf("%d", r.ModelCount)}
		for _, col := range RunColumns {
			if v, ok := r.Value(col); ok {
				row = append(row, fmt.Sprintf("%.3e", v))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Subtle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

// RenderMetadata formats one stored run with all of its values.
func RenderMetadata(meta *storage.RunMetadata) string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(meta.ID) + "\n")
	for _, key := range sortedKeys(meta.Properties) {
		s.WriteString(MetricLabel.Render(key) + MetricValue.Render(meta.Properties[key]) + "\n")
	}
	s.WriteString(MetricLabel.Render("timestamp") + MetricValue.Render(meta.Timestamp.Format("2006-01-02 15:04:05")) + "\n\n")

	for _, group := range []map[string]float64{meta.Scalars, meta.Metrics} {
		for _, key := range sortedKeys(group) {
			s.WriteString(MetricLabel.Render(key) + MetricValue.Render(fmt.Sprintf("%.6g", group[key])) + "\n")
		}
		s.WriteString("\n")
	}
	return Panel.Render(strings.TrimRight(s.String(), "\n"))
}
