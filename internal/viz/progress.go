package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const recentLines = 8

// ResultMsg reports one finished run to a ProgressModel.
type ResultMsg struct {
	Index   int
	Label   string
	Elapsed time.Duration
	Metrics map[string]float64
	Err     error
}

// DoneMsg tells the ProgressModel the sweep is over.
type DoneMsg struct{ Err error }

type tickMsg time.Time

// ProgressModel shows a sweep as it runs.
type ProgressModel struct {
	title     string
	total     int
	done      int
	failed    int
	frame     int
	energy    []float64
	recent    []string
	finished  bool
	cancelled bool
	err       error
}

func NewProgressModel(title string, total int) ProgressModel {
	return ProgressModel{title: title, total: total}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	case ResultMsg:
		m.done++
		line := fmt.Sprintf("%-40s %8s", msg.Label, msg.Elapsed.Round(time.Millisecond))
		if msg.Err != nil {
			m.failed++
			line = StatusFail.Render("✗ ") + line + " " + Subtle.Render(msg.Err.Error())
		} else {
			line = StatusPass.Render("✓ ") + line
			if v, ok := msg.Metrics["energyError_maxAbs"]; ok {
				m.energy = append(m.energy, log10Abs(v))
				line += fmt.Sprintf("  E %.2e", v)
			}
		}
		m.recent = append(m.recent, line)
		if len(m.recent) > recentLines {
			m.recent = m.recent[len(m.recent)-recentLines:]
		}
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	case tickMsg:
		if m.finished {
			return m, nil
		}
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m ProgressModel) Done() int       { return m.done }
func (m ProgressModel) Failed() int     { return m.failed }
func (m ProgressModel) Cancelled() bool { return m.cancelled }

func (m ProgressModel) View() string {
	var s strings.Builder

	status := AnimatedSpinner(m.frame)
	if m.finished {
		status = StatusPass.Render("done")
		if m.failed > 0 || m.err != nil {
			status = StatusFail.Render("done with failures")
		}
	}
	s.WriteString(HeaderStyle.Render(m.title) + " " + status + "\n\n")

	pct := 1.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	s.WriteString(ProgressBar(pct, 40))
	s.WriteString(fmt.Sprintf(" %d/%d", m.done, m.total))
	if m.failed > 0 {
		s.WriteString(" " + StatusFail.Render(fmt.Sprintf("(%d failed)", m.failed)))
	}
	s.WriteString("\n\n")

	s.WriteString(MetricLabel.Render("log10 energy error") + SparklineChart(m.energy, 40) + "\n\n")
	for _, line := range m.recent {
		s.WriteString(line + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("q: stop after running scenarios finish"))
	return s.String()
}
