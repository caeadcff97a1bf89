package viz

import (
	"fmt"
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidcheck/internal/storage"
)

type PlotOptions struct {
	Width  int
	Height int
	// Log plots log10 of the absolute values, which suits error metrics
	// spanning several orders of magnitude.
	Log bool
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green, asciigraph.Red,
}

// PlotMetric charts metric over runs with one series per engine. Within a
// series runs are ordered by dt, then model count.
func PlotMetric(runs []storage.RunMetadata, metric string, opts PlotOptions) (string, error) {
	byEngine := make(map[string][]storage.RunMetadata)
	for _, r := range runs {
		if _, ok := r.Value(metric); ok {
			byEngine[r.Engine] = append(byEngine[r.Engine], r)
		}
	}
	if len(byEngine) == 0 {
		return "", fmt.Errorf("no runs record %q", metric)
	}

	engines := make([]string, 0, len(byEngine))
	for e := range byEngine {
		engines = append(engines, e)
	}
	sort.Strings(engines)

	series := make([][]float64, 0, len(engines))
	for _, e := range engines {
		group := byEngine[e]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Dt != group[j].Dt {
				return group[i].Dt < group[j].Dt
			}
			return group[i].ModelCount < group[j].ModelCount
		})

		values := make([]float64, 0, len(group))
		for _, r := range group {
			v, _ := r.Value(metric)
			if opts.Log {
				v = log10Abs(v)
			}
			values = append(values, v)
		}
		// asciigraph needs at least two points to draw a line
		if len(values) == 1 {
			values = append(values, values[0])
		}
		series = append(series, values)
	}

	caption := metric
	if opts.Log {
		caption = "log10 |" + metric + "|"
	}
	graphOpts := []asciigraph.Option{
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(seriesColors[:min(len(series), len(seriesColors))]...),
		asciigraph.SeriesLegends(engines...),
	}
	if opts.Width > 0 {
		graphOpts = append(graphOpts, asciigraph.Width(opts.Width))
	}
	if opts.Height > 0 {
		graphOpts = append(graphOpts, asciigraph.Height(opts.Height))
	}

	return asciigraph.PlotMany(series, graphOpts...), nil
}

// log10Abs floors exact zeros at 1e-18 so they stay plottable.
func log10Abs(v float64) float64 {
	return math.Log10(math.Max(math.Abs(v), 1e-18))
}
