// Package viz renders validation results in the terminal.
//
//   - [RenderReport]: styled summary of one run with tolerance checks
//   - [RenderRuns]: table of stored runs
//   - [PlotMetric]: asciigraph chart of one metric across runs, one series per engine
//   - [ProgressModel]: Bubble Tea view of a sweep in progress
//
// Colors come from the active [Theme]; see [SetTheme].
package viz
