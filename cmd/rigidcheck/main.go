package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/san-kum/rigidcheck/internal/config"
	"github.com/san-kum/rigidcheck/internal/engine"
	"github.com/san-kum/rigidcheck/internal/storage"
	"github.com/san-kum/rigidcheck/internal/sweep"
	"github.com/san-kum/rigidcheck/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	theme    string

	configFile string
	preset     string
	engineType string
	dt         float64
	duration   float64
	models     int
	collision  bool
	complexRun bool
	statistics string
	worldFile  string
	noSave     bool

	sweepFile   string
	engines     []string
	dts         []float64
	modelCounts []int
	workers     int
	live        bool

	asJSON     bool
	plotLog    bool
	plotWidth  int
	plotHeight int

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rigidcheck",
		Short:         "conservation-law validation for rigid-body physics engines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Level:           lvl,
				ReportTimestamp: true,
				Prefix:          "rigidcheck",
			})
			viz.SetTheme(theme)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidcheck", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one validation scenario",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	runCmd.Flags().StringVar(&engineType, "engine", config.DefaultEngine, "physics engine")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "max step size")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration")
	runCmd.Flags().IntVar(&models, "models", config.DefaultModelCount, "number of boxes to spawn")
	runCmd.Flags().BoolVar(&collision, "collision", false, "attach collision shapes")
	runCmd.Flags().BoolVar(&complexRun, "complex", false, "gravity and gyroscopic tumbling")
	runCmd.Flags().StringVar(&statistics, "stats", config.DefaultStatistics, "statistics to track (maxAbs,mean,rms,var,min,max)")
	runCmd.Flags().StringVar(&worldFile, "world", "", "world descriptor file (yaml)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter matrix of scenarios",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepFile, "config", "", "sweep file path (yaml)")
	sweepCmd.Flags().StringSliceVar(&engines, "engines", nil, "engines to sweep")
	sweepCmd.Flags().Float64SliceVar(&dts, "dts", nil, "step sizes to sweep")
	sweepCmd.Flags().IntSliceVar(&modelCounts, "models", nil, "model counts to sweep")
	sweepCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "concurrent runs")
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration per run")
	sweepCmd.Flags().StringVar(&statistics, "stats", config.DefaultStatistics, "statistics to track")
	sweepCmd.Flags().BoolVar(&live, "live", false, "show live progress")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	plotCmd := &cobra.Command{
		Use:   "plot [metric]",
		Short: "plot a metric across stored runs",
		Args:  cobra.ExactArgs(1),
		RunE:  plotMetric,
	}
	plotCmd.Flags().BoolVar(&plotLog, "log", true, "plot log10 of the absolute value")
	plotCmd.Flags().IntVar(&plotWidth, "width", 60, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENGINE\tDT\tMODELS\tREGIME\tE0")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				regime := "simple"
				if p.Complex {
					regime = "complex"
				}
				fmt.Fprintf(w, "%s\t%s\t%g\t%d\t%s\t%.9f\n", name, p.Engine, p.Dt, p.ModelCount, regime, p.NominalEnergy)
			}
			return w.Flush()
		},
	}

	enginesCmd := &cobra.Command{
		Use:   "engines",
		Short: "list available physics engines",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range engine.NewRegistry().Engines() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, showCmd, plotCmd, presetsCmd, enginesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadScenario resolves preset, then config file, then explicitly set flags.
func loadScenario(cmd *cobra.Command) (*config.Scenario, error) {
	sc := config.DefaultScenario()
	if preset != "" {
		sc = config.GetPreset(preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("complex") && complexRun != sc.Complex {
		// switching regime swaps in that regime's initial conditions
		name := "simple"
		if complexRun {
			name = "complex"
		}
		base := config.GetPreset(name)
		base.Engine, base.Dt, base.Duration, base.ModelCount = sc.Engine, sc.Dt, sc.Duration, sc.ModelCount
		base.Collision, base.Statistics, base.World = sc.Collision, sc.Statistics, sc.World
		sc = base
	}
	if flags.Changed("engine") {
		sc.Engine = engineType
	}
	if flags.Changed("dt") {
		sc.Dt = dt
	}
	if flags.Changed("time") {
		sc.Duration = duration
	}
	if flags.Changed("models") {
		sc.ModelCount = models
	}
	if flags.Changed("collision") {
		sc.Collision = collision
	}
	if flags.Changed("stats") {
		sc.Statistics = statistics
	}
	if flags.Changed("world") {
		sc.World = worldFile
	}
	return sc, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	var store *storage.Store
	if !noSave {
		store = storage.New(dataDir)
	}
	runner := sweep.New(sweep.WithLogger(logger), sweep.WithStore(store))

	logger.Info("running scenario", "engine", sc.Engine, "dt", sc.Dt, "models", sc.ModelCount, "complex", sc.Complex)
	res := runner.RunOne(sc)
	if res.Err != nil {
		return res.Err
	}

	fmt.Println(viz.RenderReport(res.Report, viz.DefaultTolerances))
	if res.RunID != "" {
		fmt.Printf("run id: %s\n", res.RunID)
	}
	if ok, failed := viz.Verdict(res.Report.Metrics, viz.DefaultTolerances); !ok {
		return fmt.Errorf("out of tolerance: %s", strings.Join(failed, ", "))
	}
	return nil
}

func loadSweep(cmd *cobra.Command) (*config.Sweep, error) {
	sw := config.DefaultSweep()
	if sweepFile != "" {
		loaded, err := config.LoadSweep(sweepFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load sweep: %w", err)
		}
		sw = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("engines") {
		sw.Engines = engines
	}
	if flags.Changed("dts") {
		sw.Dts = dts
	}
	if flags.Changed("models") {
		sw.ModelCounts = modelCounts
	}
	if flags.Changed("workers") {
		sw.Workers = workers
	}
	if flags.Changed("time") {
		sw.Duration = duration
	}
	if flags.Changed("stats") {
		sw.Statistics = statistics
	}
	return sw, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sw, err := loadSweep(cmd)
	if err != nil {
		return err
	}
	scenarios := sw.Scenarios()
	if len(scenarios) == 0 {
		return fmt.Errorf("empty sweep")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []sweep.Option{sweep.WithWorkers(sw.Workers)}
	if !noSave {
		opts = append(opts, sweep.WithStore(storage.New(dataDir)))
	}

	var results []sweep.Result
	if live {
		results, err = runSweepLive(ctx, scenarios, opts)
	} else {
		logger.Info("starting sweep", "scenarios", len(scenarios), "workers", sw.Workers)
		results, err = sweep.New(append(opts, sweep.WithLogger(logger))...).Run(ctx, scenarios)
	}
	if err != nil {
		return err
	}

	failures := sweep.Failures(results)
	for _, f := range failures {
		logger.Error("scenario failed", "index", f.Index, "engine", f.Scenario.Engine, "dt", f.Scenario.Dt, "err", f.Err)
	}
	logger.Info("sweep finished", "runs", len(results), "failed", len(failures))
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d runs failed", len(failures), len(results))
	}
	return nil
}

// runSweepLive drives the sweep in the background while a Bubble Tea program
// shows progress. Quitting the view cancels scenarios not yet started.
func runSweepLive(ctx context.Context, scenarios []*config.Scenario, opts []sweep.Option) ([]sweep.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(viz.NewProgressModel(fmt.Sprintf("sweep · %d scenarios", len(scenarios)), len(scenarios)))

	opts = append(opts,
		sweep.WithLogger(log.New(io.Discard)),
		sweep.WithProgress(func(res sweep.Result) {
			msg := viz.ResultMsg{Index: res.Index, Label: scenarioLabel(res.Scenario), Elapsed: res.Elapsed, Err: res.Err}
			if res.Report != nil {
				msg.Metrics = res.Report.Metrics
			}
			p.Send(msg)
		}),
	)

	type outcome struct {
		results []sweep.Result
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := sweep.New(opts...).Run(ctx, scenarios)
		p.Send(viz.DoneMsg{Err: err})
		done <- outcome{results, err}
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-done
		return nil, err
	}
	if m, ok := final.(viz.ProgressModel); ok && m.Cancelled() {
		cancel()
	}

	out := <-done
	return out.results, out.err
}

func scenarioLabel(sc *config.Scenario) string {
	regime := "simple"
	if sc.Complex {
		regime = "complex"
	}
	return fmt.Sprintf("%s dt=%g n=%d %s", sc.Engine, sc.Dt, sc.ModelCount, regime)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if asJSON {
		return storage.ExportJSON(os.Stdout, runs)
	}
	fmt.Println(viz.RenderRuns(runs))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	if asJSON {
		return storage.ExportJSON(os.Stdout, []storage.RunMetadata{*meta})
	}
	fmt.Println(viz.RenderMetadata(meta))
	return nil
}

func plotMetric(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	chart, err := viz.PlotMetric(runs, args[0], viz.PlotOptions{Width: plotWidth, Height: plotHeight, Log: plotLog})
	if err != nil {
		return err
	}
	fmt.Println(chart)
	return nil
}
