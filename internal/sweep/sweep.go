package sweep

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/rigidcheck/internal/config"
	"github.com/san-kum/rigidcheck/internal/engine"
	"github.com/san-kum/rigidcheck/internal/harness"
	"github.com/san-kum/rigidcheck/internal/storage"
)

// Result is the outcome of one scenario in a sweep.
type Result struct {
	Index     int
	Scenario  *config.Scenario
	Report    *harness.Report
	Recording *storage.Recording
	// RunID is set when the runner has a store and the run was saved.
	RunID   string
	Elapsed time.Duration
	Err     error
}

// Runner executes independent validation runs. Each run gets its own engine
// registry, world, namer and recording, so runs share no state.
type Runner struct {
	workers  int
	store    *storage.Store
	logger   *log.Logger
	progress func(Result)
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithStore(s *storage.Store) Option {
	return func(r *Runner) { r.store = s }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress registers fn to be called once per finished run. Calls are
// serialized.
func WithProgress(fn func(Result)) Option {
	return func(r *Runner) { r.progress = fn }
}

func New(opts ...Option) *Runner {
	r := &Runner{
		workers: config.DefaultWorkers,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOne executes a single scenario in a freshly loaded world.
func (r *Runner) RunOne(sc *config.Scenario) (res Result) {
	res = Result{Scenario: sc, Recording: storage.NewRecording()}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	desc, err := sc.WorldDescriptor()
	if err != nil {
		res.Err = err
		return res
	}
	world, err := engine.NewRegistry().LoadWorld(sc.Engine, desc)
	if err != nil {
		res.Err = err
		return res
	}

	res.Report, res.Err = harness.Run(world, sc.RunConfig(),
		harness.WithLogger(r.logger),
		harness.WithRecorder(res.Recording),
		harness.WithNamer(harness.NewSequentialNamer()),
	)
	if res.Err != nil || r.store == nil {
		return res
	}

	res.RunID, res.Err = r.store.Save(res.Recording)
	if res.Err != nil {
		res.Err = fmt.Errorf("save run: %w", res.Err)
	}
	return res
}

// Run executes scenarios on up to the configured number of workers.
// Cancellation is checked between runs; a run in progress always finishes.
// Scenarios never started because of cancellation carry ctx.Err().
func (r *Runner) Run(ctx context.Context, scenarios []*config.Scenario) ([]Result, error) {
	results := make([]Result, len(scenarios))
	jobs := make(chan int)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	workers := r.workers
	if workers > len(scenarios) {
		workers = len(scenarios)
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				var res Result
				if err := ctx.Err(); err != nil {
					res = Result{Scenario: scenarios[idx], Err: err}
				} else {
					res = r.RunOne(scenarios[idx])
				}
				res.Index = idx
				results[idx] = res

				r.logResult(res)
				if r.progress != nil {
					mu.Lock()
					r.progress(res)
					mu.Unlock()
				}
			}
		}()
	}

	for i := range scenarios {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, ctx.Err()
}

func (r *Runner) logResult(res Result) {
	sc := res.Scenario
	l := r.logger.With("index", res.Index, "engine", sc.Engine, "dt", sc.Dt, "models", sc.ModelCount, "complex", sc.Complex)
	if res.Err != nil {
		l.Warn("run failed", "err", res.Err)
		return
	}
	l.Info("run finished", "elapsed", res.Elapsed, "id", res.RunID)
}

// Failures returns the results that carry an error.
func Failures(results []Result) []Result {
	var out []Result
	for _, res := range results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}
