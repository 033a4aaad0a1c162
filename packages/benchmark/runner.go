package benchmark

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"

	"github.com/abdul-hamid-achik/apictl/packages/core/env"
	"github.com/abdul-hamid-achik/apictl/packages/http"
	"github.com/abdul-hamid-achik/apictl/packages/request"
	"github.com/abdul-hamid-achik/apictl/packages/response"
)

const progressInterval = 500 * time.Millisecond

// ErrRequestNotFound is returned when the config names an undefined request.
var ErrRequestNotFound = request.ErrNotFound

// Executor sends a rendered request.
type Executor interface {
	Execute(ctx context.Context, t *request.Template) (*response.Response, error)
}

// Runner executes benchmarks
type Runner struct {
	config     *Config
	requests   request.Set
	client     Executor
	context    env.Context
	responses  *response.Store
	scheduler  *Scheduler
	aggregator *Aggregator
	reporter   *Reporter
	logger     pslog.Base
	baseDir    string
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

func WithClient(c Executor) RunnerOption {
	return func(r *Runner) {
		r.client = c
	}
}

// WithContext sets the variables every iteration starts from.
func WithContext(ctx env.Context) RunnerOption {
	return func(r *Runner) {
		if ctx != nil {
			r.context = ctx
		}
	}
}

// WithResponses seeds every iteration with previously captured responses.
func WithResponses(store *response.Store) RunnerOption {
	return func(r *Runner) {
		if store != nil {
			r.responses = store
		}
	}
}

// WithReporter enables live progress output.
func WithReporter(reporter *Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

func WithLogger(logger pslog.Base) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new benchmark runner
func NewRunner(config *Config, requests request.Set, opts ...RunnerOption) *Runner {
	r := &Runner{
		config:     config,
		requests:   requests,
		context:    env.Context{},
		responses:  response.NewStore(),
		scheduler:  NewScheduler(config),
		aggregator: NewAggregator(),
		logger:     pslog.New(io.Discard),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = http.NewClient(http.WithLogger(r.logger), http.WithBaseDir(r.baseDir))
	}

	return r
}

// Run executes every iteration once and returns the summary. When ctx is
// cancelled the statistics gathered so far are returned with the error.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	templates := make([]*request.Template, len(r.config.Requests))
	for i, name := range r.config.Requests {
		t, err := r.requests.Get(name)
		if err != nil {
			return nil, err
		}
		templates[i] = t
	}

	r.logger.Info("starting benchmark",
		"requests", len(templates),
		"workers", r.config.Workers,
		"iterations", r.config.Iterations)

	var claimed atomic.Int64
	r.aggregator.Start()
	r.scheduler.Start()
	start := time.Now()

	progressDone := make(chan struct{})
	progressStopped := make(chan struct{})
	go r.progressLoop(&claimed, progressDone, progressStopped)

	var wg sync.WaitGroup
	for i := 0; i < r.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, &claimed, templates)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	close(progressDone)
	<-progressStopped
	if r.reporter != nil {
		r.reporter.ClearProgress()
	}

	stats := r.aggregator.Stats(elapsed, r.config.Buckets)
	stats.Requests = append([]string(nil), r.config.Requests...)
	stats.Workers = r.config.Workers

	r.logger.Info("benchmark finished",
		"iterations", stats.Iterations,
		"samples", stats.Count,
		"errors", stats.Errors,
		"duration", elapsed.String())

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("benchmark interrupted: %w", err)
	}
	return stats, nil
}

// worker claims iterations until none are left.
func (r *Runner) worker(ctx context.Context, claimed *atomic.Int64, templates []*request.Template) {
	total := int64(r.config.Iterations)
	for {
		if ctx.Err() != nil {
			return
		}
		if claimed.Add(1) > total {
			return
		}
		if err := r.scheduler.Wait(ctx); err != nil {
			return
		}
		if !r.iteration(ctx, templates) {
			return
		}
		r.aggregator.IterationDone()
	}
}

// iteration runs the request list once. It returns false when ctx ended
// part way through.
func (r *Runner) iteration(ctx context.Context, templates []*request.Template) bool {
	app := env.NewApplicator(r.context.Clone(), r.responses.Clone())

	for i, t := range templates {
		name := r.config.Requests[i]
		rendered := request.Render(t, app)

		start := time.Now()
		resp, err := r.client.Execute(ctx, rendered)
		d := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			r.logger.Warn("request failed", "request", name, "error", err)
			r.aggregator.RecordError()
			continue
		}

		r.aggregator.Record(resp.StatusCode, d)
		app.AddResponse(name, resp)
	}
	return true
}

func (r *Runner) progressLoop(claimed *atomic.Int64, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	if r.reporter == nil {
		return
	}

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	total := int64(r.config.Iterations)
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c := claimed.Load()
			if c > total {
				c = total
			}
			r.reporter.Progress(r.aggregator.Current(), c, total)
		}
	}
}
