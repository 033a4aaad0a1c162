package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"pkt.systems/pslog"

	"github.com/abdul-hamid-achik/apictl/packages/assertions"
	"github.com/abdul-hamid-achik/apictl/packages/core/env"
	"github.com/abdul-hamid-achik/apictl/packages/http"
	"github.com/abdul-hamid-achik/apictl/packages/request"
	"github.com/abdul-hamid-achik/apictl/packages/response"
	"github.com/abdul-hamid-achik/apictl/packages/results"
)

// RootName is the name of the node every run hangs its tests under.
const RootName = "test results"

// ErrRequestNotFound is returned when a step names an undefined request.
var ErrRequestNotFound = request.ErrNotFound

// Executor sends a rendered request.
type Executor interface {
	Execute(ctx context.Context, t *request.Template) (*response.Response, error)
}

type Runner struct {
	client    Executor
	requests  request.Set
	tests     Set
	context   env.Context
	responses *response.Store
	printer   *results.Printer
	logger    pslog.Base
	baseDir   string
}

type Option func(*Runner)

func NewRunner(requests request.Set, tests Set, opts ...Option) *Runner {
	r := &Runner{
		requests:  requests,
		tests:     tests,
		context:   env.Context{},
		responses: response.NewStore(),
		logger:    pslog.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = http.NewClient(http.WithLogger(r.logger), http.WithBaseDir(r.baseDir))
	}
	return r
}

func WithClient(c Executor) Option {
	return func(r *Runner) {
		r.client = c
	}
}

// WithContext sets the variables every test starts from.
func WithContext(ctx env.Context) Option {
	return func(r *Runner) {
		if ctx != nil {
			r.context = ctx
		}
	}
}

// WithResponses seeds every test with previously captured responses.
func WithResponses(store *response.Store) Option {
	return func(r *Runner) {
		if store != nil {
			r.responses = store
		}
	}
}

// WithPrinter redraws the results tree after every change.
func WithPrinter(p *results.Printer) Option {
	return func(r *Runner) {
		r.printer = p
	}
}

func WithLogger(logger pslog.Base) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBaseDir resolves relative body and schema files against dir.
func WithBaseDir(dir string) Option {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// Skeleton builds the tree for names with every node NotRun.
func (r *Runner) Skeleton(names []string) (*results.Node, error) {
	root := results.New(RootName)
	for _, name := range names {
		t, err := r.tests.Get(name)
		if err != nil {
			return nil, err
		}
		root.AddNode(TestNode(name, t))
	}
	return root, nil
}

// TestNode mirrors t as test -> step -> assert.
func TestNode(name string, t *Test) *results.Node {
	node := results.New(name)
	for _, s := range t.Steps {
		step := node.Add(s.Name)
		for _, a := range s.Asserts {
			step.Add(a.String())
		}
	}
	return node
}

// Run executes the tests matched by patterns in order. A missing request or
// a transport error stops the run and is returned along with the partial
// tree. Assert failures only mark the tree.
func (r *Runner) Run(ctx context.Context, patterns []string) (*results.Node, error) {
	names, err := r.tests.Expand(patterns)
	if err != nil {
		return nil, err
	}

	root, err := r.Skeleton(names)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := r.notify(root); err != nil {
		return root, err
	}

	for i, name := range names {
		if err := r.RunTest(ctx, root, []int{i}, r.tests[name]); err != nil {
			return root, fmt.Errorf("test %s: %w", name, err)
		}
	}

	if err := root.Complete(nil, time.Since(start)); err != nil {
		return root, err
	}
	if r.printer != nil {
		if err := r.printer.Finish(root); err != nil {
			return root, err
		}
	}
	return root, nil
}

// RunTest executes t, recording outcomes under the node at path. Every test
// starts from a copy of the runner's context and responses.
func (r *Runner) RunTest(ctx context.Context, root *results.Node, path []int, t *Test) error {
	start := time.Now()
	if err := root.Update(path, results.Running, 0); err != nil {
		return err
	}
	if err := r.notify(root); err != nil {
		return err
	}

	app := env.NewApplicator(r.context.Clone(), r.responses.Clone())

	for i, step := range t.Steps {
		stepPath := childPath(path, i)
		if err := r.runStep(ctx, root, stepPath, step, app); err != nil {
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
	}

	var err error
	if len(t.Steps) == 0 {
		err = root.Update(path, results.Passed, time.Since(start))
	} else {
		err = root.Complete(path, time.Since(start))
	}
	if err != nil {
		return err
	}
	return r.notify(root)
}

func (r *Runner) runStep(ctx context.Context, root *results.Node, path []int, step Step, app *env.Applicator) error {
	start := time.Now()

	tmpl, err := r.requests.Get(step.Request)
	if err != nil {
		return err
	}

	rendered := request.Render(tmpl, app)
	r.logger.Debug("running step", "step", step.Name, "request", step.Request, "url", rendered.URL)

	resp, err := r.client.Execute(ctx, rendered)
	if err != nil {
		return err
	}
	app.AddResponse(step.Request, resp)

	evaluator := assertions.NewEvaluator(resp, assertions.WithBaseDir(r.baseDir))
	for i, a := range step.Asserts {
		result := evaluator.Evaluate(a)
		state := results.Passed
		if !result.Passed {
			state = results.Failed(result.Message)
		}
		if err := root.Update(childPath(path, i), state, time.Since(start)); err != nil {
			return err
		}
		if err := r.notify(root); err != nil {
			return err
		}
	}

	if len(step.Asserts) == 0 {
		err = root.Update(path, results.Passed, time.Since(start))
	} else {
		err = root.Complete(path, time.Since(start))
	}
	if err != nil {
		return err
	}
	return r.notify(root)
}

func (r *Runner) notify(root *results.Node) error {
	if r.printer == nil {
		return nil
	}
	return r.printer.Print(root)
}

func childPath(path []int, i int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = i
	return out
}
