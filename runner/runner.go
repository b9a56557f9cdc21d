package runner

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/observability"
	"github.com/kbukum/butler/registry"
	"github.com/kbukum/butler/task"
)

// Step invokes one task with its assembled arguments.
type Step func(ctx context.Context, t *registry.Task, args task.Args) (task.Result, error)

// Middleware decorates a Step. The first middleware passed to
// WithMiddleware is the outermost.
type Middleware func(next Step) Step

// Runner executes task graphs layer by layer.
type Runner struct {
	jobs       int
	log        *logger.Logger
	middleware []Middleware
}

// Option configures a Runner.
type Option func(*Runner)

// WithJobs limits how many tasks of one layer run at the same time.
// 1 runs every layer sequentially in layer order; n <= 0 keeps the default.
func WithJobs(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.jobs = n
		}
	}
}

// WithLogger sets the logger used for run and skip events.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMiddleware appends middleware around every task invocation.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Runner) {
		r.middleware = append(r.middleware, mw...)
	}
}

// New creates a Runner. Jobs default to GOMAXPROCS.
func New(opts ...Option) *Runner {
	r := &Runner{jobs: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("runner")
	}
	return r
}

// Jobs returns the per-layer concurrency limit.
func (r *Runner) Jobs() int { return r.jobs }

// Run prepares a run of targets and everything they depend on. Nothing
// executes until the returned Execution is iterated.
//
// overrides are keyed "<task>.<input>"; each value reaches that input
// under the task.StdinSource key.
func (r *Runner) Run(ctx context.Context, reg *registry.Registry, targets []string, overrides map[string]any) *Execution {
	return &Execution{
		runner:    r,
		ctx:       ctx,
		reg:       reg,
		targets:   append([]string(nil), targets...),
		overrides: overrides,
	}
}

// Outcome is one emitted (task, result) pair.
type Outcome struct {
	Name   string
	Result task.Result
}

// Collect runs to completion and returns every emitted outcome in order,
// along with the error that ended the run, if any.
func (r *Runner) Collect(ctx context.Context, reg *registry.Registry, targets []string, overrides map[string]any) ([]Outcome, error) {
	exec := r.Run(ctx, reg, targets, overrides)
	var out []Outcome
	for name, res := range exec.Results() {
		out = append(out, Outcome{Name: name, Result: res})
	}
	return out, exec.Err()
}

// Run executes targets with a default Runner.
func Run(ctx context.Context, reg *registry.Registry, targets []string, overrides map[string]any) *Execution {
	return New().Run(ctx, reg, targets, overrides)
}

// Stats counts what happened during the most recent iteration.
type Stats struct {
	RunID    string
	Layers   int
	Executed int
	Skipped  int
	Duration time.Duration
}

// Execution is a prepared run. Every range over Results starts again from
// scratch with an empty result cache. Range it from one goroutine at a
// time: Err and Stats describe only the most recent iteration.
type Execution struct {
	runner    *Runner
	ctx       context.Context
	reg       *registry.Registry
	targets   []string
	overrides map[string]any

	mu    sync.Mutex
	err   error
	stats Stats
}

// Results yields (task name, result) pairs deepest layer first. Within a
// layer, results are yielded in a stable order once the whole layer has
// finished. Stopping the range early stops the run after the current
// layer.
func (e *Execution) Results() iter.Seq2[string, task.Result] {
	return func(yield func(string, task.Result) bool) {
		st := &Stats{RunID: uuid.NewString()}
		e.set(nil, Stats{RunID: st.RunID})
		start := time.Now()
		err := e.execute(st, yield)
		st.Duration = time.Since(start)
		e.set(err, *st)
	}
}

// Err returns the error that ended the most recent iteration, or nil.
func (e *Execution) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Stats returns counters of the most recent iteration.
func (e *Execution) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Execution) set(err error, st Stats) {
	e.mu.Lock()
	e.err = err
	e.stats = st
	e.mu.Unlock()
}

func (e *Execution) execute(st *Stats, yield func(string, task.Result) bool) (err error) {
	ctx := withRunID(e.ctx, st.RunID)
	log := e.runner.log.WithFields(logger.Fields(logger.FieldRunID, st.RunID))

	ov, err := parseOverrides(e.overrides)
	if err != nil {
		return err
	}

	release := e.reg.Freeze()
	defer release()

	plan, err := e.reg.Plan(e.targets...)
	if err != nil {
		return err
	}
	ov.warnUnmatched(e.reg, log)
	st.Layers = len(plan)

	ctx, span := observability.StartRun(ctx, st.RunID, e.targets)
	defer func() { span.End(ctx, err) }()

	log.Debug("run started", logger.Fields("targets", e.targets, "layers", len(plan)))

	cache := newCache()
	step := e.runner.chain()
	for depth := len(plan) - 1; depth >= 0; depth-- {
		if cerr := ctx.Err(); cerr != nil {
			return goerrors.Canceled(cerr)
		}

		l := &layer{
			reg:   e.reg,
			ids:   plan[depth],
			cache: cache,
			ov:    ov,
			step:  step,
			jobs:  e.runner.jobs,
			log:   log.WithFields(logger.Fields(logger.FieldLayer, len(plan)-1-depth)),
		}
		outcomes, lerr := l.run(ctx)
		st.Executed += l.executed
		st.Skipped += l.skipped

		for _, o := range outcomes {
			if !yield(o.Name, o.Result) {
				log.Debug("run stopped by consumer")
				return nil
			}
		}
		if lerr != nil {
			log.Error("run failed", logger.ErrorFields("run", lerr))
			return lerr
		}
	}

	log.Debug("run finished", logger.Fields("executed", st.Executed, "skipped", st.Skipped))
	return nil
}

// chain wraps invoke with the configured middleware.
func (r *Runner) chain() Step {
	step := Step(invoke)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		step = r.middleware[i](step)
	}
	return step
}

// invoke calls the action and turns its failures into TASK_FAILED.
func invoke(ctx context.Context, t *registry.Task, args task.Args) (res task.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = goerrors.TaskFailed(t.Name, fmt.Errorf("panic: %v", p)).
				WithDetail("stack", string(debug.Stack()))
		}
	}()

	res, err = t.Action.Run(ctx, args)
	if err != nil {
		if goerrors.HasCode(err, goerrors.ErrCodeInvalidReturnType) {
			if appErr, ok := goerrors.AsAppError(err); ok {
				return task.Result{}, appErr.WithDetail("task", t.Name)
			}
		}
		return task.Result{}, goerrors.TaskFailed(t.Name, err)
	}
	if res.Attrs == nil {
		res.Attrs = map[string]any{}
	}
	return res, nil
}

type runIDKey struct{}

func withRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the id of the run ctx belongs to, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
