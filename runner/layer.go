package runner

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/registry"
	"github.com/kbukum/butler/task"
)

// layer executes one set of mutually independent tasks.
type layer struct {
	reg   *registry.Registry
	ids   []int
	cache *cache
	ov    overrides
	step  Step
	jobs  int
	log   *logger.Logger

	executed int
	skipped  int
}

type slot struct {
	name   string
	result task.Result
	err    error
	done   bool
}

// run executes the layer and returns the outcomes to emit: every result of
// the layer in order up to the first slot that did not succeed. The error
// is the first failure observed, which is what canceled the rest.
func (l *layer) run(ctx context.Context) ([]Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	slots := make([]slot, len(l.ids))
	sem := make(chan struct{}, l.concurrency())

	for i, id := range l.ids {
		t := l.reg.Task(id)
		slots[i].name = t.Name

		sem <- struct{}{}
		if ctx.Err() != nil {
			<-sem
			break
		}

		wg.Add(1)
		go func(i int, t *registry.Task) {
			defer wg.Done()
			defer func() { <-sem }()

			res, skipped, err := l.runTask(ctx, t)

			mu.Lock()
			defer mu.Unlock()
			slots[i].result, slots[i].err, slots[i].done = res, err, true
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			if skipped {
				l.skipped++
			} else {
				l.executed++
			}
		}(i, t)
	}
	wg.Wait()

	var out []Outcome
	for _, s := range slots {
		if !s.done || s.err != nil {
			break
		}
		out = append(out, Outcome{Name: s.name, Result: s.result})
	}
	if firstErr == nil && len(out) < len(slots) {
		firstErr = goerrors.Canceled(context.Cause(ctx))
	}
	return out, firstErr
}

// runTask decides whether t can be skipped, otherwise assembles its
// arguments and invokes it. The result is cached either way.
func (l *layer) runTask(ctx context.Context, t *registry.Task) (task.Result, bool, error) {
	children := l.reg.SuccessorIDs(t.ID())

	if len(children) > 0 {
		changed, err := l.cache.anyChanged(children)
		if err != nil {
			return task.Result{}, false, err
		}
		if !changed {
			res, ok := l.cache.get(t.ID())
			if !ok {
				res = task.Unchanged()
			}
			l.log.Debug("task skipped", logger.Fields(logger.FieldTask, t.Name))
			if err := l.cache.put(t.ID(), res); err != nil {
				return task.Result{}, false, err
			}
			return res, true, nil
		}
	}

	args, err := l.assemble(t, children)
	if err != nil {
		return task.Result{}, false, err
	}

	start := time.Now()
	res, err := l.step(ctx, t, args)
	if err != nil {
		return task.Result{}, false, err
	}
	l.log.Debug("task finished", logger.MergeWithDuration(logger.Fields(
		logger.FieldTask, t.Name,
		"changed", res.Changed,
	), time.Since(start)))

	if err := l.cache.put(t.ID(), res); err != nil {
		return task.Result{}, false, err
	}
	return res, false, nil
}

// assemble builds the per-input source breakdown for t: the override under
// task.StdinSource first, then every direct dependency whose attributes
// carry the input's name.
func (l *layer) assemble(t *registry.Task, children []int) (task.Args, error) {
	args := task.NewArgs(t.Inputs)
	stdin := l.ov[t.Name]

	for i, name := range t.Inputs.Positional {
		if v, ok := stdin[name]; ok {
			args.Positional[i][task.StdinSource] = v
		}
	}
	for _, name := range t.Inputs.Keyword {
		if v, ok := stdin[name]; ok {
			args.Keyword[name] = task.Sources{task.StdinSource: v}
		}
	}

	for _, child := range children {
		res, ok := l.cache.get(child)
		if !ok {
			return task.Args{}, missingDependency(t, l.reg.Task(child))
		}
		from := l.reg.Task(child).Name
		for i, name := range t.Inputs.Positional {
			if v, ok := res.Attrs[name]; ok {
				args.Positional[i][from] = v
			}
		}
		for _, name := range t.Inputs.Keyword {
			v, ok := res.Attrs[name]
			if !ok {
				continue
			}
			if args.Keyword[name] == nil {
				args.Keyword[name] = task.Sources{}
			}
			args.Keyword[name][from] = v
		}
	}
	return args, nil
}

func (l *layer) concurrency() int {
	if l.jobs <= 0 || l.jobs > len(l.ids) {
		return max(len(l.ids), 1)
	}
	return l.jobs
}

func missingDependency(t, dep *registry.Task) error {
	return goerrors.Internal(nil).
		WithDetail("task", t.Name).
		WithDetail("dependency", dep.Name)
}
