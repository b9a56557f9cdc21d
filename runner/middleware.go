package runner

import (
	"context"
	"time"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/observability"
	"github.com/kbukum/butler/registry"
	"github.com/kbukum/butler/task"
)

// WithTracing opens a span named "{prefix}.{task}" around every invocation.
func WithTracing(prefix string) Middleware {
	return func(next Step) Step {
		return func(ctx context.Context, t *registry.Task, args task.Args) (task.Result, error) {
			ctx, span := observability.StartTask(ctx, prefix, t.Name, RunID(ctx))
			res, err := next(ctx, t, args)
			span.End(res.Changed, err)
			return res, err
		}
	}
}

// WithMetrics records invocation count, duration and errors per task.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(next Step) Step {
		return func(ctx context.Context, t *registry.Task, args task.Args) (task.Result, error) {
			start := time.Now()
			res, err := next(ctx, t, args)
			duration := time.Since(start)

			status := observability.StatusUnchanged
			switch {
			case err != nil:
				status = observability.StatusFailed
				code := string(goerrors.ErrCodeTaskFailed)
				if appErr, ok := goerrors.AsAppError(err); ok {
					code = string(appErr.Code)
				}
				metrics.RecordError(ctx, code, t.Name)
			case res.Changed:
				status = observability.StatusChanged
			}
			metrics.RecordTask(ctx, t.Name, status, duration)

			return res, err
		}
	}
}

// WithLogging logs every invocation with its duration and outcome.
func WithLogging(log *logger.Logger) Middleware {
	return func(next Step) Step {
		return func(ctx context.Context, t *registry.Task, args task.Args) (task.Result, error) {
			start := time.Now()
			res, err := next(ctx, t, args)

			fields := logger.MergeWithDuration(logger.Fields(
				logger.FieldTask, t.Name,
				logger.FieldRunID, RunID(ctx),
			), time.Since(start))

			if err != nil {
				log.Error("task failed", logger.MergeWithError(fields, err))
			} else {
				fields["changed"] = res.Changed
				log.Info("task completed", fields)
			}
			return res, err
		}
	}
}
