// Package task defines what a registered unit of work looks like to the
// engine: the Action it runs, the named inputs it declares, the per-input
// breakdown of contributing sources it receives, and the tagged Result it
// produces.
//
// Actions declare their inputs up front instead of having their signature
// inspected at call time:
//
//	build := task.Func(func(ctx context.Context, args task.Args) (any, error) {
//	    for src, v := range args.Get("flags") {
//	        ...
//	    }
//	    return map[string]any{"binary": "bin/app"}, nil
//	})
package task
