// Package runner executes the tasks of a registry.Registry in dependency
// order.
//
// A run plans the requested targets into layers and walks them deepest
// first. Tasks inside a layer are independent and run concurrently, up to
// the configured number of jobs; the next layer starts only when the
// previous one has finished. A task whose dependencies all reported
// Changed == false is skipped and reports an unchanged result itself.
//
//	r := runner.New(
//	    runner.WithJobs(4),
//	    runner.WithMiddleware(runner.WithLogging(log)),
//	)
//	exec := r.Run(ctx, reg, []string{"build"}, map[string]any{"build.mode": "release"})
//	for name, res := range exec.Results() {
//	    fmt.Println(name, res.Changed)
//	}
//	if err := exec.Err(); err != nil {
//	    return err
//	}
package runner
