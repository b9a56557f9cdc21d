// Package process runs subprocesses for task actions.
//
// Commands run in their own process group. Cancelling the context sends
// SIGTERM to the whole group and SIGKILL after the grace period. Executable
// lookups go through a Resolver that caches PATH hits for the life of the
// process.
//
//	out, err := process.Output(ctx, process.Command{Binary: "git", Args: []string{"rev-parse", "HEAD"}})
package process
