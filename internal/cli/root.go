package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	goerrors "github.com/kbukum/butler/errors"
)

// NewRootCmd builds the butler command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "butler [TARGET...]",
		Short: "A lightweight meta build system",
		Long: `butler runs the tasks of a task file in dependency order.

Tasks whose dependencies all report no change are skipped. Independent
tasks run concurrently. Without targets, butler lists the available ones.`,
		Example: `  butler build
  butler -D build.mode=release -j 4 test
  butler --graph release`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.defines, "define", "D", nil, "make KEY=VALUE available to tasks, KEY is <task>.<input> (repeatable)")
	f.StringVarP(&opts.file, "file", "f", "", "task file to start from (default build.yml)")
	f.StringVar(&opts.configFile, "config", "", "butler configuration file")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "tasks of one layer to run at once (default GOMAXPROCS)")
	f.CountVarP(&opts.silent, "silent", "s", "reduce output verbosity (repeatable)")
	f.CountVarP(&opts.verbose, "verbose", "v", "increase output verbosity (repeatable)")
	f.BoolVarP(&opts.version, "version", "V", false, "print the version and exit")

	f.BoolVar(&opts.depends, InspectDepends, false, "list the direct dependencies of each TARGET and exit")
	f.BoolVar(&opts.extends, InspectExtends, false, "list the direct extensions of each TARGET and exit")
	f.BoolVar(&opts.describe, InspectDescribe, false, "print the definition site and doc of TARGET and exit")
	f.BoolVar(&opts.graph, InspectGraph, false, "print each layer of mutually independent tasks and exit")
	cmd.MarkFlagsMutuallyExclusive(InspectDepends, InspectExtends, InspectDescribe, InspectGraph)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return goerrors.InvalidInput("flags", err.Error())
	})
	return cmd
}

// Execute runs butler with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return goerrors.ExitOK
	}
	if !goerrors.IsAppError(err) {
		// cobra reports flag group violations as plain errors
		err = goerrors.InvalidInput("flags", err.Error())
	}
	NewOutput(stdout, stderr, opts.verbosity()).Error(err)
	return goerrors.ExitCode(err)
}
