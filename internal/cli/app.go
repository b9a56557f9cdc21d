package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/butler/config"
	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/inspect"
	"github.com/kbukum/butler/loader"
	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/observability"
	"github.com/kbukum/butler/registry"
	"github.com/kbukum/butler/runner"
	"github.com/kbukum/butler/version"
)

const serviceName = "butler"

func run(ctx context.Context, cmd *cobra.Command, opts *options, targets []string) error {
	out := NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.verbosity())
	if opts.version {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		return nil
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger.Init(cfg.Logging)
	logger.RegisterDefaults()
	log := logger.Get("cli")

	overrides, err := ParseDefines(opts.defines)
	if err != nil {
		return err
	}

	shutdown, err := observability.Setup(ctx, serviceName, version.Get().Short(), cfg.Telemetry)
	if err != nil {
		return goerrors.Internal(err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	reg := registry.New()
	l := loader.New(reg, loader.WithStderr(cmd.ErrOrStderr()))
	if err := l.Include(cfg.File); err != nil {
		return err
	}
	log.Debug("task files loaded", logger.Fields("files", l.Files(), "tasks", reg.Len()))

	if which := opts.inspector(); which != "" {
		return inspectGraph(out, reg, which, targets)
	}
	if len(targets) == 0 {
		if reg.Len() == 0 {
			out.Warning("%s defines no tasks", cfg.File)
			return nil
		}
		out.Targets(inspect.List(reg))
		return nil
	}
	return runTargets(ctx, out, log, cfg, reg, targets, overrides)
}

// loadConfig reads the configuration and lets flags override it.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if opts.jobs < 0 {
		return nil, goerrors.InvalidInput("jobs", "must not be negative")
	}

	var loadOpts []config.LoaderOption
	if opts.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(opts.configFile))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		if goerrors.IsAppError(err) {
			return nil, err
		}
		return nil, goerrors.InvalidInput("config", err.Error()).WithCause(err)
	}

	if opts.file != "" {
		cfg.File = opts.file
	}
	if opts.jobs > 0 {
		cfg.Jobs = opts.jobs
	}
	if cmd.Flags().Changed("silent") || cmd.Flags().Changed("verbose") {
		cfg.Logging.Level = logger.LevelForVerbosity(opts.verbosity())
	}
	if cfg.Logging.NoColor {
		color.NoColor = true
	}
	return cfg, nil
}

func inspectGraph(out *Output, reg *registry.Registry, which string, targets []string) error {
	switch which {
	case InspectDepends:
		entries, err := inspect.Depends(reg, targets)
		if err != nil {
			return err
		}
		out.Header(`Direct dependencies in the form "<target>: <dep> ...":`)
		out.Entries(entries)
	case InspectExtends:
		entries, err := inspect.Extends(reg, targets)
		if err != nil {
			return err
		}
		out.Header(`Direct extensions in the form "<target>: <ext> ...":`)
		out.Entries(entries)
	case InspectDescribe:
		if len(targets) != 1 {
			return goerrors.InvalidInput("targets", "can only describe exactly one target")
		}
		d, err := inspect.Describe(reg, targets[0])
		if err != nil {
			return err
		}
		out.Describe(d)
	case InspectGraph:
		layers, err := inspect.Graph(reg, targets)
		if err != nil {
			return err
		}
		out.Header("Target hierarchy (starting at roots).")
		out.Graph(layers)
	}
	return nil
}

func runTargets(ctx context.Context, out *Output, log *logger.Logger, cfg *config.Config, reg *registry.Registry, targets []string, overrides map[string]any) error {
	ctx, stop := withSignals(ctx, log)
	defer stop()

	var (
		mws     []runner.Middleware
		metrics *observability.Metrics
	)
	if cfg.Telemetry.Enabled() {
		m, err := observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			return goerrors.Internal(err)
		}
		metrics = m
		mws = append(mws, runner.WithTracing(serviceName), runner.WithMetrics(m))
	}
	if out.enabled(logger.VerbosityDebug) {
		mws = append(mws, runner.WithLogging(logger.Get("runner")))
	}

	r := runner.New(runner.WithJobs(cfg.Jobs), runner.WithMiddleware(mws...))
	exec := r.Run(ctx, reg, targets, overrides)
	for name, res := range exec.Results() {
		out.Task(name, res)
	}

	err, st := exec.Err(), exec.Stats()
	if metrics != nil {
		status := observability.StatusOK
		if err != nil {
			status = observability.StatusFailed
		}
		metrics.RecordRun(context.WithoutCancel(ctx), status, st.Skipped, st.Duration)
	}
	if err != nil {
		return err
	}
	out.Summary(st)
	return nil
}

// withSignals cancels the returned context on SIGINT or SIGTERM.
func withSignals(ctx context.Context, log *logger.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			log.Warn("received signal, canceling run", logger.Fields("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
