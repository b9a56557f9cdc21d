package process

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/logger"
)

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, SIGTERM is sent first, then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	return DefaultResolver.Run(ctx, cmd)
}

// Run executes cmd after resolving its binary through r.
func (r *Resolver) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, goerrors.InvalidInput("binary", "binary is required")
	}

	binary, err := r.Resolve(cmd.Binary)
	if err != nil {
		return nil, err
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = cmd.environ()

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stderr != nil {
		c.Stderr = io.MultiWriter(&stderr, cmd.Stderr)
	}

	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	// Use process group so we can kill the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = cmd.gracePeriod()

	logger.Get("process").Trace("exec", logger.Fields(
		"cmd", cmd.String(),
		"path", binary,
		"dir", cmd.Dir,
	))

	start := time.Now()
	err = c.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: duration,
	}

	if err != nil {
		// Context cancellation is the expected way to kill a process
		if ctx.Err() != nil {
			return result, goerrors.ProcessFailed(cmd.Binary, result.ExitCode, ctx.Err()).
				WithDetail("stderr", tail(result.Stderr))
		}
		return result, goerrors.ProcessFailed(cmd.Binary, result.ExitCode, err).
			WithDetail("stderr", tail(result.Stderr))
	}

	return result, nil
}

// Output runs cmd and returns its stdout with surrounding whitespace
// trimmed.
func Output(ctx context.Context, cmd Command) (string, error) {
	res, err := Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// Shell runs cmdline through shell -c with the remaining settings of cmd.
func Shell(ctx context.Context, shell, cmdline string, cmd Command) (*Result, error) {
	return DefaultResolver.Shell(ctx, shell, cmdline, cmd)
}

// Shell is the package-level Shell resolving shell through r.
func (r *Resolver) Shell(ctx context.Context, shell, cmdline string, cmd Command) (*Result, error) {
	sc := ShellCommand(shell, cmdline)
	cmd.Binary, cmd.Args = sc.Binary, sc.Args
	return r.Run(ctx, cmd)
}

// Bash runs cmdline through bash -c.
func Bash(ctx context.Context, cmdline string, cmd Command) (*Result, error) {
	return Shell(ctx, "bash", cmdline, cmd)
}

// tail keeps the end of stderr for error details.
func tail(b []byte) string {
	const limit = 2048
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		s = "..." + s[len(s)-limit:]
	}
	return s
}
