package process

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// Command describes one subprocess invocation. Every field except Binary
// may be left zero.
type Command struct {
	// Binary is an executable path, or a name looked up on PATH.
	Binary string
	Args   []string
	// Dir is the working directory; empty means the caller's.
	Dir string
	// Env entries (KEY=VALUE) are appended to the inherited environment.
	Env   []string
	Stdin io.Reader
	// Stderr additionally receives the process's stderr while it runs.
	Stderr io.Writer
	// GracePeriod separates SIGTERM from SIGKILL on cancellation.
	GracePeriod time.Duration
	// Timeout bounds the whole run.
	Timeout time.Duration
}

// ShellCommand returns a Command running cmdline through shell -c.
func ShellCommand(shell, cmdline string) Command {
	return Command{Binary: shell, Args: []string{"-c", cmdline}}
}

// String renders the command line for logs, quoting arguments that would
// not survive a shell split.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Binary)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'\\$") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func (c Command) gracePeriod() time.Duration {
	if c.GracePeriod > 0 {
		return c.GracePeriod
	}
	return defaultGracePeriod
}

// environ returns nil to inherit the parent environment unchanged.
func (c Command) environ() []string {
	if len(c.Env) == 0 {
		return nil
	}
	return append(os.Environ(), c.Env...)
}
