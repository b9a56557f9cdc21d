package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/process"
	"github.com/kbukum/butler/runner"
	"github.com/kbukum/butler/task"
)

// EnvPrefix starts the name of every variable butler exports to a shell
// task.
const EnvPrefix = "BUTLER_"

// ShellAction runs one task definition through a shell.
type ShellAction struct {
	name    string
	shell   string
	run     string
	dir     string
	env     []string
	timeout time.Duration
	output  string
	inputs  task.Inputs
	loader  *Loader
}

func newShellAction(def *Definition, dir string, inputs task.Inputs, l *Loader) *ShellAction {
	shell := def.Shell
	if shell == "" {
		shell = DefaultShell
	}
	output := def.Output
	if output == "" {
		output = OutputText
	}
	env := make([]string, 0, len(def.Env))
	for _, k := range slices.Sorted(maps.Keys(def.Env)) {
		env = append(env, k+"="+def.Env[k])
	}
	return &ShellAction{
		name:    def.Name,
		shell:   shell,
		run:     def.Run,
		dir:     dir,
		env:     env,
		timeout: def.TimeoutDuration(),
		output:  output,
		inputs:  inputs,
		loader:  l,
	}
}

// Name returns the task name the action was defined with.
func (a *ShellAction) Name() string { return a.name }

// Command returns the shell command line.
func (a *ShellAction) Command() string { return a.run }

// Run executes the command with the inputs exported to its environment.
func (a *ShellAction) Run(ctx context.Context, args task.Args) (task.Result, error) {
	env, err := a.environ(ctx, args)
	if err != nil {
		return task.Result{}, err
	}

	res, err := a.loader.resolver.Shell(ctx, a.shell, a.run, process.Command{
		Dir:     a.dir,
		Env:     env,
		Stderr:  a.loader.stderr,
		Timeout: a.timeout,
	})
	if err != nil {
		return task.Result{}, err
	}

	if a.output == OutputJSON {
		return parseJSONOutput(res.Stdout)
	}
	return task.Changed(map[string]any{"stdout": res.Text()}), nil
}

// environ builds the definition's env followed by butler's variables.
func (a *ShellAction) environ(ctx context.Context, args task.Args) ([]string, error) {
	env := slices.Clone(a.env)
	env = append(env, EnvPrefix+"TASK="+a.name)
	if id := runner.RunID(ctx); id != "" {
		env = append(env, EnvPrefix+"RUN_ID="+id)
	}
	for _, name := range a.inputs.Names() {
		sources := args.Get(name)
		if sources == nil {
			sources = task.Sources{}
		}
		data, err := encodeSources(sources)
		if err != nil {
			return nil, goerrors.InvalidInput(name, "input is not JSON encodable").WithCause(err)
		}
		env = append(env, EnvName(name)+"="+data)
	}
	return env, nil
}

// encodeSources renders sources as compact JSON, leaving "<stdin>" readable.
func encodeSources(s task.Sources) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// EnvName returns the variable an input is exported as: the prefix
// followed by the upper-cased name with every other character replaced by
// an underscore.
func EnvName(input string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// parseJSONOutput turns a JSON object on stdout into a result.
func parseJSONOutput(stdout []byte) (task.Result, error) {
	var attrs map[string]any
	if err := json.Unmarshal(stdout, &attrs); err != nil || attrs == nil {
		var v any
		_ = json.Unmarshal(stdout, &v)
		return task.Result{}, goerrors.InvalidReturnType(v).
			WithDetail("stdout", strings.TrimSpace(string(stdout)))
	}

	changed := true
	if raw, ok := attrs["changed"]; ok {
		b, isBool := raw.(bool)
		if !isBool {
			return task.Result{}, goerrors.InvalidReturnType(raw).WithDetail("key", "changed")
		}
		changed = b
		delete(attrs, "changed")
	}
	return task.Result{Attrs: attrs, Changed: changed}, nil
}
