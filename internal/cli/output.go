package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/inspect"
	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/runner"
	"github.com/kbukum/butler/task"
)

var (
	bold      = color.New(color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	boldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
	boldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
	boldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
)

// Output prints results for humans. What is printed depends on the
// verbosity: headers need pretty, listings need info, errors need error.
type Output struct {
	out       io.Writer
	err       io.Writer
	verbosity int
}

// NewOutput creates an Output writing results to out and diagnostics to
// errOut.
func NewOutput(out, errOut io.Writer, verbosity int) *Output {
	return &Output{out: out, err: errOut, verbosity: verbosity}
}

func (o *Output) enabled(level int) bool { return o.verbosity >= level }

// Header prints a section title.
func (o *Output) Header(format string, args ...any) {
	if o.enabled(logger.VerbosityPretty) {
		fmt.Fprintln(o.out, boldCyan(fmt.Sprintf(format, args...)))
	}
}

// Error prints err to the diagnostics stream.
func (o *Output) Error(err error) {
	if !o.enabled(logger.VerbosityError) {
		return
	}
	msg := err.Error()
	if appErr, ok := goerrors.AsAppError(err); ok {
		msg = string(appErr.Code) + ": " + describeCause(appErr)
	}
	fmt.Fprintln(o.err, boldRed("ERROR:"), msg)
}

// Warning prints a warning to the diagnostics stream.
func (o *Output) Warning(format string, args ...any) {
	if o.enabled(logger.VerbosityWarning) {
		fmt.Fprintln(o.err, yellow("WARNING:"), fmt.Sprintf(format, args...))
	}
}

// describeCause joins the messages along an AppError cause chain.
func describeCause(e *goerrors.AppError) string {
	parts := []string{e.Message}
	for cause := e.Cause; cause != nil; {
		next, ok := goerrors.AsAppError(cause)
		if !ok {
			parts = append(parts, cause.Error())
			break
		}
		parts = append(parts, next.Message)
		cause = next.Cause
	}
	return strings.Join(parts, ": ")
}

// Targets lists every task with its title.
func (o *Output) Targets(summaries []inspect.Summary) {
	if !o.enabled(logger.VerbosityInfo) {
		return
	}
	o.Header("Available targets:")
	t := newTable(o.out)
	for _, s := range summaries {
		t.addRow(bold(s.Name), s.Title)
	}
	t.render()
}

// Entries prints one line per target with its related tasks.
func (o *Output) Entries(entries []inspect.Entry) {
	t := newTable(o.out)
	for _, e := range entries {
		t.addRow(bold(e.Name+":"), strings.Join(e.Related, " "))
	}
	t.render()
}

// Describe prints the definition site and documentation of a task.
func (o *Output) Describe(d inspect.Description) {
	fmt.Fprintf(o.out, "%s: %s\n", bold(d.Name), d.Location)
	if d.Doc != "" {
		fmt.Fprintln(o.out, strings.TrimRight(d.Doc, "\n"))
	}
}

// Graph prints each layer on its own line, targets first.
func (o *Output) Graph(layers [][]string) {
	t := newTable(o.out)
	for i, layer := range layers {
		t.addRow(dim(fmt.Sprintf("%d", i)), strings.Join(layer, " "))
	}
	t.render()
}

// Task prints one finished task.
func (o *Output) Task(name string, res task.Result) {
	if !o.enabled(logger.VerbosityError) {
		return
	}
	if res.Changed {
		fmt.Fprintln(o.out, green("✔"), name)
	} else {
		fmt.Fprintln(o.out, dim("·"), name, dim("(unchanged)"))
	}
	if o.enabled(logger.VerbosityDebug) {
		for _, k := range slices.Sorted(maps.Keys(res.Attrs)) {
			fmt.Fprintf(o.out, "    %s = %v\n", dim(k), res.Attrs[k])
		}
	}
}

// Summary prints the counters of a finished run.
func (o *Output) Summary(st runner.Stats) {
	if !o.enabled(logger.VerbosityPretty) {
		return
	}
	fmt.Fprintf(o.out, "%s %d executed, %d skipped, %d layers in %s\n",
		boldGreen("done:"), st.Executed, st.Skipped, st.Layers, st.Duration.Round(time.Millisecond))
}

// table prints rows in aligned columns.
type table struct {
	w      io.Writer
	rows   [][]string
	widths []int
}

func newTable(w io.Writer) *table {
	return &table{w: w}
}

func (t *table) addRow(cells ...string) {
	for i, cell := range cells {
		if i >= len(t.widths) {
			t.widths = append(t.widths, 0)
		}
		if n := visibleLen(cell); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, cells)
}

func (t *table) render() {
	for _, row := range t.rows {
		var b strings.Builder
		b.WriteString("  ")
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", t.widths[i]-visibleLen(cell)+2))
			}
		}
		fmt.Fprintln(t.w, strings.TrimRight(b.String(), " "))
	}
}

// visibleLen is the printed width of s without ANSI escapes.
func visibleLen(s string) int {
	n, esc := 0, false
	for _, r := range s {
		switch {
		case esc:
			if r == 'm' {
				esc = false
			}
		case r == '\x1b':
			esc = true
		default:
			n++
		}
	}
	return n
}
