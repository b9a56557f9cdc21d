package task

import (
	"slices"
)

// StdinSource is the Sources key under which an external parameter
// override is delivered.
const StdinSource = "<stdin>"

// Sources maps each contributing source of one input to the value it
// contributed. Keys are dependency task names, or StdinSource for a value
// supplied from outside the graph.
type Sources map[string]any

// Stdin returns the externally supplied value, if any.
func (s Sources) Stdin() (any, bool) {
	v, ok := s[StdinSource]
	return v, ok
}

// From returns the value contributed by the named dependency.
func (s Sources) From(task string) (any, bool) {
	v, ok := s[task]
	return v, ok
}

// Names returns the contributing source names in sorted order.
func (s Sources) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Values returns the contributed values ordered by source name.
func (s Sources) Values() []any {
	names := s.Names()
	values := make([]any, len(names))
	for i, name := range names {
		values[i] = s[name]
	}
	return values
}

// Only returns the single contributed value. ok is false when there are
// zero or several contributions.
func (s Sources) Only() (any, bool) {
	if len(s) != 1 {
		return nil, false
	}
	for _, v := range s {
		return v, true
	}
	return nil, false
}

// Inputs declares the named inputs a task accepts. The two groups are
// independent namespaces: every positional input is always delivered
// (possibly empty), a keyword input only when something contributed to it.
type Inputs struct {
	Positional []string
	Keyword    []string
}

// Names returns every declared input name, positional first.
func (in Inputs) Names() []string {
	names := make([]string, 0, len(in.Positional)+len(in.Keyword))
	names = append(names, in.Positional...)
	return append(names, in.Keyword...)
}

// Declares reports whether name is a declared input in either group.
func (in Inputs) Declares(name string) bool {
	return slices.Contains(in.Positional, name) || slices.Contains(in.Keyword, name)
}

// Args are the assembled inputs of one invocation.
type Args struct {
	// Positional holds one Sources per Inputs.Positional entry, in order.
	Positional []Sources
	// Keyword holds the keyword inputs that received a contribution.
	Keyword map[string]Sources

	names []string
}

// NewArgs returns Args shaped for in, with every positional slot empty.
func NewArgs(in Inputs) Args {
	a := Args{
		Positional: make([]Sources, len(in.Positional)),
		Keyword:    map[string]Sources{},
		names:      slices.Clone(in.Positional),
	}
	for i := range a.Positional {
		a.Positional[i] = Sources{}
	}
	return a
}

// Get returns the sources of a positional or keyword input by name.
func (a Args) Get(name string) Sources {
	if i := slices.Index(a.names, name); i >= 0 && i < len(a.Positional) {
		return a.Positional[i]
	}
	return a.Keyword[name]
}

// Has reports whether name received at least one contribution.
func (a Args) Has(name string) bool {
	return len(a.Get(name)) > 0
}

// PositionalNames returns the declared positional input names, in order.
func (a Args) PositionalNames() []string {
	return slices.Clone(a.names)
}
