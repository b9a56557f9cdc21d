package registry

import (
	"slices"

	"github.com/kbukum/butler/task"
)

// Option configures a single registration.
type Option func(*registration)

type registration struct {
	depends  []ref
	extends  []ref
	inputs   task.Inputs
	doc      string
	location *Location
	dir      string
}

// ref points at an already registered task, by action or by name.
type ref struct {
	action task.Action
	name   string
}

func (r ref) String() string {
	if r.action == nil {
		return r.name
	}
	if name := task.NameOf(r.action); name != "" {
		return name
	}
	return "<anonymous action>"
}

// DependsOn adds an edge from the new task to each action's task.
func DependsOn(actions ...task.Action) Option {
	return func(r *registration) {
		for _, a := range actions {
			r.depends = append(r.depends, ref{action: a})
		}
	}
}

// DependsOnNamed is DependsOn with tasks referenced by name.
func DependsOnNamed(names ...string) Option {
	return func(r *registration) {
		for _, n := range names {
			r.depends = append(r.depends, ref{name: n})
		}
	}
}

// Extends attaches each action's task as a post-hook of the new task: the
// hook gains the new task as a dependency, so it runs after it and sees
// its result. Hooks must already be registered.
func Extends(actions ...task.Action) Option {
	return func(r *registration) {
		for _, a := range actions {
			r.extends = append(r.extends, ref{action: a})
		}
	}
}

// ExtendsNamed is Extends with hooks referenced by name.
func ExtendsNamed(names ...string) Option {
	return func(r *registration) {
		for _, n := range names {
			r.extends = append(r.extends, ref{name: n})
		}
	}
}

// WithInputs declares the task's inputs.
func WithInputs(in task.Inputs) Option {
	return func(r *registration) {
		r.inputs = task.Inputs{
			Positional: slices.Clone(in.Positional),
			Keyword:    slices.Clone(in.Keyword),
		}
	}
}

// WithPositional appends positional inputs.
func WithPositional(names ...string) Option {
	return func(r *registration) { r.inputs.Positional = append(r.inputs.Positional, names...) }
}

// WithKeyword appends keyword inputs.
func WithKeyword(names ...string) Option {
	return func(r *registration) { r.inputs.Keyword = append(r.inputs.Keyword, names...) }
}

// WithDoc sets the task documentation.
func WithDoc(doc string) Option {
	return func(r *registration) { r.doc = doc }
}

// WithLocation overrides the definition location captured from the caller.
func WithLocation(file string, line int) Option {
	return func(r *registration) { r.location = &Location{File: file, Line: line} }
}

// WithDir sets the directory the task belongs to.
func WithDir(dir string) Option {
	return func(r *registration) { r.dir = dir }
}
