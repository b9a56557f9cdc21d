package registry

import (
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/task"
)

type node struct {
	task *Task
	succ []int // direct dependencies
	pred []int // direct dependents (extensions)
}

// Registry is the task store and dependency graph.
type Registry struct {
	mu       sync.RWMutex
	nodes    []node
	byName   map[string]int
	byAction map[task.Action]int
	edges    int
	frozen   int
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byName:   make(map[string]int),
		byAction: make(map[task.Action]int),
	}
}

// Register adds a task named name backed by action and returns action.
//
// Dependencies and extensions must already be registered. The call fails
// with DUPLICATE_NAME, DUPLICATE_ACTION, UNKNOWN_DEPENDENCY,
// CYCLE_DETECTED, INVALID_ACTION or GRAPH_MUTATION_DURING_RUN and, when it
// does, nothing of it is retained.
func (r *Registry) Register(name string, action task.Action, opts ...Option) (task.Action, error) {
	return r.register(2, name, action, opts)
}

// Define registers action under its own name (see task.NameOf).
func (r *Registry) Define(action task.Action, opts ...Option) (task.Action, error) {
	var name string
	if action != nil && task.Comparable(action) {
		name = task.NameOf(action)
	}
	if name == "" {
		return nil, goerrors.InvalidAction("", "cannot derive a name, use Register")
	}
	return r.register(2, name, action, opts)
}

func (r *Registry) register(depth int, name string, action task.Action, opts []Option) (task.Action, error) {
	reg := &registration{}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.location == nil {
		reg.location = callerLocation(depth + 1)
	}
	if reg.dir == "" && reg.location.File != "" {
		reg.dir = filepath.Dir(reg.location.File)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen > 0 {
		return nil, goerrors.GraphMutation(name)
	}
	if name == "" {
		return nil, goerrors.InvalidInput("name", "task name is required")
	}
	if action == nil {
		return nil, goerrors.InvalidAction(name, "action is nil")
	}
	if !task.Comparable(action) {
		return nil, goerrors.InvalidAction(name, "action type is not comparable")
	}
	if _, ok := r.byName[name]; ok {
		return nil, goerrors.DuplicateName(name)
	}
	if idx, ok := r.byAction[action]; ok {
		return nil, goerrors.DuplicateAction(name, r.nodes[idx].task.Name)
	}

	deps, err := r.resolveAll(name, "dependency", reg.depends)
	if err != nil {
		return nil, err
	}
	exts, err := r.resolveAll(name, "hook", reg.extends)
	if err != nil {
		return nil, err
	}

	// The new node only gains out-edges to deps and in-edges from exts, so
	// a cycle needs a path dep ->* ext in the existing graph.
	reach := r.reachable(deps)
	for _, e := range exts {
		if reach[e] {
			return nil, goerrors.CycleDetected(name, r.nodes[e].task.Name, name)
		}
	}

	id := len(r.nodes)
	t := &Task{
		Name:     name,
		Action:   action,
		Inputs:   reg.inputs,
		Doc:      reg.doc,
		Location: *reg.location,
		Dir:      reg.dir,
		id:       id,
	}
	r.nodes = append(r.nodes, node{task: t})
	r.byName[name] = id
	r.byAction[action] = id
	for _, d := range deps {
		r.addEdge(id, d)
	}
	for _, e := range exts {
		r.addEdge(e, id)
	}
	return action, nil
}

func (r *Registry) addEdge(from, to int) {
	r.nodes[from].succ = append(r.nodes[from].succ, to)
	r.nodes[to].pred = append(r.nodes[to].pred, from)
	r.edges++
}

// resolveAll maps refs to arena indices, dropping duplicates.
func (r *Registry) resolveAll(name, kind string, refs []ref) ([]int, error) {
	out := make([]int, 0, len(refs))
	for _, rf := range refs {
		idx, ok := r.resolve(rf)
		if !ok {
			return nil, goerrors.UnknownDependency(name, kind, rf.String())
		}
		if !slices.Contains(out, idx) {
			out = append(out, idx)
		}
	}
	return out, nil
}

func (r *Registry) resolve(rf ref) (int, bool) {
	if rf.action != nil {
		if !task.Comparable(rf.action) {
			return 0, false
		}
		idx, ok := r.byAction[rf.action]
		return idx, ok
	}
	idx, ok := r.byName[rf.name]
	return idx, ok
}

// reachable returns every index reachable from roots, roots included.
func (r *Registry) reachable(roots []int) map[int]bool {
	seen := make(map[int]bool, len(roots))
	stack := slices.Clone(roots)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, r.nodes[n].succ...)
	}
	return seen
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byName[name]
	if !ok {
		return nil, notFound(name)
	}
	return r.nodes[idx].task, nil
}

// LookupAction returns the task backed by action.
func (r *Registry) LookupAction(action task.Action) (*Task, error) {
	if !task.Comparable(action) {
		return nil, goerrors.NotFound("task", "<invalid action>")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byAction[action]
	if !ok {
		return nil, goerrors.NotFound("task", task.NameOf(action))
	}
	return r.nodes[idx].task, nil
}

// Successors returns the direct dependencies of t in registration order.
func (r *Registry) Successors(t *Task) []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.owns(t) {
		return nil
	}
	return r.tasks(r.nodes[t.id].succ)
}

// Predecessors returns the direct dependents of t (the tasks extending it
// or depending on it) in registration order.
func (r *Registry) Predecessors(t *Task) []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.owns(t) {
		return nil
	}
	return r.tasks(r.nodes[t.id].pred)
}

// All returns every task in insertion order.
func (r *Registry) All() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Task, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = n.task
	}
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (r *Registry) EdgeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.edges
}

// Freeze rejects registrations until the returned release func is called.
// Freezes nest; release is idempotent.
func (r *Registry) Freeze() (release func()) {
	r.mu.Lock()
	r.frozen++
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.frozen--
			r.mu.Unlock()
		})
	}
}

// Frozen reports whether a run currently holds the graph.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen > 0
}

func (r *Registry) owns(t *Task) bool {
	return t != nil && t.id >= 0 && t.id < len(r.nodes) && r.nodes[t.id].task == t
}

func (r *Registry) tasks(idx []int) []*Task {
	out := make([]*Task, len(idx))
	for i, n := range idx {
		out[i] = r.nodes[n].task
	}
	return out
}

func callerLocation(skip int) *Location {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return &Location{}
	}
	return &Location{File: file, Line: line}
}

func notFound(name string) error {
	return goerrors.NotFound("task", name)
}
