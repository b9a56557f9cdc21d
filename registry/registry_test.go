package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/task"
)

func noop() task.Action {
	return task.Func(func(context.Context, task.Args) (any, error) { return nil, nil })
}

func generate(context.Context, task.Args) (any, error) { return nil, nil }

type snapshot struct {
	tasks []string
	edges int
}

func snap(r *Registry) snapshot {
	s := snapshot{edges: r.EdgeCount()}
	for _, t := range r.All() {
		s.tasks = append(s.tasks, t.Name)
	}
	return s
}

func mustRegister(t *testing.T, r *Registry, name string, opts ...Option) task.Action {
	t.Helper()
	a, err := r.Register(name, noop(), opts...)
	require.NoError(t, err)
	return a
}

func TestRegister_LookupByNameAndAction(t *testing.T) {
	r := New()
	a := mustRegister(t, r, "a")

	byName, err := r.Lookup("a")
	require.NoError(t, err)
	byAction, err := r.LookupAction(a)
	require.NoError(t, err)

	assert.Same(t, byName, byAction)
	assert.Equal(t, "a", byName.Name)
	assert.Equal(t, a, byName.Action)
}

func TestRegister_CapturesCallerLocation(t *testing.T) {
	r := New()
	mustRegister(t, r, "a")
	tk, err := r.Lookup("a")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(tk.Location.File, "registry_test.go"), tk.Location.File)
	assert.NotEmpty(t, tk.Dir)

	_, err = r.Register("b", noop(), WithLocation("build.yml", 7), WithDir("/src"), WithDoc("Bee."))
	require.NoError(t, err)
	b, _ := r.Lookup("b")
	assert.Equal(t, "build.yml:7", b.Location.String())
	assert.Equal(t, "/src", b.Dir)
	assert.Equal(t, "Bee.", b.Doc)
}

func TestRegister_DuplicateNameLeavesGraphUnchanged(t *testing.T) {
	r := New()
	a := mustRegister(t, r, "a")
	mustRegister(t, r, "b", DependsOn(a))
	before := snap(r)

	_, err := r.Register("a", noop(), DependsOnNamed("b"))
	assert.ErrorIs(t, err, goerrors.ErrDuplicateName)
	assert.Equal(t, before, snap(r))
}

func TestRegister_DuplicateActionLeavesGraphUnchanged(t *testing.T) {
	r := New()
	a := mustRegister(t, r, "a")
	before := snap(r)

	_, err := r.Register("again", a)
	assert.ErrorIs(t, err, goerrors.ErrDuplicateAction)
	assert.Equal(t, before, snap(r))
}

func TestRegister_UnknownDependencyIsAtomic(t *testing.T) {
	r := New()
	a := mustRegister(t, r, "a")
	before := snap(r)

	_, err := r.Register("b", noop(), DependsOn(a, noop()))
	assert.ErrorIs(t, err, goerrors.ErrUnknownDependency)
	assert.Equal(t, before, snap(r))
	assert.Empty(t, r.Predecessors(mustLookup(t, r, "a")))

	_, err = r.Register("c", noop(), DependsOn(a), ExtendsNamed("missing"))
	assert.ErrorIs(t, err, goerrors.ErrUnknownDependency)
	assert.Equal(t, before, snap(r))

	// the failed names are still free
	mustRegister(t, r, "b")
	mustRegister(t, r, "c")
}

func TestRegister_CycleDetectedIsAtomic(t *testing.T) {
	r := New()
	c := mustRegister(t, r, "c")
	b := mustRegister(t, r, "b", DependsOn(c))
	before := snap(r)

	// x -> b -> c and c -> x closes a cycle
	_, err := r.Register("x", noop(), DependsOn(b), Extends(c))
	assert.ErrorIs(t, err, goerrors.ErrCycleDetected)
	assert.Equal(t, before, snap(r))

	// depending on and extending the same task is a two-node cycle
	_, err = r.Register("y", noop(), DependsOn(c), Extends(c))
	assert.ErrorIs(t, err, goerrors.ErrCycleDetected)
	assert.Equal(t, before, snap(r))

	// extending an unrelated branch is fine
	_, err = r.Register("z", noop(), DependsOn(c), Extends(b))
	assert.NoError(t, err)
}

func TestRegister_ExtendsRecordsReverseEdge(t *testing.T) {
	r := New()
	hook := mustRegister(t, r, "hook")
	mustRegister(t, r, "a", Extends(hook))

	at, ht := mustLookup(t, r, "a"), mustLookup(t, r, "hook")
	assert.Equal(t, []*Task{ht}, r.Predecessors(at))
	assert.Equal(t, []*Task{at}, r.Successors(ht))
	assert.Empty(t, r.Successors(at))
}

func TestRegister_DuplicateEdgesCollapse(t *testing.T) {
	r := New()
	a := mustRegister(t, r, "a")
	mustRegister(t, r, "b", DependsOn(a, a), DependsOnNamed("a"))
	assert.Equal(t, 1, r.EdgeCount())
}

func TestRegister_InvalidActions(t *testing.T) {
	r := New()

	_, err := r.Register("nil", nil)
	assert.ErrorIs(t, err, goerrors.ErrInvalidAction)

	_, err = r.Register("", noop())
	assert.True(t, goerrors.HasCode(err, goerrors.ErrCodeInvalidInput))

	assert.Equal(t, 0, r.Len())
}

func TestDefine_UsesActionName(t *testing.T) {
	r := New()
	_, err := r.Define(task.Func(generate))
	require.NoError(t, err)
	_, err = r.Lookup("generate")
	assert.NoError(t, err)

	_, err = r.Define(noop())
	assert.ErrorIs(t, err, goerrors.ErrInvalidAction)
}

func TestLookup_NotFound(t *testing.T) {
	r := New()
	_, err := r.Lookup("nope")
	assert.ErrorIs(t, err, goerrors.ErrNotFound)
	_, err = r.LookupAction(noop())
	assert.ErrorIs(t, err, goerrors.ErrNotFound)
}

func TestAll_InsertionOrder(t *testing.T) {
	r := New()
	for _, n := range []string{"z", "a", "m"} {
		mustRegister(t, r, n)
	}
	var names []string
	for _, tk := range r.All() {
		names = append(names, tk.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestFreeze_RejectsRegistration(t *testing.T) {
	r := New()
	release := r.Freeze()
	assert.True(t, r.Frozen())

	_, err := r.Register("a", noop())
	assert.ErrorIs(t, err, goerrors.ErrGraphMutation)

	release()
	release()
	assert.False(t, r.Frozen())
	mustRegister(t, r, "a")
}

func TestSuccessors_ForeignTask(t *testing.T) {
	r := New()
	mustRegister(t, r, "a")
	other := New()
	mustRegister(t, other, "a")

	assert.Nil(t, r.Successors(mustLookup(t, other, "a")))
	assert.Nil(t, r.Predecessors(nil))
}

func mustLookup(t *testing.T, r *Registry, name string) *Task {
	t.Helper()
	tk, err := r.Lookup(name)
	require.NoError(t, err)
	return tk
}
