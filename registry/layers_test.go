package registry

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goerrors "github.com/kbukum/butler/errors"
)

func names(layers [][]*Task) [][]string {
	out := make([][]string, len(layers))
	for i, l := range layers {
		for _, t := range l {
			out[i] = append(out[i], t.Name)
		}
	}
	return out
}

func TestLayers_Chain(t *testing.T) {
	r := New()
	mustRegister(t, r, "C")
	mustRegister(t, r, "B", DependsOnNamed("C"))
	mustRegister(t, r, "A", DependsOnNamed("B"))

	layers, err := r.Layers("A")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"B"}, {"C"}}, names(layers))
}

func TestLayers_SharedDependencyPlacedDeepest(t *testing.T) {
	r := New()
	mustRegister(t, r, "C")
	mustRegister(t, r, "B", DependsOnNamed("C"))
	mustRegister(t, r, "A", DependsOnNamed("B", "C"))

	layers, err := r.Layers("A")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"B"}, {"C"}}, names(layers))
}

func TestLayers_TargetThatIsAlsoADependency(t *testing.T) {
	r := New()
	mustRegister(t, r, "B")
	mustRegister(t, r, "A", DependsOnNamed("B"))

	layers, err := r.Layers("A", "B", "A")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"B"}}, names(layers))
}

func TestLayers_EmptyAndSingleton(t *testing.T) {
	r := New()
	mustRegister(t, r, "solo")

	layers, err := r.Layers()
	require.NoError(t, err)
	assert.Empty(t, layers)

	layers, err = r.Layers("solo")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"solo"}}, names(layers))
}

func TestLayers_ExtensionRunsAfterExtendedTask(t *testing.T) {
	r := New()
	mustRegister(t, r, "notify")
	mustRegister(t, r, "compile", ExtendsNamed("notify"))

	layers, err := r.Layers("notify")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"notify"}, {"compile"}}, names(layers))
}

func TestLayers_UnknownTarget(t *testing.T) {
	r := New()
	_, err := r.Layers("ghost")
	assert.ErrorIs(t, err, goerrors.ErrNotFound)
}

func TestPlanTasks_MatchesPlan(t *testing.T) {
	r := New()
	mustRegister(t, r, "b")
	mustRegister(t, r, "a", DependsOnNamed("b"))

	byName, err := r.Plan("a")
	require.NoError(t, err)
	byTask, err := r.PlanTasks(mustLookup(t, r, "a"))
	require.NoError(t, err)
	assert.Equal(t, byName, byTask)

	_, err = r.PlanTasks(nil)
	assert.ErrorIs(t, err, goerrors.ErrNotFound)
}

// randomRegistry builds a random DAG where task i may depend on any j < i.
func randomRegistry(t *testing.T, rng *rand.Rand, n int) *Registry {
	r := New()
	for i := 0; i < n; i++ {
		var deps []string
		for j := 0; j < i; j++ {
			if rng.IntN(4) == 0 {
				deps = append(deps, fmt.Sprintf("t%d", j))
			}
		}
		mustRegister(t, r, fmt.Sprintf("t%d", i), DependsOnNamed(deps...))
	}
	return r
}

func TestLayers_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		r := randomRegistry(t, rng, 3+rng.IntN(20))
		all := r.All()

		var targets []string
		for _, tk := range all {
			if rng.IntN(3) == 0 {
				targets = append(targets, tk.Name)
			}
		}

		plan, err := r.Plan(targets...)
		require.NoError(t, err)

		layerOf := map[int]int{}
		for i, layer := range plan {
			for _, id := range layer {
				_, dup := layerOf[id]
				require.False(t, dup, "task placed twice")
				layerOf[id] = i
			}
		}

		// every target is scheduled, every scheduled task's dependencies
		// sit in strictly deeper layers
		for _, name := range targets {
			_, ok := layerOf[mustLookup(t, r, name).ID()]
			assert.True(t, ok, "target %s missing", name)
		}
		for id, li := range layerOf {
			for _, dep := range r.SuccessorIDs(id) {
				dl, ok := layerOf[dep]
				require.True(t, ok, "dependency of scheduled task not scheduled")
				assert.Greater(t, dl, li)
			}
		}

		// no member of a layer reaches another member of the same layer
		for _, layer := range plan {
			for _, id := range layer {
				reach := r.reachable(r.nodes[id].succ)
				for _, other := range layer {
					assert.False(t, reach[other], "layer members depend on each other")
				}
			}
		}
	}
}
