package registry

import (
	"maps"
	"slices"
)

// Plan sorts the sub graph reachable from targets into layers of arena
// indices. Layer 0 holds the targets, each following layer is strictly
// deeper, and no member of a layer depends on another member of the same
// layer. Execute the layers in reverse for a bottom-up schedule.
//
// A task reachable at several depths is placed in the deepest layer it
// appears in, which guarantees every dependency runs in an earlier pass.
func (r *Registry) Plan(targets ...string) ([][]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roots := make(map[int]struct{}, len(targets))
	for _, name := range targets {
		idx, ok := r.byName[name]
		if !ok {
			return nil, notFound(name)
		}
		roots[idx] = struct{}{}
	}
	return r.indexLayers(roots), nil
}

// PlanTasks is Plan for tasks already resolved from this registry.
func (r *Registry) PlanTasks(targets ...*Task) ([][]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roots := make(map[int]struct{}, len(targets))
	for _, t := range targets {
		if !r.owns(t) {
			name := "<nil>"
			if t != nil {
				name = t.Name
			}
			return nil, notFound(name)
		}
		roots[t.id] = struct{}{}
	}
	return r.indexLayers(roots), nil
}

// Layers is Plan resolved to tasks, for display.
func (r *Registry) Layers(targets ...string) ([][]*Task, error) {
	plan, err := r.Plan(targets...)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([][]*Task, len(plan))
	for i, layer := range plan {
		out[i] = r.tasks(layer)
	}
	return out, nil
}

// Task returns the task stored at arena index id.
func (r *Registry) Task(id int) *Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.nodes) {
		return nil
	}
	return r.nodes[id].task
}

// SuccessorIDs returns the arena indices of id's direct dependencies.
func (r *Registry) SuccessorIDs(id int) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.nodes) {
		return nil
	}
	return slices.Clone(r.nodes[id].succ)
}

func (r *Registry) indexLayers(targets map[int]struct{}) [][]int {
	stack := []map[int]struct{}{targets}
	for len(stack[len(stack)-1]) > 0 {
		frontier := stack[len(stack)-1]
		next := make(map[int]struct{})
		for parent := range frontier {
			for _, child := range r.nodes[parent].succ {
				next[child] = struct{}{}
			}
		}
		for _, layer := range stack {
			for child := range next {
				delete(layer, child)
			}
		}
		stack = append(stack, next)
	}

	layers := make([][]int, 0, len(stack)-1)
	for _, layer := range stack[:len(stack)-1] {
		if len(layer) == 0 {
			continue
		}
		layers = append(layers, slices.Sorted(maps.Keys(layer)))
	}
	return layers
}
