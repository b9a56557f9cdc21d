package inspect

import (
	"slices"
	"strings"

	"github.com/kbukum/butler/registry"
)

// Entry pairs a task with the names of related tasks.
type Entry struct {
	Name    string
	Related []string
}

// Description is the definition metadata of one task.
type Description struct {
	Name     string
	Location registry.Location
	Dir      string
	Doc      string
}

// Summary is one line of a target listing.
type Summary struct {
	Name  string
	Title string
}

// Depends returns the direct dependencies of each target, sorted by
// target name. No targets means every task.
func Depends(reg *registry.Registry, targets []string) ([]Entry, error) {
	return related(reg, targets, reg.Successors)
}

// Extends returns the tasks that directly extend each target, sorted by
// target name. No targets means every task.
func Extends(reg *registry.Registry, targets []string) ([]Entry, error) {
	return related(reg, targets, reg.Predecessors)
}

func related(reg *registry.Registry, targets []string, edges func(*registry.Task) []*registry.Task) ([]Entry, error) {
	tasks, err := resolve(reg, targets)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Entry{Name: t.Name, Related: names(edges(t))})
	}
	return out, nil
}

// Describe returns where name was defined and its documentation.
func Describe(reg *registry.Registry, name string) (Description, error) {
	t, err := reg.Lookup(name)
	if err != nil {
		return Description{}, err
	}
	return Description{Name: t.Name, Location: t.Location, Dir: t.Dir, Doc: t.Doc}, nil
}

// Graph returns the layers of targets by name, targets first. No targets
// means every task.
func Graph(reg *registry.Registry, targets []string) ([][]string, error) {
	if len(targets) == 0 {
		targets = names(reg.All())
	}
	layers, err := reg.Layers(targets...)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(layers))
	for i, layer := range layers {
		out[i] = make([]string, len(layer))
		for j, t := range layer {
			out[i][j] = t.Name
		}
	}
	return out, nil
}

// List returns every task sorted by name with the title of its doc.
func List(reg *registry.Registry) []Summary {
	tasks := reg.All()
	slices.SortFunc(tasks, byName)
	out := make([]Summary, len(tasks))
	for i, t := range tasks {
		out[i] = Summary{Name: t.Name, Title: Title(t.Doc)}
	}
	return out
}

// Title joins the first paragraph of doc onto one line.
func Title(doc string) string {
	var parts []string
	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

func resolve(reg *registry.Registry, targets []string) ([]*registry.Task, error) {
	if len(targets) == 0 {
		tasks := reg.All()
		slices.SortFunc(tasks, byName)
		return tasks, nil
	}
	sorted := slices.Clone(targets)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	tasks := make([]*registry.Task, 0, len(sorted))
	for _, name := range sorted {
		t, err := reg.Lookup(name)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func names(tasks []*registry.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	slices.Sort(out)
	return out
}

func byName(a, b *registry.Task) int {
	return strings.Compare(a.Name, b.Name)
}
