package registry

import (
	"fmt"

	"github.com/kbukum/butler/task"
)

// Task is the immutable record of one registered unit of work.
type Task struct {
	// Name is the unique identifier of the task.
	Name string
	// Action is invoked to run the task; it doubles as a lookup key.
	Action task.Action
	// Inputs lists the named inputs the action accepts.
	Inputs task.Inputs
	// Doc is free-form documentation shown by listing commands.
	Doc string
	// Location is where the task was defined.
	Location Location
	// Dir is the directory the task was defined in.
	Dir string

	id int
}

// ID returns the arena index of the task, stable for the registry's lifetime.
func (t *Task) ID() int { return t.id }

func (t *Task) String() string { return t.Name }

// Location points at a task definition.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
