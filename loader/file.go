package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/butler/validation"
)

// Output formats of a shell task.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// DefaultShell runs task commands when a definition names none.
const DefaultShell = "sh"

// File is the schema of one task file.
type File struct {
	Include []string     `yaml:"include" validate:"dive,required"`
	Tasks   []Definition `yaml:"tasks" validate:"dive"`
}

// Definition declares one shell task.
type Definition struct {
	Name    string            `yaml:"name" validate:"required,taskname"`
	Doc     string            `yaml:"doc"`
	Depends []string          `yaml:"depends" validate:"dive,required"`
	Extends []string          `yaml:"extends" validate:"dive,required"`
	Inputs  []string          `yaml:"inputs" validate:"dive,required"`
	Keyword []string          `yaml:"keyword" validate:"dive,required"`
	Run     string            `yaml:"run" validate:"required"`
	Shell   string            `yaml:"shell"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
	Timeout string            `yaml:"timeout" validate:"duration"`
	Output  string            `yaml:"output" validate:"omitempty,oneof=text json"`

	// Line is where the definition starts in its file.
	Line int `yaml:"-"`
}

// TimeoutDuration returns the parsed timeout, zero when unset.
func (d *Definition) TimeoutDuration() time.Duration {
	t, _ := time.ParseDuration(d.Timeout)
	return t
}

// Parse decodes and validates a task file. Unknown keys are rejected.
// An empty document is a valid file without tasks.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i, line := range taskLines(data) {
		if i < len(f.Tasks) {
			f.Tasks[i].Line = line
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// taskLines returns the line of each entry of the top-level tasks list.
func taskLines(data []byte) []int {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "tasks" {
			continue
		}
		items := root.Content[i+1].Content
		lines := make([]int, len(items))
		for j, item := range items {
			lines[j] = item.Line
		}
		return lines
	}
	return nil
}

// Validate checks field constraints, that task names are unique within
// the file and that no task refers to itself.
func (f *File) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(f))

	names := make([]string, len(f.Tasks))
	for i, d := range f.Tasks {
		names[i] = d.Name
		field := fmt.Sprintf("tasks[%d]", i)
		v.Custom(!slices.Contains(d.Depends, d.Name), field+".depends", "must not name the task itself")
		v.Custom(!slices.Contains(d.Extends, d.Name), field+".extends", "must not name the task itself")
		v.Unique(field+".inputs", slices.Concat(d.Inputs, d.Keyword))
	}
	v.Unique("tasks", names)
	return v.Err()
}
