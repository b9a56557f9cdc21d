// Package validation checks task files and configuration before they are
// used.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tags cover single
// fields; the Validator covers checks across fields or files.
//
// # Struct Tag Validation
//
//	type Task struct {
//	    Name   string `yaml:"name" validate:"required,taskname"`
//	    Output string `yaml:"output" validate:"omitempty,oneof=text json"`
//	}
//	err := validation.Validate(task)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Merge("", validation.Validate(file))
//	v.Unique("tasks", names).Custom(!selfRef, "tasks[0].depends", "must not name the task itself")
//	err := v.Err()
package validation
