package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/butler/errors"
)

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(true, "field", "should pass")
	if v.HasErrors() {
		t.Error("expected no error for true condition")
	}

	v2 := New()
	v2.Custom(false, "field", "custom error")
	if !v2.HasErrors() {
		t.Error("expected error for false condition")
	}
	if v2.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	if appErr := New().Validate(); appErr != nil {
		t.Error("expected nil for valid input")
	}
	if err := New().Err(); err != nil {
		t.Errorf("expected nil error interface, got %v", err)
	}

	v := New()
	v.Custom(false, "name", "is required")
	v.Custom(false, "run", "is required")
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if !errors.HasCode(appErr, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if appErr.Details == nil {
		t.Fatal("expected details in error")
	}
	if !strings.Contains(appErr.Message, "name: is required") || !strings.Contains(appErr.Message, "run: is required") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Custom(true, "name", "unused").Unique("tasks", []string{"a", "b"})
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestValidatorUnique(t *testing.T) {
	v := New().Unique("tasks", []string{"build", "test"})
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}

	v2 := New().Unique("tasks", []string{"build", "test", "build"})
	if len(v2.Errors()) != 1 {
		t.Fatalf("expected one error, got %v", v2.Errors())
	}
	if !strings.Contains(v2.Errors()[0].Message, "build") {
		t.Errorf("expected duplicate name in message, got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorMerge(t *testing.T) {
	type def struct {
		Name string `yaml:"name" validate:"required"`
	}

	v := New()
	v.Merge("tasks[1]", Validate(def{}))
	v.Merge("include", errors.Internal(nil))
	v.Merge("ignored", nil)

	got := v.Errors()
	if len(got) != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
	if got[0].Field != "tasks[1].name" {
		t.Errorf("expected prefixed field, got %q", got[0].Field)
	}
	if got[1].Field != "include" {
		t.Errorf("expected plain error under prefix, got %q", got[1].Field)
	}
	if v.Err() == nil {
		t.Error("expected Err to return an error")
	}
}

func TestValidTaskName(t *testing.T) {
	for _, ok := range []string{"build", "b", "pkg.build", "go-test_1"} {
		if !ValidTaskName(ok) {
			t.Errorf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", " ", "has space", ".hidden", "trailing.", "tab\tname"} {
		if ValidTaskName(bad) {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}

type taskDef struct {
	Name    string            `yaml:"name" validate:"required,taskname"`
	Run     string            `yaml:"run" validate:"required"`
	Output  string            `yaml:"output" validate:"omitempty,oneof=text json"`
	Timeout string            `yaml:"timeout" validate:"duration"`
	Env     map[string]string `yaml:"env"`
}

type taskFile struct {
	Include []string  `yaml:"include" validate:"dive,required"`
	Tasks   []taskDef `yaml:"tasks" validate:"dive"`
}

func TestStructValidateValid(t *testing.T) {
	f := taskFile{Tasks: []taskDef{{Name: "build", Run: "go build ./...", Output: "json", Timeout: "1m"}}}
	if err := Validate(f); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	f := taskFile{
		Include: []string{""},
		Tasks:   []taskDef{{Name: "ok", Run: "true"}, {Name: "bad name", Output: "xml", Timeout: "later"}},
	}
	err := Validate(f)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	for _, want := range []string{"include[0]", "tasks[1].name", "tasks[1].run", "tasks[1].output", "tasks[1].timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %q", want, err.Error())
		}
	}
	if strings.Contains(err.Error(), "tasks[0]") {
		t.Errorf("valid task reported: %q", err.Error())
	}
}

func TestStructValidateRange(t *testing.T) {
	type telemetry struct {
		SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
		Jobs       int     `mapstructure:"jobs" validate:"gte=0"`
	}

	if err := Validate(telemetry{SampleRate: 0.5}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	err := Validate(telemetry{SampleRate: 2, Jobs: -1})
	if err == nil {
		t.Fatal("expected range errors")
	}
	if !strings.Contains(err.Error(), "sample_rate") || !strings.Contains(err.Error(), "jobs") {
		t.Errorf("expected mapstructure names, got %q", err.Error())
	}
}
