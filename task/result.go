package task

import (
	goerrors "github.com/kbukum/butler/errors"
)

// Result is the output of one task: the attributes it provides to its
// dependents and whether it changed anything.
type Result struct {
	Attrs   map[string]any
	Changed bool
}

// Changed returns a result carrying attrs that reports a change.
func Changed(attrs map[string]any) Result {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return Result{Attrs: attrs, Changed: true}
}

// Attrs is an alias of Changed for call sites that only care about the data.
func Attrs(attrs map[string]any) Result {
	return Changed(attrs)
}

// Flag returns an attribute-less result with the given changed bit.
func Flag(changed bool) Result {
	return Result{Attrs: map[string]any{}, Changed: changed}
}

// Unchanged returns an empty result that reports no change.
func Unchanged() Result {
	return Flag(false)
}

// Get returns the attribute stored under name.
func (r Result) Get(name string) (any, bool) {
	v, ok := r.Attrs[name]
	return v, ok
}

// Normalize converts a loosely typed task return value into a Result.
//
//   - Result or *Result: returned as is (a nil *Result counts as nil)
//   - map[string]any: Result{Attrs: m, Changed: true}
//   - bool: Result{Attrs: {}, Changed: b}
//   - nil: Result{Attrs: {}, Changed: true}
//
// Any other shape fails with INVALID_RETURN_TYPE.
func Normalize(v any) (Result, error) {
	switch r := v.(type) {
	case nil:
		return Changed(nil), nil
	case Result:
		if r.Attrs == nil {
			r.Attrs = map[string]any{}
		}
		return r, nil
	case *Result:
		if r == nil {
			return Changed(nil), nil
		}
		return Normalize(*r)
	case map[string]any:
		return Changed(r), nil
	case bool:
		return Flag(r), nil
	default:
		return Result{}, goerrors.InvalidReturnType(v)
	}
}
