package task

import (
	"context"
	"reflect"
	"runtime"
	"strings"
)

// Action is the callable behind a task. Its identity is interface
// equality, so the dynamic type must be comparable; pointer receivers are
// the usual choice.
type Action interface {
	Run(ctx context.Context, args Args) (Result, error)
}

// Named is implemented by actions that carry their own default task name.
type Named interface {
	Name() string
}

// ActionFunc adapts a strictly typed function. A func value is not
// comparable, so wrap it with Typed before registering.
type ActionFunc func(ctx context.Context, args Args) (Result, error)

// Typed wraps fn into a fresh action with its own identity.
func Typed(fn ActionFunc) Action {
	return &funcAction{typed: fn, name: funcName(fn)}
}

// Func wraps a loosely typed function whose return value goes through
// Normalize. Every call returns a new identity, even for the same fn.
func Func(fn func(ctx context.Context, args Args) (any, error)) Action {
	return &funcAction{loose: fn, name: funcName(fn)}
}

// Simple wraps a function that takes no inputs.
func Simple(fn func(ctx context.Context) error) Action {
	return &funcAction{
		loose: func(ctx context.Context, _ Args) (any, error) { return nil, fn(ctx) },
		name:  funcName(fn),
	}
}

type funcAction struct {
	typed ActionFunc
	loose func(ctx context.Context, args Args) (any, error)
	name  string
}

func (f *funcAction) Run(ctx context.Context, args Args) (Result, error) {
	if f.typed != nil {
		return f.typed(ctx, args)
	}
	v, err := f.loose(ctx, args)
	if err != nil {
		return Result{}, err
	}
	return Normalize(v)
}

func (f *funcAction) Name() string { return f.name }

// NameOf returns the default task name for an action: the function name
// for wrapped functions ("" when anonymous), Name() when it implements
// Named, otherwise its dynamic type name.
func NameOf(a Action) string {
	if f, ok := a.(*funcAction); ok {
		return f.name
	}
	if n, ok := a.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	t := reflect.TypeOf(a)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// Comparable reports whether a can be used as a lookup key.
func Comparable(a Action) bool {
	return a != nil && reflect.TypeOf(a).Comparable()
}

// funcName derives a short identifier from a function value: the last
// segment of its symbol name. Anonymous functions yield "".
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	segments := strings.Split(strings.TrimSuffix(name, "-fm"), ".")
	for _, seg := range segments[1:] {
		if isClosure(seg) {
			return ""
		}
	}
	return segments[len(segments)-1]
}

func isClosure(seg string) bool {
	digits := strings.TrimPrefix(seg, "func")
	if digits == seg || digits == "" {
		return false
	}
	return strings.Trim(digits, "0123456789") == ""
}
