package ports

import (
	"context"
	"fmt"
)

// Object is a handle to a host object.
// Results may be scalars (bool, int32, float64, string), nested Objects,
// slices of values, or nil when the host returned nothing.
type Object interface {
	// Call invokes a named method with positional arguments.
	Call(ctx context.Context, method string, args ...any) (any, error)

	// Get reads a named property.
	Get(ctx context.Context, property string) (any, error)
}

// Dialer attaches to a running host application.
type Dialer interface {
	// Dial returns the application object. Implementations must not start
	// the host; an unreachable host is an error.
	Dial(ctx context.Context) (Object, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Object, error)

// Dial calls f(ctx).
func (f DialerFunc) Dial(ctx context.Context) (Object, error) {
	return f(ctx)
}

// Out is a by-reference integer argument the host fills in (error and
// warning codes). Adapters that cannot pass by reference leave it untouched.
type Out struct {
	Value int32
}

// Null is passed where the host expects an object argument but none is supplied.
var Null = null{}

type null struct{}

func (null) String() string { return "<null>" }

// AsObject returns v as an Object when the host returned one.
func AsObject(v any) (Object, bool) {
	if v == nil {
		return nil, false
	}
	o, ok := v.(Object)
	return o, ok && o != nil
}

// AsBool coerces a host result to bool. Numeric results are true when non-zero.
func AsBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int32:
		return b != 0
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	}
	return false
}

// AsInt32 coerces a numeric host result to int32.
func AsInt32(v any) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case int:
		return int32(n), nil
	case int16:
		return int32(n), nil
	case int64:
		return int32(n), nil
	case uint8:
		return int32(n), nil
	case float64:
		return int32(n), nil
	}
	return 0, fmt.Errorf("unexpected host value %T, want integer", v)
}

// AsString coerces a host result to string.
func AsString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// AsObjects returns the Objects contained in a host array result.
// Non-object elements are skipped.
func AsObjects(v any) []Object {
	switch arr := v.(type) {
	case []Object:
		return arr
	case []any:
		out := make([]Object, 0, len(arr))
		for _, e := range arr {
			if o, ok := AsObject(e); ok {
				out = append(out, o)
			}
		}
		return out
	}
	if o, ok := AsObject(v); ok {
		return []Object{o}
	}
	return nil
}
