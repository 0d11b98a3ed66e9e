// Package middleware provides decorators around host objects.
//
// A Middleware wraps a ports.Object; wrapping is sticky, so objects returned
// by a wrapped object (sub-handles, bodies, edges) are wrapped as well.
package middleware

import (
	"context"
	"io"

	"github.com/aretw0/cadbridge/pkg/ports"
)

// Middleware wraps a host object.
type Middleware func(ports.Object) ports.Object

// Chain composes middlewares; the first one is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next ports.Object) ports.Object {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Dialer returns a dialer whose application object is wrapped by mws.
func Dialer(d ports.Dialer, mws ...Middleware) ports.Dialer {
	if len(mws) == 0 {
		return d
	}
	mw := Chain(mws...)
	return ports.DialerFunc(func(ctx context.Context) (ports.Object, error) {
		obj, err := d.Dial(ctx)
		if err != nil {
			return nil, err
		}
		wrapped := mw(obj)
		if c, ok := obj.(io.Closer); ok {
			return closingObject{Object: wrapped, Closer: c}, nil
		}
		return wrapped, nil
	})
}

// closingObject keeps the Close method of an application object that was
// wrapped by middleware.
type closingObject struct {
	ports.Object
	io.Closer
}

// rewrap applies mw to any object (or slice of objects) in a host result.
func rewrap(v any, mw Middleware) any {
	switch r := v.(type) {
	case ports.Object:
		return mw(r)
	case []any:
		out := make([]any, len(r))
		for i, e := range r {
			out[i] = rewrap(e, mw)
		}
		return out
	}
	return v
}
