package middleware

import (
	"context"
	"time"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
)

type instrumented struct {
	next  ports.Object
	hooks domain.Hooks
	self  Middleware
}

// Instrument emits hooks.OnCall and hooks.OnCallReturn around every host call.
func Instrument(hooks domain.Hooks) Middleware {
	var mw Middleware
	mw = func(next ports.Object) ports.Object {
		if _, ok := next.(*instrumented); ok {
			return next
		}
		return &instrumented{next: next, hooks: hooks, self: mw}
	}
	return mw
}

func (m *instrumented) Call(ctx context.Context, method string, args ...any) (any, error) {
	ev := &domain.CallEvent{Timestamp: time.Now(), Kind: domain.CallMethod, Name: method, Args: args}
	if m.hooks.OnCall != nil {
		m.hooks.OnCall(ctx, ev)
	}
	v, err := m.next.Call(ctx, method, args...)
	m.done(ctx, ev, err)
	return rewrap(v, m.self), err
}

func (m *instrumented) Get(ctx context.Context, property string) (any, error) {
	ev := &domain.CallEvent{Timestamp: time.Now(), Kind: domain.CallProperty, Name: property}
	if m.hooks.OnCall != nil {
		m.hooks.OnCall(ctx, ev)
	}
	v, err := m.next.Get(ctx, property)
	m.done(ctx, ev, err)
	return rewrap(v, m.self), err
}

func (m *instrumented) done(ctx context.Context, ev *domain.CallEvent, err error) {
	if m.hooks.OnCallReturn == nil {
		return
	}
	ret := *ev
	ret.Duration = time.Since(ev.Timestamp)
	ret.Err = err
	m.hooks.OnCallReturn(ctx, &ret)
}
