package domain

import (
	"context"
	"time"
)

// CallKind distinguishes method invocations from property reads.
type CallKind string

const (
	CallMethod   CallKind = "method"
	CallProperty CallKind = "property"
)

// CallEvent describes one dispatch to the host.
type CallEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Kind      CallKind      `json:"kind"`
	Name      string        `json:"name"`
	Args      []any         `json:"args,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// OperationEvent describes one adapter-level operation (e.g. "sketch.slot"),
// which may span several host calls.
type OperationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// Hooks defines callbacks for host-call observability.
// Any field may be nil.
type Hooks struct {
	OnCall          func(context.Context, *CallEvent)
	OnCallReturn    func(context.Context, *CallEvent)
	OnOperation     func(context.Context, *OperationEvent)
	OnOperationDone func(context.Context, *OperationEvent)
}

// Merge returns hooks that invoke h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnCall:          chainCall(h.OnCall, other.OnCall),
		OnCallReturn:    chainCall(h.OnCallReturn, other.OnCallReturn),
		OnOperation:     chainOp(h.OnOperation, other.OnOperation),
		OnOperationDone: chainOp(h.OnOperationDone, other.OnOperationDone),
	}
}

func chainCall(a, b func(context.Context, *CallEvent)) func(context.Context, *CallEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *CallEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainOp(a, b func(context.Context, *OperationEvent)) func(context.Context, *OperationEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *OperationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
