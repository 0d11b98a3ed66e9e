package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the host circuit breaker.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string

	// MaxRequests is the number of probe calls allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive transport failures that opens the circuit.
	FailureThreshold uint32

	Logger *slog.Logger
}

// DefaultBreakerConfig returns the settings used by the CLI.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "host",
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 3,
	}
}

type breakered struct {
	next ports.Object
	cb   *gobreaker.CircuitBreaker[any]
	self Middleware
}

// Breaker stops dispatching to a host whose transport keeps failing.
// Host-reported failures (nil or false results) are not transport failures
// and never trip the breaker. Calls are not retried.
func Breaker(cfg BreakerConfig) Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cfg.Logger.Warn("host circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	var mw Middleware
	mw = func(next ports.Object) ports.Object {
		if _, ok := next.(*breakered); ok {
			return next
		}
		return &breakered{next: next, cb: cb, self: mw}
	}
	return mw
}

func (b *breakered) Call(ctx context.Context, method string, args ...any) (any, error) {
	return b.execute(func() (any, error) {
		return b.next.Call(ctx, method, args...)
	})
}

func (b *breakered) Get(ctx context.Context, property string) (any, error) {
	return b.execute(func() (any, error) {
		return b.next.Get(ctx, property)
	})
}

func (b *breakered) execute(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, domain.ErrCircuitOpen
	}
	return rewrap(v, b.self), err
}
