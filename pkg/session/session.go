package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held if the holder dies.
const DefaultLockTTL = 30 * time.Second

// Session is a live connection to the host and its current document.
type Session struct {
	name     string
	app      ports.Object
	model    ports.Object
	kind     domain.DocumentType
	partOnly bool

	mu     sync.Mutex // serializes host access
	state  sync.Mutex // guards model, kind, closed
	closed bool

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.Hooks
}

// Option configures a Session.
type Option func(*Session)

// WithName sets the host instance name used for logs and lock keys.
func WithName(name string) Option {
	return func(s *Session) {
		s.name = name
	}
}

// WithLogger configures a logger for session events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocker enables cross-process serialization.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Session) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithHooks registers operation hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithPartOnly controls whether Connect rejects documents that are not parts (default true).
func WithPartOnly(partOnly bool) Option {
	return func(s *Session) {
		s.partOnly = partOnly
	}
}

func newSession(opts []Option) *Session {
	s := &Session{
		name:     "default",
		partOnly: true,
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect attaches to the host and validates its active document.
// It fails with domain.ErrConnection when the host cannot be reached,
// domain.ErrNoActiveDocument when nothing is open, and
// domain.ErrWrongDocumentType when the open document is not a part.
// There is no retry.
func Connect(ctx context.Context, dialer ports.Dialer, opts ...Option) (*Session, error) {
	s, err := ConnectApp(ctx, dialer, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ConnectApp attaches to the host without requiring an open document.
func ConnectApp(ctx context.Context, dialer ports.Dialer, opts ...Option) (*Session, error) {
	s := newSession(opts)
	if dialer == nil {
		return nil, fmt.Errorf("%w: no dialer configured", domain.ErrConnection)
	}
	app, err := dialer.Dial(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrConnection) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	if app == nil {
		return nil, fmt.Errorf("%w: dialer returned no application", domain.ErrConnection)
	}
	s.app = app
	s.logger = s.logger.With("host", s.name)
	s.logger.Debug("Connected to host")
	return s, nil
}

// Refresh re-reads the host's active document and validates it.
// Call it after opening, creating or closing documents.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	v, err := s.app.Get(ctx, "ActiveDoc")
	if err != nil {
		return fmt.Errorf("%w: reading active document: %v", domain.ErrConnection, err)
	}
	model, ok := ports.AsObject(v)
	if !ok {
		s.setModel(nil, domain.DocumentUnknown)
		return domain.ErrNoActiveDocument
	}
	kv, err := model.Get(ctx, "GetType")
	if err != nil {
		s.setModel(nil, domain.DocumentUnknown)
		return fmt.Errorf("reading document type: %w", err)
	}
	n, err := ports.AsInt32(kv)
	if err != nil {
		s.setModel(nil, domain.DocumentUnknown)
		return fmt.Errorf("reading document type: %w", err)
	}
	kind := domain.DocumentType(n)
	s.setModel(model, kind)

	if s.partOnly && kind != domain.DocumentPart {
		return &domain.WrongDocumentTypeError{Want: domain.DocumentPart, Got: kind}
	}
	s.logger.Debug("Active document", "type", kind.String())
	return nil
}

func (s *Session) setModel(model ports.Object, kind domain.DocumentType) {
	s.state.Lock()
	defer s.state.Unlock()
	s.model = model
	s.kind = kind
}

func (s *Session) check() error {
	if s == nil || s.app == nil {
		return domain.ErrNotConnected
	}
	s.state.Lock()
	defer s.state.Unlock()
	if s.closed {
		return domain.ErrNotConnected
	}
	return nil
}

// Name returns the host instance name.
func (s *Session) Name() string {
	return s.name
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	if s == nil {
		return logging.NewNop()
	}
	return s.logger
}

// App returns the application handle.
func (s *Session) App() (ports.Object, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.app, nil
}

// Model returns the handle of the document being modelled.
func (s *Session) Model() (ports.Object, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.state.Lock()
	defer s.state.Unlock()
	if s.model == nil {
		return nil, domain.ErrNoActiveDocument
	}
	return s.model, nil
}

// Part returns the document handle, failing unless it is a part.
func (s *Session) Part() (ports.Object, error) {
	model, err := s.Model()
	if err != nil {
		return nil, err
	}
	if kind := s.DocumentType(); kind != domain.DocumentPart {
		return nil, &domain.WrongDocumentTypeError{Want: domain.DocumentPart, Got: kind}
	}
	return model, nil
}

// DocumentType returns the kind of the current document.
func (s *Session) DocumentType() domain.DocumentType {
	if s == nil {
		return domain.DocumentUnknown
	}
	s.state.Lock()
	defer s.state.Unlock()
	return s.kind
}

// SketchManager returns the sketch context of the current part.
func (s *Session) SketchManager(ctx context.Context) (ports.Object, error) {
	return s.manager(ctx, "SketchManager")
}

// FeatureManager returns the feature context of the current part.
func (s *Session) FeatureManager(ctx context.Context) (ports.Object, error) {
	return s.manager(ctx, "FeatureManager")
}

// SelectionManager returns the selection context of the current document.
func (s *Session) SelectionManager(ctx context.Context) (ports.Object, error) {
	return s.manager(ctx, "SelectionManager")
}

// Extension returns the extension context of the current document.
func (s *Session) Extension(ctx context.Context) (ports.Object, error) {
	return s.manager(ctx, "Extension")
}

func (s *Session) manager(ctx context.Context, property string) (ports.Object, error) {
	model, err := s.Model()
	if err != nil {
		return nil, err
	}
	v, err := model.Get(ctx, property)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", property, err)
	}
	obj, ok := ports.AsObject(v)
	if !ok {
		return nil, domain.NewHostError(property, "host returned no object")
	}
	return obj, nil
}

// Close marks the session unusable and releases the application handle.
// It waits for an operation in flight to finish, so it must not be called
// from inside Do. The host process itself is left running.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Lock()
	defer s.state.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.model = nil
	if c, ok := s.app.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Warn("Failed to release host application", "err", err)
		}
	}
}

type heldKey struct{}

// Do runs fn while holding exclusive access to the host connection.
// Nested calls from within fn reuse the held access.
func (s *Session) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	if err := s.check(); err != nil {
		return err
	}
	if held, _ := ctx.Value(heldKey{}).(*Session); held == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, "host:"+s.name, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire host lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release host lock (will expire via TTL)",
					"operation", operation,
					"err", err,
				)
			}
		}()
	}

	ev := &domain.OperationEvent{Timestamp: time.Now(), Operation: operation}
	if s.hooks.OnOperation != nil {
		s.hooks.OnOperation(ctx, ev)
	}
	s.logger.Debug("Operation", "op", operation)

	err := fn(context.WithValue(ctx, heldKey{}, s))

	done := *ev
	done.Duration = time.Since(ev.Timestamp)
	done.Err = err
	if s.hooks.OnOperationDone != nil {
		s.hooks.OnOperationDone(ctx, &done)
	}
	if err != nil {
		s.logger.Warn("Operation failed", "op", operation, "err", err)
	}
	return err
}
