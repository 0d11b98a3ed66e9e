package cadbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/aretw0/cadbridge/pkg/document"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/feature"
	"github.com/aretw0/cadbridge/pkg/middleware"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/aretw0/cadbridge/pkg/selection"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/aretw0/cadbridge/pkg/sketch"
)

// Automation is the high-level entry point. It owns one session with the
// host and exposes the sketch, feature, selection and document adapters.
type Automation struct {
	session   *session.Session
	sketch    *sketch.Adapter
	feature   *feature.Adapter
	selection *selection.Adapter
	documents *document.Manager

	logger          *slog.Logger
	hooks           domain.Hooks
	locker          ports.DistributedLocker
	lockTTL         time.Duration
	templates       map[domain.DocumentType]string
	breaker         *middleware.BreakerConfig
	middlewares     []middleware.Middleware
	requireDocument bool
	name            string
}

// Option configures an Automation.
type Option func(*Automation)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Automation) {
		a.logger = logger
	}
}

// WithHooks registers observability hooks. Repeated calls merge.
func WithHooks(hooks domain.Hooks) Option {
	return func(a *Automation) {
		a.hooks = a.hooks.Merge(hooks)
	}
}

// WithLocker serializes operations across processes that share one host.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(a *Automation) {
		a.locker = locker
		a.lockTTL = ttl
	}
}

// WithTemplates overrides document templates per kind.
func WithTemplates(templates map[domain.DocumentType]string) Option {
	return func(a *Automation) {
		a.templates = templates
	}
}

// WithBreaker stops calling a host that keeps failing at the transport level.
func WithBreaker(cfg middleware.BreakerConfig) Option {
	return func(a *Automation) {
		a.breaker = &cfg
	}
}

// WithMiddleware wraps every host object with additional middleware.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(a *Automation) {
		a.middlewares = append(a.middlewares, mws...)
	}
}

// WithName names the host instance in logs and lock keys.
func WithName(name string) Option {
	return func(a *Automation) {
		a.name = name
	}
}

// WithoutDocument connects even when no part is open. Modelling calls fail
// with domain.ErrNoActiveDocument until Documents().NewPart or Open succeeds.
func WithoutDocument() Option {
	return func(a *Automation) {
		a.requireDocument = false
	}
}

// New connects to the host reached by dialer. Unless WithoutDocument is
// given, the active document must be a part.
func New(ctx context.Context, dialer ports.Dialer, opts ...Option) (*Automation, error) {
	a := &Automation{requireDocument: true, name: "default"}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}

	mws := []middleware.Middleware{}
	if a.hooks.OnCall != nil || a.hooks.OnCallReturn != nil {
		mws = append(mws, middleware.Instrument(a.hooks))
	}
	if a.breaker != nil {
		cfg := *a.breaker
		if cfg.Logger == nil {
			cfg.Logger = a.logger
		}
		mws = append(mws, middleware.Breaker(cfg))
	}
	mws = append(mws, a.middlewares...)
	if len(mws) > 0 {
		dialer = middleware.Dialer(dialer, mws...)
	}

	sessOpts := []session.Option{
		session.WithName(a.name),
		session.WithLogger(a.logger),
		session.WithHooks(a.hooks),
	}
	if a.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(a.locker, a.lockTTL))
	}

	var (
		s   *session.Session
		err error
	)
	if a.requireDocument {
		s, err = session.Connect(ctx, dialer, sessOpts...)
	} else {
		s, err = session.ConnectApp(ctx, dialer, sessOpts...)
		if err == nil {
			if rerr := s.Refresh(ctx); rerr != nil && !isDocumentState(rerr) {
				s.Close()
				err = rerr
			}
		}
	}
	if err != nil {
		return nil, err
	}

	a.session = s
	a.sketch = sketch.New(s)
	a.feature = feature.New(s)
	a.selection = selection.New(s)
	a.documents = document.New(s, a.templates)
	a.logger.Info("Connected", "host", a.name, "document", s.DocumentType().String())
	return a, nil
}

func isDocumentState(err error) bool {
	return errors.Is(err, domain.ErrNoActiveDocument) || errors.Is(err, domain.ErrWrongDocumentType)
}

// Sketch returns the sketch adapter.
func (a *Automation) Sketch() *sketch.Adapter { return a.sketch }

// Feature returns the feature adapter.
func (a *Automation) Feature() *feature.Adapter { return a.feature }

// Selection returns the selection adapter.
func (a *Automation) Selection() *selection.Adapter { return a.selection }

// Documents returns the document manager.
func (a *Automation) Documents() *document.Manager { return a.documents }

// Session returns the underlying host session.
func (a *Automation) Session() *session.Session { return a.session }

// Logger returns the configured logger.
func (a *Automation) Logger() *slog.Logger { return a.logger }

// NewSketch opens a sketch on plane ("Front", "Top", "Right" or a plane name).
func (a *Automation) NewSketch(ctx context.Context, plane string) error {
	return a.sketch.Start(ctx, plane)
}

// EndSketch closes the open sketch.
func (a *Automation) EndSketch(ctx context.Context) error {
	return a.sketch.End(ctx)
}

// Rebuild regenerates the part.
func (a *Automation) Rebuild(ctx context.Context) error {
	return a.session.Do(ctx, "model.rebuild", func(ctx context.Context) error {
		model, err := a.session.Model()
		if err != nil {
			return err
		}
		ok, err := model.Call(ctx, "ForceRebuild3", false)
		if err != nil {
			return err
		}
		if !ports.AsBool(ok) {
			return domain.NewHostError("ForceRebuild3", "")
		}
		return nil
	})
}

// Save saves the current document, to path when given.
func (a *Automation) Save(ctx context.Context, path string) error {
	return a.documents.Save(ctx, path)
}

// SelectFace selects a face by its host name.
func (a *Automation) SelectFace(ctx context.Context, name string) error {
	return a.selection.ByID(ctx, name, domain.EntityFace, false)
}

// ClearSelection empties the selection set.
func (a *Automation) ClearSelection(ctx context.Context) error {
	return a.selection.Clear(ctx)
}

// Revision returns the host's version string.
func (a *Automation) Revision(ctx context.Context) (string, error) {
	var rev string
	err := a.session.Do(ctx, "app.revision", func(ctx context.Context) error {
		app, err := a.session.App()
		if err != nil {
			return err
		}
		v, err := app.Call(ctx, "RevisionNumber")
		if err != nil {
			return fmt.Errorf("reading revision: %w", err)
		}
		rev = ports.AsString(v)
		return nil
	})
	return rev, err
}

// Title returns the title of the current document.
func (a *Automation) Title(ctx context.Context) (string, error) {
	return a.documents.Title(ctx)
}

// Status describes the connected host.
type Status struct {
	Host     string `json:"host" jsonschema_description:"Configured host instance name"`
	Revision string `json:"revision,omitempty" jsonschema_description:"Host application revision"`
	Document string `json:"document,omitempty" jsonschema_description:"Title of the active document"`
	Type     string `json:"type" jsonschema_description:"Kind of the active document"`
}

// Status collects what is known about the host. Fields that cannot be read
// are left empty.
func (a *Automation) Status(ctx context.Context) Status {
	st := Status{
		Host: a.session.Name(),
		Type: a.session.DocumentType().String(),
	}
	st.Revision, _ = a.Revision(ctx)
	st.Document, _ = a.Title(ctx)
	return st
}

// Close releases the session. The host keeps running.
func (a *Automation) Close() {
	if a == nil {
		return
	}
	a.session.Close()
}
