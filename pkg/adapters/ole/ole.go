// Package ole attaches to a running host application over COM automation.
//
// Only Windows has a COM runtime. On other platforms Dial always fails with
// domain.ErrConnection so callers can fall back to the memory host.
package ole

import (
	"log/slog"

	"github.com/aretw0/cadbridge/internal/logging"
)

// DefaultProgID is the programmatic identifier of the host application.
const DefaultProgID = "SldWorks.Application"

// Dialer attaches to an already running host instance registered under ProgID.
// It never starts the application.
type Dialer struct {
	progID string
	logger *slog.Logger
}

// Option configures a Dialer.
type Option func(*Dialer)

// WithProgID overrides DefaultProgID, e.g. "SldWorks.Application.31" to pin
// a major version.
func WithProgID(progID string) Option {
	return func(d *Dialer) {
		if progID != "" {
			d.progID = progID
		}
	}
}

// WithLogger sets the logger used for attach and release messages.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dialer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDialer returns a Dialer for DefaultProgID unless overridden.
func NewDialer(opts ...Option) *Dialer {
	d := &Dialer{
		progID: DefaultProgID,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ProgID returns the identifier the dialer attaches to.
func (d *Dialer) ProgID() string { return d.progID }
