// Package document creates, opens, saves and closes host documents.
package document

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/aretw0/cadbridge/pkg/session"
)

// MaxCloseIterations bounds CloseAll against a host that never runs out of documents.
const MaxCloseIterations = 256

const (
	openSilent  int32 = 1
	saveSilent  int32 = 1
	newDocPaper int32 = 0
)

// DefaultTemplates are the stock template locations of a default install.
var DefaultTemplates = map[domain.DocumentType]string{
	domain.DocumentPart:     `C:\ProgramData\SolidWorks\SOLIDWORKS 2023\templates\Part.prtdot`,
	domain.DocumentAssembly: `C:\ProgramData\SolidWorks\SOLIDWORKS 2023\templates\Assembly.asmdot`,
	domain.DocumentDrawing:  `C:\ProgramData\SolidWorks\SOLIDWORKS 2023\templates\Drawing.drwdot`,
}

// fallback is the parameterless creation method used when a template fails.
var fallback = map[domain.DocumentType]string{
	domain.DocumentPart:     "NewPart",
	domain.DocumentAssembly: "NewAssembly",
	domain.DocumentDrawing:  "NewDrawing",
}

// Manager handles document lifecycle on the session's host. Every call that
// changes the active document refreshes the session.
type Manager struct {
	s *session.Session

	mu        sync.RWMutex
	templates map[domain.DocumentType]string
}

// New returns a document manager bound to s, seeded with DefaultTemplates
// overridden by templates.
func New(s *session.Session, templates map[domain.DocumentType]string) *Manager {
	m := &Manager{s: s, templates: make(map[domain.DocumentType]string, len(DefaultTemplates))}
	for k, v := range DefaultTemplates {
		m.templates[k] = v
	}
	for k, v := range templates {
		if v != "" {
			m.templates[k] = v
		}
	}
	return m
}

// SetTemplate overrides the template used for kind.
func (m *Manager) SetTemplate(kind domain.DocumentType, path string) error {
	if _, ok := fallback[kind]; !ok {
		return domain.Invalid("no template for document type %s", kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[kind] = path
	return nil
}

// Template returns the template path used for kind.
func (m *Manager) Template(kind domain.DocumentType) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates[kind]
}

// NewPart creates a part from template (or the configured part template).
func (m *Manager) NewPart(ctx context.Context, template string) (string, error) {
	return m.create(ctx, domain.DocumentPart, template)
}

// NewAssembly creates an assembly.
func (m *Manager) NewAssembly(ctx context.Context, template string) (string, error) {
	return m.create(ctx, domain.DocumentAssembly, template)
}

// NewDrawing creates a drawing.
func (m *Manager) NewDrawing(ctx context.Context, template string) (string, error) {
	return m.create(ctx, domain.DocumentDrawing, template)
}

// create makes a new document and returns its title. A template the host
// rejects falls back to the host's parameterless creation method.
func (m *Manager) create(ctx context.Context, kind domain.DocumentType, template string) (string, error) {
	if template == "" {
		template = m.Template(kind)
	}
	var title string
	err := m.s.Do(ctx, "document.new", func(ctx context.Context) error {
		app, err := m.s.App()
		if err != nil {
			return err
		}
		v, err := app.Call(ctx, "NewDocument", template, newDocPaper, 0.0, 0.0)
		model, ok := ports.AsObject(v)
		if err != nil || !ok {
			m.s.Logger().Warn("Template rejected, using host default",
				"type", kind.String(),
				"template", template,
				"err", err,
			)
			v, err = app.Call(ctx, fallback[kind])
			if err != nil {
				return err
			}
			if model, ok = ports.AsObject(v); !ok {
				return domain.NewHostError(fallback[kind], "host created no document")
			}
		}
		title, err = titleOf(ctx, model)
		if err != nil {
			return err
		}
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	m.s.Logger().Info("Created document", "type", kind.String(), "title", title)
	return title, nil
}

// Open opens path, inferring the document type from its extension, and
// returns the document title. Host error and warning codes are reported in
// a *domain.HostError.
func (m *Manager) Open(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", domain.Invalid("path is required")
	}
	kind := domain.DocumentTypeForPath(path)
	var title string
	err := m.s.Do(ctx, "document.open", func(ctx context.Context) error {
		app, err := m.s.App()
		if err != nil {
			return err
		}
		errs, warns := &ports.Out{}, &ports.Out{}
		v, err := app.Call(ctx, "OpenDoc6", path, int32(kind), openSilent, "", errs, warns)
		if err != nil {
			return err
		}
		model, ok := ports.AsObject(v)
		if !ok {
			return &domain.HostError{
				Method:   "OpenDoc6",
				Detail:   fmt.Sprintf("cannot open %q", path),
				Code:     errs.Value,
				Warnings: warns.Value,
			}
		}
		if warns.Value != 0 {
			m.s.Logger().Warn("Opened with warnings", "path", path, "warnings", warns.Value)
		}
		if title, err = titleOf(ctx, model); err != nil {
			return err
		}
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	m.s.Logger().Info("Opened document", "path", path, "title", title)
	return title, nil
}

// Close closes the active document, saving it first when save is set.
// Closing with no active document does nothing.
func (m *Manager) Close(ctx context.Context, save bool) error {
	return m.s.Do(ctx, "document.close", func(ctx context.Context) error {
		_, err := m.closeActive(ctx, save)
		return err
	})
}

// CloseAll closes every open document. It stops with a *domain.HostError
// when the host keeps reporting the same active document.
func (m *Manager) CloseAll(ctx context.Context, save bool) (int, error) {
	var closed int
	err := m.s.Do(ctx, "document.close_all", func(ctx context.Context) error {
		var last string
		for i := 0; i < MaxCloseIterations; i++ {
			title, err := m.closeActive(ctx, save)
			if err != nil {
				return err
			}
			if title == "" {
				return nil
			}
			if title == last {
				return domain.NewHostError("CloseDoc", fmt.Sprintf("document %q did not close", title))
			}
			last = title
			closed++
		}
		return domain.NewHostError("CloseDoc", fmt.Sprintf("still open after %d closes", MaxCloseIterations))
	})
	return closed, err
}

// closeActive closes the host's active document and returns its title,
// or "" when nothing was open.
func (m *Manager) closeActive(ctx context.Context, save bool) (string, error) {
	app, err := m.s.App()
	if err != nil {
		return "", err
	}
	v, err := app.Get(ctx, "ActiveDoc")
	if err != nil {
		return "", err
	}
	model, ok := ports.AsObject(v)
	if !ok {
		return "", nil
	}
	if save {
		if err := save3(ctx, model); err != nil {
			return "", err
		}
	}
	title, err := titleOf(ctx, model)
	if err != nil {
		return "", err
	}
	if _, err := app.Call(ctx, "CloseDoc", title); err != nil {
		return "", err
	}
	m.s.Logger().Info("Closed document", "title", title)
	if err := m.refresh(ctx); err != nil && !isDocumentState(err) {
		return "", err
	}
	return title, nil
}

// Save writes the current document, to path when given or in place otherwise.
func (m *Manager) Save(ctx context.Context, path string) error {
	return m.s.Do(ctx, "document.save", func(ctx context.Context) error {
		model, err := m.s.Model()
		if err != nil {
			return err
		}
		if path == "" {
			return save3(ctx, model)
		}
		ok, err := model.Call(ctx, "SaveAs", path)
		if err != nil {
			return err
		}
		if !ports.AsBool(ok) {
			return domain.NewHostError("SaveAs", fmt.Sprintf("cannot save to %q", path))
		}
		m.s.Logger().Info("Saved document", "path", path)
		return nil
	})
}

// Title returns the title of the current document.
func (m *Manager) Title(ctx context.Context) (string, error) {
	var title string
	err := m.s.Do(ctx, "document.title", func(ctx context.Context) error {
		model, err := m.s.Model()
		if err != nil {
			return err
		}
		title, err = titleOf(ctx, model)
		return err
	})
	return title, err
}

// ActiveType returns the kind of the host's active document, or
// domain.DocumentUnknown when none is open.
func (m *Manager) ActiveType(ctx context.Context) (domain.DocumentType, error) {
	kind := domain.DocumentUnknown
	err := m.s.Do(ctx, "document.active_type", func(ctx context.Context) error {
		app, err := m.s.App()
		if err != nil {
			return err
		}
		v, err := app.Get(ctx, "ActiveDoc")
		if err != nil {
			return err
		}
		model, ok := ports.AsObject(v)
		if !ok {
			return nil
		}
		t, err := model.Get(ctx, "GetType")
		if err != nil {
			return err
		}
		n, err := ports.AsInt32(t)
		kind = domain.DocumentType(n)
		return err
	})
	return kind, err
}

// refresh re-reads the active document into the session. A missing or
// non-part document is not an error here; adapters check at use.
func (m *Manager) refresh(ctx context.Context) error {
	if err := m.s.Refresh(ctx); err != nil && !isDocumentState(err) {
		return err
	}
	return nil
}

func isDocumentState(err error) bool {
	return errors.Is(err, domain.ErrNoActiveDocument) || errors.Is(err, domain.ErrWrongDocumentType)
}

func save3(ctx context.Context, model ports.Object) error {
	errs, warns := &ports.Out{}, &ports.Out{}
	ok, err := model.Call(ctx, "Save3", saveSilent, errs, warns)
	if err != nil {
		return err
	}
	if !ports.AsBool(ok) {
		return &domain.HostError{Method: "Save3", Code: errs.Value, Warnings: warns.Value}
	}
	return nil
}

func titleOf(ctx context.Context, model ports.Object) (string, error) {
	v, err := model.Get(ctx, "GetTitle")
	if err != nil {
		return "", fmt.Errorf("reading document title: %w", err)
	}
	return ports.AsString(v), nil
}
