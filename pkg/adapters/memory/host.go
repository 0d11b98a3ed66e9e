// Package memory provides an in-process simulated host.
//
// The simulator records every method call in order and keeps just enough
// document, sketch, selection and body state for adapters to observe the
// same success and failure signals the real application returns. It never
// computes geometry.
package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
)

// Call is one recorded method invocation.
type Call struct {
	Target string // object kind, e.g. "SketchManager"
	Method string
	Args   []any
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		switch v := a.(type) {
		case *ports.Out:
			parts[i] = "&out"
		case float64:
			parts[i] = fmt.Sprintf("%g", v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("%s.%s(%s)", c.Target, c.Method, strings.Join(parts, ", "))
}

// Host is a simulated host application. It implements ports.Dialer.
// Safe for concurrent use.
type Host struct {
	mu sync.Mutex

	calls       []Call
	docs        []*document
	files       map[string]domain.DocumentType
	failing     map[string]bool
	transport   error
	unreachable bool
	counters    map[domain.DocumentType]int
	revision    string
	edgesPer    int
}

type document struct {
	kind      domain.DocumentType
	title     string
	inSketch  bool
	segments  int
	pending   bool
	sketches  int
	features  map[string]int
	bodies    int
	selection int
	saved     int
	path      string
}

// Option configures the Host.
type Option func(*Host)

// WithoutDocument starts the host with no open document.
func WithoutDocument() Option {
	return func(h *Host) {
		h.docs = nil
	}
}

// WithActiveDocument starts the host with a single document of the given kind.
func WithActiveDocument(kind domain.DocumentType, title string) Option {
	return func(h *Host) {
		h.docs = []*document{newDocument(kind, title)}
	}
}

// WithFile registers a file that OpenDoc6 can open.
func WithFile(path string) Option {
	return func(h *Host) {
		h.files[path] = domain.DocumentTypeForPath(path)
	}
}

// WithBodies seeds the active document with solid bodies.
func WithBodies(n int) Option {
	return func(h *Host) {
		if d := h.active(); d != nil {
			d.bodies = n
		}
	}
}

// WithEdgesPerBody sets the number of edges each simulated body reports.
func WithEdgesPerBody(n int) Option {
	return func(h *Host) {
		h.edgesPer = n
	}
}

// Unreachable makes Dial fail as if no host process were running.
func Unreachable() Option {
	return func(h *Host) {
		h.unreachable = true
	}
}

// NewHost creates a simulated host with one open part named "Part1".
func NewHost(opts ...Option) *Host {
	h := &Host{
		files:    make(map[string]domain.DocumentType),
		failing:  make(map[string]bool),
		counters: map[domain.DocumentType]int{domain.DocumentPart: 1},
		revision: "31.1.0",
		edgesPer: 12,
	}
	h.docs = []*document{newDocument(domain.DocumentPart, "Part1")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func newDocument(kind domain.DocumentType, title string) *document {
	return &document{kind: kind, title: title, features: make(map[string]int)}
}

// Dial returns the application object.
func (h *Host) Dial(ctx context.Context) (ports.Object, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unreachable {
		return nil, fmt.Errorf("%w: simulated host is not running", domain.ErrConnection)
	}
	return &object{host: h, kind: kindApp}, nil
}

// Fail makes the host report failure (nil or false result) for method until Recover is called.
func (h *Host) Fail(method string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failing[method] = true
}

// Recover clears simulated failures.
func (h *Host) Recover() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failing = make(map[string]bool)
	h.transport = nil
}

// Break makes every subsequent call fail at the transport level with err.
func (h *Host) Break(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.transport = err
}

// Calls returns a copy of all recorded method calls.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

// CallsTo returns the recorded calls of the named method.
func (h *Host) CallsTo(method string) []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Call
	for _, c := range h.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Methods returns the recorded method names in call order.
func (h *Host) Methods() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.calls))
	for i, c := range h.calls {
		out[i] = c.Method
	}
	return out
}

// Reset discards the call log.
func (h *Host) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

// Selection returns the size of the active document's selection set.
func (h *Host) Selection() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d := h.active(); d != nil {
		return d.selection
	}
	return 0
}

// Features returns how many features of each host method were created in the active document.
func (h *Host) Features() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]int)
	if d := h.active(); d != nil {
		for k, v := range d.features {
			out[k] = v
		}
	}
	return out
}

// Documents returns the titles of the open documents, active last.
func (h *Host) Documents() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.docs))
	for i, d := range h.docs {
		out[i] = d.title
	}
	return out
}

func (h *Host) active() *document {
	if len(h.docs) == 0 {
		return nil
	}
	return h.docs[len(h.docs)-1]
}

func (h *Host) open(kind domain.DocumentType, path string) *document {
	h.counters[kind]++
	var title string
	if path != "" {
		title = filepath.Base(path)
	} else {
		prefix := map[domain.DocumentType]string{
			domain.DocumentPart:     "Part",
			domain.DocumentAssembly: "Assem",
			domain.DocumentDrawing:  "Draw",
		}[kind]
		title = fmt.Sprintf("%s%d", prefix, h.counters[kind])
	}
	d := newDocument(kind, title)
	d.path = path
	h.docs = append(h.docs, d)
	return d
}

func (h *Host) close(title string) bool {
	for i, d := range h.docs {
		if d.title == title {
			h.docs = append(h.docs[:i], h.docs[i+1:]...)
			return true
		}
	}
	return false
}

func templateKind(path string) domain.DocumentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asmdot":
		return domain.DocumentAssembly
	case ".drwdot":
		return domain.DocumentDrawing
	}
	return domain.DocumentPart
}
