package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/cadbridge/internal/presentation/tui"
	"github.com/aretw0/cadbridge/pkg/registry"
	"golang.org/x/term"
)

// Catalogue renders the operation registry as markdown.
func Catalogue(reg *registry.Registry) string {
	var b strings.Builder
	b.WriteString("# Operations\n")
	group := ""
	for _, e := range reg.Entries() {
		if g, _, ok := strings.Cut(e.Name, "."); ok && g != group {
			group = g
			fmt.Fprintf(&b, "\n## %s\n", group)
		}
		fmt.Fprintf(&b, "\n### `%s`\n\n%s\n", e.Name, e.Description)
		if len(e.Params) == 0 {
			continue
		}
		b.WriteString("\n| Argument | Type | Required | Description |\n|---|---|---|---|\n")
		for _, p := range e.Params {
			req := ""
			if p.Required {
				req = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", p.Name, p.Type, req, p.Description)
		}
	}
	return b.String()
}

// PrintCatalogue writes the catalogue, styled when w is a terminal.
func PrintCatalogue(w io.Writer, reg *registry.Registry, raw bool) error {
	md := Catalogue(reg)
	if f, ok := w.(*os.File); ok && !raw && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			width = 0
		}
		out, err := tui.NewRenderer(width)(md)
		if err == nil {
			md = out
		}
	}
	_, err := io.WriteString(w, md)
	return err
}
