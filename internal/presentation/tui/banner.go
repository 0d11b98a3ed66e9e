package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cadbridge banner followed by subtitle.
func PrintBanner(w io.Writer, subtitle string) {
	p := termenv.EnvColorProfile()
	lines := []struct{ text, color string }{
		{`                 _ _          _     _            `, "#38bdf8"},
		{`   ___ __ _  __| | |__  _ __(_) __| | __ _  ___ `, "#22d3ee"},
		{`  / __/ _' |/ _' | '_ \| '__| |/ _' |/ _' |/ _ \`, "#2dd4bf"},
		{` | (_| (_| | (_| | |_) | |  | | (_| | (_| |  __/`, "#34d399"},
		{`  \___\__,_|\__,_|_.__/|_|  |_|\__,_|\__, |\___|`, "#4ade80"},
		{`                                     |___/      `, "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if subtitle != "" {
		fmt.Fprintln(w, termenv.String("  "+subtitle).Faint())
	}
	fmt.Fprintln(w)
}
