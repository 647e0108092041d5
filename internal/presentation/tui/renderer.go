package tui

import (
	"os"
	"strings"

	"github.com/aretw0/qualifica/pkg/runner"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to the raw text if the renderer cannot be built.
func NewRenderer() runner.ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n") + "\n", nil
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// RendererFor returns a markdown renderer when out is a terminal, nil (plain text) otherwise.
func RendererFor(out *os.File) runner.ContentRenderer {
	if !IsTerminal(out) {
		return nil
	}
	return NewRenderer()
}
