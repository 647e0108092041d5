package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"                     _ _  __ _", "#34d399"},
	{"   __ _ _   _  __ _| (_)/ _(_) ___ __ _", "#2dd4bf"},
	{"  / _` | | | |/ _` | | | |_| |/ __/ _` |", "#22d3ee"},
	{" | (_| | |_| | (_| | | |  _| | (_| (_| |", "#38bdf8"},
	{"  \\__, |\\__,_|\\__,_|_|_|_| |_|\\___\\__,_|", "#60a5fa"},
	{"     |_|", "#818cf8"},
}

// PrintBanner writes the qualifica banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w, termenv.String("     lead qualification "+version).Faint())
	fmt.Fprintln(w)
}
