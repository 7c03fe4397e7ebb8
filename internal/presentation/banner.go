package presentation

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the nestcache banner and version to w.
// Colors are only used when w is a terminal.
func PrintBanner(w io.Writer, version string) {
	p := termenv.Ascii
	if IsTerminal(w) {
		p = termenv.ColorProfile()
	}

	lines := []struct {
		text  string
		color string
	}{
		{"  _  _ ___ ___ _____ ___   _   ___ _  _ ___ ", "#818cf8"},
		{" | \\| | __/ __|_   _/ __| /_\\ / __| || | __|", "#a78bfa"},
		{" | .` | _|\\__ \\ | || (__ / _ \\ (__| __ | _| ", "#c084fc"},
		{" |_|\\_|___|___/ |_| \\___/_/ \\_\\___|_||_|___|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, paint(p, l.text, l.color))
	}
	fmt.Fprintln(w, paint(p, "  version "+version, "#f472b6"))
	fmt.Fprintln(w)
}
