package presentation

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownTable renders the flattened tree as a two-column markdown table.
func MarkdownTable(tree map[string]any) string {
	var b strings.Builder
	b.WriteString("| Path | Value |\n")
	b.WriteString("| --- | --- |\n")
	for _, e := range Flatten(tree) {
		b.WriteString("| `")
		b.WriteString(e.Path)
		b.WriteString("` | ")
		b.WriteString(strings.ReplaceAll(FormatValue(e.Value), "|", `\|`))
		b.WriteString(" |\n")
	}
	return b.String()
}

// RenderMarkdown renders markdown using glamour. Without a terminal the
// "notty" style is used so the output stays free of escape codes.
func RenderMarkdown(markdown string, styled bool) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if styled {
		style = glamour.WithAutoStyle() // Automatically detect light/dark background
	}

	r, err := glamour.NewTermRenderer(style)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
