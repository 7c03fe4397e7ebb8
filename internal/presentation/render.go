package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/nestcache/internal/config"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Entry is one leaf of a flattened tree.
type Entry struct {
	Path  string
	Value any
}

// Flatten walks tree and returns its leaves sorted by path. Scalars and empty
// containers are leaves; sequence elements are addressed by index.
func Flatten(tree map[string]any) []Entry {
	var out []Entry
	flatten("", tree, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func flatten(prefix string, v any, out *[]Entry) {
	join := func(seg string) string {
		if prefix == "" {
			return seg
		}
		return prefix + "." + seg
	}

	switch node := v.(type) {
	case map[string]any:
		if len(node) == 0 && prefix != "" {
			*out = append(*out, Entry{Path: prefix, Value: node})
			return
		}
		for k, child := range node {
			flatten(join(k), child, out)
		}
	case []any:
		if len(node) == 0 {
			*out = append(*out, Entry{Path: prefix, Value: node})
			return
		}
		for i, child := range node {
			flatten(join(strconv.Itoa(i)), child, out)
		}
	default:
		*out = append(*out, Entry{Path: prefix, Value: v})
	}
}

// FormatValue renders a leaf value: strings quoted, empty containers as
// {} and [], anything else with %v.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case map[string]any:
		return "{}"
	case []any:
		return "[]"
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice) && rv.Len() == 0 {
		if rv.Kind() == reflect.Map {
			return "{}"
		}
		return "[]"
	}
	return fmt.Sprintf("%v", v)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColor forces colored tree output on or off.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = &enabled
	}
}

// Renderer writes cache trees in one of the config output formats.
type Renderer struct {
	format string
	color  *bool
}

// NewRenderer creates a Renderer for format (see config.Output*).
func NewRenderer(format string, opts ...Option) (*Renderer, error) {
	switch format {
	case config.OutputTree, config.OutputJSON, config.OutputYAML, config.OutputMarkdown:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	r := &Renderer{format: format}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render writes tree to w.
func (r *Renderer) Render(w io.Writer, tree map[string]any) error {
	switch r.format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return err
		}
		return enc.Close()
	case config.OutputMarkdown:
		out, err := RenderMarkdown(MarkdownTable(tree), r.colorFor(w))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return r.renderTree(w, tree)
	}
}

func (r *Renderer) renderTree(w io.Writer, tree map[string]any) error {
	p := termenv.Ascii
	if r.colorFor(w) {
		p = termenv.ColorProfile()
	}

	var b strings.Builder
	for _, e := range Flatten(tree) {
		fmt.Fprintf(&b, "%s = %s\n", paint(p, e.Path, "#818cf8"), paint(p, FormatValue(e.Value), "#f472b6"))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) colorFor(w io.Writer) bool {
	if r.color != nil {
		return *r.color
	}
	return IsTerminal(w)
}

// paint colors s unless the profile is plain ASCII.
func paint(p termenv.Profile, s, hex string) string {
	if p == termenv.Ascii {
		return s
	}
	return termenv.String(s).Foreground(p.Color(hex)).String()
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
