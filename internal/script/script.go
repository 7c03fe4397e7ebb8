package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Operation kinds.
const (
	OpGet    = "get"
	OpPut    = "put"
	OpMerge  = "merge"
	OpBind   = "bind"
	OpIngest = "ingest"

	OpIngestIntervals = "ingest_intervals"
	OpIngestTrends    = "ingest_trends"
)

// SideMe selects the logged-in user's side; it is the default.
const SideMe = "me"

// Script is a list of cache operations, run in order against one store.
//
//	scope: u-left          # default scope for every op (optional)
//	continue_on_error: false
//	ops:
//	  - op: merge
//	    key: sessions
//	    merge_key: day
//	    value: [{day: "2026-10-16", score: 80}]
//	  - op: get
//	    key: sessions.0.score
type Script struct {
	Scope           string `yaml:"scope"`
	ContinueOnError bool   `yaml:"continue_on_error"`
	Ops             []Op   `yaml:"ops"`
}

// Op is one step of a Script.
// Scope overrides the script scope; "-" clears it for this op.
// Side picks left, right or me for the interval and trend ops.
type Op struct {
	Op       string `yaml:"op"`
	Key      string `yaml:"key"`
	Scope    string `yaml:"scope"`
	Side     string `yaml:"side"`
	Value    any    `yaml:"value"`
	MergeKey string `yaml:"merge_key"`
}

// NoScope clears the script scope for a single op.
const NoScope = "-"

// EffectiveScope resolves the scope of op within s.
func (s *Script) EffectiveScope(op Op) string {
	switch op.Scope {
	case "":
		return s.Scope
	case NoScope:
		return ""
	default:
		return op.Scope
	}
}

// Parse decodes a YAML script. Unknown fields are rejected.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("script is empty")
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseFile reads and decodes a script file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Validate checks op kinds and required fields. Key syntax is left to the store.
func (s *Script) Validate() error {
	if len(s.Ops) == 0 {
		return errors.New("script has no ops")
	}
	for i, op := range s.Ops {
		switch op.Op {
		case OpGet, OpPut, OpMerge:
			if op.Key == "" {
				return fmt.Errorf("ops[%d] (%s): key is required", i, op.Op)
			}
		case OpBind, OpIngest:
			if _, ok := op.Value.(map[string]any); !ok {
				return fmt.Errorf("ops[%d] (%s): value must be a mapping", i, op.Op)
			}
		case OpIngestIntervals, OpIngestTrends:
			if _, ok := op.Value.([]any); !ok {
				return fmt.Errorf("ops[%d] (%s): value must be a list", i, op.Op)
			}
			switch op.Side {
			case "", SideMe, "left", "right":
			default:
				return fmt.Errorf("ops[%d] (%s): unknown side %q", i, op.Op, op.Side)
			}
		case "":
			return fmt.Errorf("ops[%d]: op is required", i)
		default:
			return fmt.Errorf("ops[%d]: unknown op %q", i, op.Op)
		}
	}
	return nil
}
