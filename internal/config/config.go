package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats understood by the presentation layer.
const (
	OutputTree     = "tree"
	OutputJSON     = "json"
	OutputYAML     = "yaml"
	OutputMarkdown = "markdown"
)

// Config is the content of nestcache.yaml.
type Config struct {
	LogLevel string   `yaml:"log_level" json:"log_level"`
	Output   string   `yaml:"output" json:"output"`
	Metrics  bool     `yaml:"metrics" json:"metrics"`
	Scopes   []string `yaml:"scopes" json:"scopes"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Output:   OutputTree,
	}
}

// Load reads a configuration file (YAML or JSON, by extension) over the defaults.
// A missing file is not an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate checks the output format and the scope ids.
func (c Config) Validate() error {
	switch c.Output {
	case OutputTree, OutputJSON, OutputYAML, OutputMarkdown:
	default:
		return fmt.Errorf("unknown output %q (want one of %s, %s, %s, %s)", c.Output, OutputTree, OutputJSON, OutputYAML, OutputMarkdown)
	}
	for i, scope := range c.Scopes {
		if scope == "" {
			return fmt.Errorf("scopes[%d] is empty", i)
		}
	}
	return nil
}
