// Package config defines service configuration and its defaults.
//
// Values are layered by Load: defaults from New, then an optional YAML file
// named by RACECURVE_CONFIG, then RACECURVE_* environment variables.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/racecurve/internal/domain/parser"
)

// DefaultDatasetName names the dataset built from DataPath when Datasets is empty.
const DefaultDatasetName = "default"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath is the results file served when Datasets is empty.
	DataPath string `koanf:"data_path"`

	// Datasets maps dataset names (usually years) to results files.
	Datasets map[string]string `koanf:"datasets"`

	// DefaultDataset is served by GET /data without ?year.
	DefaultDataset string `koanf:"default_dataset"`

	// Layout names the column layout: simple or results.
	Layout string `koanf:"layout"`

	// HasHeader excludes the first line of every file.
	HasHeader bool `koanf:"has_header"`

	// CacheEnabled keeps summaries until the source content changes.
	CacheEnabled bool `koanf:"cache_enabled"`

	// Watch drops cached summaries on file change notifications.
	Watch bool `koanf:"watch"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		DataPath:     "data/results.txt",
		Layout:       parser.SimpleLayout.Name,
		CacheEnabled: true,
	}
}

// DatasetPaths returns the effective name -> path map.
func (c *Config) DatasetPaths() map[string]string {
	if len(c.Datasets) == 0 {
		return map[string]string{DefaultDatasetName: c.DataPath}
	}
	out := make(map[string]string, len(c.Datasets))
	for name, path := range c.Datasets {
		out[name] = path
	}
	return out
}

// DefaultName returns the dataset served by default: DefaultDataset when set,
// otherwise the greatest dataset name (the latest year).
func (c *Config) DefaultName() string {
	if c.DefaultDataset != "" {
		return c.DefaultDataset
	}
	paths := c.DatasetPaths()
	names := make([]string, 0, len(paths))
	for n := range paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names[len(names)-1]
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := parser.LayoutByName(c.Layout); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	paths := c.DatasetPaths()
	for name, path := range paths {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
			return fmt.Errorf("%w: dataset %q has an empty name or path", ErrInvalidConfig, name)
		}
	}
	if _, ok := paths[c.DefaultName()]; !ok {
		return fmt.Errorf("%w: default_dataset %q is not configured", ErrInvalidConfig, c.DefaultDataset)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
