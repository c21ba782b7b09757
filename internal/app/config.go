package service

import (
	"fmt"

	"github.com/okian/racecurve/internal/adapters/source"
	"github.com/okian/racecurve/internal/config"
	"github.com/okian/racecurve/internal/domain/parser"
)

// NewFromConfig builds a Service for the datasets, layout and cache policy
// of cfg. Extra options are applied after the configured ones.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Service, error) {
	layout, err := parser.LayoutByName(cfg.Layout)
	if err != nil {
		return nil, err
	}
	cat, err := source.FromPaths(cfg.DefaultName(), cfg.DatasetPaths())
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	base := []Option{
		WithLayout(layout),
		WithHeader(cfg.HasHeader),
		WithCacheEnabled(cfg.CacheEnabled),
		WithWatch(cfg.Watch),
	}
	return New(cat, append(base, opts...)...), nil
}
