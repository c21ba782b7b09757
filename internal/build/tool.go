package build

import (
	"context"
	"time"

	service "github.com/okian/racecurve/internal/app"
	"github.com/okian/racecurve/internal/config"
	"github.com/okian/racecurve/pkg/logger"
)

// BuildOptions configures a static build.
type BuildOptions struct {
	// Out is the output root; files land in Out/data.
	Out string
	// Config selects datasets and layout. Nil loads it from file and env.
	Config *config.Config
}

// VerifyOptions configures a verification run.
type VerifyOptions struct {
	BaseURL string
	Timeout time.Duration
}

// Tool ties the builder and verifier to process configuration.
type Tool struct {
	log logger.Logger
}

// NewTool creates a tool logging to log.
func NewTool(log logger.Logger) *Tool {
	if log == nil {
		log = logger.Nop()
	}
	return &Tool{log: log}
}

// Build renders the configured datasets to static files.
func (t *Tool) Build(ctx context.Context, opts BuildOptions) (Report, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(ctx)
		if err != nil {
			return Report{}, err
		}
		cfg = loaded
	}
	svc, err := service.NewFromConfig(cfg,
		service.WithLogger(t.log),
		service.WithWatch(false),
	)
	if err != nil {
		return Report{}, err
	}
	return NewBuilder(svc, opts.Out, WithLogger(t.log)).Build(ctx)
}

// Verify checks a running server.
func (t *Tool) Verify(ctx context.Context, opts VerifyOptions) (VerifyReport, error) {
	return NewVerifier(opts.BaseURL, opts.Timeout, t.log).Verify(ctx)
}
