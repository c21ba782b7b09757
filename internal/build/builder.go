// Package build renders the query surface to static JSON files and checks
// a running server against the summary invariants.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/racecurve/internal/domain/model"
	"github.com/okian/racecurve/pkg/logger"
)

const (
	dataDir      = "data"
	allTimeName  = "all-time"
	paretoSuffix = "-pareto"
	filePerm     = 0o644
	dirPerm      = 0o755

	defaultConcurrency = 4
)

// Summaries is the read side the builder renders.
type Summaries interface {
	Datasets(ctx context.Context) model.DatasetList
	Summary(ctx context.Context, dataset string) (model.Summary, error)
	AllTime(ctx context.Context) (model.Summary, error)
	Front(ctx context.Context, dataset string) (model.Front, error)
}

// Report lists what a build wrote.
type Report struct {
	Datasets int
	Files    []string
}

// Builder writes <out>/data/<dataset>.json, <dataset>-pareto.json and
// all-time.json.
type Builder struct {
	src         Summaries
	out         string
	concurrency int
	log         logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithConcurrency bounds the number of files rendered at once.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBuilder creates a builder writing below out.
func NewBuilder(src Summaries, out string, opts ...Option) *Builder {
	b := &Builder{
		src:         src,
		out:         out,
		concurrency: defaultConcurrency,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build renders every dataset, its front and the all-time merge.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	dir := filepath.Join(b.out, dataDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return Report{}, fmt.Errorf("create %s: %w", dir, err)
	}

	list := b.src.Datasets(ctx)
	var (
		mu    sync.Mutex
		files []string
	)
	record := func(path string) {
		mu.Lock()
		files = append(files, path)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for _, name := range list.Datasets {
		g.Go(func() error {
			sum, err := b.src.Summary(gctx, name)
			if err != nil {
				return fmt.Errorf("summary %s: %w", name, err)
			}
			path := filepath.Join(dir, name+".json")
			if err := writeJSONFile(path, sum); err != nil {
				return err
			}
			record(path)
			return nil
		})
		g.Go(func() error {
			front, err := b.src.Front(gctx, name)
			if err != nil {
				return fmt.Errorf("front %s: %w", name, err)
			}
			path := filepath.Join(dir, name+paretoSuffix+".json")
			if err := writeJSONFile(path, front); err != nil {
				return err
			}
			record(path)
			return nil
		})
	}
	g.Go(func() error {
		sum, err := b.src.AllTime(gctx)
		if err != nil {
			return fmt.Errorf("all-time: %w", err)
		}
		path := filepath.Join(dir, allTimeName+".json")
		if err := writeJSONFile(path, sum); err != nil {
			return err
		}
		record(path)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	sort.Strings(files)
	b.log.Info(ctx, "static data written",
		logger.String("out", b.out),
		logger.Int("datasets", len(list.Datasets)),
		logger.Int("files", len(files)),
	)
	return Report{Datasets: len(list.Datasets), Files: files}, nil
}

// writeJSONFile replaces path atomically so readers never see a partial file.
func writeJSONFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
