// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/okian/racecurve/internal/adapters/repository"
	"github.com/okian/racecurve/internal/adapters/source"
	"github.com/okian/racecurve/internal/domain/aggregate"
	"github.com/okian/racecurve/internal/domain/model"
	"github.com/okian/racecurve/internal/domain/parser"
	"github.com/okian/racecurve/pkg/logger"
	"github.com/okian/racecurve/pkg/metrics"
)

// Cache lookup outcomes reported to metrics.
const (
	lookupHit         = "hit"
	lookupRevalidated = "revalidated"
	lookupMiss        = "miss"
	lookupBypass      = "bypass"
)

// Service serves per-age summaries for the datasets of a catalog.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog *source.Catalog
	store   repository.Store
	parser  *parser.Parser
	watcher *source.Watcher
	flight  singleflight.Group

	// Configuration
	layout       parser.Layout
	hasHeader    bool
	cacheEnabled bool
	watch        bool

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLayout selects the column layout of the results files.
func WithLayout(l parser.Layout) Option {
	return func(s *Service) {
		s.layout = l
	}
}

// WithHeader marks the first line of every file as a header.
func WithHeader(hasHeader bool) Option {
	return func(s *Service) {
		s.hasHeader = hasHeader
	}
}

// WithCacheEnabled toggles snapshot caching. When disabled every request
// re-reads and re-aggregates its dataset.
func WithCacheEnabled(enabled bool) Option {
	return func(s *Service) {
		s.cacheEnabled = enabled
	}
}

// WithWatch starts a filesystem watcher that drops cached snapshots as
// soon as their file changes. It has no effect with caching disabled.
func WithWatch(watch bool) Option {
	return func(s *Service) {
		s.watch = watch
	}
}

// WithStore replaces the default in-memory snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a Service over cat.
func New(cat *source.Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:      cat,
		layout:       parser.SimpleLayout,
		cacheEnabled: true,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithCapacity(len(cat.Names())))
	}
	s.parser = parser.New(parser.WithLayout(s.layout), parser.WithHeader(s.hasHeader))
	return s
}

// Start begins watching the sources when configured to.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.watch && s.cacheEnabled {
		w, err := source.NewWatcher(s.catalog, func(name string) {
			metrics.RecordWatchInvalidation(name)
			s.Invalidate(context.Background(), name)
		}, s.logger.Named("watcher"))
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			return fmt.Errorf("start watcher: %w", err)
		}
		s.watcher = w
	}

	metrics.UpdateDatasets(len(s.catalog.Names()))
	s.started = true
	s.logger.Info(ctx, "summary service started",
		logger.Any("datasets", s.catalog.Names()),
		logger.String("default", s.catalog.Default()),
		logger.String("layout", s.layout.Name),
		logger.Any("cache", s.cacheEnabled),
		logger.Any("watch", s.watcher != nil),
	)
	return nil
}

// Stop releases the watcher.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn(context.Background(), "stop watcher", logger.Error(err))
		}
		s.watcher = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "summary service stopped")
}

// Summary returns the per-age bests of dataset; an empty name selects the
// default dataset. Unknown names fail with source.ErrUnknownDataset. A
// dataset whose file cannot be read yields an empty summary.
func (s *Service) Summary(ctx context.Context, dataset string) (model.Summary, error) {
	snap, err := s.snapshot(ctx, dataset)
	if err != nil {
		return model.Summary{}, err
	}
	return snap.Summary, nil
}

// Front returns the Pareto age-performance curve of dataset.
func (s *Service) Front(ctx context.Context, dataset string) (model.Front, error) {
	snap, err := s.snapshot(ctx, dataset)
	if err != nil {
		return model.Front{}, err
	}
	return snap.Front, nil
}

// Winners returns the division winners and front finishers of dataset.
func (s *Service) Winners(ctx context.Context, dataset string) (model.Winners, error) {
	snap, err := s.snapshot(ctx, dataset)
	if err != nil {
		return model.Winners{}, err
	}
	return snap.Winners, nil
}

// Rankings returns every finisher of dataset ordered by their gap to the
// front of their sex.
func (s *Service) Rankings(ctx context.Context, dataset string) ([]model.RankedRunner, error) {
	snap, err := s.snapshot(ctx, dataset)
	if err != nil {
		return nil, err
	}
	return snap.Rankings, nil
}

// AllTime merges the summaries of every dataset. On equal times the entry
// from the dataset that sorts first is kept.
func (s *Service) AllTime(ctx context.Context) (model.Summary, error) {
	names := s.catalog.Names()
	summaries := make([]model.Summary, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			sum, err := s.Summary(gctx, name)
			if err != nil {
				return err
			}
			summaries[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Summary{}, err
	}
	return aggregate.Merge(summaries...), nil
}

// Datasets lists the configured dataset names.
func (s *Service) Datasets(_ context.Context) model.DatasetList {
	return model.DatasetList{
		Datasets: s.catalog.Names(),
		Default:  s.catalog.Default(),
	}
}

// Invalidate drops the cached snapshot of dataset.
func (s *Service) Invalidate(ctx context.Context, dataset string) {
	s.store.Invalidate(ctx, dataset)
	s.logger.Debug(ctx, "snapshot invalidated", logger.String("dataset", dataset))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"datasets":       s.catalog.Names(),
		"defaultDataset": s.catalog.Default(),
		"layout":         s.layout.Name,
		"hasHeader":      s.hasHeader,
		"cacheEnabled":   s.cacheEnabled,
		"watching":       s.watcher != nil,
		"cachedDatasets": s.store.Count(ctx),
	}

	snapshots := map[string]interface{}{}
	for _, name := range s.catalog.Names() {
		snap, ok := s.store.Get(ctx, name)
		if !ok {
			continue
		}
		snapshots[name] = map[string]interface{}{
			"records":     snap.Records,
			"skipped":     snap.Skipped,
			"male":        len(snap.Summary.Male),
			"female":      len(snap.Summary.Female),
			"fingerprint": snap.Fingerprint,
			"builtAt":     snap.BuiltAt,
		}
	}
	stats["snapshots"] = snapshots
	return stats
}

func (s *Service) snapshot(ctx context.Context, dataset string) (*repository.Snapshot, error) {
	src, err := s.catalog.Lookup(dataset)
	if err != nil {
		return nil, err
	}

	if !s.cacheEnabled {
		metrics.RecordCacheLookup(src.Name(), lookupBypass)
		content, err := source.ReadAll(ctx, src)
		if err != nil {
			return s.unavailable(ctx, src.Name(), err)
		}
		return s.build(ctx, src.Name(), content, source.Stamp{})
	}

	// The shared rebuild outlives any single caller; each caller still
	// stops waiting when its own ctx ends.
	ch := s.flight.DoChan(src.Name(), func() (interface{}, error) {
		return s.revalidate(context.WithoutCancel(ctx), src)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*repository.Snapshot), nil
	}
}

// revalidate returns the cached snapshot when the source is unchanged and
// rebuilds it otherwise. An unchanged stamp is trusted; a changed stamp
// with identical content only refreshes the stamp.
func (s *Service) revalidate(ctx context.Context, src source.Source) (*repository.Snapshot, error) {
	name := src.Name()

	stamp, err := src.Stat(ctx)
	if err != nil {
		return s.unavailable(ctx, name, err)
	}

	cached, ok := s.store.Get(ctx, name)
	if ok && cached.Stamp.Equal(stamp) {
		metrics.RecordCacheLookup(name, lookupHit)
		return cached, nil
	}

	content, err := source.ReadAll(ctx, src)
	if err != nil {
		return s.unavailable(ctx, name, err)
	}

	if ok && cached.Fingerprint == source.Fingerprint(content) {
		refreshed := *cached
		refreshed.Stamp = stamp
		if err := s.store.Put(ctx, &refreshed); err != nil {
			return nil, err
		}
		metrics.RecordCacheLookup(name, lookupRevalidated)
		return &refreshed, nil
	}

	metrics.RecordCacheLookup(name, lookupMiss)
	snap, err := s.build(ctx, name, content, stamp)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) build(ctx context.Context, name string, content []byte, stamp source.Stamp) (*repository.Snapshot, error) {
	start := time.Now()

	res, err := s.parser.Parse(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	reasons := make(map[string]int, 4)
	for _, perr := range res.Skipped {
		reasons[perr.Reason()]++
		s.logger.Debug(ctx, "line skipped",
			logger.String("dataset", name),
			logger.Int("line", perr.Line),
			logger.String("reason", perr.Reason()),
			logger.Error(perr),
		)
	}

	summary := aggregate.Aggregate(res.Records)
	front := aggregate.Front(summary)
	snap := &repository.Snapshot{
		Dataset:     name,
		Summary:     summary,
		Front:       front,
		Winners:     aggregate.Winners(res.Records, front),
		Rankings:    aggregate.Rankings(res.Records, front),
		Stamp:       stamp,
		Fingerprint: source.Fingerprint(content),
		Records:     len(res.Records),
		Skipped:     len(res.Skipped),
		BuiltAt:     time.Now(),
	}

	elapsed := time.Since(start)
	metrics.RecordParse(name, snap.Records, reasons)
	metrics.RecordRebuild(name, float64(elapsed.Microseconds())/1000, len(summary.Male), len(summary.Female))
	s.logger.Info(ctx, "summary rebuilt",
		logger.String("dataset", name),
		logger.Int("records", snap.Records),
		logger.Int("skipped", snap.Skipped),
		logger.Int("male", len(summary.Male)),
		logger.Int("female", len(summary.Female)),
		logger.Duration("took", elapsed),
	)
	return snap, nil
}

// unavailable turns an unreadable source into an empty snapshot. Any
// previously cached snapshot is dropped so a restored file is re-read.
func (s *Service) unavailable(ctx context.Context, name string, err error) (*repository.Snapshot, error) {
	if !errors.Is(err, source.ErrUnavailable) {
		return nil, err
	}
	s.store.Invalidate(ctx, name)
	metrics.RecordSourceError(name)
	s.logger.Warn(ctx, "source unavailable, serving empty summary",
		logger.String("dataset", name),
		logger.Error(err),
	)
	empty := model.EmptySummary()
	return &repository.Snapshot{
		Dataset:  name,
		Summary:  empty,
		Front:    model.Front{Male: []model.AgeBest{}, Female: []model.AgeBest{}},
		Winners:  model.EmptyWinners(),
		Rankings: []model.RankedRunner{},
		BuiltAt:  time.Now(),
	}, nil
}
