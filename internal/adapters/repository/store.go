// Package repository holds computed summaries between requests.
package repository

import (
	"context"
	"time"

	"github.com/okian/racecurve/internal/adapters/source"
	"github.com/okian/racecurve/internal/domain/model"
)

// Snapshot is an immutable computed view of one dataset. Callers must not
// modify the slices it holds.
type Snapshot struct {
	Dataset     string
	Summary     model.Summary
	Front       model.Front
	Winners     model.Winners
	Rankings    []model.RankedRunner
	Stamp       source.Stamp
	Fingerprint string
	Records     int
	Skipped     int
	BuiltAt     time.Time
}

// Store provides access to the latest snapshot per dataset.
type Store interface {
	// Get returns the current snapshot for dataset, or false when none is held.
	Get(ctx context.Context, dataset string) (*Snapshot, bool)

	// Put atomically replaces the snapshot for dataset.
	Put(ctx context.Context, snap *Snapshot) error

	// Invalidate drops the snapshot for dataset.
	Invalidate(ctx context.Context, dataset string)

	// Count returns the number of datasets with a snapshot.
	Count(ctx context.Context) int
}
