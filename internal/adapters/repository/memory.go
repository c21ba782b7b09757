package repository

import (
	"context"
	"sync"
	"sync/atomic"
)

// MemoryStore keeps one atomically swapped snapshot pointer per dataset.
// Readers never observe a partially built snapshot.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]*atomic.Pointer[Snapshot]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{slots: make(map[string]*atomic.Pointer[Snapshot])}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) slot(dataset string, create bool) *atomic.Pointer[Snapshot] {
	s.mu.RLock()
	p, ok := s.slots[dataset]
	s.mu.RUnlock()
	if ok || !create {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok = s.slots[dataset]; !ok {
		p = &atomic.Pointer[Snapshot]{}
		s.slots[dataset] = p
	}
	return p
}

// Get returns the current snapshot for dataset.
func (s *MemoryStore) Get(_ context.Context, dataset string) (*Snapshot, bool) {
	p := s.slot(dataset, false)
	if p == nil {
		return nil, false
	}
	snap := p.Load()
	return snap, snap != nil
}

// Put replaces the snapshot for snap.Dataset.
func (s *MemoryStore) Put(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	if snap.Dataset == "" {
		return ErrEmptyDataset
	}
	s.slot(snap.Dataset, true).Store(snap)
	return nil
}

// Invalidate drops the snapshot for dataset.
func (s *MemoryStore) Invalidate(_ context.Context, dataset string) {
	if p := s.slot(dataset, false); p != nil {
		p.Store(nil)
	}
}

// Count returns the number of datasets currently holding a snapshot.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.slots {
		if p.Load() != nil {
			n++
		}
	}
	return n
}
