package repository

import "sync/atomic"

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithCapacity pre-sizes the store for the expected number of datasets.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.slots = make(map[string]*atomic.Pointer[Snapshot], n)
		}
	}
}
