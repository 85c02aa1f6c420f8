package shared

import (
	"context"
	"sync"
	"time"
)

// CounterStore tracks request hits per key within a rolling window. It is
// injected into the rate-limit middleware so limiter state has an explicit
// owner instead of living in a package global, and so deployments can swap
// the in-memory map for an external cache.
type CounterStore interface {
	// Increment records a hit for key and returns how many hits fall
	// inside the rolling window ending now, including this one.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// MemoryCounterStore is the default CounterStore: per-key hit timestamps in
// a mutex-guarded map. Stale hits are pruned on access; a background sweep
// evicts idle keys so abandoned clients do not pin memory.
type MemoryCounterStore struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	maxWindow time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

const counterSweepInterval = 1 * time.Minute

func NewMemoryCounterStore() *MemoryCounterStore {
	s := &MemoryCounterStore{
		hits:      make(map[string][]time.Time),
		maxWindow: time.Minute,
		stop:      make(chan struct{}),
	}

	// Start cleanup goroutine
	go s.sweepIdleKeys()

	return s
}

// Increment is a guarded read-modify-write: prune hits older than the
// window, append the new one, report the count.
func (s *MemoryCounterStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	if window > s.maxWindow {
		s.maxWindow = window
	}

	recent := s.hits[key]
	idx := 0
	for idx < len(recent) && !recent[idx].After(cutoff) {
		idx++
	}
	recent = append(recent[idx:], now)
	s.hits[key] = recent

	return len(recent), nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryCounterStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// sweepIdleKeys periodically drops keys whose hits have all aged out and
// compacts the rest, reclaiming the slice memory the on-access pruning
// leaves behind.
func (s *MemoryCounterStore) sweepIdleKeys() {
	ticker := time.NewTicker(counterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			cutoff := time.Now().Add(-s.maxWindow)
			for key, recent := range s.hits {
				idx := 0
				for idx < len(recent) && !recent[idx].After(cutoff) {
					idx++
				}
				if idx == len(recent) {
					delete(s.hits, key)
					continue
				}
				if idx > 0 {
					compacted := make([]time.Time, len(recent)-idx)
					copy(compacted, recent[idx:])
					s.hits[key] = compacted
				}
			}
			s.mu.Unlock()
		}
	}
}
