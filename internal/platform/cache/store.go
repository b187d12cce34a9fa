package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabsht/fpl-h2h/internal/platform/resilience"
)

type entry struct {
	value      any
	expiresAt  time.Time
	staleUntil time.Time
}

// Store is an in-process TTL cache with singleflight loading. Entries past
// their TTL can optionally be retained for a stale window so callers can
// serve the last known value when the upstream is failing.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttl      time.Duration
	staleFor time.Duration
	flight   resilience.SingleFlight
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// NewStoreWithStale keeps expired entries around for staleFor beyond the TTL,
// readable through GetStale and GetOrLoadStale.
func NewStoreWithStale(ttl, staleFor time.Duration) *Store {
	if staleFor < 0 {
		staleFor = 0
	}
	return &Store{
		entries:  make(map[string]entry),
		ttl:      ttl,
		staleFor: staleFor,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(now) {
		if e.staleUntil.After(now) {
			return nil, false
		}
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// GetStale returns the entry value while it is within either the fresh TTL or
// the stale window.
func (s *Store) GetStale(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(now) && !e.staleUntil.After(now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	staleUntil := time.Time{}
	if s.ttl > 0 {
		now := time.Now()
		expiresAt = now.Add(s.ttl)
		staleUntil = now.Add(s.ttl + s.staleFor)
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:      value,
		expiresAt:  expiresAt,
		staleUntil: staleUntil,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// GetOrLoadStale behaves like GetOrLoad, except that a loader failure falls
// back to the last retained value when one is still inside the stale window.
// The bool reports whether the returned value is stale.
func (s *Store) GetOrLoadStale(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, bool, error) {
	if loader == nil {
		return nil, false, fmt.Errorf("loader is required")
	}
	if key == "" {
		value, err := loader(ctx)
		return value, false, err
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, false, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		if stale, ok := s.GetStale(ctx, key); ok {
			return stale, true, nil
		}
		return nil, false, err
	}

	return value, false, nil
}
