package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedResolver wraps a ProfileResolver with TTL-based caching.
// Concurrent misses for the same user share a single inner lookup.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	cache map[U]*cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

type cacheEntry struct {
	profile   Profile
	expiresAt time.Time
}

// NewCachedResolver wraps a resolver with caching.
// ttl is how long profiles are cached before re-fetching.
func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner: inner,
		cache: make(map[U]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Resolve returns the profile for the given user, using cache if available.
func (r *CachedResolver[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	r.mu.RLock()
	entry, ok := r.cache[user]
	r.mu.RUnlock()

	if ok && r.now().Before(entry.expiresAt) {
		return entry.profile, nil
	}

	v, err, _ := r.group.Do(fmt.Sprint(user), func() (any, error) {
		profile, err := r.inner.Resolve(ctx, user)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[user] = &cacheEntry{
			profile:   profile,
			expiresAt: r.now().Add(r.ttl),
		}
		r.mu.Unlock()
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	profile, _ := v.(Profile)
	return profile, nil
}

// Invalidate removes a user from the cache.
// Call this when a user's profile assignment changes.
func (r *CachedResolver[U]) Invalidate(user U) {
	r.mu.Lock()
	delete(r.cache, user)
	r.mu.Unlock()
}

// InvalidateAll clears the entire cache.
// Call this when profile permissions are modified.
func (r *CachedResolver[U]) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[U]*cacheEntry)
	r.mu.Unlock()
}
