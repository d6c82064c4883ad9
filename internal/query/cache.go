// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query caches backend responses and drives live-update polling.
//
// Snapshots are held for a GC time and served without refetching while
// younger than the stale time. Concurrent fetches of one key share a single
// request. Invalidating a resource drops its snapshots and discards the
// results of fetches that were already in flight.
package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/trendscope/internal/telemetry"
)

// Entry is one cached snapshot.
type Entry struct {
	Data      any
	FetchedAt time.Time
}

// Options configures a Cache.
type Options struct {
	StaleTime time.Duration
	GCTime    time.Duration

	// Now is the clock; tests substitute a fake.
	Now func() time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	store     *gocache.Cache
	flight    singleflight.Group
	staleTime time.Duration
	now       func() time.Time

	mu          sync.Mutex
	epoch       uint64            // bumped by Clear
	generations map[string]uint64 // resource → generation
	stale       map[string]bool   // key → forced stale
}

// stamp identifies the cache state a fetch started under.
type stamp struct {
	epoch, gen uint64
}

// NewCache returns a cache with the given stale and GC times.
func NewCache(opts Options) *Cache {
	if opts.GCTime <= 0 {
		opts.GCTime = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Cache{
		store:       gocache.New(opts.GCTime, opts.GCTime),
		staleTime:   opts.StaleTime,
		now:         opts.Now,
		generations: make(map[string]uint64),
		stale:       make(map[string]bool),
	}
	// go-cache calls this outside its own lock, on Delete and on expiry.
	c.store.OnEvicted(func(k string, _ any) {
		c.mu.Lock()
		delete(c.stale, k)
		c.mu.Unlock()
	})
	return c
}

// FetchFunc loads the value for a key.
type FetchFunc func(ctx context.Context) (any, error)

// Fetch returns the fresh snapshot for key, or runs fn and caches its result.
// Callers sharing a key while fn runs receive the same result. Errors are
// returned but never cached.
func (c *Cache) Fetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	if e, ok := c.fresh(key); ok {
		telemetry.CacheLookups.WithLabelValues(key.Resource, "hit").Inc()
		return e.Data, nil
	}
	return c.load(ctx, key, fn)
}

// Reload runs fn even when a fresh snapshot exists and replaces it.
// Polling uses it so every tick reaches the backend.
func (c *Cache) Reload(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	return c.load(ctx, key, fn)
}

func (c *Cache) load(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	st := c.stamp(key.Resource)
	flightKey := key.String() + "#" + strconv.FormatUint(st.epoch, 10) + "." + strconv.FormatUint(st.gen, 10)

	v, err, shared := c.flight.Do(flightKey, func() (any, error) {
		telemetry.CacheLookups.WithLabelValues(key.Resource, "miss").Inc()
		data, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, st, data)
		return data, nil
	})
	if shared {
		telemetry.CacheLookups.WithLabelValues(key.Resource, "shared").Inc()
	}
	return v, err
}

// Peek returns the last snapshot for key whether or not it is stale.
func (c *Cache) Peek(key Key) (Entry, bool) {
	v, ok := c.store.Get(key.String())
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// IsStale reports whether key has no snapshot or must be refetched.
func (c *Cache) IsStale(key Key) bool {
	_, ok := c.fresh(key)
	return !ok
}

// Invalidate drops every snapshot of resource. Fetches of that resource
// already in flight still return to their callers but are not cached.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	c.generations[resource]++
	c.mu.Unlock()

	prefix := resource + "?"
	for k := range c.store.Items() {
		if k == resource || strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
	c.mu.Lock()
	for k := range c.stale {
		if k == resource || strings.HasPrefix(k, prefix) {
			delete(c.stale, k)
		}
	}
	c.mu.Unlock()
	telemetry.CacheInvalidations.WithLabelValues(resource).Inc()
}

// MarkStale forces every snapshot whose resource passes keep to be refetched
// on next use while still being available to Peek.
func (c *Cache) MarkStale(keep func(resource string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.store.Items() {
		resource, _, _ := strings.Cut(k, "?")
		if keep(resource) {
			c.stale[k] = true
		}
	}
}

// Clear drops everything, as on sign-out. No fetch started before Clear
// is cached, whatever its resource.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.epoch++
	c.stale = make(map[string]bool)
	c.mu.Unlock()
	c.store.Flush()
}

func (c *Cache) fresh(key Key) (Entry, bool) {
	e, ok := c.Peek(key)
	if !ok {
		return Entry{}, false
	}
	c.mu.Lock()
	forced := c.stale[key.String()]
	c.mu.Unlock()
	if forced || c.now().Sub(e.FetchedAt) >= c.staleTime {
		return Entry{}, false
	}
	return e, true
}

func (c *Cache) stamp(resource string) stamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stamp{epoch: c.epoch, gen: c.generations[resource]}
}

// put caches data unless the cache was cleared or resource invalidated
// after the fetch began.
func (c *Cache) put(key Key, st stamp, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != st.epoch || c.generations[key.Resource] != st.gen {
		return
	}
	delete(c.stale, key.String())
	c.store.Set(key.String(), Entry{Data: data, FetchedAt: c.now()}, gocache.DefaultExpiration)
}

// Fetch is the typed form of Cache.Fetch.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	return typed[T](key)(c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}))
}

// Reload is the typed form of Cache.Reload.
func Reload[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	return typed[T](key)(c.Reload(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}))
}

func typed[T any](key Key) func(any, error) (T, error) {
	return func(v any, err error) (T, error) {
		if err != nil {
			var zero T
			return zero, err
		}
		t, ok := v.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("cache entry %s holds %T", key, v)
		}
		return t, nil
	}
}
