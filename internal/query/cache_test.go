// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewCache(Options{StaleTime: 30 * time.Second, GCTime: time.Hour, Now: clock.Now}), clock
}

func counter(calls *int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		n := atomic.AddInt32(calls, 1)
		return value + string(rune('0'+n)), nil
	}
}

func TestNewKeyIsOrderIndependent(t *testing.T) {
	a := NewKey("documents", url.Values{"limit": {"50"}, "offset": {"0"}})
	b := NewKey("documents", url.Values{"offset": {"0"}, "limit": {"50"}})
	assert.Equal(t, a, b)
	assert.Equal(t, "documents?limit=50&offset=0", a.String())
	assert.Equal(t, "clusters", NewKey("clusters", nil).String())
}

func TestFetchServesFreshSnapshot(t *testing.T) {
	c, clock := newTestCache()
	key := NewKey("clusters", nil)
	var calls int32

	v, err := Fetch(context.Background(), c, key, counter(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	clock.Advance(10 * time.Second)
	v, err = Fetch(context.Background(), c, key, counter(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	clock.Advance(30 * time.Second)
	v, err = Fetch(context.Background(), c, key, counter(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestDifferentFiltersAreDifferentKeys(t *testing.T) {
	c, _ := newTestCache()
	var calls int32
	k1 := NewKey("documents", url.Values{"offset": {"0"}})
	k2 := NewKey("documents", url.Values{"offset": {"50"}})

	_, err := Fetch(context.Background(), c, k1, counter(&calls, "v"))
	require.NoError(t, err)
	_, err = Fetch(context.Background(), c, k2, counter(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("clusters", nil)
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Peek(key)
	assert.False(t, ok)

	v, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestConcurrentFetchesCoalesce(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("clusters", nil)
	release := make(chan struct{})
	var calls int32

	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, key, fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestInvalidateDropsResourceKeys(t *testing.T) {
	c, _ := newTestCache()
	var calls int32
	events := NewKey("ingest/events", url.Values{"limit": {"20"}})
	event := NewKey("ingest/events/3", nil)
	clusters := NewKey("clusters", nil)

	for _, k := range []Key{events, event, clusters} {
		_, err := Fetch(context.Background(), c, k, counter(&calls, "v"))
		require.NoError(t, err)
	}

	c.Invalidate("ingest/events")

	_, ok := c.Peek(events)
	assert.False(t, ok, "invalidated key should be gone")
	_, ok = c.Peek(event)
	assert.True(t, ok, "a different resource sharing the prefix stays")
	_, ok = c.Peek(clusters)
	assert.True(t, ok)
}

func TestInvalidateDiscardsInFlightResult(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("ingest/events", nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, _ := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "before-trigger", nil
		})
		done <- v
	}()

	<-started
	c.Invalidate("ingest/events")

	// A fetch issued after the invalidation does not join the stale flight.
	v, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		return "after-trigger", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after-trigger", v)

	close(release)
	assert.Equal(t, "before-trigger", <-done)

	e, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, "after-trigger", e.Data)
}

func TestClearDiscardsInFlightResult(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("clusters", nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, _ := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "previous-session", nil
		})
		done <- v
	}()

	<-started
	c.Clear()
	close(release)
	assert.Equal(t, "previous-session", <-done)

	_, ok := c.Peek(key)
	assert.False(t, ok, "snapshot fetched before Clear must not be cached")

	var calls int32
	v, err := Fetch(context.Background(), c, key, counter(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, int32(1), calls)
}

func staleFlags(c *Cache) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stale)
}

func TestInvalidateDropsStaleFlags(t *testing.T) {
	c, _ := newTestCache()
	var calls int32
	for _, k := range []Key{NewKey("clusters", nil), NewKey("documents", url.Values{"page": {"2"}})} {
		_, err := Fetch(context.Background(), c, k, counter(&calls, "v"))
		require.NoError(t, err)
	}
	c.MarkStale(func(string) bool { return true })
	require.Equal(t, 2, staleFlags(c))

	c.Invalidate("documents")
	assert.Equal(t, 1, staleFlags(c))
}

func TestEvictionDropsStaleFlag(t *testing.T) {
	c := NewCache(Options{StaleTime: time.Hour, GCTime: 20 * time.Millisecond})
	var calls int32
	_, err := Fetch(context.Background(), c, NewKey("clusters", nil), counter(&calls, "v"))
	require.NoError(t, err)
	c.MarkStale(func(string) bool { return true })
	require.Equal(t, 1, staleFlags(c))

	assert.Eventually(t, func() bool {
		c.store.DeleteExpired()
		return staleFlags(c) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMarkStaleKeepsSnapshotForPeek(t *testing.T) {
	c, _ := newTestCache()
	var calls int32
	clusters := NewKey("clusters", nil)
	search := NewKey("search", url.Values{"query": {"go"}})

	for _, k := range []Key{clusters, search} {
		_, err := Fetch(context.Background(), c, k, counter(&calls, "v"))
		require.NoError(t, err)
	}

	c.MarkStale(func(resource string) bool { return resource != "search" })

	assert.True(t, c.IsStale(clusters))
	assert.False(t, c.IsStale(search))
	_, ok := c.Peek(clusters)
	assert.True(t, ok)

	_, err := Fetch(context.Background(), c, clusters, counter(&calls, "v"))
	require.NoError(t, err)
	assert.False(t, c.IsStale(clusters))
}

func TestClear(t *testing.T) {
	c, _ := newTestCache()
	var calls int32
	key := NewKey("clusters", nil)
	_, err := Fetch(context.Background(), c, key, counter(&calls, "v"))
	require.NoError(t, err)

	c.Clear()
	_, ok := c.Peek(key)
	assert.False(t, ok)
}

func TestFetchTypeMismatch(t *testing.T) {
	c, _ := newTestCache()
	key := NewKey("clusters", nil)
	_, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)

	_, err = Fetch(context.Background(), c, key, func(context.Context) (int, error) { return 1, nil })
	assert.Error(t, err)
}
