// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trendscope/internal/apiclient"
	"github.com/pdiddy/trendscope/internal/ingest"
	"github.com/pdiddy/trendscope/internal/query"
	"github.com/pdiddy/trendscope/pkg/types"
)

// fakeBackend serves an in-memory ingest event log and counts hits per path.
type fakeBackend struct {
	mu     sync.Mutex
	events []types.IngestEvent
	hits   map[string]int
	posts  []map[string]any
	docs   func(n int) types.DocumentList
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{hits: make(map[string]int)}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clusters", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r)
		writeJSON(w, types.ClusterList{Clusters: []types.Cluster{{ID: 1, Label: "ai"}}, Total: 1})
	})
	mux.HandleFunc("GET /api/clusters/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r)
		writeJSON(w, map[string]any{"id": 3, "label": "chips", "keywords": []any{}, "timeseries": []any{}})
	})
	mux.HandleFunc("GET /api/documents", func(w http.ResponseWriter, r *http.Request) {
		n := b.hit(r)
		if b.docs != nil {
			writeJSON(w, b.docs(n))
			return
		}
		writeJSON(w, types.DocumentList{})
	})
	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r)
		writeJSON(w, types.SearchResponse{Query: r.URL.Query().Get("query")})
	})
	mux.HandleFunc("GET /api/ingest/events", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r)
		b.mu.Lock()
		list := types.IngestEventList{Events: append([]types.IngestEvent(nil), b.events...), Total: len(b.events)}
		b.mu.Unlock()
		writeJSON(w, list)
	})
	mux.HandleFunc("POST /api/ingest/trigger", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.posts = append(b.posts, body)
		id := int64(len(b.events) + 1)
		src := types.IngestSource(body["source"].(string))
		b.events = append([]types.IngestEvent{{ID: id, Source: &src, Status: types.StatusPending}}, b.events...)
		b.mu.Unlock()
		writeJSON(w, types.TriggerResponse{EventID: id, Status: types.StatusPending})
	})
	return mux
}

func (b *fakeBackend) hit(r *http.Request) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits[r.URL.Path]++
	return b.hits[r.URL.Path]
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T, b *fakeBackend) *Service {
	t.Helper()
	ts := httptest.NewServer(b.handler())
	t.Cleanup(ts.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: ts.URL + "/api", HTTPClient: ts.Client()})
	require.NoError(t, err)
	cache := query.NewCache(query.Options{StaleTime: time.Minute, GCTime: time.Hour})
	return NewService(client, cache, Options{SearchRate: 1000})
}

func TestReadsAreCached(t *testing.T) {
	b := newFakeBackend()
	svc := newTestService(t, b)
	ctx := context.Background()

	for range 3 {
		list, err := svc.Clusters(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ai", list.Clusters[0].Label)
	}
	assert.Equal(t, 1, b.count("/api/clusters"))

	detail, err := svc.Cluster(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "chips", detail.Label)
	assert.Equal(t, 1, b.count("/api/clusters/3"))
}

func TestTriggerInvalidatesEventList(t *testing.T) {
	b := newFakeBackend()
	svc := newTestService(t, b)
	ctx := context.Background()

	before, err := svc.IngestEvents(ctx, IngestEventFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, before.Events)

	resp, err := svc.TriggerIngest(ctx, ingest.TriggerRequest{Source: types.SourceHackerNews})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.EventID)

	after, err := svc.IngestEvents(ctx, IngestEventFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, after.Events, 1)
	assert.Equal(t, resp.EventID, after.Events[0].ID)
	assert.Equal(t, 2, b.count("/api/ingest/events"))

	require.Len(t, b.posts, 1)
	assert.Equal(t, "hackernews", b.posts[0]["source"])
	assert.Equal(t, "top", b.posts[0]["source_params"].(map[string]any)["story_type"])
}

func TestTriggerRejectsInvalidRequestWithoutPosting(t *testing.T) {
	b := newFakeBackend()
	svc := newTestService(t, b)

	_, err := svc.TriggerIngest(context.Background(), ingest.TriggerRequest{
		Source: types.SourceGitHub,
		GitHub: &ingest.GitHubParams{Repositories: []ingest.Repository{{Owner: "golang"}}},
	})
	var verr *ingest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, b.count("/api/ingest/trigger"))
}

func TestSearchBlankQueryMakesNoRequest(t *testing.T) {
	b := newFakeBackend()
	svc := newTestService(t, b)

	_, err := svc.Search(context.Background(), SearchParams{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, b.count("/api/search"))

	resp, err := svc.Search(context.Background(), SearchParams{Query: " gpu shortage "})
	require.NoError(t, err)
	assert.Equal(t, "gpu shortage", resp.Query)
}

func TestRevalidateSkipsSearch(t *testing.T) {
	b := newFakeBackend()
	svc := newTestService(t, b)
	ctx := context.Background()

	_, err := svc.Clusters(ctx)
	require.NoError(t, err)
	_, err = svc.Search(ctx, SearchParams{Query: "rust"})
	require.NoError(t, err)

	svc.Revalidate()

	_, err = svc.Clusters(ctx)
	require.NoError(t, err)
	_, err = svc.Search(ctx, SearchParams{Query: "rust"})
	require.NoError(t, err)

	assert.Equal(t, 2, b.count("/api/clusters"))
	assert.Equal(t, 1, b.count("/api/search"))
}

func TestWatchDocumentsStopsWhenProcessed(t *testing.T) {
	b := newFakeBackend()
	b.docs = func(n int) types.DocumentList {
		return types.DocumentList{
			Documents: []types.Document{{ID: strfmt.UUID("0b6f8f57-4b39-4f58-9f6b-2d4f1f0c9a11"), Processed: n >= 3}},
			Total:     1,
		}
	}
	svc := newTestService(t, b)

	var seen []bool
	err := svc.WatchDocuments(context.Background(), DocumentFilter{}, instant{}, func(l types.DocumentList, err error) {
		require.NoError(t, err)
		seen = append(seen, l.Documents[0].Processed)
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, seen)
}

func TestPredicates(t *testing.T) {
	assert.False(t, HasActiveEvents(types.IngestEventList{}))
	assert.False(t, HasActiveEvents(types.IngestEventList{Events: []types.IngestEvent{
		{Status: types.StatusCompleted}, {Status: types.StatusFailed},
	}}))
	for _, st := range []types.IngestStatus{types.StatusPending, types.StatusRunning, types.StatusProcessing} {
		assert.True(t, HasActiveEvents(types.IngestEventList{Events: []types.IngestEvent{{Status: st}}}), st)
	}

	assert.False(t, HasPendingDocuments(types.DocumentList{Documents: []types.Document{{Processed: true}}}))
	assert.True(t, HasPendingDocuments(types.DocumentList{Documents: []types.Document{{Processed: true}, {}}}))
}

func TestSearchHonorsContextWhileThrottled(t *testing.T) {
	b := newFakeBackend()
	svc := newTestService(t, b)
	svc.search.SetLimit(0.001)
	svc.search.SetBurst(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Search(ctx, SearchParams{Query: "slow"})
	require.Error(t, err)
	assert.Zero(t, b.count("/api/search"))
}

func TestCanceledPollReturnsContextError(t *testing.T) {
	b := newFakeBackend()
	b.docs = func(int) types.DocumentList {
		return types.DocumentList{Documents: []types.Document{{}}, Total: 1}
	}
	svc := newTestService(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32
	err := svc.WatchDocuments(ctx, DocumentFilter{}, never{}, func(types.DocumentList, error) {
		if ticks.Add(1) == 1 {
			cancel()
		}
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(1), ticks.Load())
}

type instant struct{}

func (instant) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type never struct{}

func (never) After(time.Duration) <-chan time.Time { return nil }
