// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/pdiddy/trendscope/internal/apiclient"
	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/query"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/internal/session"
	"github.com/pdiddy/trendscope/pkg/types"
)

// fakeSession is an in-memory session.Provider.
type fakeSession struct {
	mu       sync.Mutex
	status   session.Status
	stored   bool
	signIns  []string
	signOuts int
	checks   int
}

func (f *fakeSession) Status() session.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.status
}

func (f *fakeSession) statusChecks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func (f *fakeSession) User() (session.User, bool) {
	if f.Status() != session.StatusAuthenticated {
		return session.User{}, false
	}
	return session.User{Email: "ada@example.com"}, true
}

func (f *fakeSession) SignIn(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, token)
	f.status = session.StatusAuthenticated
	return nil
}

func (f *fakeSession) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.status = session.StatusUnauthenticated
	return nil
}

func (f *fakeSession) Token() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"})
}

func (f *fakeSession) Load(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = session.StatusUnauthenticated
	if f.stored {
		f.status = session.StatusAuthenticated
	}
	return nil
}

// backend routes test requests and counts hits per path.
type backend struct {
	mu     sync.Mutex
	hits   map[string]int
	routes map[string]func(n int, r *http.Request) (int, any)
}

func newBackend() *backend {
	b := &backend{hits: map[string]int{}, routes: map[string]func(int, *http.Request) (int, any){}}
	b.routes["GET /api/clusters"] = func(int, *http.Request) (int, any) {
		return 200, types.ClusterList{Clusters: []types.Cluster{{ID: 3, Label: "chips", DocumentCount: 12}}, Total: 1}
	}
	b.routes["GET /api/clusters/3"] = func(int, *http.Request) (int, any) {
		return 200, map[string]any{"id": 3, "label": "chips", "document_count": 12, "keywords": []any{}, "timeseries": []any{}}
	}
	b.routes["GET /api/insights"] = func(int, *http.Request) (int, any) {
		return 200, types.InsightList{}
	}
	b.routes["GET /api/documents"] = func(int, *http.Request) (int, any) {
		return 200, types.DocumentList{Documents: []types.Document{{Title: "a", Processed: true}}, Total: 120}
	}
	return b
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	key := r.Method + " " + r.URL.Path
	b.hits[key]++
	n := b.hits[key]
	h, ok := b.routes[key]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	status, body := h(n, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *backend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func newTestModel(t *testing.T, b *backend, sess *fakeSession, start string) *Model {
	t.Helper()
	ts := httptest.NewServer(b)
	t.Cleanup(ts.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: ts.URL + "/api", HTTPClient: ts.Client(), Tokens: sess.Token()})
	require.NoError(t, err)
	cache := query.NewCache(query.Options{StaleTime: time.Minute, GCTime: time.Hour})
	svc := resources.NewService(client, cache, resources.Options{
		IngestInterval:    time.Millisecond,
		DocumentsInterval: time.Millisecond,
		SearchRate:        1000,
	})
	return New(context.Background(), Deps{Service: svc, Session: sess, Debounce: time.Millisecond, PageSize: 50, Start: start})
}

// drain runs cmd and feeds the app's own messages back until the queue is
// empty. Widget internals such as cursor blinks are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "message loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case loadedMsg, pollMsg, debounceMsg, navigateMsg, sessionLoadedMsg, signedInMsg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	drain(t, m, cmd)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGuardRedirectsAndReturnsAfterSignIn(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusUnauthenticated}
	m := newTestModel(t, b, sess, "/clusters/3")

	drain(t, m, m.Init())
	assert.Equal(t, "/login?next=%2Fclusters%2F3", m.Path())
	assert.IsType(t, &loginView{}, m.current)
	assert.Zero(t, b.count("GET /api/clusters/3"), "protected view never mounted")

	require.NoError(t, sess.SignIn(context.Background(), "tok"))
	send(t, m, signedInMsg{view: m.viewID})

	assert.Equal(t, "/clusters/3", m.Path())
	require.IsType(t, &clusterDetailView{}, m.current)
	assert.True(t, m.current.(*clusterDetailView).detail.have)
	assert.Equal(t, 1, b.count("GET /api/clusters/3"))
}

func TestNavigateConsultsGuardOncePerHop(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/clusters")
	drain(t, m, m.Init())

	before := sess.statusChecks()
	drain(t, m, m.navigate("/insights", true))
	assert.Equal(t, "/insights", m.Path())
	assert.Equal(t, 1, sess.statusChecks()-before)

	// Signed in, /login redirects home: one check per hop.
	before = sess.statusChecks()
	drain(t, m, m.navigate("/login", false))
	assert.Equal(t, session.HomePath, m.Path())
	assert.Equal(t, 2, sess.statusChecks()-before)
}

func TestPlaceholderWhileSessionLoads(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusLoading, stored: true}
	m := newTestModel(t, b, sess, "/clusters")

	cmd := m.Init()
	assert.IsType(t, placeholderView{}, m.current)
	assert.Contains(t, m.View(), "Checking your session")

	drain(t, m, cmd)
	assert.Equal(t, "/clusters", m.Path())
	assert.IsType(t, &clustersView{}, m.current)
	assert.Equal(t, 1, b.count("GET /api/clusters"))
}

func TestUnauthorizedSignsOutAndRedirects(t *testing.T) {
	b := newBackend()
	b.routes["GET /api/clusters"] = func(int, *http.Request) (int, any) {
		return http.StatusUnauthorized, map[string]string{"detail": "token expired"}
	}
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/clusters")

	drain(t, m, m.Init())
	assert.Equal(t, present.SessionExpiredMessage, m.Notice())
	assert.Equal(t, 1, sess.signOuts)
	assert.Equal(t, "/login?next=%2Fclusters", m.Path())
	assert.Contains(t, m.View(), present.SessionExpiredMessage)
}

func TestIngestPollingStopsWhenSettled(t *testing.T) {
	b := newBackend()
	b.routes["GET /api/ingest/events"] = func(n int, _ *http.Request) (int, any) {
		status := types.StatusRunning
		if n >= 3 {
			status = types.StatusCompleted
		}
		return 200, types.IngestEventList{Events: []types.IngestEvent{{ID: 1, Status: status}}, Total: 1}
	}
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/ingest")

	drain(t, m, m.Init())
	assert.Equal(t, 3, b.count("GET /api/ingest/events"))
	v := m.current.(*ingestEventsView)
	assert.False(t, v.polling)
	assert.Equal(t, types.StatusCompleted, v.list.data.Events[0].Status)
}

func TestLeavingAViewDropsItsResults(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/clusters")

	pending := m.Init()
	oldID := m.viewID

	send(t, m, key("3"))
	require.Equal(t, "/insights", m.Path())
	require.NotEqual(t, oldID, m.viewID)

	drain(t, m, pending)
	assert.IsType(t, &insightsView{}, m.current)

	send(t, m, pollMsg{view: oldID})
	assert.IsType(t, &insightsView{}, m.current)
}

func TestSidebarKeysAndBack(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/clusters")
	drain(t, m, m.Init())

	send(t, m, key("2"))
	assert.Equal(t, "/documents", m.Path())
	assert.Contains(t, m.View(), "Showing 1–50 of 120 (page 1 of 3)")

	send(t, m, key("n"))
	v := m.current.(*documentsView)
	assert.Equal(t, 50, v.filter.Offset)

	send(t, m, key("esc"))
	assert.Equal(t, "/clusters", m.Path())
}

func TestFocusRevalidates(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/clusters")
	drain(t, m, m.Init())
	drain(t, m, m.navigate("/clusters", false))
	require.Equal(t, 1, b.count("GET /api/clusters"), "second mount is served from cache")

	send(t, m, tea.FocusMsg{})
	assert.Equal(t, 2, b.count("GET /api/clusters"))
}

func TestSearchDebouncesTyping(t *testing.T) {
	b := newBackend()
	b.routes["GET /api/search"] = func(_ int, r *http.Request) (int, any) {
		return 200, types.SearchResponse{Query: r.URL.Query().Get("query"), Results: []types.SearchResult{{Title: "GPU prices", SimilarityScore: 0.2}}, Total: 1}
	}
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/search")
	drain(t, m, m.Init())
	assert.Zero(t, b.count("GET /api/search"), "blank query is not sent")

	var cmds []tea.Cmd
	for _, r := range "gpu" {
		_, cmd := m.Update(key(string(r)))
		cmds = append(cmds, cmd)
	}
	assert.Equal(t, "/search", m.Path())
	for _, c := range cmds {
		drain(t, m, c)
	}

	assert.Equal(t, 1, b.count("GET /api/search"))
	v := m.current.(*searchView)
	require.True(t, v.results.have)
	assert.Equal(t, "gpu", v.results.data.Query)
	assert.Contains(t, m.View(), "GPU prices")
}

func TestTriggerShowsNewEvent(t *testing.T) {
	b := newBackend()
	var events []types.IngestEvent
	b.routes["POST /api/ingest/trigger"] = func(int, *http.Request) (int, any) {
		events = append(events, types.IngestEvent{ID: 41, Status: types.StatusPending})
		return 200, types.TriggerResponse{EventID: 41, Status: types.StatusPending}
	}
	b.routes["GET /api/ingest/events/41"] = func(int, *http.Request) (int, any) {
		return 200, types.IngestEvent{ID: 41, Status: types.StatusCompleted}
	}
	b.routes["GET /api/ingest/events"] = func(int, *http.Request) (int, any) {
		return 200, types.IngestEventList{Events: events, Total: len(events)}
	}
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/ingest")
	drain(t, m, m.Init())
	assert.Contains(t, m.View(), present.EmptyState("ingest events"))

	send(t, m, key("t"))
	require.Equal(t, "/ingest/new", m.Path())
	tv := m.current.(*triggerView)

	tv.in.source = types.SourceGitHub
	tv.in.repos = "golang/"
	drain(t, m, tv.submit())
	assert.Equal(t, []string{`repository "golang/" needs both an owner and a name`}, tv.problems)
	assert.Zero(t, b.count("POST /api/ingest/trigger"))

	tv.in.repos = "golang/go"
	drain(t, m, tv.submit())
	assert.Equal(t, "/ingest/41", m.Path())

	send(t, m, key("7"))
	v := m.current.(*ingestEventsView)
	require.Len(t, v.list.data.Events, 1, "list refetched after trigger")
	assert.Equal(t, int64(41), v.list.data.Events[0].ID)
}

func TestMatchRoutes(t *testing.T) {
	tests := []struct {
		path   string
		params map[string]string
		ok     bool
	}{
		{"/clusters", map[string]string{}, true},
		{"/clusters/12", map[string]string{"id": "12"}, true},
		{"/ingest/new", map[string]string{}, true},
		{"/ingest/9", map[string]string{"id": "9"}, true},
		{"/umap/clusters/2?x=1", map[string]string{"id": "2"}, true},
		{"/nope", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, req, ok := match(tt.path)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.params, req.params)
			}
		})
	}
}

func TestUnknownRouteFallsBackHome(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/nowhere")
	drain(t, m, m.Init())
	assert.Equal(t, session.HomePath, m.Path())
	assert.Contains(t, m.Notice(), "/nowhere")
}

func TestSignOutKey(t *testing.T) {
	b := newBackend()
	sess := &fakeSession{status: session.StatusAuthenticated}
	m := newTestModel(t, b, sess, "/clusters")
	drain(t, m, m.Init())

	send(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Equal(t, session.LoginPath, m.Path())
	assert.Equal(t, session.StatusUnauthenticated, sess.Status())
}
