// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resources exposes one cached accessor per backend resource and
// the polling policies that keep live views current.
package resources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/trendscope/internal/apiclient"
	"github.com/pdiddy/trendscope/internal/ingest"
	"github.com/pdiddy/trendscope/internal/query"
	"github.com/pdiddy/trendscope/pkg/types"
)

// Cache resource names. Detail resources carry their id as a parameter so
// Invalidate on the name drops every id at once.
const (
	ResClusters      = "clusters"
	ResCluster       = "cluster"
	ResDocuments     = "documents"
	ResDocument      = "document"
	ResInsights      = "insights"
	ResAnomalies     = "anomalies"
	ResSearch        = "search"
	ResUMAPDocuments = "umap/documents"
	ResUMAPCluster   = "umap/cluster"
	ResIngestEvents  = "ingest/events"
	ResIngestEvent   = "ingest/event"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("search query is empty")

// API is the subset of *apiclient.Client the service uses.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any, opts ...apiclient.RequestOption) error
	Post(ctx context.Context, path string, body any, out any, opts ...apiclient.RequestOption) error
}

// Options tunes polling and search throttling. Zero values take defaults.
type Options struct {
	IngestInterval    time.Duration
	DocumentsInterval time.Duration
	SearchRate        float64
	Logger            *zap.Logger
}

// Service reads and writes backend resources through a shared cache.
type Service struct {
	api    API
	cache  *query.Cache
	search *rate.Limiter
	opts   Options
	log    *zap.Logger
}

// NewService wires api and cache together.
func NewService(api API, cache *query.Cache, opts Options) *Service {
	if opts.IngestInterval <= 0 {
		opts.IngestInterval = 5 * time.Second
	}
	if opts.DocumentsInterval <= 0 {
		opts.DocumentsInterval = 5 * time.Second
	}
	if opts.SearchRate <= 0 {
		opts.SearchRate = 2
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:    api,
		cache:  cache,
		search: rate.NewLimiter(rate.Limit(opts.SearchRate), 1),
		opts:   opts,
		log:    log.Named("resources"),
	}
}

// Cache returns the shared cache, for Peek and invalidation by callers.
func (s *Service) Cache() *query.Cache { return s.cache }

func idParam(id string) url.Values { return url.Values{"id": {id}} }

func get[T any](ctx context.Context, s *Service, key query.Key, path, endpoint string, params url.Values) (T, error) {
	return query.Fetch(ctx, s.cache, key, loader[T](s, path, endpoint, params))
}

func reload[T any](ctx context.Context, s *Service, key query.Key, path, endpoint string, params url.Values) (T, error) {
	return query.Reload(ctx, s.cache, key, loader[T](s, path, endpoint, params))
}

func loader[T any](s *Service, path, endpoint string, params url.Values) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var out T
		err := s.api.Get(ctx, path, params, &out, apiclient.Endpoint(endpoint))
		return out, err
	}
}

// ClustersKey is the cache key of the cluster list.
func ClustersKey() query.Key { return query.NewKey(ResClusters, nil) }

// Clusters fetches GET /clusters.
func (s *Service) Clusters(ctx context.Context) (types.ClusterList, error) {
	return get[types.ClusterList](ctx, s, ClustersKey(), "/clusters", "/clusters", nil)
}

// Cluster fetches GET /clusters/{id} with the cluster's documents.
func (s *Service) Cluster(ctx context.Context, id int64) (types.ClusterDetail, error) {
	sid := strconv.FormatInt(id, 10)
	key := query.NewKey(ResCluster, idParam(sid))
	return get[types.ClusterDetail](ctx, s, key, "/clusters/"+sid, "/clusters/{id}", nil)
}

// DocumentsKey is the cache key for f.
func DocumentsKey(f DocumentFilter) query.Key { return query.NewKey(ResDocuments, f.Values()) }

// Documents fetches GET /documents filtered and paged by f.
func (s *Service) Documents(ctx context.Context, f DocumentFilter) (types.DocumentList, error) {
	return get[types.DocumentList](ctx, s, DocumentsKey(f), "/documents", "/documents", f.Values())
}

// ReloadDocuments bypasses a fresh snapshot; it backs the documents poll.
func (s *Service) ReloadDocuments(ctx context.Context, f DocumentFilter) (types.DocumentList, error) {
	return reload[types.DocumentList](ctx, s, DocumentsKey(f), "/documents", "/documents", f.Values())
}

// Document fetches GET /documents/{id}.
func (s *Service) Document(ctx context.Context, id strfmt.UUID) (types.DocumentDetail, error) {
	key := query.NewKey(ResDocument, idParam(id.String()))
	return get[types.DocumentDetail](ctx, s, key, "/documents/"+url.PathEscape(id.String()), "/documents/{id}", nil)
}

// Insights fetches GET /insights.
func (s *Service) Insights(ctx context.Context, f InsightFilter) (types.InsightList, error) {
	key := query.NewKey(ResInsights, f.Values())
	return get[types.InsightList](ctx, s, key, "/insights", "/insights", f.Values())
}

// Anomalies fetches GET /anomalies within f's date range.
func (s *Service) Anomalies(ctx context.Context, f AnomalyFilter) (types.AnomalyList, error) {
	key := query.NewKey(ResAnomalies, f.Values())
	return get[types.AnomalyList](ctx, s, key, "/anomalies", "/anomalies", f.Values())
}

// Search runs a semantic search. Blank queries are rejected without a
// request; live requests are rate limited, cache hits are not.
func (s *Service) Search(ctx context.Context, p SearchParams) (types.SearchResponse, error) {
	if !p.Enabled() {
		return types.SearchResponse{}, ErrEmptyQuery
	}
	key := query.NewKey(ResSearch, p.Values())
	return query.Fetch(ctx, s.cache, key, func(ctx context.Context) (types.SearchResponse, error) {
		var out types.SearchResponse
		if err := s.search.Wait(ctx); err != nil {
			return out, err
		}
		err := s.api.Get(ctx, "/search", p.Values(), &out, apiclient.Endpoint("/search"))
		return out, err
	})
}

// UMAPDocuments fetches GET /umap/documents.
func (s *Service) UMAPDocuments(ctx context.Context, f UMAPFilter) (types.UMAPProjection, error) {
	key := query.NewKey(ResUMAPDocuments, f.Values())
	return get[types.UMAPProjection](ctx, s, key, "/umap/documents", "/umap/documents", f.Values())
}

// UMAPCluster fetches GET /umap/clusters/{id}.
func (s *Service) UMAPCluster(ctx context.Context, id int64) (types.UMAPProjection, error) {
	sid := strconv.FormatInt(id, 10)
	key := query.NewKey(ResUMAPCluster, idParam(sid))
	return get[types.UMAPProjection](ctx, s, key, "/umap/clusters/"+sid, "/umap/clusters/{id}", nil)
}

// IngestEventsKey is the cache key for f.
func IngestEventsKey(f IngestEventFilter) query.Key { return query.NewKey(ResIngestEvents, f.Values()) }

// IngestEvents fetches GET /ingest/events.
func (s *Service) IngestEvents(ctx context.Context, f IngestEventFilter) (types.IngestEventList, error) {
	return get[types.IngestEventList](ctx, s, IngestEventsKey(f), "/ingest/events", "/ingest/events", f.Values())
}

// ReloadIngestEvents bypasses a fresh snapshot; it backs the events poll.
func (s *Service) ReloadIngestEvents(ctx context.Context, f IngestEventFilter) (types.IngestEventList, error) {
	return reload[types.IngestEventList](ctx, s, IngestEventsKey(f), "/ingest/events", "/ingest/events", f.Values())
}

func ingestEventKey(id int64) (query.Key, string) {
	sid := strconv.FormatInt(id, 10)
	return query.NewKey(ResIngestEvent, idParam(sid)), "/ingest/events/" + sid
}

// IngestEvent fetches GET /ingest/events/{id}.
func (s *Service) IngestEvent(ctx context.Context, id int64) (types.IngestEvent, error) {
	key, path := ingestEventKey(id)
	return get[types.IngestEvent](ctx, s, key, path, "/ingest/events/{id}", nil)
}

// ReloadIngestEvent refetches GET /ingest/events/{id}; it backs the event poll.
func (s *Service) ReloadIngestEvent(ctx context.Context, id int64) (types.IngestEvent, error) {
	key, path := ingestEventKey(id)
	return reload[types.IngestEvent](ctx, s, key, path, "/ingest/events/{id}", nil)
}

// TriggerIngest validates req, starts a job and invalidates the event list
// so the next read includes it.
func (s *Service) TriggerIngest(ctx context.Context, req ingest.TriggerRequest) (types.TriggerResponse, error) {
	var out types.TriggerResponse
	if err := req.Validate(); err != nil {
		return out, err
	}
	if err := s.api.Post(ctx, "/ingest/trigger", req.Payload(), &out, apiclient.Endpoint("/ingest/trigger")); err != nil {
		return out, fmt.Errorf("triggering %s ingestion: %w", req.Source, err)
	}
	s.cache.Invalidate(ResIngestEvents)
	s.log.Info("ingestion triggered",
		zap.String("source", string(req.Source)),
		zap.Int64("event_id", out.EventID),
		zap.String("status", string(out.Status)))
	return out, nil
}

// Revalidate marks every snapshot except search results stale, as when the
// dashboard regains focus.
func (s *Service) Revalidate() {
	s.cache.MarkStale(func(resource string) bool { return resource != ResSearch })
}

// HasActiveEvents reports whether any event in list is still running.
func HasActiveEvents(list types.IngestEventList) bool {
	for _, e := range list.Events {
		if !e.Status.IsTerminal() {
			return true
		}
	}
	return false
}

// HasPendingDocuments reports whether any document in list awaits processing.
func HasPendingDocuments(list types.DocumentList) bool {
	for _, d := range list.Documents {
		if !d.Processed {
			return true
		}
	}
	return false
}

// IngestEventsPolicy polls the event list while a job is active.
func (s *Service) IngestEventsPolicy() query.Refetch[types.IngestEventList] {
	return query.Refetch[types.IngestEventList]{Interval: s.opts.IngestInterval, Active: HasActiveEvents}
}

// IngestEventPolicy polls one event until it reaches a terminal status.
func (s *Service) IngestEventPolicy() query.Refetch[types.IngestEvent] {
	return query.Refetch[types.IngestEvent]{
		Interval: s.opts.IngestInterval,
		Active:   func(e types.IngestEvent) bool { return !e.Status.IsTerminal() },
	}
}

// DocumentsPolicy polls the document list while some are unprocessed.
func (s *Service) DocumentsPolicy() query.Refetch[types.DocumentList] {
	return query.Refetch[types.DocumentList]{Interval: s.opts.DocumentsInterval, Active: HasPendingDocuments}
}

// WatchIngestEvents emits the event list, then again every interval while
// a job is active. It returns when the list settles or ctx ends.
func (s *Service) WatchIngestEvents(ctx context.Context, f IngestEventFilter, sched query.Scheduler, emit func(types.IngestEventList, error)) error {
	p := query.Poller[types.IngestEventList]{Resource: ResIngestEvents, Policy: s.IngestEventsPolicy(), Scheduler: sched}
	return p.Run(ctx, func(ctx context.Context) (types.IngestEventList, error) {
		return s.ReloadIngestEvents(ctx, f)
	}, emit)
}

// WatchIngestEvent follows one job until it completes or fails.
func (s *Service) WatchIngestEvent(ctx context.Context, id int64, sched query.Scheduler, emit func(types.IngestEvent, error)) error {
	p := query.Poller[types.IngestEvent]{Resource: ResIngestEvent, Policy: s.IngestEventPolicy(), Scheduler: sched}
	return p.Run(ctx, func(ctx context.Context) (types.IngestEvent, error) {
		return s.ReloadIngestEvent(ctx, id)
	}, emit)
}

// WatchDocuments follows a document page until every document is processed.
func (s *Service) WatchDocuments(ctx context.Context, f DocumentFilter, sched query.Scheduler, emit func(types.DocumentList, error)) error {
	p := query.Poller[types.DocumentList]{Resource: ResDocuments, Policy: s.DocumentsPolicy(), Scheduler: sched}
	return p.Run(ctx, func(ctx context.Context) (types.DocumentList, error) {
		return s.ReloadDocuments(ctx, f)
	}, emit)
}
