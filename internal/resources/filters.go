// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resources

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-openapi/strfmt"

	"github.com/pdiddy/trendscope/pkg/types"
)

// DocumentFilter narrows GET /documents. Nil and zero fields are omitted.
type DocumentFilter struct {
	ClusterID *int64
	Processed *bool
	Source    string
	Limit     int
	Offset    int
}

func (f DocumentFilter) Values() url.Values {
	v := url.Values{}
	setInt64(v, "cluster_id", f.ClusterID)
	if f.Processed != nil {
		v.Set("processed", strconv.FormatBool(*f.Processed))
	}
	setString(v, "source", f.Source)
	setPage(v, f.Limit, f.Offset)
	return v
}

// InsightFilter optionally scopes insights to one cluster.
type InsightFilter struct {
	ClusterID *int64
}

func (f InsightFilter) Values() url.Values {
	v := url.Values{}
	setInt64(v, "cluster_id", f.ClusterID)
	return v
}

// AnomalyFilter narrows GET /anomalies by cluster, type and date range.
type AnomalyFilter struct {
	ClusterID *int64
	Type      string
	StartDate *strfmt.Date
	EndDate   *strfmt.Date
	Limit     int
	Offset    int
}

func (f AnomalyFilter) Values() url.Values {
	v := url.Values{}
	setInt64(v, "cluster_id", f.ClusterID)
	setString(v, "type", f.Type)
	if f.StartDate != nil {
		v.Set("start_date", f.StartDate.String())
	}
	if f.EndDate != nil {
		v.Set("end_date", f.EndDate.String())
	}
	setPage(v, f.Limit, f.Offset)
	return v
}

// SearchParams is a semantic search request.
type SearchParams struct {
	Query               string
	SimilarityThreshold *float64
	Limit               int
}

// Enabled reports whether the query has anything to search for.
func (p SearchParams) Enabled() bool {
	return strings.TrimSpace(p.Query) != ""
}

func (p SearchParams) Values() url.Values {
	v := url.Values{}
	setString(v, "query", strings.TrimSpace(p.Query))
	if p.SimilarityThreshold != nil {
		v.Set("similarity_threshold", strconv.FormatFloat(*p.SimilarityThreshold, 'f', -1, 64))
	}
	setPage(v, p.Limit, 0)
	return v
}

// UMAPFilter caps the number of projected points.
type UMAPFilter struct {
	Limit int
}

func (f UMAPFilter) Values() url.Values {
	v := url.Values{}
	setPage(v, f.Limit, 0)
	return v
}

// IngestEventFilter narrows GET /ingest/events.
type IngestEventFilter struct {
	Status types.IngestStatus
	Limit  int
	Offset int
}

func (f IngestEventFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "status", string(f.Status))
	setPage(v, f.Limit, f.Offset)
	return v
}

func setString(v url.Values, name, s string) {
	if s != "" {
		v.Set(name, s)
	}
}

func setInt64(v url.Values, name string, n *int64) {
	if n != nil {
		v.Set(name, strconv.FormatInt(*n, 10))
	}
}

func setPage(v url.Values, limit, offset int) {
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		v.Set("offset", strconv.Itoa(offset))
	}
}
