// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "github.com/go-openapi/strfmt"

// Insight is a generated observation about a cluster.
type Insight struct {
	ID          int64           `json:"id" yaml:"id"`
	ClusterID   int64           `json:"cluster_id" yaml:"cluster_id"`
	InsightText string          `json:"insight_text" yaml:"insight_text"`
	Confidence  *float64        `json:"confidence" yaml:"confidence"`
	GeneratedAt strfmt.DateTime `json:"generated_at" yaml:"generated_at"`
}

// InsightList is the GET /insights envelope.
type InsightList struct {
	Insights []Insight `json:"insights" yaml:"insights"`
	Total    int       `json:"total" yaml:"total"`
}

// Anomaly is a backend-flagged deviation in a cluster's time series.
type Anomaly struct {
	ID          int64          `json:"id" yaml:"id"`
	ClusterID   int64          `json:"cluster_id" yaml:"cluster_id"`
	AnomalyDate strfmt.Date    `json:"anomaly_date" yaml:"anomaly_date"`
	Score       float64        `json:"score" yaml:"score"`
	Type        string         `json:"type" yaml:"type"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// AnomalyList is the GET /anomalies envelope.
type AnomalyList struct {
	Anomalies []Anomaly `json:"anomalies" yaml:"anomalies"`
	Total     int       `json:"total" yaml:"total"`
}

// SearchResult is a document matched by semantic search.
type SearchResult struct {
	ID         strfmt.UUID      `json:"id" yaml:"id"`
	Title      string           `json:"title" yaml:"title"`
	SourcePath string           `json:"source_path" yaml:"source_path"`
	CreatedAt  *strfmt.DateTime `json:"created_at,omitempty" yaml:"created_at,omitempty"`

	// SimilarityScore is a distance in [0, 2]; lower is more similar.
	SimilarityScore float64 `json:"similarity_score" yaml:"similarity_score"`
}

// SearchResponse is the GET /search envelope.
type SearchResponse struct {
	Query   string         `json:"query,omitempty" yaml:"query,omitempty"`
	Results []SearchResult `json:"results" yaml:"results"`
	Total   int            `json:"total" yaml:"total"`
}

// UMAPPoint is the 2D projection of one document embedding.
type UMAPPoint struct {
	DocumentID strfmt.UUID `json:"document_id" yaml:"document_id"`
	X          float64     `json:"x" yaml:"x"`
	Y          float64     `json:"y" yaml:"y"`
	ClusterID  *int64      `json:"cluster_id" yaml:"cluster_id"`
	Title      string      `json:"title,omitempty" yaml:"title,omitempty"`
}

// UMAPProjection is the GET /umap/documents and /umap/clusters/{id} envelope.
type UMAPProjection struct {
	Points []UMAPPoint `json:"points" yaml:"points"`
	Total  int         `json:"total" yaml:"total"`
}
