// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the backend records trendscope reads and the
// configuration shared by the CLI and the dashboard.
//
// Every record is a read-only projection of backend state. Nullable numeric
// fields are pointers: nil means "unknown" and must never be read as zero.
package types

import "github.com/go-openapi/strfmt"

// Cluster is a backend-computed group of semantically related documents,
// as returned by GET /clusters.
type Cluster struct {
	ID            int64    `json:"id" yaml:"id"`
	Label         string   `json:"label" yaml:"label"`
	Summary       string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	DocumentCount int      `json:"document_count" yaml:"document_count"`
	TopKeywords   []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`

	// AvgSentiment is in [-1, 1].
	AvgSentiment *float64 `json:"avg_sentiment" yaml:"avg_sentiment"`

	// TrendingScore is in [0, 1].
	TrendingScore *float64 `json:"trending_score" yaml:"trending_score"`

	// Momentum is the rate of change of the cluster's mention count.
	Momentum *float64 `json:"momentum" yaml:"momentum"`

	CreatedAt *strfmt.DateTime `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *strfmt.DateTime `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// DisplayName returns the label, or a placeholder built from the ID.
func (c Cluster) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return "Cluster " + itoa(c.ID)
}

// ClusterList is the GET /clusters envelope.
type ClusterList struct {
	Clusters []Cluster `json:"clusters" yaml:"clusters"`
	Total    int       `json:"total" yaml:"total"`
}

// Keyword is a weighted term describing a cluster.
type Keyword struct {
	Keyword string  `json:"keyword" yaml:"keyword"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// TimeseriesPoint is one day of cluster activity.
type TimeseriesPoint struct {
	Date          strfmt.Date `json:"date" yaml:"date"`
	DocumentCount int         `json:"document_count" yaml:"document_count"`
	AvgSentiment  *float64    `json:"avg_sentiment" yaml:"avg_sentiment"`
}

// ClusterDetail is the GET /clusters/{id} response.
type ClusterDetail struct {
	Cluster    `yaml:",inline"`
	Keywords   []Keyword         `json:"keywords" yaml:"keywords"`
	Timeseries []TimeseriesPoint `json:"timeseries" yaml:"timeseries"`
	Insights   []Insight         `json:"insights" yaml:"insights"`
	Anomalies  []Anomaly         `json:"anomalies" yaml:"anomalies"`
}
