// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"

	"github.com/go-openapi/strfmt"
)

// DocumentSentiment is the sentiment sub-object attached to a processed document.
type DocumentSentiment struct {
	Score      *float64 `json:"score" yaml:"score"`
	Label      string   `json:"label,omitempty" yaml:"label,omitempty"`
	Confidence *float64 `json:"confidence" yaml:"confidence"`
}

// Document is the list form of an ingested document.
type Document struct {
	ID         strfmt.UUID        `json:"id" yaml:"id"`
	SourcePath string             `json:"source_path" yaml:"source_path"`
	Title      string             `json:"title" yaml:"title"`
	Source     *string            `json:"source,omitempty" yaml:"source,omitempty"`
	Processed  bool               `json:"processed" yaml:"processed"`
	CreatedAt  *strfmt.DateTime   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Sentiment  *DocumentSentiment `json:"sentiment" yaml:"sentiment"`
}

// SourceTag returns the explicit source tag, or "" when the backend sent none.
func (d Document) SourceTag() string {
	if d.Source == nil {
		return ""
	}
	return *d.Source
}

// DocumentList is the GET /documents envelope.
type DocumentList struct {
	Documents []Document `json:"documents" yaml:"documents"`
	Total     int        `json:"total" yaml:"total"`
}

// ClusterMembership links a document to a cluster.
type ClusterMembership struct {
	ClusterID    int64    `json:"cluster_id" yaml:"cluster_id"`
	ClusterLabel string   `json:"cluster_label,omitempty" yaml:"cluster_label,omitempty"`
	Probability  *float64 `json:"probability" yaml:"probability"`
}

// DocumentDetail is the GET /documents/{id} response.
type DocumentDetail struct {
	Document           `yaml:",inline"`
	RawText            string              `json:"raw_text" yaml:"raw_text"`
	ClusterMemberships []ClusterMembership `json:"cluster_memberships" yaml:"cluster_memberships"`
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
