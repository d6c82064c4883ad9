// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "github.com/go-openapi/strfmt"

// IngestSource identifies the connector an ingestion job runs against.
type IngestSource string

const (
	SourceRSS        IngestSource = "rss"
	SourceHackerNews IngestSource = "hackernews"
	SourceGitHub     IngestSource = "github"
)

// IngestSources lists the sources a job can be triggered for, in menu order.
var IngestSources = []IngestSource{SourceRSS, SourceHackerNews, SourceGitHub}

// Valid reports whether s is one of the known sources.
func (s IngestSource) Valid() bool {
	switch s {
	case SourceRSS, SourceHackerNews, SourceGitHub:
		return true
	}
	return false
}

// IngestStatus is the lifecycle state of an ingestion job.
type IngestStatus string

const (
	StatusPending    IngestStatus = "pending"
	StatusRunning    IngestStatus = "running"
	StatusProcessing IngestStatus = "processing"
	StatusCompleted  IngestStatus = "completed"
	StatusFailed     IngestStatus = "failed"
)

// IsTerminal reports whether the job has stopped changing.
func (s IngestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IngestEvent is a record of one background ingestion job.
type IngestEvent struct {
	ID                int64            `json:"id" yaml:"id"`
	Source            *IngestSource    `json:"source" yaml:"source"`
	Status            IngestStatus     `json:"status" yaml:"status"`
	StartedAt         *strfmt.DateTime `json:"started_at" yaml:"started_at"`
	CompletedAt       *strfmt.DateTime `json:"completed_at" yaml:"completed_at"`
	DocumentsIngested *int             `json:"documents_ingested,omitempty" yaml:"documents_ingested,omitempty"`
	ErrorMessage      *string          `json:"error_message" yaml:"error_message"`
	SourceParams      map[string]any   `json:"source_params,omitempty" yaml:"source_params,omitempty"`
}

// SourceName returns the source as text, or "" when the backend sent null.
func (e IngestEvent) SourceName() string {
	if e.Source == nil {
		return ""
	}
	return string(*e.Source)
}

// IngestEventList is the GET /ingest/events envelope.
type IngestEventList struct {
	Events []IngestEvent `json:"events" yaml:"events"`
	Total  int           `json:"total" yaml:"total"`
}

// TriggerResponse is returned by POST /ingest/trigger.
type TriggerResponse struct {
	EventID int64        `json:"event_id" yaml:"event_id"`
	Status  IngestStatus `json:"status" yaml:"status"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
}
