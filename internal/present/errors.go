// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"errors"

	"github.com/pdiddy/trendscope/internal/apiclient"
)

// ConnectivityMessage is shown for requests that never reached the backend.
const ConnectivityMessage = "Unable to reach the analytics service. Check your connection and try again."

// SessionExpiredMessage is the notice shown when the backend rejects the session.
const SessionExpiredMessage = "Your session has expired. Please sign in again."

// LoadError renders a failed load of resource for the view that asked for it.
func LoadError(resource string, err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return SessionExpiredMessage
	}
	if errors.Is(err, apiclient.ErrNetwork) {
		return ConnectivityMessage
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return "Failed to load " + resource + ": " + apiErr.Message
	}
	return "Failed to load " + resource + ": " + err.Error()
}

var emptyGuidance = map[string]string{
	"clusters":      "No clusters yet. Trigger an ingestion run and wait for clustering to finish.",
	"documents":     "No documents match these filters. Clear filters or ingest a source.",
	"insights":      "No insights have been generated for this selection yet.",
	"anomalies":     "No anomalies detected in this range. Widen the date range or pick another cluster.",
	"search":        "No matching documents. Try broader terms or raise the similarity threshold.",
	"ingest events": "No ingestion runs yet. Trigger one to start collecting documents.",
	"projection":    "No embeddings to plot yet. Documents appear here once they are processed.",
}

// EmptyState returns the guidance shown when resource loaded with no items.
func EmptyState(resource string) string {
	if g, ok := emptyGuidance[resource]; ok {
		return g
	}
	return "Nothing to show yet."
}
