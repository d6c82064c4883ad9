// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"strings"

	"github.com/pdiddy/trendscope/pkg/types"
)

// SourceUnknown is reported when neither a tag nor the path identifies a source.
const SourceUnknown = "unknown"

// InferSource returns the explicit tag when there is one, otherwise guesses
// the source from substrings of the document's path or URL.
func InferSource(tag, path string) string {
	if t := strings.TrimSpace(strings.ToLower(tag)); t != "" {
		return t
	}
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "ycombinator"):
		return string(types.SourceHackerNews)
	case strings.Contains(p, "github.com"):
		return string(types.SourceGitHub)
	case strings.Contains(p, "/feed"), strings.Contains(p, ".xml"), strings.Contains(p, "/rss"):
		return string(types.SourceRSS)
	}
	return SourceUnknown
}

// DocumentSource is InferSource applied to a document.
func DocumentSource(d types.Document) string {
	return InferSource(d.SourceTag(), d.SourcePath)
}

// StatusTone returns the coloring group for an ingestion status.
func StatusTone(s types.IngestStatus) Tone {
	switch s {
	case types.StatusCompleted:
		return TonePositive
	case types.StatusFailed:
		return ToneNegative
	case types.StatusPending:
		return ToneMuted
	}
	return ToneWarning
}
