// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/pkg/types"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func sampleClusters() types.ClusterList {
	return types.ClusterList{
		Clusters: []types.Cluster{
			{ID: 1, Label: "quiet", DocumentCount: 3, TrendingScore: f64(0.2)},
			{ID: 2, Label: "hot topic", DocumentCount: 40, TrendingScore: f64(0.9), AvgSentiment: f64(0.5), Momentum: f64(0.3)},
		},
		Total: 2,
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, "json": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestClustersTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWithColor(&buf, FormatTable, false).Clusters(sampleClusters(), present.SortByTrending))

	out := buf.String()
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "Label")
	assert.Contains(t, lines[2], "hot topic", "trending sort puts the hot cluster first")
	assert.Contains(t, lines[2], "Hot")
	assert.Contains(t, lines[2], "Very Positive")
	assert.Contains(t, out, "2 clusters")
	assert.NotContains(t, out, "\x1b[", "no escape codes without a terminal")
}

func TestColoredOutputUsesEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWithColor(&buf, FormatTable, true).Clusters(sampleClusters(), present.SortByLabel))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestEncodedFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON).Clusters(sampleClusters(), present.SortByLabel))
	var decoded types.ClusterList
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "quiet", decoded.Clusters[0].Label, "encoded output keeps backend order")

	buf.Reset()
	require.NoError(t, New(&buf, FormatYAML).IngestEvents(types.IngestEventList{
		Events: []types.IngestEvent{{ID: 9, Status: types.StatusRunning}},
		Total:  1,
	}))
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc["total"])
}

func TestEmptyStates(t *testing.T) {
	var buf bytes.Buffer
	p := NewWithColor(&buf, FormatTable, false)
	require.NoError(t, p.Documents(types.DocumentList{}, present.Paginate(0, 50, 0)))
	require.NoError(t, p.Search(types.SearchResponse{Query: "x"}))
	assert.Contains(t, buf.String(), present.EmptyState("documents"))
	assert.Contains(t, buf.String(), present.EmptyState("search"))
}

func TestDocumentsFooterShowsPage(t *testing.T) {
	var buf bytes.Buffer
	list := types.DocumentList{Documents: []types.Document{{Title: "A", SourcePath: "https://news.ycombinator.com/item?id=1"}}, Total: 97}
	require.NoError(t, NewWithColor(&buf, FormatTable, false).Documents(list, present.Paginate(50, 50, 97)))
	assert.Contains(t, buf.String(), "Showing 51–97 of 97 (page 2 of 2)")
	assert.Contains(t, buf.String(), "hackernews")
	assert.Contains(t, buf.String(), "pending")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
}

func TestScatter(t *testing.T) {
	pts := []types.UMAPPoint{
		{X: 0, Y: 0, ClusterID: i64(0)},
		{X: 10, Y: 10, ClusterID: i64(1)},
		{X: 10, Y: 10, ClusterID: i64(2)},
		{X: 5, Y: 0},
	}
	got := Scatter(pts, 3, 2)
	assert.Equal(t, "  *\nA.\n", got)
}

func TestMarker(t *testing.T) {
	assert.Equal(t, '.', Marker(nil))
	assert.Equal(t, '.', Marker(i64(-1)))
	assert.Equal(t, 'C', Marker(i64(2)))
	assert.Equal(t, 'A', Marker(i64(int64(len(markers)))))
}
