// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"cmp"
	"slices"

	"github.com/pdiddy/trendscope/pkg/types"
)

// These sorts reorder only the page already fetched. The backend has no sort
// parameter, so ordering across pages is whatever the backend returned.

// ClusterSort names a cluster ordering.
type ClusterSort string

const (
	SortByDocuments ClusterSort = "documents"
	SortByTrending  ClusterSort = "trending"
	SortBySentiment ClusterSort = "sentiment"
	SortByLabel     ClusterSort = "label"
)

// SortClusters returns a sorted copy. Unknown scores sort last.
func SortClusters(in []types.Cluster, by ClusterSort) []types.Cluster {
	out := slices.Clone(in)
	switch by {
	case SortByTrending:
		slices.SortStableFunc(out, func(a, b types.Cluster) int { return cmpNullableDesc(a.TrendingScore, b.TrendingScore) })
	case SortBySentiment:
		slices.SortStableFunc(out, func(a, b types.Cluster) int { return cmpNullableDesc(a.AvgSentiment, b.AvgSentiment) })
	case SortByLabel:
		slices.SortStableFunc(out, func(a, b types.Cluster) int { return cmp.Compare(a.DisplayName(), b.DisplayName()) })
	default:
		slices.SortStableFunc(out, func(a, b types.Cluster) int { return cmp.Compare(b.DocumentCount, a.DocumentCount) })
	}
	return out
}

// SortAnomalies returns a copy ordered by score, highest first.
func SortAnomalies(in []types.Anomaly) []types.Anomaly {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b types.Anomaly) int { return cmp.Compare(b.Score, a.Score) })
	return out
}

// SortSearchResults returns a copy ordered by similarity, most similar first.
func SortSearchResults(in []types.SearchResult) []types.SearchResult {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b types.SearchResult) int { return cmp.Compare(a.SimilarityScore, b.SimilarityScore) })
	return out
}

func cmpNullableDesc(a, b *float64) int {
	av, aok := known(a)
	bv, bok := known(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return cmp.Compare(bv, av)
}
