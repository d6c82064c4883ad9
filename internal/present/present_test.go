// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/trendscope/internal/apiclient"
	"github.com/pdiddy/trendscope/pkg/types"
)

func f(v float64) *float64 { return &v }

func TestSentimentOf(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  Sentiment
	}{
		{"nil", nil, SentimentNoData},
		{"nan", f(math.NaN()), SentimentNoData},
		{"strongly positive", f(0.9), SentimentVeryPositive},
		{"just above 0.3", f(0.31), SentimentVeryPositive},
		{"exactly 0.3", f(0.30), SentimentPositive},
		{"just above 0.1", f(0.11), SentimentPositive},
		{"exactly 0.1", f(0.1), SentimentNeutral},
		{"zero", f(0), SentimentNeutral},
		{"exactly -0.1", f(-0.1), SentimentNeutral},
		{"just below -0.1", f(-0.11), SentimentNegative},
		{"exactly -0.3", f(-0.3), SentimentNegative},
		{"just below -0.3", f(-0.31), SentimentVeryNegative},
		{"out of range", f(-7), SentimentVeryNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SentimentOf(tt.score))
		})
	}
}

func TestSentimentIsMonotonic(t *testing.T) {
	order := map[Sentiment]int{
		SentimentVeryNegative: 0, SentimentNegative: 1, SentimentNeutral: 2,
		SentimentPositive: 3, SentimentVeryPositive: 4,
	}
	prev := -1
	for s := -1.0; s <= 1.0; s += 0.01 {
		rank := order[SentimentOf(f(s))]
		assert.GreaterOrEqual(t, rank, prev, "score %.2f", s)
		prev = rank
	}
}

func TestNoDataReadsNeutral(t *testing.T) {
	assert.Equal(t, ToneMuted, SentimentNoData.Tone())
	assert.Equal(t, ToneNeutral, SentimentNeutral.Tone())
}

func TestMomentumOf(t *testing.T) {
	tests := []struct {
		m    *float64
		want Momentum
	}{
		{nil, MomentumUnknown},
		{f(0.8), MomentumRising},
		{f(0.5), MomentumGrowing},
		{f(0.2), MomentumGrowing},
		{f(0.1), MomentumStable},
		{f(0), MomentumStable},
		{f(-0.1), MomentumStable},
		{f(-0.2), MomentumFalling},
		{f(-0.5), MomentumFalling},
		{f(-0.51), MomentumDeclining},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.m != nil {
			name = fmt.Sprintf("%.2f", *tt.m)
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, MomentumOf(tt.m))
		})
	}
}

func TestTrendingOf(t *testing.T) {
	assert.Equal(t, TrendingUnknown, TrendingOf(nil))
	assert.Equal(t, TrendingHot, TrendingOf(f(0.8)))
	assert.Equal(t, TrendingActive, TrendingOf(f(0.5)))
	assert.Equal(t, TrendingQuiet, TrendingOf(f(0.49)))
	assert.Equal(t, TrendingQuiet, TrendingOf(f(0)))
}

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		score float64
		want  Severity
	}{
		{1.0, SeverityCritical},
		{0.8, SeverityCritical},
		{0.79, SeverityHigh},
		{0.5, SeverityHigh},
		{0.49, SeverityMedium},
		{0.3, SeverityMedium},
		{0.29, SeverityLow},
		{0, SeverityLow},
		{math.NaN(), SeverityUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityOf(tt.score))
		})
	}
	assert.Less(t, SeverityCritical.Rank(), SeverityLow.Rank())
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		sim  float64
		want float64
	}{
		{0, 100},
		{0.5, 75},
		{1, 50},
		{2, 0},
		{3, 0},
		{-1, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Relevance(tt.sim), 1e-9, "similarity %v", tt.sim)
	}
}

func TestPercentAndSigned(t *testing.T) {
	assert.Equal(t, "85%", Percent(f(0.85)))
	assert.Equal(t, "n/a", Percent(nil))
	assert.Equal(t, "+0.42", Signed(f(0.42)))
	assert.Equal(t, "-0.10", Signed(f(-0.1)))
	assert.Equal(t, "n/a", Signed(nil))
}

func TestInferSource(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		path string
		want string
	}{
		{"hacker news item", "", "https://news.ycombinator.com/item?id=1", "hackernews"},
		{"github repo", "", "https://github.com/golang/go/issues/1", "github"},
		{"xml feed", "", "https://blog.example.com/index.xml", "rss"},
		{"feed path", "", "https://example.com/feed/", "rss"},
		{"rss path", "", "https://example.com/rss", "rss"},
		{"case insensitive", "", "HTTPS://GITHUB.COM/x/y", "github"},
		{"explicit tag wins", "github", "https://news.ycombinator.com/item?id=1", "github"},
		{"nothing matched", "", "https://example.com/post/1", "unknown"},
		{"empty", "", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferSource(tt.tag, tt.path))
		})
	}

	src := "rss"
	assert.Equal(t, "rss", DocumentSource(types.Document{Source: &src, SourcePath: "https://github.com/a/b"}))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                     string
		offset, size, total      int
		wantPage, wantPages      int
		wantFirst, wantLast      int
		wantHasPrev, wantHasNext bool
	}{
		{"second of two", 50, 50, 97, 2, 2, 51, 97, true, false},
		{"first of two", 0, 50, 97, 1, 2, 1, 50, false, true},
		{"default page size", 0, 0, 120, 1, 3, 1, 50, false, true},
		{"empty", 0, 50, 0, 1, 1, 0, 0, false, false},
		{"exact fit", 50, 50, 100, 2, 2, 51, 100, true, false},
		{"offset past end", 200, 50, 97, 2, 2, 0, 0, true, false},
		{"negative offset", -5, 10, 25, 1, 3, 1, 10, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.offset, tt.size, tt.total)
			assert.Equal(t, tt.wantPage, p.CurrentPage, "current page")
			assert.Equal(t, tt.wantPages, p.TotalPages, "total pages")
			assert.Equal(t, tt.wantFirst, p.First, "first")
			assert.Equal(t, tt.wantLast, p.Last, "last")
			assert.Equal(t, tt.wantHasPrev, p.HasPrev(), "has prev")
			assert.Equal(t, tt.wantHasNext, p.HasNext(), "has next")
		})
	}
}

func TestPageOffsets(t *testing.T) {
	p := Paginate(50, 50, 97)
	assert.Equal(t, 0, p.PrevOffset())
	assert.Equal(t, 50, p.NextOffset())
	assert.Equal(t, "Showing 51–97 of 97 (page 2 of 2)", p.Summary())

	p = Paginate(0, 50, 97)
	assert.Equal(t, 50, p.NextOffset())
	assert.Equal(t, "Showing 0 of 0", Paginate(0, 50, 0).Summary())
}

func TestSortClusters(t *testing.T) {
	in := []types.Cluster{
		{ID: 1, Label: "b", DocumentCount: 5, TrendingScore: f(0.2)},
		{ID: 2, Label: "a", DocumentCount: 9, TrendingScore: nil},
		{ID: 3, Label: "c", DocumentCount: 1, TrendingScore: f(0.9)},
	}

	ids := func(cs []types.Cluster) []int64 {
		out := make([]int64, len(cs))
		for i, c := range cs {
			out[i] = c.ID
		}
		return out
	}

	assert.Equal(t, []int64{2, 1, 3}, ids(SortClusters(in, SortByDocuments)))
	assert.Equal(t, []int64{3, 1, 2}, ids(SortClusters(in, SortByTrending)), "unknown sorts last")
	assert.Equal(t, []int64{2, 1, 3}, ids(SortClusters(in, SortByLabel)))
	assert.Equal(t, int64(1), in[0].ID, "input is not reordered")
}

func TestSortAnomaliesAndResults(t *testing.T) {
	a := SortAnomalies([]types.Anomaly{{ID: 1, Score: 0.2}, {ID: 2, Score: 0.9}})
	assert.Equal(t, int64(2), a[0].ID)

	r := SortSearchResults([]types.SearchResult{{Title: "far", SimilarityScore: 1.2}, {Title: "near", SimilarityScore: 0.1}})
	assert.Equal(t, "near", r[0].Title)
}

func TestLoadError(t *testing.T) {
	assert.Empty(t, LoadError("clusters", nil))

	apiErr := &apiclient.APIError{Status: 500, StatusText: "Internal Server Error", Message: "db down"}
	assert.Equal(t, "Failed to load clusters: db down", LoadError("clusters", apiErr))

	unauth := &apiclient.APIError{Status: 401, StatusText: "Unauthorized", Message: "expired"}
	assert.Equal(t, SessionExpiredMessage, LoadError("clusters", unauth))

	netErr := &apiclient.NetworkError{Endpoint: "/clusters", Err: errors.New("dial tcp: refused")}
	assert.Equal(t, ConnectivityMessage, LoadError("clusters", fmt.Errorf("wrapped: %w", netErr)))

	assert.Equal(t, "Failed to load insights: bad", LoadError("insights", errors.New("bad")))
}

func TestEmptyState(t *testing.T) {
	assert.Contains(t, EmptyState("anomalies"), "No anomalies")
	assert.Equal(t, "Nothing to show yet.", EmptyState("widgets"))
}

func TestStatusTone(t *testing.T) {
	assert.Equal(t, TonePositive, StatusTone(types.StatusCompleted))
	assert.Equal(t, ToneNegative, StatusTone(types.StatusFailed))
	assert.Equal(t, ToneMuted, StatusTone(types.StatusPending))
	assert.Equal(t, ToneWarning, StatusTone(types.StatusRunning))
	assert.Equal(t, ToneWarning, StatusTone("unknown"))
}
