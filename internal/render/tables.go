// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/pkg/types"
)

const timeLayout = "2006-01-02 15:04"

func when(t *strfmt.DateTime) string {
	if t == nil {
		return "-"
	}
	return time.Time(*t).Local().Format(timeLayout)
}

func (p *Printer) empty(resource string) {
	fmt.Fprintln(p.w, p.faint.Sprint(present.EmptyState(resource)))
}

// Clusters prints the cluster list, ordered by sort.
func (p *Printer) Clusters(list types.ClusterList, by present.ClusterSort) error {
	if ok, err := p.encode(list); ok {
		return err
	}
	if len(list.Clusters) == 0 {
		p.empty("clusters")
		return nil
	}

	p.header("%-6s  %-32s  %6s  %-13s  %-8s  %s", "ID", "Label", "Docs", "Sentiment", "Trend", "Momentum")
	for _, c := range present.SortClusters(list.Clusters, by) {
		s := present.SentimentOf(c.AvgSentiment)
		t := present.TrendingOf(c.TrendingScore)
		m := present.MomentumOf(c.Momentum)
		fmt.Fprintf(p.w, "%-6d  %-32s  %6d  %s  %s  %s\n",
			c.ID, truncate(c.DisplayName(), 32), c.DocumentCount,
			p.tone(s.Tone(), pad(string(s), 13)),
			p.tone(t.Tone(), pad(string(t), 8)),
			p.tone(m.Tone(), m.Arrow()+" "+string(m)))
	}
	p.footer(fmt.Sprintf("%d clusters", list.Total))
	return nil
}

// ClusterDetail prints one cluster with its keywords, timeseries, insights
// and anomalies.
func (p *Printer) ClusterDetail(d types.ClusterDetail) error {
	if ok, err := p.encode(d); ok {
		return err
	}

	s := present.SentimentOf(d.AvgSentiment)
	t := present.TrendingOf(d.TrendingScore)
	m := present.MomentumOf(d.Momentum)
	fmt.Fprintln(p.w, p.bold.Sprintf("#%d %s", d.ID, d.DisplayName()))
	if d.Summary != "" {
		fmt.Fprintln(p.w, d.Summary)
	}
	fmt.Fprintf(p.w, "\nDocuments  %d\nSentiment  %s (%s)\nTrending   %s (%s)\nMomentum   %s %s\n",
		d.DocumentCount,
		p.tone(s.Tone(), string(s)), present.Signed(d.AvgSentiment),
		p.tone(t.Tone(), string(t)), present.Percent(d.TrendingScore),
		p.tone(m.Tone(), m.Arrow()), present.Signed(d.Momentum))

	if len(d.Keywords) > 0 {
		words := make([]string, 0, len(d.Keywords))
		for _, k := range d.Keywords {
			words = append(words, fmt.Sprintf("%s (%.2f)", k.Keyword, k.Weight))
		}
		fmt.Fprintf(p.w, "\nKeywords   %s\n", strings.Join(words, ", "))
	} else if len(d.TopKeywords) > 0 {
		fmt.Fprintf(p.w, "\nKeywords   %s\n", strings.Join(d.TopKeywords, ", "))
	}

	if len(d.Timeseries) > 0 {
		fmt.Fprintln(p.w)
		p.header("%-10s  %6s  %s", "Date", "Docs", "Sentiment")
		for _, pt := range d.Timeseries {
			fmt.Fprintf(p.w, "%-10s  %6d  %s\n", pt.Date.String(), pt.DocumentCount, present.Signed(pt.AvgSentiment))
		}
	}
	if len(d.Insights) > 0 {
		fmt.Fprintln(p.w)
		p.insightRows(d.Insights)
	}
	if len(d.Anomalies) > 0 {
		fmt.Fprintln(p.w)
		p.anomalyRows(d.Anomalies)
	}
	return nil
}

// Documents prints one page of documents with its pagination summary.
func (p *Printer) Documents(list types.DocumentList, page present.Page) error {
	if ok, err := p.encode(list); ok {
		return err
	}
	if len(list.Documents) == 0 {
		p.empty("documents")
		return nil
	}

	p.header("%-36s  %-44s  %-10s  %-13s  %-9s  %s", "ID", "Title", "Source", "Sentiment", "Status", "Created")
	for _, d := range list.Documents {
		var score *float64
		if d.Sentiment != nil {
			score = d.Sentiment.Score
		}
		s := present.SentimentOf(score)
		status, tone := "processed", present.ToneNeutral
		if !d.Processed {
			status, tone = "pending", present.ToneWarning
		}
		fmt.Fprintf(p.w, "%-36s  %-44s  %-10s  %s  %s  %s\n",
			d.ID.String(), truncate(d.Title, 44), present.DocumentSource(d),
			p.tone(s.Tone(), pad(string(s), 13)),
			p.tone(tone, pad(status, 9)),
			when(d.CreatedAt))
	}
	p.footer(page.Summary())
	return nil
}

// DocumentDetail prints one document and its cluster memberships.
func (p *Printer) DocumentDetail(d types.DocumentDetail) error {
	if ok, err := p.encode(d); ok {
		return err
	}

	fmt.Fprintln(p.w, p.bold.Sprint(d.Title))
	fmt.Fprintf(p.w, "ID       %s\nSource   %s\nPath     %s\nCreated  %s\n",
		d.ID, present.DocumentSource(d.Document), d.SourcePath, when(d.CreatedAt))
	if d.Sentiment != nil {
		s := present.SentimentOf(d.Sentiment.Score)
		fmt.Fprintf(p.w, "Mood     %s (%s, confidence %s)\n",
			p.tone(s.Tone(), string(s)), present.Signed(d.Sentiment.Score), present.Percent(d.Sentiment.Confidence))
	}
	if len(d.ClusterMemberships) > 0 {
		fmt.Fprintln(p.w)
		p.header("%-8s  %-32s  %s", "Cluster", "Label", "Probability")
		for _, m := range d.ClusterMemberships {
			fmt.Fprintf(p.w, "%-8d  %-32s  %s\n", m.ClusterID, truncate(m.ClusterLabel, 32), present.Percent(m.Probability))
		}
	}
	if d.RawText != "" {
		fmt.Fprintf(p.w, "\n%s\n", d.RawText)
	}
	return nil
}

// Insights prints insights newest first.
func (p *Printer) Insights(list types.InsightList) error {
	if ok, err := p.encode(list); ok {
		return err
	}
	if len(list.Insights) == 0 {
		p.empty("insights")
		return nil
	}
	p.insightRows(list.Insights)
	p.footer(fmt.Sprintf("%d insights", list.Total))
	return nil
}

func (p *Printer) insightRows(in []types.Insight) {
	rows := append([]types.Insight(nil), in...)
	sort.SliceStable(rows, func(i, j int) bool {
		return time.Time(rows[i].GeneratedAt).After(time.Time(rows[j].GeneratedAt))
	})
	p.header("%-8s  %-10s  %-16s  %s", "Cluster", "Confidence", "Generated", "Insight")
	for _, i := range rows {
		fmt.Fprintf(p.w, "%-8d  %-10s  %-16s  %s\n",
			i.ClusterID, present.Percent(i.Confidence), when(&i.GeneratedAt), truncate(i.InsightText, 80))
	}
}

// Anomalies prints anomalies by severity.
func (p *Printer) Anomalies(list types.AnomalyList) error {
	if ok, err := p.encode(list); ok {
		return err
	}
	if len(list.Anomalies) == 0 {
		p.empty("anomalies")
		return nil
	}
	p.anomalyRows(list.Anomalies)
	p.footer(fmt.Sprintf("%d anomalies", list.Total))
	return nil
}

func (p *Printer) anomalyRows(in []types.Anomaly) {
	p.header("%-10s  %-8s  %-10s  %-8s  %s", "Date", "Cluster", "Severity", "Score", "Type")
	for _, a := range present.SortAnomalies(in) {
		sev := present.SeverityOf(a.Score)
		fmt.Fprintf(p.w, "%-10s  %-8d  %s  %-8s  %s\n",
			a.AnomalyDate.String(), a.ClusterID,
			p.tone(sev.Tone(), pad(string(sev), 10)),
			strconv.FormatFloat(a.Score, 'f', 2, 64), a.Type)
	}
}

// Search prints results by relevance.
func (p *Printer) Search(resp types.SearchResponse) error {
	if ok, err := p.encode(resp); ok {
		return err
	}
	if len(resp.Results) == 0 {
		p.empty("search")
		return nil
	}
	p.header("%-9s  %-48s  %-16s  %s", "Relevance", "Title", "Created", "ID")
	for _, r := range present.SortSearchResults(resp.Results) {
		fmt.Fprintf(p.w, "%8.0f%%  %-48s  %-16s  %s\n",
			present.Relevance(r.SimilarityScore), truncate(r.Title, 48), when(r.CreatedAt), r.ID)
	}
	p.footer(fmt.Sprintf("%d results for %q", resp.Total, resp.Query))
	return nil
}

// IngestEvents prints the job history.
func (p *Printer) IngestEvents(list types.IngestEventList) error {
	if ok, err := p.encode(list); ok {
		return err
	}
	if len(list.Events) == 0 {
		p.empty("ingest events")
		return nil
	}
	p.header("%-6s  %-11s  %-10s  %-16s  %-16s  %s", "ID", "Source", "Status", "Started", "Completed", "Docs")
	for _, e := range list.Events {
		docs := "-"
		if e.DocumentsIngested != nil {
			docs = strconv.Itoa(*e.DocumentsIngested)
		}
		fmt.Fprintf(p.w, "%-6d  %-11s  %s  %-16s  %-16s  %s\n",
			e.ID, e.SourceName(), p.tone(present.StatusTone(e.Status), pad(string(e.Status), 10)),
			when(e.StartedAt), when(e.CompletedAt), docs)
	}
	p.footer(fmt.Sprintf("%d events", list.Total))
	return nil
}

// IngestEvent prints one job.
func (p *Printer) IngestEvent(e types.IngestEvent) error {
	if ok, err := p.encode(e); ok {
		return err
	}
	fmt.Fprintf(p.w, "Event      %d\nSource     %s\nStatus     %s\nStarted    %s\nCompleted  %s\n",
		e.ID, e.SourceName(), p.tone(present.StatusTone(e.Status), string(e.Status)), when(e.StartedAt), when(e.CompletedAt))
	if e.DocumentsIngested != nil {
		fmt.Fprintf(p.w, "Documents  %d\n", *e.DocumentsIngested)
	}
	if e.ErrorMessage != nil && *e.ErrorMessage != "" {
		fmt.Fprintf(p.w, "Error      %s\n", p.tone(present.ToneNegative, *e.ErrorMessage))
	}
	return nil
}

// Triggered prints the trigger acknowledgement.
func (p *Printer) Triggered(r types.TriggerResponse) error {
	if ok, err := p.encode(r); ok {
		return err
	}
	fmt.Fprintf(p.w, "Started ingestion event %d (%s)\n", r.EventID, r.Status)
	if r.Message != "" {
		fmt.Fprintln(p.w, r.Message)
	}
	return nil
}

// Projection prints projected points as an ASCII scatter plot.
func (p *Printer) Projection(proj types.UMAPProjection, width, height int) error {
	if ok, err := p.encode(proj); ok {
		return err
	}
	if len(proj.Points) == 0 {
		p.empty("projection")
		return nil
	}
	fmt.Fprint(p.w, Scatter(proj.Points, width, height))
	p.footer(fmt.Sprintf("%d points", proj.Total))
	return nil
}
