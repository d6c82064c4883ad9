// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/pkg/types"
)

var clusterSorts = []present.ClusterSort{
	present.SortByDocuments, present.SortByTrending, present.SortBySentiment, present.SortByLabel,
}

type clustersView struct {
	e     env
	list  remote[types.ClusterList]
	sort  present.ClusterSort
	table table.Model
	ids   []int64
}

func newClustersView(e env, req request) (view, error) {
	v := &clustersView{e: e, sort: present.ClusterSort(req.query.Get("sort"))}
	if v.sort == "" {
		v.sort = present.SortByDocuments
	}
	v.table = newTable(e, []table.Column{
		{Title: "Label", Width: 30},
		{Title: "Docs", Width: 6},
		{Title: "Sentiment", Width: 14},
		{Title: "Trend", Width: 8},
		{Title: "Momentum", Width: 12},
	})
	return v, nil
}

func (v *clustersView) Title() string { return "Clusters" }

func (v *clustersView) Init() tea.Cmd {
	v.list.start("clusters")
	return fetch(v.e, "clusters", v.e.svc.Clusters)
}

func (v *clustersView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if v.list.accept(msg) {
			v.rebuild()
		}
		return v, nil
	case refreshMsg:
		return v, v.Init()
	case contentSizeMsg:
		resizeTable(&v.table, msg)
		return v, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if i := v.table.Cursor(); i >= 0 && i < len(v.ids) {
				return v, navigate("/clusters/" + strconv.FormatInt(v.ids[i], 10))
			}
			return v, nil
		case "s":
			v.sort = nextSort(v.sort)
			v.rebuild()
			return v, nil
		}
	}
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func nextSort(cur present.ClusterSort) present.ClusterSort {
	for i, s := range clusterSorts {
		if s == cur {
			return clusterSorts[(i+1)%len(clusterSorts)]
		}
	}
	return clusterSorts[0]
}

func (v *clustersView) rebuild() {
	sorted := present.SortClusters(v.list.data.Clusters, v.sort)
	rows := make([]table.Row, 0, len(sorted))
	v.ids = v.ids[:0]
	for _, c := range sorted {
		m := present.MomentumOf(c.Momentum)
		rows = append(rows, table.Row{
			c.DisplayName(),
			strconv.Itoa(c.DocumentCount),
			string(present.SentimentOf(c.AvgSentiment)),
			string(present.TrendingOf(c.TrendingScore)),
			m.Arrow() + " " + string(m),
		})
		v.ids = append(v.ids, c.ID)
	}
	v.table.SetRows(rows)
}

func (v *clustersView) View() string {
	return v.list.render("clusters",
		func(l types.ClusterList) bool { return len(l.Clusters) == 0 },
		func(l types.ClusterList) string {
			return lines(
				v.table.View(),
				mutedStyle.Render(fmt.Sprintf("%d clusters · sorted by %s · s sort · enter open", l.Total, v.sort)),
			)
		})
}

type clusterDetailView struct {
	e      env
	id     int64
	detail remote[types.ClusterDetail]
	vp     viewport.Model
}

func newClusterDetailView(e env, req request) (view, error) {
	id, err := parseID("cluster", req.params["id"])
	if err != nil {
		return nil, err
	}
	return &clusterDetailView{e: e, id: id, vp: newViewport(e)}, nil
}

func (v *clusterDetailView) Title() string {
	if v.detail.have {
		return "Cluster · " + v.detail.data.DisplayName()
	}
	return fmt.Sprintf("Cluster #%d", v.id)
}

func (v *clusterDetailView) Init() tea.Cmd {
	tag := "cluster/" + strconv.FormatInt(v.id, 10)
	v.detail.start(tag)
	return fetch(v.e, tag, func(ctx context.Context) (types.ClusterDetail, error) {
		return v.e.svc.Cluster(ctx, v.id)
	})
}

func (v *clusterDetailView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if v.detail.accept(msg) && v.detail.have {
			v.vp.SetContent(clusterBody(v.detail.data))
		}
		return v, nil
	case refreshMsg:
		return v, v.Init()
	case contentSizeMsg:
		resizeViewport(&v.vp, msg)
		return v, nil
	case tea.KeyMsg:
		id := strconv.FormatInt(v.id, 10)
		switch msg.String() {
		case "d":
			return v, navigate("/documents?cluster_id=" + id)
		case "i":
			return v, navigate("/insights?cluster_id=" + id)
		case "a":
			return v, navigate("/anomalies?cluster_id=" + id)
		case "u":
			return v, navigate("/umap/clusters/" + id)
		}
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

func (v *clusterDetailView) View() string {
	return v.detail.render("cluster", nil, func(types.ClusterDetail) string {
		return lines(v.vp.View(), mutedStyle.Render("d documents · i insights · a anomalies · u projection"))
	})
}

func clusterBody(d types.ClusterDetail) string {
	s := present.SentimentOf(d.AvgSentiment)
	t := present.TrendingOf(d.TrendingScore)
	m := present.MomentumOf(d.Momentum)

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.DisplayName()) + "\n")
	if d.Summary != "" {
		b.WriteString(d.Summary + "\n")
	}
	b.WriteString("\n")
	b.WriteString(field("Documents", strconv.Itoa(d.DocumentCount)) + "\n")
	b.WriteString(field("Sentiment", toned(s.Tone(), string(s))+" "+present.Signed(d.AvgSentiment)) + "\n")
	b.WriteString(field("Trending", toned(t.Tone(), string(t))+" "+present.Percent(d.TrendingScore)) + "\n")
	b.WriteString(field("Momentum", toned(m.Tone(), m.Arrow()+" "+string(m))) + "\n")

	if len(d.Keywords) > 0 {
		words := make([]string, 0, len(d.Keywords))
		for _, k := range d.Keywords {
			words = append(words, k.Keyword)
		}
		b.WriteString(field("Keywords", strings.Join(words, ", ")) + "\n")
	}
	if len(d.Timeseries) > 0 {
		counts := make([]int, 0, len(d.Timeseries))
		for _, p := range d.Timeseries {
			counts = append(counts, p.DocumentCount)
		}
		first, last := d.Timeseries[0].Date.String(), d.Timeseries[len(d.Timeseries)-1].Date.String()
		b.WriteString(field("Volume", sparkline(counts)+mutedStyle.Render("  "+first+" → "+last)) + "\n")
	}
	if len(d.Insights) > 0 {
		b.WriteString("\n" + titleStyle.Render("Insights") + "\n")
		for _, in := range d.Insights {
			b.WriteString("• " + in.InsightText + mutedStyle.Render(" ("+present.Percent(in.Confidence)+")") + "\n")
		}
	}
	if len(d.Anomalies) > 0 {
		b.WriteString("\n" + titleStyle.Render("Anomalies") + "\n")
		for _, a := range present.SortAnomalies(d.Anomalies) {
			sev := present.SeverityOf(a.Score)
			b.WriteString(fmt.Sprintf("%s  %s  %s\n", a.AnomalyDate.String(), toned(sev.Tone(), fmt.Sprintf("%-8s", sev)), a.Type))
		}
	}
	return b.String()
}
