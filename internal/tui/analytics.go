// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-openapi/strfmt"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/render"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/pkg/types"
)

func clusterFilter(req request) (*int64, error) {
	raw := req.query.Get("cluster_id")
	if raw == "" {
		return nil, nil
	}
	id, err := parseID("cluster", raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type insightsView struct {
	e      env
	filter resources.InsightFilter
	list   remote[types.InsightList]
	vp     viewport.Model
}

func newInsightsView(e env, req request) (view, error) {
	cid, err := clusterFilter(req)
	if err != nil {
		return nil, err
	}
	return &insightsView{e: e, filter: resources.InsightFilter{ClusterID: cid}, vp: newViewport(e)}, nil
}

func (v *insightsView) Title() string {
	if v.filter.ClusterID != nil {
		return fmt.Sprintf("Insights · cluster #%d", *v.filter.ClusterID)
	}
	return "Insights"
}

func (v *insightsView) Init() tea.Cmd {
	f := v.filter
	tag := "insights?" + f.Values().Encode()
	v.list.start(tag)
	return fetch(v.e, tag, func(ctx context.Context) (types.InsightList, error) { return v.e.svc.Insights(ctx, f) })
}

func (v *insightsView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if v.list.accept(msg) && v.list.have {
			v.vp.SetContent(insightsBody(v.list.data.Insights, v.vp.Width))
		}
		return v, nil
	case refreshMsg:
		return v, v.Init()
	case contentSizeMsg:
		resizeViewport(&v.vp, msg)
		return v, nil
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

func (v *insightsView) View() string {
	return v.list.render("insights",
		func(l types.InsightList) bool { return len(l.Insights) == 0 },
		func(types.InsightList) string { return v.vp.View() })
}

func insightsBody(in []types.Insight, width int) string {
	rows := append([]types.Insight(nil), in...)
	sort.SliceStable(rows, func(i, j int) bool {
		return time.Time(rows[i].GeneratedAt).After(time.Time(rows[j].GeneratedAt))
	})
	var b strings.Builder
	for _, i := range rows {
		fmt.Fprintf(&b, "%s\n%s\n\n",
			mutedStyle.Render(fmt.Sprintf("cluster #%d · %s · confidence %s", i.ClusterID, stamp(&i.GeneratedAt), present.Percent(i.Confidence))),
			wrap(i.InsightText, width))
	}
	return b.String()
}

type anomaliesView struct {
	e      env
	filter resources.AnomalyFilter
	list   remote[types.AnomalyList]
	vp     viewport.Model
}

func newAnomaliesView(e env, req request) (view, error) {
	cid, err := clusterFilter(req)
	if err != nil {
		return nil, err
	}
	f := resources.AnomalyFilter{ClusterID: cid, Type: req.query.Get("type"), Limit: e.pageSize}
	for name, dst := range map[string]**strfmt.Date{"start_date": &f.StartDate, "end_date": &f.EndDate} {
		raw := req.query.Get(name)
		if raw == "" {
			continue
		}
		d, err := strfmt.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", name, raw)
		}
		*dst = &d
	}
	return &anomaliesView{e: e, filter: f, vp: newViewport(e)}, nil
}

func (v *anomaliesView) Title() string {
	if v.filter.ClusterID != nil {
		return fmt.Sprintf("Anomalies · cluster #%d", *v.filter.ClusterID)
	}
	return "Anomalies"
}

func (v *anomaliesView) Init() tea.Cmd {
	f := v.filter
	tag := "anomalies?" + f.Values().Encode()
	v.list.start(tag)
	return fetch(v.e, tag, func(ctx context.Context) (types.AnomalyList, error) { return v.e.svc.Anomalies(ctx, f) })
}

func (v *anomaliesView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if v.list.accept(msg) && v.list.have {
			v.vp.SetContent(anomaliesBody(v.list.data.Anomalies))
		}
		return v, nil
	case refreshMsg:
		return v, v.Init()
	case contentSizeMsg:
		resizeViewport(&v.vp, msg)
		return v, nil
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

func (v *anomaliesView) View() string {
	return v.list.render("anomalies",
		func(l types.AnomalyList) bool { return len(l.Anomalies) == 0 },
		func(types.AnomalyList) string { return v.vp.View() })
}

func anomaliesBody(in []types.Anomaly) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s  %-8s  %-10s  %-6s  %s\n", "Date", "Cluster", "Severity", "Score", "Type")
	for _, a := range present.SortAnomalies(in) {
		sev := present.SeverityOf(a.Score)
		fmt.Fprintf(&b, "%-10s  #%-7d  %s  %-6.2f  %s\n",
			a.AnomalyDate.String(), a.ClusterID, toned(sev.Tone(), fmt.Sprintf("%-10s", sev)), a.Score, a.Type)
	}
	return b.String()
}

type umapView struct {
	e       env
	cluster *int64
	proj    remote[types.UMAPProjection]
	width   int
	height  int
}

func newUMAPView(e env, req request) (view, error) {
	v := &umapView{e: e, width: e.width, height: e.height}
	if raw, ok := req.params["id"]; ok {
		id, err := parseID("cluster", raw)
		if err != nil {
			return nil, err
		}
		v.cluster = &id
	}
	return v, nil
}

func (v *umapView) Title() string {
	if v.cluster != nil {
		return fmt.Sprintf("Projection · cluster #%d", *v.cluster)
	}
	return "Projection"
}

func (v *umapView) Init() tea.Cmd {
	if v.cluster != nil {
		id := *v.cluster
		tag := fmt.Sprintf("umap/cluster/%d", id)
		v.proj.start(tag)
		return fetch(v.e, tag, func(ctx context.Context) (types.UMAPProjection, error) { return v.e.svc.UMAPCluster(ctx, id) })
	}
	v.proj.start("umap/documents")
	return fetch(v.e, "umap/documents", func(ctx context.Context) (types.UMAPProjection, error) {
		return v.e.svc.UMAPDocuments(ctx, resources.UMAPFilter{})
	})
}

func (v *umapView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		v.proj.accept(msg)
	case refreshMsg:
		return v, v.Init()
	case contentSizeMsg:
		v.width, v.height = msg.width, msg.height
	}
	return v, nil
}

func (v *umapView) View() string {
	return v.proj.render("projection",
		func(p types.UMAPProjection) bool { return len(p.Points) == 0 },
		func(p types.UMAPProjection) string {
			plot := render.Scatter(p.Points, v.width, max(v.height-2, 4))
			return lines(plot, mutedStyle.Render(fmt.Sprintf("%d points · letters mark clusters, . unclustered, * overlap", p.Total)))
		})
}
