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
	"github.com/go-openapi/strfmt"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/pkg/types"
)

type documentsView struct {
	e       env
	filter  resources.DocumentFilter
	list    remote[types.DocumentList]
	table   table.Model
	ids     []strfmt.UUID
	polling bool
}

func newDocumentsView(e env, req request) (view, error) {
	f := resources.DocumentFilter{Limit: e.pageSize, Source: req.query.Get("source")}
	if raw := req.query.Get("cluster_id"); raw != "" {
		id, err := parseID("cluster", raw)
		if err != nil {
			return nil, err
		}
		f.ClusterID = &id
	}
	if raw := req.query.Get("processed"); raw != "" {
		p, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid processed filter %q", raw)
		}
		f.Processed = &p
	}
	if off, err := strconv.Atoi(req.query.Get("offset")); err == nil && off > 0 {
		f.Offset = off
	}

	v := &documentsView{e: e, filter: f}
	v.table = newTable(e, []table.Column{
		{Title: "Title", Width: 40},
		{Title: "Source", Width: 10},
		{Title: "Sentiment", Width: 13},
		{Title: "Status", Width: 9},
		{Title: "Created", Width: 16},
	})
	return v, nil
}

func (v *documentsView) Title() string {
	if v.filter.ClusterID != nil {
		return fmt.Sprintf("Documents · cluster #%d", *v.filter.ClusterID)
	}
	return "Documents"
}

func (v *documentsView) Init() tea.Cmd { return v.load(false) }

func (v *documentsView) load(reload bool) tea.Cmd {
	f := v.filter
	tag := resources.DocumentsKey(f).String()
	v.list.start(tag)
	read := v.e.svc.Documents
	if reload {
		read = v.e.svc.ReloadDocuments
	}
	return fetch(v.e, tag, func(ctx context.Context) (types.DocumentList, error) { return read(ctx, f) })
}

func (v *documentsView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if !v.list.accept(msg) {
			return v, nil
		}
		v.rebuild()
		return v, v.schedulePoll()
	case pollMsg:
		v.polling = false
		return v, v.load(true)
	case refreshMsg:
		return v, v.load(false)
	case contentSizeMsg:
		resizeTable(&v.table, msg)
		return v, nil
	case tea.KeyMsg:
		page := v.page()
		switch msg.String() {
		case "enter":
			if i := v.table.Cursor(); i >= 0 && i < len(v.ids) {
				return v, navigate("/documents/" + v.ids[i].String())
			}
			return v, nil
		case "n", "right":
			if page.HasNext() {
				v.filter.Offset = page.NextOffset()
				return v, v.load(false)
			}
			return v, nil
		case "p", "left":
			if page.HasPrev() {
				v.filter.Offset = page.PrevOffset()
				return v, v.load(false)
			}
			return v, nil
		case "f":
			v.filter.Processed = nextProcessed(v.filter.Processed)
			v.filter.Offset = 0
			return v, v.load(false)
		}
	}
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// schedulePoll arms one tick while documents are still being processed.
func (v *documentsView) schedulePoll() tea.Cmd {
	if v.polling || !v.list.have {
		return nil
	}
	d, ok := v.e.svc.DocumentsPolicy().Next(v.list.data)
	if !ok {
		return nil
	}
	v.polling = true
	return v.e.pollAfter(d)
}

func nextProcessed(cur *bool) *bool {
	t, f := true, false
	switch {
	case cur == nil:
		return &t
	case *cur:
		return &f
	}
	return nil
}

func (v *documentsView) page() present.Page {
	return present.Paginate(v.filter.Offset, v.filter.Limit, v.list.data.Total)
}

func (v *documentsView) rebuild() {
	rows := make([]table.Row, 0, len(v.list.data.Documents))
	v.ids = v.ids[:0]
	for _, d := range v.list.data.Documents {
		var score *float64
		if d.Sentiment != nil {
			score = d.Sentiment.Score
		}
		status := "processed"
		if !d.Processed {
			status = "pending"
		}
		rows = append(rows, table.Row{
			clip(d.Title, 40),
			present.DocumentSource(d),
			string(present.SentimentOf(score)),
			status,
			stamp(d.CreatedAt),
		})
		v.ids = append(v.ids, d.ID)
	}
	v.table.SetRows(rows)
	v.table.SetCursor(0)
}

func (v *documentsView) View() string {
	filter := "all"
	if v.filter.Processed != nil {
		filter = map[bool]string{true: "processed", false: "pending"}[*v.filter.Processed]
	}
	return v.list.render("documents",
		func(l types.DocumentList) bool { return len(l.Documents) == 0 },
		func(types.DocumentList) string {
			status := v.page().Summary() + " · showing " + filter
			if v.polling {
				status += " · refreshing while processing"
			}
			return lines(
				v.table.View(),
				mutedStyle.Render(status),
				mutedStyle.Render("n/p page · f filter · enter open"),
			)
		})
}

type documentDetailView struct {
	e   env
	id  strfmt.UUID
	doc remote[types.DocumentDetail]
	vp  viewport.Model
}

func newDocumentDetailView(e env, req request) (view, error) {
	raw := req.params["id"]
	if !strfmt.IsUUID(raw) {
		return nil, fmt.Errorf("invalid document id %q", raw)
	}
	return &documentDetailView{e: e, id: strfmt.UUID(raw), vp: newViewport(e)}, nil
}

func (v *documentDetailView) Title() string {
	if v.doc.have && v.doc.data.Title != "" {
		return "Document · " + clip(v.doc.data.Title, 40)
	}
	return "Document"
}

func (v *documentDetailView) Init() tea.Cmd {
	tag := "document/" + v.id.String()
	v.doc.start(tag)
	return fetch(v.e, tag, func(ctx context.Context) (types.DocumentDetail, error) {
		return v.e.svc.Document(ctx, v.id)
	})
}

func (v *documentDetailView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if v.doc.accept(msg) && v.doc.have {
			v.vp.SetContent(documentBody(v.doc.data, v.vp.Width))
		}
		return v, nil
	case refreshMsg:
		return v, v.Init()
	case contentSizeMsg:
		resizeViewport(&v.vp, msg)
		return v, nil
	case tea.KeyMsg:
		if msg.String() == "c" && v.doc.have && len(v.doc.data.ClusterMemberships) > 0 {
			return v, navigate("/clusters/" + strconv.FormatInt(v.doc.data.ClusterMemberships[0].ClusterID, 10))
		}
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

func (v *documentDetailView) View() string {
	return v.doc.render("document", nil, func(types.DocumentDetail) string {
		return lines(v.vp.View(), mutedStyle.Render("c open top cluster"))
	})
}

func documentBody(d types.DocumentDetail, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title) + "\n\n")
	b.WriteString(field("Source", present.DocumentSource(d.Document)) + "\n")
	b.WriteString(field("Path", d.SourcePath) + "\n")
	b.WriteString(field("Created", stamp(d.CreatedAt)) + "\n")
	if d.Sentiment != nil {
		s := present.SentimentOf(d.Sentiment.Score)
		b.WriteString(field("Sentiment", toned(s.Tone(), string(s))+" "+present.Signed(d.Sentiment.Score)) + "\n")
	}
	if len(d.ClusterMemberships) > 0 {
		b.WriteString("\n" + titleStyle.Render("Clusters") + "\n")
		for _, m := range d.ClusterMemberships {
			fmt.Fprintf(&b, "#%-5d %-30s %s\n", m.ClusterID, clip(m.ClusterLabel, 30), present.Percent(m.Probability))
		}
	}
	if d.RawText != "" {
		b.WriteString("\n" + wrap(d.RawText, width) + "\n")
	}
	return b.String()
}

// wrap breaks text into lines of at most width runes at word boundaries.
func wrap(text string, width int) string {
	if width < 20 {
		width = 20
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, w := range strings.Fields(para) {
			switch {
			case line == "":
				line = w
			case len([]rune(line))+1+len([]rune(w)) > width:
				out = append(out, line)
				line = w
			default:
				line += " " + w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
