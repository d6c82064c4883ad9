// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/pdiddy/trendscope/internal/ingest"
	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/pkg/types"
)

var statusFilters = []types.IngestStatus{
	"", types.StatusPending, types.StatusRunning, types.StatusProcessing, types.StatusCompleted, types.StatusFailed,
}

type ingestEventsView struct {
	e       env
	filter  resources.IngestEventFilter
	list    remote[types.IngestEventList]
	table   table.Model
	ids     []int64
	polling bool
}

func newIngestEventsView(e env, req request) (view, error) {
	f := resources.IngestEventFilter{Status: types.IngestStatus(req.query.Get("status")), Limit: e.pageSize}
	if off, err := strconv.Atoi(req.query.Get("offset")); err == nil && off > 0 {
		f.Offset = off
	}
	v := &ingestEventsView{e: e, filter: f}
	v.table = newTable(e, []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Source", Width: 11},
		{Title: "Status", Width: 11},
		{Title: "Started", Width: 16},
		{Title: "Completed", Width: 16},
		{Title: "Docs", Width: 6},
	})
	return v, nil
}

func (v *ingestEventsView) Title() string { return "Ingestion" }

func (v *ingestEventsView) Init() tea.Cmd { return v.load(false) }

func (v *ingestEventsView) load(reload bool) tea.Cmd {
	f := v.filter
	tag := resources.IngestEventsKey(f).String()
	v.list.start(tag)
	read := v.e.svc.IngestEvents
	if reload {
		read = v.e.svc.ReloadIngestEvents
	}
	return fetch(v.e, tag, func(ctx context.Context) (types.IngestEventList, error) { return read(ctx, f) })
}

func (v *ingestEventsView) Update(msg tea.Msg) (view, tea.Cmd) {
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
		page := present.Paginate(v.filter.Offset, v.filter.Limit, v.list.data.Total)
		switch msg.String() {
		case "enter":
			if i := v.table.Cursor(); i >= 0 && i < len(v.ids) {
				return v, navigate("/ingest/" + strconv.FormatInt(v.ids[i], 10))
			}
			return v, nil
		case "t":
			return v, navigate("/ingest/new")
		case "f":
			i := slices.Index(statusFilters, v.filter.Status)
			v.filter.Status = statusFilters[(i+1)%len(statusFilters)]
			v.filter.Offset = 0
			return v, v.load(false)
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
		}
	}
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *ingestEventsView) schedulePoll() tea.Cmd {
	if v.polling || !v.list.have {
		return nil
	}
	d, ok := v.e.svc.IngestEventsPolicy().Next(v.list.data)
	if !ok {
		return nil
	}
	v.polling = true
	return v.e.pollAfter(d)
}

func (v *ingestEventsView) rebuild() {
	rows := make([]table.Row, 0, len(v.list.data.Events))
	v.ids = v.ids[:0]
	for _, e := range v.list.data.Events {
		docs := "-"
		if e.DocumentsIngested != nil {
			docs = strconv.Itoa(*e.DocumentsIngested)
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10), e.SourceName(), string(e.Status),
			stamp(e.StartedAt), stamp(e.CompletedAt), docs,
		})
		v.ids = append(v.ids, e.ID)
	}
	v.table.SetRows(rows)
}

func (v *ingestEventsView) View() string {
	status := "all"
	if v.filter.Status != "" {
		status = string(v.filter.Status)
	}
	return v.list.render("ingest events",
		func(l types.IngestEventList) bool { return len(l.Events) == 0 },
		func(l types.IngestEventList) string {
			info := present.Paginate(v.filter.Offset, v.filter.Limit, l.Total).Summary() + " · status " + status
			if v.polling {
				info += " · live"
			}
			return lines(v.table.View(), mutedStyle.Render(info), mutedStyle.Render("t trigger · f filter · n/p page · enter open"))
		})
}

type ingestEventView struct {
	e       env
	id      int64
	event   remote[types.IngestEvent]
	polling bool
}

func newIngestEventView(e env, req request) (view, error) {
	id, err := parseID("event", req.params["id"])
	if err != nil {
		return nil, err
	}
	return &ingestEventView{e: e, id: id}, nil
}

func (v *ingestEventView) Title() string { return fmt.Sprintf("Ingestion event #%d", v.id) }

func (v *ingestEventView) Init() tea.Cmd { return v.load(false) }

func (v *ingestEventView) load(reload bool) tea.Cmd {
	id := v.id
	tag := "ingest/event/" + strconv.FormatInt(id, 10)
	v.event.start(tag)
	read := v.e.svc.IngestEvent
	if reload {
		read = v.e.svc.ReloadIngestEvent
	}
	return fetch(v.e, tag, func(ctx context.Context) (types.IngestEvent, error) { return read(ctx, id) })
}

func (v *ingestEventView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if !v.event.accept(msg) || v.polling || !v.event.have {
			return v, nil
		}
		if d, ok := v.e.svc.IngestEventPolicy().Next(v.event.data); ok {
			v.polling = true
			return v, v.e.pollAfter(d)
		}
	case pollMsg:
		v.polling = false
		return v, v.load(true)
	case refreshMsg:
		return v, v.load(false)
	}
	return v, nil
}

func (v *ingestEventView) View() string {
	return v.event.render("ingest event", nil, func(e types.IngestEvent) string {
		docs := "-"
		if e.DocumentsIngested != nil {
			docs = strconv.Itoa(*e.DocumentsIngested)
		}
		out := []string{
			field("Source", e.SourceName()),
			field("Status", toned(present.StatusTone(e.Status), string(e.Status))),
			field("Started", stamp(e.StartedAt)),
			field("Completed", stamp(e.CompletedAt)),
			field("Documents", docs),
		}
		if e.ErrorMessage != nil && *e.ErrorMessage != "" {
			out = append(out, field("Error", errorStyle.Render(*e.ErrorMessage)))
		}
		if v.polling {
			out = append(out, "", mutedStyle.Render("Refreshing until the run finishes…"))
		}
		return strings.Join(out, "\n")
	})
}

// triggerInput holds the form's bound values. It lives on the heap so the
// form's pointers stay valid while the view is copied.
type triggerInput struct {
	source    types.IngestSource
	feeds     string
	repos     string
	includes  []string
	storyType string
	maxItems  string
}

const (
	includeIssues = "issues"
	includePRs    = "pull_requests"
	includeReadme = "readme"
)

type triggerView struct {
	e        env
	in       *triggerInput
	form     *huh.Form
	problems []string
	sending  bool
	err      error
}

func newTriggerView(e env, req request) (view, error) {
	in := &triggerInput{source: types.SourceRSS, storyType: ingest.DefaultStoryType, includes: []string{includeReadme}}
	if s := req.query.Get("source"); s != "" {
		src, err := ingest.ParseSource(s)
		if err != nil {
			return nil, err
		}
		in.source = src
	}
	v := &triggerView{e: e, in: in}
	v.form = v.newForm()
	return v, nil
}

func (v *triggerView) newForm() *huh.Form {
	in := v.in
	is := func(s types.IngestSource) func() bool { return func() bool { return in.source != s } }

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[types.IngestSource]().
				Title("Source").
				Options(
					huh.NewOption("RSS feeds", types.SourceRSS),
					huh.NewOption("Hacker News", types.SourceHackerNews),
					huh.NewOption("GitHub repositories", types.SourceGitHub),
				).
				Value(&in.source),
		),
		huh.NewGroup(
			huh.NewText().Title("Feed URLs").Description("One per line.").Value(&in.feeds),
			huh.NewInput().Title("Max items per feed").Placeholder("optional").Value(&in.maxItems).Validate(optionalCount),
		).WithHideFunc(is(types.SourceRSS)),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Story type").
				Options(huh.NewOptions("top", "new", "best", "ask", "show")...).
				Value(&in.storyType),
			huh.NewInput().Title("Max items").Placeholder(strconv.Itoa(ingest.DefaultHNItems)).Value(&in.maxItems).Validate(optionalCount),
		).WithHideFunc(is(types.SourceHackerNews)),
		huh.NewGroup(
			huh.NewText().Title("Repositories").Description("owner/name, one per line.").Value(&in.repos),
			huh.NewMultiSelect[string]().
				Title("Include").
				Options(
					huh.NewOption("Issues", includeIssues),
					huh.NewOption("Pull requests", includePRs),
					huh.NewOption("README", includeReadme),
				).
				Value(&in.includes),
			huh.NewInput().Title("Max items per repository").Placeholder("optional").Value(&in.maxItems).Validate(optionalCount),
		).WithHideFunc(is(types.SourceGitHub)),
	).WithShowHelp(true).WithWidth(max(v.e.width-2, 40))
	f.SubmitCmd = nil
	f.CancelCmd = navigate("/ingest")
	return f
}

func optionalCount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return errors.New("enter a positive number")
	}
	return nil
}

// request builds the trigger request from the form values.
func (in *triggerInput) request() ingest.TriggerRequest {
	limit, _ := strconv.Atoi(strings.TrimSpace(in.maxItems))
	req := ingest.TriggerRequest{Source: in.source}
	switch in.source {
	case types.SourceRSS:
		req.RSS = &ingest.RSSParams{FeedURLs: ingest.ParseFeeds(in.feeds), MaxItems: limit}
	case types.SourceHackerNews:
		req.HackerNews = &ingest.HackerNewsParams{StoryType: in.storyType, MaxItems: limit}
	case types.SourceGitHub:
		req.GitHub = &ingest.GitHubParams{
			Repositories:    ingest.ParseRepos(in.repos),
			IncludeIssues:   slices.Contains(in.includes, includeIssues),
			IncludePRs:      slices.Contains(in.includes, includePRs),
			IncludeReadme:   slices.Contains(in.includes, includeReadme),
			MaxItemsPerRepo: limit,
		}
	}
	return req
}

func (v *triggerView) Title() string { return "Trigger ingestion" }

func (v *triggerView) CapturesInput() bool { return true }

func (v *triggerView) Init() tea.Cmd { return v.form.Init() }

// submit validates and sends the form. Validation problems reopen the form
// with the entered values.
func (v *triggerView) submit() tea.Cmd {
	req := v.in.request()
	if err := req.Validate(); err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			v.problems = verr.Problems
		} else {
			v.problems = []string{err.Error()}
		}
		v.form = v.newForm()
		return v.form.Init()
	}
	v.problems = nil
	v.sending = true
	v.err = nil
	return fetch(v.e, "trigger", func(ctx context.Context) (types.TriggerResponse, error) {
		return v.e.svc.TriggerIngest(ctx, req)
	})
}

func (v *triggerView) Update(msg tea.Msg) (view, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		v.sending = false
		if msg.err != nil {
			v.err = msg.err
			v.form = v.newForm()
			return v, v.form.Init()
		}
		resp := msg.data.(types.TriggerResponse)
		return v, navigate("/ingest/" + strconv.FormatInt(resp.EventID, 10))
	}
	if v.sending {
		return v, nil
	}

	model, cmd := v.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		v.form = f
	}
	if v.form.State == huh.StateCompleted {
		return v, tea.Batch(cmd, v.submit())
	}
	return v, cmd
}

func (v *triggerView) View() string {
	var head []string
	for _, p := range v.problems {
		head = append(head, errorStyle.Render("• "+p))
	}
	if v.err != nil {
		head = append(head, errorStyle.Render("Could not start ingestion: "+v.err.Error()))
	}
	if v.sending {
		head = append(head, mutedStyle.Render("Starting ingestion…"))
	}
	return lines(strings.Join(head, "\n"), v.form.View())
}
