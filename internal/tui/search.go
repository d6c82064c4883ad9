// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/query"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/pkg/types"
)

type searchView struct {
	e         env
	input     textinput.Model
	debounce  *query.Debouncer
	threshold *float64
	params    resources.SearchParams
	results   remote[types.SearchResponse]
	cursor    int
}

func newSearchView(e env, req request) (view, error) {
	ti := textinput.New()
	ti.Placeholder = "Search documents by meaning…"
	ti.Prompt = "› "
	ti.CharLimit = 200
	ti.Width = max(e.width-4, 20)
	ti.SetValue(req.query.Get("q"))
	ti.Focus()

	v := &searchView{e: e, input: ti, debounce: &query.Debouncer{Delay: e.debounce}}
	if raw := req.query.Get("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid similarity threshold %q", raw)
		}
		v.threshold = &t
	}
	return v, nil
}

func (v *searchView) Title() string { return "Search" }

func (v *searchView) CapturesInput() bool { return true }

func (v *searchView) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, v.search(v.input.Value()))
}

// search runs q now if it is searchable; a blank query clears results.
func (v *searchView) search(q string) tea.Cmd {
	v.params = resources.SearchParams{Query: q, SimilarityThreshold: v.threshold}
	v.cursor = 0
	if !v.params.Enabled() {
		v.results = remote[types.SearchResponse]{}
		return nil
	}
	p := v.params
	tag := resources.ResSearch + "?" + p.Values().Encode()
	v.results.start(tag)
	return fetch(v.e, tag, func(ctx context.Context) (types.SearchResponse, error) { return v.e.svc.Search(ctx, p) })
}

func (v *searchView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		v.results.accept(msg)
		return v, nil
	case debounceMsg:
		if v.debounce.Current(msg.token) {
			return v, v.search(v.input.Value())
		}
		return v, nil
	case contentSizeMsg:
		v.input.Width = max(msg.width-4, 20)
		return v, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			v.cursor = max(v.cursor-1, 0)
			return v, nil
		case "down":
			if v.results.have {
				v.cursor = min(v.cursor+1, max(len(v.results.data.Results)-1, 0))
			}
			return v, nil
		case "enter":
			if v.results.have && v.cursor < len(v.results.data.Results) {
				sorted := present.SortSearchResults(v.results.data.Results)
				return v, navigate("/documents/" + sorted[v.cursor].ID.String())
			}
			return v, v.search(v.input.Value())
		}
	}

	before := v.input.Value()
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	if v.input.Value() == before {
		return v, cmd
	}
	token := v.debounce.Next()
	id := v.e.id
	tick := tea.Tick(v.debounce.Delay, func(time.Time) tea.Msg { return debounceMsg{view: id, token: token} })
	return v, tea.Batch(cmd, tick)
}

func (v *searchView) View() string {
	var body string
	switch {
	case !v.params.Enabled():
		body = mutedStyle.Render("Type to search. Results rank by semantic similarity.")
	default:
		body = v.results.render("search",
			func(r types.SearchResponse) bool { return len(r.Results) == 0 },
			v.resultList)
	}
	return lines(v.input.View(), "", body)
}

func (v *searchView) resultList(r types.SearchResponse) string {
	var b strings.Builder
	for i, res := range present.SortSearchResults(r.Results) {
		marker := "  "
		if i == v.cursor {
			marker = "▸ "
		}
		rel := present.Relevance(res.SimilarityScore)
		tone := present.ToneNeutral
		if rel >= 75 {
			tone = present.TonePositive
		}
		fmt.Fprintf(&b, "%s%s  %s\n", marker, toned(tone, fmt.Sprintf("%3.0f%%", rel)), clip(res.Title, max(v.e.width-12, 20)))
	}
	fmt.Fprintf(&b, "\n%s", mutedStyle.Render(fmt.Sprintf("%d results · ↑/↓ select · enter open", r.Total)))
	return b.String()
}
