// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/internal/session"
)

// view is one screen in the content outlet. Views are rebuilt on every
// navigation; each instance gets a fresh id so results and poll ticks meant
// for a view that has been left are dropped by the app.
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (view, tea.Cmd)
	View() string
	Title() string
}

// inputView is implemented by views that consume printable keys, so the
// app leaves single-letter shortcuts to them.
type inputView interface {
	CapturesInput() bool
}

// env is what a view needs from the app.
type env struct {
	ctx      context.Context
	svc      *resources.Service
	auth     session.Provider
	id       uint64
	width    int
	height   int
	pageSize int
	debounce time.Duration
	now      func() time.Time
}

// Messages scoped to one view instance.
type (
	loadedMsg struct {
		view uint64
		tag  string
		data any
		err  error
	}
	pollMsg struct {
		view uint64
	}
	debounceMsg struct {
		view  uint64
		token uint64
	}
)

// Messages handled by the app.
type (
	navigateMsg struct{ path string }
	backMsg     struct{}
	// contentSizeMsg tells the current view how much room the outlet has.
	contentSizeMsg struct{ width, height int }
	// refreshMsg asks the current view to re-read after Revalidate.
	refreshMsg       struct{}
	sessionLoadedMsg struct{ err error }
	signedInMsg      struct {
		view uint64
		err  error
	}
)

func scopeOf(msg tea.Msg) (uint64, bool) {
	switch m := msg.(type) {
	case loadedMsg:
		return m.view, true
	case pollMsg:
		return m.view, true
	case debounceMsg:
		return m.view, true
	case signedInMsg:
		return m.view, true
	}
	return 0, false
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// fetch runs fn off the event loop and reports under tag.
func fetch[T any](e env, tag string, fn func(ctx context.Context) (T, error)) tea.Cmd {
	id, ctx := e.id, e.ctx
	return func() tea.Msg {
		data, err := fn(ctx)
		return loadedMsg{view: id, tag: tag, data: data, err: err}
	}
}

func (e env) pollAfter(d time.Duration) tea.Cmd {
	id := e.id
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{view: id} })
}

// remote is the load state of one resource in a view.
type remote[T any] struct {
	tag     string
	data    T
	have    bool
	loading bool
	err     error
}

// start marks a load of tag in flight; results for other tags are ignored.
func (r *remote[T]) start(tag string) {
	r.tag = tag
	r.loading = true
}

// accept applies msg if it belongs to the current tag. The last good data
// is kept on error so a failed refresh still shows something.
func (r *remote[T]) accept(msg loadedMsg) bool {
	if msg.tag != r.tag {
		return false
	}
	r.loading = false
	if msg.err != nil {
		r.err = msg.err
		return true
	}
	data, ok := msg.data.(T)
	if !ok {
		return false
	}
	r.data, r.have, r.err = data, true, nil
	return true
}

// render draws loading, error and empty states around body.
func (r remote[T]) render(resource string, empty func(T) bool, body func(T) string) string {
	switch {
	case !r.have && r.err != nil:
		return errorStyle.Render(present.LoadError(resource, r.err))
	case !r.have:
		return mutedStyle.Render("Loading " + resource + "…")
	case empty != nil && empty(r.data):
		return mutedStyle.Render(present.EmptyState(resource))
	}
	out := body(r.data)
	if r.err != nil {
		out = errorStyle.Render(present.LoadError(resource, r.err)) + "\n\n" + out
	}
	return out
}

func lines(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
