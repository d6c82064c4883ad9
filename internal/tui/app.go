// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is the interactive dashboard: a sidebar of sections, a top
// bar with the signed-in user, a notice line and one routed content view.
//
// Every route except /login is guarded by the session. Views load through
// the shared resource cache, poll while their data is still changing, and
// stop polling as soon as they are left.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/pdiddy/trendscope/internal/apiclient"
	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/internal/session"
	"github.com/pdiddy/trendscope/pkg/types"
)

// Deps wires the dashboard to its backend.
type Deps struct {
	Service  *resources.Service
	Session  session.Provider
	Logger   *zap.Logger
	PageSize int
	Debounce time.Duration

	// Start is the first path shown; default /clusters.
	Start string
}

// loader is implemented by providers whose state must be read before
// routing, such as *session.Manager.
type loader interface {
	Load(ctx context.Context) error
}

// Model is the root bubbletea model.
type Model struct {
	deps Deps
	ctx  context.Context
	log  *zap.Logger

	width, height int

	path    string
	pending string
	history []string
	current view
	viewID  uint64
	notice  string
}

// New returns the dashboard model. ctx bounds every backend request.
func New(ctx context.Context, deps Deps) *Model {
	if deps.PageSize <= 0 {
		deps.PageSize = types.DefaultPageSize
	}
	if deps.Debounce <= 0 {
		deps.Debounce = 300 * time.Millisecond
	}
	if deps.Start == "" {
		deps.Start = session.HomePath
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{deps: deps, ctx: ctx, log: log.Named("tui"), width: 100, height: 30}
}

// Run starts the program on the terminal and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	start := m.deps.Start
	if l, ok := m.deps.Session.(loader); ok && m.deps.Session.Status() == session.StatusLoading {
		ctx := m.ctx
		m.pending = start
		m.current = placeholderView{}
		return func() tea.Msg { return sessionLoadedMsg{err: l.Load(ctx)} }
	}
	return m.navigate(start, false)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if id, scoped := scopeOf(msg); scoped && id != m.viewID {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.forward(m.contentSize())

	case sessionLoadedMsg:
		if msg.err != nil {
			m.log.Warn("loading session", zap.Error(msg.err))
			m.notice = "Could not read the saved session: " + msg.err.Error()
		}
		path := m.pending
		m.pending = ""
		if path == "" {
			path = m.deps.Start
		}
		return m, m.navigate(path, false)

	case navigateMsg:
		return m, m.navigate(msg.path, true)

	case backMsg:
		return m, m.back()

	case tea.FocusMsg:
		m.deps.Service.Revalidate()
		return m, m.forward(refreshMsg{})

	case loadedMsg:
		if errors.Is(msg.err, apiclient.ErrUnauthorized) {
			return m, m.expire()
		}

	case signedInMsg:
		if msg.err == nil {
			m.notice = ""
			return m, m.navigate(session.ReturnTo(m.path), false)
		}

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	return m, m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "esc":
		return m.back(), true
	case "ctrl+x":
		return m.signOut(), true
	}
	if iv, ok := m.current.(inputView); ok && iv.CapturesInput() {
		return nil, false
	}
	switch k := msg.String(); k {
	case "q":
		return tea.Quit, true
	case "r":
		m.deps.Service.Revalidate()
		return m.forward(refreshMsg{}), true
	default:
		for _, item := range navItems {
			if item.key == k {
				return m.navigate(item.path, true), true
			}
		}
	}
	return nil, false
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	if m.current == nil {
		return nil
	}
	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return cmd
}

// navigate applies the session guard and mounts the view for path.
func (m *Model) navigate(path string, remember bool) tea.Cmd {
guard:
	for range 3 {
		d := session.Guard(m.deps.Session.Status(), path)
		switch d.Outcome {
		case session.Placeholder:
			m.pending = path
			m.current = placeholderView{}
			return nil
		case session.Redirect:
			path = d.Target
			remember = false
		default:
			break guard
		}
	}

	r, req, ok := match(path)
	if !ok {
		m.notice = fmt.Sprintf("No page at %s", path)
		if path == session.HomePath {
			return nil
		}
		return m.navigate(session.HomePath, false)
	}

	m.viewID++
	e := m.env()
	v, err := r.build(e, req)
	if err != nil {
		m.notice = err.Error()
		return nil
	}

	if remember && m.path != "" && m.path != path {
		m.history = append(m.history, m.path)
	}
	m.path = path
	m.current = v
	m.log.Debug("navigate", zap.String("path", path), zap.Uint64("view", m.viewID))
	return v.Init()
}

func (m *Model) back() tea.Cmd {
	for len(m.history) > 0 {
		prev := m.history[len(m.history)-1]
		m.history = m.history[:len(m.history)-1]
		if prev != m.path {
			return m.navigate(prev, false)
		}
	}
	return nil
}

// expire handles a 401 from any view: the session is dropped, cached data
// cleared and the user sent to sign in, returning here afterwards.
func (m *Model) expire() tea.Cmd {
	m.notice = present.SessionExpiredMessage
	if err := m.deps.Session.SignOut(m.ctx); err != nil {
		m.log.Warn("clearing session", zap.Error(err))
	}
	m.deps.Service.Cache().Clear()
	m.history = nil
	return m.navigate(session.LoginFor(m.path), false)
}

func (m *Model) signOut() tea.Cmd {
	if err := m.deps.Session.SignOut(m.ctx); err != nil {
		m.notice = "Sign out failed: " + err.Error()
		return nil
	}
	m.deps.Service.Cache().Clear()
	m.history = nil
	m.notice = "Signed out."
	return m.navigate(session.LoginPath, false)
}

func (m *Model) env() env {
	w, h := m.contentDims()
	return env{
		ctx:      m.ctx,
		svc:      m.deps.Service,
		auth:     m.deps.Session,
		id:       m.viewID,
		width:    w,
		height:   h,
		pageSize: m.deps.PageSize,
		debounce: m.deps.Debounce,
		now:      time.Now,
	}
}

func (m *Model) contentDims() (int, int) {
	// top bar, notice, help bar
	return max(m.width-sidebarWidth-4, 20), max(m.height-4, 5)
}

func (m *Model) contentSize() contentSizeMsg {
	w, h := m.contentDims()
	return contentSizeMsg{width: w, height: h}
}

// Path is the current route, for tests and the window title.
func (m *Model) Path() string { return m.path }

// Notice is the current notice line.
func (m *Model) Notice() string { return m.notice }

func (m *Model) View() string {
	title := "trendscope"
	if m.current != nil {
		title = m.current.Title()
	}

	user := "not signed in"
	if u, ok := m.deps.Session.User(); ok {
		user = u.Display()
	}
	status := m.deps.Session.Status().String()
	left := titleStyle.Render("trendscope") + "  " + title
	right := user + " · " + status
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	top := topBarStyle.Width(m.width).Render(left + fmt.Sprintf("%*s", gap, "") + right)

	notice := ""
	if m.notice != "" {
		notice = noticeStyle.Render(m.notice)
	}

	body := ""
	if m.current != nil {
		body = m.current.View()
	}
	_, h := m.contentDims()
	main := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Height(h).Render(m.sidebar()),
		contentStyle.Render(body))

	help := helpBarStyle.Render("1-7 sections · esc back · r refresh · ctrl+x sign out · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, top, notice, main, help)
}

func (m *Model) sidebar() string {
	active := section(m.path)
	var out []string
	for _, item := range navItems {
		label := item.key + " " + item.label
		if item.path == active {
			out = append(out, navActiveStyle.Render("▸ "+label))
		} else {
			out = append(out, navItemStyle.Render("  "+label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// placeholderView is shown while the session is still loading.
type placeholderView struct{}

func (placeholderView) Init() tea.Cmd { return nil }

func (v placeholderView) Update(tea.Msg) (view, tea.Cmd) { return v, nil }

func (placeholderView) View() string { return mutedStyle.Render("Checking your session…") }

func (placeholderView) Title() string { return "Loading" }
