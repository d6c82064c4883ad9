// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/pdiddy/trendscope/internal/session"
)

// signer is the part of the session the login view drives.
type signer interface {
	SignIn(ctx context.Context, token string) error
}

type loginView struct {
	e       env
	auth    signer
	token   *string
	form    *huh.Form
	err     error
	sending bool
}

func newLoginView(e env, _ request) (view, error) {
	v := &loginView{e: e, auth: e.auth, token: new(string)}
	v.form = v.newForm()
	return v, nil
}

func (v *loginView) newForm() *huh.Form {
	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Access token").
			Description("Paste the bearer token issued by your identity provider.").
			EchoMode(huh.EchoModePassword).
			Value(v.token).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return session.ErrEmptyToken
				}
				return nil
			}),
	)).WithShowHelp(false).WithWidth(max(v.e.width-2, 40))
	f.SubmitCmd = nil
	f.CancelCmd = nil
	return f
}

func (v *loginView) Title() string { return "Sign in" }

func (v *loginView) CapturesInput() bool { return true }

func (v *loginView) Init() tea.Cmd { return v.form.Init() }

func (v *loginView) submit() tea.Cmd {
	v.sending = true
	v.err = nil
	id, ctx, token, auth := v.e.id, v.e.ctx, *v.token, v.auth
	return func() tea.Msg {
		return signedInMsg{view: id, err: auth.SignIn(ctx, token)}
	}
}

func (v *loginView) Update(msg tea.Msg) (view, tea.Cmd) {
	if msg, ok := msg.(signedInMsg); ok {
		v.sending = false
		v.err = msg.err
		*v.token = ""
		v.form = v.newForm()
		return v, v.form.Init()
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

func (v *loginView) View() string {
	head := ""
	switch {
	case v.sending:
		head = mutedStyle.Render("Signing in…")
	case v.err != nil:
		head = errorStyle.Render("Sign in failed: " + v.err.Error())
	}
	return lines(head, v.form.View())
}
