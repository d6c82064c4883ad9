// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"net/url"
	"strings"
)

const (
	LoginPath = "/login"
	HomePath  = "/clusters"
)

// Outcome is what the router does with a requested path.
type Outcome int

const (
	Render Outcome = iota
	Placeholder
	Redirect
)

// Decision pairs an Outcome with the redirect target, when there is one.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Guard decides whether path may render for a user in status.
// Every route except login is protected. While the session is still
// loading a placeholder is shown instead of redirecting.
func Guard(status Status, path string) Decision {
	public := routePath(path) == LoginPath
	switch status {
	case StatusLoading:
		return Decision{Outcome: Placeholder}
	case StatusAuthenticated:
		if public {
			return Decision{Outcome: Redirect, Target: ReturnTo(path)}
		}
		return Decision{Outcome: Render}
	}
	if public {
		return Decision{Outcome: Render}
	}
	return Decision{Outcome: Redirect, Target: LoginFor(path)}
}

// LoginFor returns the login path that comes back to path afterwards.
func LoginFor(path string) string {
	if path == "" || routePath(path) == LoginPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"next": {path}}.Encode()
}

// ReturnTo extracts the post-login destination from a login path.
// Anything that is not a local absolute path falls back to HomePath.
func ReturnTo(loginPath string) string {
	u, err := url.Parse(loginPath)
	if err != nil {
		return HomePath
	}
	next := u.Query().Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || routePath(next) == LoginPath {
		return HomePath
	}
	return next
}

func routePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.TrimRight(p, "/")
}
