// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		path   string
		want   Decision
	}{
		{"loading shows placeholder", StatusLoading, "/clusters/3", Decision{Outcome: Placeholder}},
		{"loading login placeholder", StatusLoading, "/login", Decision{Outcome: Placeholder}},
		{"anonymous redirected with next", StatusUnauthenticated, "/clusters/3", Decision{Redirect, "/login?next=%2Fclusters%2F3"}},
		{"anonymous may see login", StatusUnauthenticated, "/login?next=%2Fsearch", Decision{Outcome: Render}},
		{"signed in renders", StatusAuthenticated, "/ingest/new", Decision{Outcome: Render}},
		{"signed in leaves login", StatusAuthenticated, "/login?next=%2Fingest%2F7", Decision{Redirect, "/ingest/7"}},
		{"signed in bare login goes home", StatusAuthenticated, "/login", Decision{Redirect, HomePath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.status, tt.path))
		})
	}
}

func TestReturnToRejectsForeignTargets(t *testing.T) {
	for _, in := range []string{
		"/login?next=https%3A%2F%2Fevil.example",
		"/login?next=%2F%2Fevil.example",
		"/login?next=%2Flogin",
		"/login?next=",
		"/login",
	} {
		assert.Equal(t, HomePath, ReturnTo(in), in)
	}
	assert.Equal(t, "/documents?offset=50", ReturnTo(LoginFor("/documents?offset=50")))
}

func TestLoginFor(t *testing.T) {
	assert.Equal(t, LoginPath, LoginFor(""))
	assert.Equal(t, LoginPath, LoginFor("/login?next=%2Fx"))
	assert.Equal(t, "/login?next=%2Fumap", LoginFor("/umap"))
}
