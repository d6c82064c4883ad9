// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session tracks who is signed in to the analytics backend and
// decides which dashboard routes they may see.
//
// Tokens are issued by an external identity provider. Claims are read
// without verifying the signature: the backend verifies, this package only
// needs the subject, display fields and expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Status is the authentication state the router consults.
type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

var (
	ErrNoSession    = errors.New("not signed in")
	ErrEmptyToken   = errors.New("token is empty")
	ErrTokenExpired = errors.New("token has expired")
)

// User is the identity carried by the token.
type User struct {
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Display returns the best human label for u.
func (u User) Display() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	case u.Subject != "":
		return u.Subject
	}
	return "signed in"
}

// Session is a bearer token bound to one backend.
type Session struct {
	BaseURL   string
	Token     string
	User      User
	ExpiresAt time.Time // zero for opaque tokens
	SavedAt   time.Time
}

// Provider is what the CLI and dashboard need from the session layer.
type Provider interface {
	Status() Status
	User() (User, bool)
	SignIn(ctx context.Context, token string) error
	SignOut(ctx context.Context) error
	Token() oauth2.TokenSource
}

// Storage persists sessions. *Store implements it.
type Storage interface {
	Load(ctx context.Context, baseURL string) (*Session, error)
	Save(ctx context.Context, sess Session) error
	Delete(ctx context.Context, baseURL string) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger; the default discards.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager is the Provider backed by a Storage. A nil Storage keeps
// sessions in memory only.
type Manager struct {
	store   Storage
	baseURL string
	now     func() time.Time
	log     *zap.Logger

	mu      sync.RWMutex
	loaded  bool
	adopted bool // current came from Adopt and is not in storage
	current *Session
}

var _ Provider = (*Manager)(nil)

// NewManager returns a Manager in the loading state. Call Load before
// routing, or Adopt to use a token without touching storage.
func NewManager(store Storage, baseURL string, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		baseURL: baseURL,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the persisted session. Status leaves loading even on error.
func (m *Manager) Load(ctx context.Context) error {
	var (
		sess *Session
		err  error
	)
	if m.store != nil {
		sess, err = m.store.Load(ctx, m.baseURL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = true
	m.adopted = false
	if err != nil {
		m.current = nil
		return err
	}
	if sess != nil && m.expired(*sess) {
		m.log.Info("stored session expired", zap.String("base_url", m.baseURL), zap.Time("expires_at", sess.ExpiresAt))
	}
	m.current = sess
	return nil
}

// Adopt uses token for this process without persisting it.
func (m *Manager) Adopt(token string) error {
	sess, err := m.parse(token)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.loaded = true
	m.adopted = true
	m.current = &sess
	m.mu.Unlock()
	return nil
}

// SignIn validates token, persists it and makes it current.
func (m *Manager) SignIn(ctx context.Context, token string) error {
	sess, err := m.parse(token)
	if err != nil {
		return err
	}
	sess.SavedAt = m.now()
	if m.store != nil {
		if err := m.store.Save(ctx, sess); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.loaded = true
	m.adopted = false
	m.current = &sess
	m.mu.Unlock()
	m.log.Info("signed in", zap.String("base_url", m.baseURL), zap.String("subject", sess.User.Subject))
	return nil
}

// SignOut forgets the current session, in memory and in storage. An
// adopted token was never saved, so the stored session is left alone.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	adopted := m.adopted
	m.loaded = true
	m.adopted = false
	m.current = nil
	m.mu.Unlock()

	if m.store == nil || adopted {
		return nil
	}
	return m.store.Delete(ctx, m.baseURL)
}

// Status reports loading until Load or Adopt has run.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case !m.loaded:
		return StatusLoading
	case m.current == nil || m.expired(*m.current):
		return StatusUnauthenticated
	}
	return StatusAuthenticated
}

// User returns the signed-in identity.
func (m *Manager) User() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.expired(*m.current) {
		return User{}, false
	}
	return m.current.User, true
}

// Session returns a copy of the current session, if any.
func (m *Manager) Session() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Token returns a source that reads the current token on every call, so
// the API client picks up sign-in and sign-out without being rebuilt.
func (m *Manager) Token() oauth2.TokenSource {
	return managerSource{m}
}

type managerSource struct{ m *Manager }

func (s managerSource) Token() (*oauth2.Token, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	cur := s.m.current
	if cur == nil {
		return nil, ErrNoSession
	}
	if s.m.expired(*cur) {
		return nil, ErrTokenExpired
	}
	return &oauth2.Token{AccessToken: cur.Token, TokenType: "Bearer", Expiry: cur.ExpiresAt}, nil
}

func (m *Manager) expired(s Session) bool {
	return !s.ExpiresAt.IsZero() && !m.now().Before(s.ExpiresAt)
}

// parse builds a Session from token. JWTs contribute claims; anything
// that is not three dot-separated segments is accepted as opaque.
func (m *Manager) parse(token string) (Session, error) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return Session{}, ErrEmptyToken
	}
	sess := Session{BaseURL: m.baseURL, Token: token}
	if strings.Count(token, ".") != 2 {
		return sess, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("reading token claims: %w", err)
	}
	sub, _ := claims.GetSubject()
	sess.User = User{Subject: sub, Email: stringClaim(claims, "email"), Name: stringClaim(claims, "name")}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	if m.expired(sess) {
		return Session{}, ErrTokenExpired
	}
	return sess, nil
}

func stringClaim(c jwt.MapClaims, name string) string {
	s, _ := c[name].(string)
	return s
}
