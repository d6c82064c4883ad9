// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists one session per backend base URL in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the session database at path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		base_url TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		subject TEXT,
		email TEXT,
		name TEXT,
		expires_at TEXT,
		saved_at TEXT NOT NULL
	)`)
	return err
}

// Load returns the session saved for baseURL, or (nil, nil) when none exists.
func (s *Store) Load(ctx context.Context, baseURL string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, subject, email, name, expires_at, saved_at FROM sessions WHERE base_url = ?`,
		baseURL)

	var (
		sess                 Session
		subject, email, name sql.NullString
		expires              sql.NullString
		saved                string
	)
	err := row.Scan(&sess.Token, &subject, &email, &name, &expires, &saved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	sess.BaseURL = baseURL
	sess.User = User{Subject: subject.String, Email: email.String, Name: name.String}
	if expires.Valid && expires.String != "" {
		if t, err := time.Parse(time.RFC3339, expires.String); err == nil {
			sess.ExpiresAt = t
		}
	}
	if t, err := time.Parse(time.RFC3339, saved); err == nil {
		sess.SavedAt = t
	}
	return &sess, nil
}

// Save upserts sess under its base URL.
func (s *Store) Save(ctx context.Context, sess Session) error {
	var expires any
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt.UTC().Format(time.RFC3339)
	}
	saved := sess.SavedAt
	if saved.IsZero() {
		saved = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions (base_url, token, subject, email, name, expires_at, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET
			token = excluded.token,
			subject = excluded.subject,
			email = excluded.email,
			name = excluded.name,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		sess.BaseURL, sess.Token, sess.User.Subject, sess.User.Email, sess.User.Name,
		expires, saved.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Delete removes the session for baseURL. Deleting a missing row is not an error.
func (s *Store) Delete(ctx context.Context, baseURL string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE base_url = ?`, baseURL); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
