// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/trendscope/internal/apiclient"
	"github.com/pdiddy/trendscope/internal/logging"
	"github.com/pdiddy/trendscope/internal/query"
	"github.com/pdiddy/trendscope/internal/render"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/internal/secrets"
	"github.com/pdiddy/trendscope/internal/session"
	"github.com/pdiddy/trendscope/pkg/types"
)

// errNotSignedIn is returned by read commands before any request is made.
var errNotSignedIn = errors.New(`not signed in: run "trendscope login" or put a token in .secrets/api-token`)

// app is the wiring shared by every command that talks to the backend.
type app struct {
	cfg     types.Config
	log     *zap.Logger
	store   *session.Store
	auth    *session.Manager
	adopted bool
	svc     *resources.Service
	out     *render.Printer
}

type appOptions struct {
	// dashboard keeps logs off the terminal and leaves the session for the
	// console to load.
	dashboard bool
}

// loadConfig reads viper settings into a Config with defaults applied.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.ApplyDefaults()

	dir, err := configDir()
	if err != nil {
		return cfg, fmt.Errorf("locating config directory: %w", err)
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = filepath.Join(dir, "sessions.db")
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	format, err := render.ParseFormat(flagString(cmd, "format"))
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{Console: cmd.ErrOrStderr(), Verbose: flagBool(cmd, "verbose")}
	if opts.dashboard {
		logOpts.Console = nil
		if cfg.Log.File == "" {
			cfg.Log.File = filepath.Join(filepath.Dir(cfg.Session.Path), "dashboard.log")
		}
	}
	log, err := logging.New(cfg.Log, logOpts)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(cfg.Session.Path)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:   cfg,
		log:   log,
		store: store,
		auth:  session.NewManager(store, cfg.API.BaseURL, session.WithLogger(log)),
		out:   render.New(cmd.OutOrStdout(), format),
	}

	if token := loadedSecrets.Value(secrets.APIToken, cfg.Session.Token); token != "" {
		if err := a.auth.Adopt(token); err != nil {
			a.close()
			return nil, fmt.Errorf("configured token: %w", err)
		}
		a.adopted = true
	} else if !opts.dashboard {
		if err := a.auth.Load(cmd.Context()); err != nil {
			log.Warn("reading saved session", zap.Error(err))
		}
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		Tokens:     a.auth.Token(),
		UserAgent:  cfg.API.UserAgent,
		MaxRetries: cfg.API.MaxRetries,
		Logger:     log,
		OnUnauthorized: func(*apiclient.APIError) {
			// The dashboard redirects to login itself. SignOut leaves the
			// stored session alone when the token was adopted.
			if opts.dashboard {
				return
			}
			if err := a.auth.SignOut(cmd.Context()); err != nil {
				log.Warn("clearing rejected session", zap.Error(err))
			}
		},
	})
	if err != nil {
		a.close()
		return nil, err
	}

	cache := query.NewCache(query.Options{StaleTime: cfg.Cache.StaleTime, GCTime: cfg.Cache.GCTime})
	a.svc = resources.NewService(client, cache, resources.Options{
		IngestInterval:    cfg.Poll.IngestInterval,
		DocumentsInterval: cfg.Poll.DocumentsInterval,
		SearchRate:        cfg.Poll.SearchRate,
		Logger:            log,
	})
	return a, nil
}

// requireSession fails fast when no usable session exists.
func (a *app) requireSession() error {
	if a.auth.Status() != session.StatusAuthenticated {
		return errNotSignedIn
	}
	return nil
}

func (a *app) close() {
	_ = a.log.Sync()
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing session store", zap.Error(err))
	}
}

// withApp runs fn with a signed-in app and translates a rejected session
// into an actionable message.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}
	err = fn(a)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return fmt.Errorf("%w: sign in again with \"trendscope login\"", err)
	}
	return err
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func flagInt(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

// optionalID parses an int64 flag value; empty means unset.
func optionalID(kind, raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(kind, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

// pageOffset converts a 1-based page number into an offset.
func pageOffset(page, size int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * size
}
