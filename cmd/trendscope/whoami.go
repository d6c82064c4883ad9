// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/render"
	"github.com/pdiddy/trendscope/internal/session"
)

// identity is the exported view of a session; the token is never printed.
type identity struct {
	BaseURL   string     `json:"base_url" yaml:"base_url"`
	Status    string     `json:"status" yaml:"status"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Email     string     `json:"email,omitempty" yaml:"email,omitempty"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Source    string     `json:"source" yaml:"source"`
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user for the configured backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		id := identity{BaseURL: a.cfg.API.BaseURL, Status: a.auth.Status().String(), Source: "session store"}
		if a.adopted {
			id.Source = "configured token"
		}
		if s, ok := a.auth.Session(); ok && a.auth.Status() == session.StatusAuthenticated {
			id.Subject, id.Email, id.Name = s.User.Subject, s.User.Email, s.User.Name
			if !s.ExpiresAt.IsZero() {
				id.ExpiresAt = &s.ExpiresAt
			}
		}

		if a.out.Format() != render.FormatTable {
			return a.out.Encode(id)
		}
		if id.Status != session.StatusAuthenticated.String() {
			a.out.Message("Not signed in to %s", id.BaseURL)
			return nil
		}
		u, _ := a.auth.User()
		a.out.Message("%s (%s)", u.Display(), id.Source)
		a.out.Message("backend  %s", id.BaseURL)
		if id.ExpiresAt != nil {
			a.out.Message("expires  %s (in %s)", id.ExpiresAt.Format(time.RFC3339), time.Until(*id.ExpiresAt).Round(time.Minute))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
