// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session for the configured backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.auth.SignOut(cmd.Context()); err != nil {
			return err
		}
		a.out.Message("Signed out of %s", a.cfg.API.BaseURL)
		if a.adopted {
			a.out.Message("A token is still configured in .secrets/api-token or TRENDSCOPE_SESSION_TOKEN.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
