// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a bearer token issued by your identity provider",
	Long: `Login stores a bearer token for the configured backend in the local
session database (one session per base URL). The token is read from --token,
from standard input when it is piped, or from a masked prompt.

JWT tokens are checked for expiry; opaque tokens are stored as given.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().String("token", "", "bearer token (read from stdin or a prompt when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	token := flagString(cmd, "token")
	if token == "" {
		token, err = readToken(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	if err := a.auth.SignIn(cmd.Context(), token); err != nil {
		return fmt.Errorf("signing in: %w", err)
	}
	u, _ := a.auth.User()
	a.out.Message("Signed in to %s as %s", a.cfg.API.BaseURL, u.Display())
	return nil
}

// readToken prompts on a terminal and reads one line otherwise.
func readToken(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		var token string
		err := huh.NewInput().
			Title("Bearer token").
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return session.ErrEmptyToken
				}
				return nil
			}).
			Value(&token).
			Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return "", errors.New("login canceled")
		}
		return token, err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
