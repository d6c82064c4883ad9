// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trendscope CLI and dashboard.
// Read commands print backend records as tables, JSON or YAML; dashboard
// starts the interactive console.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trendscope/internal/secrets"
	"github.com/pdiddy/trendscope/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials read from the secrets directory at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the trendscope CLI.
var rootCmd = &cobra.Command{
	Use:   "trendscope",
	Short: "Browse clusters, documents and ingestion runs of a trendscope backend",
	Long: `trendscope reads pre-computed analytics from a trendscope backend: topic
clusters with sentiment and momentum, ingested documents, insights, anomalies,
semantic search and UMAP projections. It also starts ingestion runs for RSS,
Hacker News and GitHub and follows them until they finish.

Every read command prints a table by default; use --format json or yaml to
script against the output. Run "trendscope dashboard" for the interactive
console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, warnings, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		loadedSecrets = s
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && len(s) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./trendscope.yaml or ~/.config/trendscope/trendscope.yaml)")
	flags.String("secrets-dir", ".secrets/", "directory of secret files (api-token)")
	flags.String("base-url", "", "backend REST root (default "+types.DefaultBaseURL+")")
	flags.StringP("format", "o", "table", "output format: table, json or yaml")
	flags.BoolP("verbose", "v", false, "log debug output to stderr")

	_ = viper.BindPFlag("api.base_url", flags.Lookup("base-url"))
}

// envKeys are the settings that may come from TRENDSCOPE_* variables.
var envKeys = []string{
	"api.base_url", "api.timeout", "api.user_agent", "api.max_retries",
	"cache.stale_time", "cache.gc_time",
	"poll.ingest_interval", "poll.documents_interval", "poll.search_debounce", "poll.search_rate",
	"session.path", "session.token",
	"log.file", "log.level",
}

func initConfig() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trendscope")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			viper.AddConfigPath(dir)
		}
	}

	viper.SetEnvPrefix("TRENDSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil {
		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// configDir is ~/.config/trendscope.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trendscope"), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
