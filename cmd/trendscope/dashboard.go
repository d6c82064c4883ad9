// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/trendscope/internal/session"
	"github.com/pdiddy/trendscope/internal/telemetry"
	"github.com/pdiddy/trendscope/internal/tui"
	"github.com/pdiddy/trendscope/pkg/types"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive analytics console",
	Long: `Dashboard opens a full-screen console with a sidebar of sections
(clusters, documents, insights, anomalies, search, projection, ingestion).
Sign in from the console or beforehand with "trendscope login". Live views
refresh while ingestion runs or document processing are in progress.

Logs go to the rotated log file only (log.file, default
~/.config/trendscope/dashboard.log). With --metrics-addr the process also
serves Prometheus metrics at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().String("metrics-addr", "", "serve /metrics on this address, e.g. :9464")
	dashboardCmd.Flags().Int("page-size", types.DefaultPageSize, "rows per page in list views")
	dashboardCmd.Flags().String("start", session.HomePath, "first page to open, e.g. /ingest or /search?q=gpu")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{dashboard: true})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if addr := flagString(cmd, "metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		srv := &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		a.log.Info("serving metrics", zap.String("addr", ln.Addr().String()))

		g.Go(func() error {
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// Leaving the console stops the metrics server too.
		defer cancel()
		return tui.Run(ctx, tui.Deps{
			Service:  a.svc,
			Session:  a.auth,
			Logger:   a.log,
			PageSize: flagInt(cmd, "page-size"),
			Debounce: a.cfg.Poll.SearchDebounce,
			Start:    flagString(cmd, "start"),
		})
	})
	return g.Wait()
}
