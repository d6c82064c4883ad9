// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/resources"
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "List detected anomalies, most severe first",
	Long: `Anomalies lists spikes and drops the backend detected in cluster time
series. Filter by cluster, anomaly type and a date range (YYYY-MM-DD).`,
	Args: cobra.NoArgs,
	RunE: runAnomalies,
}

func init() {
	f := anomaliesCmd.Flags()
	f.String("cluster", "", "only anomalies for this cluster id")
	f.String("type", "", "only this anomaly type, e.g. spike or drop")
	f.String("since", "", "first day to include (YYYY-MM-DD)")
	f.String("until", "", "last day to include (YYYY-MM-DD)")
	f.Int("limit", 0, "maximum anomalies to return (backend default when 0)")
	rootCmd.AddCommand(anomaliesCmd)
}

func optionalDate(flag, raw string) (*strfmt.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := strfmt.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", flag, raw)
	}
	return &d, nil
}

func runAnomalies(cmd *cobra.Command, args []string) error {
	cluster, err := optionalID("cluster", flagString(cmd, "cluster"))
	if err != nil {
		return err
	}
	since, err := optionalDate("since", flagString(cmd, "since"))
	if err != nil {
		return err
	}
	until, err := optionalDate("until", flagString(cmd, "until"))
	if err != nil {
		return err
	}
	f := resources.AnomalyFilter{
		ClusterID: cluster,
		Type:      flagString(cmd, "type"),
		StartDate: since,
		EndDate:   until,
		Limit:     flagInt(cmd, "limit"),
	}

	return withApp(cmd, func(a *app) error {
		list, err := a.svc.Anomalies(cmd.Context(), f)
		if err != nil {
			return err
		}
		return a.out.Anomalies(list)
	})
}
