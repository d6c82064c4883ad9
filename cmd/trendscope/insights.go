// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/resources"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List generated insights, optionally for one cluster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cluster, err := optionalID("cluster", flagString(cmd, "cluster"))
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			list, err := a.svc.Insights(cmd.Context(), resources.InsightFilter{ClusterID: cluster})
			if err != nil {
				return err
			}
			return a.out.Insights(list)
		})
	},
}

func init() {
	insightsCmd.Flags().String("cluster", "", "only insights for this cluster id")
	rootCmd.AddCommand(insightsCmd)
}
