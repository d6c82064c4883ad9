// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/pkg/types"
)

var umapCmd = &cobra.Command{
	Use:   "umap",
	Short: "Plot the 2-D document embedding projection",
	Long: `UMAP prints the backend's 2-D projection of document embeddings as a
character plot, one letter per cluster. With --cluster only that cluster's
documents are plotted. JSON and YAML output carry the raw points.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cluster, err := optionalID("cluster", flagString(cmd, "cluster"))
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			var proj types.UMAPProjection
			if cluster != nil {
				proj, err = a.svc.UMAPCluster(cmd.Context(), *cluster)
			} else {
				proj, err = a.svc.UMAPDocuments(cmd.Context(), resources.UMAPFilter{Limit: flagInt(cmd, "limit")})
			}
			if err != nil {
				return err
			}
			return a.out.Projection(proj, flagInt(cmd, "width"), flagInt(cmd, "height"))
		})
	},
}

func init() {
	f := umapCmd.Flags()
	f.String("cluster", "", "only this cluster id")
	f.Int("limit", 0, "maximum points (backend default when 0)")
	f.Int("width", 72, "plot width in characters")
	f.Int("height", 24, "plot height in lines")
	rootCmd.AddCommand(umapCmd)
}
