// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/present"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters [id]",
	Short: "List topic clusters, or show one with keywords and time series",
	Long: `Clusters lists every topic cluster with its document count, sentiment,
trending label and momentum. With an id it shows the cluster's keywords and
daily document counts.

--sort reorders the fetched list locally: documents (default), trending,
sentiment or label.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClusters,
}

func init() {
	clustersCmd.Flags().String("sort", string(present.SortByDocuments), "list order: documents, trending, sentiment or label")
	rootCmd.AddCommand(clustersCmd)
}

func runClusters(cmd *cobra.Command, args []string) error {
	by := present.ClusterSort(flagString(cmd, "sort"))
	switch by {
	case present.SortByDocuments, present.SortByTrending, present.SortBySentiment, present.SortByLabel:
	default:
		return fmt.Errorf("unknown sort %q: use documents, trending, sentiment or label", by)
	}

	return withApp(cmd, func(a *app) error {
		if len(args) == 1 {
			id, err := parseID("cluster", args[0])
			if err != nil {
				return err
			}
			detail, err := a.svc.Cluster(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.ClusterDetail(detail)
		}

		list, err := a.svc.Clusters(cmd.Context())
		if err != nil {
			return err
		}
		return a.out.Clusters(list, by)
	})
}
