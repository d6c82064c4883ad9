// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/go-openapi/strfmt"
	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/present"
	"github.com/pdiddy/trendscope/internal/query"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/pkg/types"
)

var documentsCmd = &cobra.Command{
	Use:   "documents [id]",
	Short: "List ingested documents, or show one with its text and clusters",
	Long: `Documents lists ingested documents page by page, optionally filtered by
cluster, processing state and source. With a document id (a UUID) it shows
the full text and cluster memberships.

--watch keeps refreshing the page while any listed document is still being
processed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocuments,
}

func init() {
	f := documentsCmd.Flags()
	f.String("cluster", "", "only documents in this cluster id")
	f.String("processed", "", "filter by processing state: true or false")
	f.String("source", "", "only documents from this source (rss, hackernews, github)")
	f.Int("page", 1, "page number, starting at 1")
	f.Int("page-size", types.DefaultPageSize, "documents per page")
	f.Bool("watch", false, "refresh while documents are being processed")
	rootCmd.AddCommand(documentsCmd)
}

func documentFilter(cmd *cobra.Command) (resources.DocumentFilter, error) {
	size := flagInt(cmd, "page-size")
	if size < 1 {
		return resources.DocumentFilter{}, fmt.Errorf("page size must be positive")
	}
	f := resources.DocumentFilter{
		Source: flagString(cmd, "source"),
		Limit:  size,
		Offset: pageOffset(flagInt(cmd, "page"), size),
	}

	cluster, err := optionalID("cluster", flagString(cmd, "cluster"))
	if err != nil {
		return f, err
	}
	f.ClusterID = cluster

	if raw := flagString(cmd, "processed"); raw != "" {
		p, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("invalid --processed %q: use true or false", raw)
		}
		f.Processed = &p
	}
	return f, nil
}

func runDocuments(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && !strfmt.IsUUID(args[0]) {
		return fmt.Errorf("invalid document id %q: expected a UUID", args[0])
	}
	f, err := documentFilter(cmd)
	if err != nil {
		return err
	}

	return withApp(cmd, func(a *app) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			doc, err := a.svc.Document(ctx, strfmt.UUID(args[0]))
			if err != nil {
				return err
			}
			return a.out.DocumentDetail(doc)
		}

		show := func(list types.DocumentList) error {
			return a.out.Documents(list, present.Paginate(f.Offset, f.Limit, list.Total))
		}
		if !flagBool(cmd, "watch") {
			list, err := a.svc.Documents(ctx, f)
			if err != nil {
				return err
			}
			return show(list)
		}

		var last types.DocumentList
		err := a.svc.WatchDocuments(ctx, f, query.WallClock, func(list types.DocumentList, err error) {
			if err != nil {
				a.log.Sugar().Warnf("refreshing documents: %v", err)
				return
			}
			last = list
			if resources.HasPendingDocuments(list) {
				a.out.Message("%d of %d listed documents still processing…", pending(list), len(list.Documents))
			}
		})
		if err != nil {
			return err
		}
		return show(last)
	})
}

func pending(list types.DocumentList) int {
	n := 0
	for _, d := range list.Documents {
		if !d.Processed {
			n++
		}
	}
	return n
}
