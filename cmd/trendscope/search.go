// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/resources"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search documents by meaning",
	Long: `Search runs a semantic search over ingested documents and prints the
matches ranked by relevance. Words after the command form one query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Float64("threshold", 0, "minimum similarity, 0 to 1 (backend default when unset)")
	searchCmd.Flags().Int("limit", 0, "maximum results (backend default when 0)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	p := resources.SearchParams{Query: strings.Join(args, " "), Limit: flagInt(cmd, "limit")}
	if cmd.Flags().Changed("threshold") {
		t, _ := cmd.Flags().GetFloat64("threshold")
		if t < 0 || t > 1 {
			return fmt.Errorf("threshold must be between 0 and 1")
		}
		p.SimilarityThreshold = &t
	}

	return withApp(cmd, func(a *app) error {
		resp, err := a.svc.Search(cmd.Context(), p)
		if errors.Is(err, resources.ErrEmptyQuery) {
			return fmt.Errorf("enter something to search for")
		}
		if err != nil {
			return err
		}
		return a.out.Search(resp)
	})
}
