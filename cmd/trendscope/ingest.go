// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trendscope/internal/ingest"
	"github.com/pdiddy/trendscope/internal/query"
	"github.com/pdiddy/trendscope/internal/resources"
	"github.com/pdiddy/trendscope/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Start ingestion runs and follow their progress",
	Long: `Ingest lists ingestion runs, shows one run, and starts new runs for RSS
feeds, Hacker News or GitHub repositories. Runs execute on the backend; use
--watch to follow a run until it completes or fails.`,
}

// --- events subcommand ---

var ingestEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List ingestion runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runIngestEvents,
}

func runIngestEvents(cmd *cobra.Command, args []string) error {
	size := flagInt(cmd, "page-size")
	if size < 1 {
		return fmt.Errorf("page size must be positive")
	}
	f := resources.IngestEventFilter{
		Status: types.IngestStatus(flagString(cmd, "status")),
		Limit:  size,
		Offset: pageOffset(flagInt(cmd, "page"), size),
	}
	return withApp(cmd, func(a *app) error {
		if !flagBool(cmd, "watch") {
			list, err := a.svc.IngestEvents(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.out.IngestEvents(list)
		}

		var last types.IngestEventList
		err := a.svc.WatchIngestEvents(cmd.Context(), f, query.WallClock, func(list types.IngestEventList, err error) {
			if err != nil {
				a.log.Sugar().Warnf("refreshing ingest events: %v", err)
				return
			}
			last = list
			if resources.HasActiveEvents(list) {
				a.out.Message("%d run(s) in progress…", activeRuns(list))
			}
		})
		if err != nil {
			return err
		}
		return a.out.IngestEvents(last)
	})
}

func activeRuns(list types.IngestEventList) int {
	n := 0
	for _, e := range list.Events {
		if !e.Status.IsTerminal() {
			n++
		}
	}
	return n
}

// --- event subcommand ---

var ingestEventCmd = &cobra.Command{
	Use:   "event <id>",
	Short: "Show one ingestion run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("ingest event", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			if flagBool(cmd, "watch") {
				return watchEvent(cmd, a, id)
			}
			e, err := a.svc.IngestEvent(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.IngestEvent(e)
		})
	},
}

// watchEvent polls event id until it reaches a terminal status, printing
// each status change, then prints the final record.
func watchEvent(cmd *cobra.Command, a *app, id int64) error {
	var (
		last types.IngestEvent
		seen types.IngestStatus
	)
	err := a.svc.WatchIngestEvent(cmd.Context(), id, query.WallClock, func(e types.IngestEvent, err error) {
		if err != nil {
			a.log.Sugar().Warnf("refreshing ingest event %d: %v", id, err)
			return
		}
		last = e
		if e.Status != seen {
			seen = e.Status
			fmt.Fprintf(cmd.ErrOrStderr(), "event %d: %s\n", id, e.Status)
		}
	})
	if err != nil {
		return err
	}
	if err := a.out.IngestEvent(last); err != nil {
		return err
	}
	if last.Status == types.StatusFailed {
		return fmt.Errorf("ingest event %d failed", id)
	}
	return nil
}

// --- trigger subcommand ---

var ingestTriggerCmd = &cobra.Command{
	Use:   "trigger <source>",
	Short: "Start an ingestion run for rss, hackernews or github",
	Long: `Trigger starts an ingestion run on the backend.

  rss         --feed URL (repeatable) [--max-items N]
  hackernews  [--story-type top|new|best|ask|show] [--max-items N]
  github      --repo owner/name (repeatable) [--include issues,pull_requests,readme] [--max-items N]

The request is validated locally first; nothing is sent when a field is
invalid. With --watch the command follows the new run until it finishes.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestTrigger,
}

// triggerRequest builds the request for source from the trigger flags.
func triggerRequest(cmd *cobra.Command, source types.IngestSource) (ingest.TriggerRequest, error) {
	limit := flagInt(cmd, "max-items")
	req := ingest.TriggerRequest{Source: source}
	switch source {
	case types.SourceRSS:
		feeds, _ := cmd.Flags().GetStringSlice("feed")
		req.RSS = &ingest.RSSParams{FeedURLs: feeds, MaxItems: limit}
	case types.SourceHackerNews:
		req.HackerNews = &ingest.HackerNewsParams{StoryType: flagString(cmd, "story-type"), MaxItems: limit}
	case types.SourceGitHub:
		repos, _ := cmd.Flags().GetStringSlice("repo")
		includes, _ := cmd.Flags().GetStringSlice("include")
		gh := &ingest.GitHubParams{Repositories: ingest.ParseRepos(strings.Join(repos, "\n")), MaxItemsPerRepo: limit}
		for _, inc := range includes {
			switch strings.ToLower(strings.TrimSpace(inc)) {
			case "issues":
				gh.IncludeIssues = true
			case "pull_requests", "prs", "pulls":
				gh.IncludePRs = true
			case "readme":
				gh.IncludeReadme = true
			default:
				return req, fmt.Errorf("unknown --include %q: use issues, pull_requests or readme", inc)
			}
		}
		req.GitHub = gh
	}
	return req, nil
}

func runIngestTrigger(cmd *cobra.Command, args []string) error {
	source, err := ingest.ParseSource(args[0])
	if err != nil {
		return err
	}
	req, err := triggerRequest(cmd, source)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid trigger:\n  %s", strings.Join(verr.Problems, "\n  "))
		}
		return err
	}

	return withApp(cmd, func(a *app) error {
		resp, err := a.svc.TriggerIngest(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := a.out.Triggered(resp); err != nil {
			return err
		}
		if flagBool(cmd, "watch") {
			return watchEvent(cmd, a, resp.EventID)
		}
		return nil
	})
}

func init() {
	ef := ingestEventsCmd.Flags()
	ef.String("status", "", "only runs with this status (pending, running, processing, completed, failed)")
	ef.Int("page", 1, "page number, starting at 1")
	ef.Int("page-size", types.DefaultPageSize, "runs per page")
	ef.Bool("watch", false, "refresh while any listed run is in progress")

	ingestEventCmd.Flags().Bool("watch", false, "follow the run until it completes or fails")

	tf := ingestTriggerCmd.Flags()
	tf.StringSlice("feed", nil, "RSS feed URL (repeatable)")
	tf.StringSlice("repo", nil, "GitHub repository as owner/name (repeatable)")
	tf.StringSlice("include", []string{"readme"}, "GitHub content to ingest: issues, pull_requests, readme")
	tf.String("story-type", ingest.DefaultStoryType, "Hacker News list: top, new, best, ask or show")
	tf.Int("max-items", 0, "maximum items (per feed or repository); source default when 0")
	tf.Bool("watch", false, "follow the new run until it completes or fails")

	ingestCmd.AddCommand(ingestEventsCmd, ingestEventCmd, ingestTriggerCmd)
	rootCmd.AddCommand(ingestCmd)
}
