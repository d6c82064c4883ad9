// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest builds and validates ingestion trigger requests before they
// are sent to POST /ingest/trigger.
package ingest

import (
	"fmt"
	"strings"

	"github.com/pdiddy/trendscope/pkg/types"
)

// RSSParams configures an RSS ingestion run.
type RSSParams struct {
	FeedURLs []string `json:"feed_urls" validate:"min=1,dive,notblank,http_url"`
	MaxItems int      `json:"max_items_per_feed,omitempty" validate:"omitempty,min=1,max=1000"`
}

// HackerNewsParams configures a Hacker News run. Nothing is required.
type HackerNewsParams struct {
	StoryType string `json:"story_type" validate:"omitempty,oneof=top new best ask show"`
	MaxItems  int    `json:"max_items" validate:"omitempty,min=1,max=500"`
}

// Repository is one GitHub owner/name pair.
type Repository struct {
	Owner string `json:"owner" validate:"notblank"`
	Name  string `json:"name" validate:"notblank"`
}

func (r Repository) String() string { return r.Owner + "/" + r.Name }

// GitHubParams configures a GitHub run.
type GitHubParams struct {
	Repositories    []Repository `json:"repositories" validate:"min=1,dive"`
	IncludeIssues   bool         `json:"include_issues"`
	IncludePRs      bool         `json:"include_pull_requests"`
	IncludeReadme   bool         `json:"include_readme"`
	MaxItemsPerRepo int          `json:"max_items_per_repo,omitempty" validate:"omitempty,min=1,max=1000"`
}

// Defaults for Hacker News runs.
const (
	DefaultStoryType = "top"
	DefaultHNItems   = 30
)

// TriggerRequest is the discriminated trigger payload. Exactly the params
// matching Source are sent.
type TriggerRequest struct {
	Source     types.IngestSource
	RSS        *RSSParams
	HackerNews *HackerNewsParams
	GitHub     *GitHubParams
}

// Payload is the JSON body of POST /ingest/trigger.
type Payload struct {
	Source       types.IngestSource `json:"source"`
	SourceParams any                `json:"source_params"`
}

// Normalize trims inputs, drops blank rows and fills defaults. It is
// idempotent and run by Validate.
func (r *TriggerRequest) Normalize() {
	switch r.Source {
	case types.SourceRSS:
		if r.RSS == nil {
			r.RSS = &RSSParams{}
		}
		feeds := r.RSS.FeedURLs[:0:0]
		for _, u := range r.RSS.FeedURLs {
			if u = strings.TrimSpace(u); u != "" {
				feeds = append(feeds, u)
			}
		}
		r.RSS.FeedURLs = feeds
	case types.SourceHackerNews:
		if r.HackerNews == nil {
			r.HackerNews = &HackerNewsParams{}
		}
		r.HackerNews.StoryType = strings.ToLower(strings.TrimSpace(r.HackerNews.StoryType))
		if r.HackerNews.StoryType == "" {
			r.HackerNews.StoryType = DefaultStoryType
		}
		if r.HackerNews.MaxItems == 0 {
			r.HackerNews.MaxItems = DefaultHNItems
		}
	case types.SourceGitHub:
		if r.GitHub == nil {
			r.GitHub = &GitHubParams{}
		}
		repos := r.GitHub.Repositories[:0:0]
		for _, repo := range r.GitHub.Repositories {
			repo.Owner = strings.TrimSpace(repo.Owner)
			repo.Name = strings.TrimSpace(repo.Name)
			if repo.Owner == "" && repo.Name == "" {
				continue
			}
			repos = append(repos, repo)
		}
		r.GitHub.Repositories = repos
	}
}

// Payload returns the request body for the selected source.
// Call Validate first.
func (r TriggerRequest) Payload() Payload {
	p := Payload{Source: r.Source}
	switch r.Source {
	case types.SourceRSS:
		p.SourceParams = r.RSS
	case types.SourceHackerNews:
		p.SourceParams = r.HackerNews
	case types.SourceGitHub:
		p.SourceParams = r.GitHub
	}
	return p
}

// ParseRepos reads "owner/name" entries separated by newlines or commas.
// Blank entries are skipped; an entry without a slash keeps an empty name so
// validation reports it.
func ParseRepos(text string) []Repository {
	var repos []Repository
	for _, field := range splitEntries(text) {
		owner, name, _ := strings.Cut(field, "/")
		name = strings.TrimSuffix(strings.TrimSpace(name), ".git")
		repos = append(repos, Repository{Owner: strings.TrimSpace(owner), Name: name})
	}
	return repos
}

// ParseFeeds reads feed URLs separated by newlines or commas.
func ParseFeeds(text string) []string {
	return splitEntries(text)
}

func splitEntries(text string) []string {
	var out []string
	for _, field := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' }) {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}

// ParseSource accepts the source names used on the command line.
func ParseSource(s string) (types.IngestSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rss":
		return types.SourceRSS, nil
	case "hackernews", "hn", "hacker-news":
		return types.SourceHackerNews, nil
	case "github", "gh":
		return types.SourceGitHub, nil
	}
	return "", fmt.Errorf("unknown source %q: use rss, hackernews or github", s)
}
