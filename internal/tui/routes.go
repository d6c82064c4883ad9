// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"net/url"
	"strings"
)

// route maps a path pattern to the view that renders it. Segments starting
// with ':' capture a parameter.
type route struct {
	pattern string
	build   func(e env, req request) (view, error)
}

// request is a matched path.
type request struct {
	params map[string]string
	query  url.Values
}

var routes = []route{
	{"/clusters", newClustersView},
	{"/clusters/:id", newClusterDetailView},
	{"/documents", newDocumentsView},
	{"/documents/:id", newDocumentDetailView},
	{"/insights", newInsightsView},
	{"/anomalies", newAnomaliesView},
	{"/search", newSearchView},
	{"/umap", newUMAPView},
	{"/umap/clusters/:id", newUMAPView},
	{"/ingest", newIngestEventsView},
	{"/ingest/new", newTriggerView},
	{"/ingest/:id", newIngestEventView},
	{"/login", newLoginView},
}

// navItem is a sidebar entry.
type navItem struct {
	key   string
	label string
	path  string
}

var navItems = []navItem{
	{"1", "Clusters", "/clusters"},
	{"2", "Documents", "/documents"},
	{"3", "Insights", "/insights"},
	{"4", "Anomalies", "/anomalies"},
	{"5", "Search", "/search"},
	{"6", "Projection", "/umap"},
	{"7", "Ingestion", "/ingest"},
}

// match finds the first route for path. Literal segments win over
// parameters because they are listed first.
func match(path string) (route, request, bool) {
	u, err := url.Parse(path)
	if err != nil {
		return route{}, request{}, false
	}
	segs := split(u.Path)
	for _, r := range routes {
		if params, ok := matchSegments(split(r.pattern), segs); ok {
			return r, request{params: params, query: u.Query()}, true
		}
	}
	return route{}, request{}, false
}

func matchSegments(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			params[name] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func split(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// section returns the sidebar path that path belongs to.
func section(path string) string {
	segs := split(strings.SplitN(path, "?", 2)[0])
	if len(segs) == 0 {
		return ""
	}
	return "/" + segs[0]
}
