// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/pdiddy/trendscope/pkg/types"
)

// ValidationError lists every problem found in a trigger request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid ingestion request: " + strings.Join(e.Problems, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
	})
	return validate
}

// Validate normalizes r and checks it against the rules for its source.
func (r *TriggerRequest) Validate() error {
	if !r.Source.Valid() {
		return &ValidationError{Problems: []string{fmt.Sprintf("unknown source %q", r.Source)}}
	}
	r.Normalize()

	var params any
	switch r.Source {
	case types.SourceRSS:
		params = r.RSS
	case types.SourceHackerNews:
		params = r.HackerNews
	case types.SourceGitHub:
		params = r.GitHub
	}

	err := validatorInstance().Struct(params)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %s params: %w", r.Source, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(r, fe))
	}
	return &ValidationError{Problems: problems}
}

// describe turns a field error into a message a form can show.
func describe(r *TriggerRequest, fe validator.FieldError) string {
	ns := fe.StructNamespace()
	switch {
	case ns == "RSSParams.FeedURLs" && fe.Tag() == "min":
		return "add at least one feed URL"
	case strings.HasPrefix(ns, "RSSParams.FeedURLs[") && fe.Tag() == "http_url":
		return fmt.Sprintf("feed URL %q is not an http(s) URL", fe.Value())
	case ns == "GitHubParams.Repositories" && fe.Tag() == "min":
		return "add at least one repository as owner/name"
	case strings.HasPrefix(ns, "GitHubParams.Repositories["):
		idx := indexOf(ns)
		repo := ""
		if r.GitHub != nil && idx >= 0 && idx < len(r.GitHub.Repositories) {
			repo = r.GitHub.Repositories[idx].String()
		}
		return fmt.Sprintf("repository %q needs both an owner and a name", repo)
	case ns == "HackerNewsParams.StoryType":
		return fmt.Sprintf("story type %q must be one of top, new, best, ask, show", fe.Value())
	case fe.Tag() == "min":
		return fmt.Sprintf("%s must be at least %s", fieldLabel(fe.Field()), fe.Param())
	case fe.Tag() == "max":
		return fmt.Sprintf("%s must be at most %s", fieldLabel(fe.Field()), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func indexOf(ns string) int {
	open := strings.LastIndex(ns, "[")
	end := strings.LastIndex(ns, "]")
	if open < 0 || end <= open {
		return -1
	}
	var n int
	if _, err := fmt.Sscanf(ns[open+1:end], "%d", &n); err != nil {
		return -1
	}
	return n
}

var fieldLabels = map[string]string{
	"MaxItems":        "max items",
	"MaxItemsPerRepo": "max items per repository",
}

func fieldLabel(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return strings.ToLower(field)
}
