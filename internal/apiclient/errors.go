// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized matches any *APIError carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork matches any *NetworkError.
	ErrNetwork = errors.New("network error")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Endpoint   string
	Status     int
	StatusText string

	// Message is the server-provided detail, or StatusText when the body had none.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" || e.Message == e.StatusText {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Endpoint, e.Status, e.StatusText)
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Endpoint, e.Status, e.StatusText, e.Message)
}

// Is reports a match against ErrUnauthorized for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}

// NetworkError is a request that never produced an HTTP response.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports a match against ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// errorBody covers both FastAPI-style {"detail": ...} and {"message": ...}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// serverMessage extracts the human-readable message from an error body.
// It returns "" when the body carries neither detail nor message.
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []validationDetail
		if err := json.Unmarshal(eb.Detail, &list); err == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, d := range list {
				if d.Msg == "" {
					continue
				}
				if field := locField(d.Loc); field != "" {
					msgs = append(msgs, field+": "+d.Msg)
				} else {
					msgs = append(msgs, d.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return eb.Message
}

// locField returns the last element of a validation location, e.g.
// ["body", "source_params", "feed_urls"] → "feed_urls".
func locField(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}
