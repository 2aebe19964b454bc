// Package fetch retrieves a prospect's website text. Fetchers never return a
// Go error across the package boundary: failures are carried as a tagged
// FetchError on the Result so the orchestrator can substitute the fallback
// path instead of aborting.
package fetch

import (
	"context"
	"fmt"
)

// ErrorKind tags the fetch failure taxonomy.
type ErrorKind string

const (
	ErrHTTP       ErrorKind = "http"
	ErrConnection ErrorKind = "connection"
	ErrTimeout    ErrorKind = "timeout"
	ErrUnknown    ErrorKind = "unknown"
)

// FetchError describes why a fetch failed. It replaces magic-prefixed error
// strings with a tagged type while preserving the never-throws contract.
type FetchError struct {
	Kind    ErrorKind `json:"kind"`
	Status  int       `json:"status,omitempty"`
	Message string    `json:"message"`
}

func (e *FetchError) Error() string {
	if e.Kind == ErrHTTP {
		return fmt.Sprintf("fetch: http %d", e.Status)
	}
	return fmt.Sprintf("fetch: %s: %s", e.Kind, e.Message)
}

// Result holds the outcome of one fetch. Exactly one of Text or Err is
// meaningful; Emails are extracted from the raw response independently of
// any downstream analysis.
type Result struct {
	URL    string      `json:"url"`
	Text   string      `json:"text,omitempty"`
	Emails []string    `json:"emails,omitempty"`
	Err    *FetchError `json:"error,omitempty"`
}

// Failed reports whether the fetch produced no usable content.
func (r *Result) Failed() bool {
	return r == nil || r.Err != nil || r.Text == ""
}

// Fetcher retrieves website text for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *Result
	Name() string
}
