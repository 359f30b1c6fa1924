// Package search defines the lookup-service contract used during grant
// discovery and profile research, with a Google Custom Search implementation
// and a deterministic stub for tests.
package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is one ranked lookup result. No structured grant schema is
// guaranteed; geographic classification happens downstream from the text and
// URL (see the eligibility package).
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Service is the lookup-by-query contract.
type Service interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// FormatResults renders results in the compact text block fed back to the
// model as a tool result.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "Search completed, but no relevant results were found."
	}

	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "Title: %s\nSnippet: %s\nLink: %s\n---\n", r.Title, r.Snippet, r.URL)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Stub is an in-memory Service returning canned results per query. Useful
// for tests and examples.
type Stub struct {
	Results map[string][]Result
	Default []Result
	Err     error
}

// NewStub constructs an empty stub.
func NewStub() *Stub {
	return &Stub{Results: map[string][]Result{}}
}

// Add registers canned results for a query.
func (s *Stub) Add(query string, results ...Result) {
	s.Results[query] = results
}

// Search implements Service.
func (s *Stub) Search(_ context.Context, query string) ([]Result, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if results, ok := s.Results[query]; ok {
		return results, nil
	}

	return s.Default, nil
}
