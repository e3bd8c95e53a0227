package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Provider runs a web search and returns up to limit results.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Format renders results as numbered Title/Snippet/Link blocks suitable for
// feeding back into a model prompt.
func Format(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %s", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s':\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. Title: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   Snippet: %s\n", r.Snippet)
		fmt.Fprintf(&b, "   Link: %s\n\n", r.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}
