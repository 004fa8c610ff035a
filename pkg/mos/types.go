// Package mos implements retrieval against the My Oracle Support knowledge
// portal: multi-query search with capped, partial-failure-tolerant extraction,
// on-demand document fetching, log-derived query generation, and a
// per-conversation cache of the most recent results.
package mos

import "errors"

// ResultsPerQueryLimit is the hard ceiling on results extracted for one query,
// regardless of what the caller requests.
const ResultsPerQueryLimit = 20

// Portal URLs. The portal has no public API; these are the interactive views
// the browser session drives.
const (
	BaseURL       = "https://support.oracle.com/"
	DashboardURL  = BaseURL + "epmos/faces/Dashboard"
	KnowledgeURL  = BaseURL + "epmos/faces/KMConsolidatedSearch"
	DocumentURL   = BaseURL + "epmos/faces/DocumentDisplay?id="
)

// SearchResult is one extracted knowledge-base hit. DocID is empty when the
// result URL carries no recognizable document identifier.
type SearchResult struct {
	DocID   string `json:"doc_id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`

	// Query is the originating query string; results from a multi-query batch
	// keep their source so a document surfacing under two queries is reported
	// under both.
	Query string `json:"query,omitempty"`
}

// SearchResponse aggregates results across a query batch, preserving query
// submission order with later queries' results appended after earlier ones.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Queries []string       `json:"queries"`
}

// Document is a fetched knowledge document with normalized body text.
type Document struct {
	DocID string `json:"doc_id"`
	Title string `json:"title"`
	Body  string `json:"body_text"`
}

// Recoverable per-document failures; the dispatch loop reports these back
// into the conversation instead of aborting the turn.
var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrDocumentFetchTimeout = errors.New("document fetch timed out")
)
