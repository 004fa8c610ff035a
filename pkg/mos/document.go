package mos

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dogy-web/oracle-agent/pkg/browser"
)

// notFoundMarkers are portal phrasings for an unresolvable document id.
var notFoundMarkers = []string{
	"document cannot be displayed",
	"document is not available",
	"could not be found",
	"no document found",
	"invalid document id",
}

// GetDocument opens the knowledge document identified by docID and returns its
// normalized text. An unresolvable identifier yields ErrDocumentNotFound; a
// render timeout yields ErrDocumentFetchTimeout. Both are recoverable at the
// caller layer. The fetched document is stored in the conversation's cache
// slot.
func (p *Pipeline) GetDocument(ctx context.Context, conversationID, docID string) (*Document, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return nil, fmt.Errorf("%w: empty doc id", ErrDocumentNotFound)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := p.portalPage(ctx)
	if err != nil {
		return nil, err
	}

	target := DocumentURL + url.QueryEscape(docID)
	if err := page.Navigate(target, p.timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFetchTimeout, err)
	}

	// The view renders inside an ADF shell; wait for the content region
	// rather than a bare load event.
	if _, err := browser.Locate(page, browser.DocumentContentChain, p.timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFetchTimeout, err)
	}

	snapshot, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFetchTimeout, err)
	}

	doc, err := ExtractDocument(snapshot, docID)
	if err != nil {
		return nil, err
	}
	if doc.Body == "" || containsNotFoundMarker(doc.Body) || containsNotFoundMarker(doc.Title) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
	}

	p.log.Infof("fetched document %s (%d chars)", docID, len(doc.Body))
	p.cache.PutDocument(conversationID, doc)
	return doc, nil
}

func containsNotFoundMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
