package mos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dogy-web/oracle-agent/pkg/browser"
	"github.com/dogy-web/oracle-agent/pkg/logging"
)

// Pipeline executes searches and document fetches against the portal through
// the shared browser session. One Pipeline serves the whole process; its
// mutex serializes use of the single browsing surface, so query N+1 never
// starts before query N's extraction has finished or failed.
type Pipeline struct {
	sessions *browser.Manager
	creds    browser.Credentials
	headless bool
	timeout  time.Duration
	cache    *ResultCache
	log      *logging.Logger

	mu sync.Mutex
}

// NewPipeline wires a pipeline to the session manager. timeout is the
// page-operation budget applied to every UI-facing wait.
func NewPipeline(sessions *browser.Manager, creds browser.Credentials, headless bool, timeout time.Duration, cache *ResultCache, log *logging.Logger) *Pipeline {
	return &Pipeline{
		sessions: sessions,
		creds:    creds,
		headless: headless,
		timeout:  timeout,
		cache:    cache,
		log:      log,
	}
}

// Search runs the queries in submission order and aggregates their results.
//
// A single query's failure (element not found, navigation timeout) degrades
// that query to zero results and the batch continues; only systemic failures
// (no session, login wall without a remedy) abort the batch. maxPerQuery is
// clamped to ResultsPerQueryLimit. The aggregate is stored in the
// conversation's cache slot before returning.
func (p *Pipeline) Search(ctx context.Context, conversationID string, queries []string, maxPerQuery int) (*SearchResponse, error) {
	if maxPerQuery <= 0 {
		maxPerQuery = 5
	}
	if maxPerQuery > ResultsPerQueryLimit {
		maxPerQuery = ResultsPerQueryLimit
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	resp := &SearchResponse{Results: []SearchResult{}, Queries: queries}
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := p.runQuery(ctx, query, maxPerQuery)
		if err != nil {
			if isSystemic(err) {
				return nil, err
			}
			p.log.Warnf("query %q degraded to zero results: %v", query, err)
			continue
		}
		p.log.Infof("query %q returned %d results", query, len(results))
		resp.Results = append(resp.Results, results...)
	}

	p.cache.PutSearch(conversationID, resp)
	return resp, nil
}

// SearchFromLog derives queries from a raw log snippet and runs them through
// Search. The generated query list is returned alongside the results so
// callers can show what was searched.
func (p *Pipeline) SearchFromLog(ctx context.Context, conversationID, logText string, maxQueries, maxPerQuery int) (*SearchResponse, []string, error) {
	queries := DeriveQueries(logText, maxQueries)
	if len(queries) == 0 {
		// Same shape as a searched response: empty, never nil, so callers
		// serialize [] rather than null.
		return &SearchResponse{Results: []SearchResult{}, Queries: queries}, queries, nil
	}
	resp, err := p.Search(ctx, conversationID, queries, maxPerQuery)
	if err != nil {
		return nil, queries, err
	}
	return resp, queries, nil
}

// runQuery drives one query end to end: authenticated session, focused search
// box, typed query, submission, settle, extraction.
func (p *Pipeline) runQuery(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	page, err := p.portalPage(ctx)
	if err != nil {
		return nil, err
	}

	box, err := p.focusSearchBox(page)
	if err != nil {
		return nil, err
	}
	if err := box.Fill(""); err != nil {
		return nil, fmt.Errorf("failed to clear search box: %w", err)
	}
	if err := box.Fill(query); err != nil {
		return nil, fmt.Errorf("failed to type query: %w", err)
	}

	p.submitSearch(page, box)

	if err := page.WaitForLoad(p.timeout); err != nil {
		// A settle timeout is not fatal; whatever rendered is extracted.
		p.log.Debugf("results settle wait elapsed for %q: %v", query, err)
	}

	snapshot, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to capture results page: %w", err)
	}
	return ExtractSearchResults(snapshot, page.URL(), query, maxResults)
}

// portalPage returns an authenticated page positioned on the portal.
func (p *Pipeline) portalPage(ctx context.Context) (browser.Page, error) {
	session, err := p.sessions.Acquire(ctx, p.headless)
	if err != nil {
		return nil, err
	}
	page := session.Page

	if !strings.HasPrefix(page.URL(), BaseURL) {
		if err := page.Navigate(DashboardURL, p.timeout); err != nil {
			return nil, err
		}
	}
	if err := browser.EnsureAuthenticated(page, p.creds, p.timeout); err != nil {
		return nil, err
	}
	return page, nil
}

// focusSearchBox resolves the global search input. When the box chain
// exhausts, the trigger chain is clicked once to reveal a collapsed search
// control and the box chain retried; if the box still does not resolve, the
// consolidated search view is opened directly, which renders the box even
// when the dashboard hides it behind collapsed chrome.
func (p *Pipeline) focusSearchBox(page browser.Page) (browser.Element, error) {
	box, err := browser.Locate(page, browser.SearchBoxChain, p.timeout)
	if err == nil {
		return box, nil
	}

	if trigger, triggerErr := browser.Locate(page, browser.SearchTriggerChain, p.timeout/4); triggerErr == nil {
		if clickErr := trigger.Click(); clickErr == nil {
			if box, retryErr := browser.Locate(page, browser.SearchBoxChain, p.timeout); retryErr == nil {
				return box, nil
			}
		}
	}

	if navErr := page.Navigate(KnowledgeURL, p.timeout); navErr != nil {
		return nil, err
	}
	return browser.Locate(page, browser.SearchBoxChain, p.timeout)
}

// submitSearch triggers query submission: the explicit submit chain when it
// resolves, otherwise a keyboard submit on the box.
func (p *Pipeline) submitSearch(page browser.Page, box browser.Element) {
	if submit, err := browser.Locate(page, browser.SearchSubmitChain, p.timeout/4); err == nil {
		if err := submit.Click(); err == nil {
			return
		}
	}
	_ = box.Press("Enter")
}

// isSystemic reports errors that must abort a batch instead of degrading one
// query: no browser, or a login wall with no configured remedy.
func isSystemic(err error) bool {
	return errors.Is(err, browser.ErrSessionUnavailable) ||
		errors.Is(err, browser.ErrAuthenticationRequired) ||
		errors.Is(err, browser.ErrAuthenticationFailed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
