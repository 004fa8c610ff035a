package mos

import (
	"fmt"
	"testing"
	"time"

	"github.com/dogy-web/oracle-agent/pkg/browser"
	"github.com/dogy-web/oracle-agent/pkg/logging"
)

// stubElement records interactions so tests can assert the typed query and the
// submission path.
type stubElement struct {
	fills   []string
	presses []string
	clicks  int
}

func (e *stubElement) Click() error            { e.clicks++; return nil }
func (e *stubElement) Fill(value string) error { e.fills = append(e.fills, value); return nil }
func (e *stubElement) Press(key string) error  { e.presses = append(e.presses, key); return nil }
func (e *stubElement) Text() (string, error)   { return "", nil }

// stubPage scripts the portal: selector resolution, visibility, and a queue of
// HTML snapshots returned by successive Content calls.
type stubPage struct {
	url         string
	navigations []string
	resolves    map[string]*stubElement
	visible     map[string]bool

	// resolveAfterNav adds selectors to resolves once the page navigates to
	// the keyed URL, modeling views where an element only exists after a
	// navigation.
	resolveAfterNav map[string]map[string]*stubElement

	contents     []string
	contentCalls int
	contentErrAt int // 1-based Content call that fails; 0 means never
}

func newStubPage() *stubPage {
	return &stubPage{
		url:             DashboardURL,
		resolves:        make(map[string]*stubElement),
		visible:         make(map[string]bool),
		resolveAfterNav: make(map[string]map[string]*stubElement),
	}
}

func (p *stubPage) Navigate(url string, _ time.Duration) error {
	p.navigations = append(p.navigations, url)
	p.url = url
	for selector, el := range p.resolveAfterNav[url] {
		p.resolves[selector] = el
	}
	return nil
}

func (p *stubPage) URL() string            { return p.url }
func (p *stubPage) Title() (string, error) { return "", nil }

func (p *stubPage) Content() (string, error) {
	p.contentCalls++
	if p.contentErrAt != 0 && p.contentCalls == p.contentErrAt {
		return "", fmt.Errorf("page crashed mid-render")
	}
	if len(p.contents) == 0 {
		return "", nil
	}
	snapshot := p.contents[0]
	if len(p.contents) > 1 {
		p.contents = p.contents[1:]
	}
	return snapshot, nil
}

func (p *stubPage) Resolve(selector string, _ time.Duration) (browser.Element, error) {
	if el, ok := p.resolves[selector]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("selector %q did not resolve", selector)
}

func (p *stubPage) IsVisible(selector string) bool { return p.visible[selector] }
func (p *stubPage) WaitForLoad(_ time.Duration) error { return nil }

type stubContext struct {
	page   *stubPage
	closed bool
}

func (c *stubContext) Page() browser.Page { return c.page }
func (c *stubContext) Close() error       { c.closed = true; return nil }

type stubEngine struct {
	page     *stubPage
	launches int
}

func (e *stubEngine) Launch(string, bool, time.Duration) (browser.Context, error) {
	e.launches++
	return &stubContext{page: e.page}, nil
}

func (e *stubEngine) Stop() error { return nil }

// newTestPipeline wires a pipeline to a stubbed portal page through a real
// session manager and a fresh cache.
func newTestPipeline(t *testing.T, page *stubPage, creds browser.Credentials) (*Pipeline, *ResultCache, *stubEngine) {
	t.Helper()
	log, _ := logging.NewLogger("test")
	engine := &stubEngine{page: page}
	sessions := browser.NewManager(engine, t.TempDir(), time.Second, log)
	cache := NewResultCache()
	pipeline := NewPipeline(sessions, creds, true, time.Second, cache, log)
	return pipeline, cache, engine
}

// withSearchBox wires the minimal search UI: a resolvable box and nothing
// else, so submission falls back to the keyboard path.
func withSearchBox(page *stubPage) *stubElement {
	box := &stubElement{}
	page.resolves[`input[type="search"]`] = box
	return box
}
