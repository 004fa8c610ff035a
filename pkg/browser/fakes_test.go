package browser

import (
	"fmt"
	"time"
)

// fakeElement records interactions for assertions.
type fakeElement struct {
	selector string
	fills    []string
	clicks   int
	presses  []string
	text     string
}

func (e *fakeElement) Click() error             { e.clicks++; return nil }
func (e *fakeElement) Fill(value string) error  { e.fills = append(e.fills, value); return nil }
func (e *fakeElement) Press(key string) error   { e.presses = append(e.presses, key); return nil }
func (e *fakeElement) Text() (string, error)    { return e.text, nil }

// fakePage scripts element resolution and visibility per selector.
type fakePage struct {
	url       string
	content   string
	resolves  map[string]*fakeElement // selector -> element; absent means fail
	visible   map[string]bool
	attempted []string // selectors passed to Resolve, in order

	// loginClearsAfter makes IsLoginPage stop matching after this many
	// visibility sweeps, simulating a completed login.
	visibleChecks    int
	loginClearsAfter int
}

func newFakePage() *fakePage {
	return &fakePage{
		resolves:         make(map[string]*fakeElement),
		visible:          make(map[string]bool),
		loginClearsAfter: -1,
	}
}

func (p *fakePage) Navigate(url string, _ time.Duration) error {
	p.url = url
	return nil
}

func (p *fakePage) URL() string              { return p.url }
func (p *fakePage) Title() (string, error)   { return "", nil }
func (p *fakePage) Content() (string, error) { return p.content, nil }

func (p *fakePage) Resolve(selector string, _ time.Duration) (Element, error) {
	p.attempted = append(p.attempted, selector)
	if el, ok := p.resolves[selector]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("selector %q did not resolve", selector)
}

func (p *fakePage) IsVisible(selector string) bool {
	if !p.visible[selector] {
		return false
	}
	if p.loginClearsAfter >= 0 {
		p.visibleChecks++
		if p.visibleChecks > p.loginClearsAfter {
			return false
		}
	}
	return true
}

func (p *fakePage) WaitForLoad(_ time.Duration) error { return nil }

// fakeContext and fakeEngine script the session manager's collaborators.
type fakeContext struct {
	page   *fakePage
	closed bool
}

func (c *fakeContext) Page() Page   { return c.page }
func (c *fakeContext) Close() error { c.closed = true; return nil }

type fakeEngine struct {
	launches  int
	stops     int
	launchErr error
	contexts  []*fakeContext
	lastDir   string
	lastMode  bool
}

func (e *fakeEngine) Launch(profileDir string, headless bool, _ time.Duration) (Context, error) {
	e.launches++
	e.lastDir = profileDir
	e.lastMode = headless
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	ctx := &fakeContext{page: newFakePage()}
	e.contexts = append(e.contexts, ctx)
	return ctx, nil
}

func (e *fakeEngine) Stop() error { e.stops++; return nil }
