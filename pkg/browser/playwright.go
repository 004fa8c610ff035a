package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightEngine launches persistent Chromium contexts through Playwright.
// The driver is installed and started at most once per process, on first use.
type PlaywrightEngine struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	started bool
}

// NewPlaywrightEngine returns an engine; the driver is not started until the
// first Launch call.
func NewPlaywrightEngine() *PlaywrightEngine {
	return &PlaywrightEngine{}
}

// Launch opens a persistent browsing context bound to profileDir. The
// persistent context keeps cookies and local storage across process restarts,
// which is what lets an authenticated portal session survive.
func (e *PlaywrightEngine) Launch(profileDir string, headless bool, timeout time.Duration) (Context, error) {
	if err := e.ensureStarted(); err != nil {
		return nil, err
	}

	ctx, err := e.pw.Chromium.LaunchPersistentContext(profileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(headless),
		Viewport: &playwright.Size{Width: 1366, Height: 900},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch persistent context: %w", err)
	}

	var page playwright.Page
	if pages := ctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = ctx.NewPage()
		if err != nil {
			_ = ctx.Close()
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	return &playwrightContext{ctx: ctx, page: &playwrightPage{page: page}}, nil
}

// ensureStarted installs and runs the Playwright driver once. Driver output
// is discarded so it cannot interleave with service logs on stdio.
func (e *PlaywrightEngine) ensureStarted() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	e.pw = pw
	e.started = true
	return nil
}

// Stop stops the Playwright driver. Contexts must be closed first.
func (e *PlaywrightEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started || e.pw == nil {
		return nil
	}
	e.started = false
	if err := e.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// playwrightContext adapts a Playwright persistent context to Context.
type playwrightContext struct {
	ctx  playwright.BrowserContext
	page *playwrightPage
}

func (c *playwrightContext) Page() Page { return c.page }

func (c *playwrightContext) Close() error {
	return c.ctx.Close()
}

// playwrightPage adapts playwright.Page to the Page capability interface.
type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Navigate(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) URL() string { return p.page.URL() }

func (p *playwrightPage) Title() (string, error) { return p.page.Title() }

func (p *playwrightPage) Content() (string, error) { return p.page.Content() }

func (p *playwrightPage) Resolve(selector string, timeout time.Duration) (Element, error) {
	locator := p.page.Locator(selector).First()
	err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("selector %q did not resolve: %w", selector, err)
	}
	return &playwrightElement{locator: locator}, nil
}

func (p *playwrightPage) IsVisible(selector string) bool {
	visible, err := p.page.Locator(selector).First().IsVisible()
	return err == nil && visible
}

func (p *playwrightPage) WaitForLoad(timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

// playwrightElement adapts playwright.Locator to Element.
type playwrightElement struct {
	locator playwright.Locator
}

func (e *playwrightElement) Click() error {
	return e.locator.Click()
}

func (e *playwrightElement) Fill(value string) error {
	return e.locator.Fill(value)
}

func (e *playwrightElement) Press(key string) error {
	return e.locator.Press(key)
}

func (e *playwrightElement) Text() (string, error) {
	text, err := e.locator.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}
