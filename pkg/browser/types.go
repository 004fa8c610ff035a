// Package browser drives a single persistent automated-browser session against
// the My Oracle Support portal: session lifecycle keyed by headless mode,
// heuristic login handling, and fault-tolerant element location over ordered
// selector chains.
//
// All orchestration code in this package and above works against the narrow
// Page/Element capability interfaces so the concrete automation engine stays
// swappable and the logic is testable with fakes. The only Playwright-aware
// code lives in the adapter (playwright.go).
package browser

import "time"

// Page is the capability surface of one browsing tab.
type Page interface {
	// Navigate loads url and waits for the DOM to be ready, bounded by timeout.
	Navigate(url string, timeout time.Duration) error

	// URL returns the current page URL.
	URL() string

	// Title returns the current page title.
	Title() (string, error)

	// Content returns the full HTML of the current page.
	Content() (string, error)

	// Resolve waits up to timeout for a visible element matching selector.
	Resolve(selector string, timeout time.Duration) (Element, error)

	// IsVisible probes for a currently visible match without waiting.
	IsVisible(selector string) bool

	// WaitForLoad waits for in-flight navigation and network activity to
	// settle, bounded by timeout.
	WaitForLoad(timeout time.Duration) error
}

// Element is a resolved, interactable UI element.
type Element interface {
	Click() error
	Fill(value string) error
	Press(key string) error
	Text() (string, error)
}

// Credentials are the optional portal login credentials.
type Credentials struct {
	User     string
	Password string
}

// Configured reports whether both credential values are present.
func (c Credentials) Configured() bool {
	return c.User != "" && c.Password != ""
}

// Context is one persistent browsing context bound to a profile directory.
// Implemented by the Playwright adapter; faked in tests.
type Context interface {
	Page() Page
	Close() error
}

// Engine launches persistent browsing contexts. The engine is started lazily
// and at most once per process.
type Engine interface {
	Launch(profileDir string, headless bool, timeout time.Duration) (Context, error)
	Stop() error
}
