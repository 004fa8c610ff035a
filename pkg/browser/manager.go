package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dogy-web/oracle-agent/pkg/logging"
)

// Session is the single live browsing session, tagged with the headless mode
// it was created with and the profile directory actually in use.
type Session struct {
	Page       Page
	Headless   bool
	ProfileDir string
}

// Manager owns the process-wide browser session. At most one live session
// exists at a time: acquiring with the current mode returns it unchanged,
// acquiring with the other mode tears it down and rebuilds. Creation and
// teardown are serialized; use of the session's single page is not locked
// here, callers serialize their own navigation.
type Manager struct {
	mu         sync.Mutex
	engine     Engine
	preferred  string
	timeout    time.Duration
	log        *logging.Logger
	profileDir string // first writable candidate, pinned for the process

	ctx      Context
	session  *Session
	headless bool
}

// NewManager creates a session manager. preferredProfileDir is the configured
// profile path; timeout is the page-operation budget applied to the context.
func NewManager(engine Engine, preferredProfileDir string, timeout time.Duration, log *logging.Logger) *Manager {
	return &Manager{
		engine:    engine,
		preferred: preferredProfileDir,
		timeout:   timeout,
		log:       log,
	}
}

// Acquire returns a live session in the requested headless mode, creating or
// recreating one as needed. Concurrent callers are serialized so exactly one
// construction sequence runs; callers requesting the current mode get the
// existing session without relaunching.
//
// Failures to start the engine or to find a writable profile directory wrap
// ErrSessionUnavailable and are not retried here.
func (m *Manager) Acquire(ctx context.Context, headless bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && m.headless == headless {
		return m.session, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.ctx != nil {
		m.log.Infof("recreating browser session (headless %v -> %v)", m.headless, headless)
		if err := m.ctx.Close(); err != nil {
			m.log.Warnf("error closing previous context: %v", err)
		}
		m.ctx = nil
		m.session = nil
	}

	// The first writable candidate stays in use for the remainder of the
	// process, so a mode flip reopens the same profile.
	if m.profileDir == "" {
		dir, err := ResolveProfileDir(m.preferred)
		if err != nil {
			return nil, err
		}
		m.profileDir = dir
	}

	m.log.Infof("launching browser context (headless=%v, profile=%s)", headless, m.profileDir)
	browserCtx, err := m.engine.Launch(m.profileDir, headless, m.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	m.ctx = browserCtx
	m.headless = headless
	m.session = &Session{
		Page:       browserCtx.Page(),
		Headless:   headless,
		ProfileDir: m.profileDir,
	}
	return m.session, nil
}

// Shutdown closes the live session, if any, and stops the engine. Called on
// process exit.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	if m.ctx != nil {
		if err := m.ctx.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close browser context: %w", err)
		}
		m.ctx = nil
		m.session = nil
	}
	if err := m.engine.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
