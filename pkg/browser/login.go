package browser

import (
	"fmt"
	"time"
)

// loginPollInterval is how often the post-submission wait re-evaluates the
// login heuristic.
const loginPollInterval = 750 * time.Millisecond

// IsLoginPage reports whether the current page looks like a login or
// identity-provider screen. It evaluates the prioritized hint list
// short-circuit; the caller never learns which signal fired.
func IsLoginPage(page Page) bool {
	for _, hint := range loginPageHints {
		if page.IsVisible(hint) {
			return true
		}
	}
	return false
}

// EnsureAuthenticated guarantees the page is past any login wall.
//
// If no login screen is detected it returns nil immediately. If one is
// detected and credentials are configured, it runs the portal's two-step flow:
// fill the username field and advance ("Next"), then fill the password field
// and submit, then wait for the login heuristic to clear within timeout.
// Without configured credentials it returns ErrAuthenticationRequired so a
// headed session can be completed manually.
func EnsureAuthenticated(page Page, creds Credentials, timeout time.Duration) error {
	if !IsLoginPage(page) {
		return nil
	}
	if !creds.Configured() {
		return ErrAuthenticationRequired
	}

	if err := submitCredentials(page, creds, timeout); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	// Wait for navigation away from the login screen. IDCS redirects a few
	// times before the dashboard renders, so re-check on an interval instead
	// of a single settle wait.
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		_ = page.WaitForLoad(loginPollInterval)
		if !IsLoginPage(page) {
			return nil
		}
		time.Sleep(loginPollInterval)
	}
	return ErrAuthenticationFailed
}

// submitCredentials executes the two-step username/password flow. Step
// controls use short locate budgets: a missing "Next" button means the portal
// is showing a single-step form, not a failure.
func submitCredentials(page Page, creds Credentials, timeout time.Duration) error {
	stepTimeout := timeout / 4
	if stepTimeout < minCandidateTimeout {
		stepTimeout = minCandidateTimeout
	}

	username, err := Locate(page, LoginUsernameChain, stepTimeout)
	if err != nil {
		return err
	}
	if err := username.Fill(creds.User); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}
	if next, err := Locate(page, LoginNextChain, stepTimeout); err == nil {
		if err := next.Click(); err != nil {
			return fmt.Errorf("failed to advance login: %w", err)
		}
	} else {
		_ = username.Press("Enter")
	}

	password, err := Locate(page, LoginPasswordChain, timeout)
	if err != nil {
		return err
	}
	if err := password.Fill(creds.Password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if submit, err := Locate(page, LoginSubmitChain, stepTimeout); err == nil {
		if err := submit.Click(); err != nil {
			return fmt.Errorf("failed to submit login: %w", err)
		}
	} else {
		_ = password.Press("Enter")
	}
	return nil
}
