package browser

import (
	"errors"
	"fmt"
)

// Sentinel errors for the session and authentication layers. Callers classify
// with errors.Is; only these propagate as hard errors to the service boundary.
var (
	// ErrSessionUnavailable means the automation engine could not start or no
	// profile directory was writable. Fatal for the requesting operation; the
	// session manager does not retry on its own.
	ErrSessionUnavailable = errors.New("browser session unavailable")

	// ErrAuthenticationRequired means a login wall was detected but no
	// credentials are configured. A headed session can complete login manually.
	ErrAuthenticationRequired = errors.New("portal authentication required and no credentials configured")

	// ErrAuthenticationFailed means credentials were submitted but the login
	// screen never cleared within the timeout budget.
	ErrAuthenticationFailed = errors.New("portal authentication failed")
)

// ElementNotFoundError reports that every candidate selector for one logical
// UI target failed to resolve. The message names the target and the number of
// candidates tried so operators can diagnose portal drift without reading the
// selector data.
type ElementNotFoundError struct {
	Target string
	Tried  int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("could not locate %s: exhausted %d candidate selectors", e.Target, e.Tried)
}
