package browser

import "time"

// minCandidateTimeout keeps each candidate's wait long enough to survive a
// slow frame render even when a long chain splits a short budget.
const minCandidateTimeout = 500 * time.Millisecond

// Locate resolves a logical UI target by trying the chain's candidates in
// order. Each candidate gets a fraction of the total budget rather than the
// whole of it, so a stale first selector cannot consume the full timeout
// before the working fallbacks are tried. The first visible, interactable
// match wins; a candidate that fails to resolve is skipped silently.
//
// Exhausting the chain returns *ElementNotFoundError naming the target.
func Locate(page Page, chain SelectorChain, timeout time.Duration) (Element, error) {
	if len(chain.Candidates) == 0 {
		return nil, &ElementNotFoundError{Target: chain.Target}
	}

	perCandidate := timeout / time.Duration(len(chain.Candidates))
	if perCandidate < minCandidateTimeout {
		perCandidate = minCandidateTimeout
	}

	for _, selector := range chain.Candidates {
		element, err := page.Resolve(selector, perCandidate)
		if err == nil {
			return element, nil
		}
	}

	return nil, &ElementNotFoundError{Target: chain.Target, Tried: len(chain.Candidates)}
}
