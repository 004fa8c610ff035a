package browser

import (
	"fmt"
	"os"
	"path/filepath"
)

// fallbackProfileName is the per-user profile directory tried when the
// configured path is unwritable (containers often mount /opt read-only).
const fallbackProfileName = ".mos_profile"

// ResolveProfileDir returns the first candidate profile directory that can be
// created and written. Candidates are tried in order: the preferred
// (configured) path, then <home>/.mos_profile. Permission failures on a
// candidate are non-fatal and skip to the next one.
//
// When every candidate fails the error wraps ErrSessionUnavailable.
func ResolveProfileDir(preferred string) (string, error) {
	var candidates []string
	seen := make(map[string]bool)
	add := func(path string) {
		if path != "" && !seen[path] {
			seen[path] = true
			candidates = append(candidates, path)
		}
	}

	add(preferred)
	if home, err := os.UserHomeDir(); err == nil {
		add(filepath.Join(home, fallbackProfileName))
	}

	for _, candidate := range candidates {
		if err := os.MkdirAll(candidate, 0o755); err != nil {
			continue
		}
		if !isWritable(candidate) {
			continue
		}
		return candidate, nil
	}

	return "", fmt.Errorf("%w: no writable profile directory among %v", ErrSessionUnavailable, candidates)
}

// isWritable probes the directory with a throwaway file; MkdirAll succeeding
// does not guarantee write access on an existing directory.
func isWritable(dir string) bool {
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return true
}
