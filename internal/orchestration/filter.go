package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/beacon-audit/beacon/internal/audit"
)

// FilterAuditors returns the subset of auditors whose name matches at least
// one of the given glob patterns. An empty patterns slice returns all
// auditors unchanged.
func FilterAuditors(auditors []audit.Auditor, patterns []string) ([]audit.Auditor, error) {
	if len(patterns) == 0 {
		return auditors, nil
	}

	var matched []audit.Auditor
	for _, a := range auditors {
		ok, err := matchesAny(a.Meta().Name, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// matchesAny reports whether name matches any pattern.
func matchesAny(name string, patterns []string) (bool, error) {
	for _, p := range patterns {
		ok, err := filepath.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("invalid audit filter pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
