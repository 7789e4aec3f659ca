package audit

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownAudit is returned when a name does not match any registered audit.
var ErrUnknownAudit = errors.New("unknown audit")

// Defaults returns a fresh instance of every built-in audit, in report order.
func Defaults() []Auditor {
	return []Auditor{
		NewFirstMeaningfulPaint(),
		NewInteractive(),
		NewSpeedIndex(),
		NewLinkBlockingFirstPaint(),
		NewUsesLongCacheTTL(),
		NewTotalByteWeight(),
		NewDOMSize(),
		NewIsOnHTTPS(),
		NewUsesHTTP2(),
		NewErrorsInConsole(),
		NewNoDocumentWrite(),
		NewPWACrossBrowser(),
	}
}

// Select filters auditors by name. When only is non-empty just those audits
// are kept; anything in skip is then removed. Unknown names are an error.
func Select(auditors []Auditor, only, skip []string) ([]Auditor, error) {
	known := make(map[string]bool, len(auditors))
	for _, a := range auditors {
		known[a.Meta().Name] = true
	}

	var errs []error
	for _, name := range slices.Concat(only, skip) {
		if !known[name] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownAudit, name))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var selected []Auditor
	for _, a := range auditors {
		name := a.Meta().Name
		if len(only) > 0 && !slices.Contains(only, name) {
			continue
		}
		if slices.Contains(skip, name) {
			continue
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// Configure applies per-audit options keyed by audit name. Options for an
// audit that takes none are rejected.
func Configure(auditors []Auditor, options map[string]map[string]any) error {
	byName := make(map[string]Auditor, len(auditors))
	for _, a := range auditors {
		byName[a.Meta().Name] = a
	}

	var errs []error
	for name, opts := range options {
		if len(opts) == 0 {
			continue
		}
		a, ok := byName[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownAudit, name))
			continue
		}
		c, ok := a.(Configurable)
		if !ok {
			errs = append(errs, fmt.Errorf("audit %s does not accept options", name))
			continue
		}
		if err := c.Configure(opts); err != nil {
			errs = append(errs, fmt.Errorf("configuring %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
