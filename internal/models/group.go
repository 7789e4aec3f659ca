package models

import "fmt"

// Group tags an audit with the report section it belongs to. The set is
// closed: decoding an unknown tag fails.
type Group string

const (
	// GroupNone marks audits that belong to no visible section.
	GroupNone       Group = ""
	GroupPerfMetric Group = "perf-metric"
	GroupPerfHint   Group = "perf-hint"
	GroupPerfInfo   Group = "perf-info"
	GroupManualPWA  Group = "manual-pwa-checks"
)

// Groups lists every known non-empty group in display order.
func Groups() []Group {
	return []Group{GroupPerfMetric, GroupPerfHint, GroupPerfInfo, GroupManualPWA}
}

// ParseGroup validates a group tag.
func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case GroupNone, GroupPerfMetric, GroupPerfHint, GroupPerfInfo, GroupManualPWA:
		return g, nil
	default:
		return GroupNone, fmt.Errorf("unknown group %q", s)
	}
}

func (g Group) String() string {
	return string(g)
}

func (g Group) MarshalText() ([]byte, error) {
	return []byte(g), nil
}

func (g *Group) UnmarshalText(text []byte) error {
	parsed, err := ParseGroup(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ReportGroup is the display descriptor for a Group.
type ReportGroup struct {
	ID          Group  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}
