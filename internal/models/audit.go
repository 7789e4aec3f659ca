package models

import (
	"fmt"
	"strings"
)

// ScoreDisplayMode controls how a score is presented.
type ScoreDisplayMode string

const (
	ScoreDisplayNumeric ScoreDisplayMode = "numeric"
	ScoreDisplayBinary  ScoreDisplayMode = "binary"
)

// ParseScoreDisplayMode converts a config string to a ScoreDisplayMode.
// The empty string maps to the empty mode, which normalization treats as binary.
func ParseScoreDisplayMode(s string) (ScoreDisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "numeric":
		return ScoreDisplayNumeric, nil
	case "binary":
		return ScoreDisplayBinary, nil
	default:
		return "", fmt.Errorf("invalid score display mode %q: must be numeric or binary", s)
	}
}

// AuditMeta is the static description every audit supplies.
type AuditMeta struct {
	Name string `json:"name" yaml:"name"`
	// Description is shown when the audit passes, or always when no
	// FailureDescription is set.
	Description        string           `json:"description" yaml:"description"`
	FailureDescription string           `json:"failureDescription,omitempty" yaml:"failure_description,omitempty"`
	HelpText           string           `json:"helpText" yaml:"help_text"`
	ScoreDisplayMode   ScoreDisplayMode `json:"scoreDisplayMode,omitempty" yaml:"score_display_mode,omitempty"`
	// Informative results are displayed but never count against a category.
	Informative bool `json:"informative,omitempty" yaml:"informative,omitempty"`
	// Manual audits need a human to verify them and are not auto-scored.
	Manual bool  `json:"manual,omitempty" yaml:"manual,omitempty"`
	Group  Group `json:"group,omitempty" yaml:"group,omitempty"`
	// RequiredArtifacts names the gathered artifacts this audit reads.
	RequiredArtifacts []string `json:"requiredArtifacts,omitempty" yaml:"required_artifacts,omitempty"`
}

// Product is what a single audit produces for one page run, before
// normalization.
type Product struct {
	RawValue RawValue `json:"rawValue"`
	// Score overrides RawValue as the source of the score when present.
	Score         RawValue       `json:"score,omitzero"`
	DisplayValue  *string        `json:"displayValue,omitempty"`
	DebugString   string         `json:"debugString,omitempty"`
	Error         bool           `json:"error,omitempty"`
	Details       *Details       `json:"details,omitempty"`
	ExtendedInfo  map[string]any `json:"extendedInfo,omitempty"`
	NotApplicable bool           `json:"notApplicable,omitempty"`
}

// Result is the normalized, immutable record built from a Product and the
// audit's metadata.
type Result struct {
	Score            float64          `json:"score"`
	ScoreDisplayMode ScoreDisplayMode `json:"scoreDisplayMode"`
	DisplayValue     string           `json:"displayValue"`
	RawValue         RawValue         `json:"rawValue"`
	Error            bool             `json:"error,omitempty"`
	DebugString      string           `json:"debugString,omitempty"`
	Details          *Details         `json:"details,omitempty"`
	ExtendedInfo     map[string]any   `json:"extendedInfo,omitempty"`
	Informative      bool             `json:"informative,omitempty"`
	Manual           bool             `json:"manual,omitempty"`
	NotApplicable    bool             `json:"notApplicable,omitempty"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	HelpText         string           `json:"helpText"`
}

// DetailsTypeTable marks a Details payload as a table.
const DetailsTypeTable = "table"

// Details is structured, audit-specific supplementary data.
type Details struct {
	Type     string           `json:"type"`
	Headings []Heading        `json:"headings"`
	Items    []map[string]any `json:"items"`
	Summary  *DetailsSummary  `json:"summary,omitempty"`
}

// Heading describes one column of a table.
type Heading struct {
	Key      string `json:"key"`
	ItemType string `json:"itemType"`
	Text     string `json:"text"`
}

// Item types understood by renderers.
const (
	ItemTypeURL  = "url"
	ItemTypeText = "text"
	ItemTypeCode = "code"
)

// DetailsSummary holds aggregate impact estimates for a table.
type DetailsSummary struct {
	WastedMs *float64 `json:"wastedMs,omitempty"`
	WastedKb *float64 `json:"wastedKb,omitempty"`
}

// ImpactEstimate returns the summary's wasted time, if one was recorded.
func (d *Details) ImpactEstimate() (float64, bool) {
	if d == nil || d.Summary == nil || d.Summary.WastedMs == nil {
		return 0, false
	}
	return *d.Summary.WastedMs, true
}
