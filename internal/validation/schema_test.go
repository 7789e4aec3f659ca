package validation

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validArtifactsJSON = `{
  "url": "https://example.com/",
  "finalUrl": "https://example.com/",
  "metrics": {"firstMeaningfulPaint": 1200.5, "interactive": 3400},
  "networkRecords": [
    {"url": "https://example.com/app.js", "protocol": "h2", "transferSize": 2048, "fromCache": false}
  ],
  "tagsBlockingFirstPaint": [
    {"url": "https://example.com/a.css", "tagName": "LINK", "transferSize": 300, "startTime": 10, "endTime": 90}
  ],
  "domStats": {"totalNodes": 120, "depth": 8},
  "consoleMessages": [],
  "documentWriteCalls": [{"url": "https://example.com/ads.js", "line": 3, "col": 1}]
}`

const invalidArtifactsYAML = `finalUrl: https://example.com/
metrics:
  interactive: -5
networkRecords:
  - url: https://example.com/app.js
domStats:
  totalNodes: many
`

const validConfigYAML = `settings:
  workers: 2
  only_audits: [interactive, dom-size]
  format: text
  fail_under: 0.9
audits:
  dom-size:
    options:
      median: 1500
      diminishing_returns: 1000
categories:
  - id: performance
    name: Performance
    audits:
      - id: interactive
        weight: 1
        group: perf-metric
      - id: dom-size
groups:
  perf-metric:
    title: Metrics
`

const invalidConfigYAML = `settings:
  workers: 0
  format: html
  verbose: true
categories:
  - id: performance
    audits:
      - id: interactive
        group: a11y-color-contrast
groups:
  a11y:
    title: Accessibility
`

func problemText(t *testing.T, err error) (*SchemaError, string) {
	t.Helper()
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.NotEmpty(t, schemaErr.Problems)

	lines := make([]string, len(schemaErr.Problems))
	for i, p := range schemaErr.Problems {
		lines[i] = p.String()
	}
	return schemaErr, strings.Join(lines, "\n")
}

func TestArtifactsDocument_Valid(t *testing.T) {
	require.NoError(t, ArtifactsDocument.Validate([]byte(validArtifactsJSON)))
}

func TestArtifactsDocument_Invalid(t *testing.T) {
	schemaErr, joined := problemText(t, ArtifactsDocument.Validate([]byte(invalidArtifactsYAML)))
	require.Equal(t, "artifacts", schemaErr.Document)
	require.Contains(t, joined, "url")
	require.Contains(t, joined, "/metrics/interactive")
	require.Contains(t, joined, "transferSize")
	require.Contains(t, joined, "/domStats/totalNodes")

	require.True(t, sort.SliceIsSorted(schemaErr.Problems, func(i, j int) bool {
		return schemaErr.Problems[i].Location < schemaErr.Problems[j].Location
	}))
}

func TestConfigDocument_Valid(t *testing.T) {
	require.NoError(t, ConfigDocument.Validate([]byte(validConfigYAML)))
	require.NoError(t, ConfigDocument.Validate([]byte("")))
}

func TestConfigDocument_Invalid(t *testing.T) {
	schemaErr, joined := problemText(t, ConfigDocument.Validate([]byte(invalidConfigYAML)))
	require.Equal(t, ".beacon.yaml", schemaErr.Document)
	require.Contains(t, joined, "/settings/workers")
	require.Contains(t, joined, "/settings/format")
	require.Contains(t, joined, "verbose")
	require.Contains(t, joined, "name")
	require.Contains(t, joined, "/categories/0/audits/0/group")
	require.Contains(t, joined, "a11y")
	require.Contains(t, schemaErr.Error(), ".beacon.yaml does not match its schema:")
}

func TestDocument_ParseError(t *testing.T) {
	err := ConfigDocument.Validate([]byte("settings: [unclosed"))
	require.ErrorContains(t, err, "parsing .beacon.yaml")

	var schemaErr *SchemaError
	require.False(t, errors.As(err, &schemaErr))
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{Document: "artifacts", Problems: []Problem{
		{Location: "/", Message: "missing property 'url'"},
		{Location: "/domStats", Message: "bad"},
	}}
	require.Equal(t, "artifacts does not match its schema:\n  /: missing property 'url'\n  /domStats: bad", err.Error())
}
