package audit

import (
	"context"
	"net/url"
	"strings"

	"github.com/beacon-audit/beacon/internal/models"
)

// secureSchemes are treated as secure even though they are not https.
var secureSchemes = map[string]bool{
	"https":            true,
	"wss":              true,
	"data":             true,
	"blob":             true,
	"about":            true,
	"chrome":           true,
	"chrome-extension": true,
	"filesystem":       true,
}

type httpsAudit struct {
	meta models.AuditMeta
}

// NewIsOnHTTPS creates the audit that fails when any request was made
// over an insecure scheme.
func NewIsOnHTTPS() Auditor {
	return &httpsAudit{meta: models.AuditMeta{
		Name:               "is-on-https",
		Description:        "Uses HTTPS",
		FailureDescription: "Does not use HTTPS",
		HelpText:           "All sites should be protected with HTTPS, even ones that don't handle sensitive data. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/https).",
		RequiredArtifacts:  []string{models.ArtifactNetworkRecords},
	}}
}

func (a *httpsAudit) Meta() models.AuditMeta { return a.meta }

func (a *httpsAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	items := []map[string]any{}
	for _, rec := range artifacts.NetworkRecords {
		if isSecureRecord(rec.URL) || seen[rec.URL] {
			continue
		}
		seen[rec.URL] = true
		items = append(items, map[string]any{"url": rec.URL})
	}

	display := ""
	if len(items) > 0 {
		display = pluralize(len(items), "insecure request found", "insecure requests found")
	}

	headings := []models.Heading{{Key: "url", ItemType: models.ItemTypeURL, Text: "Insecure URL"}}
	return &models.Product{
		RawValue:     models.Bool(len(items) == 0),
		DisplayValue: displayString(display),
		Details:      MakeTableDetails(headings, items, nil),
	}, nil
}

func isSecureRecord(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if secureSchemes[strings.ToLower(u.Scheme)] {
		return true
	}
	host := strings.ToLower(u.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

type http2Audit struct {
	meta models.AuditMeta
}

// NewUsesHTTP2 creates the audit that fails when same-origin resources
// were served over HTTP/1.x.
func NewUsesHTTP2() Auditor {
	return &http2Audit{meta: models.AuditMeta{
		Name:               "uses-http2",
		Description:        "Uses HTTP/2 for its own resources",
		FailureDescription: "Does not use HTTP/2 for all of its resources",
		HelpText:           "HTTP/2 offers many benefits over HTTP/1.1, including binary headers, multiplexing, and server push. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/http2).",
		RequiredArtifacts:  []string{models.ArtifactURL, models.ArtifactNetworkRecords},
	}}
}

func (a *http2Audit) Meta() models.AuditMeta { return a.meta }

func (a *http2Audit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	pageOrigin := origin(artifacts.PageURL())
	items := []map[string]any{}
	for _, rec := range artifacts.NetworkRecords {
		if origin(rec.URL) != pageOrigin || isInlineURL(rec.URL) {
			continue
		}
		if strings.EqualFold(rec.Protocol, "h2") || strings.EqualFold(rec.Protocol, "h3") || rec.Protocol == "" {
			continue
		}
		items = append(items, map[string]any{"url": rec.URL, "protocol": rec.Protocol})
	}

	display := ""
	if len(items) > 0 {
		display = pluralize(len(items), "request not served via HTTP/2", "requests not served via HTTP/2")
	}

	headings := []models.Heading{
		{Key: "url", ItemType: models.ItemTypeURL, Text: "URL"},
		{Key: "protocol", ItemType: models.ItemTypeText, Text: "Protocol"},
	}
	return &models.Product{
		RawValue:     models.Bool(len(items) == 0),
		DisplayValue: displayString(display),
		Details:      MakeTableDetails(headings, items, nil),
	}, nil
}

func isInlineURL(raw string) bool {
	return strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "blob:")
}

type consoleErrorsAudit struct {
	meta models.AuditMeta
}

// NewErrorsInConsole creates the audit that reports errors logged to the
// page console.
func NewErrorsInConsole() Auditor {
	return &consoleErrorsAudit{meta: models.AuditMeta{
		Name:               "errors-in-console",
		Description:        "No browser errors logged to the console",
		FailureDescription: "Browser errors were logged to the console",
		HelpText:           "Errors logged to the console indicate unresolved problems. They can come from network request failures and other browser concerns.",
		RequiredArtifacts:  []string{models.ArtifactConsoleMessages},
	}}
}

func (a *consoleErrorsAudit) Meta() models.AuditMeta { return a.meta }

func (a *consoleErrorsAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	items := []map[string]any{}
	for _, entry := range artifacts.ConsoleMessages {
		if !strings.EqualFold(entry.Level, "error") {
			continue
		}
		items = append(items, map[string]any{
			"url":         entry.URL,
			"source":      entry.Source,
			"description": entry.Text,
		})
	}

	headings := []models.Heading{
		{Key: "url", ItemType: models.ItemTypeURL, Text: "URL"},
		{Key: "description", ItemType: models.ItemTypeCode, Text: "Description"},
	}
	count := len(items)
	display := ""
	if count > 0 {
		display = pluralize(count, "error", "errors")
	}
	return &models.Product{
		RawValue:     models.Number(float64(count)),
		Score:        models.Bool(count == 0),
		DisplayValue: displayString(display),
		Details:      MakeTableDetails(headings, items, nil),
	}, nil
}

type documentWriteAudit struct {
	meta models.AuditMeta
}

// NewNoDocumentWrite creates the audit that fails when the page called
// document.write().
func NewNoDocumentWrite() Auditor {
	return &documentWriteAudit{meta: models.AuditMeta{
		Name:               "no-document-write",
		Description:        "Avoids `document.write()`",
		FailureDescription: "Uses `document.write()`",
		HelpText:           "For users on slow connections, external scripts dynamically injected via `document.write()` can delay page load by tens of seconds. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/document-write).",
		RequiredArtifacts:  []string{models.ArtifactDocumentWriteCalls},
	}}
}

func (a *documentWriteAudit) Meta() models.AuditMeta { return a.meta }

func (a *documentWriteAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(artifacts.DocumentWriteCalls))
	for _, call := range artifacts.DocumentWriteCalls {
		items = append(items, map[string]any{
			"url":   call.URL,
			"label": printer.Sprintf("line: %d", call.Line),
		})
	}

	headings := []models.Heading{
		{Key: "url", ItemType: models.ItemTypeURL, Text: "URL"},
		{Key: "label", ItemType: models.ItemTypeText, Text: "Location"},
	}
	display := ""
	if len(items) > 0 {
		display = pluralize(len(items), "call found", "calls found")
	}
	return &models.Product{
		RawValue:     models.Bool(len(items) == 0),
		DisplayValue: displayString(display),
		Details:      MakeTableDetails(headings, items, nil),
	}, nil
}

// manualAudit is a check a person has to perform; it always reports false
// so it is listed for review.
type manualAudit struct {
	meta models.AuditMeta
}

// NewPWACrossBrowser creates the manual cross-browser check.
func NewPWACrossBrowser() Auditor {
	return &manualAudit{meta: models.AuditMeta{
		Name:        "pwa-cross-browser",
		Description: "Site works cross-browser",
		HelpText:    "To reach the most number of users, sites should work across every major browser. [Learn more](https://developers.google.com/web/progressive-web-apps/checklist#site-works-cross-browser).",
		Manual:      true,
		Group:       models.GroupManualPWA,
	}}
}

func (a *manualAudit) Meta() models.AuditMeta { return a.meta }

func (a *manualAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	return &models.Product{RawValue: models.Bool(false)}, nil
}
