package reporting

import (
	"time"

	"github.com/beacon-audit/beacon/internal/models"
)

func ptr[T any](v T) *T { return &v }

func newTestReport() *models.Report {
	fmp := &models.Result{
		Name: "first-meaningful-paint", Description: "First meaningful paint",
		Score: 0.75, ScoreDisplayMode: models.ScoreDisplayNumeric, RawValue: models.Number(3200),
		DisplayValue: "3,200 ms",
	}
	blocking := &models.Result{
		Name: "link-blocking-first-paint", Description: "Reduce render-blocking stylesheets",
		Score: 0.5, ScoreDisplayMode: models.ScoreDisplayNumeric, RawValue: models.Number(1200),
		DisplayValue: "2 resources delayed first paint by 1,200 ms",
		HelpText:     "Link elements are blocking the first paint. [Learn more](https://example.com/blocking).",
		Details: &models.Details{
			Type:    models.DetailsTypeTable,
			Summary: &models.DetailsSummary{WastedMs: ptr(1200.0)},
		},
	}
	cache := &models.Result{
		Name: "uses-long-cache-ttl", Description: "Uses efficient cache policy on static assets",
		Score: 1, ScoreDisplayMode: models.ScoreDisplayNumeric, RawValue: models.Number(0),
		Details: &models.Details{
			Type:    models.DetailsTypeTable,
			Summary: &models.DetailsSummary{WastedMs: ptr(0.0)},
		},
	}
	domSize := &models.Result{
		Name: "dom-size", Description: "Avoids an excessive DOM size",
		Score: 0.4, ScoreDisplayMode: models.ScoreDisplayNumeric, RawValue: models.Number(4100),
		DisplayValue: "4,100 nodes",
		HelpText:     "Keep the DOM small. [Learn more](https://example.com/dom).",
	}
	https := &models.Result{
		Name: "is-on-https", Description: "Does not use HTTPS",
		Score: 0, ScoreDisplayMode: models.ScoreDisplayBinary, RawValue: models.Bool(false),
		DisplayValue: "1 insecure request found",
		HelpText:     "All sites should be protected with HTTPS. [Learn more](https://example.com/https).",
	}
	console := &models.Result{
		Name: "errors-in-console", Description: "Browser errors were logged to the console",
		Score: 0, ScoreDisplayMode: models.ScoreDisplayBinary, RawValue: models.Null(),
		Error: true, DebugString: "Audit error: missing ConsoleMessages",
	}
	crossBrowser := &models.Result{
		Name: "pwa-cross-browser", Description: "Site works cross-browser",
		Score: 0, ScoreDisplayMode: models.ScoreDisplayBinary, RawValue: models.Bool(false),
		Manual: true,
	}

	return &models.Report{
		URL:         "http://example.com/",
		FinalURL:    "https://example.com/",
		FetchTime:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		GeneratedBy: "beacon test",
		Audits: map[string]*models.Result{
			fmp.Name: fmp, blocking.Name: blocking, cache.Name: cache, domSize.Name: domSize,
			https.Name: https, console.Name: console, crossBrowser.Name: crossBrowser,
		},
		ReportCategories: []models.Category{
			{
				ID: "performance", Name: "Performance", Score: 0.5,
				Audits: []models.AuditRef{
					{ID: fmp.Name, Result: fmp, Group: models.GroupPerfMetric, Weight: 5},
					{ID: blocking.Name, Result: blocking, Group: models.GroupPerfHint},
					{ID: cache.Name, Result: cache, Group: models.GroupPerfHint},
					{ID: domSize.Name, Result: domSize, Group: models.GroupPerfInfo},
				},
			},
			{
				ID: "best-practices", Name: "Best Practices", Score: 0,
				Audits: []models.AuditRef{
					{ID: https.Name, Result: https, Weight: 1},
					{ID: console.Name, Result: console, Weight: 1},
					{ID: crossBrowser.Name, Result: crossBrowser, Group: models.GroupManualPWA},
				},
			},
		},
		ReportGroups: map[string]models.ReportGroup{
			"perf-metric": {ID: models.GroupPerfMetric, Title: "Metrics"},
			"perf-hint":   {ID: models.GroupPerfHint, Title: "Opportunities"},
			"perf-info":   {ID: models.GroupPerfInfo, Title: "Diagnostics"},
		},
		RuntimeErrors: []models.RuntimeError{
			{Audit: "errors-in-console", Message: "missing ConsoleMessages"},
		},
		Timing: models.Timing{TotalMs: 1500},
	}
}
