package audit

import (
	"context"
	"math"
	"strings"

	"github.com/beacon-audit/beacon/internal/models"
)

const (
	// throughputBitsPerSecond is the simulated connection used to turn
	// wasted bytes into wasted time.
	throughputBitsPerSecond = 1.6 * 1024 * 1024

	// maxCacheTTLSeconds is the lifetime past which a resource counts as
	// cached for good.
	maxCacheTTLSeconds = 30 * 24 * 60 * 60
)

func wastedMsForBytes(bytes float64) float64 {
	return math.Round(bytes * 8 / throughputBitsPerSecond * 1000)
}

// linkBlockingAudit reports stylesheets that held back the first paint.
type linkBlockingAudit struct {
	meta models.AuditMeta
}

// NewLinkBlockingFirstPaint creates the render-blocking stylesheet audit.
func NewLinkBlockingFirstPaint() Auditor {
	return &linkBlockingAudit{meta: models.AuditMeta{
		Name:               "link-blocking-first-paint",
		Description:        "Reduce render-blocking stylesheets",
		FailureDescription: "Reduce render-blocking stylesheets",
		HelpText:           "Link elements are blocking the first paint of your page. Consider inlining critical links and deferring non-critical ones. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/blocking-resources).",
		ScoreDisplayMode:   models.ScoreDisplayNumeric,
		Group:              models.GroupPerfHint,
		RequiredArtifacts:  []string{models.ArtifactTagsBlockingFirstPaint},
	}}
}

func (a *linkBlockingAudit) Meta() models.AuditMeta { return a.meta }

func (a *linkBlockingAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	var links []models.BlockingTag
	for _, tag := range artifacts.TagsBlockingFirstPaint {
		if strings.EqualFold(tag.TagName, "LINK") {
			links = append(links, tag)
		}
	}

	startTime := math.Inf(1)
	for _, tag := range links {
		startTime = math.Min(startTime, tag.StartTime)
	}

	endTime := 0.0
	items := make([]map[string]any, 0, len(links))
	for _, tag := range links {
		endTime = math.Max(endTime, tag.EndTime)
		items = append(items, map[string]any{
			"url":     tag.URL,
			"totalKb": toKb(tag.TransferSize),
			"totalMs": math.Round(tag.EndTime - startTime),
		})
	}

	wastedMs := 0.0
	display := ""
	if len(links) > 0 {
		wastedMs = math.Round(endTime - startTime)
		display = printer.Sprintf("%s delayed first paint by %s", pluralize(len(links), "resource", "resources"), formatMs(wastedMs))
	}

	headings := []models.Heading{
		{Key: "url", ItemType: models.ItemTypeURL, Text: "URL"},
		{Key: "totalKb", ItemType: models.ItemTypeText, Text: "Size (KB)"},
		{Key: "totalMs", ItemType: models.ItemTypeText, Text: "Delayed Paint By (ms)"},
	}

	return &models.Product{
		RawValue:     models.Number(wastedMs),
		Score:        models.Number(ScoreForWastedMs(wastedMs)),
		DisplayValue: displayString(display),
		Details:      MakeTableDetails(headings, items, &models.DetailsSummary{WastedMs: &wastedMs}),
		ExtendedInfo: map[string]any{
			"value": map[string]any{"wastedMs": wastedMs},
		},
	}, nil
}

// cacheTTLAudit estimates the repeat-visit cost of static assets with short
// cache lifetimes.
type cacheTTLAudit struct {
	meta models.AuditMeta
}

// NewUsesLongCacheTTL creates the static asset caching audit.
func NewUsesLongCacheTTL() Auditor {
	return &cacheTTLAudit{meta: models.AuditMeta{
		Name:               "uses-long-cache-ttl",
		Description:        "Uses efficient cache policy on static assets",
		FailureDescription: "Serve static assets with an efficient cache policy",
		HelpText:           "A long cache lifetime can speed up repeat visits to your page. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/cache-policy).",
		ScoreDisplayMode:   models.ScoreDisplayNumeric,
		Group:              models.GroupPerfHint,
		RequiredArtifacts:  []string{models.ArtifactNetworkRecords},
	}}
}

func (a *cacheTTLAudit) Meta() models.AuditMeta { return a.meta }

func (a *cacheTTLAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	var totalWastedBytes float64
	items := []map[string]any{}
	for _, rec := range artifacts.NetworkRecords {
		if rec.FromCache || !isStaticAsset(rec) || !isCacheableStatus(rec.StatusCode) {
			continue
		}
		if rec.CacheTTLSeconds >= maxCacheTTLSeconds {
			continue
		}

		hitProbability := math.Max(0, rec.CacheTTLSeconds) / maxCacheTTLSeconds
		wastedBytes := rec.TransferSize * (1 - hitProbability)
		totalWastedBytes += wastedBytes

		items = append(items, map[string]any{
			"url":      rec.URL,
			"cacheTtl": printer.Sprintf("%d s", int64(rec.CacheTTLSeconds)),
			"totalKb":  toKb(rec.TransferSize),
			"wastedKb": toKb(wastedBytes),
		})
	}

	wastedMs := wastedMsForBytes(totalWastedBytes)
	wastedKb := toKb(totalWastedBytes)
	display := ""
	if len(items) > 0 {
		display = pluralize(len(items), "asset found", "assets found")
	}

	headings := []models.Heading{
		{Key: "url", ItemType: models.ItemTypeURL, Text: "URL"},
		{Key: "cacheTtl", ItemType: models.ItemTypeText, Text: "Cache TTL"},
		{Key: "totalKb", ItemType: models.ItemTypeText, Text: "Size (KB)"},
		{Key: "wastedKb", ItemType: models.ItemTypeText, Text: "Repeat Cost (KB)"},
	}

	return &models.Product{
		RawValue:     models.Number(wastedMs),
		Score:        models.Number(ScoreForWastedMs(wastedMs)),
		DisplayValue: displayString(display),
		Details:      MakeTableDetails(headings, items, &models.DetailsSummary{WastedMs: &wastedMs, WastedKb: &wastedKb}),
	}, nil
}

func isStaticAsset(rec models.NetworkRecord) bool {
	switch strings.ToLower(rec.ResourceType) {
	case "script", "stylesheet", "image", "font":
		return true
	}
	mime := strings.ToLower(rec.MimeType)
	return strings.HasPrefix(mime, "image/") ||
		strings.HasPrefix(mime, "font/") ||
		mime == "text/css" ||
		strings.Contains(mime, "javascript")
}

func isCacheableStatus(code int) bool {
	switch code {
	case 0, 200, 203, 206:
		return true
	}
	return false
}
