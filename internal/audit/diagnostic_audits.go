package audit

import (
	"context"
	"sort"

	"github.com/beacon-audit/beacon/internal/models"
)

// maxByteWeightRows caps the table of heaviest requests.
const maxByteWeightRows = 10

// byteWeightAudit scores the total transfer size of the page.
type byteWeightAudit struct {
	LogNormalOptions
	meta models.AuditMeta
}

// NewTotalByteWeight creates the network payload audit.
func NewTotalByteWeight() Auditor {
	return &byteWeightAudit{
		LogNormalOptions: LogNormalOptions{Median: 4000 * 1024, DiminishingReturns: 2500 * 1024},
		meta: models.AuditMeta{
			Name:               "total-byte-weight",
			Description:        "Avoids enormous network payloads",
			FailureDescription: "Has enormous network payloads",
			HelpText:           "Network transfer size costs users real money and is highly correlated with long load times. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/network-payloads).",
			ScoreDisplayMode:   models.ScoreDisplayNumeric,
			Group:              models.GroupPerfInfo,
			RequiredArtifacts:  []string{models.ArtifactNetworkRecords},
		},
	}
}

func (a *byteWeightAudit) Meta() models.AuditMeta { return a.meta }

func (a *byteWeightAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	records := make([]models.NetworkRecord, 0, len(artifacts.NetworkRecords))
	var totalBytes float64
	for _, rec := range artifacts.NetworkRecords {
		if rec.TransferSize <= 0 {
			continue
		}
		totalBytes += rec.TransferSize
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TransferSize > records[j].TransferSize
	})
	if len(records) > maxByteWeightRows {
		records = records[:maxByteWeightRows]
	}

	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, map[string]any{
			"url":     rec.URL,
			"totalKb": toKb(rec.TransferSize),
		})
	}

	score, err := a.score(totalBytes)
	if err != nil {
		return nil, err
	}

	headings := []models.Heading{
		{Key: "url", ItemType: models.ItemTypeURL, Text: "URL"},
		{Key: "totalKb", ItemType: models.ItemTypeText, Text: "Total Size (KB)"},
	}

	return &models.Product{
		RawValue:     models.Number(totalBytes),
		Score:        models.Number(score),
		DisplayValue: displayString(printer.Sprintf("Total size was %s", formatKb(totalBytes))),
		Details:      MakeTableDetails(headings, items, nil),
		ExtendedInfo: map[string]any{
			"value": map[string]any{"totalCompletedRequests": float64(len(artifacts.NetworkRecords))},
		},
	}, nil
}

// domSizeAudit scores the number of nodes in the document.
type domSizeAudit struct {
	LogNormalOptions
	meta models.AuditMeta
}

// NewDOMSize creates the DOM size audit.
func NewDOMSize() Auditor {
	return &domSizeAudit{
		LogNormalOptions: LogNormalOptions{Median: 3000, DiminishingReturns: 2400},
		meta: models.AuditMeta{
			Name:               "dom-size",
			Description:        "Avoids an excessive DOM size",
			FailureDescription: "Uses an excessive DOM size",
			HelpText:           "Browser engineers recommend pages contain fewer than ~1,500 DOM nodes. [Learn more](https://developers.google.com/web/fundamentals/performance/rendering/reduce-the-scope-and-complexity-of-style-calculations).",
			ScoreDisplayMode:   models.ScoreDisplayNumeric,
			Group:              models.GroupPerfInfo,
			RequiredArtifacts:  []string{models.ArtifactDOMStats},
		},
	}
}

func (a *domSizeAudit) Meta() models.AuditMeta { return a.meta }

func (a *domSizeAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	stats := artifacts.DOMStats
	nodes := float64(stats.TotalNodes)

	score, err := a.score(nodes)
	if err != nil {
		return nil, err
	}

	headings := []models.Heading{
		{Key: "statistic", ItemType: models.ItemTypeText, Text: "Statistic"},
		{Key: "value", ItemType: models.ItemTypeText, Text: "Value"},
	}
	items := []map[string]any{
		{"statistic": "Total DOM Nodes", "value": printer.Sprintf("%d", stats.TotalNodes)},
		{"statistic": "Maximum DOM Depth", "value": printer.Sprintf("%d", stats.Depth)},
		{"statistic": "Maximum Child Elements", "value": printer.Sprintf("%d", stats.MaxWidth)},
	}

	return &models.Product{
		RawValue:     models.Number(nodes),
		Score:        models.Number(score),
		DisplayValue: displayString(printer.Sprintf("%d nodes", stats.TotalNodes)),
		Details:      MakeTableDetails(headings, items, nil),
	}, nil
}
