package audit

import (
	"context"
	"fmt"

	"github.com/beacon-audit/beacon/internal/models"
)

// metricAudit scores one page-load timing on a log-normal curve.
type metricAudit struct {
	LogNormalOptions
	meta  models.AuditMeta
	value func(*models.Metrics) *float64
}

// NewFirstMeaningfulPaint scores the time until the primary content is visible.
func NewFirstMeaningfulPaint() Auditor {
	return &metricAudit{
		LogNormalOptions: LogNormalOptions{Median: 4000, DiminishingReturns: 1600},
		meta: models.AuditMeta{
			Name:              "first-meaningful-paint",
			Description:       "First meaningful paint",
			HelpText:          "First meaningful paint measures when the primary content of a page is visible. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/first-meaningful-paint).",
			ScoreDisplayMode:  models.ScoreDisplayNumeric,
			Group:             models.GroupPerfMetric,
			RequiredArtifacts: []string{models.ArtifactMetrics},
		},
		value: func(m *models.Metrics) *float64 { return m.FirstMeaningfulPaint },
	}
}

// NewInteractive scores the time until the page is reliably interactive.
func NewInteractive() Auditor {
	return &metricAudit{
		LogNormalOptions: LogNormalOptions{Median: 10000, DiminishingReturns: 1700},
		meta: models.AuditMeta{
			Name:              "interactive",
			Description:       "Time to Interactive",
			HelpText:          "Interactive marks the time at which the page is fully interactive. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/consistently-interactive).",
			ScoreDisplayMode:  models.ScoreDisplayNumeric,
			Group:             models.GroupPerfMetric,
			RequiredArtifacts: []string{models.ArtifactMetrics},
		},
		value: func(m *models.Metrics) *float64 { return m.Interactive },
	}
}

// NewSpeedIndex scores how quickly the contents of the page are visibly populated.
func NewSpeedIndex() Auditor {
	return &metricAudit{
		LogNormalOptions: LogNormalOptions{Median: 5500, DiminishingReturns: 1250},
		meta: models.AuditMeta{
			Name:              "speed-index-metric",
			Description:       "Perceptual Speed Index",
			HelpText:          "Speed Index shows how quickly the contents of a page are visibly populated. [Learn more](https://developers.google.com/web/tools/lighthouse/audits/speed-index).",
			ScoreDisplayMode:  models.ScoreDisplayNumeric,
			Group:             models.GroupPerfMetric,
			RequiredArtifacts: []string{models.ArtifactMetrics},
		},
		value: func(m *models.Metrics) *float64 { return m.SpeedIndex },
	}
}

func (a *metricAudit) Meta() models.AuditMeta { return a.meta }

func (a *metricAudit) Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error) {
	if err := CheckArtifacts(a.meta, artifacts); err != nil {
		return nil, err
	}

	v := a.value(artifacts.Metrics)
	if v == nil {
		return nil, fmt.Errorf("%s was not observed during the page load", a.meta.Description)
	}
	timing := *v

	score, err := a.score(timing)
	if err != nil {
		return nil, err
	}

	return &models.Product{
		RawValue:     models.Number(timing),
		Score:        models.Number(score),
		DisplayValue: displayString(formatMs(timing)),
		ExtendedInfo: map[string]any{
			"value": map[string]any{"timing": timing},
		},
	}, nil
}
