package audit

import (
	"fmt"
	"math"

	"github.com/beacon-audit/beacon/internal/models"
)

// GenerateResult normalizes a Product into an immutable Result. The Product
// must carry a raw value; null is accepted, absent is not. Numeric raw
// values must be finite.
func GenerateResult(meta models.AuditMeta, product *models.Product) (*models.Result, error) {
	if product == nil || !product.RawValue.IsPresent() {
		return nil, fmt.Errorf("%s: %w", meta.Name, ErrMissingRawValue)
	}
	if n, ok := product.RawValue.NumberValue(); ok && (math.IsNaN(n) || math.IsInf(n, 0)) {
		return nil, fmt.Errorf("%s: %w: %v", meta.Name, ErrInvalidRawValue, n)
	}

	score, mode, err := NormalizeScore(meta, product)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", meta.Name, err)
	}

	return &models.Result{
		Score:            score,
		ScoreDisplayMode: mode,
		DisplayValue:     ResolveDisplayValue(product, score),
		RawValue:         product.RawValue,
		Error:            product.Error,
		DebugString:      product.DebugString,
		Details:          product.Details,
		ExtendedInfo:     product.ExtendedInfo,
		Informative:      meta.Informative,
		Manual:           meta.Manual,
		NotApplicable:    product.NotApplicable,
		Name:             meta.Name,
		Description:      SelectDescription(meta, score),
		HelpText:         meta.HelpText,
	}, nil
}

// GenerateErrorResult builds the result that stands in for an audit that
// could not run. It scores 0 and carries debugString for display.
func GenerateErrorResult(meta models.AuditMeta, debugString string) (*models.Result, error) {
	return GenerateResult(meta, &models.Product{
		RawValue:    models.Null(),
		Error:       true,
		DebugString: debugString,
	})
}

// MakeTableDetails builds a table payload. When there are no items the
// headings are dropped as well, so an empty table is fully empty.
func MakeTableDetails(headings []models.Heading, items []map[string]any, summary *models.DetailsSummary) *models.Details {
	if len(items) == 0 {
		return &models.Details{
			Type:     models.DetailsTypeTable,
			Headings: []models.Heading{},
			Items:    []map[string]any{},
			Summary:  summary,
		}
	}

	return &models.Details{
		Type:     models.DetailsTypeTable,
		Headings: headings,
		Items:    items,
		Summary:  summary,
	}
}

// ResolveDisplayValue applies, in order: the explicit display value, the
// stringified raw value when truthy, then score-echo suppression.
func ResolveDisplayValue(product *models.Product, score float64) string {
	display, ok := explicitDisplayValue(product)
	if !ok {
		display = fallbackDisplayValue(product.RawValue)
	}
	return suppressScoreEcho(display, score)
}

func explicitDisplayValue(product *models.Product) (string, bool) {
	if product.DisplayValue == nil {
		return "", false
	}
	return *product.DisplayValue, true
}

func fallbackDisplayValue(raw models.RawValue) string {
	if !raw.Truthy() {
		return ""
	}
	return raw.String()
}

// suppressScoreEcho blanks a display value that would just repeat the score.
func suppressScoreEcho(display string, score float64) string {
	if display == models.FormatNumber(score) {
		return ""
	}
	return display
}

// SelectDescription picks the failure description for anything short of a
// perfect score, when the audit has one.
func SelectDescription(meta models.AuditMeta, score float64) string {
	if meta.FailureDescription != "" && score < 1 {
		return meta.FailureDescription
	}
	return meta.Description
}
