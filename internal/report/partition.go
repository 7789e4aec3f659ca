package report

import (
	"errors"
	"fmt"
	"math"

	"github.com/beacon-audit/beacon/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrMissingImpactEstimate is returned when a failing hint has no
// details.summary.wastedMs.
var ErrMissingImpactEstimate = errors.New("missing impact estimate")

var printer = message.NewPrinter(language.English)

// Hint is a failing opportunity along with how it is presented.
type Hint struct {
	models.AuditRef

	// Estimate is the wasted time in milliseconds; zero for error results.
	Estimate float64 `json:"estimate"`

	// Title is the formatted estimate, or the debug string of an error
	// result.
	Title string `json:"title"`

	// Ratio is Estimate relative to the largest estimate in the section.
	Ratio float64 `json:"ratio"`
}

// Sections is a category split into the parts of a report.
type Sections struct {
	Metrics     []models.AuditRef `json:"metrics"`
	Hints       []Hint            `json:"hints"`
	Diagnostics []models.AuditRef `json:"diagnostics"`
	Passed      []models.AuditRef `json:"passed"`
}

type bucket int

const (
	bucketNone bucket = iota
	bucketMetrics
	bucketHints
	bucketDiagnostics
	bucketPassed
)

// Partition splits a category's audits into metrics, failing hints, failing
// diagnostics and passed audits. Authoring order is kept in every section.
// Audits without a group are left out.
func Partition(cat models.Category) (*Sections, error) {
	sections := &Sections{
		Metrics:     []models.AuditRef{},
		Hints:       []Hint{},
		Diagnostics: []models.AuditRef{},
		Passed:      []models.AuditRef{},
	}

	var largest float64
	for _, ref := range cat.Audits {
		if ref.Result == nil {
			return nil, fmt.Errorf("audit %s in category %s has no result", ref.ID, cat.ID)
		}

		b, err := bucketFor(ref)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", cat.ID, err)
		}

		switch b {
		case bucketMetrics:
			sections.Metrics = append(sections.Metrics, ref)
		case bucketHints:
			hint, err := newHint(ref)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat.ID, err)
			}
			largest = math.Max(largest, hint.Estimate)
			sections.Hints = append(sections.Hints, hint)
		case bucketDiagnostics:
			sections.Diagnostics = append(sections.Diagnostics, ref)
		case bucketPassed:
			sections.Passed = append(sections.Passed, ref)
		case bucketNone:
		}
	}

	if largest > 0 {
		for i := range sections.Hints {
			sections.Hints[i].Ratio = sections.Hints[i].Estimate / largest
		}
	}

	return sections, nil
}

// bucketFor maps an audit's group and score to its report section.
// Score comparisons are exact; scores are rounded to two decimals upstream.
func bucketFor(ref models.AuditRef) (bucket, error) {
	passed := ref.Result.Score == 1

	switch ref.Group {
	case models.GroupNone:
		return bucketNone, nil
	case models.GroupPerfMetric:
		return bucketMetrics, nil
	case models.GroupPerfHint:
		if passed {
			return bucketPassed, nil
		}
		return bucketHints, nil
	case models.GroupPerfInfo:
		if passed {
			return bucketPassed, nil
		}
		return bucketDiagnostics, nil
	case models.GroupManualPWA:
		if passed {
			return bucketPassed, nil
		}
		return bucketNone, nil
	default:
		return bucketNone, fmt.Errorf("audit %s has unknown group %q", ref.ID, ref.Group)
	}
}

func newHint(ref models.AuditRef) (Hint, error) {
	if ref.Result.Error {
		return Hint{AuditRef: ref, Title: ref.Result.DebugString}, nil
	}

	wasted, ok := ref.Result.Details.ImpactEstimate()
	if !ok {
		return Hint{}, fmt.Errorf("%w: hint %s", ErrMissingImpactEstimate, ref.ID)
	}

	return Hint{
		AuditRef: ref,
		Estimate: wasted,
		Title:    printer.Sprintf("Potential savings of %d ms", int64(math.Round(wasted))),
	}, nil
}
