// Package report assembles audit results into categories and splits a
// category into the sections a report displays.
package report

import (
	"fmt"
	"math"

	"github.com/beacon-audit/beacon/internal/models"
)

// ConfigurationError is returned when a category references an audit that
// produced no result.
type ConfigurationError struct {
	Category string
	Audit    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("category %q references audit %q, which has no result", e.Category, e.Audit)
}

// Aggregate joins each category definition with the results of a run.
// Audits keep their authoring order. A ref's group wins over the audit's own
// group. Weights are copied as-is; category scores are left at zero.
func Aggregate(metas []models.AuditMeta, results map[string]*models.Result, defs []models.CategorySpec) ([]models.Category, error) {
	metaByName := make(map[string]models.AuditMeta, len(metas))
	for _, m := range metas {
		metaByName[m.Name] = m
	}

	categories := make([]models.Category, 0, len(defs))
	for _, def := range defs {
		cat := models.Category{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Audits:      make([]models.AuditRef, 0, len(def.Audits)),
		}

		for _, ref := range def.Audits {
			result, ok := results[ref.ID]
			if !ok || result == nil {
				return nil, &ConfigurationError{Category: def.ID, Audit: ref.ID}
			}

			group := ref.Group
			if group == models.GroupNone {
				group = metaByName[ref.ID].Group
			}

			cat.Audits = append(cat.Audits, models.AuditRef{
				ID:     ref.ID,
				Result: result,
				Group:  group,
				Weight: ref.Weight,
			})
		}

		categories = append(categories, cat)
	}

	return categories, nil
}

// ScoreCategory returns the weighted mean of the category's audit scores,
// rounded to two decimals.
// Non-positive weights contribute nothing; a category without positive
// weights scores 0.
func ScoreCategory(cat models.Category) float64 {
	var total, weights float64
	for _, ref := range cat.Audits {
		if ref.Weight <= 0 || ref.Result == nil {
			continue
		}
		total += ref.Result.Score * ref.Weight
		weights += ref.Weight
	}
	if weights == 0 {
		return 0
	}
	return math.Round(total/weights*100) / 100
}
