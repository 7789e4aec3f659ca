package audit

import (
	"fmt"
	"math"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/statistics"
)

// Wasted-time thresholds for ScoreForWastedMs.
const (
	WastedMsForAverage = 300
	WastedMsForPoor    = 750
)

// NormalizeScore resolves, validates, clamps and rounds the score of a
// Product. The score comes from product.Score when present, otherwise from
// product.RawValue. Booleans become 1 or 0 and null becomes 0.
func NormalizeScore(meta models.AuditMeta, product *models.Product) (float64, models.ScoreDisplayMode, error) {
	source := product.RawValue
	if product.Score.IsPresent() {
		source = product.Score
	}

	score := coerceScore(source)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	if score > 1 {
		return 0, "", fmt.Errorf("%w: score for %s is %v, above 1", ErrInvalidScore, meta.Name, score)
	}

	mode := meta.ScoreDisplayMode
	if mode == "" {
		mode = models.ScoreDisplayBinary
	}

	return roundScore(clampScore(score)), mode, nil
}

func coerceScore(v models.RawValue) float64 {
	switch v.Kind() {
	case models.RawBool:
		if b, _ := v.BoolValue(); b {
			return 1
		}
		return 0
	case models.RawNumber:
		n, _ := v.NumberValue()
		return n
	}
	return 0
}

// ComputeLogNormalScore maps a continuous measurement to a score: the
// fraction of a reference population that measured worse, under a
// log-normal fitted to median and diminishingReturns. Lower measurements
// score higher.
func ComputeLogNormalScore(measured, diminishingReturns, median float64) (float64, error) {
	dist, err := statistics.NewLogNormal(median, diminishingReturns)
	if err != nil {
		return 0, err
	}
	return roundScore(clampScore(dist.ComplementaryPercentile(measured))), nil
}

// ScoreForWastedMs scores an opportunity by how much load time it wastes.
func ScoreForWastedMs(wastedMs float64) float64 {
	switch {
	case wastedMs <= 0:
		return 1
	case wastedMs < WastedMsForAverage:
		return 0.9
	case wastedMs < WastedMsForPoor:
		return 0.65
	default:
		return 0
	}
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(1, s))
}

func roundScore(s float64) float64 {
	return math.Round(s*100) / 100
}
