// Package statistics fits the distributions used to turn continuous
// measurements into scores.
package statistics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// LogNormal is a log-normal distribution fitted to two control points: the
// median measurement and the point of diminishing returns.
type LogNormal struct {
	dist distuv.LogNormal
}

// NewLogNormal fits a distribution whose CDF is 0.5 at median. The
// diminishingReturns point fixes the shape; past it, further improvement
// gains very little score. Both points must be positive and
// diminishingReturns must be below median.
func NewLogNormal(median, diminishingReturns float64) (*LogNormal, error) {
	if !(median > 0) || math.IsInf(median, 0) {
		return nil, fmt.Errorf("log-normal median must be positive and finite, got %v", median)
	}
	if !(diminishingReturns > 0) || diminishingReturns >= median {
		return nil, fmt.Errorf("log-normal point of diminishing returns must be in (0, %v), got %v", median, diminishingReturns)
	}

	location := math.Log(median)
	logRatio := math.Log(diminishingReturns / median)
	shape := math.Sqrt(1-3*logRatio-math.Sqrt((logRatio-3)*(logRatio-3)-8)) / 2

	return &LogNormal{dist: distuv.LogNormal{Mu: location, Sigma: shape}}, nil
}

// Location is the mean of the underlying normal distribution, ln(median).
func (l *LogNormal) Location() float64 { return l.dist.Mu }

// Shape is the standard deviation of the underlying normal distribution.
func (l *LogNormal) Shape() float64 { return l.dist.Sigma }

// ComplementaryPercentile returns the probability mass above x, in [0, 1].
// Measurements at or below zero get 1.
func (l *LogNormal) ComplementaryPercentile(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x <= 0 {
		return 1
	}

	p := l.dist.Survival(x)
	switch {
	case math.IsNaN(p):
		return 0
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
