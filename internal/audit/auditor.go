// Package audit defines the Auditor interface and the protocol that turns an
// audit's raw Product into a normalized Result.
package audit

import (
	"context"
	"errors"

	"github.com/beacon-audit/beacon/internal/models"
)

//go:generate go tool mockgen -destination=../orchestration/mock_auditor_test.go -package=orchestration github.com/beacon-audit/beacon/internal/audit Auditor

// Auditor is implemented by every check. Meta is static for the life of the
// process; Audit runs once per page.
type Auditor interface {
	Meta() models.AuditMeta
	Audit(ctx context.Context, artifacts *models.Artifacts) (*models.Product, error)
}

// Configurable auditors accept per-run option overrides from config.
type Configurable interface {
	Configure(options map[string]any) error
}

var (
	// ErrInvalidScore means an audit produced a non-finite score or one above 1.
	ErrInvalidScore = errors.New("invalid score")
	// ErrMissingRawValue means a result was built from a Product with no raw value.
	ErrMissingRawValue = errors.New("result requires a raw value")
	// ErrInvalidRawValue means a numeric raw value is NaN or infinite and cannot be serialized.
	ErrInvalidRawValue = errors.New("raw value is not a finite number")
	// ErrMissingArtifact means the gatherer did not collect an artifact the audit reads.
	ErrMissingArtifact = errors.New("required artifact missing")
)
