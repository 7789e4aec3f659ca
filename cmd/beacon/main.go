package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Every check passed
	ExitAuditFailed = 1 // A category fell below --fail-under, or a smoke check mismatched
	ExitError       = 2 // Configuration or runtime error
)

// AuditFailureError indicates that the run completed, but its results did
// not meet the requested threshold.
type AuditFailureError struct {
	Message string
}

func (e *AuditFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var auditFailureErr *AuditFailureError
		if errors.As(err, &auditFailureErr) {
			os.Exit(ExitAuditFailed)
		}

		os.Exit(ExitError)
	}
}
