package main

import (
	"fmt"

	"github.com/beacon-audit/beacon/internal/reporting"
	"github.com/beacon-audit/beacon/internal/smoke"
	"github.com/spf13/cobra"
)

type smokeOptions struct {
	expectationsPath string
	reportPath       string
}

func newSmokeCommand() *cobra.Command {
	opts := &smokeOptions{}

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check a saved report against expected audit values",
		Long: `Compare a JSON report written by "beacon run" against a file of expectations.

The expectation is chosen by matching the report's url or finalUrl. Every
mismatch is printed and the command exits with code 1 when any are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return smokeCommandE(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.expectationsPath, "expectations", "e", "", "Expectations file (YAML or JSON list)")
	cmd.Flags().StringVarP(&opts.reportPath, "report", "r", "", "Report file written by beacon run (.json or .json.gz)")
	_ = cmd.MarkFlagRequired("expectations")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func smokeCommandE(cmd *cobra.Command, opts *smokeOptions) error {
	expectations, err := smoke.LoadExpectations(opts.expectationsPath)
	if err != nil {
		return err
	}

	rep, err := reporting.ReadReportFile(opts.reportPath)
	if err != nil {
		return err
	}

	expected, ok := smoke.Find(expectations, rep.URL)
	if !ok {
		expected, ok = smoke.Find(expectations, rep.FinalURL)
	}
	if !ok {
		return fmt.Errorf("no expectation matches %s", rep.URL)
	}

	mismatches, err := smoke.Compare(expected, rep)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(mismatches) == 0 {
		fmt.Fprintf(out, "✓ %s matched %d audit expectation(s)\n", rep.FinalURL, len(expected.Audits)) //nolint:errcheck
		return nil
	}

	for _, m := range mismatches {
		fmt.Fprintf(out, "✗ %s\n", m.Error()) //nolint:errcheck
	}
	return &AuditFailureError{
		Message: fmt.Sprintf("%d smoke expectation(s) failed for %s", len(mismatches), rep.FinalURL),
	}
}
