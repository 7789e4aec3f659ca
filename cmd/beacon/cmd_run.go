package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"

	"github.com/beacon-audit/beacon/internal/audit"
	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/orchestration"
	"github.com/beacon-audit/beacon/internal/projectconfig"
	"github.com/beacon-audit/beacon/internal/reporting"
	"github.com/beacon-audit/beacon/internal/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type runOptions struct {
	artifactsPath string
	configDir     string
	format        string
	outputPath    string
	onlyAudits    []string
	skipAudits    []string
	auditFilters  []string
	failUnder     float64
	workers       int
	verbose       bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Audit a gathered artifacts file",
		Long: `Run every selected audit against an artifacts file and print the report.

Settings are read from .beacon.yaml in the current directory or a parent.
Flags override the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommandE(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.artifactsPath, "artifacts", "a", "", "Artifacts file to audit (JSON or YAML)")
	cmd.Flags().StringVar(&opts.configDir, "config-dir", "", "Directory to search for .beacon.yaml (default: current directory)")
	cmd.Flags().StringVar(&opts.format, "format", projectconfig.DefaultFormat, "Output format: json, text, junit")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the report to a file instead of stdout (.gz compresses JSON)")
	cmd.Flags().StringSliceVar(&opts.onlyAudits, "only-audits", nil, "Run only these audits (comma separated)")
	cmd.Flags().StringSliceVar(&opts.skipAudits, "skip-audits", nil, "Skip these audits (comma separated)")
	cmd.Flags().StringArrayVar(&opts.auditFilters, "filter", nil, "Filter audits by name glob pattern (can be repeated)")
	cmd.Flags().Float64Var(&opts.failUnder, "fail-under", 0, "Exit with code 1 when any category scores below this value")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of concurrent audits (default: 4)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print progress for each audit")
	_ = cmd.MarkFlagRequired("artifacts")

	return cmd
}

func runCommandE(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadRunConfig(cmd, opts)
	if err != nil {
		return err
	}

	artifacts, err := orchestration.LoadArtifacts(opts.artifactsPath)
	if err != nil {
		return err
	}

	runner := orchestration.NewRunner(cfg, audit.Defaults(),
		orchestration.WithAuditFilters(opts.auditFilters...),
		orchestration.WithLogger(slog.Default()),
		orchestration.WithGeneratedBy("beacon/"+version),
	)

	stderr := cmd.ErrOrStderr()
	var spin *spinner.Spinner
	switch {
	case opts.verbose:
		var mu sync.Mutex
		runner.OnProgress(func(event orchestration.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			progressListener(stderr, event)
		})
	case isTerminal(stderr):
		spin = spinner.Start(stderr, "Auditing...")
		runner.OnProgress(func(event orchestration.ProgressEvent) {
			if event.EventType == orchestration.EventAuditComplete {
				spin.SetMessage(spinnerMessage(event))
			}
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rep, err := runner.Run(ctx, artifacts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("audit run failed: %w", err)
	}

	if err := writeReport(cmd.OutOrStdout(), rep, cfg.Settings.Format, cfg.Settings.Output); err != nil {
		return err
	}
	if cfg.Settings.Output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", cfg.Settings.Output) //nolint:errcheck
	}

	if cfg.Settings.FailUnder != nil {
		return checkFailUnder(rep, *cfg.Settings.FailUnder)
	}
	return nil
}

// loadRunConfig reads .beacon.yaml and applies the flags the user set.
func loadRunConfig(cmd *cobra.Command, opts *runOptions) (*projectconfig.ProjectConfig, error) {
	dir := opts.configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := projectconfig.Load(dir)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Settings.Format = opts.format
	}
	if flags.Changed("output") {
		cfg.Settings.Output = opts.outputPath
	}
	if flags.Changed("only-audits") {
		cfg.Settings.OnlyAudits = opts.onlyAudits
	}
	if flags.Changed("skip-audits") {
		cfg.Settings.SkipAudits = opts.skipAudits
	}
	if flags.Changed("workers") {
		if opts.workers <= 0 {
			return nil, fmt.Errorf("--workers must be positive, got %d", opts.workers)
		}
		cfg.Settings.Workers = opts.workers
	}
	if flags.Changed("fail-under") {
		if opts.failUnder < 0 || opts.failUnder > 1 {
			return nil, fmt.Errorf("--fail-under must be between 0 and 1, got %v", opts.failUnder)
		}
		cfg.Settings.FailUnder = &opts.failUnder
	}

	switch cfg.Settings.Format {
	case projectconfig.FormatJSON, projectconfig.FormatText, projectconfig.FormatJUnit:
	default:
		return nil, fmt.Errorf("unknown output format: %s (supported: json, text, junit)", cfg.Settings.Format)
	}

	return cfg, nil
}

func writeReport(stdout io.Writer, rep *models.Report, format, outputPath string) error {
	switch format {
	case projectconfig.FormatText:
		text, err := reporting.FormatText(rep)
		if err != nil {
			return fmt.Errorf("formatting report: %w", err)
		}
		if outputPath != "" {
			return os.WriteFile(outputPath, []byte(text), 0o644)
		}
		_, err = io.WriteString(stdout, text)
		return err
	case projectconfig.FormatJUnit:
		if outputPath != "" {
			return reporting.WriteJUnitXML(rep, outputPath)
		}
		return reporting.WriteJUnit(stdout, rep)
	default:
		if outputPath != "" {
			return reporting.WriteReportFile(outputPath, rep)
		}
		return reporting.WriteJSON(stdout, rep)
	}
}

// checkFailUnder returns an AuditFailureError naming every category that
// scored below threshold.
func checkFailUnder(rep *models.Report, threshold float64) error {
	var below []string
	for _, cat := range rep.ReportCategories {
		if cat.Score < threshold {
			below = append(below, fmt.Sprintf("%s (%.2f)", cat.ID, cat.Score))
		}
	}
	if len(below) == 0 {
		return nil
	}
	sort.Strings(below)
	return &AuditFailureError{
		Message: fmt.Sprintf("%d categor%s scored below %.2f: %s",
			len(below), plural(len(below), "y", "ies"), threshold, strings.Join(below, ", ")),
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func progressListener(w io.Writer, event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventRunStart:
		fmt.Fprintf(w, "Running %d audit(s)...\n", event.TotalAudits) //nolint:errcheck
	case orchestration.EventAuditComplete:
		status := "✓"
		switch {
		case event.Error:
			status = "!"
		case event.Score < 1:
			status = "✗"
		}
		fmt.Fprintf(w, "[%d/%d] %s %s (%.2f, %dms)\n", //nolint:errcheck
			event.Completed, event.TotalAudits, status, event.AuditName, event.Score, event.DurationMs)
	case orchestration.EventRunComplete:
		fmt.Fprintf(w, "Finished in %dms\n", event.DurationMs) //nolint:errcheck
	}
}

func spinnerMessage(event orchestration.ProgressEvent) string {
	return fmt.Sprintf("[%d/%d] Auditing...", event.Completed, event.TotalAudits)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
