package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/beacon-audit/beacon/internal/audit"
	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/projectconfig"
	"github.com/beacon-audit/beacon/internal/report"
	"golang.org/x/sync/errgroup"
)

// Runner orchestrates the execution of audits against one page's artifacts.
type Runner struct {
	cfg      *projectconfig.ProjectConfig
	auditors []audit.Auditor
	logger   *slog.Logger

	// Audit filtering by glob
	auditFilters []string

	generatedBy string
	now         func() time.Time

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStart      EventType = "run_start"
	EventRunComplete   EventType = "run_complete"
	EventAuditStart    EventType = "audit_start"
	EventAuditComplete EventType = "audit_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	AuditName string
	// AuditNum is the launch position, so it can arrive out of order.
	AuditNum    int
	TotalAudits int
	// Completed counts finished audits, including this one, on EventAuditComplete.
	Completed  int
	Score      float64
	Error      bool
	DurationMs int64
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithAuditFilters sets glob patterns used to filter audits by name.
func WithAuditFilters(patterns ...string) RunnerOption {
	return func(r *Runner) {
		r.auditFilters = patterns
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithGeneratedBy sets the tool identifier recorded in the report.
func WithGeneratedBy(s string) RunnerOption {
	return func(r *Runner) {
		r.generatedBy = s
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner for the given audits.
func NewRunner(cfg *projectconfig.ProjectConfig, auditors []audit.Auditor, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:         cfg,
		auditors:    auditors,
		logger:      slog.Default(),
		generatedBy: "beacon",
		now:         time.Now,
		listeners:   []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run audits the artifacts and assembles the report. An audit that fails is
// replaced by an error result and recorded in RuntimeErrors. Run itself
// fails only on configuration errors or when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, artifacts *models.Artifacts) (*models.Report, error) {
	start := r.now()

	selected, err := r.selectAuditors()
	if err != nil {
		return nil, err
	}
	if err := audit.Configure(selected, r.cfg.AuditOptions()); err != nil {
		return nil, fmt.Errorf("configuring audits: %w", err)
	}

	r.notifyProgress(ProgressEvent{EventType: EventRunStart, TotalAudits: len(selected)})
	r.logger.Debug("running audits", "count", len(selected), "workers", r.workers())

	results, runtimeErrors, err := r.runAudits(ctx, selected, artifacts)
	if err != nil {
		return nil, err
	}

	metas := make([]models.AuditMeta, 0, len(selected))
	for _, a := range selected {
		metas = append(metas, a.Meta())
	}

	categories, err := report.Aggregate(metas, results, r.categoryDefs(selected))
	if err != nil {
		return nil, fmt.Errorf("aggregating categories: %w", err)
	}
	for i := range categories {
		categories[i].Score = report.ScoreCategory(categories[i])
	}

	rep := &models.Report{
		URL:              artifacts.URL,
		FinalURL:         artifacts.PageURL(),
		FetchTime:        start.UTC(),
		GeneratedBy:      r.generatedBy,
		UserAgent:        artifacts.UserAgent,
		Audits:           results,
		ReportCategories: categories,
		ReportGroups:     r.cfg.Groups,
		RuntimeErrors:    runtimeErrors,
		Timing:           models.Timing{TotalMs: r.now().Sub(start).Milliseconds()},
	}

	r.notifyProgress(ProgressEvent{
		EventType:   EventRunComplete,
		TotalAudits: len(selected),
		DurationMs:  rep.Timing.TotalMs,
	})
	return rep, nil
}

func (r *Runner) workers() int {
	if r.cfg.Settings.Workers > 0 {
		return r.cfg.Settings.Workers
	}
	return projectconfig.DefaultWorkers
}

func (r *Runner) selectAuditors() ([]audit.Auditor, error) {
	selected, err := audit.Select(r.auditors, r.cfg.Settings.OnlyAudits, r.cfg.Settings.SkipAudits)
	if err != nil {
		return nil, err
	}
	return FilterAuditors(selected, r.auditFilters)
}

// runAudits runs every auditor with at most workers in flight.
func (r *Runner) runAudits(ctx context.Context, auditors []audit.Auditor, artifacts *models.Artifacts) (map[string]*models.Result, []models.RuntimeError, error) {
	var (
		mu            sync.Mutex
		results       = make(map[string]*models.Result, len(auditors))
		runtimeErrors []models.RuntimeError
		completed     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for i, a := range auditors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name := a.Meta().Name
			r.notifyProgress(ProgressEvent{
				EventType:   EventAuditStart,
				AuditName:   name,
				AuditNum:    i + 1,
				TotalAudits: len(auditors),
			})

			auditStart := time.Now()
			res, auditErr := r.runAudit(gctx, a, artifacts)
			if auditErr != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			if auditErr != nil {
				runtimeErrors = append(runtimeErrors, models.RuntimeError{Audit: name, Message: auditErr.Error()})
			}
			completed++

			// Delivered under the lock so Completed reaches listeners in order.
			r.notifyProgress(ProgressEvent{
				EventType:   EventAuditComplete,
				AuditName:   name,
				AuditNum:    i + 1,
				TotalAudits: len(auditors),
				Completed:   completed,
				Score:       res.Score,
				Error:       res.Error,
				DurationMs:  time.Since(auditStart).Milliseconds(),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("audit run cancelled: %w", err)
	}

	sort.Slice(runtimeErrors, func(i, j int) bool {
		return runtimeErrors[i].Audit < runtimeErrors[j].Audit
	})
	return results, runtimeErrors, nil
}

// runAudit always returns a result. When the audit fails, the result is an
// error result and the failure is returned alongside it.
func (r *Runner) runAudit(ctx context.Context, a audit.Auditor, artifacts *models.Artifacts) (res *models.Result, err error) {
	meta := a.Meta()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("audit %s panicked: %v", meta.Name, p)
			res = r.errorResult(meta, err)
		}
	}()

	product, err := a.Audit(ctx, artifacts)
	if err == nil {
		res, err = audit.GenerateResult(meta, product)
	}
	if err != nil {
		r.logger.Warn("audit failed", "audit", meta.Name, "error", err)
		return r.errorResult(meta, err), err
	}

	r.logger.Debug("audit complete", "audit", meta.Name, "score", res.Score)
	return res, nil
}

func (r *Runner) errorResult(meta models.AuditMeta, cause error) *models.Result {
	res, err := audit.GenerateErrorResult(meta, fmt.Sprintf("Audit error: %v", cause))
	if err != nil {
		// An error result always scores 0, so this only fails on a broken meta.
		return &models.Result{Name: meta.Name, Error: true, RawValue: models.Null(), DebugString: cause.Error()}
	}
	return res
}

// categoryDefs drops references to audits that exist but were not selected
// for this run, and categories left empty by that. References to audits that
// do not exist at all are kept so aggregation reports them.
func (r *Runner) categoryDefs(selected []audit.Auditor) []models.CategorySpec {
	known := make(map[string]bool, len(r.auditors))
	for _, a := range r.auditors {
		known[a.Meta().Name] = true
	}
	ran := make(map[string]bool, len(selected))
	for _, a := range selected {
		ran[a.Meta().Name] = true
	}

	var defs []models.CategorySpec
	for _, def := range r.cfg.Categories {
		refs := slices.DeleteFunc(slices.Clone(def.Audits), func(ref models.CategoryAuditSpec) bool {
			return known[ref.ID] && !ran[ref.ID]
		})
		if len(refs) == 0 {
			continue
		}
		def.Audits = refs
		defs = append(defs, def)
	}
	return defs
}
