package projectconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/validation"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Settings
	assertEqualInt(t, "Settings.Workers", 4, cfg.Settings.Workers)
	assertEqual(t, "Settings.Format", "json", cfg.Settings.Format)
	assertEqual(t, "Settings.Output", "", cfg.Settings.Output)
	if cfg.Settings.FailUnder != nil {
		t.Error("Settings.FailUnder should be nil by default")
	}
	if len(cfg.Settings.OnlyAudits) != 0 || len(cfg.Settings.SkipAudits) != 0 {
		t.Error("audit selection should be empty by default")
	}

	// Categories
	if len(cfg.Categories) != 3 {
		t.Fatalf("len(Categories) = %d, want 3", len(cfg.Categories))
	}
	assertEqual(t, "Categories[0].ID", "performance", cfg.Categories[0].ID)
	assertEqual(t, "Categories[1].ID", "pwa", cfg.Categories[1].ID)
	assertEqual(t, "Categories[2].ID", "best-practices", cfg.Categories[2].ID)

	// Groups
	for _, g := range models.Groups() {
		rg, ok := cfg.Groups[string(g)]
		if !ok {
			t.Errorf("Groups[%q] missing", g)
			continue
		}
		if rg.ID != g {
			t.Errorf("Groups[%q].ID = %q", g, rg.ID)
		}
	}
	assertEqual(t, "Groups[perf-hint].Title", "Opportunities", cfg.Groups["perf-hint"].Title)

	if len(cfg.AuditOptions()) != 0 {
		t.Error("AuditOptions() should be empty by default")
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
settings:
  workers: 8
  only_audits: [interactive, dom-size]
  skip_audits: [dom-size]
  format: junit
  output: report.xml
  fail_under: 0.8
audits:
  dom-size:
    options:
      median: 1500
      diminishing_returns: 1000
  is-on-https: {}
categories:
  - id: speed
    name: Speed
    audits:
      - id: interactive
        weight: 2
        group: perf-metric
groups:
  perf-metric:
    title: Timings
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqualInt(t, "Settings.Workers", 8, cfg.Settings.Workers)
	assertEqual(t, "Settings.Format", "junit", cfg.Settings.Format)
	assertEqual(t, "Settings.Output", "report.xml", cfg.Settings.Output)
	if cfg.Settings.FailUnder == nil || *cfg.Settings.FailUnder != 0.8 {
		t.Errorf("Settings.FailUnder = %v, want 0.8", cfg.Settings.FailUnder)
	}
	if len(cfg.Settings.OnlyAudits) != 2 || cfg.Settings.OnlyAudits[1] != "dom-size" {
		t.Errorf("Settings.OnlyAudits = %v", cfg.Settings.OnlyAudits)
	}
	if len(cfg.Settings.SkipAudits) != 1 {
		t.Errorf("Settings.SkipAudits = %v", cfg.Settings.SkipAudits)
	}

	// Categories replace the defaults as a whole.
	if len(cfg.Categories) != 1 {
		t.Fatalf("len(Categories) = %d, want 1", len(cfg.Categories))
	}
	cat := cfg.Categories[0]
	assertEqual(t, "Categories[0].ID", "speed", cat.ID)
	if cat.Audits[0].Group != models.GroupPerfMetric || cat.Audits[0].Weight != 2 {
		t.Errorf("Categories[0].Audits[0] = %+v", cat.Audits[0])
	}

	// Groups merge per key.
	assertEqual(t, "Groups[perf-metric].Title", "Timings", cfg.Groups["perf-metric"].Title)
	if cfg.Groups["perf-metric"].ID != models.GroupPerfMetric {
		t.Errorf("Groups[perf-metric].ID = %q", cfg.Groups["perf-metric"].ID)
	}
	assertEqual(t, "Groups[perf-info].Title", "Diagnostics", cfg.Groups["perf-info"].Title)

	opts := cfg.AuditOptions()
	if len(opts) != 1 {
		t.Fatalf("AuditOptions() = %v, want only dom-size", opts)
	}
	if opts["dom-size"]["median"] != 1500 {
		t.Errorf("dom-size median = %v (%T)", opts["dom-size"]["median"], opts["dom-size"]["median"])
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
settings:
  format: text
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Settings.Format", "text", cfg.Settings.Format)
	assertEqualInt(t, "Settings.Workers", DefaultWorkers, cfg.Settings.Workers)
	if len(cfg.Categories) != 3 {
		t.Errorf("default categories should be kept, got %d", len(cfg.Categories))
	}
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqualInt(t, "Settings.Workers", DefaultWorkers, cfg.Settings.Workers)
	assertEqual(t, "Settings.Format", DefaultFormat, cfg.Settings.Format)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "settings: [unclosed")

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_SchemaViolation_ReturnsSchemaError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
settings:
  format: html
`)

	_, err := Load(dir)
	var schemaErr *validation.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Load() error = %v, want *validation.SchemaError", err)
	}
	if len(schemaErr.Problems) == 0 {
		t.Error("SchemaError has no problems")
	}
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, `
settings:
  workers: 2
`)

	child := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(child)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqualInt(t, "Settings.Workers", 2, cfg.Settings.Workers)
	// Other defaults still populated
	assertEqual(t, "Settings.Format", "json", cfg.Settings.Format)
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}
