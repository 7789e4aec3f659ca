// Package projectconfig provides the ProjectConfig struct and loader for
// .beacon.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file Load looks for.
const FileName = ".beacon.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultWorkers = 4
	DefaultFormat  = "json"
)

// Output formats accepted by settings.format.
const (
	FormatJSON  = "json"
	FormatText  = "text"
	FormatJUnit = "junit"
)

// SettingsConfig holds run settings. CLI flags override these.
type SettingsConfig struct {
	Workers    int      `yaml:"workers,omitempty"`
	OnlyAudits []string `yaml:"only_audits,omitempty"`
	SkipAudits []string `yaml:"skip_audits,omitempty"`
	Format     string   `yaml:"format,omitempty"`
	Output     string   `yaml:"output,omitempty"`
	FailUnder  *float64 `yaml:"fail_under,omitempty"`
}

// AuditConfig holds per-audit overrides.
type AuditConfig struct {
	Options map[string]any `yaml:"options,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .beacon.yaml.
type ProjectConfig struct {
	Settings   SettingsConfig                `yaml:"settings,omitempty"`
	Audits     map[string]AuditConfig        `yaml:"audits,omitempty"`
	Categories []models.CategorySpec         `yaml:"categories,omitempty"`
	Groups     map[string]models.ReportGroup `yaml:"groups,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Settings: SettingsConfig{
			Workers: DefaultWorkers,
			Format:  DefaultFormat,
		},
		Audits:     map[string]AuditConfig{},
		Categories: DefaultCategories(),
		Groups:     DefaultGroups(),
	}
}

// DefaultCategories returns the built-in category definitions.
func DefaultCategories() []models.CategorySpec {
	return []models.CategorySpec{
		{
			ID:          "performance",
			Name:        "Performance",
			Description: "These encapsulate your web app's current performance and opportunities to improve it.",
			Audits: []models.CategoryAuditSpec{
				{ID: "first-meaningful-paint", Weight: 5, Group: models.GroupPerfMetric},
				{ID: "interactive", Weight: 5, Group: models.GroupPerfMetric},
				{ID: "speed-index-metric", Weight: 1, Group: models.GroupPerfMetric},
				{ID: "link-blocking-first-paint", Weight: 0, Group: models.GroupPerfHint},
				{ID: "uses-long-cache-ttl", Weight: 0, Group: models.GroupPerfHint},
				{ID: "total-byte-weight", Weight: 0, Group: models.GroupPerfInfo},
				{ID: "dom-size", Weight: 0, Group: models.GroupPerfInfo},
			},
		},
		{
			ID:          "pwa",
			Name:        "Progressive Web App",
			Description: "These checks validate the aspects of a Progressive Web App.",
			Audits: []models.CategoryAuditSpec{
				{ID: "is-on-https", Weight: 1},
				{ID: "pwa-cross-browser", Weight: 0, Group: models.GroupManualPWA},
			},
		},
		{
			ID:          "best-practices",
			Name:        "Best Practices",
			Description: "We've compiled some recommendations for modernizing your web app and avoiding performance pitfalls.",
			Audits: []models.CategoryAuditSpec{
				{ID: "is-on-https", Weight: 1},
				{ID: "uses-http2", Weight: 1},
				{ID: "errors-in-console", Weight: 1},
				{ID: "no-document-write", Weight: 1},
			},
		},
	}
}

// DefaultGroups returns the built-in report section descriptors.
func DefaultGroups() map[string]models.ReportGroup {
	return map[string]models.ReportGroup{
		string(models.GroupPerfMetric): {
			ID:    models.GroupPerfMetric,
			Title: "Metrics",
		},
		string(models.GroupPerfHint): {
			ID:          models.GroupPerfHint,
			Title:       "Opportunities",
			Description: "These are opportunities to speed up your application by optimizing the following resources.",
		},
		string(models.GroupPerfInfo): {
			ID:          models.GroupPerfInfo,
			Title:       "Diagnostics",
			Description: "More information about the performance of your application.",
		},
		string(models.GroupManualPWA): {
			ID:          models.GroupManualPWA,
			Title:       "Additional items to manually check",
			Description: "These checks are required by the baseline PWA Checklist but are not automatically checked. They do not affect your score but it's important that you verify them manually.",
		},
	}
}

// AuditOptions returns the configured options keyed by audit name.
func (c *ProjectConfig) AuditOptions() map[string]map[string]any {
	out := make(map[string]map[string]any, len(c.Audits))
	for name, a := range c.Audits {
		if len(a.Options) > 0 {
			out[name] = a.Options
		}
	}
	return out
}

// Load finds .beacon.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	if err := Parse(cfg, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML config data and merges it onto cfg.
func Parse(cfg *ProjectConfig, data []byte) error {
	if err := validation.ConfigDocument.Validate(data); err != nil {
		return err
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return nil
}

// findConfigFile walks up from dir looking for .beacon.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst. Categories are
// replaced as a whole; audits and groups merge per key.
func mergeConfig(dst, src *ProjectConfig) {
	// Settings
	if src.Settings.Workers != 0 {
		dst.Settings.Workers = src.Settings.Workers
	}
	if src.Settings.OnlyAudits != nil {
		dst.Settings.OnlyAudits = src.Settings.OnlyAudits
	}
	if src.Settings.SkipAudits != nil {
		dst.Settings.SkipAudits = src.Settings.SkipAudits
	}
	if src.Settings.Format != "" {
		dst.Settings.Format = src.Settings.Format
	}
	if src.Settings.Output != "" {
		dst.Settings.Output = src.Settings.Output
	}
	if src.Settings.FailUnder != nil {
		dst.Settings.FailUnder = src.Settings.FailUnder
	}

	// Audits
	if dst.Audits == nil {
		dst.Audits = map[string]AuditConfig{}
	}
	maps.Copy(dst.Audits, src.Audits)

	// Categories
	if len(src.Categories) > 0 {
		dst.Categories = src.Categories
	}

	// Groups
	if dst.Groups == nil {
		dst.Groups = map[string]models.ReportGroup{}
	}
	for key, g := range src.Groups {
		if g.ID == models.GroupNone {
			g.ID = models.Group(key)
		}
		dst.Groups[key] = g
	}
}
