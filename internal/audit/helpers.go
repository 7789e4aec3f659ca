package audit

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/statistics"
	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers in display values with digit grouping.
var printer = message.NewPrinter(language.English)

// CheckArtifacts returns ErrMissingArtifact when any artifact the audit
// declares was not gathered.
func CheckArtifacts(meta models.AuditMeta, artifacts *models.Artifacts) error {
	var missing []string
	for _, name := range meta.RequiredArtifacts {
		if !artifacts.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, strings.Join(missing, ", "))
	}
	return nil
}

// LogNormalOptions holds the scoring control points of audits scored on a
// log-normal curve. Audits embed it to become Configurable.
type LogNormalOptions struct {
	Median             float64 `mapstructure:"median"`
	DiminishingReturns float64 `mapstructure:"diminishing_returns"`
}

// Configure overlays "median" and "diminishing_returns" from options.
func (o *LogNormalOptions) Configure(options map[string]any) error {
	next := *o
	if err := mapstructure.Decode(options, &next); err != nil {
		return fmt.Errorf("decoding scoring options: %w", err)
	}
	if _, err := statistics.NewLogNormal(next.Median, next.DiminishingReturns); err != nil {
		return err
	}
	*o = next
	return nil
}

func (o *LogNormalOptions) score(measured float64) (float64, error) {
	return ComputeLogNormalScore(measured, o.DiminishingReturns, o.Median)
}

func formatMs(ms float64) string {
	return printer.Sprintf("%d ms", int64(math.Round(ms)))
}

func formatKb(bytes float64) string {
	return printer.Sprintf("%d KB", int64(math.Round(bytes/1024)))
}

func toKb(bytes float64) float64 {
	return math.Round(bytes / 1024)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return printer.Sprintf("%d %s", n, singular)
	}
	return printer.Sprintf("%d %s", n, plural)
}

func displayString(s string) *string {
	return &s
}

// origin returns scheme://host[:port] of a URL, or "" if it does not parse.
func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
