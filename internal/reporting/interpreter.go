package reporting

import (
	"fmt"
	"math"
	"strings"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/report"
	"github.com/mattn/go-runewidth"
)

// InterpretScore returns a plain-language label for a numeric score (0–1).
func InterpretScore(score float64) string {
	pct := math.Round(score * 100)
	switch {
	case pct >= 90:
		return "Good (90-100)"
	case pct >= 50:
		return "Needs Improvement (50-89)"
	default:
		return "Poor (0-49)"
	}
}

// FormatText renders a report for a terminal: each category with its score,
// followed by its metrics, opportunities, diagnostics and passed audits.
func FormatText(rep *models.Report) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Report for %s\n", rep.FinalURL)
	if rep.URL != "" && rep.URL != rep.FinalURL {
		fmt.Fprintf(&b, "Requested:  %s\n", rep.URL)
	}
	if rep.GeneratedBy != "" {
		fmt.Fprintf(&b, "Generated by %s in %d ms\n", rep.GeneratedBy, rep.Timing.TotalMs)
	}

	for _, cat := range rep.ReportCategories {
		if err := formatCategory(&b, rep, cat); err != nil {
			return "", err
		}
	}

	if len(rep.RuntimeErrors) > 0 {
		b.WriteString("\nRuntime errors:\n")
		for _, re := range rep.RuntimeErrors {
			fmt.Fprintf(&b, "  %s: %s\n", re.Audit, re.Message)
		}
	}

	return b.String(), nil
}

func formatCategory(b *strings.Builder, rep *models.Report, cat models.Category) error {
	sections, err := report.Partition(cat)
	if err != nil {
		return err
	}

	fmt.Fprintf(b, "\n=== %s: %.0f — %s ===\n", cat.Name, cat.Score*100, InterpretScore(cat.Score))

	if len(sections.Metrics) > 0 {
		writeHeader(b, rep, models.GroupPerfMetric)
		writeRows(b, sections.Metrics, false)
	}

	if len(sections.Hints) > 0 {
		writeHeader(b, rep, models.GroupPerfHint)
		width := 0
		for _, h := range sections.Hints {
			width = max(width, runewidth.StringWidth(h.Result.Description))
		}
		for _, h := range sections.Hints {
			fmt.Fprintf(b, "  ✗ %s  %s  %s\n", padRight(h.Result.Description, width), bar(h.Ratio), h.Title)
			writeLearnMore(b, h.Result)
		}
	}

	if len(sections.Diagnostics) > 0 {
		writeHeader(b, rep, models.GroupPerfInfo)
		writeRows(b, sections.Diagnostics, true)
	}

	var ungrouped []models.AuditRef
	for _, ref := range cat.Audits {
		if ref.Group == models.GroupNone {
			ungrouped = append(ungrouped, ref)
		}
	}
	if len(ungrouped) > 0 {
		b.WriteString("\n  Audits\n")
		writeRows(b, ungrouped, true)
	}

	if len(sections.Passed) > 0 {
		fmt.Fprintf(b, "\n  Passed audits (%d)\n", len(sections.Passed))
		writeRows(b, sections.Passed, false)
	}

	return nil
}

func writeHeader(b *strings.Builder, rep *models.Report, group models.Group) {
	title := group.String()
	if g, ok := rep.ReportGroups[group.String()]; ok && g.Title != "" {
		title = g.Title
	}
	fmt.Fprintf(b, "\n  %s\n", title)
}

func writeRows(b *strings.Builder, refs []models.AuditRef, learnMore bool) {
	width := 0
	for _, ref := range refs {
		width = max(width, runewidth.StringWidth(ref.Result.Description))
	}
	for _, ref := range refs {
		r := ref.Result
		line := fmt.Sprintf("  %s %s", statusIcon(r), padRight(r.Description, width))
		if r.DisplayValue != "" {
			line += "  " + r.DisplayValue
		} else if r.Error && r.DebugString != "" {
			line += "  " + r.DebugString
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
		if learnMore && statusIcon(r) == "✗" {
			writeLearnMore(b, r)
		}
	}
}

func writeLearnMore(b *strings.Builder, r *models.Result) {
	if links := HelpLinks(r.HelpText); len(links) > 0 {
		fmt.Fprintf(b, "      Learn more: %s\n", links[0])
	}
}

func statusIcon(r *models.Result) string {
	switch {
	case r.Manual, r.NotApplicable:
		return "-"
	case r.Score >= 1:
		return "✓"
	default:
		return "✗"
	}
}

const barWidth = 20

// bar draws a ratio in [0, 1] as a fixed-width bar.
func bar(ratio float64) string {
	n := int(math.Round(math.Max(0, math.Min(1, ratio)) * barWidth))
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
