package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/kubegate-io/kubegate/internal/models"
)

// ANSI color codes for severity output (used when Colored=true).
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[0;31m"
	ansiYellow = "\033[0;33m"
	ansiBlue   = "\033[0;34m"
)

// TableOptions controls how RenderTable renders verdicts.
type TableOptions struct {
	// Colored wraps severity labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// ShowPassing lists manifests with no violations as well.
	ShowPassing bool

	// MaxMessageWidth truncates the MESSAGE column. Zero means 80.
	MaxMessageWidth int
}

// RenderTable writes a human-readable report to w: a summary line, parse
// failures, then one section per verdict listing its violations.
func RenderTable(w io.Writer, report *models.BatchReport, opts TableOptions) {
	s := report.Summary

	fmt.Fprintf(w,
		"Manifests: %d  Passed: %d  Failed: %d  Errors: %d  Warnings: %d  Info: %d\n",
		s.Manifests, s.Passed, s.Failed,
		s.ErrorViolations, s.WarningViolations, s.InfoViolations,
	)

	if len(report.ParseFailures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Parse failures:")
		for _, pf := range report.ParseFailures {
			fmt.Fprintf(w, "  %s: %s\n", pf.Source, pf.Error)
		}
	}

	maxMsg := opts.MaxMessageWidth
	if maxMsg <= 0 {
		maxMsg = 80
	}

	for _, verdict := range report.Verdicts {
		if len(verdict.Violations) == 0 {
			if opts.ShowPassing {
				fmt.Fprintln(w)
				fmt.Fprintf(w, "%s (%s): PASS\n", identity(verdict), verdict.Source)
			}
			continue
		}

		status := "PASS"
		if !verdict.Passed {
			status = "FAIL"
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s (%s): %s  [evaluated %d rules, skipped %d]\n",
			identity(verdict), verdict.Source, status,
			verdict.EvaluatedRuleCount, verdict.SkippedRuleCount)

		fmt.Fprintf(w, "  %-8s  %-28s  %-44s  %s\n", "SEVERITY", "RULE", "PATH", "MESSAGE")
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 100))
		for _, v := range verdict.Violations {
			fmt.Fprintf(w, "  %s  %-28s  %-44s  %s\n",
				severityCell(v.Severity, 8, opts.Colored),
				truncateField(v.RuleID, 28),
				truncateField(v.ResourcePath, 44),
				shortenMessage(v.Message, maxMsg),
			)
		}
	}
}

func identity(v models.Verdict) string {
	if v.Namespace == "" {
		return fmt.Sprintf("%s/%s", v.Kind, v.Name)
	}
	return fmt.Sprintf("%s/%s/%s", v.Kind, v.Namespace, v.Name)
}

// severityCell returns the severity padded to width characters. When colored,
// ANSI codes wrap only the text; trailing padding spaces stay plain so
// subsequent columns remain aligned regardless of terminal ANSI support.
func severityCell(sev models.Severity, width int, colored bool) string {
	text := string(sev)
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	var code string
	switch sev {
	case models.SeverityError:
		code = ansiRed
	case models.SeverityWarning:
		code = ansiYellow
	case models.SeverityInfo:
		code = ansiBlue
	default:
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return code + text + ansiReset + strings.Repeat(" ", spaces)
}

// shortenMessage truncates msg to at most max runes, appending "..." when
// truncated. max is treated as at least 4 to guarantee space for the ellipsis.
func shortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// truncateField shortens s to at most max bytes for ID/path columns.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
