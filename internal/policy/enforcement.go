package policy

import (
	"strings"

	"github.com/kubegate-io/kubegate/internal/models"
)

// ApplyOverrides rewrites violation severities according to per-rule policy
// overrides. Rule enable/disable is handled by the registry before evaluation;
// this only remaps severities, so a finding never silently disappears here.
// Synthetic internal-error violations are never remapped: a tooling failure
// must stay an ERROR regardless of policy.
func ApplyOverrides(violations []models.Violation, cfg *Config) []models.Violation {
	if cfg == nil || len(cfg.Rules) == 0 {
		return violations
	}
	result := make([]models.Violation, len(violations))
	for i, v := range violations {
		if !v.Internal {
			if rc, ok := cfg.Rules[v.RuleID]; ok && rc.Severity != "" {
				v.Severity = models.Severity(strings.ToUpper(rc.Severity))
			}
		}
		result[i] = v
	}
	return result
}

// ShouldFail reports whether any verdict carries a violation at or above the
// configured fail_on_severity threshold. With a nil config or an empty
// threshold the ERROR default applies, matching Verdict.Passed semantics.
func ShouldFail(verdicts []models.Verdict, cfg *Config) bool {
	threshold := models.SeverityRank[models.SeverityError]
	if cfg != nil && cfg.Enforcement.FailOnSeverity != "" {
		sev := models.Severity(strings.ToUpper(cfg.Enforcement.FailOnSeverity))
		if r, ok := models.SeverityRank[sev]; ok {
			threshold = r
		}
	}
	for _, verdict := range verdicts {
		for _, v := range verdict.Violations {
			if models.SeverityRank[v.Severity] >= threshold {
				return true
			}
		}
	}
	return false
}
