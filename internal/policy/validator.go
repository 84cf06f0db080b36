package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kubegate-io/kubegate/internal/models"
)

// validProbeTypes is the set of recognised probe_bounds keys.
var validProbeTypes = map[string]struct{}{
	"liveness":  {},
	"readiness": {},
	"startup":   {},
}

// Validate checks cfg for semantic correctness and returns all validation
// errors found. An empty slice means the config is valid. Validation failures
// are fatal at startup: an invalid config must never reach the evaluator.
//
// Checks performed:
//   - version must be 1
//   - name_pattern, floating_tag_pattern, and log_shipper_pattern must compile
//   - request_limit_ratio must satisfy 0 < min <= max <= 1
//   - probe_bounds keys must be liveness, readiness, or startup, and every
//     min/max pair within an entry must be ordered (zero max means unbounded)
//   - rule IDs must appear in availableRuleIDs
//   - rule severity overrides must be valid severity values if set
//   - enforcement fail_on_severity must be a valid severity value if set
//
// All errors are collected before returning; Validate never stops at the
// first error.
func Validate(cfg *Config, availableRuleIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	knownIDs := make(map[string]struct{}, len(availableRuleIDs))
	for _, id := range availableRuleIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	for field, pattern := range map[string]string{
		"name_pattern":         cfg.NamePattern,
		"floating_tag_pattern": cfg.FloatingTagPattern,
		"log_shipper_pattern":  cfg.LogShipperPattern,
	} {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid regex %q: %v", field, pattern, err))
		}
	}

	band := cfg.RequestLimitRatio
	if band.Min <= 0 || band.Max < band.Min || band.Max > 1 {
		errs = append(errs, fmt.Errorf("request_limit_ratio: invalid band [%v, %v]; need 0 < min <= max <= 1", band.Min, band.Max))
	}

	for probeType, bounds := range cfg.ProbeBounds {
		if _, ok := validProbeTypes[probeType]; !ok {
			errs = append(errs, fmt.Errorf("probe_bounds.%s: unknown probe type; valid values: liveness, readiness, startup", probeType))
		}
		for _, b := range []struct {
			field    string
			min, max int32
		}{
			{"initial_delay_seconds", bounds.MinInitialDelaySeconds, bounds.MaxInitialDelaySeconds},
			{"period_seconds", bounds.MinPeriodSeconds, bounds.MaxPeriodSeconds},
			{"timeout_seconds", bounds.MinTimeoutSeconds, bounds.MaxTimeoutSeconds},
			{"failure_threshold", bounds.MinFailureThreshold, bounds.MaxFailureThreshold},
		} {
			// A zero maximum means unbounded.
			if b.max != 0 && b.max < b.min {
				errs = append(errs, fmt.Errorf("probe_bounds.%s: %s band [%d, %d] is inverted", probeType, b.field, b.min, b.max))
			}
		}
	}

	for ruleID, rcfg := range cfg.Rules {
		if _, ok := knownIDs[ruleID]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule ID", ruleID))
		}
		if rcfg.Severity != "" {
			upper := models.Severity(strings.ToUpper(rcfg.Severity))
			if !models.ValidSeverity(upper) {
				errs = append(errs, fmt.Errorf("rules.%s.severity: invalid value %q; valid values: ERROR, WARNING, INFO", ruleID, rcfg.Severity))
			}
		}
	}

	if cfg.Enforcement.FailOnSeverity != "" {
		upper := models.Severity(strings.ToUpper(cfg.Enforcement.FailOnSeverity))
		if !models.ValidSeverity(upper) {
			errs = append(errs, fmt.Errorf("enforcement.fail_on_severity: invalid value %q; valid values: ERROR, WARNING, INFO", cfg.Enforcement.FailOnSeverity))
		}
	}

	return errs
}
