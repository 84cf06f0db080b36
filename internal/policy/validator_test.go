package policy

import (
	"strings"
	"testing"
)

var knownRuleIDs = []string{
	"IMG_FLOATING_TAG",
	"IMG_REGISTRY_NOT_ALLOWED",
	"RES_LIMITS_MISSING",
}

// errorsMentioning counts validation errors whose text contains substr.
func errorsMentioning(errs []error, substr string) int {
	n := 0
	for _, e := range errs {
		if strings.Contains(e.Error(), substr) {
			n++
		}
	}
	return n
}

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	if errs := Validate(Default(), knownRuleIDs); len(errs) != 0 {
		t.Errorf("default config should validate; got %v", errs)
	}
}

func TestValidate_RejectsInvalidRegex(t *testing.T) {
	cfg := Default()
	cfg.NamePattern = "[unclosed"
	errs := Validate(cfg, knownRuleIDs)
	if errorsMentioning(errs, "name_pattern") != 1 {
		t.Errorf("expected one name_pattern error; got %v", errs)
	}
}

func TestValidate_RejectsInvalidRatioBand(t *testing.T) {
	tests := []struct {
		name string
		band RatioBand
	}{
		{"zero min", RatioBand{Min: 0, Max: 0.8}},
		{"max below min", RatioBand{Min: 0.8, Max: 0.4}},
		{"max above one", RatioBand{Min: 0.4, Max: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.RequestLimitRatio = tt.band
			if errs := Validate(cfg, knownRuleIDs); errorsMentioning(errs, "request_limit_ratio") != 1 {
				t.Errorf("expected a ratio band error; got %v", errs)
			}
		})
	}
}

func TestValidate_RejectsUnknownProbeType(t *testing.T) {
	cfg := Default()
	cfg.ProbeBounds["lifeness"] = TimingBounds{}
	if errs := Validate(cfg, knownRuleIDs); errorsMentioning(errs, "probe_bounds.lifeness") != 1 {
		t.Errorf("expected unknown probe type error; got %v", errs)
	}
}

func TestValidate_RejectsInvertedProbeBand(t *testing.T) {
	cfg := Default()
	bounds := cfg.ProbeBounds["liveness"]
	bounds.MinPeriodSeconds = 60
	bounds.MaxPeriodSeconds = 10
	cfg.ProbeBounds["liveness"] = bounds
	if errs := Validate(cfg, knownRuleIDs); errorsMentioning(errs, "period_seconds band [60, 10] is inverted") != 1 {
		t.Errorf("expected inverted band error; got %v", errs)
	}
}

func TestValidate_ZeroMaxMeansUnbounded(t *testing.T) {
	cfg := Default()
	bounds := cfg.ProbeBounds["liveness"]
	bounds.MaxInitialDelaySeconds = 0
	cfg.ProbeBounds["liveness"] = bounds
	if errs := Validate(cfg, knownRuleIDs); len(errs) != 0 {
		t.Errorf("expected no errors for an unbounded maximum; got %v", errs)
	}
}

func TestValidate_RejectsUnknownRuleID(t *testing.T) {
	cfg := Default()
	cfg.Rules = map[string]RuleConfig{"IMG_TYPO": {}}
	if errs := Validate(cfg, knownRuleIDs); errorsMentioning(errs, "unknown rule ID") != 1 {
		t.Errorf("expected unknown rule ID error; got %v", errs)
	}
}

func TestValidate_RejectsInvalidSeverityOverride(t *testing.T) {
	cfg := Default()
	cfg.Rules = map[string]RuleConfig{"IMG_FLOATING_TAG": {Severity: "FATAL"}}
	if errs := Validate(cfg, knownRuleIDs); errorsMentioning(errs, "severity") != 1 {
		t.Errorf("expected severity error; got %v", errs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Version = 3
	cfg.NamePattern = "[bad"
	cfg.RequestLimitRatio = RatioBand{Min: 2, Max: 1}
	cfg.Enforcement.FailOnSeverity = "SEVERE"

	errs := Validate(cfg, knownRuleIDs)
	if len(errs) != 4 {
		t.Errorf("expected 4 errors; got %d: %v", len(errs), errs)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	if errs := Validate(nil, knownRuleIDs); len(errs) != 1 {
		t.Errorf("expected exactly 1 error for nil config; got %v", errs)
	}
}
