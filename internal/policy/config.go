package policy

import (
	"fmt"
	"regexp"
)

// Config is the evaluation configuration injected into the rule registry and
// evaluator at construction time. Nothing in the engine reads ambient state;
// the same process can run concurrent batches with different Configs.
type Config struct {
	Version int `yaml:"version"`

	// AllowedRegistries lists registry hosts images may be pulled from.
	// An external allow-list checker, when configured, overrides this set.
	AllowedRegistries []string `yaml:"allowed_registries"`

	// RestrictedNamespaces lists namespaces where images must be pinned
	// by digest (production-like environments).
	RestrictedNamespaces []string `yaml:"restricted_namespaces"`

	// RequiredLabels lists label keys every workload must carry.
	RequiredLabels []string `yaml:"required_labels"`

	// NamePattern is the regex workload names must match.
	NamePattern string `yaml:"name_pattern"`

	// FloatingTagPattern is a regex matching tags that are considered
	// floating beyond the fixed {latest, stable, main, master} set.
	FloatingTagPattern string `yaml:"floating_tag_pattern"`

	// LogShipperPattern is the regex a sidecar container name must match
	// for the log-shipper rule to be satisfied.
	LogShipperPattern string `yaml:"log_shipper_pattern"`

	// RequestLimitRatio is the recommended band for requests as a fraction
	// of limits. Outside the band is advisory (WARNING), never blocking.
	RequestLimitRatio RatioBand `yaml:"request_limit_ratio"`

	// ProbeBounds maps probe type ("liveness", "readiness", "startup") to
	// the recommended timing bounds for that probe.
	ProbeBounds map[string]TimingBounds `yaml:"probe_bounds"`

	// CheckerTimeoutSeconds bounds every external checker call.
	// Zero means the default of 10 seconds.
	CheckerTimeoutSeconds int `yaml:"checker_timeout_seconds"`

	// Concurrency bounds the batch worker pool. Zero means the default of 4.
	Concurrency int `yaml:"concurrency"`

	// Rules holds per-rule enable/disable and severity overrides.
	Rules map[string]RuleConfig `yaml:"rules"`

	// Enforcement controls the severity threshold that fails the run.
	Enforcement EnforcementConfig `yaml:"enforcement"`

	// Compiled pattern cache, populated by CompilePatterns.
	nameRe     *regexp.Regexp
	floatingRe *regexp.Regexp
	shipperRe  *regexp.Regexp
}

// CompilePatterns compiles the regex fields and caches the results so rules
// never compile per evaluation. Load and Default call it; a Config built by
// hand may skip it, in which case the accessors compile on demand and still
// surface an invalid pattern as an error.
func (c *Config) CompilePatterns() error {
	var err error
	if c.nameRe, err = c.NameRegexp(); err != nil {
		return err
	}
	if c.floatingRe, err = c.FloatingTagRegexp(); err != nil {
		return err
	}
	c.shipperRe, err = c.LogShipperRegexp()
	return err
}

// NameRegexp returns the compiled name_pattern; nil when no pattern is set.
func (c *Config) NameRegexp() (*regexp.Regexp, error) {
	return compiledPattern("name_pattern", c.NamePattern, c.nameRe)
}

// FloatingTagRegexp returns the compiled floating_tag_pattern; nil when no
// pattern is set.
func (c *Config) FloatingTagRegexp() (*regexp.Regexp, error) {
	return compiledPattern("floating_tag_pattern", c.FloatingTagPattern, c.floatingRe)
}

// LogShipperRegexp returns the compiled log_shipper_pattern; nil when no
// pattern is set.
func (c *Config) LogShipperRegexp() (*regexp.Regexp, error) {
	return compiledPattern("log_shipper_pattern", c.LogShipperPattern, c.shipperRe)
}

// compiledPattern reuses the cached regexp only while its source still equals
// the pattern string, so mutating a pattern field after CompilePatterns never
// serves a stale match.
func compiledPattern(field, pattern string, cached *regexp.Regexp) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	if cached != nil && cached.String() == pattern {
		return cached, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid regex %q: %w", field, pattern, err)
	}
	return re, nil
}

// RuleConfig overrides a single rule's behaviour.
type RuleConfig struct {
	// Enabled disables the rule when set to false. Nil means enabled.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Severity overrides the severity of every violation the rule emits.
	Severity string `yaml:"severity,omitempty"`
}

// RatioBand is an inclusive [Min, Max] fraction band.
type RatioBand struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// TimingBounds holds the recommended probe timing ranges. Zero-valued maxima
// mean unbounded.
type TimingBounds struct {
	MinInitialDelaySeconds int32 `yaml:"min_initial_delay_seconds"`
	MaxInitialDelaySeconds int32 `yaml:"max_initial_delay_seconds"`
	MinPeriodSeconds       int32 `yaml:"min_period_seconds"`
	MaxPeriodSeconds       int32 `yaml:"max_period_seconds"`
	MinTimeoutSeconds      int32 `yaml:"min_timeout_seconds"`
	MaxTimeoutSeconds      int32 `yaml:"max_timeout_seconds"`
	MinFailureThreshold    int32 `yaml:"min_failure_threshold"`
	MaxFailureThreshold    int32 `yaml:"max_failure_threshold"`
}

// EnforcementConfig controls process exit gating. FailOnSeverity defaults to
// ERROR; setting it to WARNING makes advisory findings blocking.
type EnforcementConfig struct {
	FailOnSeverity string `yaml:"fail_on_severity,omitempty"`
}

// IsRestrictedNamespace reports whether ns is in the restricted set.
// Safe to call on a nil Config (returns false).
func (c *Config) IsRestrictedNamespace(ns string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.RestrictedNamespaces {
		if r == ns {
			return true
		}
	}
	return false
}

// IsAllowedRegistry reports whether host appears in the static allow-list.
func (c *Config) IsAllowedRegistry(host string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.AllowedRegistries {
		if r == host {
			return true
		}
	}
	return false
}

// RuleEnabled reports whether the rule with the given ID is enabled.
// Rules without an explicit config entry are enabled.
func (c *Config) RuleEnabled(id string) bool {
	if c == nil {
		return true
	}
	rc, ok := c.Rules[id]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}
