package rules

import (
	"fmt"
	"strings"

	"github.com/kubegate-io/kubegate/internal/models"
)

// ── META_REQUIRED_LABELS ─────────────────────────────────────────────────────

// RequiredLabelsRule fires once per missing key among the configured
// required-label set. Keys are checked in configuration order so the
// violation sequence is deterministic.
type RequiredLabelsRule struct {
	appliesToAll
}

func (r RequiredLabelsRule) ID() string   { return "META_REQUIRED_LABELS" }
func (r RequiredLabelsRule) Name() string { return "Required Labels Present" }

func (r RequiredLabelsRule) Evaluate(ctx RuleContext) []models.Violation {
	required := ctx.Config().RequiredLabels

	var violations []models.Violation
	for _, key := range required {
		if _, ok := ctx.Manifest.Labels[key]; ok {
			continue
		}
		violations = append(violations, models.Violation{
			RuleID:       r.ID(),
			Severity:     models.SeverityError,
			ResourcePath: fmt.Sprintf("metadata.labels.%s", key),
			Message:      fmt.Sprintf("required label %q is missing", key),
			Remediation:  fmt.Sprintf("Add the %q label; required labels drive ownership lookup, cost attribution, and alert routing.", key),
		})
	}
	return violations
}

// ── META_NAME_PATTERN ────────────────────────────────────────────────────────

// NamePatternRule fires when the resource name does not match the configured
// naming convention (by default three or more lowercase alphanumeric
// segments: team-app-env).
type NamePatternRule struct {
	appliesToAll
}

func (r NamePatternRule) ID() string   { return "META_NAME_PATTERN" }
func (r NamePatternRule) Name() string { return "Resource Name Matches Naming Convention" }

func (r NamePatternRule) Evaluate(ctx RuleContext) []models.Violation {
	pattern, err := ctx.Config().NameRegexp()
	if err != nil {
		return []models.Violation{invalidPatternViolation(r.ID(), err)}
	}
	if pattern == nil {
		return nil
	}

	name := ctx.Manifest.Name
	if pattern.MatchString(name) {
		return nil
	}

	return []models.Violation{{
		RuleID:       r.ID(),
		Severity:     models.SeverityError,
		ResourcePath: "metadata.name",
		Message:      fmt.Sprintf("name %q does not match the required pattern %q", name, pattern.String()),
		Remediation:  "Name workloads as <team>-<app>-<env> using lowercase alphanumerics and hyphens.",
	}}
}

// ── OBS_PROMETHEUS_ANNOTATIONS ───────────────────────────────────────────────

// prometheusAnnotations are the scrape-discovery annotations every workload
// must carry, in reporting order.
var prometheusAnnotations = []string{
	"prometheus.io/scrape",
	"prometheus.io/port",
}

// PrometheusAnnotationsRule fires once per missing Prometheus scrape
// annotation. A workload Prometheus cannot discover is invisible to alerting.
type PrometheusAnnotationsRule struct {
	appliesToAll
}

func (r PrometheusAnnotationsRule) ID() string   { return "OBS_PROMETHEUS_ANNOTATIONS" }
func (r PrometheusAnnotationsRule) Name() string { return "Prometheus Scrape Annotations Present" }

func (r PrometheusAnnotationsRule) Evaluate(ctx RuleContext) []models.Violation {
	var violations []models.Violation
	for _, key := range prometheusAnnotations {
		if _, ok := ctx.Manifest.Annotations[key]; ok {
			continue
		}
		violations = append(violations, models.Violation{
			RuleID:       r.ID(),
			Severity:     models.SeverityError,
			ResourcePath: fmt.Sprintf("metadata.annotations.%s", key),
			Message:      fmt.Sprintf("annotation %q is missing", key),
			Remediation:  "Annotate the workload with prometheus.io/scrape and prometheus.io/port so metrics are scraped.",
		})
	}
	return violations
}

// ── OBS_LOG_SHIPPER_SIDECAR ──────────────────────────────────────────────────

// LogShipperSidecarRule fires when no regular container's name matches the
// configured log-shipper pattern. Init containers do not count: a shipper
// that exits before the workload starts ships nothing.
type LogShipperSidecarRule struct {
	appliesToAll
}

func (r LogShipperSidecarRule) ID() string   { return "OBS_LOG_SHIPPER_SIDECAR" }
func (r LogShipperSidecarRule) Name() string { return "Log Shipper Sidecar Present" }

func (r LogShipperSidecarRule) Evaluate(ctx RuleContext) []models.Violation {
	pattern, err := ctx.Config().LogShipperRegexp()
	if err != nil {
		return []models.Violation{invalidPatternViolation(r.ID(), err)}
	}
	if pattern == nil {
		return nil
	}

	var names []string
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		if c.Init {
			continue
		}
		if pattern.MatchString(c.Name) {
			return nil
		}
		names = append(names, c.Name)
	}

	return []models.Violation{{
		RuleID:       r.ID(),
		Severity:     models.SeverityError,
		ResourcePath: "spec.containers",
		Message: fmt.Sprintf(
			"no log shipper sidecar found among containers [%s] (pattern %q)",
			strings.Join(names, ", "), pattern.String(),
		),
		Remediation: "Add the standard log shipper sidecar so container logs reach the central aggregation pipeline.",
	}}
}
