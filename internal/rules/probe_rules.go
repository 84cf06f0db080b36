package rules

import (
	"fmt"

	"github.com/kubegate-io/kubegate/internal/models"
	"github.com/kubegate-io/kubegate/internal/policy"
)

// ── PROBE_MISSING ────────────────────────────────────────────────────────────

// ProbesPresentRule fires once per missing liveness or readiness probe, per
// regular container. Init containers are exempt: they run to completion and
// Kubernetes rejects probes on them.
type ProbesPresentRule struct {
	appliesToAll
}

func (r ProbesPresentRule) ID() string   { return "PROBE_MISSING" }
func (r ProbesPresentRule) Name() string { return "Liveness and Readiness Probes Required" }

func (r ProbesPresentRule) Evaluate(ctx RuleContext) []models.Violation {
	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		if c.Init {
			continue
		}

		if c.LivenessProbe == nil {
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityError,
				ResourcePath: c.FieldPath + ".livenessProbe",
				Message:      fmt.Sprintf("container %q has no livenessProbe", c.Name),
				Remediation:  "Add a livenessProbe so the kubelet restarts the container when it deadlocks.",
			})
		}
		if c.ReadinessProbe == nil {
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityError,
				ResourcePath: c.FieldPath + ".readinessProbe",
				Message:      fmt.Sprintf("container %q has no readinessProbe", c.Name),
				Remediation:  "Add a readinessProbe so traffic is withheld until the container can serve it.",
			})
		}
	}
	return violations
}

// ── PROBE_TIMING_BOUNDS ──────────────────────────────────────────────────────

// ProbeTimingRule checks declared probe timings against the configured
// recommended bounds per probe type. Deviations are advisory (WARNING);
// probes that are present but mistuned still protect the workload, just
// less well.
type ProbeTimingRule struct {
	appliesToAll
}

func (r ProbeTimingRule) ID() string   { return "PROBE_TIMING_BOUNDS" }
func (r ProbeTimingRule) Name() string { return "Probe Timing Within Recommended Bounds" }

func (r ProbeTimingRule) Evaluate(ctx RuleContext) []models.Violation {
	bounds := ctx.Config().ProbeBounds

	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		if c.Init {
			continue
		}

		probes := []struct {
			probeType string
			probe     *models.Probe
		}{
			{"liveness", c.LivenessProbe},
			{"readiness", c.ReadinessProbe},
			{"startup", c.StartupProbe},
		}

		for _, p := range probes {
			if p.probe == nil {
				continue
			}
			b, ok := bounds[p.probeType]
			if !ok {
				continue
			}
			violations = append(violations, checkProbeTiming(r.ID(), c, p.probeType, p.probe, b)...)
		}
	}
	return violations
}

// checkProbeTiming compares one probe's declared timings to its bounds and
// returns a violation per out-of-bounds field, in field order.
func checkProbeTiming(ruleID string, c *models.ContainerSpec, probeType string, probe *models.Probe, b policy.TimingBounds) []models.Violation {
	path := fmt.Sprintf("%s.%sProbe", c.FieldPath, probeType)

	fields := []struct {
		name  string
		value int32
		min   int32
		max   int32
	}{
		{"initialDelaySeconds", probe.InitialDelaySeconds, b.MinInitialDelaySeconds, b.MaxInitialDelaySeconds},
		{"periodSeconds", probe.PeriodSeconds, b.MinPeriodSeconds, b.MaxPeriodSeconds},
		{"timeoutSeconds", probe.TimeoutSeconds, b.MinTimeoutSeconds, b.MaxTimeoutSeconds},
		{"failureThreshold", probe.FailureThreshold, b.MinFailureThreshold, b.MaxFailureThreshold},
	}

	var violations []models.Violation
	for _, f := range fields {
		if f.value >= f.min && (f.max == 0 || f.value <= f.max) {
			continue
		}
		violations = append(violations, models.Violation{
			RuleID:       ruleID,
			Severity:     models.SeverityWarning,
			ResourcePath: fmt.Sprintf("%s.%s", path, f.name),
			Message: fmt.Sprintf(
				"container %q %s probe %s is %d; recommended range is %d-%d",
				c.Name, probeType, f.name, f.value, f.min, f.max,
			),
			Remediation: "Tune probe timing to the workload's startup and response characteristics; too-tight values cause restart storms, too-loose values delay recovery.",
		})
	}
	return violations
}
