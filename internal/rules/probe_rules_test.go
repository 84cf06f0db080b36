package rules

import (
	"testing"

	"github.com/kubegate-io/kubegate/internal/models"
)

// compliantLivenessProbe returns a liveness probe inside the default bounds.
func compliantLivenessProbe() *models.Probe {
	return &models.Probe{
		Path:                "/actuator/health/liveness",
		Port:                8080,
		InitialDelaySeconds: 30,
		PeriodSeconds:       15,
		TimeoutSeconds:      3,
		FailureThreshold:    3,
	}
}

// compliantReadinessProbe returns a readiness probe inside the default bounds.
func compliantReadinessProbe() *models.Probe {
	return &models.Probe{
		Path:                "/actuator/health/readiness",
		Port:                8080,
		InitialDelaySeconds: 10,
		PeriodSeconds:       10,
		TimeoutSeconds:      3,
		FailureThreshold:    3,
	}
}

// probedContainer returns a container carrying both compliant probes.
func probedContainer(name string) models.ContainerSpec {
	c := appContainer(name, "registry.bank.internal/petclinic:1.4.2")
	c.LivenessProbe = compliantLivenessProbe()
	c.ReadinessProbe = compliantReadinessProbe()
	return c
}

// ── PROBE_MISSING ────────────────────────────────────────────────────────────

func TestProbesPresent_Fires_OncePerMissingProbe(t *testing.T) {
	m := workloadManifest("pe-eng-app-dev", "dev",
		appContainer("app", "registry.bank.internal/petclinic:1.4.2"))
	violations := ProbesPresentRule{}.Evaluate(ruleCtx(m))
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations; got %d", len(violations))
	}
	if violations[0].ResourcePath != "spec.template.spec.containers[0].livenessProbe" {
		t.Errorf("violations[0].ResourcePath = %q", violations[0].ResourcePath)
	}
	if violations[1].ResourcePath != "spec.template.spec.containers[0].readinessProbe" {
		t.Errorf("violations[1].ResourcePath = %q", violations[1].ResourcePath)
	}
	for _, v := range violations {
		if v.Severity != models.SeverityError {
			t.Errorf("Severity = %q; want ERROR", v.Severity)
		}
	}
}

func TestProbesPresent_InitContainersExempt(t *testing.T) {
	init := models.ContainerSpec{
		Name:      "db-migrate",
		Image:     "registry.bank.internal/migrate:2.0.0",
		Init:      true,
		FieldPath: "spec.template.spec.initContainers[0]",
	}
	m := workloadManifest("pe-eng-app-dev", "dev", init)
	if got := (ProbesPresentRule{}).Evaluate(ruleCtx(m)); len(got) != 0 {
		t.Errorf("expected 0 violations for an init container; got %d", len(got))
	}
}

func TestProbesPresent_Silent_WhenBothDeclared(t *testing.T) {
	m := workloadManifest("pe-eng-app-dev", "dev", probedContainer("app"))
	if got := (ProbesPresentRule{}).Evaluate(ruleCtx(m)); len(got) != 0 {
		t.Errorf("expected 0 violations; got %d", len(got))
	}
}

// ── PROBE_TIMING_BOUNDS ──────────────────────────────────────────────────────

func TestProbeTiming_Warns_PerOutOfBoundsField(t *testing.T) {
	c := probedContainer("app")
	// Default liveness bounds: initialDelay 5-120, period 10-60.
	c.LivenessProbe.InitialDelaySeconds = 2
	c.LivenessProbe.PeriodSeconds = 300
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	violations := ProbeTimingRule{}.Evaluate(ruleCtx(m))
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations; got %d: %v", len(violations), violations)
	}
	if violations[0].ResourcePath != "spec.template.spec.containers[0].livenessProbe.initialDelaySeconds" {
		t.Errorf("violations[0].ResourcePath = %q", violations[0].ResourcePath)
	}
	if violations[1].ResourcePath != "spec.template.spec.containers[0].livenessProbe.periodSeconds" {
		t.Errorf("violations[1].ResourcePath = %q", violations[1].ResourcePath)
	}
	for _, v := range violations {
		if v.Severity != models.SeverityWarning {
			t.Errorf("Severity = %q; want WARNING", v.Severity)
		}
	}
}

func TestProbeTiming_Silent_WhenAllFieldsInBounds(t *testing.T) {
	m := workloadManifest("pe-eng-app-dev", "dev", probedContainer("app"))
	if got := (ProbeTimingRule{}).Evaluate(ruleCtx(m)); len(got) != 0 {
		t.Errorf("expected 0 violations; got %d: %v", len(got), got)
	}
}

func TestProbeTiming_Silent_WhenProbeAbsent(t *testing.T) {
	// A missing probe is PROBE_MISSING's concern; timing stays quiet.
	m := workloadManifest("pe-eng-app-dev", "dev",
		appContainer("app", "registry.bank.internal/petclinic:1.4.2"))
	if got := (ProbeTimingRule{}).Evaluate(ruleCtx(m)); len(got) != 0 {
		t.Errorf("expected 0 violations; got %d", len(got))
	}
}

func TestProbeTiming_AppliesPerProbeTypeBounds(t *testing.T) {
	c := probedContainer("app")
	// 8s initial delay is valid for readiness (2-60) but the same value on
	// liveness is also valid (5-120); push readiness below its own floor.
	c.ReadinessProbe.InitialDelaySeconds = 1
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	violations := ProbeTimingRule{}.Evaluate(ruleCtx(m))
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation; got %d", len(violations))
	}
	if violations[0].ResourcePath != "spec.template.spec.containers[0].readinessProbe.initialDelaySeconds" {
		t.Errorf("ResourcePath = %q", violations[0].ResourcePath)
	}
}
