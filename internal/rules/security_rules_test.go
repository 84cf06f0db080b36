package rules

import (
	"testing"

	"github.com/kubegate-io/kubegate/internal/models"
)

// compliantSecurityContext returns a context satisfying the full baseline.
func compliantSecurityContext() *models.SecurityContext {
	return &models.SecurityContext{
		RunAsNonRoot:           boolPtr(true),
		SeccompProfileType:     "RuntimeDefault",
		ReadOnlyRootFilesystem: boolPtr(true),
		CapabilitiesDrop:       []string{"ALL"},
	}
}

// ── SEC_CONTEXT_BASELINE ─────────────────────────────────────────────────────

func TestSecurityBaseline_Fires_OncePerFailedCheck(t *testing.T) {
	// No security context at all: all four checks fail independently.
	m := workloadManifest("pe-eng-app-dev", "dev",
		appContainer("app", "registry.bank.internal/petclinic:1.4.2"))
	violations := SecurityContextBaselineRule{}.Evaluate(ruleCtx(m))
	if len(violations) != 4 {
		t.Fatalf("expected 4 violations; got %d", len(violations))
	}
	wantPaths := []string{
		"spec.template.spec.containers[0].securityContext.runAsNonRoot",
		"spec.template.spec.containers[0].securityContext.seccompProfile.type",
		"spec.template.spec.containers[0].securityContext.readOnlyRootFilesystem",
		"spec.template.spec.containers[0].securityContext.capabilities.drop",
	}
	for i, want := range wantPaths {
		if violations[i].ResourcePath != want {
			t.Errorf("violations[%d].ResourcePath = %q; want %q", i, violations[i].ResourcePath, want)
		}
	}
}

func TestSecurityBaseline_Fires_WhenSeccompNotRuntimeDefault(t *testing.T) {
	c := appContainer("app", "registry.bank.internal/petclinic:1.4.2")
	sc := compliantSecurityContext()
	sc.SeccompProfileType = "Unconfined"
	c.SecurityContext = sc
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	violations := SecurityContextBaselineRule{}.Evaluate(ruleCtx(m))
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation; got %d", len(violations))
	}
	if violations[0].ResourcePath != "spec.template.spec.containers[0].securityContext.seccompProfile.type" {
		t.Errorf("ResourcePath = %q", violations[0].ResourcePath)
	}
}

func TestSecurityBaseline_Fires_WhenDropListIncomplete(t *testing.T) {
	c := appContainer("app", "registry.bank.internal/petclinic:1.4.2")
	sc := compliantSecurityContext()
	sc.CapabilitiesDrop = []string{"NET_RAW", "SYS_ADMIN"}
	c.SecurityContext = sc
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	violations := SecurityContextBaselineRule{}.Evaluate(ruleCtx(m))
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation; got %d", len(violations))
	}
	if violations[0].ResourcePath != "spec.template.spec.containers[0].securityContext.capabilities.drop" {
		t.Errorf("ResourcePath = %q", violations[0].ResourcePath)
	}
}

func TestSecurityBaseline_Silent_WhenFullyCompliant(t *testing.T) {
	c := appContainer("app", "registry.bank.internal/petclinic:1.4.2")
	c.SecurityContext = compliantSecurityContext()
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	if got := (SecurityContextBaselineRule{}).Evaluate(ruleCtx(m)); len(got) != 0 {
		t.Errorf("expected 0 violations; got %d: %v", len(got), got)
	}
}

func TestSecurityBaseline_DropAllCaseInsensitive(t *testing.T) {
	c := appContainer("app", "registry.bank.internal/petclinic:1.4.2")
	sc := compliantSecurityContext()
	sc.CapabilitiesDrop = []string{"all"}
	c.SecurityContext = sc
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	if got := (SecurityContextBaselineRule{}).Evaluate(ruleCtx(m)); len(got) != 0 {
		t.Errorf("expected 0 violations for drop [all]; got %d", len(got))
	}
}

// ── SEC_ADDED_CAPABILITIES ───────────────────────────────────────────────────

func TestAddedCapabilities_ReportsInfo_WhenCapabilitiesAdded(t *testing.T) {
	c := appContainer("app", "registry.bank.internal/petclinic:1.4.2")
	sc := compliantSecurityContext()
	sc.CapabilitiesAdd = []string{"NET_BIND_SERVICE"}
	c.SecurityContext = sc
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	violations := AddedCapabilitiesRule{}.Evaluate(ruleCtx(m))
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation; got %d", len(violations))
	}
	if violations[0].Severity != models.SeverityInfo {
		t.Errorf("Severity = %q; want INFO", violations[0].Severity)
	}
}

func TestAddedCapabilities_Silent_WhenNoneAdded(t *testing.T) {
	c := appContainer("app", "registry.bank.internal/petclinic:1.4.2")
	c.SecurityContext = compliantSecurityContext()
	m := workloadManifest("pe-eng-app-dev", "dev", c)

	if got := (AddedCapabilitiesRule{}).Evaluate(ruleCtx(m)); len(got) != 0 {
		t.Errorf("expected 0 violations; got %d", len(got))
	}
}
