package rules

import (
	"fmt"
	"strings"

	"github.com/kubegate-io/kubegate/internal/models"
)

// ── SEC_CONTEXT_BASELINE ─────────────────────────────────────────────────────

// SecurityContextBaselineRule enforces the restricted-profile baseline on
// each container's effective security context: runAsNonRoot must be true,
// the seccomp profile must be RuntimeDefault, the root filesystem must be
// read-only, and every capability must be dropped (drop == {ALL}).
// Each failed check is its own violation so remediation stays targeted.
type SecurityContextBaselineRule struct {
	appliesToAll
}

func (r SecurityContextBaselineRule) ID() string   { return "SEC_CONTEXT_BASELINE" }
func (r SecurityContextBaselineRule) Name() string { return "Container Security Context Baseline" }

func (r SecurityContextBaselineRule) Evaluate(ctx RuleContext) []models.Violation {
	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		sc := c.SecurityContext
		path := c.FieldPath + ".securityContext"

		if sc == nil || sc.RunAsNonRoot == nil || !*sc.RunAsNonRoot {
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityError,
				ResourcePath: path + ".runAsNonRoot",
				Message:      fmt.Sprintf("container %q does not enforce runAsNonRoot: true", c.Name),
				Remediation:  "Set runAsNonRoot: true so the kubelet refuses to start the container as root.",
			})
		}

		if sc == nil || sc.SeccompProfileType != "RuntimeDefault" {
			current := "unset"
			if sc != nil && sc.SeccompProfileType != "" {
				current = sc.SeccompProfileType
			}
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityError,
				ResourcePath: path + ".seccompProfile.type",
				Message:      fmt.Sprintf("container %q seccomp profile is %s; RuntimeDefault is required", c.Name, current),
				Remediation:  "Set seccompProfile.type: RuntimeDefault to apply the runtime's syscall filter.",
			})
		}

		if sc == nil || sc.ReadOnlyRootFilesystem == nil || !*sc.ReadOnlyRootFilesystem {
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityError,
				ResourcePath: path + ".readOnlyRootFilesystem",
				Message:      fmt.Sprintf("container %q does not mount its root filesystem read-only", c.Name),
				Remediation:  "Set readOnlyRootFilesystem: true and mount writable emptyDir volumes where the process needs scratch space.",
			})
		}

		if sc == nil || !dropsAllCapabilities(sc.CapabilitiesDrop) {
			current := "none"
			if sc != nil && len(sc.CapabilitiesDrop) > 0 {
				current = strings.Join(sc.CapabilitiesDrop, ", ")
			}
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityError,
				ResourcePath: path + ".capabilities.drop",
				Message:      fmt.Sprintf("container %q drops capabilities [%s]; must drop ALL", c.Name, current),
				Remediation:  "Set capabilities.drop: [ALL]; re-add individual capabilities explicitly if the workload needs them.",
			})
		}
	}
	return violations
}

// dropsAllCapabilities reports whether the drop list is exactly {"ALL"}.
func dropsAllCapabilities(drop []string) bool {
	return len(drop) == 1 && strings.EqualFold(drop[0], "ALL")
}

// ── SEC_ADDED_CAPABILITIES ───────────────────────────────────────────────────

// AddedCapabilitiesRule flags containers that re-add capabilities on top of
// drop: ALL. Additions are permitted under the baseline but surfaced as INFO
// so reviewers see the widened surface.
type AddedCapabilitiesRule struct {
	appliesToAll
}

func (r AddedCapabilitiesRule) ID() string   { return "SEC_ADDED_CAPABILITIES" }
func (r AddedCapabilitiesRule) Name() string { return "Container Re-Adds Linux Capabilities" }

func (r AddedCapabilitiesRule) Evaluate(ctx RuleContext) []models.Violation {
	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		sc := c.SecurityContext
		if sc == nil || len(sc.CapabilitiesAdd) == 0 {
			continue
		}
		violations = append(violations, models.Violation{
			RuleID:       r.ID(),
			Severity:     models.SeverityInfo,
			ResourcePath: c.FieldPath + ".securityContext.capabilities.add",
			Message: fmt.Sprintf(
				"container %q adds capabilities [%s]",
				c.Name, strings.Join(sc.CapabilitiesAdd, ", "),
			),
			Remediation: "Confirm each added capability is required; prefer NET_BIND_SERVICE over broad grants.",
		})
	}
	return violations
}
