package rules

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/kubegate-io/kubegate/internal/models"
)

// ── RES_LIMITS_MISSING ───────────────────────────────────────────────────────

// ResourcesPresentRule fires once per missing field among requests.cpu,
// requests.memory, limits.cpu, and limits.memory, per container. Absence of
// the whole resources block therefore produces four violations.
type ResourcesPresentRule struct {
	appliesToAll
}

func (r ResourcesPresentRule) ID() string   { return "RES_LIMITS_MISSING" }
func (r ResourcesPresentRule) Name() string { return "Resource Requests and Limits Required" }

func (r ResourcesPresentRule) Evaluate(ctx RuleContext) []models.Violation {
	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]

		checks := []struct {
			field string
			value *resource.Quantity
		}{
			{"requests.cpu", c.Resources.Requests.CPU},
			{"requests.memory", c.Resources.Requests.Memory},
			{"limits.cpu", c.Resources.Limits.CPU},
			{"limits.memory", c.Resources.Limits.Memory},
		}

		for _, check := range checks {
			if check.value != nil {
				continue
			}
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityError,
				ResourcePath: fmt.Sprintf("%s.resources.%s", c.FieldPath, check.field),
				Message:      fmt.Sprintf("container %q does not declare resources.%s", c.Name, check.field),
				Remediation:  "Declare CPU and memory requests and limits for every container so the scheduler can place and protect the workload.",
			})
		}
	}
	return violations
}

// ── RES_REQUEST_LIMIT_RATIO ──────────────────────────────────────────────────

// RequestLimitRatioRule checks that each declared request sits inside the
// configured fraction band of its limit. Deviations are advisory (WARNING):
// they inform capacity tuning and never fail the build. The check runs only
// when both sides of a pair are present; missing fields are the
// RES_LIMITS_MISSING rule's concern.
type RequestLimitRatioRule struct {
	appliesToAll
}

func (r RequestLimitRatioRule) ID() string   { return "RES_REQUEST_LIMIT_RATIO" }
func (r RequestLimitRatioRule) Name() string { return "Request/Limit Ratio Outside Recommended Band" }

func (r RequestLimitRatioRule) Evaluate(ctx RuleContext) []models.Violation {
	band := ctx.Config().RequestLimitRatio

	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]

		pairs := []struct {
			name    string
			request *resource.Quantity
			limit   *resource.Quantity
		}{
			{"cpu", c.Resources.Requests.CPU, c.Resources.Limits.CPU},
			{"memory", c.Resources.Requests.Memory, c.Resources.Limits.Memory},
		}

		for _, pair := range pairs {
			if pair.request == nil || pair.limit == nil {
				continue
			}
			limit := pair.limit.AsApproximateFloat64()
			if limit <= 0 {
				continue
			}
			ratio := pair.request.AsApproximateFloat64() / limit
			if ratio >= band.Min && ratio <= band.Max {
				continue
			}
			violations = append(violations, models.Violation{
				RuleID:       r.ID(),
				Severity:     models.SeverityWarning,
				ResourcePath: fmt.Sprintf("%s.resources.requests.%s", c.FieldPath, pair.name),
				Message: fmt.Sprintf(
					"container %q %s request is %.0f%% of its limit; recommended band is %.0f%%-%.0f%%",
					c.Name, pair.name, ratio*100, band.Min*100, band.Max*100,
				),
				Remediation: "Size requests so they reflect typical usage relative to the limit; a large gap invites overcommit, a tiny gap wastes headroom.",
			})
		}
	}
	return violations
}
