// Package workload provides the workload hardening rule pack: resource
// governance and pod security baseline checks.
package workload

import "github.com/kubegate-io/kubegate/internal/rules"

// New returns the workload hardening rules in canonical registration order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.ResourcesPresentRule{},        // RES_LIMITS_MISSING
		rules.RequestLimitRatioRule{},       // RES_REQUEST_LIMIT_RATIO
		rules.SecurityContextBaselineRule{}, // SEC_CONTEXT_BASELINE
		rules.AddedCapabilitiesRule{},       // SEC_ADDED_CAPABILITIES
	}
}
