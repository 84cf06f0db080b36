// Package operability provides the operability rule pack: naming and label
// governance, observability wiring, and health probe checks.
package operability

import "github.com/kubegate-io/kubegate/internal/rules"

// New returns the operability rules in canonical registration order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.RequiredLabelsRule{},        // META_REQUIRED_LABELS
		rules.NamePatternRule{},           // META_NAME_PATTERN
		rules.PrometheusAnnotationsRule{}, // OBS_PROMETHEUS_ANNOTATIONS
		rules.LogShipperSidecarRule{},     // OBS_LOG_SHIPPER_SIDECAR
		rules.ProbesPresentRule{},         // PROBE_MISSING
		rules.ProbeTimingRule{},           // PROBE_TIMING_BOUNDS
	}
}
