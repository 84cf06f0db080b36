package models

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"
)

// Kind identifies the workload type a Manifest was parsed from.
type Kind string

const (
	KindPod         Kind = "Pod"
	KindDeployment  Kind = "Deployment"
	KindStatefulSet Kind = "StatefulSet"
	KindDaemonSet   Kind = "DaemonSet"
	KindJob         Kind = "Job"
	KindCronJob     Kind = "CronJob"
)

// WorkloadKinds is the set of kinds the parser accepts, in canonical order.
var WorkloadKinds = []Kind{
	KindPod,
	KindDeployment,
	KindStatefulSet,
	KindDaemonSet,
	KindJob,
	KindCronJob,
}

// IsWorkloadKind reports whether kind names a supported workload type.
func IsWorkloadKind(kind Kind) bool {
	for _, k := range WorkloadKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// SecurityContext holds the security fields rules inspect. For containers the
// values are effective: container-level settings override pod-level ones, and
// the override is resolved at parse/collection time so rules never re-derive it.
type SecurityContext struct {
	// RunAsNonRoot is nil when neither the container nor the pod sets it.
	RunAsNonRoot *bool

	// RunAsUser is the effective UID, nil when unset at both levels.
	RunAsUser *int64

	// SeccompProfileType is the effective seccompProfile.type string
	// (e.g. "RuntimeDefault", "Unconfined"). Empty when no profile is set.
	SeccompProfileType string

	// ReadOnlyRootFilesystem is container-level only; nil when unset.
	ReadOnlyRootFilesystem *bool

	// CapabilitiesDrop lists capabilities.drop entries in manifest order.
	CapabilitiesDrop []string

	// CapabilitiesAdd lists capabilities.add entries in manifest order.
	CapabilitiesAdd []string

	// AllowPrivilegeEscalation is nil when unset.
	AllowPrivilegeEscalation *bool

	// Privileged is true when securityContext.privileged == true.
	Privileged bool
}

// Probe holds the probe fields the timing rules inspect.
// Zero values mean the field was absent from the manifest; Kubernetes applies
// its own defaults at admission, but rules evaluate what the author wrote.
type Probe struct {
	Path                string
	Port                int32
	InitialDelaySeconds int32
	PeriodSeconds       int32
	TimeoutSeconds      int32
	FailureThreshold    int32
	SuccessThreshold    int32
}

// ResourceAmounts holds one side (requests or limits) of a container's
// resource declaration. Nil pointers mean the field was absent, which is
// meaningful input to rules, not an error.
type ResourceAmounts struct {
	CPU    *resource.Quantity
	Memory *resource.Quantity
}

// Resources holds a container's resource requests and limits.
type Resources struct {
	Requests ResourceAmounts
	Limits   ResourceAmounts
}

// Port is a declared containerPort.
type Port struct {
	ContainerPort int32
	Name          string
}

// ContainerSpec is the per-container subset of fields the rules inspect.
// Init containers and regular containers share this shape; Init distinguishes
// them and FieldPath locates the container for diagnostics.
type ContainerSpec struct {
	// Name is the container name within the pod spec.
	Name string

	// Image is the raw, unparsed image reference string.
	Image string

	// Init is true for entries from the initContainers list.
	Init bool

	// FieldPath is the JSON-pointer-like location of this container within
	// the source document (e.g. "spec.template.spec.containers[1]").
	FieldPath string

	Resources Resources

	// SecurityContext carries the effective (pod-merged) security settings.
	// Nil when neither level declares any.
	SecurityContext *SecurityContext

	Ports []Port

	LivenessProbe  *Probe
	ReadinessProbe *Probe
	StartupProbe   *Probe

	// Env maps environment variable names to their literal values.
	// Variables sourced from references (configMapKeyRef etc.) map to "".
	Env map[string]string
}

// Manifest is the immutable subject of one evaluation pass. Rules must treat
// it as read-only; nothing mutates a Manifest after construction, which is
// what makes rule execution order irrelevant to the outcome.
type Manifest struct {
	Kind      Kind
	Namespace string
	Name      string

	Labels      map[string]string
	Annotations map[string]string

	// Containers lists init containers first, then regular containers,
	// each carrying its own FieldPath for diagnostics.
	Containers []ContainerSpec

	// PodSecurityContext holds the pod-wide defaults as written. Container
	// entries already have these merged in; this is kept for reporting.
	PodSecurityContext *SecurityContext

	// Source identifies where the manifest came from (file path or
	// cluster context), used only in diagnostics.
	Source string
}

// Identity returns the kind/namespace/name triple used in reports.
func (m *Manifest) Identity() string {
	if m.Namespace == "" {
		return fmt.Sprintf("%s/%s", m.Kind, m.Name)
	}
	return fmt.Sprintf("%s/%s/%s", m.Kind, m.Namespace, m.Name)
}
