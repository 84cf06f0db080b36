package manifest

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/kubegate-io/kubegate/internal/models"
)

// FromPodSpec converts a typed Kubernetes pod spec into the evaluation model.
// pathPrefix locates the pod spec within the source document (e.g.
// "spec.template.spec" for a Deployment) so container field paths in
// diagnostics point at the right place. Init containers come first, mirroring
// execution order. The cluster collector and the file parser share this
// conversion so both sources evaluate identically.
func FromPodSpec(
	kind models.Kind,
	name, namespace string,
	labels, annotations map[string]string,
	podSpec *corev1.PodSpec,
	pathPrefix, source string,
) *models.Manifest {
	return fromPodSpec(kind, name, namespace, labels, annotations, podSpec, pathPrefix, source)
}

func fromPodSpec(
	kind models.Kind,
	name, namespace string,
	labels, annotations map[string]string,
	podSpec *corev1.PodSpec,
	pathPrefix, source string,
) *models.Manifest {
	podCtx := convertPodSecurityContext(podSpec.SecurityContext)

	containers := make([]models.ContainerSpec, 0, len(podSpec.InitContainers)+len(podSpec.Containers))
	for i := range podSpec.InitContainers {
		path := fmt.Sprintf("%s.initContainers[%d]", pathPrefix, i)
		containers = append(containers, convertContainer(&podSpec.InitContainers[i], true, path, podCtx))
	}
	for i := range podSpec.Containers {
		path := fmt.Sprintf("%s.containers[%d]", pathPrefix, i)
		containers = append(containers, convertContainer(&podSpec.Containers[i], false, path, podCtx))
	}

	return &models.Manifest{
		Kind:               kind,
		Namespace:          namespace,
		Name:               name,
		Labels:             copyMap(labels),
		Annotations:        copyMap(annotations),
		Containers:         containers,
		PodSecurityContext: podCtx,
		Source:             source,
	}
}

// convertContainer maps a corev1.Container to the evaluation model, resolving
// the effective security context (container overrides pod).
func convertContainer(c *corev1.Container, init bool, fieldPath string, podCtx *models.SecurityContext) models.ContainerSpec {
	spec := models.ContainerSpec{
		Name:            c.Name,
		Image:           c.Image,
		Init:            init,
		FieldPath:       fieldPath,
		Resources:       convertResources(&c.Resources),
		SecurityContext: effectiveSecurityContext(c.SecurityContext, podCtx),
		LivenessProbe:   convertProbe(c.LivenessProbe),
		ReadinessProbe:  convertProbe(c.ReadinessProbe),
		StartupProbe:    convertProbe(c.StartupProbe),
	}

	for _, p := range c.Ports {
		spec.Ports = append(spec.Ports, models.Port{
			ContainerPort: p.ContainerPort,
			Name:          p.Name,
		})
	}

	if len(c.Env) > 0 {
		spec.Env = make(map[string]string, len(c.Env))
		for _, e := range c.Env {
			spec.Env[e.Name] = e.Value
		}
	}

	return spec
}

// convertResources copies request/limit quantities. Map-key presence matters:
// an absent entry stays nil so rules can distinguish "missing" from "zero".
func convertResources(r *corev1.ResourceRequirements) models.Resources {
	return models.Resources{
		Requests: convertAmounts(r.Requests),
		Limits:   convertAmounts(r.Limits),
	}
}

func convertAmounts(list corev1.ResourceList) models.ResourceAmounts {
	var amounts models.ResourceAmounts
	if cpu, ok := list[corev1.ResourceCPU]; ok {
		amounts.CPU = &cpu
	}
	if mem, ok := list[corev1.ResourceMemory]; ok {
		amounts.Memory = &mem
	}
	return amounts
}

func convertProbe(p *corev1.Probe) *models.Probe {
	if p == nil {
		return nil
	}
	probe := &models.Probe{
		InitialDelaySeconds: p.InitialDelaySeconds,
		PeriodSeconds:       p.PeriodSeconds,
		TimeoutSeconds:      p.TimeoutSeconds,
		FailureThreshold:    p.FailureThreshold,
		SuccessThreshold:    p.SuccessThreshold,
	}
	if p.HTTPGet != nil {
		probe.Path = p.HTTPGet.Path
		probe.Port = int32(p.HTTPGet.Port.IntValue())
	} else if p.TCPSocket != nil {
		probe.Port = int32(p.TCPSocket.Port.IntValue())
	}
	return probe
}

// convertPodSecurityContext maps the pod-wide security defaults.
func convertPodSecurityContext(sc *corev1.PodSecurityContext) *models.SecurityContext {
	if sc == nil {
		return nil
	}
	out := &models.SecurityContext{
		RunAsNonRoot: copyBool(sc.RunAsNonRoot),
		RunAsUser:    copyInt64(sc.RunAsUser),
	}
	if sc.SeccompProfile != nil {
		out.SeccompProfileType = string(sc.SeccompProfile.Type)
	}
	return out
}

// effectiveSecurityContext resolves the container's effective security
// settings: container-level values win, pod-level values fill the gaps.
// Returns nil only when neither level declares anything.
func effectiveSecurityContext(sc *corev1.SecurityContext, podCtx *models.SecurityContext) *models.SecurityContext {
	if sc == nil && podCtx == nil {
		return nil
	}

	out := &models.SecurityContext{}
	if podCtx != nil {
		out.RunAsNonRoot = copyBool(podCtx.RunAsNonRoot)
		out.RunAsUser = copyInt64(podCtx.RunAsUser)
		out.SeccompProfileType = podCtx.SeccompProfileType
	}

	if sc != nil {
		if sc.RunAsNonRoot != nil {
			out.RunAsNonRoot = copyBool(sc.RunAsNonRoot)
		}
		if sc.RunAsUser != nil {
			out.RunAsUser = copyInt64(sc.RunAsUser)
		}
		if sc.SeccompProfile != nil {
			out.SeccompProfileType = string(sc.SeccompProfile.Type)
		}
		out.ReadOnlyRootFilesystem = copyBool(sc.ReadOnlyRootFilesystem)
		out.AllowPrivilegeEscalation = copyBool(sc.AllowPrivilegeEscalation)
		out.Privileged = sc.Privileged != nil && *sc.Privileged
		if sc.Capabilities != nil {
			for _, c := range sc.Capabilities.Drop {
				out.CapabilitiesDrop = append(out.CapabilitiesDrop, string(c))
			}
			for _, c := range sc.Capabilities.Add {
				out.CapabilitiesAdd = append(out.CapabilitiesAdd, string(c))
			}
		}
	}

	return out
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func copyInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
