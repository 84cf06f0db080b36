// Package kubernetes collects live workloads from a cluster and converts
// them into the evaluation model, so a running cluster can be audited with
// the same engine that gates manifests in CI.
package kubernetes

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sclient "k8s.io/client-go/kubernetes"

	"github.com/kubegate-io/kubegate/internal/manifest"
	"github.com/kubegate-io/kubegate/internal/models"
)

// CollectWorkloads lists Deployments, StatefulSets, DaemonSets, and bare
// Pods (pods without an owning controller) in the given namespace (empty =
// all namespaces) and converts them into manifests. Controller-owned pods
// are skipped: their manifest of record is the controller.
//
// The clientset parameter is an interface so tests can inject a fake
// clientset. Results are ordered by workload type, then list order, so a
// collection is deterministic for a stable cluster state.
func CollectWorkloads(ctx context.Context, clientset k8sclient.Interface, info ClusterInfo, namespace string) ([]*models.Manifest, error) {
	var manifests []*models.Manifest

	deployments, err := clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	for i := range deployments.Items {
		d := &deployments.Items[i]
		manifests = append(manifests, manifest.FromPodSpec(
			models.KindDeployment, d.Name, d.Namespace, d.Labels, d.Annotations,
			&d.Spec.Template.Spec, "spec.template.spec", info.ContextName,
		))
	}

	statefulsets, err := clientset.AppsV1().StatefulSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list statefulsets: %w", err)
	}
	for i := range statefulsets.Items {
		s := &statefulsets.Items[i]
		manifests = append(manifests, manifest.FromPodSpec(
			models.KindStatefulSet, s.Name, s.Namespace, s.Labels, s.Annotations,
			&s.Spec.Template.Spec, "spec.template.spec", info.ContextName,
		))
	}

	daemonsets, err := clientset.AppsV1().DaemonSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list daemonsets: %w", err)
	}
	for i := range daemonsets.Items {
		d := &daemonsets.Items[i]
		manifests = append(manifests, manifest.FromPodSpec(
			models.KindDaemonSet, d.Name, d.Namespace, d.Labels, d.Annotations,
			&d.Spec.Template.Spec, "spec.template.spec", info.ContextName,
		))
	}

	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	for i := range pods.Items {
		p := &pods.Items[i]
		if len(p.OwnerReferences) > 0 {
			continue
		}
		manifests = append(manifests, manifest.FromPodSpec(
			models.KindPod, p.Name, p.Namespace, p.Labels, p.Annotations,
			&p.Spec, "spec", info.ContextName,
		))
	}

	return manifests, nil
}
