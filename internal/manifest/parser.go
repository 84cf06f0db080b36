// Package manifest parses Kubernetes workload documents into the evaluation
// model. Parsing fails only on structurally invalid input; absent optional
// fields are meaningful input to rules (a missing resources block is a
// violation detected later, not a parse failure).
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"github.com/kubegate-io/kubegate/internal/models"
)

// ParseError marks a document that could not be parsed. It is fatal for that
// document only; a batch never aborts on one bad document.
type ParseError struct {
	// Source identifies the document (file path, optionally with an index
	// for multi-document files).
	Source string

	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// documentDelimiter separates objects in a multi-document YAML stream.
const documentDelimiter = "\n---"

// typeMeta is the minimal probe decoded first to dispatch on kind.
type typeMeta struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

// Parse decodes a (possibly multi-document) YAML or JSON stream into
// manifests. Non-workload objects (Services, ConfigMaps, ...) are skipped.
// Documents that fail to decode are reported as parse failures without
// aborting the rest of the stream; manifests come back in document order.
func Parse(data []byte, source string) ([]*models.Manifest, []models.ParseFailure) {
	var (
		manifests []*models.Manifest
		failures  []models.ParseFailure
	)

	docs := splitDocuments(string(data))
	for i, doc := range docs {
		docSource := source
		if len(docs) > 1 {
			docSource = fmt.Sprintf("%s#%d", source, i)
		}
		m, err := ParseDocument([]byte(doc), docSource)
		if err != nil {
			failures = append(failures, models.ParseFailure{Source: docSource, Error: err.Error()})
			continue
		}
		if m != nil {
			manifests = append(manifests, m)
		}
	}
	return manifests, failures
}

// ParseDocument decodes a single document. It returns (nil, nil) for
// non-workload kinds and a *ParseError for structurally invalid input.
func ParseDocument(data []byte, source string) (*models.Manifest, error) {
	var tm typeMeta
	if err := yaml.Unmarshal(data, &tm); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if tm.Kind == "" {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("document has no kind")}
	}
	if !models.IsWorkloadKind(models.Kind(tm.Kind)) {
		return nil, nil
	}

	switch models.Kind(tm.Kind) {
	case models.KindPod:
		var pod corev1.Pod
		if err := yaml.Unmarshal(data, &pod); err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return fromPodSpec(models.KindPod, pod.ObjectMeta.Name, pod.ObjectMeta.Namespace,
			pod.ObjectMeta.Labels, pod.ObjectMeta.Annotations, &pod.Spec, "spec", source), nil

	case models.KindDeployment:
		var d appsv1.Deployment
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return fromPodSpec(models.KindDeployment, d.ObjectMeta.Name, d.ObjectMeta.Namespace,
			d.ObjectMeta.Labels, d.ObjectMeta.Annotations, &d.Spec.Template.Spec, "spec.template.spec", source), nil

	case models.KindStatefulSet:
		var s appsv1.StatefulSet
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return fromPodSpec(models.KindStatefulSet, s.ObjectMeta.Name, s.ObjectMeta.Namespace,
			s.ObjectMeta.Labels, s.ObjectMeta.Annotations, &s.Spec.Template.Spec, "spec.template.spec", source), nil

	case models.KindDaemonSet:
		var d appsv1.DaemonSet
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return fromPodSpec(models.KindDaemonSet, d.ObjectMeta.Name, d.ObjectMeta.Namespace,
			d.ObjectMeta.Labels, d.ObjectMeta.Annotations, &d.Spec.Template.Spec, "spec.template.spec", source), nil

	case models.KindJob:
		var j batchv1.Job
		if err := yaml.Unmarshal(data, &j); err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return fromPodSpec(models.KindJob, j.ObjectMeta.Name, j.ObjectMeta.Namespace,
			j.ObjectMeta.Labels, j.ObjectMeta.Annotations, &j.Spec.Template.Spec, "spec.template.spec", source), nil

	case models.KindCronJob:
		var c batchv1.CronJob
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return fromPodSpec(models.KindCronJob, c.ObjectMeta.Name, c.ObjectMeta.Namespace,
			c.ObjectMeta.Labels, c.ObjectMeta.Annotations, &c.Spec.JobTemplate.Spec.Template.Spec,
			"spec.jobTemplate.spec.template.spec", source), nil
	}

	return nil, nil
}

// ParseFiles walks the given paths (files or directories), parses every
// .yaml/.yml/.json file found, and returns all manifests in path order.
func ParseFiles(paths []string) ([]*models.Manifest, []models.ParseFailure, error) {
	var (
		manifests []*models.Manifest
		failures  []models.ParseFailure
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, fmt.Errorf("access %s: %w", path, err)
		}

		if !info.IsDir() {
			m, f := parseFile(path)
			manifests = append(manifests, m...)
			failures = append(failures, f...)
			continue
		}

		err = filepath.WalkDir(path, func(filePath string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isManifestFile(d.Name()) {
				return nil
			}
			m, f := parseFile(filePath)
			manifests = append(manifests, m...)
			failures = append(failures, f...)
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}

	return manifests, failures, nil
}

func parseFile(path string) ([]*models.Manifest, []models.ParseFailure) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []models.ParseFailure{{Source: path, Error: err.Error()}}
	}
	return Parse(data, path)
}

func isManifestFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") ||
		strings.HasSuffix(name, ".yml") ||
		strings.HasSuffix(name, ".json")
}

// splitDocuments splits a YAML stream on document delimiters, dropping
// empty documents.
func splitDocuments(content string) []string {
	raw := strings.Split("\n"+content, documentDelimiter)
	var docs []string
	for _, d := range raw {
		if strings.TrimSpace(d) == "" {
			continue
		}
		docs = append(docs, d)
	}
	return docs
}
