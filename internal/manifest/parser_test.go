package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kubegate-io/kubegate/internal/models"
)

const deploymentYAML = `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: pe-eng-petclinic-dev
  namespace: dev
  labels:
    app: petclinic
    team: pe-eng
  annotations:
    prometheus.io/scrape: "true"
spec:
  template:
    spec:
      initContainers:
        - name: db-migrate
          image: registry.bank.internal/migrate:2.0.0
      containers:
        - name: petclinic
          image: registry.bank.internal/petclinic:1.4.2
          resources:
            requests:
              cpu: 100m
              memory: 256Mi
            limits:
              cpu: 500m
              memory: 512Mi
          securityContext:
            runAsNonRoot: true
            readOnlyRootFilesystem: true
            seccompProfile:
              type: RuntimeDefault
            capabilities:
              drop: ["ALL"]
          livenessProbe:
            httpGet:
              path: /healthz
              port: 8080
            initialDelaySeconds: 30
            periodSeconds: 15
`

func TestParseDocument_Deployment(t *testing.T) {
	m, err := ParseDocument([]byte(deploymentYAML), "deploy.yaml")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if m.Kind != models.KindDeployment {
		t.Errorf("Kind = %q; want Deployment", m.Kind)
	}
	if m.Name != "pe-eng-petclinic-dev" || m.Namespace != "dev" {
		t.Errorf("identity = %s/%s", m.Namespace, m.Name)
	}
	if m.Labels["team"] != "pe-eng" {
		t.Errorf("Labels = %v", m.Labels)
	}
	if m.Annotations["prometheus.io/scrape"] != "true" {
		t.Errorf("Annotations = %v", m.Annotations)
	}

	if len(m.Containers) != 2 {
		t.Fatalf("expected 2 containers (init first); got %d", len(m.Containers))
	}
	init, app := m.Containers[0], m.Containers[1]
	if !init.Init || init.Name != "db-migrate" {
		t.Errorf("containers[0] = %+v; want the init container first", init)
	}
	if init.FieldPath != "spec.template.spec.initContainers[0]" {
		t.Errorf("init FieldPath = %q", init.FieldPath)
	}
	if app.FieldPath != "spec.template.spec.containers[0]" {
		t.Errorf("app FieldPath = %q", app.FieldPath)
	}

	if app.Resources.Requests.CPU == nil || app.Resources.Requests.CPU.String() != "100m" {
		t.Errorf("requests.cpu = %v", app.Resources.Requests.CPU)
	}
	if app.Resources.Limits.Memory == nil || app.Resources.Limits.Memory.String() != "512Mi" {
		t.Errorf("limits.memory = %v", app.Resources.Limits.Memory)
	}
	// The init container declares no resources; the fields must stay nil.
	if init.Resources.Requests.CPU != nil {
		t.Error("init requests.cpu should be nil when undeclared")
	}

	sc := app.SecurityContext
	if sc == nil {
		t.Fatal("app security context is nil")
	}
	if sc.RunAsNonRoot == nil || !*sc.RunAsNonRoot {
		t.Error("runAsNonRoot not carried over")
	}
	if sc.SeccompProfileType != "RuntimeDefault" {
		t.Errorf("SeccompProfileType = %q", sc.SeccompProfileType)
	}
	if len(sc.CapabilitiesDrop) != 1 || sc.CapabilitiesDrop[0] != "ALL" {
		t.Errorf("CapabilitiesDrop = %v", sc.CapabilitiesDrop)
	}

	if app.LivenessProbe == nil {
		t.Fatal("liveness probe is nil")
	}
	if app.LivenessProbe.Path != "/healthz" || app.LivenessProbe.Port != 8080 {
		t.Errorf("probe = %+v", app.LivenessProbe)
	}
	if app.LivenessProbe.InitialDelaySeconds != 30 || app.LivenessProbe.PeriodSeconds != 15 {
		t.Errorf("probe timing = %+v", app.LivenessProbe)
	}
	if app.ReadinessProbe != nil {
		t.Error("readiness probe should be nil when undeclared")
	}
}

func TestParseDocument_PodLevelSecurityContextMergesDown(t *testing.T) {
	doc := `
apiVersion: v1
kind: Pod
metadata:
  name: pe-eng-app-dev
  namespace: dev
spec:
  securityContext:
    runAsNonRoot: true
    runAsUser: 1000
    seccompProfile:
      type: RuntimeDefault
  containers:
    - name: app
      image: registry.bank.internal/app:1.0.0
    - name: override
      image: registry.bank.internal/app:1.0.0
      securityContext:
        runAsUser: 2000
        seccompProfile:
          type: Unconfined
`
	m, err := ParseDocument([]byte(doc), "pod.yaml")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	inherited := m.Containers[0].SecurityContext
	if inherited == nil || inherited.RunAsNonRoot == nil || !*inherited.RunAsNonRoot {
		t.Errorf("pod-level runAsNonRoot not inherited: %+v", inherited)
	}
	if inherited.SeccompProfileType != "RuntimeDefault" {
		t.Errorf("inherited SeccompProfileType = %q", inherited.SeccompProfileType)
	}

	overridden := m.Containers[1].SecurityContext
	if overridden.RunAsUser == nil || *overridden.RunAsUser != 2000 {
		t.Errorf("container-level runAsUser should win: %+v", overridden.RunAsUser)
	}
	if overridden.SeccompProfileType != "Unconfined" {
		t.Errorf("container-level seccomp should win; got %q", overridden.SeccompProfileType)
	}
	// The container does not set runAsNonRoot, so the pod value fills the gap.
	if overridden.RunAsNonRoot == nil || !*overridden.RunAsNonRoot {
		t.Error("pod-level runAsNonRoot should fill the gap")
	}
	// FieldPath for a bare Pod starts at spec.
	if m.Containers[0].FieldPath != "spec.containers[0]" {
		t.Errorf("FieldPath = %q", m.Containers[0].FieldPath)
	}
}

func TestParseDocument_CronJobPathPrefix(t *testing.T) {
	doc := `
apiVersion: batch/v1
kind: CronJob
metadata:
  name: pe-eng-report-dev
  namespace: dev
spec:
  schedule: "0 2 * * *"
  jobTemplate:
    spec:
      template:
        spec:
          containers:
            - name: report
              image: registry.bank.internal/report:3.1.0
`
	m, err := ParseDocument([]byte(doc), "cron.yaml")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if m.Kind != models.KindCronJob {
		t.Errorf("Kind = %q", m.Kind)
	}
	want := "spec.jobTemplate.spec.template.spec.containers[0]"
	if m.Containers[0].FieldPath != want {
		t.Errorf("FieldPath = %q; want %q", m.Containers[0].FieldPath, want)
	}
}

func TestParseDocument_NonWorkloadKindSkipped(t *testing.T) {
	doc := "apiVersion: v1\nkind: Service\nmetadata:\n  name: app\n"
	m, err := ParseDocument([]byte(doc), "svc.yaml")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest for a Service; got %+v", m)
	}
}

func TestParseDocument_MissingKind(t *testing.T) {
	doc := "apiVersion: v1\nmetadata:\n  name: app\n"
	if _, err := ParseDocument([]byte(doc), "x.yaml"); err == nil {
		t.Fatal("expected error for a document without kind")
	}
}

func TestParse_MultiDocumentStream(t *testing.T) {
	stream := deploymentYAML + "\n---\napiVersion: v1\nkind: Service\nmetadata:\n  name: app\n---\nkind: : bad\n"
	manifests, failures := Parse([]byte(stream), "all.yaml")
	if len(manifests) != 1 {
		t.Errorf("expected 1 manifest; got %d", len(manifests))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 parse failure; got %d", len(failures))
	}
	if failures[0].Source != "all.yaml#2" {
		t.Errorf("failure source = %q; want all.yaml#2", failures[0].Source)
	}
}

func TestParse_BadDocumentDoesNotAbortStream(t *testing.T) {
	stream := "kind: : bad\n---" + deploymentYAML
	manifests, failures := Parse([]byte(stream), "mixed.yaml")
	if len(manifests) != 1 || len(failures) != 1 {
		t.Errorf("manifests/failures = %d/%d; want 1/1", len(manifests), len(failures))
	}
}

func TestParseFiles_WalksDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "apps")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		filepath.Join(dir, "deploy.yaml"): deploymentYAML,
		filepath.Join(sub, "pod.yml"): `
apiVersion: v1
kind: Pod
metadata:
  name: pe-eng-tool-dev
spec:
  containers:
    - name: tool
      image: registry.bank.internal/tool:1.0.0
`,
		filepath.Join(dir, "notes.txt"): "not a manifest",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	manifests, failures, err := ParseFiles([]string{dir})
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("unexpected failures: %v", failures)
	}
	if len(manifests) != 2 {
		t.Errorf("expected 2 manifests (.txt skipped); got %d", len(manifests))
	}
	for _, m := range manifests {
		if m.Source == "" {
			t.Error("manifest Source not set to its file path")
		}
	}
}

func TestParseFiles_MissingPathIsFatal(t *testing.T) {
	if _, _, err := ParseFiles([]string{filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Fatal("expected error for a missing input path")
	}
}
