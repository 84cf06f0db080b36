// Package engine runs registered rules against manifests and aggregates
// violations into verdicts. One rule's internal failure becomes a synthetic
// violation instead of aborting the pass, so partial results for one manifest
// never block the rest of a batch.
package engine

import (
	"context"

	"github.com/kubegate-io/kubegate/internal/models"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)

// Evaluator is the central evaluation interface. Implementations must be
// deterministic: the same (manifest, rule set, config) pair always yields an
// identical Verdict, which is what makes the engine usable as a CI gate.
type Evaluator interface {
	// Evaluate runs all applicable rules against one manifest.
	Evaluate(ctx context.Context, m *models.Manifest) models.Verdict

	// EvaluateBatch evaluates each manifest independently and returns
	// verdicts in input order.
	EvaluateBatch(ctx context.Context, manifests []*models.Manifest) []models.Verdict
}
