package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kubegate-io/kubegate/internal/checkers"
	"github.com/kubegate-io/kubegate/internal/models"
	"github.com/kubegate-io/kubegate/internal/policy"
	"github.com/kubegate-io/kubegate/internal/rules"
)

// internalErrorSuffix tags synthetic violations produced when a rule itself
// failed, so the reporter can distinguish tooling bugs from policy failures.
const internalErrorSuffix = "-internal-error"

// DefaultEvaluator is the production implementation of Evaluator. The
// registry, config, and checkers are fixed at construction; nothing is
// mutated during evaluation, so one evaluator serves concurrent batches.
type DefaultEvaluator struct {
	registry *rules.Registry
	cfg      *policy.Config
	checkers *checkers.Checkers
}

// New constructs a DefaultEvaluator wired to the supplied registry, policy
// config, and external checkers. cfg may be nil (built-in defaults apply);
// chk may be nil (checker-dependent rules report "check skipped").
func New(registry *rules.Registry, cfg *policy.Config, chk *checkers.Checkers) *DefaultEvaluator {
	return &DefaultEvaluator{
		registry: registry,
		cfg:      cfg,
		checkers: chk,
	}
}

// Evaluate implements Evaluator. Applicable rules run in registration order;
// the final violation sequence is canonically sorted (rule registration
// order, then resource path within a rule) so any internal execution
// interleaving yields byte-identical verdicts.
func (e *DefaultEvaluator) Evaluate(ctx context.Context, m *models.Manifest) models.Verdict {
	rctx := rules.RuleContext{
		Context:  ctx,
		Manifest: m,
		Policy:   e.cfg,
		Checkers: e.checkers,
	}

	applicable := e.registry.RulesFor(rctx)

	type ruleResult struct {
		order      int
		violations []models.Violation
	}
	results := make([]ruleResult, len(applicable))
	for i, rule := range applicable {
		results[i] = ruleResult{
			order:      i,
			violations: runRule(rule, rctx),
		}
	}

	var violations []models.Violation
	for _, res := range results {
		vs := res.violations
		sort.SliceStable(vs, func(a, b int) bool {
			return comparePaths(vs[a].ResourcePath, vs[b].ResourcePath) < 0
		})
		violations = append(violations, vs...)
	}

	violations = policy.ApplyOverrides(violations, e.cfg)

	passed := true
	for _, v := range violations {
		if v.Severity == models.SeverityError {
			passed = false
			break
		}
	}

	return models.Verdict{
		Kind:               m.Kind,
		Namespace:          m.Namespace,
		Name:               m.Name,
		Source:             m.Source,
		Violations:         violations,
		Passed:             passed,
		EvaluatedRuleCount: len(applicable),
		SkippedRuleCount:   e.registry.Len() - len(applicable),
	}
}

// runRule invokes one rule, converting a panic into a synthetic
// ERROR-severity violation tagged "<id>-internal-error".
func runRule(rule rules.Rule, rctx rules.RuleContext) (violations []models.Violation) {
	defer func() {
		if r := recover(); r != nil {
			violations = []models.Violation{{
				RuleID:   rule.ID() + internalErrorSuffix,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("rule %s failed internally: %v", rule.ID(), r),
				Internal: true,
			}}
		}
	}()
	return rule.Evaluate(rctx)
}

// EvaluateBatch implements Evaluator. Manifests are evaluated independently
// on a worker pool bounded by the configured concurrency; no manifest's
// evaluation observes another's state, and verdicts come back in input order.
func (e *DefaultEvaluator) EvaluateBatch(ctx context.Context, manifests []*models.Manifest) []models.Verdict {
	if len(manifests) == 0 {
		return nil
	}

	workers := 4
	if e.cfg != nil && e.cfg.Concurrency > 0 {
		workers = e.cfg.Concurrency
	}
	if workers > len(manifests) {
		workers = len(manifests)
	}

	verdicts := make([]models.Verdict, len(manifests))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				verdicts[i] = e.Evaluate(ctx, manifests[i])
			}
		}()
	}
	for i := range manifests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return verdicts
}

// BuildReport assembles the top-level report from verdicts and parse
// failures collected during input loading.
func BuildReport(source string, verdicts []models.Verdict, parseFailures []models.ParseFailure) *models.BatchReport {
	return &models.BatchReport{
		ReportID:      fmt.Sprintf("eval-%d", time.Now().UnixNano()),
		GeneratedAt:   time.Now().UTC(),
		Source:        source,
		Summary:       models.ComputeSummary(verdicts, parseFailures),
		Verdicts:      verdicts,
		ParseFailures: parseFailures,
	}
}

// comparePaths orders resource paths with numeric awareness so
// "containers[2]" sorts before "containers[10]". Segments compare
// lexicographically; bracketed indices compare numerically.
func comparePaths(a, b string) int {
	if a == b {
		return 0
	}
	as := splitPath(a)
	bs := splitPath(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an < bn {
				return -1
			}
			return 1
		}
		if as[i] < bs[i] {
			return -1
		}
		return 1
	}
	if len(as) < len(bs) {
		return -1
	}
	if len(as) > len(bs) {
		return 1
	}
	return 0
}

// splitPath breaks "spec.containers[1].image" into
// ["spec", "containers", "1", "image"].
func splitPath(p string) []string {
	replaced := strings.NewReplacer("[", ".", "]", "").Replace(p)
	return strings.Split(replaced, ".")
}
