package rules

import (
	"context"

	"github.com/kubegate-io/kubegate/internal/checkers"
	"github.com/kubegate-io/kubegate/internal/models"
	"github.com/kubegate-io/kubegate/internal/policy"
)

// RuleContext carries everything a rule may inspect during one evaluation.
// It is the sole input to Rule.Evaluate. The manifest is immutable for the
// duration of the pass; rules are read-only predicates and must never mutate
// it or keep state between calls, which is what guarantees that execution
// order never affects the outcome.
type RuleContext struct {
	// Context is used only for external checker calls. Nil is treated as
	// context.Background().
	Context context.Context

	// Manifest is the subject of evaluation. Never nil during evaluation.
	Manifest *models.Manifest

	// Policy holds the active evaluation configuration. Rules must treat
	// nil as "use built-in defaults" via policy helpers.
	Policy *policy.Config

	// Checkers holds the optional external capabilities. May be nil; rules
	// depending on an absent checker report "check skipped" as a WARNING
	// rather than silently passing.
	Checkers *checkers.Checkers
}

// Ctx returns the evaluation context, never nil.
func (c RuleContext) Ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// Config returns the active policy config, falling back to defaults.
func (c RuleContext) Config() *policy.Config {
	if c.Policy == nil {
		return policy.Default()
	}
	return c.Policy
}

// Rule is a single deterministic compliance check over one manifest.
// Rules must be stateless and safe to call concurrently. All network I/O
// goes through ctx.Checkers; a rule must never open a connection itself.
type Rule interface {
	// ID returns the unique, stable identifier for this rule
	// (e.g. "IMG_FLOATING_TAG").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// AppliesTo reports whether the rule is applicable to the manifest in
	// ctx (keyed on kind and namespace). Non-applicable rules count as
	// skipped in the verdict, not as passed.
	AppliesTo(ctx RuleContext) bool

	// Evaluate inspects the manifest and returns zero or more violations.
	// An empty slice means the manifest complies with this rule.
	Evaluate(ctx RuleContext) []models.Violation
}

// appliesToAll is embedded by rules that apply to every workload kind and
// namespace.
type appliesToAll struct{}

func (appliesToAll) AppliesTo(RuleContext) bool { return true }
