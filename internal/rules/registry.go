package rules

import (
	"errors"
	"fmt"
)

// ErrDuplicateRuleID is returned when the same rule ID is registered twice.
// It is a configuration error and fatal at startup, before any evaluation.
var ErrDuplicateRuleID = errors.New("duplicate rule ID")

// ErrUnknownRuleID is returned when toggling a rule that was never registered.
var ErrUnknownRuleID = errors.New("unknown rule ID")

type registryEntry struct {
	rule    Rule
	enabled bool
}

// Registry is an ordered, append-mostly collection of rules. Registration
// order defines the canonical violation order in verdicts. Rules are toggled
// with SetEnabled, never removed, so disabled rules still show up in skipped
// counts. The rule set is fixed per evaluation run; configuration reload
// builds a new Registry instead of mutating one mid-pass.
type Registry struct {
	entries []registryEntry
	index   map[string]int
}

// NewRegistry returns an empty registry ready for rule registration.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Register appends rule to the registry. Registering the same ID twice
// returns ErrDuplicateRuleID; there is no silent overwrite.
func (r *Registry) Register(rule Rule) error {
	if _, exists := r.index[rule.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRuleID, rule.ID())
	}
	r.entries = append(r.entries, registryEntry{rule: rule, enabled: true})
	r.index[rule.ID()] = len(r.entries) - 1
	return nil
}

// RegisterAll registers rules in order, stopping at the first error.
func (r *Registry) RegisterAll(rules ...Rule) error {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			return err
		}
	}
	return nil
}

// SetEnabled toggles a rule without removing it. Toggling off then on
// restores the registry to a state indistinguishable from never toggling.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	pos, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRuleID, id)
	}
	r.entries[pos].enabled = enabled
	return nil
}

// Enabled reports whether the rule with the given ID is registered and enabled.
func (r *Registry) Enabled(id string) bool {
	pos, ok := r.index[id]
	return ok && r.entries[pos].enabled
}

// Len returns the total number of registered rules, enabled or not.
func (r *Registry) Len() int { return len(r.entries) }

// All returns all registered rules in registration order, including
// disabled ones.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.rule
	}
	return out
}

// IDs returns all registered rule IDs in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.rule.ID()
	}
	return out
}

// RulesFor returns the enabled rules applicable to the manifest in ctx,
// preserving registration order.
func (r *Registry) RulesFor(ctx RuleContext) []Rule {
	var out []Rule
	for _, e := range r.entries {
		if e.enabled && e.rule.AppliesTo(ctx) {
			out = append(out, e.rule)
		}
	}
	return out
}
