package models

import "time"

// Severity represents the impact level of a violation.
// Only ERROR-severity violations flip a Verdict to failed; WARNING and INFO
// are advisory so CI can block on errors without a second evaluation pass.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// SeverityRank maps severities to sort/threshold keys (higher = more severe).
// Unknown severities rank 0.
var SeverityRank = map[Severity]int{
	SeverityError:   3,
	SeverityWarning: 2,
	SeverityInfo:    1,
}

// ValidSeverity reports whether s is a recognised severity value.
func ValidSeverity(s Severity) bool {
	_, ok := SeverityRank[s]
	return ok
}

// Violation is the atomic output unit of the rule engine.
// JSON field names are stable; downstream CI tooling parses them.
type Violation struct {
	// RuleID is the stable identifier of the rule that produced this
	// violation. Synthetic internal failures use "<original>-internal-error".
	RuleID string `json:"ruleId"`

	Severity Severity `json:"severity"`

	// ResourcePath locates the offending field within the source document,
	// e.g. "spec.containers[1].image". Empty for manifest-level violations.
	ResourcePath string `json:"resourcePath"`

	// Message is the human-readable description, parameterised with the
	// offending value.
	Message string `json:"message"`

	// Remediation is optional static advice on how to fix the violation.
	Remediation string `json:"remediation,omitempty"`

	// Internal marks synthetic violations produced when a rule itself
	// failed, so the reporter can distinguish tooling bugs from policy
	// failures.
	Internal bool `json:"internal,omitempty"`
}

// Verdict is the outcome of evaluating one manifest against one rule set.
// Violations are ordered canonically: rule registration order first, then
// resource path (container index) within a rule.
type Verdict struct {
	Kind      Kind   `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`

	// Source is the file path or cluster context the manifest came from.
	Source string `json:"source,omitempty"`

	Violations []Violation `json:"violations"`

	// Passed is true when no ERROR-severity violation is present.
	Passed bool `json:"passed"`

	EvaluatedRuleCount int `json:"evaluatedRuleCount"`

	// SkippedRuleCount counts registered rules that did not run against
	// this manifest: disabled rules plus rules whose appliesTo predicate
	// excluded this kind/namespace.
	SkippedRuleCount int `json:"skippedRuleCount"`
}

// HasInternalFailure reports whether any violation is a synthetic
// internal-error entry.
func (v Verdict) HasInternalFailure() bool {
	for _, viol := range v.Violations {
		if viol.Internal {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of ERROR-severity violations.
func (v Verdict) ErrorCount() int {
	n := 0
	for _, viol := range v.Violations {
		if viol.Severity == SeverityError {
			n++
		}
	}
	return n
}

// ParseFailure records a document that could not be parsed. It is attached
// to the batch report instead of aborting the batch.
type ParseFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Summary aggregates counts across all verdicts in a batch.
type Summary struct {
	Manifests         int `json:"manifests"`
	Passed            int `json:"passed"`
	Failed            int `json:"failed"`
	ErrorViolations   int `json:"errorViolations"`
	WarningViolations int `json:"warningViolations"`
	InfoViolations    int `json:"infoViolations"`
	InternalFailures  int `json:"internalFailures"`
	ParseFailures     int `json:"parseFailures"`
}

// BatchReport is the top-level output of an evaluation run.
// Verdicts appear in input-document order regardless of evaluation
// concurrency.
type BatchReport struct {
	ReportID      string         `json:"report_id"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Source        string         `json:"source"`
	Summary       Summary        `json:"summary"`
	Verdicts      []Verdict      `json:"verdicts"`
	ParseFailures []ParseFailure `json:"parse_failures,omitempty"`
}

// ComputeSummary aggregates verdicts and parse failures into a Summary.
func ComputeSummary(verdicts []Verdict, parseFailures []ParseFailure) Summary {
	var s Summary
	s.Manifests = len(verdicts)
	s.ParseFailures = len(parseFailures)
	for _, v := range verdicts {
		if v.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		for _, viol := range v.Violations {
			if viol.Internal {
				s.InternalFailures++
			}
			switch viol.Severity {
			case SeverityError:
				s.ErrorViolations++
			case SeverityWarning:
				s.WarningViolations++
			case SeverityInfo:
				s.InfoViolations++
			}
		}
	}
	return s
}
