package output

import "github.com/kubegate-io/kubegate/internal/models"

// Process exit codes. The three must stay distinguishable so CI callers can
// tell "your manifest is non-compliant" from "the evaluator itself broke".
const (
	// ExitOK means every manifest passed.
	ExitOK = 0

	// ExitPolicyFailure means at least one blocking violation was found.
	ExitPolicyFailure = 1

	// ExitToolingFailure means the evaluator itself failed: a document
	// could not be parsed, a rule failed internally, or configuration was
	// invalid.
	ExitToolingFailure = 2
)

// ExitCode maps a report to the process exit status. failed reports whether
// the enforcement threshold was crossed (policy.ShouldFail); tooling failures
// take precedence over policy failures.
func ExitCode(report *models.BatchReport, failed bool) int {
	if report.Summary.ParseFailures > 0 || report.Summary.InternalFailures > 0 {
		return ExitToolingFailure
	}
	if failed {
		return ExitPolicyFailure
	}
	return ExitOK
}
