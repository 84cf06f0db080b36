package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kubegate-io/kubegate/internal/output"
)

// errPolicyFailure and errToolingFailure are sentinel errors commands return
// so main can map them to the documented exit codes without cobra printing a
// stack of wrapped messages.
var (
	errPolicyFailure  = errors.New("policy failure")
	errToolingFailure = errors.New("tooling failure")
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the result to an exit status:
// 0 = all manifests passed, 1 = blocking policy violations,
// 2 = the evaluator itself failed (parse error, config error, internal
// rule failure).
func run() int {
	root := newRootCmd()
	err := root.Execute()
	switch {
	case err == nil:
		return output.ExitOK
	case errors.Is(err, errPolicyFailure):
		return output.ExitPolicyFailure
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return output.ExitToolingFailure
	}
}
