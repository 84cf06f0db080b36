package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kubegate-io/kubegate/internal/checkers"
	"github.com/kubegate-io/kubegate/internal/engine"
	"github.com/kubegate-io/kubegate/internal/manifest"
	"github.com/kubegate-io/kubegate/internal/models"
	"github.com/kubegate-io/kubegate/internal/output"
	"github.com/kubegate-io/kubegate/internal/policy"
	kube "github.com/kubegate-io/kubegate/internal/providers/kubernetes"
	"github.com/kubegate-io/kubegate/internal/rulepacks/operability"
	"github.com/kubegate-io/kubegate/internal/rulepacks/provenance"
	"github.com/kubegate-io/kubegate/internal/rulepacks/workload"
	"github.com/kubegate-io/kubegate/internal/rules"
	"github.com/kubegate-io/kubegate/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kubegate",
		Short:         "kubegate — policy gate for Kubernetes workload manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAuditCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newPolicyCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Evaluate workloads against the policy rule set",
	}
	cmd.AddCommand(newAuditManifestsCmd())
	cmd.AddCommand(newAuditClusterCmd())
	return cmd
}

// auditFlags carries the flags shared by the manifests and cluster audit
// subcommands.
type auditFlags struct {
	policyPath string
	reportFmt  string
	outputPath string
	colored    bool
}

func (f *auditFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.policyPath, "policy", "", "Path to the policy YAML file (default: built-in policy)")
	cmd.Flags().StringVar(&f.reportFmt, "report", "table", "Output format: json or table")
	cmd.Flags().StringVar(&f.outputPath, "output", "", "Write full JSON report to this file path (in addition to stdout output)")
	cmd.Flags().BoolVar(&f.colored, "colored", true, "Colorize table output")
}

func newAuditManifestsCmd() *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:   "manifests [path...]",
		Short: "Audit manifest files or directories on disk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, registry, err := setup(flags.policyPath)
			if err != nil {
				return fmt.Errorf("%w: %v", errToolingFailure, err)
			}

			manifests, parseFailures, err := manifest.ParseFiles(args)
			if err != nil {
				return fmt.Errorf("%w: %v", errToolingFailure, err)
			}

			eval := engine.New(registry, cfg, buildCheckers(cfg))
			verdicts := eval.EvaluateBatch(cmd.Context(), manifests)
			report := engine.BuildReport(strings.Join(args, ","), verdicts, parseFailures)

			return finishAudit(cmd, report, verdicts, cfg, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAuditClusterCmd() *cobra.Command {
	var (
		flags       auditFlags
		contextName string
		namespace   string
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Audit workloads running in a live cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, registry, err := setup(flags.policyPath)
			if err != nil {
				return fmt.Errorf("%w: %v", errToolingFailure, err)
			}

			provider := kube.NewDefaultKubeClientProvider()
			clientset, info, err := provider.ClientsetForContext(contextName)
			if err != nil {
				return fmt.Errorf("%w: connect to cluster: %v", errToolingFailure, err)
			}

			manifests, err := kube.CollectWorkloads(cmd.Context(), clientset, info, namespace)
			if err != nil {
				return fmt.Errorf("%w: collect workloads: %v", errToolingFailure, err)
			}

			eval := engine.New(registry, cfg, buildCheckers(cfg))
			verdicts := eval.EvaluateBatch(cmd.Context(), manifests)
			report := engine.BuildReport(info.ContextName, verdicts, nil)

			return finishAudit(cmd, report, verdicts, cfg, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&contextName, "context", "", "Kubeconfig context to use (default: current context)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace to audit (default: all namespaces)")
	return cmd
}

// finishAudit renders the report, optionally writes the JSON file, and maps
// the outcome onto the sentinel errors main understands.
func finishAudit(cmd *cobra.Command, report *models.BatchReport, verdicts []models.Verdict, cfg *policy.Config, flags auditFlags) error {
	if flags.outputPath != "" {
		if err := output.WriteReportFile(flags.outputPath, report); err != nil {
			return fmt.Errorf("%w: %v", errToolingFailure, err)
		}
	}

	switch engine.ReportFormat(flags.reportFmt) {
	case engine.ReportFormatJSON:
		if err := output.RenderJSON(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("%w: %v", errToolingFailure, err)
		}
	case engine.ReportFormatTable:
		output.RenderTable(cmd.OutOrStdout(), report, output.TableOptions{Colored: flags.colored})
	default:
		return fmt.Errorf("%w: unknown report format %q", errToolingFailure, flags.reportFmt)
	}

	failed := policy.ShouldFail(verdicts, cfg)
	switch output.ExitCode(report, failed) {
	case output.ExitToolingFailure:
		return fmt.Errorf("%w: evaluation incomplete", errToolingFailure)
	case output.ExitPolicyFailure:
		return errPolicyFailure
	}
	return nil
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the rule catalogue",
	}
	cmd.AddCommand(newRulesListCmd())
	return cmd
}

func newRulesListCmd() *cobra.Command {
	var policyPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all registered rules and whether the policy enables them",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, registry, err := setup(policyPath)
			if err != nil {
				return fmt.Errorf("%w: %v", errToolingFailure, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-28s  %-8s  %s\n", "RULE", "ENABLED", "NAME")
			fmt.Fprintf(w, "%s\n", strings.Repeat("-", 72))
			for _, r := range registry.All() {
				fmt.Fprintf(w, "%-28s  %-8t  %s\n", r.ID(), registry.Enabled(r.ID()), r.Name())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "", "Path to the policy YAML file (default: built-in policy)")
	return cmd
}

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Work with policy files",
	}
	cmd.AddCommand(newPolicyValidateCmd())
	return cmd
}

func newPolicyValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <policy-file>",
		Short: "Validate a policy file without running an audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := policy.Load(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", errToolingFailure, err)
			}
			registry, err := buildRegistry(cfg)
			if err != nil {
				return fmt.Errorf("%w: %v", errToolingFailure, err)
			}
			if errs := policy.Validate(cfg, registry.IDs()); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(os.Stderr, " -", e)
				}
				return fmt.Errorf("%w: policy file %q has %d error(s)", errToolingFailure, args[0], len(errs))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy %q is valid\n", args[0])
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// setup loads the policy (falling back to the built-in defaults when no path
// is given), builds the full rule registry, validates the two against each
// other and applies the policy's enable/disable toggles.
func setup(policyPath string) (*policy.Config, *rules.Registry, error) {
	var (
		cfg *policy.Config
		err error
	)
	if policyPath == "" {
		cfg = policy.Default()
	} else {
		cfg, err = policy.Load(policyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", errToolingFailure, err)
		}
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errToolingFailure, err)
	}

	if errs := policy.Validate(cfg, registry.IDs()); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, nil, fmt.Errorf("%w: invalid policy: %s", errToolingFailure, strings.Join(msgs, "; "))
	}
	return cfg, registry, nil
}

// buildRegistry registers every rule pack and applies the policy's per-rule
// enable toggles.
func buildRegistry(cfg *policy.Config) (*rules.Registry, error) {
	registry := rules.NewRegistry()
	if err := registry.RegisterAll(provenance.New()...); err != nil {
		return nil, err
	}
	if err := registry.RegisterAll(workload.New()...); err != nil {
		return nil, err
	}
	if err := registry.RegisterAll(operability.New()...); err != nil {
		return nil, err
	}
	for _, id := range registry.IDs() {
		if err := registry.SetEnabled(id, cfg.RuleEnabled(id)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// buildCheckers wires the external checker configuration. No checker
// implementations ship with the CLI today, so only the timeout is set; rules
// that need an absent checker degrade to a WARNING.
func buildCheckers(cfg *policy.Config) *checkers.Checkers {
	chk := &checkers.Checkers{}
	if cfg.CheckerTimeoutSeconds > 0 {
		chk.Timeout = time.Duration(cfg.CheckerTimeoutSeconds) * time.Second
	}
	return chk
}
