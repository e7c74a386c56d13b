/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/v1/bundle"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/taskscout/taskscout/internal/breakdown"
	"github.com/taskscout/taskscout/internal/policy"
	"github.com/taskscout/taskscout/internal/tracker"
	"github.com/taskscout/taskscout/types"
)

// DefaultRegoPolicy is the default policy file content.
const DefaultRegoPolicy = `# TaskScout Default Policy
# Guardrails applied before a generated breakdown is written to the tracker.
# Learn more: https://www.openpolicyagent.org/docs/latest/policy-language/

package taskscout.policy

import rego.v1

# ═══════════════════════════════════════════════════════════════════════════════
# HELPER RULES
# ═══════════════════════════════════════════════════════════════════════════════

# Labels that mark items nobody should decompose automatically.
protected_labels := {"protected", "locked", "security-review"}

roster_member(name) if {
    some member in input.roster
    member == name
}

# ═══════════════════════════════════════════════════════════════════════════════
# GUARDRAILS - applying a breakdown is blocked when any of these fire
# ═══════════════════════════════════════════════════════════════════════════════

deny contains msg if {
    some label in input.item.labels
    label in protected_labels
    msg := sprintf("BLOCKED: item #%d carries the protected label '%s'", [input.item.id, label])
}

deny contains msg if {
    input.breakdown.subtask_count > 12
    msg := sprintf("BLOCKED: %d subtasks exceeds the limit of 12 - split the item first", [input.breakdown.subtask_count])
}

deny contains msg if {
    input.breakdown.max_subtask_complexity > 6
    msg := sprintf("BLOCKED: a subtask with complexity %d would itself need decomposition", [input.breakdown.max_subtask_complexity])
}

# ═══════════════════════════════════════════════════════════════════════════════
# WARNINGS - advisory messages that never block
# ═══════════════════════════════════════════════════════════════════════════════

warn contains msg if {
    taskscout.timeline_days(input.breakdown.timeline) > 21
    msg := sprintf("WARNING: estimated timeline '%s' runs past three weeks", [input.breakdown.timeline])
}

warn contains msg if {
    count(input.roster) > 0
    some assignee in input.item.assignees
    not roster_member(assignee)
    msg := sprintf("WARNING: assignee '%s' is not on the team roster", [assignee])
}
`

// policyCmd represents the policy parent command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage the policies that gate breakdown application",
	Long: `Manage Open Policy Agent (OPA) policies that gate 'taskscout breakdown --apply'.

Policies are written in Rego and loaded from .taskscout/policies/*.rego.
Rules in the configured package (default taskscout.policy) that produce
"deny" strings block the apply; "warn" strings are shown but never block.

Examples:
  taskscout policy init      # Create the default policy file
  taskscout policy list      # List loaded policies
  taskscout policy check 42  # Dry-run the gate for work item 42
  taskscout policy test      # Run *_test.rego unit tests
  taskscout policy audit     # Show recorded policy decisions`,
}

// policyInitCmd creates the default policy file
var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the default policy file",
	Long: `Create the default policy file in the policies directory.

The default policy:
  • Blocks applying breakdowns to items labelled protected, locked, or security-review
  • Blocks breakdowns with more than 12 subtasks
  • Blocks breakdowns containing a subtask of complexity 7 or above
  • Warns when the estimated timeline runs past three weeks
  • Warns when an assignee is missing from the team roster

You can customize this file or add additional .rego files.`,
	RunE: runPolicyInit,
}

// policyListCmd lists loaded policies
var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded policies",
	RunE:  runPolicyList,
}

// policyCheckCmd dry-runs the apply gate for one work item
var policyCheckCmd = &cobra.Command{
	Use:   "check <item-id>",
	Short: "Dry-run the apply gate for a work item",
	Long: `Generate a breakdown for the given work item and evaluate it against the
loaded policies without writing anything.

This previews exactly what 'taskscout breakdown <item-id> --apply' would be
allowed to do. Nothing is created and no decision is recorded.

Examples:
  taskscout policy check 42
  taskscout policy check 42 --force --max-subtasks 10`,
	Args: cobra.ExactArgs(1),
	RunE: runPolicyCheck,
}

// policyTestCmd runs OPA policy tests
var policyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run policy unit tests",
	Long: `Run OPA unit tests from *_test.rego files in the policies directory,
or from a bundle archive when --bundle is given.

Test file example (.taskscout/policies/default_test.rego):
  package taskscout.policy_test

  import rego.v1
  import data.taskscout.policy

  test_deny_oversized_breakdown if {
      count(policy.deny) > 0 with input as {"item": {"id": 1, "labels": []}, "breakdown": {"subtask_count": 20}}
  }`,
	RunE: runPolicyTest,
}

// policyAuditCmd lists recorded policy decisions
var policyAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recorded policy decisions",
	Long: `List the policy decisions recorded by 'taskscout breakdown --apply'.

Decisions are stored in the local item store, so nothing is recorded when
a snapshot file backend is configured.

Examples:
  taskscout policy audit
  taskscout policy audit --item 42
  taskscout policy audit --result deny --since 72h
  taskscout policy audit --prune 720h  # Drop decisions older than 30 days`,
	RunE: runPolicyAudit,
}

var policyTestBundle string

func init() {
	rootCmd.AddCommand(policyCmd)

	policyCmd.AddCommand(policyInitCmd)
	policyCmd.AddCommand(policyListCmd)
	policyCmd.AddCommand(policyCheckCmd)
	policyCmd.AddCommand(policyTestCmd)
	policyCmd.AddCommand(policyAuditCmd)

	policyCheckCmd.Flags().Bool("force", false, "Preview the breakdown even for low-complexity items")
	policyCheckCmd.Flags().Int("max-subtasks", 0, "Maximum number of subtasks in the previewed breakdown")

	policyTestCmd.Flags().StringVar(&policyTestBundle, "bundle", "", "Run tests from an OPA bundle archive instead of loose files")

	policyAuditCmd.Flags().Int("item", 0, "Only decisions about this work item")
	policyAuditCmd.Flags().String("result", "", "Only decisions with this result (allow or deny)")
	policyAuditCmd.Flags().Duration("since", 0, "Only decisions newer than this (e.g. 72h)")
	policyAuditCmd.Flags().Int("limit", 20, "Maximum number of decisions to show")
	policyAuditCmd.Flags().Duration("prune", 0, "Delete decisions older than this and exit")
}

// policiesDir resolves the directory scanned for .rego files. A relative
// policy.dir is taken against the project root dir.
func policiesDir(cfg *types.AppConfig) string {
	dir := cfg.Policy.Dir
	switch {
	case dir == "":
		return filepath.Join(cfg.Project.RootDir, policy.DefaultPoliciesDir)
	case filepath.IsAbs(dir):
		return dir
	default:
		return filepath.Join(cfg.Project.RootDir, dir)
	}
}

// newPolicyEngine builds the engine commands use to gate tracker writes.
func newPolicyEngine(cfg *types.AppConfig) (*policy.Engine, error) {
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}
	return policy.NewEngine(policy.EngineConfig{
		WorkDir:       workDir,
		PoliciesDir:   policiesDir(cfg),
		PolicyPackage: cfg.Policy.Package,
	})
}

// recordPolicyDecision persists the decision when the backend is the local
// store. Snapshot files have nowhere to keep an audit trail, and a failed
// write never blocks the command it gates.
func recordPolicyDecision(ctx context.Context, trk tracker.Tracker, decision *policy.PolicyDecision) {
	store, ok := trk.(*tracker.Store)
	if !ok {
		return
	}
	audit, err := policy.NewAuditStore(store.DB())
	if err != nil {
		LogError("open audit store", err)
		return
	}
	if err := audit.SaveDecision(ctx, decision); err != nil {
		LogError("record policy decision", err)
	}
}

func runPolicyInit(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	dir := policiesDir(cfg)
	defaultPolicyPath := filepath.Join(dir, "default.rego")

	if _, err := os.Stat(defaultPolicyPath); err == nil {
		cmd.Printf("Policy file already exists: %s\n", defaultPolicyPath)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create policies directory: %w", err)
	}
	if err := os.WriteFile(defaultPolicyPath, []byte(DefaultRegoPolicy), 0o644); err != nil {
		return fmt.Errorf("write default policy: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]any{
			"created": defaultPolicyPath,
			"status":  "success",
		})
	}

	cmd.Printf("✓ Created default policy: %s\n", defaultPolicyPath)
	cmd.Println("\nThe default policy:")
	cmd.Println("  • Blocks items labelled protected, locked, or security-review")
	cmd.Println("  • Blocks breakdowns with more than 12 subtasks")
	cmd.Println("  • Blocks subtasks of complexity 7 or above")
	cmd.Println("  • Warns on timelines past three weeks and off-roster assignees")
	cmd.Printf("\nCustomize this file or add more .rego files to %s\n", dir)

	return nil
}

func runPolicyList(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	dir := policiesDir(cfg)

	policies, err := policy.LoadDir(afero.NewOsFs(), dir)
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]any{
			"policies_dir": dir,
			"count":        len(policies),
			"policies":     policies,
			"builtins":     policy.GetBuiltinNames(),
		})
	}

	if len(policies) == 0 {
		cmd.Println("No policies loaded.")
		cmd.Println("Run 'taskscout policy init' to create the default policy.")
		return nil
	}

	cmd.Printf("Policies directory: %s\n", dir)
	cmd.Printf("Loaded %d policy file(s):\n\n", len(policies))

	// The syntax check compiles each file, and compiling a rule that calls
	// taskscout.* requires the built-ins to be registered.
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}
	policy.RegisterBuiltins(policy.NewBuiltinContext(workDir))

	var broken int
	for _, p := range policies {
		if err := policy.ValidatePolicy(p.Content); err != nil {
			broken++
			cmd.Printf("  ✗ %s (%s): %v\n", p.Name, p.Path, err)
			continue
		}
		cmd.Printf("  • %s (%s)\n", p.Name, p.Path)
	}

	cmd.Println("\nCustom built-ins available to rules:")
	for _, name := range policy.GetBuiltinNames() {
		cmd.Printf("  %s\n", name)
	}

	if broken > 0 {
		return fmt.Errorf("%d policy file(s) failed to compile", broken)
	}
	return nil
}

func runPolicyCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return types.NewInvalidArgument(fmt.Sprintf("invalid work item id %q", args[0]))
	}

	opts := breakdown.Options{
		MaxSubtasks:   cfg.Engine.MaxSubtasks,
		MinComplexity: cfg.Engine.MinComplexity,
	}
	opts.Force, _ = cmd.Flags().GetBool("force")
	if cmd.Flags().Changed("max-subtasks") {
		opts.MaxSubtasks, _ = cmd.Flags().GetInt("max-subtasks")
	}

	trk, cleanup, err := GetTracker()
	if err != nil {
		return err
	}
	defer cleanup()

	items, err := trk.FetchItems(ctx)
	if err != nil {
		return err
	}
	item, err := tracker.FindItem(items, id)
	if err != nil {
		return err
	}

	bd, err := breakdown.Generate(item, opts)
	if err != nil {
		return err
	}

	engine, err := newPolicyEngine(cfg)
	if err != nil {
		return fmt.Errorf("create policy engine: %w", err)
	}
	if engine.PolicyCount() == 0 {
		if isJSON() {
			return printJSON(map[string]any{
				"status":  "allow",
				"message": "No policies loaded - everything is allowed",
				"item":    id,
			})
		}
		cmd.Println("No policies loaded - everything is allowed by default.")
		cmd.Println("Run 'taskscout policy init' to create the default policy.")
		return nil
	}

	roster, err := trk.FetchRoster(ctx)
	if err != nil {
		return err
	}

	// Dry run: nothing is created and no decision is recorded.
	decision, err := engine.EvaluateApply(ctx, item, &bd, roster)
	if err != nil {
		return fmt.Errorf("evaluate policies: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]any{
			"status":      decision.Result,
			"decision_id": decision.DecisionID,
			"item":        id,
			"subtasks":    len(bd.Subtasks),
			"violations":  decision.Violations,
			"warnings":    decision.Warnings,
		})
	}

	cmd.Printf("Checking a %d-subtask breakdown of #%d against %d policy file(s)...\n\n",
		len(bd.Subtasks), id, engine.PolicyCount())

	for _, w := range decision.Warnings {
		cmd.Printf("  ! %s\n", w)
	}

	if decision.IsAllowed() {
		cmd.Println("✓ Applying this breakdown would pass policy checks")
		return nil
	}

	cmd.Println("✗ Policy violations detected:")
	for _, v := range decision.Violations {
		cmd.Printf("  %s\n", v)
	}

	// Non-zero exit for CI use.
	return fmt.Errorf("policy check failed with %d violation(s)", len(decision.Violations))
}

func runPolicyTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	dir := policiesDir(cfg)

	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}
	runner := policy.NewTestRunner(nil, dir, workDir)

	var summary *policy.TestSummary
	if policyTestBundle != "" {
		f, err := os.Open(policyTestBundle)
		if err != nil {
			return fmt.Errorf("open bundle: %w", err)
		}
		defer func() { _ = f.Close() }()

		b, err := bundle.NewReader(f).Read()
		if err != nil {
			return fmt.Errorf("read bundle %s: %w", policyTestBundle, err)
		}
		summary, err = runner.RunBundle(ctx, &b)
		if err != nil {
			return fmt.Errorf("run bundle tests: %w", err)
		}
	} else {
		hasTests, err := runner.HasTests()
		if err != nil {
			return fmt.Errorf("check for test files: %w", err)
		}
		if !hasTests {
			if isJSON() {
				return printJSON(map[string]any{
					"status":  "success",
					"message": "No test files found",
					"tests":   0,
				})
			}
			cmd.Println("No test files found in", dir)
			cmd.Println("\nCreate *_test.rego files to add policy tests.")
			cmd.Println("Example: .taskscout/policies/default_test.rego")
			return nil
		}

		summary, err = runner.Run(ctx)
		if err != nil {
			return fmt.Errorf("run tests: %w", err)
		}
	}

	if isJSON() {
		return printJSON(map[string]any{
			"status":   "success",
			"passed":   summary.Passed,
			"failed":   summary.Failed,
			"errored":  summary.Errored,
			"skipped":  summary.Skipped,
			"total":    summary.Total,
			"duration": summary.Duration.String(),
			"results":  summary.Results,
		})
	}

	if policyTestBundle != "" {
		cmd.Printf("Running policy tests from bundle %s...\n\n", policyTestBundle)
	} else {
		cmd.Printf("Running policy tests in %s...\n\n", dir)
	}

	for _, result := range summary.Results {
		// Show just the rule name, not the full data path.
		name := result.Name
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[idx+1:]
		}

		switch result.Status {
		case policy.StatusPass:
			cmd.Printf("  ✓ %s (%s)\n", name, result.Duration.Round(time.Millisecond))
		case policy.StatusFail:
			cmd.Printf("  ✗ %s: FAIL\n", name)
		case policy.StatusError:
			cmd.Printf("  ✗ %s: %s\n", name, result.Error)
		case policy.StatusSkip:
			cmd.Printf("  - %s: skipped\n", name)
		}

		for _, out := range result.Output {
			cmd.Printf("      %s\n", out)
		}
	}

	cmd.Print(summary.FormatSummary())

	if !summary.AllPassed() {
		return fmt.Errorf("policy tests failed: %d failures, %d errors", summary.Failed, summary.Errored)
	}

	return nil
}

func runPolicyAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	storePath := GetStorePath()
	store, err := tracker.OpenStore(storePath)
	if err != nil {
		return fmt.Errorf("failed to open item store at %s: %w", storePath, err)
	}
	defer func() { _ = store.Close() }()

	audit, err := policy.NewAuditStore(store.DB())
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}

	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		pruned, err := audit.PruneOldDecisions(ctx, prune)
		if err != nil {
			return fmt.Errorf("prune decisions: %w", err)
		}
		if isJSON() {
			return printJSON(map[string]any{"pruned": pruned})
		}
		cmd.Printf("Pruned %d decision(s) older than %s\n", pruned, prune)
		return nil
	}

	opts := policy.ListDecisionsOptions{}
	opts.ItemID, _ = cmd.Flags().GetInt("item")
	opts.Result, _ = cmd.Flags().GetString("result")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
		opts.Since = time.Now().UTC().Add(-since)
	}

	decisions, err := audit.ListDecisions(ctx, opts)
	if err != nil {
		return fmt.Errorf("list decisions: %w", err)
	}

	if isJSON() {
		return printJSON(decisions)
	}

	if len(decisions) == 0 {
		cmd.Println("No policy decisions recorded.")
		cmd.Println("Decisions are recorded when 'taskscout breakdown --apply' runs against the local store.")
		return nil
	}

	cmd.Printf("%d policy decision(s), newest first:\n\n", len(decisions))
	for _, d := range decisions {
		mark := "✓"
		if d.IsDenied() {
			mark = "✗"
		}
		itemRef := "—"
		if d.ItemID != 0 {
			itemRef = fmt.Sprintf("#%d", d.ItemID)
		}
		cmd.Printf("  %s %s  %-5s  %s\n", mark, d.EvaluatedAt.Local().Format("2006-01-02 15:04"), itemRef, d.Result)
		for _, v := range d.Violations {
			cmd.Printf("      %s\n", v)
		}
		for _, w := range d.Warnings {
			cmd.Printf("      %s\n", w)
		}
	}

	return nil
}
