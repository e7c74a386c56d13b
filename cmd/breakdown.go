/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskscout/taskscout/internal/breakdown"
	"github.com/taskscout/taskscout/internal/policy"
	"github.com/taskscout/taskscout/internal/telemetry"
	"github.com/taskscout/taskscout/internal/tracker"
	"github.com/taskscout/taskscout/internal/ui"
	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// breakdownOutput is the JSON shape of the breakdown command. It extends the
// engine result with what happened on --apply.
type breakdownOutput struct {
	models.TaskBreakdown
	PolicyDecision *policy.PolicyDecision `json:"policyDecision,omitempty"`
	CreatedItems   []tracker.ItemRef      `json:"createdItems,omitempty"`
}

// breakdownCmd decomposes one work item into dependency-ordered subtasks.
var breakdownCmd = &cobra.Command{
	Use:     "breakdown <item-id>",
	Aliases: []string{"expand"},
	Short:   "Decompose a work item into ordered subtasks",
	Long: `Classifies the work item, derives its complexity, and expands it into
subtasks with dependencies, execution phases, and a timeline estimate.

Items below the complexity threshold get an advisory instead of a
breakdown; pass --force to decompose them anyway. With --apply the
subtasks are created as tracker items and linked back to the parent,
after the configured policies have allowed it.

Examples:
  taskscout breakdown 42
  taskscout breakdown 42 --force
  taskscout breakdown 42 --apply`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return types.NewInvalidArgument(fmt.Sprintf("invalid item ID %q", args[0]))
		}

		cfg := GetConfig()
		force, _ := cmd.Flags().GetBool("force")
		apply, _ := cmd.Flags().GetBool("apply")

		opts := breakdown.Options{
			Force:         force,
			MaxSubtasks:   cfg.Engine.MaxSubtasks,
			MinComplexity: cfg.Engine.MinComplexity,
		}
		if cmd.Flags().Changed("max-subtasks") {
			opts.MaxSubtasks, _ = cmd.Flags().GetInt("max-subtasks")
		}

		trk, cleanup, err := GetTracker()
		if err != nil {
			return fmt.Errorf("failed to open work item source: %w", err)
		}
		defer cleanup()

		ctx := cmd.Context()
		items, err := trk.FetchItems(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch work items: %w", err)
		}
		item, err := tracker.FindItem(items, id)
		if err != nil {
			return err
		}

		bd, err := breakdown.Generate(item, opts)
		if err != nil {
			return err
		}

		out := breakdownOutput{TaskBreakdown: bd}

		if apply && len(bd.Subtasks) > 0 {
			roster, err := trk.FetchRoster(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch roster: %w", err)
			}

			engine, err := newPolicyEngine(cfg)
			if err != nil {
				return fmt.Errorf("failed to load policies: %w", err)
			}
			decision, err := engine.EvaluateApply(ctx, item, &bd, roster)
			if err != nil {
				return fmt.Errorf("policy evaluation failed: %w", err)
			}
			out.PolicyDecision = decision
			recordPolicyDecision(ctx, trk, decision)

			if decision.IsDenied() {
				telemetry.TrackPolicyDenied(len(decision.Violations))
				if isJSON() {
					_ = printJSON(out)
				} else {
					fmt.Println(ui.RenderErrorPanel("Apply blocked by policy",
						"• "+strings.Join(decision.Violations, "\n• ")))
				}
				return types.NewPolicyDenied(decision.Violations)
			}
			if !isJSON() {
				for _, w := range decision.Warnings {
					fmt.Println(ui.StyleWarning.Render("warning: ") + w)
				}
			}

			refs := make([]tracker.ItemRef, 0, len(bd.Subtasks))
			for _, st := range bd.Subtasks {
				ref, err := trk.CreateItem(ctx, tracker.NewItem{
					Title:    st.Title,
					Body:     subtaskBody(item, st),
					Labels:   st.Labels,
					Assignee: st.Assignee,
				})
				if err != nil {
					return fmt.Errorf("failed to create subtask %q: %w", st.Title, err)
				}
				refs = append(refs, ref)
			}
			if err := trk.AddChecklist(ctx, item.ID, refs); err != nil {
				return fmt.Errorf("failed to link subtasks to #%d: %w", item.ID, err)
			}
			out.CreatedItems = refs
			telemetry.TrackBreakdownApplied(len(refs), engine.PolicyCount() > 0)
		}

		if isJSON() {
			return printJSON(out)
		}

		renderBreakdown(bd)
		if len(out.CreatedItems) > 0 {
			fmt.Println()
			fmt.Println(ui.RenderSuccessPanel("Subtasks created",
				fmt.Sprintf("%d tracker items created and linked to #%d.", len(out.CreatedItems), item.ID)))
			for _, ref := range out.CreatedItems {
				fmt.Printf("  #%s %s\n", ref.ID, ref.Title)
			}
		}
		return nil
	},
}

// subtaskBody renders the tracker item body for one generated subtask.
func subtaskBody(parent models.WorkItem, st models.SubTask) string {
	var b strings.Builder
	b.WriteString(st.Description)
	fmt.Fprintf(&b, "\n\nPart of #%d %s.\n", parent.ID, parent.Title)

	if len(st.Dependencies) > 0 {
		b.WriteString("\nDepends on:\n")
		for _, dep := range st.Dependencies {
			fmt.Fprintf(&b, "- %s\n", dep)
		}
	}
	if len(st.AcceptanceCriteria) > 0 {
		b.WriteString("\nAcceptance criteria:\n")
		for _, ac := range st.AcceptanceCriteria {
			fmt.Fprintf(&b, "- [ ] %s\n", ac)
		}
	}
	return b.String()
}

func renderBreakdown(bd models.TaskBreakdown) {
	fmt.Println(ui.RenderPageHeader(fmt.Sprintf("Breakdown for #%d", bd.ItemID), bd.ItemTitle))

	if bd.Advisory != "" {
		fmt.Println(ui.RenderWarningPanel("Advisory", bd.Advisory))
	}
	if len(bd.Subtasks) == 0 {
		return
	}

	fmt.Printf("Complexity: %d original, %d total across %d subtasks\n",
		bd.OriginalComplexity, bd.TotalComplexity, len(bd.Subtasks))
	if bd.Timeline != "" {
		fmt.Printf("Timeline:   %s (critical path depth %d)\n", bd.Timeline, bd.CriticalPathDepth)
	}
	if bd.RecommendedApproach != "" {
		fmt.Printf("Approach:   %s\n", bd.RecommendedApproach)
	}

	fmt.Println()
	fmt.Println(ui.StyleSectionTitle.Render("Subtasks"))
	for i, st := range bd.Subtasks {
		fmt.Printf("  %d. [%s/%s] %s (complexity %d, ~%.0fh)\n",
			i+1, st.Category, st.Priority, st.Title, st.Complexity, st.EstimatedHours)
		if st.Description != "" {
			fmt.Printf("     %s\n", st.Description)
		}
		if len(st.Dependencies) > 0 {
			fmt.Printf("     depends on: %s\n", strings.Join(st.Dependencies, ", "))
		}
	}

	if len(bd.Phases) > 0 {
		fmt.Println()
		fmt.Println(ui.StyleSectionTitle.Render("Execution phases"))
		for i, phase := range bd.Phases {
			fmt.Printf("  Phase %d: %s\n", i+1, strings.Join(phase, ", "))
		}
	}

	if len(bd.RiskAssessment) > 0 {
		fmt.Println()
		fmt.Println(ui.StyleSectionTitle.Render("Risks"))
		for _, risk := range bd.RiskAssessment {
			fmt.Printf("  • %s\n", risk)
		}
	}
}

func init() {
	rootCmd.AddCommand(breakdownCmd)

	breakdownCmd.Flags().Bool("force", false, "Decompose even below the complexity threshold")
	breakdownCmd.Flags().Bool("apply", false, "Create the subtasks as tracker items (after policy checks)")
	breakdownCmd.Flags().Int("max-subtasks", 0, "Maximum number of subtasks (default from config)")
}
