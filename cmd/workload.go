/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taskscout/taskscout/internal/ui"
	"github.com/taskscout/taskscout/internal/workload"
)

// workloadCmd summarizes how much open work each team member carries.
var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Show the current load per team member",
	Long: `Builds the per-person workload model from the open work items: complexity
points carried, capacity headroom, availability, and observed skill areas.

The roster comes from the snapshot or store; override it with --roster.

Examples:
  taskscout workload
  taskscout workload --roster alice,bob,carol`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

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

		roster, _ := cmd.Flags().GetStringSlice("roster")
		if len(roster) == 0 {
			roster, err = trk.FetchRoster(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch roster: %w", err)
			}
		}

		workloads := workload.Build(items, roster, cfg.Engine.MaxCapacity)
		if isJSON() {
			return printJSON(workloads)
		}

		if len(workloads) == 0 {
			fmt.Println(ui.RenderWarningPanel("No team members",
				"No roster configured and no assignees found in the work items."))
			return nil
		}

		fmt.Println(ui.RenderPageHeader("Team workload", fmt.Sprintf("%d member(s)", len(workloads))))

		titler := cases.Title(language.English)
		table := ui.NewTable(
			ui.Column{Title: "Member"},
			ui.Column{Title: "Load", Numeric: true},
			ui.Column{Title: "Availability", Numeric: true},
			ui.Column{Title: "Skills", Max: 32},
			ui.Column{Title: "Velocity", Numeric: true},
		)
		for _, w := range workloads {
			skills := make([]string, len(w.SkillAreas))
			for i, s := range w.SkillAreas {
				skills[i] = titler.String(s)
			}
			skillCol := strings.Join(skills, ", ")
			if skillCol == "" {
				skillCol = "—"
			}
			table.AddRow(
				w.Username,
				fmt.Sprintf("%d/%d", w.CurrentWorkload, w.MaxCapacity),
				fmt.Sprintf("%.2f", w.AvailabilityScore),
				skillCol,
				strconv.Itoa(w.RecentVelocity),
			)
		}
		fmt.Println(table.Render())

		overloaded := 0
		for _, w := range workloads {
			if w.CurrentWorkload >= w.MaxCapacity {
				overloaded++
			}
		}
		if overloaded > 0 {
			fmt.Println(ui.StyleWarning.Render(fmt.Sprintf("%d member(s) at or over capacity.", overloaded)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workloadCmd)

	workloadCmd.Flags().StringSlice("roster", nil, "Team roster to evaluate (default from source)")
}
