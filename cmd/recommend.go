/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskscout/taskscout/internal/recommend"
	"github.com/taskscout/taskscout/internal/ui"
	"github.com/taskscout/taskscout/internal/watch"
	"github.com/taskscout/taskscout/types"
)

// recommendCmd ranks the open work items and suggests what to pick up next.
var recommendCmd = &cobra.Command{
	Use:     "recommend",
	Aliases: []string{"next"},
	Short:   "Recommend the next work items to pick up",
	Long: `Scores every open work item on priority, deadline urgency, assignee
availability, skill match, and dependency readiness, then prints the top
candidates with the reasoning behind each score.

By default blocked items are dropped; pass --include-blocked to keep them
with their blockers listed. With --watch the snapshot file is observed and
the ranking reprinted whenever it changes.

Examples:
  taskscout recommend
  taskscout recommend --assignee alice --max 3
  taskscout recommend --min-priority high --include-blocked
  taskscout recommend --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		opts, err := recommendOptions(cmd, cfg)
		if err != nil {
			return err
		}

		trk, cleanup, err := GetTracker()
		if err != nil {
			return fmt.Errorf("failed to open work item source: %w", err)
		}
		defer cleanup()

		ctx := cmd.Context()
		if len(opts.Roster) == 0 {
			roster, err := trk.FetchRoster(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch roster: %w", err)
			}
			opts.Roster = roster
		}

		interactive, _ := cmd.Flags().GetBool("interactive")
		watchMode, _ := cmd.Flags().GetBool("watch")
		if interactive && watchMode {
			return fmt.Errorf("--interactive and --watch cannot be combined")
		}

		rank := func() error {
			items, err := trk.FetchItems(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch work items: %w", err)
			}
			result, err := recommend.Rank(items, opts)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(result)
			}
			if interactive && ui.IsInteractive() {
				return ui.BrowseRecommendations(result.Recommendations)
			}
			renderRecommendations(result)
			return nil
		}

		if !watchMode {
			return rank()
		}

		if cfg.Data.Snapshot == "" {
			return fmt.Errorf("--watch requires a snapshot file (set data.snapshot in %s.yaml)", configName)
		}

		watcher, err := watch.New(cfg.Data.Snapshot, 0)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.Data.Snapshot, err)
		}
		defer func() { _ = watcher.Close() }()

		if err := rank(); err != nil {
			PrintError("Could not rank work items", err)
		}
		fmt.Fprintf(os.Stderr, "\nWatching %s for changes. Press Ctrl-C to stop.\n", cfg.Data.Snapshot)

		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return watcher.Run(watchCtx, func() error {
			fmt.Fprintf(os.Stderr, "\nSnapshot changed, re-ranking...\n")
			return rank()
		}, func(err error) {
			PrintError("Could not rank work items", err)
		})
	},
}

// recommendOptions merges configured engine settings with any flags the user
// set on this invocation.
func recommendOptions(cmd *cobra.Command, cfg *types.AppConfig) (recommend.Options, error) {
	opts := recommend.Options{
		ContextPenalty: cfg.Engine.ContextPenalty,
		MaxResults:     cfg.Engine.MaxRecommendations,
		MaxCapacity:    cfg.Engine.MaxCapacity,
		Weights:        cfg.Engine.Weights,
	}

	flags := cmd.Flags()
	opts.Assignee, _ = flags.GetString("assignee")
	opts.MinPriority, _ = flags.GetString("min-priority")
	opts.IncludeBlocked, _ = flags.GetBool("include-blocked")
	if flags.Changed("max") {
		opts.MaxResults, _ = flags.GetInt("max")
	}
	if flags.Changed("penalty") {
		opts.ContextPenalty, _ = flags.GetFloat64("penalty")
	}
	if flags.Changed("roster") {
		opts.Roster, _ = flags.GetStringSlice("roster")
	}

	if opts.MaxResults < 1 {
		return recommend.Options{}, fmt.Errorf("--max must be at least 1")
	}
	if opts.ContextPenalty < 0 || opts.ContextPenalty > 1 {
		return recommend.Options{}, fmt.Errorf("--penalty must be between 0 and 1")
	}
	return opts, nil
}

func renderRecommendations(result recommend.Result) {
	if len(result.Recommendations) == 0 {
		msg := result.Message
		if msg == "" {
			msg = "No work items to recommend."
		}
		fmt.Println(ui.RenderWarningPanel("No recommendations", msg))
		return
	}

	fmt.Println(ui.RenderPageHeader("Recommended work items", fmt.Sprintf("%d candidate(s)", len(result.Recommendations))))

	table := ui.NewTable(
		ui.Column{Title: "#", Numeric: true},
		ui.Column{Title: "Score", Numeric: true},
		ui.Column{Title: "ID"},
		ui.Column{Title: "Title", Max: 48},
		ui.Column{Title: "Assignees", Max: 24},
	)
	for i, rec := range result.Recommendations {
		assignees := strings.Join(rec.Item.Assignees, ", ")
		if assignees == "" {
			assignees = "—"
		}
		table.AddRow(
			strconv.Itoa(i+1),
			fmt.Sprintf("%.2f", rec.Score.Total),
			fmt.Sprintf("#%d", rec.Item.ID),
			rec.Item.Title,
			assignees,
		)
	}
	fmt.Println(table.Render())

	for i, rec := range result.Recommendations {
		score := ui.ScoreStyle(rec.Score.Total).Render(fmt.Sprintf("%.2f", rec.Score.Total))
		fmt.Printf("%d. %s #%d %s\n", i+1, score, rec.Item.ID, rec.Item.Title)
		fmt.Printf("   %s\n", rec.Reasoning)
		if len(rec.Score.Blockers) > 0 {
			fmt.Printf("   %s %s\n", ui.StyleError.Render("blocked:"), strings.Join(rec.Score.Blockers, "; "))
		}
	}

	best := result.Recommendations[0].Item
	fmt.Println()
	fmt.Println("Suggested actions:")
	fmt.Printf("  • Break down: taskscout breakdown %d\n", best.ID)
	fmt.Printf("  • Team load:  taskscout workload\n")
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().String("assignee", "", "Only consider items assigned to this user")
	recommendCmd.Flags().String("min-priority", "", "Lowest priority class to keep (critical|high|medium|low|lowest)")
	recommendCmd.Flags().Bool("include-blocked", false, "Keep blocked items in the ranking")
	recommendCmd.Flags().Int("max", 0, "Maximum number of recommendations (default from config)")
	recommendCmd.Flags().Float64("penalty", 0, "Context-switch penalty for already-assigned items (0-1)")
	recommendCmd.Flags().StringSlice("roster", nil, "Team roster to score availability against (default from source)")
	recommendCmd.Flags().BoolP("interactive", "i", false, "Browse recommendations in an interactive list")
	recommendCmd.Flags().Bool("watch", false, "Re-rank whenever the snapshot file changes")
}
