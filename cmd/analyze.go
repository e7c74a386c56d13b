/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskscout/taskscout/internal/scoring"
	"github.com/taskscout/taskscout/internal/ui"
	"github.com/taskscout/taskscout/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze work item complexity and generate a report",
	Long: `Scores every open work item on the 1-8 complexity scale and saves a JSON
report listing the scores, the reasoning, and which items are worth
running "taskscout breakdown" on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		outputFile, _ := cmd.Flags().GetString("file")
		if outputFile == "" {
			outputFile = filepath.Join(cfg.Project.RootDir, cfg.Project.ReportsDir, "complexity-report.json")
		}

		trk, cleanup, err := GetTracker()
		if err != nil {
			return fmt.Errorf("failed to open work item source: %w", err)
		}
		defer cleanup()

		items, err := trk.FetchItems(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch work items: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No work items found to analyze.")
			return nil
		}

		keywords := scoring.GetKeywordConfig()
		entries := make([]types.ItemComplexity, 0, len(items))
		for _, item := range items {
			score, reason := scoring.ComplexityReasons(scoring.Classify(item, keywords))
			entries = append(entries, types.ItemComplexity{
				ItemID:           item.ID,
				Title:            item.Title,
				Score:            score,
				Reason:           reason,
				BreakdownCommand: fmt.Sprintf("taskscout breakdown %d", item.ID),
			})
		}

		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Score != entries[j].Score {
				return entries[i].Score > entries[j].Score
			}
			return entries[i].ItemID < entries[j].ItemID
		})

		stats := types.ComplexityStats{Total: len(entries)}
		for _, e := range entries {
			switch {
			case e.Score <= 2:
				stats.Low++
			case e.Score <= 5:
				stats.Medium++
			default:
				stats.High++
			}
		}

		report := types.ComplexityReport{
			GeneratedAtISO: time.Now().UTC().Format(time.RFC3339),
			Items:          entries,
			Stats:          stats,
		}

		if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		if err := os.WriteFile(outputFile, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		if isJSON() {
			return printJSON(report)
		}

		fmt.Println(ui.RenderPageHeader("Complexity analysis",
			fmt.Sprintf("%d items: %d low, %d medium, %d high", stats.Total, stats.Low, stats.Medium, stats.High)))

		shown := entries
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, e := range shown {
			fmt.Printf("  %d  #%-5d %s\n", e.Score, e.ItemID, e.Title)
		}
		if len(entries) > len(shown) {
			fmt.Printf("  ... and %d more\n", len(entries)-len(shown))
		}
		fmt.Printf("\nComplexity report generated: %s\n", outputFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("file", "", "Path to save the complexity report JSON (default under the reports dir)")
}
