/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskscout/taskscout/internal/telemetry"
	"github.com/taskscout/taskscout/internal/tracker"
)

const defaultConfigYAML = `# TaskScout configuration. Every key can also be set through a TASKSCOUT_*
# environment variable, e.g. TASKSCOUT_ENGINE_MAXRECOMMENDATIONS=10.

data:
  # snapshot: sprint.json  # rank a snapshot file instead of the local store
  format: json
  store: items.db

engine:
  maxRecommendations: 5
  maxCapacity: 15
  contextPenalty: 0.0
  maxSubtasks: 8
  # weights:
  #   priority: 0.4
  #   urgency: 0.25
  #   availability: 0.2
  #   skillMatch: 0.15
  #   readiness: 0.1

# policy:
#   package: taskscout.policy
`

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize TaskScout in the current directory",
	Long: `Initialize the TaskScout project directory in the current directory.

This creates the .taskscout directory with:
  • .taskscout.yaml - project configuration
  • items.db - SQLite store for work items and policy decisions
  • reports/ - generated complexity and workload reports

Run this in your project root before using other TaskScout commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get current directory: %w", err)
		}

		cfg := GetConfig()
		rootDir := cfg.Project.RootDir
		configPath := filepath.Join(rootDir, configName+".yaml")

		// Check if already initialized
		if _, err := os.Stat(configPath); err == nil {
			fmt.Println("✓ TaskScout already initialized in this directory")
			return nil
		}

		if err := os.MkdirAll(filepath.Join(rootDir, cfg.Project.ReportsDir), 0o755); err != nil {
			return fmt.Errorf("create project directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		// Opening the store creates the database and its schema.
		store, err := tracker.OpenStore(GetStorePath())
		if err != nil {
			return fmt.Errorf("initialize item store: %w", err)
		}
		_ = store.Close()

		gitignorePath := filepath.Join(rootDir, ".gitignore")
		gitignoreContent := `# TaskScout generated/cache files
items.db
items.db-journal
items.db-wal
items.db-shm
reports/
crash_logs/
`
		if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not create .gitignore: %v\n", err)
		}

		// Warn if the project .gitignore ignores .taskscout entirely (common but
		// hides the config and policies from the team).
		if data, err := os.ReadFile(filepath.Join(cwd, ".gitignore")); err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				trimmed := strings.TrimSpace(line)
				if trimmed == ".taskscout" || trimmed == ".taskscout/" {
					fmt.Println("⚠️  Your project .gitignore ignores '.taskscout/'. Config and policies will not be committed.")
					fmt.Println("   Fix: remove that rule, and rely on '.taskscout/.gitignore' to ignore generated files.")
					break
				}
			}
		}

		fmt.Println("✓ TaskScout initialized")
		fmt.Println("")
		fmt.Println("Created:")
		fmt.Printf("  • %s\n", configPath)
		fmt.Printf("  • %s\n", GetStorePath())
		fmt.Printf("  • %s/\n", filepath.Join(rootDir, cfg.Project.ReportsDir))
		fmt.Println("")
		fmt.Println("Next steps:")
		fmt.Println("  taskscout snapshot import sprint.json")
		fmt.Println("  taskscout recommend")
		fmt.Println("  taskscout breakdown 42")
		fmt.Println("  taskscout policy init")

		// First-run consent prompt. Interactive only; a declined or failed
		// prompt must not fail init.
		if _, err := telemetry.CheckAndPromptConsent(); err != nil {
			LogError("telemetry consent prompt failed", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
