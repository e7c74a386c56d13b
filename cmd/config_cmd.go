/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskscout/taskscout/internal/telemetry"
)

// configShowCmd shows the resolved configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGet(cmd, args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigSet(cmd, args[0], args[1])
	},
}

// Telemetry subcommands
var configTelemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage telemetry settings",
	Long: `View and manage anonymous usage telemetry settings.

TaskScout collects anonymous usage data to improve the tool:
  - Command names and execution duration
  - Success/failure status
  - OS and architecture
  - CLI version

No item content, file paths, or personal data is ever collected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryStatus(cmd)
	},
}

var configTelemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current telemetry status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryStatus(cmd)
	},
}

var configTelemetryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryEnable(cmd)
	},
}

var configTelemetryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryDisable(cmd)
	},
}

// configCmd is the parent config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage TaskScout configuration",
	Long: `View and manage TaskScout configuration settings.

Running without a subcommand prints the resolved configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd)
	},
}

// telemetryCmd is the top-level shorthand for `config telemetry`.
var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage telemetry settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryStatus(cmd)
	},
}

var telemetryOnCmd = &cobra.Command{
	Use:     "on",
	Aliases: []string{"enable"},
	Short:   "Enable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryEnable(cmd)
	},
}

var telemetryOffCmd = &cobra.Command{
	Use:     "off",
	Aliases: []string{"disable"},
	Short:   "Disable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryDisable(cmd)
	},
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current telemetry status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelemetryStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configCmd.AddCommand(configTelemetryCmd)
	configTelemetryCmd.AddCommand(configTelemetryStatusCmd)
	configTelemetryCmd.AddCommand(configTelemetryEnableCmd)
	configTelemetryCmd.AddCommand(configTelemetryDisableCmd)

	rootCmd.AddCommand(telemetryCmd)
	telemetryCmd.AddCommand(telemetryOnCmd)
	telemetryCmd.AddCommand(telemetryOffCmd)
	telemetryCmd.AddCommand(telemetryStatusCmd)
}

func runConfigShow(cmd *cobra.Command) error {
	cfg := GetConfig()

	if isJSON() {
		return printJSON(map[string]any{
			"config_file": viper.ConfigFileUsed(),
			"project": map[string]any{
				"root_dir":    cfg.Project.RootDir,
				"reports_dir": cfg.Project.ReportsDir,
			},
			"data": map[string]any{
				"snapshot": cfg.Data.Snapshot,
				"format":   cfg.Data.Format,
				"store":    GetStorePath(),
			},
			"engine": map[string]any{
				"weights": map[string]any{
					"priority":     cfg.Engine.Weights.Priority,
					"urgency":      cfg.Engine.Weights.Urgency,
					"availability": cfg.Engine.Weights.Availability,
					"skill_match":  cfg.Engine.Weights.SkillMatch,
					"readiness":    cfg.Engine.Weights.Readiness,
				},
				"max_recommendations": cfg.Engine.MaxRecommendations,
				"max_capacity":        cfg.Engine.MaxCapacity,
				"context_penalty":     cfg.Engine.ContextPenalty,
				"max_subtasks":        cfg.Engine.MaxSubtasks,
				"min_complexity":      cfg.Engine.MinComplexity,
			},
			"policy": map[string]any{
				"dir":     policiesDir(cfg),
				"package": cfg.Policy.Package,
			},
		})
	}

	cmd.Println("TaskScout Configuration")
	cmd.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cmd.Println()

	cmd.Println("## Project")
	cmd.Printf("  rootDir:    %s\n", cfg.Project.RootDir)
	cmd.Printf("  reportsDir: %s\n", cfg.Project.ReportsDir)

	cmd.Println()
	cmd.Println("## Data")
	source := "local store"
	if cfg.Data.Snapshot != "" {
		source = cfg.Data.Snapshot
	}
	cmd.Printf("  source: %s\n", source)
	cmd.Printf("  format: %s\n", cfg.Data.Format)
	cmd.Printf("  store:  %s\n", GetStorePath())

	cmd.Println()
	cmd.Println("## Engine")
	w := cfg.Engine.Weights
	cmd.Printf("  weights:            priority=%.2f urgency=%.2f availability=%.2f skillMatch=%.2f readiness=%.2f\n",
		w.Priority, w.Urgency, w.Availability, w.SkillMatch, w.Readiness)
	cmd.Printf("  maxRecommendations: %d\n", cfg.Engine.MaxRecommendations)
	cmd.Printf("  maxCapacity:        %d\n", cfg.Engine.MaxCapacity)
	cmd.Printf("  contextPenalty:     %.2f\n", cfg.Engine.ContextPenalty)
	cmd.Printf("  maxSubtasks:        %d\n", cfg.Engine.MaxSubtasks)
	cmd.Printf("  minComplexity:      %d\n", cfg.Engine.MinComplexity)

	cmd.Println()
	cmd.Println("## Policy")
	cmd.Printf("  dir:     %s\n", policiesDir(cfg))
	cmd.Printf("  package: %s\n", cfg.Policy.Package)

	if file := viper.ConfigFileUsed(); file != "" {
		cmd.Println()
		cmd.Printf("Config file: %s\n", file)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("unknown config key: %s", key)
	}

	if isJSON() {
		return printJSON(map[string]any{
			"key":   key,
			"value": val,
		})
	}

	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	switch key {
	case "engine.maxRecommendations", "engine.maxCapacity", "engine.maxSubtasks", "engine.minComplexity":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for %s: %s (want a positive integer)", key, value)
		}
		viper.Set(key, n)

	case "engine.contextPenalty":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid value for %s: %s (want a number between 0 and 1)", key, value)
		}
		viper.Set(key, f)

	case "data.format":
		if value != "json" && value != "yaml" {
			return fmt.Errorf("invalid value for data.format: %s (want json or yaml)", value)
		}
		viper.Set(key, value)

	case "data.snapshot", "policy.dir", "policy.package":
		viper.Set(key, value)

	default:
		return fmt.Errorf("unknown config key: %s\n\nSettable keys:\n  engine.maxRecommendations\n  engine.maxCapacity\n  engine.contextPenalty\n  engine.maxSubtasks\n  engine.minComplexity\n  data.snapshot\n  data.format\n  policy.dir\n  policy.package", key)
	}

	if err := writeConfig(); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]any{
			"key":   key,
			"value": viper.Get(key),
			"file":  viper.ConfigFileUsed(),
		})
	}

	cmd.Printf("✓ Set %s = %s\n", key, value)
	return nil
}

// writeConfig persists the current viper state, creating the project
// config file when none was loaded yet.
func writeConfig() error {
	if err := viper.WriteConfig(); err != nil {
		if err := viper.SafeWriteConfig(); err != nil {
			configPath := viper.ConfigFileUsed()
			if configPath == "" {
				cfg := GetConfig()
				if mkErr := os.MkdirAll(cfg.Project.RootDir, 0o755); mkErr != nil {
					return fmt.Errorf("create project directory: %w", mkErr)
				}
				configPath = filepath.Join(cfg.Project.RootDir, configName+".yaml")
			}
			if err := viper.WriteConfigAs(configPath); err != nil {
				return fmt.Errorf("write config to %s: %w", configPath, err)
			}
		}
	}
	return nil
}

// runTelemetryStatus displays the current telemetry configuration.
func runTelemetryStatus(cmd *cobra.Command) error {
	cfg, err := telemetry.Load()
	if err != nil {
		return fmt.Errorf("load telemetry config: %w", err)
	}

	configPath, _ := telemetry.GetConfigPath()

	if isJSON() {
		return printJSON(map[string]any{
			"enabled":       cfg.IsEnabled(),
			"consent_asked": !cfg.NeedsConsent(),
			"anonymous_id":  cfg.AnonymousID,
			"config_path":   configPath,
		})
	}

	cmd.Println("Telemetry Configuration")
	cmd.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cmd.Println()

	status := "Disabled"
	statusIcon := "❌"
	if cfg.IsEnabled() {
		status = "Enabled"
		statusIcon = "✅"
	}

	cmd.Printf("  Status:       %s %s\n", statusIcon, status)
	cmd.Printf("  Anonymous ID: %s\n", cfg.AnonymousID)
	cmd.Printf("  Config file:  %s\n", configPath)
	if cfg.NeedsConsent() {
		cmd.Println()
		cmd.Println("  You have not chosen yet; telemetry stays off until enabled.")
	}
	cmd.Println()
	cmd.Println("Commands:")
	cmd.Println("  taskscout config telemetry enable   Enable telemetry")
	cmd.Println("  taskscout config telemetry disable  Disable telemetry")
	cmd.Println()

	return nil
}

// runTelemetryEnable enables telemetry and saves the config.
func runTelemetryEnable(cmd *cobra.Command) error {
	cfg, err := telemetry.Load()
	if err != nil {
		return fmt.Errorf("load telemetry config: %w", err)
	}

	cfg.Enable()

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save telemetry config: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]any{
			"enabled": true,
			"message": "Telemetry enabled",
		})
	}

	cmd.Println("✅ Telemetry enabled")
	cmd.Println()
	cmd.Println("Thank you for helping improve TaskScout!")
	cmd.Println("We collect: command names, duration, success/failure, OS, CLI version")
	cmd.Println("We never collect: item content, file paths, or personal data")
	return nil
}

// runTelemetryDisable disables telemetry and saves the config.
func runTelemetryDisable(cmd *cobra.Command) error {
	cfg, err := telemetry.Load()
	if err != nil {
		return fmt.Errorf("load telemetry config: %w", err)
	}

	cfg.Disable()

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save telemetry config: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]any{
			"enabled": false,
			"message": "Telemetry disabled",
		})
	}

	cmd.Println("✅ Telemetry disabled")
	cmd.Println()
	cmd.Println("You can re-enable anytime with: taskscout config telemetry enable")
	return nil
}
