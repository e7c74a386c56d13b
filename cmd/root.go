/*
Copyright © 2025 TaskScout Authors
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskscout/taskscout/internal/logger"
	"github.com/taskscout/taskscout/internal/telemetry"
	"github.com/taskscout/taskscout/internal/tracker"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// jsonOutput switches command output to machine-readable JSON.
	jsonOutput bool
	// version is the application version.
	version = "0.2.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "taskscout",
	Version: version,
	Short:   "TaskScout ranks open work items and breaks the big ones down.",
	Long: `TaskScout is a deterministic engine for deciding what to work on next.

It scores a snapshot of open work items on priority, urgency, team
availability, skill coverage, and readiness, then recommends the best
candidates. Complex items can be decomposed into dependency-ordered
subtasks with phases, a critical path, and a timeline estimate.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetCommand(cmd.CommandPath())
	},
	Run: func(cmd *cobra.Command, args []string) {
		// return help if no args are provided
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}

		// otherwise, run the subcommand
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer logger.HandlePanic()
	logger.SetVersion(version)

	start := time.Now()
	err := rootCmd.Execute()

	trackInvocation(start, err)
	_ = telemetry.Close()

	if err != nil {
		HandleError(fmt.Sprintf("Error: %v", err), err)
	}
}

// initTelemetry wires the telemetry client once the config is loaded.
// Telemetry failures never surface to the user outside verbose mode.
func initTelemetry() {
	cfg := GetConfig()
	if err := telemetry.Init(cfg.Telemetry.APIKey, cfg.Telemetry.Endpoint, version); err != nil {
		LogError("telemetry init failed", err)
	}
}

// trackInvocation records the executed command path and its outcome.
// Arguments and flag values are never sent.
func trackInvocation(start time.Time, err error) {
	command := rootCmd.Name()
	if called, _, findErr := rootCmd.Find(os.Args[1:]); findErr == nil && called != nil {
		command = called.CommandPath()
	}
	telemetry.TrackCommand(command, time.Since(start), err == nil, errorCategory(err))
}

func init() {
	cobra.OnInitialize(InitConfig, initTelemetry)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.taskscout/.taskscout.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of text")

	// Bind persistent flags to Viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// GetVersion returns the application version string.
func GetVersion() string {
	return version
}

// GetStorePath returns the full path to the local item store database.
func GetStorePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Data.Store)
}

// GetTracker opens the configured snapshot backend: the snapshot file when
// data.snapshot is set, the local item store otherwise. The returned cleanup
// closes whatever was opened and must always be called.
func GetTracker() (tracker.Tracker, func(), error) {
	config := GetConfig()

	if config.Data.Snapshot != "" {
		src, err := tracker.NewFileSource(afero.NewOsFs(), config.Data.Snapshot, config.Data.Format)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot %s: %w", config.Data.Snapshot, err)
		}
		return src, func() {}, nil
	}

	st, err := tracker.OpenStore(GetStorePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open item store at %s: %w", GetStorePath(), err)
	}
	return st, func() { _ = st.Close() }, nil
}
