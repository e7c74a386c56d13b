package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskscout/taskscout/internal/logger"
	"github.com/taskscout/taskscout/types"
)

const (
	configName = ".taskscout"
	envPrefix  = "TASKSCOUT"
)

// GlobalAppConfig is the process-wide configuration, populated by InitConfig.
var GlobalAppConfig types.AppConfig

// validate is a single validator instance; it caches struct info.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateAppConfig checks the struct tags on AppConfig.
func validateAppConfig(config *types.AppConfig) error {
	return validate.Struct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present. A missing file is fine.
	_ = godotenv.Load()

	// Environment variable handling must be set up BEFORE reading the config
	// file, so env vars can influence where the config is loaded from.
	viper.SetEnvPrefix(envPrefix)                          // e.g., TASKSCOUT_VERBOSE
	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // Replace dots with underscores in env var names

	cfgFileFlag := viper.GetString("config") // Value from --config flag

	// The project dir has to be located before the full unmarshal because the
	// config file itself lives inside it.
	projectDir := viper.GetString("project.rootDir")
	if projectDir == "" {
		projectDir = ".taskscout"
	}

	if cfgFileFlag != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
			// Project dir exists. Prioritize it: ./.taskscout/.taskscout.yaml
			viper.AddConfigPath(projectDir)
			viper.SetConfigName(configName)
		} else {
			// No project dir, fall back to home and current directory.
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			viper.AddConfigPath(home)       // $HOME/.taskscout.yaml
			viper.AddConfigPath(".")        // ./.taskscout.yaml
			viper.SetConfigName(configName)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	setDefaults()

	// Flags, env, file, and defaults are all registered; flatten them.
	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	// A config file may exist but be missing these nested keys.
	if GlobalAppConfig.Project.RootDir == "" {
		GlobalAppConfig.Project.RootDir = viper.GetString("project.rootDir")
	}
	if GlobalAppConfig.Project.ReportsDir == "" {
		GlobalAppConfig.Project.ReportsDir = viper.GetString("project.reportsDir")
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}

	logger.SetBasePath(GlobalAppConfig.Project.RootDir)
}

// setDefaults registers every config key's default so a bare repository
// works with no config file at all.
func setDefaults() {
	viper.SetDefault("project.rootDir", ".taskscout")
	viper.SetDefault("project.reportsDir", "reports")

	viper.SetDefault("data.snapshot", "")
	viper.SetDefault("data.format", "json")
	viper.SetDefault("data.store", "items.db")

	viper.SetDefault("engine.weights.priority", 0.4)
	viper.SetDefault("engine.weights.urgency", 0.25)
	viper.SetDefault("engine.weights.availability", 0.2)
	viper.SetDefault("engine.weights.skillMatch", 0.15)
	viper.SetDefault("engine.weights.readiness", 0.1)
	viper.SetDefault("engine.maxCapacity", 15)
	viper.SetDefault("engine.maxRecommendations", 5)
	viper.SetDefault("engine.contextPenalty", 0.0)
	viper.SetDefault("engine.maxSubtasks", 8)
	viper.SetDefault("engine.minComplexity", 1)

	viper.SetDefault("policy.dir", "")
	viper.SetDefault("policy.package", "taskscout.policy")

	viper.SetDefault("telemetry.apiKey", "")
	viper.SetDefault("telemetry.endpoint", "")
}

// GetConfig returns the live global configuration.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
