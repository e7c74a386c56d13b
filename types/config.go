/*
Copyright © 2025 TaskScout Authors
*/
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Config    string          `mapstructure:"config"`
	Project   ProjectConfig   `mapstructure:"project" validate:"required"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Policy    PolicyConfig    `mapstructure:"policy" validate:"omitempty"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" validate:"omitempty"`
}

// ProjectConfig holds project-related settings
type ProjectConfig struct {
	RootDir    string `mapstructure:"rootDir" validate:"required"`
	ReportsDir string `mapstructure:"reportsDir" validate:"required"`
}

// DataConfig holds snapshot storage configuration
type DataConfig struct {
	// Snapshot is the path to a snapshot file relative to the working
	// directory. When empty, the local store is used instead.
	Snapshot string `mapstructure:"snapshot"`
	Format   string `mapstructure:"format" validate:"required,oneof=json yaml"`
	// Store is the sqlite database file, relative to RootDir.
	Store string `mapstructure:"store" validate:"required"`
}

// ScoreWeights holds the ranking weight per score component.
// The defaults sum to 1.0; custom weights that do not may push totals
// outside [0,1] before clamping.
type ScoreWeights struct {
	Priority     float64 `mapstructure:"priority" validate:"min=0,max=1"`
	Urgency      float64 `mapstructure:"urgency" validate:"min=0,max=1"`
	Availability float64 `mapstructure:"availability" validate:"min=0,max=1"`
	SkillMatch   float64 `mapstructure:"skillMatch" validate:"min=0,max=1"`
	Readiness    float64 `mapstructure:"readiness" validate:"min=0,max=1"`
}

// EngineConfig holds tunables for the recommendation and decomposition engines.
type EngineConfig struct {
	Weights            ScoreWeights `mapstructure:"weights"`
	MaxCapacity        int          `mapstructure:"maxCapacity" validate:"min=1"`
	MaxRecommendations int          `mapstructure:"maxRecommendations" validate:"min=1"`
	ContextPenalty     float64      `mapstructure:"contextPenalty" validate:"min=0,max=1"`
	MaxSubtasks        int          `mapstructure:"maxSubtasks" validate:"min=1"`
	MinComplexity      int          `mapstructure:"minComplexity" validate:"min=1,max=8"`
}

// PolicyConfig holds the policy engine settings
type PolicyConfig struct {
	// Dir is the directory of .rego files, relative to RootDir when not absolute.
	Dir string `mapstructure:"dir"`
	// Package is the Rego package queried for deny/warn rules.
	Package string `mapstructure:"package"`
}

// TelemetryConfig holds the optional telemetry transport settings.
// Consent state lives in its own file under the user's home directory,
// not here.
type TelemetryConfig struct {
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint"`
}
