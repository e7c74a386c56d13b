// Package scoring implements the per-item analyzers: complexity estimation,
// priority and urgency scoring, readiness evaluation, and the item context
// classifier the other engines consume.
package scoring

import (
	"regexp"
	"sync"

	"github.com/spf13/viper"
)

// KeywordConfig holds the configurable keyword tables the classifiers use.
// Projects can customize the skill domains via .taskscout.yaml:
//
//	scoring:
//	  skills:
//	    frontend:
//	      - ui
//	      - component
//	    embedded:
//	      - firmware
//	      - driver
//
// Custom domains are merged over the defaults, custom keys taking precedence.
// The remaining tables are fixed vocabulary shared by every scorer.
type KeywordConfig struct {
	mu     sync.RWMutex
	skills map[string][]string
}

// defaultSkillDomains maps each skill domain to the keywords that signal it.
// Matching is case-insensitive substring over title, body, and labels.
var defaultSkillDomains = map[string][]string{
	"frontend": {"frontend", "ui", "ux", "css", "react", "vue", "component", "browser", "responsive"},
	"backend":  {"backend", "api", "server", "endpoint", "database", "sql", "cache", "queue"},
	"devops":   {"devops", "deploy", "docker", "kubernetes", "ci/cd", "pipeline", "terraform", "infrastructure"},
	"mobile":   {"mobile", "ios", "android", "app store", "react native", "flutter"},
	"testing":  {"test", "qa", "regression", "coverage", "e2e", "integration test"},
	"design":   {"design", "mockup", "wireframe", "figma", "prototype", "accessibility"},
	"data":     {"data", "analytics", "etl", "pipeline", "warehouse", "metrics", "reporting"},
}

// technicalKeywords is the fixed vocabulary the complexity analyzer scans the
// body for. At most three hits count toward the score.
var technicalKeywords = []string{
	"api", "database", "migration", "refactor", "architecture",
	"integration", "security", "performance", "concurrency", "authentication",
}

// sizeLabels add one complexity point per matching label.
var sizeLabels = []string{"epic", "large", "complex", "research", "spike"}

// priorityLabelScores maps priority keywords to their score. A label matches
// by substring, so "priority:high" scores as "high".
var priorityLabelScores = map[string]float64{
	"critical": 1.0,
	"high":     0.8,
	"medium":   0.6,
	"low":      0.4,
	"lowest":   0.2,
}

// blockingLabels force an item into the not-ready state.
var blockingLabels = []string{"blocked", "waiting", "needs-info", "dependencies", "on-hold"}

// dependencyPhrases are scanned in order against the body; only the first
// match counts toward readiness.
var dependencyPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)depends on #\d+`),
	regexp.MustCompile(`(?i)blocked by #\d+`),
	regexp.MustCompile(`(?i)waiting for`),
	regexp.MustCompile(`(?i)needs #\d+`),
}

// Context boolean keyword sets consumed by the subtask generator.
var (
	frontendSignals = []string{"frontend", "ui", "ux", "component", "css", "browser"}
	apiSignals      = []string{"api", "endpoint", "integration", "webhook", "rest", "graphql"}
	securitySignals = []string{"security", "auth", "encryption", "vulnerability", "permission"}
	databaseSignals = []string{"database", "migration", "schema", "sql"}
)

// Bug and refactor indicators drive decomposition template selection.
var (
	bugIndicators      = []string{"bug", "fix", "error"}
	refactorIndicators = []string{"refactor", "improve", "optimize", "cleanup"}
)

var (
	globalKeywordConfig *KeywordConfig
	keywordConfigOnce   sync.Once
)

// GetKeywordConfig returns the global keyword configuration, loading custom
// skill domains from viper on first use. Thread-safe and lazily initialized.
func GetKeywordConfig() *KeywordConfig {
	keywordConfigOnce.Do(func() {
		globalKeywordConfig = loadKeywordConfig()
	})
	return globalKeywordConfig
}

// ResetKeywordConfig forces reload of keyword config. Only use in tests.
func ResetKeywordConfig() {
	keywordConfigOnce = sync.Once{}
	globalKeywordConfig = nil
}

// loadKeywordConfig loads the skill domain table from viper with fallback to defaults.
func loadKeywordConfig() *KeywordConfig {
	cfg := &KeywordConfig{
		skills: make(map[string][]string),
	}

	for domain, keywords := range defaultSkillDomains {
		cfg.skills[domain] = keywords
	}
	if custom := viper.GetStringMapStringSlice("scoring.skills"); len(custom) > 0 {
		for domain, keywords := range custom {
			cfg.skills[domain] = keywords
		}
	}

	return cfg
}

// SkillDomains returns the domain to keywords mapping.
func (c *KeywordConfig) SkillDomains() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string][]string, len(c.skills))
	for k, v := range c.skills {
		result[k] = append([]string{}, v...)
	}
	return result
}
