// Package breakdown decomposes oversized work items into dependency-ordered
// subtasks with a phased execution plan. Templates are plain data: each
// strategy is an ordered list of step blueprints, selected by the item
// classification and instantiated against the concrete item.
package breakdown

import (
	"github.com/taskscout/taskscout/internal/scoring"
	"github.com/taskscout/taskscout/models"
)

// TemplateKind identifies one decomposition strategy.
type TemplateKind string

const (
	TemplateFeature  TemplateKind = "Feature Implementation"
	TemplateBugFix   TemplateKind = "Bug Fix"
	TemplateRefactor TemplateKind = "Refactoring"
)

// Anchor titles referenced by context-dependent extra steps.
const (
	featureDesignTitle         = "Technical Design"
	featureImplementationTitle = "Core Implementation"
)

// Blueprint is one template step before instantiation. Description is a
// format string receiving the work item title. DependsOn names sibling steps
// of the same template.
type Blueprint struct {
	Title              string
	Description        string
	Complexity         int
	Priority           models.SubtaskPriority
	Category           models.SubtaskCategory
	DependsOn          []string
	Labels             []string
	AcceptanceCriteria []string
}

// Template is a named strategy: an ordered list of blueprints plus the
// approach text the breakdown report carries.
type Template struct {
	Kind     TemplateKind
	Approach string
	Steps    []Blueprint
}

var templates = map[TemplateKind]Template{
	TemplateFeature: {
		Kind:     TemplateFeature,
		Approach: "Settle the design before implementation begins, then let testing and documentation trail the core work inside the same milestone.",
		Steps: []Blueprint{
			{
				Title:       "Research and Requirements Analysis",
				Description: "Collect requirements, prior art, and constraints for %q. Capture open questions before any design work starts.",
				Complexity:  2,
				Priority:    models.SubtaskPriorityMedium,
				Category:    models.CategoryPlanning,
				Labels:      []string{"planning"},
				AcceptanceCriteria: []string{
					"Requirements written down and reviewed",
					"Open questions listed with owners",
				},
			},
			{
				Title:       featureDesignTitle,
				Description: "Produce the technical design for %q: interfaces, data shapes, and the rollout order.",
				Complexity:  3,
				Priority:    models.SubtaskPriorityHigh,
				Category:    models.CategoryDesign,
				DependsOn:   []string{"Research and Requirements Analysis"},
				Labels:      []string{"design"},
				AcceptanceCriteria: []string{
					"Design covers every requirement",
					"Interfaces agreed with consumers",
				},
			},
			{
				Title:       featureImplementationTitle,
				Description: "Implement the core behavior of %q behind the agreed interfaces.",
				Complexity:  5,
				Priority:    models.SubtaskPriorityHigh,
				Category:    models.CategoryDevelopment,
				DependsOn:   []string{featureDesignTitle},
				Labels:      []string{"development"},
				AcceptanceCriteria: []string{
					"Happy path works end to end",
					"Edge cases from the design are handled",
				},
			},
			{
				Title:       "Testing and Validation",
				Description: "Cover %q with automated tests and validate against the original requirements.",
				Complexity:  3,
				Priority:    models.SubtaskPriorityMedium,
				Category:    models.CategoryQA,
				DependsOn:   []string{featureImplementationTitle},
				Labels:      []string{"qa"},
				AcceptanceCriteria: []string{
					"New behavior covered by tests",
					"No regressions in the surrounding area",
				},
			},
			{
				Title:       "Documentation and Release Notes",
				Description: "Document %q for users and operators, including release notes.",
				Complexity:  1,
				Priority:    models.SubtaskPriorityLow,
				Category:    models.CategoryDocumentation,
				DependsOn:   []string{"Testing and Validation"},
				Labels:      []string{"documentation"},
				AcceptanceCriteria: []string{
					"User-facing behavior documented",
					"Release notes drafted",
				},
			},
		},
	},
	TemplateBugFix: {
		Kind:     TemplateBugFix,
		Approach: "Reproduce before fixing. Keep the fix minimal and let the regression test pin the behavior.",
		Steps: []Blueprint{
			{
				Title:       "Bug Investigation and Reproduction",
				Description: "Investigate the behavior reported in %q and capture reliable reproduction steps.",
				Complexity:  2,
				Priority:    models.SubtaskPriorityHigh,
				Category:    models.CategoryAnalysis,
				Labels:      []string{"bug", "analysis"},
				AcceptanceCriteria: []string{
					"Reproduction steps written down",
					"Affected versions identified",
				},
			},
			{
				Title:       "Root Cause Analysis",
				Description: "Trace the reproduction of %q to the defective code path and record the root cause.",
				Complexity:  2,
				Priority:    models.SubtaskPriorityHigh,
				Category:    models.CategoryDevelopment,
				DependsOn:   []string{"Bug Investigation and Reproduction"},
				Labels:      []string{"bug"},
				AcceptanceCriteria: []string{
					"Root cause documented on the item",
					"Blast radius of the defect understood",
				},
			},
			{
				Title:       "Implement Fix",
				Description: "Fix the root cause of %q with the smallest change that resolves the defect.",
				Complexity:  3,
				Priority:    models.SubtaskPriorityHigh,
				Category:    models.CategoryDevelopment,
				DependsOn:   []string{"Root Cause Analysis"},
				Labels:      []string{"bug", "development"},
				AcceptanceCriteria: []string{
					"Original reproduction no longer fails",
					"Change scoped to the defective path",
				},
			},
			{
				Title:       "Regression Testing",
				Description: "Add a regression test pinning the fixed behavior of %q and run the surrounding suite.",
				Complexity:  2,
				Priority:    models.SubtaskPriorityMedium,
				Category:    models.CategoryQA,
				DependsOn:   []string{"Implement Fix"},
				Labels:      []string{"qa"},
				AcceptanceCriteria: []string{
					"Regression test fails without the fix",
					"Surrounding suite still green",
				},
			},
		},
	},
	TemplateRefactor: {
		Kind:     TemplateRefactor,
		Approach: "Build the safety net first, then refactor in small reviewable increments.",
		Steps: []Blueprint{
			{
				Title:       "Analyze Current Implementation",
				Description: "Map the current implementation behind %q: entry points, hidden couplings, and behavior worth preserving.",
				Complexity:  2,
				Priority:    models.SubtaskPriorityMedium,
				Category:    models.CategoryAnalysis,
				Labels:      []string{"refactor", "analysis"},
				AcceptanceCriteria: []string{
					"Current behavior inventoried",
					"Couplings and risks listed",
				},
			},
			{
				Title:       "Write Safety Net Tests",
				Description: "Pin the observable behavior around %q with characterization tests before changing anything.",
				Complexity:  3,
				Priority:    models.SubtaskPriorityHigh,
				Category:    models.CategoryQA,
				DependsOn:   []string{"Analyze Current Implementation"},
				Labels:      []string{"qa"},
				AcceptanceCriteria: []string{
					"Existing behavior covered by tests",
					"Tests pass against the untouched code",
				},
			},
			{
				Title:       "Incremental Refactoring",
				Description: "Refactor %q in small steps, keeping the safety net green after each one.",
				Complexity:  4,
				Priority:    models.SubtaskPriorityHigh,
				Category:    models.CategoryDevelopment,
				DependsOn:   []string{"Write Safety Net Tests"},
				Labels:      []string{"refactor", "development"},
				AcceptanceCriteria: []string{
					"Safety net green after every step",
					"No behavior change observable from callers",
				},
			},
			{
				Title:       "Update Documentation",
				Description: "Bring documentation and code comments around %q in line with the new structure.",
				Complexity:  1,
				Priority:    models.SubtaskPriorityLow,
				Category:    models.CategoryDocumentation,
				DependsOn:   []string{"Incremental Refactoring"},
				Labels:      []string{"documentation"},
				AcceptanceCriteria: []string{
					"Docs describe the new structure",
				},
			},
		},
	},
}

// Select classifies an item context onto a template. Bug indicators win over
// refactor indicators; everything else decomposes as a feature.
func Select(ctx scoring.ItemContext) Template {
	switch {
	case ctx.IsBugLike:
		return templates[TemplateBugFix]
	case ctx.IsRefactorLike:
		return templates[TemplateRefactor]
	default:
		return templates[TemplateFeature]
	}
}

// featureExtras returns the context-dependent steps a feature decomposition
// grows when the item touches extra surface. Each step anchors on a base
// step of the feature template.
func featureExtras(ctx scoring.ItemContext) []Blueprint {
	var extras []Blueprint
	if ctx.HasDatabase {
		extras = append(extras, Blueprint{
			Title:       "Database Schema and Migration",
			Description: "Design and apply the schema changes %q needs, with a tested rollback path.",
			Complexity:  3,
			Priority:    models.SubtaskPriorityHigh,
			Category:    models.CategoryDevelopment,
			DependsOn:   []string{featureDesignTitle},
			Labels:      []string{"database"},
			AcceptanceCriteria: []string{
				"Migration applies cleanly to a production-shaped dataset",
				"Rollback path tested",
			},
		})
	}
	if ctx.HasAPIIntegration {
		extras = append(extras, Blueprint{
			Title:       "API Integration and Contract Tests",
			Description: "Wire %q to the external API surface and pin the contract with integration tests.",
			Complexity:  3,
			Priority:    models.SubtaskPriorityMedium,
			Category:    models.CategoryDevelopment,
			DependsOn:   []string{featureImplementationTitle},
			Labels:      []string{"api"},
			AcceptanceCriteria: []string{
				"Contract tests cover the integration points",
				"Failure modes of the remote side handled",
			},
		})
	}
	if ctx.HasSecurity {
		extras = append(extras, Blueprint{
			Title:       "Security Review",
			Description: "Review the security-sensitive surface of %q: permissions, input handling, and data exposure.",
			Complexity:  2,
			Priority:    models.SubtaskPriorityHigh,
			Category:    models.CategoryQA,
			DependsOn:   []string{featureImplementationTitle},
			Labels:      []string{"security"},
			AcceptanceCriteria: []string{
				"Threat surface reviewed and signed off",
				"Permission checks verified",
			},
		})
	}
	if ctx.IsFrontend {
		extras = append(extras, Blueprint{
			Title:       "UI Polish and Accessibility Pass",
			Description: "Polish the user-facing surface of %q: responsive layout, keyboard flow, and accessibility.",
			Complexity:  2,
			Priority:    models.SubtaskPriorityLow,
			Category:    models.CategoryDesign,
			DependsOn:   []string{featureImplementationTitle},
			Labels:      []string{"frontend"},
			AcceptanceCriteria: []string{
				"Layout verified at common breakpoints",
				"Keyboard navigation works",
			},
		})
	}
	return extras
}
