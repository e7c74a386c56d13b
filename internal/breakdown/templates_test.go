package breakdown

import (
	"strings"
	"testing"

	"github.com/taskscout/taskscout/internal/scoring"
)

func TestSelect_Precedence(t *testing.T) {
	tests := []struct {
		name string
		ctx  scoring.ItemContext
		want TemplateKind
	}{
		{"bug wins over refactor", scoring.ItemContext{IsBugLike: true, IsRefactorLike: true}, TemplateBugFix},
		{"refactor", scoring.ItemContext{IsRefactorLike: true}, TemplateRefactor},
		{"feature default", scoring.ItemContext{}, TemplateFeature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(tt.ctx); got.Kind != tt.want {
				t.Errorf("Select() = %q, want %q", got.Kind, tt.want)
			}
		})
	}
}

// Template data is hand-maintained; this guards the structural rules every
// strategy must follow.
func TestTemplates_WellFormed(t *testing.T) {
	for kind, tmpl := range templates {
		if len(tmpl.Steps) == 0 {
			t.Errorf("%s: no steps", kind)
			continue
		}
		if tmpl.Approach == "" {
			t.Errorf("%s: empty approach", kind)
		}

		seen := make(map[string]bool)
		for i, step := range tmpl.Steps {
			if step.Title == "" {
				t.Errorf("%s step %d: empty title", kind, i)
			}
			if seen[step.Title] {
				t.Errorf("%s: duplicate step title %q", kind, step.Title)
			}
			if step.Complexity < 1 || step.Complexity > 8 {
				t.Errorf("%s step %q: complexity %d outside [1,8]", kind, step.Title, step.Complexity)
			}
			if !strings.Contains(step.Description, "%q") {
				t.Errorf("%s step %q: description missing the title placeholder", kind, step.Title)
			}
			// Dependencies may only point at earlier steps.
			for _, dep := range step.DependsOn {
				if !seen[dep] {
					t.Errorf("%s step %q: dependency %q is not an earlier step", kind, step.Title, dep)
				}
			}
			seen[step.Title] = true
		}
	}
}

func TestFeatureExtras_AnchorOnBaseSteps(t *testing.T) {
	base := make(map[string]bool)
	for _, step := range templates[TemplateFeature].Steps {
		base[step.Title] = true
	}

	everything := scoring.ItemContext{
		IsFrontend:        true,
		HasAPIIntegration: true,
		HasSecurity:       true,
		HasDatabase:       true,
	}
	extras := featureExtras(everything)
	if len(extras) != 4 {
		t.Fatalf("got %d extras, want 4", len(extras))
	}
	for _, extra := range extras {
		for _, dep := range extra.DependsOn {
			if !base[dep] {
				t.Errorf("extra %q depends on %q, not a base step", extra.Title, dep)
			}
		}
	}
}

func TestFeatureExtras_NoneWithoutContext(t *testing.T) {
	if extras := featureExtras(scoring.ItemContext{}); len(extras) != 0 {
		t.Errorf("got %d extras for a plain item, want none", len(extras))
	}
}
