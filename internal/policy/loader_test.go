package policy

import (
	"testing"

	"github.com/spf13/afero"
)

func writePolicy(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/project/.taskscout/policies"

	writePolicy(t, fs, dir+"/limits.rego", `package taskscout.policy

import rego.v1

deny contains msg if {
	input.breakdown.subtask_count > 8
	msg := "too many subtasks"
}
`)
	writePolicy(t, fs, dir+"/protected.rego", `package taskscout.policy

import rego.v1

deny contains msg if {
	some label in input.item.labels
	label == "protected"
	msg := "item is protected"
}
`)
	// Only .rego files count as policies.
	writePolicy(t, fs, dir+"/README.md", "# Policies")

	policies, err := LoadDir(fs, dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("LoadDir() returned %d policies, want 2", len(policies))
	}

	// Walk order is lexical, so limits sorts before protected.
	if policies[0].Name != "limits" || policies[1].Name != "protected" {
		t.Errorf("names = [%s %s], want [limits protected]", policies[0].Name, policies[1].Name)
	}
	for _, p := range policies {
		if p.Content == "" {
			t.Errorf("policy %s has empty content", p.Name)
		}
		if p.Path == "" {
			t.Errorf("policy %s has empty path", p.Name)
		}
	}
}

func TestLoadDirRecurses(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/project/.taskscout/policies"

	writePolicy(t, fs, dir+"/defaults.rego", "package taskscout.policy")
	writePolicy(t, fs, dir+"/limits/size.rego", "package taskscout.policy")
	writePolicy(t, fs, dir+"/labels/protected.rego", "package taskscout.policy")

	policies, err := LoadDir(fs, dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(policies) != 3 {
		t.Errorf("LoadDir() returned %d policies, want 3", len(policies))
	}
}

func TestLoadDirMissingDirectory(t *testing.T) {
	policies, err := LoadDir(afero.NewMemMapFs(), "/project/.taskscout/policies")
	if err != nil {
		t.Fatalf("LoadDir() error = %v, want nil for a missing directory", err)
	}
	if len(policies) != 0 {
		t.Errorf("LoadDir() returned %d policies, want 0", len(policies))
	}
}

func TestLoadDirTrimsExtensionFromName(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePolicy(t, fs, "/policies/subtask_limits.rego", "package taskscout.policy")

	policies, err := LoadDir(fs, "/policies")
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(policies) != 1 {
		t.Fatalf("LoadDir() returned %d policies, want 1", len(policies))
	}
	if policies[0].Name != "subtask_limits" {
		t.Errorf("Name = %q, want subtask_limits", policies[0].Name)
	}
}

func TestPoliciesPath(t *testing.T) {
	got := PoliciesPath("/home/dev/project")
	want := "/home/dev/project/.taskscout/policies"
	if got != want {
		t.Errorf("PoliciesPath() = %q, want %q", got, want)
	}
}
