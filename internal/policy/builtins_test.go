package policy

import (
	"context"
	"testing"

	"github.com/spf13/afero"
)

func TestTimelineDays(t *testing.T) {
	tests := []struct {
		band string
		want int
	}{
		{"3-5 days", 5},
		{"1-2 weeks", 14},
		{"2-3 weeks", 21},
		{"3-4 weeks", 28},
		{"  3-5 Days  ", 5},
		{"1-1 day", 1},
		{"", -1},
		{"soon", -1},
		{"10 days", -1},
		{"a-b weeks", -1},
	}

	for _, tt := range tests {
		t.Run(tt.band, func(t *testing.T) {
			if got := timelineDays(tt.band); got != tt.want {
				t.Errorf("timelineDays(%q) = %d, want %d", tt.band, got, tt.want)
			}
		})
	}
}

func TestSnapshotItemCount(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := &BuiltinContext{WorkDir: "/project", Fs: fs}

	jsonSnapshot := `{"items": [{"id": 1}, {"id": 2}, {"id": 3}], "roster": ["alice"]}`
	_ = afero.WriteFile(fs, "/project/backlog.json", []byte(jsonSnapshot), 0o644)

	yamlSnapshot := "items:\n  - id: 1\n  - id: 2\nroster:\n  - bob\n"
	_ = afero.WriteFile(fs, "/project/backlog.yaml", []byte(yamlSnapshot), 0o644)

	_ = afero.WriteFile(fs, "/project/broken.json", []byte("{not json"), 0o644)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "json snapshot", path: "backlog.json", want: 3},
		{name: "yaml snapshot", path: "backlog.yaml", want: 2},
		{name: "absolute path", path: "/project/backlog.json", want: 3},
		{name: "missing file", path: "nope.json", want: -1},
		{name: "malformed file", path: "broken.json", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snapshotItemCount(ctx, tt.path); got != tt.want {
				t.Errorf("snapshotItemCount(%q) = %d, want %d", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/project/CODEOWNERS", []byte("* @team"), 0o644)
	ctx := &BuiltinContext{WorkDir: "/project", Fs: fs}

	if !fileExists(ctx, "CODEOWNERS") {
		t.Error("fileExists(CODEOWNERS) = false, want true")
	}
	if fileExists(ctx, "missing.txt") {
		t.Error("fileExists(missing.txt) = true, want false")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	registered := RegisterBuiltins(NewBuiltinContext("/tmp"))

	if len(registered) != len(GetBuiltinNames()) {
		t.Errorf("registered %d built-ins, want %d", len(registered), len(GetBuiltinNames()))
	}
	for _, name := range GetBuiltinNames() {
		if !IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false, want true", name)
		}
	}
	if IsBuiltin("taskscout.nonexistent") {
		t.Error("IsBuiltin(taskscout.nonexistent) = true, want false")
	}
}

// The built-ins must be callable from Rego rules through the engine.
func TestBuiltinsInPolicy(t *testing.T) {
	const timelinePolicy = `package taskscout.policy

import rego.v1

deny contains msg if {
	days := taskscout.timeline_days(input.breakdown.timeline)
	days > 21
	msg := sprintf("estimated timeline of %d days exceeds the sprint budget", [days])
}
`

	engine := NewEngineWithPolicies([]*PolicyFile{
		{Name: "timeline", Path: "timeline.rego", Content: timelinePolicy},
	})

	denied, err := engine.Evaluate(context.Background(), map[string]any{
		"breakdown": map[string]any{"timeline": "3-4 weeks"},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !denied.IsDenied() {
		t.Errorf("Result = %q, want deny for a 3-4 week timeline", denied.Result)
	}

	allowed, err := engine.Evaluate(context.Background(), map[string]any{
		"breakdown": map[string]any{"timeline": "3-5 days"},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !allowed.IsAllowed() {
		t.Errorf("Result = %q, want allow for a 3-5 day timeline", allowed.Result)
	}
}
