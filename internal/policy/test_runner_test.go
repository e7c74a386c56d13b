package policy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

const runnerPolicy = `package taskscout.policy

import rego.v1

deny contains msg if {
	input.breakdown.subtask_count > 8
	msg := sprintf("breakdown has %d subtasks, limit is 8", [input.breakdown.subtask_count])
}
`

const runnerPassingTests = `package taskscout.policy_test

import rego.v1
import data.taskscout.policy

test_deny_oversized_breakdown if {
	count(policy.deny) == 1 with input as {"breakdown": {"subtask_count": 10}}
}

test_allow_small_breakdown if {
	count(policy.deny) == 0 with input as {"breakdown": {"subtask_count": 3}}
}
`

const runnerFailingTest = `package taskscout.policy_test

import rego.v1

test_always_fails if {
	1 == 2
}
`

func writePolicies(t *testing.T, files map[string]string) (afero.Fs, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := "/project/.taskscout/policies"
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	for name, content := range files {
		if err := afero.WriteFile(fs, dir+"/"+name, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
	return fs, dir
}

func TestRunnerAllPassing(t *testing.T) {
	fs, dir := writePolicies(t, map[string]string{
		"limits.rego":      runnerPolicy,
		"limits_test.rego": runnerPassingTests,
	})

	runner := NewTestRunner(fs, dir, "/project")
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Total != 2 {
		t.Fatalf("Total = %d, want 2", summary.Total)
	}
	if summary.Passed != 2 {
		t.Errorf("Passed = %d, want 2", summary.Passed)
	}
	if !summary.AllPassed() {
		t.Error("AllPassed() = false, want true")
	}
}

func TestRunnerReportsFailure(t *testing.T) {
	fs, dir := writePolicies(t, map[string]string{
		"limits.rego":       runnerPolicy,
		"limits_test.rego":  runnerPassingTests,
		"failing_test.rego": runnerFailingTest,
	})

	runner := NewTestRunner(fs, dir, "/project")
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Total != 3 {
		t.Fatalf("Total = %d, want 3", summary.Total)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if summary.AllPassed() {
		t.Error("AllPassed() = true, want false")
	}

	var foundFailure bool
	for _, res := range summary.Results {
		if strings.Contains(res.Name, "test_always_fails") && res.Status == StatusFail {
			foundFailure = true
		}
	}
	if !foundFailure {
		t.Error("expected test_always_fails to be reported as failed")
	}
}

func TestRunnerNoPolicies(t *testing.T) {
	runner := NewTestRunner(afero.NewMemMapFs(), "/project/.taskscout/policies", "/project")

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("Total = %d, want 0", summary.Total)
	}
}

func TestHasTests(t *testing.T) {
	fs, dir := writePolicies(t, map[string]string{
		"limits.rego": runnerPolicy,
	})

	runner := NewTestRunner(fs, dir, "/project")
	has, err := runner.HasTests()
	if err != nil {
		t.Fatalf("HasTests() error = %v", err)
	}
	if has {
		t.Error("HasTests() = true, want false without *_test.rego files")
	}

	if err := afero.WriteFile(fs, dir+"/limits_test.rego", []byte(runnerPassingTests), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	has, err = runner.HasTests()
	if err != nil {
		t.Fatalf("HasTests() error = %v", err)
	}
	if !has {
		t.Error("HasTests() = false, want true")
	}
}

func TestFormatSummary(t *testing.T) {
	summary := &TestSummary{
		Total:    3,
		Passed:   2,
		Failed:   1,
		Duration: 12 * time.Millisecond,
	}

	out := summary.FormatSummary()
	if !strings.Contains(out, "3 tests, 2 passed") {
		t.Errorf("FormatSummary() = %q, want pass counts", out)
	}
	if !strings.Contains(out, "1 failed") {
		t.Errorf("FormatSummary() = %q, want failure count", out)
	}

	empty := &TestSummary{}
	if !strings.Contains(empty.FormatSummary(), "No tests found") {
		t.Errorf("FormatSummary() = %q, want no-tests message", empty.FormatSummary())
	}
}
