package policy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/bundle"
	"github.com/open-policy-agent/opa/v1/tester"
	"github.com/open-policy-agent/opa/v1/topdown"
	"github.com/spf13/afero"
)

// testTimeout bounds a single Rego test rule.
const testTimeout = 30 * time.Second

// TestStatus classifies the outcome of one Rego test rule.
type TestStatus string

const (
	StatusPass  TestStatus = "pass"
	StatusFail  TestStatus = "fail"
	StatusSkip  TestStatus = "skip"
	StatusError TestStatus = "error"
)

// TestResult is the outcome of a single Rego test rule.
type TestResult struct {
	// Name is the full rule path, e.g.
	// "data.taskscout.policy.test_deny_oversized_breakdown".
	Name string `json:"name"`

	// Package is the Rego package the rule lives in.
	Package string `json:"package"`

	// Status is pass, fail, skip, or error.
	Status TestStatus `json:"status"`

	// Error holds the evaluation error when Status is error.
	Error string `json:"error,omitempty"`

	// Duration is the rule's wall-clock time.
	Duration time.Duration `json:"duration"`

	// Output collects trace notes emitted by print() calls in the rule.
	Output []string `json:"output,omitempty"`
}

// TestSummary aggregates the results of a test run.
type TestSummary struct {
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Errored  int           `json:"errored"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration"`
	Results  []*TestResult `json:"results"`
}

// add records a result and bumps the matching counter.
func (s *TestSummary) add(res *TestResult) {
	s.Results = append(s.Results, res)
	s.Total++
	switch res.Status {
	case StatusPass:
		s.Passed++
	case StatusFail:
		s.Failed++
	case StatusSkip:
		s.Skipped++
	case StatusError:
		s.Errored++
	}
}

// AllPassed reports whether the run had no failures and no errors.
func (s *TestSummary) AllPassed() bool {
	return s.Failed == 0 && s.Errored == 0
}

// FormatSummary renders a one-line human-readable summary.
func (s *TestSummary) FormatSummary() string {
	if s.Total == 0 {
		return "No tests found.\n"
	}

	parts := []string{fmt.Sprintf("%d tests", s.Total), fmt.Sprintf("%d passed", s.Passed)}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	if s.Errored > 0 {
		parts = append(parts, fmt.Sprintf("%d errored", s.Errored))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.Skipped))
	}
	return fmt.Sprintf("\n%s in %s\n", strings.Join(parts, ", "), s.Duration.Round(time.Millisecond))
}

// TestRunner executes the Rego unit tests that live next to the policies.
type TestRunner struct {
	fs          afero.Fs
	policiesDir string
	workDir     string
}

// NewTestRunner creates a runner over the given policies directory. The
// directory holds both the rules and their *_test.rego files. A nil fs
// means the real filesystem.
func NewTestRunner(fs afero.Fs, policiesDir, workDir string) *TestRunner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &TestRunner{
		fs:          fs,
		policiesDir: policiesDir,
		workDir:     workDir,
	}
}

// Run executes every test rule found under the policies directory.
// Test rules are Rego rules whose names start with "test_".
func (r *TestRunner) Run(ctx context.Context) (*TestSummary, error) {
	modules, err := r.parseModules()
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	return r.runModules(ctx, modules)
}

// RunBundle executes test rules from an OPA bundle instead of loose files.
func (r *TestRunner) RunBundle(ctx context.Context, b *bundle.Bundle) (*TestSummary, error) {
	modules := make(map[string]*ast.Module)
	for _, mf := range b.Modules {
		modules[mf.Path] = mf.Parsed
	}
	return r.runModules(ctx, modules)
}

// runModules compiles the modules and executes every test rule they define.
func (r *TestRunner) runModules(ctx context.Context, modules map[string]*ast.Module) (*TestSummary, error) {
	start := time.Now()

	RegisterBuiltins(&BuiltinContext{WorkDir: r.workDir, Fs: r.fs})

	summary := &TestSummary{Results: []*TestResult{}}
	if len(modules) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	compiler := ast.NewCompiler()
	compiler.Compile(modules)
	if compiler.Failed() {
		msgs := make([]string, 0, len(compiler.Errors))
		for _, err := range compiler.Errors {
			msgs = append(msgs, err.Error())
		}
		return nil, fmt.Errorf("compile policies: %s", strings.Join(msgs, "; "))
	}

	runner := tester.NewRunner().
		SetCompiler(compiler).
		SetModules(modules).
		EnableTracing(true).
		SetTimeout(testTimeout)

	ch, err := runner.RunTests(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("run tests: %w", err)
	}

	for tr := range ch {
		res := &TestResult{
			Name:     tr.Name,
			Package:  tr.Package,
			Duration: tr.Duration,
		}
		switch {
		case tr.Skip:
			res.Status = StatusSkip
		case tr.Error != nil:
			res.Status = StatusError
			res.Error = tr.Error.Error()
		case tr.Fail:
			res.Status = StatusFail
		default:
			res.Status = StatusPass
		}

		// Surface note/print output from traces.
		for _, evt := range tr.Trace {
			if evt.Op == topdown.NoteOp && evt.Message != "" {
				res.Output = append(res.Output, evt.Message)
			}
		}

		summary.add(res)
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// parseModules parses every .rego file under the policies directory, keyed
// by path relative to it so test names stay readable.
func (r *TestRunner) parseModules() (map[string]*ast.Module, error) {
	modules := make(map[string]*ast.Module)

	exists, err := afero.DirExists(r.fs, r.policiesDir)
	if err != nil || !exists {
		return modules, err
	}

	err = afero.Walk(r.fs, r.policiesDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".rego") {
			return nil
		}

		content, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		module, err := ast.ParseModule(path, string(content))
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		name := path
		if rel, err := filepath.Rel(r.policiesDir, path); err == nil {
			name = rel
		}
		modules[name] = module
		return nil
	})

	return modules, err
}

// errFoundTest stops the walk in HasTests as soon as one test file turns up.
var errFoundTest = errors.New("test file found")

// HasTests reports whether any *_test.rego file exists under the policies
// directory.
func (r *TestRunner) HasTests() (bool, error) {
	exists, err := afero.DirExists(r.fs, r.policiesDir)
	if err != nil || !exists {
		return false, err
	}

	err = afero.Walk(r.fs, r.policiesDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), "_test.rego") {
			return errFoundTest
		}
		return nil
	})
	if errors.Is(err, errFoundTest) {
		return true, nil
	}
	return false, err
}
