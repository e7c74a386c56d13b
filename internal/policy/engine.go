package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/spf13/afero"

	"github.com/taskscout/taskscout/models"
)

// DefaultPolicyPackage is the Rego package queried when none is configured.
const DefaultPolicyPackage = "taskscout.policy"

// Engine evaluates Rego policies against proposed actions.
// Everything runs in-process; no bundle servers or remote data.
type Engine struct {
	policies      []*PolicyFile
	policyPackage string
}

// EngineConfig holds configuration for creating an Engine.
type EngineConfig struct {
	// WorkDir is the project root used to locate the policies directory.
	WorkDir string

	// PoliciesDir is the directory containing .rego policy files.
	// If empty, defaults to {WorkDir}/.taskscout/policies.
	PoliciesDir string

	// PolicyPackage is the Rego package to query.
	// If empty, defaults to "taskscout.policy".
	PolicyPackage string

	// Fs is the filesystem policies are read from. Nil means the real one.
	Fs afero.Fs
}

// NewEngine creates a policy engine and loads policies from the configured
// directory. A missing directory yields an engine with zero policies, which
// allows everything.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.PoliciesDir == "" && cfg.WorkDir != "" {
		cfg.PoliciesDir = PoliciesPath(cfg.WorkDir)
	}
	if cfg.PolicyPackage == "" {
		cfg.PolicyPackage = DefaultPolicyPackage
	}

	// Registers globally with OPA; repeated registration just overwrites.
	RegisterBuiltins(&BuiltinContext{WorkDir: cfg.WorkDir, Fs: cfg.Fs})

	policies, err := LoadDir(cfg.Fs, cfg.PoliciesDir)
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	return &Engine{
		policies:      policies,
		policyPackage: cfg.PolicyPackage,
	}, nil
}

// NewEngineWithPolicies creates an engine from in-memory policies, bypassing
// the filesystem. Used by tests and by callers that fetch policy text from
// somewhere other than the policies directory.
func NewEngineWithPolicies(policies []*PolicyFile) *Engine {
	RegisterBuiltins(NewBuiltinContext(""))
	return &Engine{
		policies:      policies,
		policyPackage: DefaultPolicyPackage,
	}
}

// PolicyCount reports how many policy files the engine holds.
func (e *Engine) PolicyCount() int {
	return len(e.policies)
}

// PolicyNames returns the names of all loaded policies.
func (e *Engine) PolicyNames() []string {
	names := make([]string, 0, len(e.policies))
	for _, p := range e.policies {
		names = append(names, p.Name)
	}
	return names
}

// AddPolicy appends a policy at runtime. Content must be Rego source.
func (e *Engine) AddPolicy(name, content string) {
	e.policies = append(e.policies, &PolicyFile{
		Name:    name,
		Path:    name + ".rego",
		Content: content,
	})
}

// Evaluate runs every loaded policy against input and returns the decision.
//
// The input is exposed to Rego as `input`. For breakdown application the
// shape is:
//
//	{
//	  "item": { "id": 42, "title": "...", "labels": [...] },
//	  "breakdown": { "subtask_count": 5, "total_complexity": 14, ... },
//	  "roster": ["alice", "bob"]
//	}
//
// Strings produced by "deny" rules in the policy package become violations
// and flip the result to deny. Strings produced by "warn" rules are carried
// on the decision but never block.
func (e *Engine) Evaluate(ctx context.Context, input any) (*PolicyDecision, error) {
	decision := e.newDecision(input)

	if len(e.policies) == 0 {
		// Nothing loaded, nothing to deny.
		return decision, nil
	}

	mods := e.regoModules()

	violations, err := e.queryRule(ctx, input, "deny", mods)
	if err != nil {
		return nil, fmt.Errorf("query deny rules: %w", err)
	}
	if len(violations) > 0 {
		decision.Result = PolicyResultDeny
		decision.Violations = violations
	}

	// Warn rules advise without blocking, so their failures are not worth
	// failing the whole evaluation over.
	if warnings, err := e.queryRule(ctx, input, "warn", mods); err == nil {
		decision.Warnings = warnings
	}

	return decision, nil
}

// EvaluateApply gates the application of a breakdown to a work item. It
// builds the standard input shape and evaluates it.
func (e *Engine) EvaluateApply(ctx context.Context, item models.WorkItem, breakdown *models.TaskBreakdown, roster []string) (*PolicyDecision, error) {
	decision, err := e.Evaluate(ctx, NewApplyInput(item, breakdown, roster))
	if err != nil {
		return nil, err
	}
	decision.ItemID = item.ID
	return decision, nil
}

// newDecision stamps a fresh allow decision for the given input.
func (e *Engine) newDecision(input any) *PolicyDecision {
	return &PolicyDecision{
		DecisionID:    uuid.New().String(),
		PolicyPackage: e.policyPackage,
		Result:        PolicyResultAllow,
		Input:         input,
		EvaluatedAt:   time.Now().UTC(),
	}
}

// regoModules wraps each loaded policy as a rego.Module option.
func (e *Engine) regoModules() []func(*rego.Rego) {
	mods := make([]func(*rego.Rego), len(e.policies))
	for i, p := range e.policies {
		mods[i] = rego.Module(p.Path, p.Content)
	}
	return mods
}

// queryRule evaluates data.<package>.<rule> and collects the string set it
// produces. A rule no policy defines yields an empty result, not an error.
func (e *Engine) queryRule(ctx context.Context, input any, rule string, mods []func(*rego.Rego)) ([]string, error) {
	opts := append([]func(*rego.Rego){
		rego.Query(fmt.Sprintf("data.%s.%s", e.policyPackage, rule)),
		rego.Input(input),
	}, mods...)

	rs, err := rego.New(opts...).Eval(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "undefined") {
			return nil, nil
		}
		return nil, err
	}
	return stringSet(rs), nil
}

// stringSet flattens the string values out of a Rego result set.
func stringSet(rs rego.ResultSet) []string {
	var out []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			values, ok := expr.Value.([]any)
			if !ok {
				continue
			}
			for _, v := range values {
				if s, ok := v.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// ValidatePolicy reports whether content parses and compiles as Rego.
func ValidatePolicy(content string) error {
	r := rego.New(
		rego.Query("data"),
		rego.Module("validation.rego", content),
	)
	if _, err := r.PrepareForEval(context.Background()); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}
