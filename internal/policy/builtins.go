package policy

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/types"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// BuiltinContext supplies the filesystem and working directory the
// taskscout.* built-ins read from. Injecting afero keeps them testable.
type BuiltinContext struct {
	// WorkDir anchors relative paths passed to built-ins from Rego.
	WorkDir string
	// Fs is the filesystem the built-ins read through.
	Fs afero.Fs
}

// NewBuiltinContext creates a context backed by the OS filesystem.
func NewBuiltinContext(workDir string) *BuiltinContext {
	return &BuiltinContext{WorkDir: workDir, Fs: afero.NewOsFs()}
}

// abs anchors a relative path at the working directory.
func (bc *BuiltinContext) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(bc.WorkDir, path)
}

// builtinSpec declares one custom built-in: its OPA signature, the term to
// return when the argument is not a string, and the implementation.
type builtinSpec struct {
	name     string
	decl     *types.Function
	fallback *ast.Term
	impl     func(bc *BuiltinContext, arg string) *ast.Term
}

// builtinSpecs lists every taskscout.* function available to policies.
//
//	taskscout.timeline_days(band)        upper bound of a timeline band in days, -1 if unparseable
//	taskscout.snapshot_item_count(path)  number of work items in a snapshot file, -1 on error
//	taskscout.file_exists(path)          whether the file exists
var builtinSpecs = []builtinSpec{
	{
		name:     "taskscout.timeline_days",
		decl:     types.NewFunction(types.Args(types.S), types.N),
		fallback: ast.IntNumberTerm(-1),
		impl: func(_ *BuiltinContext, band string) *ast.Term {
			return ast.IntNumberTerm(timelineDays(band))
		},
	},
	{
		name:     "taskscout.snapshot_item_count",
		decl:     types.NewFunction(types.Args(types.S), types.N),
		fallback: ast.IntNumberTerm(-1),
		impl: func(bc *BuiltinContext, path string) *ast.Term {
			return ast.IntNumberTerm(snapshotItemCount(bc, path))
		},
	},
	{
		name:     "taskscout.file_exists",
		decl:     types.NewFunction(types.Args(types.S), types.B),
		fallback: ast.BooleanTerm(false),
		impl: func(bc *BuiltinContext, path string) *ast.Term {
			return ast.BooleanTerm(fileExists(bc, path))
		},
	},
}

// RegisterBuiltins registers the taskscout.* functions with OPA's global
// registry and returns their names. Registering again is harmless; the most
// recent context wins.
func RegisterBuiltins(bc *BuiltinContext) []string {
	names := make([]string, 0, len(builtinSpecs))
	for _, spec := range builtinSpecs {
		fn := &rego.Function{Name: spec.name, Decl: spec.decl, Memoize: true}
		rego.RegisterBuiltin1(fn, func(_ rego.BuiltinContext, t *ast.Term) (*ast.Term, error) {
			s, ok := t.Value.(ast.String)
			if !ok {
				return spec.fallback, nil
			}
			return spec.impl(bc, string(s)), nil
		})
		names = append(names, spec.name)
	}
	return names
}

// GetBuiltinNames returns the names of the taskscout.* built-ins.
func GetBuiltinNames() []string {
	names := make([]string, len(builtinSpecs))
	for i, spec := range builtinSpecs {
		names[i] = spec.name
	}
	return names
}

// IsBuiltin reports whether name refers to a taskscout built-in, with or
// without the "taskscout." prefix.
func IsBuiltin(name string) bool {
	for _, spec := range builtinSpecs {
		if spec.name == name || strings.HasSuffix(spec.name, "."+name) {
			return true
		}
	}
	return false
}

// timelineBandRe matches the duration bands the decomposition engine emits,
// e.g. "3-5 days" or "1-2 weeks".
var timelineBandRe = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)\s*(day|week)s?$`)

// timelineDays converts a timeline band to its upper bound in days.
func timelineDays(band string) int {
	m := timelineBandRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(band)))
	if m == nil {
		return -1
	}
	upper, err := strconv.Atoi(m[2])
	if err != nil {
		return -1
	}
	if m[3] == "week" {
		upper *= 7
	}
	return upper
}

// snapshotItemCount counts the work items in a snapshot file. Snapshots
// carry a top-level items list in either YAML or JSON.
func snapshotItemCount(bc *BuiltinContext, path string) int {
	full := bc.abs(path)
	content, err := afero.ReadFile(bc.Fs, full)
	if err != nil {
		return -1
	}

	var doc struct {
		Items []any `json:"items" yaml:"items"`
	}
	switch strings.ToLower(filepath.Ext(full)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return -1
		}
	default:
		if err := json.Unmarshal(content, &doc); err != nil {
			return -1
		}
	}
	return len(doc.Items)
}

// fileExists reports whether path exists under the work directory.
func fileExists(bc *BuiltinContext, path string) bool {
	exists, _ := afero.Exists(bc.Fs, bc.abs(path))
	return exists
}
