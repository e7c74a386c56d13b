package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultPoliciesDir is the policy directory name relative to .taskscout.
const DefaultPoliciesDir = "policies"

// PolicyFile is one loaded Rego source file.
type PolicyFile struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// LoadDir returns every .rego file under dir, scanning recursively in
// lexical order. A missing directory yields no policies rather than an
// error; a project without policies simply has nothing to enforce.
func LoadDir(fsys afero.Fs, dir string) ([]*PolicyFile, error) {
	if _, err := fsys.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat policies directory: %w", err)
	}

	var files []*PolicyFile
	walk := func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(path) != ".rego" {
			return nil
		}
		content, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read policy %s: %w", path, err)
		}
		files = append(files, &PolicyFile{
			Path:    path,
			Name:    strings.TrimSuffix(filepath.Base(path), ".rego"),
			Content: string(content),
		})
		return nil
	}
	if err := afero.Walk(fsys, dir, walk); err != nil {
		return nil, fmt.Errorf("scan policies directory: %w", err)
	}
	return files, nil
}

// PoliciesPath is the policies directory for a project root.
func PoliciesPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".taskscout", DefaultPoliciesDir)
}
