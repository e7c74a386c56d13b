// Package logger captures panics and writes crash reports under the
// project directory.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"
)

// reportDir is where reports land, relative to the project root.
const reportDir = "crash_logs"

// keepReports bounds how many reports stay on disk.
const keepReports = 20

var session struct {
	mu      sync.Mutex
	command string
	version string
	root    string
}

// SetCommand records the command path for the next report.
func SetCommand(cmd string) {
	session.mu.Lock()
	session.command = cmd
	session.mu.Unlock()
}

// SetVersion records the binary version for the next report.
func SetVersion(v string) {
	session.mu.Lock()
	session.version = v
	session.mu.Unlock()
}

// SetBasePath points reports at the project directory (normally .taskscout).
func SetBasePath(dir string) {
	session.mu.Lock()
	session.root = dir
	session.mu.Unlock()
}

// Report is the JSON document written for one panic.
type Report struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Command    string    `json:"command"`
	PanicValue string    `json:"panic_value"`
	StackTrace string    `json:"stack_trace"`
	GoVersion  string    `json:"go_version"`
	OS         string    `json:"os"`
	Arch       string    `json:"arch"`
}

// HandlePanic recovers a panic, persists a report, and exits non-zero.
// Deferred once at the top of Execute.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	rep := newReport(r)
	path, err := writeReport(rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not write crash report: %v\n", err)
		fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, rep.StackTrace)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\ntaskscout hit an unexpected error and had to stop.\n")
	fmt.Fprintf(os.Stderr, "A crash report was written to %s\n", path)
	fmt.Fprintf(os.Stderr, "Please attach it when filing an issue: https://github.com/taskscout/taskscout/issues\n")
	os.Exit(1)
}

func newReport(panicValue any) Report {
	session.mu.Lock()
	cmd, ver := session.command, session.version
	session.mu.Unlock()

	return Report{
		Timestamp:  time.Now().UTC(),
		Version:    ver,
		Command:    cmd,
		PanicValue: fmt.Sprint(panicValue),
		StackTrace: string(debug.Stack()),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
}

// writeReport persists rep and prunes old reports first. It returns the
// path of the file it wrote.
func writeReport(rep Report) (string, error) {
	dir := reportPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if err := pruneReports(dir); err != nil {
		fmt.Fprintf(os.Stderr, "could not prune old crash reports: %v\n", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	name := fmt.Sprintf("panic-%s.json", rep.Timestamp.Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func reportPath() string {
	session.mu.Lock()
	root := session.root
	session.mu.Unlock()

	if root == "" {
		root = ".taskscout"
	}
	return filepath.Join(root, reportDir)
}

// pruneReports deletes the oldest reports beyond keepReports-1, leaving
// room for the one about to be written. Timestamped names sort
// chronologically, so a plain string sort orders them oldest first.
func pruneReports(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "panic-") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) < keepReports {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-keepReports+1] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
