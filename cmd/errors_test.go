package cmd

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func setVerbose(t *testing.T, on bool) {
	t.Helper()
	viper.Set("verbose", on)
	t.Cleanup(func() { viper.Set("verbose", false) })
}

func TestPrintErrorQuietByDefault(t *testing.T) {
	setVerbose(t, false)

	out := captureStderr(t, func() {
		PrintError("Could not rank work items", errors.New("open snapshot.json: permission denied"))
	})

	if !strings.Contains(out, "Could not rank work items") {
		t.Errorf("missing user message, got %q", out)
	}
	if strings.Contains(out, "permission denied") {
		t.Errorf("cause should stay hidden without --verbose, got %q", out)
	}
}

func TestPrintErrorVerboseAddsCause(t *testing.T) {
	setVerbose(t, true)

	out := captureStderr(t, func() {
		PrintError("Could not rank work items", errors.New("open snapshot.json: permission denied"))
	})

	if !strings.Contains(out, "Could not rank work items") {
		t.Errorf("missing user message, got %q", out)
	}
	if !strings.Contains(out, "cause: open snapshot.json: permission denied") {
		t.Errorf("missing cause line, got %q", out)
	}
}

func TestPrintErrorVerboseSkipsDuplicateCause(t *testing.T) {
	setVerbose(t, true)

	err := errors.New("item 42 not found in snapshot")
	out := captureStderr(t, func() {
		PrintError("Error: item 42 not found in snapshot", err)
	})

	if strings.Contains(out, "cause:") {
		t.Errorf("cause already visible in the message, got %q", out)
	}
}

func TestPrintErrorNilCause(t *testing.T) {
	setVerbose(t, true)

	out := captureStderr(t, func() {
		PrintError("Nothing to expand", nil)
	})

	if strings.TrimSpace(out) != "Nothing to expand" {
		t.Errorf("got %q, want just the message", out)
	}
}

func TestLogErrorGatedOnVerbose(t *testing.T) {
	setVerbose(t, false)
	out := captureStderr(t, func() {
		LogError("record policy decision", errors.New("database is locked"))
	})
	if out != "" {
		t.Errorf("LogError should be silent without --verbose, got %q", out)
	}

	setVerbose(t, true)
	out = captureStderr(t, func() {
		LogError("record policy decision", errors.New("database is locked"))
	})
	if !strings.Contains(out, "debug: record policy decision: database is locked") {
		t.Errorf("got %q", out)
	}

	out = captureStderr(t, func() {
		LogError("telemetry disabled", nil)
	})
	if !strings.Contains(out, "debug: telemetry disabled") {
		t.Errorf("got %q", out)
	}
}
