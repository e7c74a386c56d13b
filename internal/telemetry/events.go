package telemetry

import (
	"sync"
	"time"
)

// Event names recorded by TaskScout. Every event is a command-shaped
// fact with counts and durations; item titles, bodies, rosters, and file
// paths are never sent.
const (
	EventCommandExecuted  = "command_executed"
	EventCommandError     = "command_error"
	EventBreakdownApplied = "breakdown_applied"
	EventPolicyDenied     = "policy_denied"
	EventSnapshotImported = "snapshot_imported"
)

// Package-level client. Starts as a no-op and is swapped in by Init so
// call sites can Track unconditionally.
var (
	defaultClient   Client = NewNoopClient()
	defaultClientMu sync.RWMutex
)

// Init wires the package-level client from the saved consent state.
// Without an API key or without consent the no-op stays in place.
func Init(apiKey, endpoint, version string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if apiKey == "" || !cfg.IsEnabled() {
		return nil
	}

	client, err := NewPostHogClient(ClientConfig{
		APIKey:   apiKey,
		Version:  version,
		Config:   cfg,
		Endpoint: endpoint,
	})
	if err != nil {
		return err
	}

	defaultClientMu.Lock()
	defaultClient = client
	defaultClientMu.Unlock()
	return nil
}

// setClient swaps the package-level client (for testing).
func setClient(c Client) {
	defaultClientMu.Lock()
	defaultClient = c
	defaultClientMu.Unlock()
}

// Track forwards an event to the package-level client.
func Track(event string, properties Properties) {
	defaultClientMu.RLock()
	c := defaultClient
	defaultClientMu.RUnlock()
	c.Track(event, properties)
}

// Close flushes the package-level client. Called once at process exit.
func Close() error {
	defaultClientMu.RLock()
	c := defaultClient
	defaultClientMu.RUnlock()
	return c.Close()
}

// TrackCommand records one command execution: name, wall time, outcome.
// errorType is a coarse category (for example "not_found"), never the
// error text.
func TrackCommand(command string, duration time.Duration, success bool, errorType string) {
	props := Properties{
		"command":     command,
		"duration_ms": duration.Milliseconds(),
		"success":     success,
	}
	event := EventCommandExecuted
	if !success {
		event = EventCommandError
		if errorType != "" {
			props["error_type"] = errorType
		}
	}
	Track(event, props)
}

// TrackBreakdownApplied records a completed apply (counts only).
func TrackBreakdownApplied(subtaskCount int, policyChecked bool) {
	Track(EventBreakdownApplied, Properties{
		"subtask_count":  subtaskCount,
		"policy_checked": policyChecked,
	})
}

// TrackPolicyDenied records a policy denial (violation count only, NOT
// the violation messages).
func TrackPolicyDenied(violationCount int) {
	Track(EventPolicyDenied, Properties{
		"violation_count": violationCount,
	})
}

// TrackSnapshotImported records a snapshot import (counts only).
func TrackSnapshotImported(itemCount int, format string) {
	Track(EventSnapshotImported, Properties{
		"item_count": itemCount,
		"format":     format,
	})
}
