package telemetry

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/posthog/posthog-go"
)

// mockEnqueuer captures events for testing.
type mockEnqueuer struct {
	mu     sync.Mutex
	events []posthog.Capture
	closed bool
}

func (m *mockEnqueuer) Enqueue(msg posthog.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if capture, ok := msg.(posthog.Capture); ok {
		m.events = append(m.events, capture)
	}
	return nil
}

func (m *mockEnqueuer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockEnqueuer) getEvents() []posthog.Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]posthog.Capture, len(m.events))
	copy(out, m.events)
	return out
}

func optedIn(id string) *Config {
	return &Config{Enabled: true, ConsentAsked: true, AnonymousID: id}
}

func TestTrackStampsStandardProps(t *testing.T) {
	mock := &mockEnqueuer{}
	client := newPostHogClientWithEnqueuer(mock, optedIn("anon-123"), "0.2.0")

	client.Track(EventCommandExecuted, Properties{
		"command":     "breakdown",
		"success":     true,
		"duration_ms": 1500,
	})

	events := mock.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]

	if ev.Event != EventCommandExecuted {
		t.Errorf("event = %q, want %q", ev.Event, EventCommandExecuted)
	}
	if ev.DistinctId != "anon-123" {
		t.Errorf("distinct_id = %q, want the anonymous ID", ev.DistinctId)
	}
	if ev.Properties["command"] != "breakdown" || ev.Properties["duration_ms"] != 1500 {
		t.Errorf("event props not forwarded: %v", ev.Properties)
	}

	for key, want := range map[string]any{
		"os":                      runtime.GOOS,
		"arch":                    runtime.GOARCH,
		"cli_version":             "0.2.0",
		"$process_person_profile": false,
	} {
		if got := ev.Properties[key]; got != want {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestTrackRespectsConsent(t *testing.T) {
	mock := &mockEnqueuer{}
	client := newPostHogClientWithEnqueuer(mock, &Config{Enabled: false, ConsentAsked: true}, "0.2.0")

	client.Track(EventCommandExecuted, Properties{"command": "recommend"})

	if n := len(mock.getEvents()); n != 0 {
		t.Errorf("opted-out client sent %d event(s)", n)
	}
}

func TestTrackOnZeroValueClient(t *testing.T) {
	var client PostHogClient

	// Must not panic with no transport and no consent state.
	client.Track("anything", nil)
	if err := client.Close(); err != nil {
		t.Errorf("Close on zero value = %v", err)
	}
}

func TestTrackAfterCloseIsDropped(t *testing.T) {
	mock := &mockEnqueuer{}
	client := newPostHogClientWithEnqueuer(mock, optedIn("anon-9"), "0.2.0")

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !mock.closed {
		t.Error("underlying transport should be closed")
	}

	client.Track(EventCommandExecuted, Properties{"command": "recommend"})
	if n := len(mock.getEvents()); n != 0 {
		t.Errorf("Track after Close enqueued %d event(s)", n)
	}

	// Double Close stays quiet.
	if err := client.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestNewPostHogClientRejectsIncompleteConfig(t *testing.T) {
	if _, err := NewPostHogClient(ClientConfig{Version: "0.2.0", Config: optedIn("x")}); err == nil {
		t.Error("expected an error without an API key")
	}
	if _, err := NewPostHogClient(ClientConfig{APIKey: "phc_test", Version: "0.2.0"}); err == nil {
		t.Error("expected an error without consent state")
	}
}

func TestTrackConcurrent(t *testing.T) {
	mock := &mockEnqueuer{}
	client := newPostHogClientWithEnqueuer(mock, optedIn("anon-7"), "0.2.0")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			client.Track("concurrent_event", Properties{"iteration": n})
		}(i)
	}
	wg.Wait()

	if n := len(mock.getEvents()); n != 100 {
		t.Errorf("expected 100 events, got %d", n)
	}
}

func TestNoopClient(t *testing.T) {
	client := NewNoopClient()
	client.Track("event", Properties{"key": "value"})
	if err := client.Close(); err != nil {
		t.Errorf("NoopClient.Close() = %v", err)
	}
}

// recorderClient implements Client for package-level lifecycle tests.
type recorderClient struct {
	mu     sync.Mutex
	events []string
	props  []Properties
	closed bool
}

func (r *recorderClient) Track(event string, properties Properties) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.props = append(r.props, properties)
}

func (r *recorderClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestTrackCommand_Success(t *testing.T) {
	rec := &recorderClient{}
	setClient(rec)
	defer setClient(NewNoopClient())

	TrackCommand("recommend", 250*time.Millisecond, true, "")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	if rec.events[0] != EventCommandExecuted {
		t.Errorf("event = %q, want %q", rec.events[0], EventCommandExecuted)
	}
	props := rec.props[0]
	if props["command"] != "recommend" {
		t.Errorf("command = %v, want %q", props["command"], "recommend")
	}
	if props["duration_ms"] != int64(250) {
		t.Errorf("duration_ms = %v, want 250", props["duration_ms"])
	}
	if props["success"] != true {
		t.Errorf("success = %v, want true", props["success"])
	}
	if _, ok := props["error_type"]; ok {
		t.Error("successful commands should not carry error_type")
	}
}

func TestTrackCommand_Error(t *testing.T) {
	rec := &recorderClient{}
	setClient(rec)
	defer setClient(NewNoopClient())

	TrackCommand("breakdown", 10*time.Millisecond, false, "not_found")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	if rec.events[0] != EventCommandError {
		t.Errorf("event = %q, want %q", rec.events[0], EventCommandError)
	}
	if rec.props[0]["error_type"] != "not_found" {
		t.Errorf("error_type = %v, want %q", rec.props[0]["error_type"], "not_found")
	}
}

func TestPackageLevel_CloseFlushesClient(t *testing.T) {
	rec := &recorderClient{}
	setClient(rec)
	defer setClient(NewNoopClient())

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !rec.closed {
		t.Error("Close() should close the active client")
	}
}

func TestTrackSnapshotImported(t *testing.T) {
	rec := &recorderClient{}
	setClient(rec)
	defer setClient(NewNoopClient())

	TrackSnapshotImported(12, "json")

	if len(rec.events) != 1 || rec.events[0] != EventSnapshotImported {
		t.Fatalf("expected one %s event, got %v", EventSnapshotImported, rec.events)
	}
	if rec.props[0]["item_count"] != 12 {
		t.Errorf("item_count = %v, want 12", rec.props[0]["item_count"])
	}
	if rec.props[0]["format"] != "json" {
		t.Errorf("format = %v, want %q", rec.props[0]["format"], "json")
	}
}
