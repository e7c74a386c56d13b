package telemetry

import (
	"errors"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client is what command code talks to. Tests substitute a recorder and
// disabled builds substitute a no-op.
type Client interface {
	// Track enqueues an event without blocking. No-op when telemetry
	// is disabled.
	Track(event string, properties Properties)

	// Close flushes pending events and releases the transport.
	Close() error
}

// Properties carries event fields.
type Properties = map[string]any

// enqueuer is the slice of the PostHog SDK the client actually uses,
// kept small so tests can fake it.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient ships events to PostHog asynchronously.
type PostHogClient struct {
	mu      sync.Mutex
	client  enqueuer
	consent *Config
	version string
}

// ClientConfig holds everything needed to bring up the telemetry client.
type ClientConfig struct {
	// APIKey is the PostHog project API key.
	APIKey string

	// Version is the CLI version stamped onto every event.
	Version string

	// Config carries the consent state and anonymous ID.
	Config *Config

	// Endpoint overrides the PostHog cloud endpoint (self-hosted setups).
	Endpoint string
}

// NewPostHogClient creates a PostHog-backed telemetry client. Callers are
// expected to have checked consent and key presence already; Init does.
func NewPostHogClient(cfg ClientConfig) (*PostHogClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("telemetry: missing API key")
	}
	if cfg.Config == nil {
		return nil, errors.New("telemetry: missing consent state")
	}

	phConfig := posthog.Config{
		// A CLI run produces a handful of events at most, so a small
		// batch and a short flush interval beat the SDK defaults.
		BatchSize: 10,
		Interval:  1 * time.Second,
		// Transport warnings must not leak into command output.
		Logger: silentLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}

	return &PostHogClient{
		client:  client,
		consent: cfg.Config,
		version: cfg.Version,
	}, nil
}

// newPostHogClientWithEnqueuer wires a custom enqueuer (for testing).
func newPostHogClientWithEnqueuer(enq enqueuer, consent *Config, version string) *PostHogClient {
	return &PostHogClient{client: enq, consent: consent, version: version}
}

// Track enqueues an event and returns immediately. Events are dropped
// silently after Close or when consent has not been given.
func (c *PostHogClient) Track(event string, properties Properties) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil || c.consent == nil || !c.consent.IsEnabled() {
		return
	}

	props := posthog.NewProperties().
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH).
		Set("cli_version", c.version).
		Set("$process_person_profile", false)
	for k, v := range properties {
		props.Set(k, v)
	}

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.consent.AnonymousID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes the event queue and drops the transport, so a Track that
// races a shutdown becomes a no-op instead of an enqueue into a closed
// SDK. Closing twice is fine.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// NoopClient discards every event.
type NoopClient struct{}

// NewNoopClient returns a client that does nothing, used until Init swaps
// in a real one.
func NewNoopClient() *NoopClient { return &NoopClient{} }

// Track is a no-op.
func (c *NoopClient) Track(event string, properties Properties) {}

// Close is a no-op.
func (c *NoopClient) Close() error { return nil }

// silentLogger swallows PostHog SDK logs.
type silentLogger struct{}

func (silentLogger) Debugf(string, ...any) {}
func (silentLogger) Logf(string, ...any)   {}
func (silentLogger) Warnf(string, ...any)  {}
func (silentLogger) Errorf(string, ...any) {}
