// Package telemetry manages opt-in usage reporting. Nothing is sent until
// the user consents, and events never carry item titles, bodies, or paths.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ConfigFileName is the consent file, kept under the home directory rather
// than the project so one answer covers every repo.
const ConfigFileName = "telemetry.json"

// Config is the persisted consent state.
type Config struct {
	Enabled      bool   `json:"enabled"`
	ConsentAsked bool   `json:"consent_asked"`
	AnonymousID  string `json:"anonymous_id"`
}

var configDir struct {
	mu       sync.Mutex
	override string
}

// SetConfigDir redirects consent storage, primarily for tests. An empty
// string restores the default home-directory location.
func SetConfigDir(dir string) {
	configDir.mu.Lock()
	configDir.override = dir
	configDir.mu.Unlock()
}

// GetConfigPath returns the consent file location.
func GetConfigPath() (string, error) {
	configDir.mu.Lock()
	override := configDir.override
	configDir.mu.Unlock()

	if override != "" {
		return filepath.Join(override, ConfigFileName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".taskscout", ConfigFileName), nil
}

// Load reads consent state from disk. A missing file yields the defaults:
// disabled, consent not yet asked, and a freshly minted anonymous ID.
// Stored IDs that fail to parse are replaced rather than propagated.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run, fall through to minting an ID.
	case err != nil:
		return nil, fmt.Errorf("read telemetry config: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse telemetry config: %w", err)
		}
	}

	if _, err := uuid.Parse(cfg.AnonymousID); err != nil {
		cfg.AnonymousID = uuid.NewString()
	}
	return &cfg, nil
}

// Save writes consent state with owner-only permissions. The write goes
// through a temp file so a crash cannot leave a half-written config.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create telemetry config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode telemetry config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write telemetry config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace telemetry config: %w", err)
	}
	return nil
}

// Enable records an explicit opt-in.
func (c *Config) Enable() {
	c.Enabled = true
	c.ConsentAsked = true
}

// Disable records an explicit opt-out.
func (c *Config) Disable() {
	c.Enabled = false
	c.ConsentAsked = true
}

// NeedsConsent reports whether the user has never answered the prompt.
func (c *Config) NeedsConsent() bool { return !c.ConsentAsked }

// IsEnabled reports whether events may be sent.
func (c *Config) IsEnabled() bool { return c.Enabled }
