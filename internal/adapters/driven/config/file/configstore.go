// Package file provides the TOML configuration store for forgecache and
// a file-backed credential source. A single config file carries the
// engine tuning knobs together with the user's credential entries.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
)

// DefaultUserID identifies the local user in single-user deployments.
const DefaultUserID = "local"

// EngineSection tunes the cache population engine.
type EngineSection struct {
	CacheTTLSeconds     int `toml:"cache_ttl_seconds"`
	PageSize            int `toml:"page_size"`
	MaxPages            int `toml:"max_pages"`
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	SearchWaitSeconds   int `toml:"search_wait_seconds"`
}

// CredentialSection is one credential entry as it appears on disk.
type CredentialSection struct {
	Provider string `toml:"provider"`
	Domain   string `toml:"domain"`
	Token    string `toml:"token"`
	Username string `toml:"username,omitempty"`
}

// Config is the full configuration file.
type Config struct {
	// User is the logical user ID the credential entries belong to.
	User string `toml:"user,omitempty"`
	// CacheBackend selects "memory" or "sqlite".
	CacheBackend string `toml:"cache_backend,omitempty"`
	// DataDir is where the sqlite backend keeps its database.
	DataDir string `toml:"data_dir,omitempty"`

	Engine      EngineSection       `toml:"engine"`
	Credentials []CredentialSection `toml:"credentials"`
}

// DefaultPath returns ~/.forgecache/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".forgecache", "config.toml"), nil
}

// Load reads the configuration from path. If path is empty the default
// location is used. A missing file yields the zero config, not an error,
// so a fresh install works before any file is written.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to path, creating the directory if
// needed. The file is user-only: it holds secrets.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// UserID returns the configured user ID, defaulting to DefaultUserID.
func (c *Config) UserID() string {
	if c.User != "" {
		return c.User
	}
	return DefaultUserID
}

// EngineConfig converts the file section to domain.EngineConfig.
// Unset fields fall back to the engine defaults.
func (c *Config) EngineConfig() domain.EngineConfig {
	return domain.EngineConfig{
		CacheTTL:     time.Duration(c.Engine.CacheTTLSeconds) * time.Second,
		PageSize:     c.Engine.PageSize,
		MaxPages:     c.Engine.MaxPages,
		PollInterval: time.Duration(c.Engine.PollIntervalSeconds) * time.Second,
		SearchWait:   time.Duration(c.Engine.SearchWaitSeconds) * time.Second,
	}.Normalised()
}

// Entries maps the credential sections to domain entries owned by the
// configured user. Unknown provider strings are dropped with no error;
// validation of the file shape belongs to the caller surface.
func (c *Config) Entries() []domain.CredentialEntry {
	entries := make([]domain.CredentialEntry, 0, len(c.Credentials))
	for _, cred := range c.Credentials {
		provider := domain.ProviderType(cred.Provider)
		if !provider.IsValid() {
			continue
		}
		entries = append(entries, domain.CredentialEntry{
			UserID:   c.UserID(),
			Provider: provider,
			Domain:   cred.Domain,
			Secret:   cred.Token,
			Username: cred.Username,
		})
	}
	return entries
}

// Ensure CredentialSource implements the interface.
var _ driven.CredentialSource = (*CredentialSource)(nil)

// CredentialSource serves the config file's credential entries.
// Entries are snapshotted at construction; reload by rebuilding.
type CredentialSource struct {
	entries []domain.CredentialEntry
}

// NewCredentialSource creates a credential source from a loaded config.
func NewCredentialSource(cfg *Config) *CredentialSource {
	return &CredentialSource{entries: cfg.Entries()}
}

// EntriesFor returns the entries for one user and provider type,
// in file order.
func (s *CredentialSource) EntriesFor(
	_ context.Context, userID string, provider domain.ProviderType,
) ([]domain.CredentialEntry, error) {
	var out []domain.CredentialEntry
	for _, e := range s.entries {
		if e.UserID == userID && e.Provider == provider {
			out = append(out, e)
		}
	}
	return out, nil
}
