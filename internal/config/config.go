// Package config handles YAML configuration parsing and validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageKind selects the local persistence backend.
type StorageKind string

const (
	StorageFile   StorageKind = "file"
	StorageSQLite StorageKind = "sqlite"
)

// DefaultRelays are used when no relays are configured.
var DefaultRelays = []string{
	"wss://relay.damus.io",
	"wss://relay.primal.net",
	"wss://relay.nostr.band",
	"wss://relay.snort.social",
}

const (
	DefaultPublishTimeout = 5 * time.Second
	DefaultFetchTimeout   = 3 * time.Second
	DefaultFeedLimit      = 30
	DefaultBlossomServer  = "https://blossom.primal.net"
)

// Environment overrides.
const (
	EnvRelayURLs  = "RELAY_URLS"
	EnvBlossomURL = "BLOSSOM_URL"
	EnvDataDir    = "SUNDAY_DATA_DIR"
)

// Config represents the sunday.yaml configuration file.
type Config struct {
	// Relays receive published issues and answer feed queries.
	Relays []string `yaml:"relays,omitempty"`

	// Per-relay timeouts
	PublishTimeout time.Duration `yaml:"publish_timeout,omitempty"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout,omitempty"`

	// FeedLimit is the number of issues requested from each relay.
	FeedLimit int `yaml:"feed_limit,omitempty"`

	// Local state
	Storage StorageKind `yaml:"storage,omitempty"`
	DataDir string      `yaml:"data_dir,omitempty"`

	// BlossomServer hosts uploaded images.
	BlossomServer string `yaml:"blossom_server,omitempty"`

	// Path is the file the config was loaded from, empty for defaults.
	// Not parsed from YAML, set by Load().
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	relays := make([]string, len(DefaultRelays))
	copy(relays, DefaultRelays)
	return &Config{
		Relays:         relays,
		PublishTimeout: DefaultPublishTimeout,
		FetchTimeout:   DefaultFetchTimeout,
		FeedLimit:      DefaultFeedLimit,
		Storage:        StorageFile,
		DataDir:        defaultDataDir(),
		BlossomServer:  DefaultBlossomServer,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sunday/sunday.yaml, falling back to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "sunday", "sunday.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sunday", "sunday.yaml")
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "sunday")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "sunday")
}

// Load reads and parses a config file. An empty path means DefaultPath, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, err
	}

	if absPath, err := filepath.Abs(path); err == nil {
		cfg.Path = absPath
	} else {
		cfg.Path = path
	}

	return cfg, nil
}

// Parse reads config from a reader. Keys that are not set keep their defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.Storage = StorageKind(strings.ToLower(string(cfg.Storage)))
	cfg.DataDir = expandHome(cfg.DataDir)

	return cfg, nil
}

// ApplyEnv applies environment overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvRelayURLs); v != "" {
		var relays []string
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				relays = append(relays, u)
			}
		}
		if len(relays) > 0 {
			c.Relays = relays
		}
	}
	if v := getenv(EnvBlossomURL); v != "" {
		c.BlossomServer = strings.TrimSpace(v)
	}
	if v := getenv(EnvDataDir); v != "" {
		c.DataDir = expandHome(strings.TrimSpace(v))
	}
}

// Validate checks that the config is usable.
func (c *Config) Validate() error {
	if len(c.Relays) == 0 {
		return fmt.Errorf("no relays configured")
	}
	for _, r := range c.Relays {
		if err := ValidateRelayURL(r); err != nil {
			return fmt.Errorf("invalid relay %q: %w", r, err)
		}
	}

	if c.PublishTimeout <= 0 {
		return fmt.Errorf("publish_timeout must be positive, got %s", c.PublishTimeout)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.FeedLimit <= 0 {
		return fmt.Errorf("feed_limit must be positive, got %d", c.FeedLimit)
	}

	switch c.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q: must be %q or %q", c.Storage, StorageFile, StorageSQLite)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}

	if c.BlossomServer != "" {
		if err := ValidateURL(c.BlossomServer); err != nil {
			return fmt.Errorf("invalid blossom_server: %w", err)
		}
	}

	return nil
}

// ValidateRelayURL checks that a relay URL uses ws or wss and has a host.
func ValidateRelayURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return fmt.Errorf("relay URL must have ws or wss scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

// ValidateURL checks if a string is a valid URL with http/https scheme.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must have http or https scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	// Host must be localhost or contain a dot (domain.tld)
	host := parsed.Hostname()
	if host != "localhost" && !strings.Contains(host, ".") {
		return fmt.Errorf("invalid host %q: must be a valid domain (e.g., blossom.example.com)", host)
	}

	return nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
