package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "empty uses defaults",
			yaml: ``,
			check: func(c *Config) bool {
				return len(c.Relays) == len(DefaultRelays) &&
					c.PublishTimeout == DefaultPublishTimeout &&
					c.FetchTimeout == DefaultFetchTimeout &&
					c.FeedLimit == DefaultFeedLimit &&
					c.Storage == StorageFile &&
					c.BlossomServer == DefaultBlossomServer
			},
		},
		{
			name: "relays replace defaults",
			yaml: `
relays:
  - wss://relay.example.com
  - ws://localhost:7777
`,
			check: func(c *Config) bool {
				return len(c.Relays) == 2 &&
					c.Relays[0] == "wss://relay.example.com" &&
					c.Relays[1] == "ws://localhost:7777"
			},
		},
		{
			name: "durations",
			yaml: `
publish_timeout: 2s
fetch_timeout: 1500ms
`,
			check: func(c *Config) bool {
				return c.PublishTimeout == 2*time.Second &&
					c.FetchTimeout == 1500*time.Millisecond
			},
		},
		{
			name: "storage is case insensitive",
			yaml: `storage: SQLite`,
			check: func(c *Config) bool {
				return c.Storage == StorageSQLite
			},
		},
		{
			name: "feed limit",
			yaml: `feed_limit: 10`,
			check: func(c *Config) bool {
				return c.FeedLimit == 10 && len(c.Relays) == len(DefaultRelays)
			},
		},
		{
			name:    "bad duration",
			yaml:    `publish_timeout: soon`,
			wantErr: true,
		},
		{
			name:    "bad shape",
			yaml:    `relays: {a: b}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(strings.NewReader(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.check != nil && !tt.check(cfg) {
				t.Errorf("check failed for config: %+v", cfg)
			}
		})
	}
}

func TestParseExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg, err := Parse(strings.NewReader(`data_dir: ~/sunday-data`))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "sunday-data"); cfg.DataDir != want {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, want)
	}
}

func TestDefaultsAreIndependent(t *testing.T) {
	a := Default()
	a.Relays[0] = "wss://changed.example.com"
	if Default().Relays[0] == "wss://changed.example.com" {
		t.Error("Default() shares its relay slice")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvRelayURLs:  " wss://a.example.com , ,wss://b.example.com",
		EnvBlossomURL: "https://cdn.example.com",
		EnvDataDir:    "/tmp/sunday",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if len(cfg.Relays) != 2 || cfg.Relays[0] != "wss://a.example.com" || cfg.Relays[1] != "wss://b.example.com" {
		t.Errorf("Relays = %v", cfg.Relays)
	}
	if cfg.BlossomServer != "https://cdn.example.com" {
		t.Errorf("BlossomServer = %q", cfg.BlossomServer)
	}
	if cfg.DataDir != "/tmp/sunday" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
}

func TestApplyEnvEmpty(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(string) string { return "" })
	if len(cfg.Relays) != len(DefaultRelays) {
		t.Errorf("empty environment changed relays: %v", cfg.Relays)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "no relays", modify: func(c *Config) { c.Relays = nil }, wantErr: true},
		{name: "http relay", modify: func(c *Config) { c.Relays = []string{"https://relay.example.com"} }, wantErr: true},
		{name: "relay without host", modify: func(c *Config) { c.Relays = []string{"wss://"} }, wantErr: true},
		{name: "zero publish timeout", modify: func(c *Config) { c.PublishTimeout = 0 }, wantErr: true},
		{name: "negative fetch timeout", modify: func(c *Config) { c.FetchTimeout = -time.Second }, wantErr: true},
		{name: "zero feed limit", modify: func(c *Config) { c.FeedLimit = 0 }, wantErr: true},
		{name: "unknown storage", modify: func(c *Config) { c.Storage = "postgres" }, wantErr: true},
		{name: "sqlite storage", modify: func(c *Config) { c.Storage = StorageSQLite }},
		{name: "empty data dir", modify: func(c *Config) { c.DataDir = "" }, wantErr: true},
		{name: "no blossom server", modify: func(c *Config) { c.BlossomServer = "" }},
		{name: "bad blossom server", modify: func(c *Config) { c.BlossomServer = "ftp://files.example.com" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.DataDir = "/tmp/sunday"
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRelayURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"wss://relay.damus.io", false},
		{"ws://localhost:7777", false},
		{"ws://127.0.0.1:4869/path", false},
		{"https://relay.damus.io", true},
		{"relay.damus.io", true},
		{"wss://", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateRelayURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelayURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://blossom.primal.net", false},
		{"http://localhost:3000", false},
		{"ftp://example.com", true},
		{"https://", true},
		{"https://intranet", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sunday.yaml")
	if err := os.WriteFile(path, []byte("feed_limit: 5\nstorage: sqlite\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FeedLimit != 5 || cfg.Storage != StorageSQLite {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}

	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default config should fall back to defaults: %v", err)
	}
	if cfg.Path != "" || cfg.FeedLimit != DefaultFeedLimit {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != filepath.Join("/xdg", "sunday", "sunday.yaml") {
		t.Errorf("DefaultPath() = %q", got)
	}
}
