package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model. It carries the
// operator-owned settings: credentials, the account to mirror, the sync
// interval, and where state and the vault live.
type Config struct {
	Account     AccountConfig     `yaml:"account"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Sync        SyncConfig        `yaml:"sync"`
	Storage     StorageConfig     `yaml:"storage"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type AccountConfig struct {
	// Handle without the leading "@"
	Handle string `yaml:"handle"`
}

type CredentialsConfig struct {
	// X API bearer token. If empty, read from env X_BEARER_TOKEN
	BearerToken string `yaml:"bearerToken"`
}

type SyncConfig struct {
	// Minutes between scheduled sync passes
	IntervalMinutes int `yaml:"intervalMinutes"`
}

type StorageConfig struct {
	DBPath    string `yaml:"dbPath"`
	VaultPath string `yaml:"vaultPath"`
}

type MetricsConfig struct {
	// Listen address for /metrics, e.g. ":9090". Empty disables the server.
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Sync:    SyncConfig{IntervalMinutes: 60},
		Storage: StorageConfig{DBPath: "./xsync.db", VaultPath: "./vault"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.BearerToken == "" {
		c.Credentials.BearerToken = os.Getenv("X_BEARER_TOKEN")
	}
	if c.Account.Handle == "" {
		c.Account.Handle = os.Getenv("XSYNC_HANDLE")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Sync.IntervalMinutes <= 0 {
		cfg.Sync.IntervalMinutes = Default().Sync.IntervalMinutes
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = Default().Storage.DBPath
	}
	if cfg.Storage.VaultPath == "" {
		cfg.Storage.VaultPath = Default().Storage.VaultPath
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
