// Package config loads devcompass settings from a YAML file, an optional
// .env file and DEVCOMPASS_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/devcompass/devcompass/internal/auth"
	"github.com/devcompass/devcompass/internal/judge"
	"github.com/devcompass/devcompass/internal/llm"
	"github.com/devcompass/devcompass/internal/logging"
	"github.com/devcompass/devcompass/internal/store"
)

// DBFile is the SQLite file name inside DataDir.
const DBFile = "devcompass.db"

// Config is the root configuration.
type Config struct {
	// DataDir holds the SQLite database, the guest store and the session
	// file. Default: $XDG_DATA_HOME/devcompass.
	DataDir string `yaml:"data_dir"`

	Database store.Config   `yaml:"database"`
	LLM      llm.Config     `yaml:"llm"`
	Judge    judge.Config   `yaml:"judge"`
	Auth     auth.Config    `yaml:"auth"`
	Logging  logging.Config `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Database: store.Config{Driver: "sqlite"},
		LLM:      llm.DefaultConfig(),
		Judge:    judge.DefaultConfig(),
		Auth:     auth.DefaultConfig(),
		Logging:  logging.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/devcompass/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "devcompass", "config.yaml"), nil
}

// Load reads the YAML file at path (a missing file yields defaults), loads
// .env from the working directory when present, then applies environment
// overrides and resolves derived paths.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	setFromEnv(&c.DataDir, "DEVCOMPASS_DATA_DIR")
	setFromEnv(&c.Database.Driver, "DEVCOMPASS_DB_DRIVER")
	setFromEnv(&c.Database.DSN, "DEVCOMPASS_DB_DSN")
	if p := os.Getenv("DEVCOMPASS_DB"); p != "" {
		c.Database = store.Config{Driver: "sqlite", DSN: p}
	}

	c.LLM.ApplyEnv()
	if !c.LLM.HasKey() {
		if discovered, ok := llm.DiscoverConfig(); ok {
			c.LLM = discovered
		}
	}

	setFromEnv(&c.Judge.BaseURL, "DEVCOMPASS_JUDGE0_URL")
	setFromEnv(&c.Judge.APIKey, "DEVCOMPASS_JUDGE0_API_KEY")
	setFromEnv(&c.Judge.Host, "DEVCOMPASS_JUDGE0_HOST")

	setFromEnv(&c.Auth.Secret, "DEVCOMPASS_AUTH_SECRET")

	setFromEnv(&c.Logging.Level, "DEVCOMPASS_LOG_LEVEL")
	setFromEnv(&c.Logging.File, "DEVCOMPASS_LOG_FILE")
}

// Resolve fills in DataDir and the default SQLite location. Load calls it;
// call it again after changing DataDir.
func (c *Config) Resolve() error {
	if c.DataDir == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home dir: %w", err)
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		c.DataDir = filepath.Join(dataHome, "devcompass")
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		c.Database.DSN = filepath.Join(c.DataDir, DBFile)
	}
	return nil
}

// GuestDir is the badger directory holding guest progress.
func (c *Config) GuestDir() string {
	return filepath.Join(c.DataDir, "guest")
}

// SessionFile is where the signed-in session token is kept.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.jwt")
}

// SecretFile holds the generated token signing secret when none is
// configured.
func (c *Config) SecretFile() string {
	return filepath.Join(c.DataDir, "secret")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
