package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ptool-dev/ptool/internal/branding"
	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/values"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// RepoURLKey overrides the template repository URL.
	RepoURLKey = "templates_repo"
)

//go:embed default-config.yaml
var defaultConfig []byte

// Config is the user's store directory and its loaded config.yaml.
type Config struct {
	dir string
	v   *viper.Viper
}

// DefaultDir returns the store directory: $PTOOL_HOME if set, otherwise
// ~/.ptool.
func DefaultDir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// Ensure creates dir and seeds config.yaml with the default configuration
// when missing, then loads it. An empty dir means DefaultDir.
func Ensure(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	c := &Config{dir: dir}
	path := c.FilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, defaultConfig, 0644); err != nil {
			return nil, fmt.Errorf("writing default config %s: %w", path, err)
		}
	}

	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// load initializes a Viper instance that reads the config file and the
// environment. Environment variables such as PTOOL_AUTHOR override keys
// present in the file.
func (c *Config) load() error {
	v := viper.New()
	v.SetConfigFile(c.FilePath())
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "reading %s", c.FilePath())
	}
	c.v = v
	return nil
}

// Dir returns the store directory.
func (c *Config) Dir() string { return c.dir }

// FilePath returns the full path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.dir, fileName+"."+fileType)
}

// ValueSource wraps every top-level entry of the configuration as a
// template value. Keys are lower-cased.
func (c *Config) ValueSource() (*values.Source, error) {
	src, err := values.FromMap(c.FilePath(), c.v.AllSettings())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "invalid configuration")
	}
	return src, nil
}

// Get returns a config value by key. Returns empty string if not set.
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// IsSet reports whether key has a value in the file or environment.
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Set writes a config key-value pair and saves the config file.
func (c *Config) Set(key, value string) error {
	c.v.Set(key, value)
	if err := c.v.WriteConfigAs(c.FilePath()); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// RepoDir returns the template repository checkout. $PTOOL_TEMPLATES
// selects an existing local directory instead of the managed clone.
func (c *Config) RepoDir() string {
	if v := os.Getenv(branding.EnvVar("TEMPLATES")); v != "" {
		return v
	}
	return filepath.Join(c.dir, branding.TemplatesDir())
}

// RepoManaged reports whether ptool clones and updates RepoDir itself.
func (c *Config) RepoManaged() bool {
	return os.Getenv(branding.EnvVar("TEMPLATES")) == ""
}

// RepoURL returns the template repository URL, checking (in order):
// 1. PTOOL_TEMPLATES_REPO_URL env var
// 2. config key "templates_repo"
// 3. branding.TemplatesRepoURL() (from branding.yaml)
func (c *Config) RepoURL() string {
	if v := os.Getenv(branding.EnvVar("TEMPLATES_REPO_URL")); v != "" {
		return v
	}
	if v := c.Get(RepoURLKey); v != "" {
		return v
	}
	return branding.TemplatesRepoURL()
}
