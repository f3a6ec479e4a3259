// Package config loads habitgrid.yaml and applies environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

type Config struct {
	Database struct {
		URL            string `yaml:"url"`
		MaxConnections int    `yaml:"max_connections"`
	} `yaml:"database"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// Timezone is an IANA name used to decide calendar days. Empty means the local zone.
	Timezone string `yaml:"timezone"`

	Log struct {
		Debug bool   `yaml:"debug"`
		Dir   string `yaml:"dir"`
	} `yaml:"log"`

	Stats struct {
		StreakPolicy string `yaml:"streak_policy"`
	} `yaml:"stats"`

	Auth struct {
		// Tokens maps bearer tokens to user ids
		Tokens map[string]string `yaml:"tokens"`
	} `yaml:"auth"`

	CLI struct {
		Owner string `yaml:"owner"`
	} `yaml:"cli"`
}

// Default returns a configuration with every default filled in
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Database.URL == "" {
		c.Database.URL = constants.DefaultDBPath
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = constants.DefaultMaxConnections
	}
	if c.Server.Addr == "" {
		c.Server.Addr = constants.DefaultListenAddr
	}
	if c.Log.Dir == "" {
		c.Log.Dir = constants.DefaultConfigDir
	}
	if c.Stats.StreakPolicy == "" {
		c.Stats.StreakPolicy = string(models.StreakByCalendar)
	}
	if c.CLI.Owner == "" {
		c.CLI.Owner = constants.DefaultCLIOwner
	}
	if c.Auth.Tokens == nil {
		c.Auth.Tokens = map[string]string{}
	}
}

// Path returns the config file location: HABITGRID_CONFIG or the default under the config dir
func Path() string {
	if path := os.Getenv(constants.EnvConfig); path != "" {
		return path
	}
	return filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile)
}

// Load reads the config file at path, fills defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(constants.EnvDB); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(constants.EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(constants.EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		c.Log.Debug = debug
	}
	return nil
}

// Validate checks values that cannot be fixed by defaults
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if !models.StreakPolicy(c.Stats.StreakPolicy).IsValid() {
		return fmt.Errorf("invalid stats.streak_policy %q (expected entries or calendar)", c.Stats.StreakPolicy)
	}
	if c.Database.MaxConnections < 0 {
		return fmt.Errorf("database.max_connections must not be negative")
	}
	for token, user := range c.Auth.Tokens {
		if strings.TrimSpace(token) == "" || strings.TrimSpace(user) == "" {
			return fmt.Errorf("auth.tokens entries need both a token and a user id")
		}
	}
	return nil
}

// Location resolves the configured time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Save writes the config to path as YAML
func Save(cfg *Config, path string) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
