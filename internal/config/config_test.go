package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitgrid/internal/constants"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habitgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultDBPath, cfg.Database.URL)
	assert.Equal(t, constants.DefaultMaxConnections, cfg.Database.MaxConnections)
	assert.Equal(t, constants.DefaultListenAddr, cfg.Server.Addr)
	assert.Equal(t, "calendar", cfg.Stats.StreakPolicy)
	assert.Equal(t, constants.DefaultCLIOwner, cfg.CLI.Owner)
	assert.NotNil(t, cfg.Auth.Tokens)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://habits@db:5432/habits
  max_connections: 5
server:
  addr: 127.0.0.1:9000
timezone: Europe/Paris
stats:
  streak_policy: entries
auth:
  tokens:
    secret-a: alice
    secret-b: bob
cli:
  owner: alice
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://habits@db:5432/habits", cfg.Database.URL)
	assert.Equal(t, 5, cfg.Database.MaxConnections)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "entries", cfg.Stats.StreakPolicy)
	assert.Equal(t, map[string]string{"secret-a": "alice", "secret-b": "bob"}, cfg.Auth.Tokens)
	assert.Equal(t, "alice", cfg.CLI.Owner)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: :7000\n")
	t.Setenv(constants.EnvAddr, ":9999")
	t.Setenv(constants.EnvDB, "/tmp/other.db")
	t.Setenv(constants.EnvTimezone, "UTC")
	t.Setenv(constants.EnvDebug, "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/tmp/other.db", cfg.Database.URL)
	assert.True(t, cfg.Log.Debug)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad policy":   "stats:\n  streak_policy: sometimes\n",
		"bad timezone": "timezone: Mars/Olympus\n",
		"empty user":   "auth:\n  tokens:\n    abc: \"\"\n",
		"bad yaml":     "database: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	t.Run("bad debug env", func(t *testing.T) {
		t.Setenv(constants.EnvDebug, "maybe")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "habitgrid.yaml")
	cfg := Default()
	cfg.Server.Addr = ":1234"
	cfg.Auth.Tokens["tok"] = "carol"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":1234", loaded.Server.Addr)
	assert.Equal(t, "carol", loaded.Auth.Tokens["tok"])
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/habitgrid"), ExpandHome("~/.config/habitgrid"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "relative", ExpandHome("relative"))
}
