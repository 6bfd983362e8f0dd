package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "data", c.Data.Dir)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 25, c.XP.Awards["2"])
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
data:
  dir: /var/lib/questlog
xp:
  awards:
    "1": 5
    "2": 15
    "3": 100
generation:
  on_startup: true
  interval: 1h
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "/var/lib/questlog", c.Data.Dir)
	assert.Equal(t, 100, c.XP.Awards["3"])
	assert.True(t, c.Generation.OnStartup)
	assert.Equal(t, time.Hour, c.Generation.IntervalDuration())
	// defaults still fill the gaps
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadRejectsNegativeXP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
xp:
  awards:
    "1": -5
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("QUESTLOG_ADDR", ":7000")
	t.Setenv("QUESTLOG_LOG_LEVEL", "debug")
	t.Setenv("QUESTLOG_GENERATE_ON_STARTUP", "true")
	t.Setenv("QUESTLOG_GENERATE_INTERVAL", "30m")

	c := Default()
	ApplyEnv(c)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Generation.OnStartup)
	assert.Equal(t, 30*time.Minute, c.Generation.IntervalDuration())
	// untouched by env
	assert.Equal(t, "data", c.Data.Dir)
}
