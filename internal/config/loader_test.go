package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Address())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 500, cfg.Server.MaxBatchSize)

	assert.Equal(t, "America/Guayaquil", cfg.Clock.Timezone)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.True(t, cfg.Health.Enabled)
	assert.False(t, cfg.Debug.Enabled)

	assert.Same(t, cfg, GetConfig())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  read_timeout: 5s
output:
  format: JSON
logging:
  level: debug
`), 0o600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	v.SetEnvPrefix("PICOYPLACA_TEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	t.Setenv("PICOYPLACA_TEST_SERVER_HOST", "0.0.0.0")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	v := newViper()
	v.Set("server.port", 70000)
	_, err := Load(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("clock.timezone", "Mars/Olympus_Mons")
	_, err = Load(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("server.max_batch_size", 0)
	_, err = Load(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("server.shutdown_timeout", "-1s")
	_, err = Load(v)
	assert.Error(t, err)
}

func TestClockLocation(t *testing.T) {
	loc, err := ClockConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = ClockConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := DefaultConfigPath("")
	if path == "" {
		t.Skip("no XDG config directory available")
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Contains(t, path, DefaultName)
}
