package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jaemnie/sellog/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := config.New(viper.New())

	assert.Equal(t, "sellog", c.GetAppName())
	assert.Equal(t, "DEV", c.GetEnv())
	assert.Equal(t, "http://localhost:8080", c.GetAPIBaseURL())
	assert.Equal(t, "accessToken", c.GetStorageKey())
	assert.Equal(t, config.StoreMemory, c.GetStoreBackend())
	assert.Equal(t, 2*time.Second, c.GetActivityDebounce())
	assert.Equal(t, "/login", c.GetLoginRoute())
	assert.Equal(t, 5*time.Minute, c.GetRefreshThreshold())
	assert.Equal(t, 15*time.Second, c.GetRequestTimeout())
	assert.Zero(t, c.GetRateLimit())
	assert.Equal(t, "sellog:session", c.GetRedisChannel())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SELLOG_API_URL", "https://api.example.com/")
	t.Setenv("SELLOG_SESSION_STORE", "redis")
	t.Setenv("SELLOG_SESSION_ACTIVITY_DEBOUNCE", "500ms")
	t.Setenv("SELLOG_GATEWAY_RATE_LIMIT", "2.5")

	c := config.New(viper.New())

	assert.Equal(t, "https://api.example.com", c.GetAPIBaseURL())
	assert.Equal(t, config.StoreRedis, c.GetStoreBackend())
	assert.Equal(t, 500*time.Millisecond, c.GetActivityDebounce())
	assert.InDelta(t, 2.5, c.GetRateLimit(), 0.0001)
}

func TestUnknownStoreFallsBackToMemory(t *testing.T) {
	v := viper.New()
	v.Set("session.store", "etcd")

	c := config.New(v)
	assert.Equal(t, config.StoreMemory, c.GetStoreBackend())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sellog.yaml")
	require.NoError(t, os.WriteFile(file, []byte("api:\n  url: http://files.example\nsession:\n  login_route: /signin\n"), 0o600))

	c, err := config.Load(viper.New(), file)
	require.NoError(t, err)
	assert.Equal(t, "http://files.example", c.GetAPIBaseURL())
	assert.Equal(t, "/signin", c.GetLoginRoute())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
