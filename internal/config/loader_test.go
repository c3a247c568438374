package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	logger := zerolog.Nop()

	cfg, resolved, err := Load(&logger, path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	// Loading again reads the written file back unchanged.
	again, _, err := Load(&logger, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":7000\"\nroom_idle_timeout: 2m\nmax_messages_per_minute: 5\nallowed_origins:\n  - https://poker.example\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("POKERDRAWS_ADDR", ":7001")
	t.Setenv("POKERDRAWS_REDIS_ADDR", "localhost:6379")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Addr, "env overrides file")
	assert.Equal(t, 2*time.Minute, cfg.RoomIdleTimeout)
	assert.Equal(t, 5, cfg.MaxMessagesPerMinute)
	assert.Equal(t, []string{"https://poker.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, Default().SendBuffer, cfg.SendBuffer, "unset keys keep defaults")
}

func TestLoadListRoomsOffByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.False(t, cfg.ListRooms)

	t.Setenv("POKERDRAWS_LIST_ROOMS", "true")
	cfg, _, err = Load(nil, path)
	require.NoError(t, err)
	assert.True(t, cfg.ListRooms)
}

func TestSeedDefaultsCoversEveryKey(t *testing.T) {
	v := viper.New()
	require.NoError(t, seedDefaults(v, Default()))

	for _, key := range []string{"addr", "room_idle_timeout", "allowed_origins", "public_url", "list_rooms", "redis_addr", "lease_ttl"} {
		assert.True(t, v.IsSet(key), "missing default for %s", key)
	}

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unterminated\n"), 0o600))

	_, _, err := Load(nil, path)
	assert.Error(t, err)
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9000", LogLevel: "debug", ListRooms: true})

	assert.Equal(t, ":9000", cfg.Addr)
	assert.True(t, cfg.ListRooms)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Default().ShutdownTimeout, cfg.ShutdownTimeout)
}
