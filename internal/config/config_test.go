package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1780, cfg.Server.Port)
	assert.Equal(t, 10000, cfg.Server.MaxConnections)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 7, cfg.Game.HandSize)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)
	assert.Equal(t, 5*time.Second, cfg.Game.ChallengeTimeoutDuration())
	assert.Equal(t, 10*time.Minute, cfg.Game.RoomTimeoutDuration())
	assert.Equal(t, 30, cfg.Security.MessageLimit.MaxPerSecond)
	assert.Equal(t, time.Minute, cfg.Security.RateLimit.BanDurationTime())
}

func TestLoad(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9000
game:
  hand_size: 5
  max_players: 3
security:
  allowed_origins:
    - "https://example.com"
  rate_limit:
    max_per_second: 20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Game.HandSize)
	assert.Equal(t, 3, cfg.Game.MaxPlayers)
	assert.Equal(t, []string{"https://example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 20, cfg.Security.RateLimit.MaxPerSecond)

	// Unset fields fall back to defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Game.ChallengeTimeoutDuration())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
