package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `# sample
database:
  host: db.local
  port: 5433
  user: app
  password: "s3cret"
  database: orders

rabbitmq:
  host: mq.local
  port: 5672
  user: guest
  password: guest

server:
  port: 8088
  allowed_origin: "http://localhost:5173"

auth:
  jwt_secret: topsecret
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesSections(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "s3cret", cfg.Database.Pass)
	assert.Equal(t, "orders", cfg.Database.Name)
	assert.Equal(t, "mq.local", cfg.Rabbit.Host)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "http://localhost:5173", cfg.Server.AllowedOrigin)
	assert.Equal(t, "topsecret", cfg.Auth.JWTSecret)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_HOST", "override.local")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "override.local", cfg.Database.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestLoadRejectsMissingHosts(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 3000\n"))
	require.Error(t, err)
}

func TestLoadDefaultsServerPort(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  host: a\nrabbitmq:\n  host: b\n"))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}
