package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/cadbridge/internal/config"
	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/aretw0/cadbridge/pkg/adapters/ole"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray .env or cadbridge.yaml is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Host.Name)
	assert.Equal(t, ole.DefaultProgID, cfg.Host.ProgID)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	require.NotNil(t, cfg.BreakerSettings())
	assert.Equal(t, uint32(3), cfg.BreakerSettings().FailureThreshold)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: {name: bench-1}
templates:
  part: D:\templates\part.prtdot
redis: {addr: "localhost:6379", lock_ttl: 10s}
breaker: {enabled: true, failure_threshold: 5}
log_level: debug
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CADBRIDGE_HTTP_ADDR=0.0.0.0:9000\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("CADBRIDGE_HTTP_ADDR") })
	t.Setenv("CADBRIDGE_REDIS_ADDR", "redis:6379")
	t.Setenv("CADBRIDGE_TEMPLATE_DRAWING", `D:\templates\draw.drwdot`)
	t.Setenv("CADBRIDGE_BREAKER_THRESHOLD", "7")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bench-1", cfg.Host.Name)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr, "env overrides file")
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr)

	templates, err := cfg.DocumentTemplates()
	require.NoError(t, err)
	assert.Equal(t, `D:\templates\part.prtdot`, templates[domain.DocumentPart])
	assert.Equal(t, `D:\templates\draw.drwdot`, templates[domain.DocumentDrawing])

	b := cfg.BreakerSettings()
	require.NotNil(t, b)
	assert.Equal(t, uint32(7), b.FailureThreshold)
	assert.Equal(t, "bench-1", b.Name)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())

	lo, err := cfg.Logging()
	require.NoError(t, err)
	assert.Equal(t, logging.FormatText, lo.Format)
}

func TestLoad_DefaultFile(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("breaker: {enabled: false}\n"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg.BreakerSettings())
}

func TestLoad_Errors(t *testing.T) {
	dir := chdir(t)

	_, err := config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "explicit path must exist")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("templates: {gearbox: x.asmdot}\n"), 0o644))
	_, err = config.Load(bad)
	assert.ErrorIs(t, err, domain.ErrUnknownName)

	require.NoError(t, os.WriteFile(bad, []byte("log_level: loud\n"), 0o644))
	_, err = config.Load(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	require.NoError(t, os.WriteFile(bad, []byte("log_format: xml\n"), 0o644))
	_, err = config.Load(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	t.Setenv("CADBRIDGE_LOCK_TTL", "soon")
	_, err = config.Load("")
	assert.Error(t, err)
}
