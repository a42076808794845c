package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://:memory:")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "sqlite://:memory:", cfg.DB.Url)
	assert.Equal(t, "memory", cfg.EventBus.Driver)
	assert.Equal(t, 10*time.Second, cfg.Ledger.OperationTimeout)
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, "localhost:3000", cfg.Server.Addr())
	assert.Empty(t, cfg.Auth.Jwt.Secret)
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.test")
	require.NoError(t, os.WriteFile(path, []byte(
		"LEDGER_OPERATION_TIMEOUT=250ms\nSERVER_PORT=8080\nAUTH_JWT_SECRET=topsecret\n",
	), 0o600))
	t.Setenv("LEDGER_OPERATION_TIMEOUT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	for _, k := range []string{"LEDGER_OPERATION_TIMEOUT", "SERVER_PORT", "AUTH_JWT_SECRET"} {
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Ledger.OperationTimeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "topsecret", cfg.Auth.Jwt.Secret)
}

func TestLoad_RejectsBusWithoutBackend(t *testing.T) {
	t.Setenv("EVENT_BUS_DRIVER", "redis")
	t.Setenv("REDIS_URL", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")

	t.Setenv("EVENT_BUS_DRIVER", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue("abc"))
	assert.Equal(t, "po****5432", maskValue("postgres://u:p@h:5432"))
}

func TestFindEnvFile_Missing(t *testing.T) {
	_, err := FindEnvFile("definitely-not-here.env")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
