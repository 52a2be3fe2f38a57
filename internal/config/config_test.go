package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("MERCADO_PAGO_TOKEN", "mp-token")
	t.Setenv("ADMIN_IDS", "111, 222,333")
	t.Setenv("STORAGE_BACKEND", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tg-token", cfg.TelegramToken)
	assert.Equal(t, "json", cfg.StorageBackend)
	assert.Equal(t, []int64{111, 222, 333}, cfg.AdminIDs)
	assert.True(t, cfg.IsAdmin(222))
	assert.False(t, cfg.IsAdmin(444))
}

func TestLoadRequiresTokens(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("MERCADO_PAGO_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "a")
	t.Setenv("MERCADO_PAGO_TOKEN", "b")
	t.Setenv("STORAGE_BACKEND", "cassandra")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadAdminID(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "a")
	t.Setenv("MERCADO_PAGO_TOKEN", "b")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ADMIN_IDS", "111,abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestDotEnvParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n" +
		"TELEGRAM_TOKEN=from-file\n" +
		"QUOTED=\"value\"\n" +
		"\n" +
		"broken-line-without-equals\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	vals := loadDotEnv(path)
	assert.Equal(t, "from-file", vals["TELEGRAM_TOKEN"])
	assert.Equal(t, "value", vals["QUOTED"])
	assert.NotContains(t, vals, "broken-line-without-equals")
}

func TestDotEnvMissingFileIsEmpty(t *testing.T) {
	vals := loadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
	assert.Empty(t, vals)
}
