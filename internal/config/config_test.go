package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every PICREN_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PICREN_LOG_FILE", "PICREN_LOG_DIR", "PICREN_LOG_PASSWORD", "PICREN_WATCH"} {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "rename_log.txt", cfg.LogFile)
	assert.Equal(t, "admin5678", cfg.LogPassword)
	assert.True(t, cfg.Watch)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}, cfg.ImageExts)
	assert.Equal(t, float32(520), cfg.Window.Width)
}

func TestLoad_TOMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "picrename.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_file = "claims.txt"
log_password = "from-file"
watch = false
image_exts = ["JPG", "png", " "]

[window]
width = 800
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PICREN_LOG_DIR=envdir\n"), 0o644))

	clearEnv(t)
	os.Setenv("PICREN_LOG_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claims.txt", cfg.LogFile)
	assert.Equal(t, "from-env", cfg.LogPassword)
	assert.Equal(t, "envdir", cfg.LogDirectory)
	assert.False(t, cfg.Watch)
	assert.Equal(t, []string{".jpg", ".png"}, cfg.ImageExts)
	assert.Equal(t, float32(800), cfg.Window.Width)
	assert.Equal(t, float32(420), cfg.Window.Height)
}

func TestLoad_EmptyPasswordDisablesGate(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	os.Setenv("PICREN_LOG_PASSWORD", "")

	cfg, err := Load(filepath.Join(dir, "none.toml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.LogPassword)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_file = \n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyLogFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_file = "  "`), 0o644))
	clearEnv(t)

	_, err := Load(path)
	assert.Error(t, err)
}
