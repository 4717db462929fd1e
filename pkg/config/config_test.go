package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHARTDESK_CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".chartdesk"), cfg.Path)
	assert.True(t, cfg.AskToSave)
	assert.False(t, cfg.StrictSettings)
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
	assert.Equal(t, filepath.Join(cfg.Path, "settings.yaml"), cfg.SettingsPath())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	t.Setenv("CHARTDESK_CONFIG_PATH", dir)
	t.Setenv("CHARTDESK_LOG_LEVEL", "debug")

	store := filepath.Join(dir, "store")
	body := "path: " + store + "\nask_to_save: false\nsettings_file: /etc/chartdesk.toml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".chartdesk.yaml"), []byte(body), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, store, cfg.BasePath())
	assert.False(t, cfg.AskToSave)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, "/etc/chartdesk.toml", cfg.SettingsPath())
}

func TestLevelFallback(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, (&Config{LogLevel: "loud"}).Level())
	assert.Equal(t, zerolog.ErrorLevel, (&Config{LogLevel: "error"}).Level())
}
