package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STUDENT_MODEL_PATH", "")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), "student_model.json"), cfg.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STUDENT_MODEL_PATH", "/tmp/elsewhere.json")
	t.Setenv("STUDENT_MODEL_LOG_LEVEL", "debug")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.json", cfg.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestFlagBeatsEnvAndFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STUDENT_MODEL_PATH", "/from/env.json")

	dir := filepath.Join(home, ".config", "student-model")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("path: ~/from-file.json\nlog:\n  format: json\n"), 0o644))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("data", "", "")
	require.NoError(t, fs.Parse([]string{"--data", "/from/flag.json"}))

	l := NewLoader()
	require.NoError(t, l.BindFlag("path", fs.Lookup("data")))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.json", cfg.Path)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestConfigFileHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STUDENT_MODEL_PATH", "")

	dir := filepath.Join(home, ".config", "student-model")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("path: ~/models/me.json\n"), 0o644))

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models", "me.json"), cfg.Path)
}

func TestBindMissingFlag(t *testing.T) {
	assert.Error(t, NewLoader().BindFlag("path", nil))
}
