package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djboot/djboot/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "python3", cfg.Python.Binary)
	assert.Equal(t, "3.10", cfg.Python.MinVersion)
	assert.Equal(t, DefaultPackages, cfg.Packages)
	assert.Equal(t, 8000, cfg.Server.DevPort)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10*time.Minute, cfg.Install.Timeout)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "djboot.yaml")
	content := `
python:
  binary: python3.12
server:
  dev_port: 9000
packages:
  - django==5.2
  - djangorestframework
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := Load(cfgPath, "")
	require.NoError(t, err)

	assert.Equal(t, "python3.12", cfg.Python.Binary)
	assert.Equal(t, 9000, cfg.Server.DevPort)
	assert.Equal(t, []string{"django==5.2", "djangorestframework"}, cfg.Packages)
	// Untouched sections keep defaults.
	assert.Equal(t, "postgres", cfg.Database.User)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DJBOOT_PYTHON_BINARY", "/opt/python/bin/python3")
	t.Setenv("DJBOOT_DATABASE_PORT", "5433")

	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/opt/python/bin/python3", cfg.Python.Binary)
	assert.Equal(t, 5433, cfg.Database.Port)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
	assert.Equal(t, errors.EUsage, errors.GetCode(err))
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("DJBOOT_SERVER_DEV_PORT", "70000")

	_, err := Load("", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.EUsage, errors.GetCode(err))
}
