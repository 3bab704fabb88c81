package scaffold

import (
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djboot/djboot/internal/config"
	"github.com/djboot/djboot/internal/fs"
)

var envKeys = []string{
	"SECRET_KEY", "DEBUG", "ALLOWED_HOSTS", "CORS_ALLOW_ALL_ORIGINS",
	"DATABASE_NAME", "DATABASE_USER", "DATABASE_PASSWORD", "DATABASE_HOST", "DATABASE_PORT",
}

func testEnvValues(t *testing.T) EnvValues {
	t.Helper()
	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	return DefaultEnvValues("blog", "s3cr3t-k3y-with-$pec!al(chars)=and-fifty-characters", cfg)
}

func TestWriteEnvFiles(t *testing.T) {
	projectDir := t.TempDir()
	vals := testEnvValues(t)

	require.NoError(t, WriteEnvFiles(fs.NewRealFS(), projectDir, vals))

	env, err := godotenv.Read(filepath.Join(projectDir, "envs", ".env"))
	require.NoError(t, err)
	example, err := godotenv.Read(filepath.Join(projectDir, "envs", ".env.example"))
	require.NoError(t, err)

	// Identical key sets.
	for _, key := range envKeys {
		assert.Contains(t, env, key)
		assert.Contains(t, example, key)
	}
	assert.Len(t, env, len(envKeys))
	assert.Len(t, example, len(envKeys))
}

func TestEnvHoldsGeneratedSecret(t *testing.T) {
	projectDir := t.TempDir()
	vals := testEnvValues(t)

	require.NoError(t, WriteEnvFiles(fs.NewRealFS(), projectDir, vals))

	env, err := godotenv.Read(filepath.Join(projectDir, "envs", ".env"))
	require.NoError(t, err)
	assert.Equal(t, vals.SecretKey, env["SECRET_KEY"])
	assert.Equal(t, "True", env["DEBUG"])
	assert.Equal(t, "blog_db", env["DATABASE_NAME"])
	assert.Equal(t, "5432", env["DATABASE_PORT"])
}

func TestExampleNeverContainsRealSecret(t *testing.T) {
	projectDir := t.TempDir()
	vals := testEnvValues(t)

	require.NoError(t, WriteEnvFiles(fs.NewRealFS(), projectDir, vals))

	example, err := godotenv.Read(filepath.Join(projectDir, "envs", ".env.example"))
	require.NoError(t, err)
	assert.Equal(t, "your-secret-key", example["SECRET_KEY"])
	assert.Equal(t, "change-me", example["DATABASE_PASSWORD"])
	assert.NotEqual(t, vals.SecretKey, example["SECRET_KEY"])
	assert.NotEqual(t, vals.DatabasePassword, example["DATABASE_PASSWORD"])
}

func TestEnvFileModes(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, WriteEnvFiles(fs.NewRealFS(), projectDir, testEnvValues(t)))

	fsys := fs.NewRealFS()
	envInfo, err := fsys.Stat(filepath.Join(projectDir, "envs", ".env"))
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", envInfo.Mode().String())

	exampleInfo, err := fsys.Stat(filepath.Join(projectDir, "envs", ".env.example"))
	require.NoError(t, err)
	assert.Equal(t, "-rw-r--r--", exampleInfo.Mode().String())
}
