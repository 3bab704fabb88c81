package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djboot/djboot/internal/fs"
)

func TestProvisionDirs(t *testing.T) {
	projectDir := t.TempDir()

	require.NoError(t, ProvisionDirs(fs.NewRealFS(), projectDir))

	for _, dir := range []string{"apps", "common", "envs", "logs"} {
		info, err := os.Stat(filepath.Join(projectDir, dir))
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	// apps/ and common/ are importable packages; logs/ survives empty.
	for _, marker := range []string{
		filepath.Join("apps", "__init__.py"),
		filepath.Join("common", "__init__.py"),
		filepath.Join("logs", ".gitkeep"),
	} {
		info, err := os.Stat(filepath.Join(projectDir, marker))
		require.NoError(t, err, marker)
		assert.Zero(t, info.Size(), marker)
	}
}

func TestProvisionDirsIdempotent(t *testing.T) {
	projectDir := t.TempDir()
	fsys := fs.NewRealFS()

	require.NoError(t, ProvisionDirs(fsys, projectDir))
	require.NoError(t, ProvisionDirs(fsys, projectDir))
}

func TestWriteDockerfile(t *testing.T) {
	projectDir := t.TempDir()

	require.NoError(t, WriteDockerfile(fs.NewRealFS(), projectDir))

	data, err := os.ReadFile(filepath.Join(projectDir, "Dockerfile"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "FROM python:")
	assert.Contains(t, content, "COPY requirements.txt .")
	assert.Contains(t, content, "pip install --no-cache-dir -r requirements.txt")
}
