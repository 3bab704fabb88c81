package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/exec"
	"github.com/djboot/djboot/internal/paths"
)

type versionRunner struct {
	version string
}

func (r versionRunner) Run(_ context.Context, name string, args []string, _ exec.RunOpts) (exec.CmdResult, error) {
	if len(args) > 0 && args[0] == "--version" {
		return exec.CmdResult{Stdout: r.version + "\n"}, nil
	}
	return exec.CmdResult{}, nil
}

func testDirs() paths.Dirs {
	return paths.Dirs{
		DataDir:   "/home/u/.local/share/djboot",
		ConfigDir: "/home/u/.config/djboot",
		CacheDir:  "/home/u/.cache/djboot",
	}
}

func TestDoctorReportsToolchain(t *testing.T) {
	deps := testDeps(t)
	deps.CR = versionRunner{version: "Python 3.12.4"}

	var out bytes.Buffer
	require.NoError(t, Doctor(context.Background(), deps, testDirs(), &out))

	s := out.String()
	assert.Contains(t, s, "python_binary: python3")
	assert.Contains(t, s, "python_version: 3.12.4")
	assert.Contains(t, s, "venv_available: true")
	assert.Contains(t, s, "data_dir: /home/u/.local/share/djboot")
	assert.Contains(t, s, "packages: django, ")
	assert.Contains(t, s, "dev_port: 8000")
	assert.Contains(t, s, "status: ok")
}

func TestDoctorFailsOnOldPython(t *testing.T) {
	deps := testDeps(t)
	deps.CR = versionRunner{version: "Python 3.8.10"}

	var out bytes.Buffer
	err := Doctor(context.Background(), deps, testDirs(), &out)
	require.Error(t, err)
	assert.Equal(t, errors.EPythonTooOld, errors.GetCode(err))
	assert.NotContains(t, out.String(), "status: ok")
}
