// Package python drives the host Python toolchain: virtual environment
// creation, package installation, and Django's project generator. All external
// commands go through exec.CommandRunner so tests run without a Python
// installation.
package python

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/exec"
	"github.com/djboot/djboot/internal/fs"
)

// VenvDirName is the virtual environment directory inside a project.
const VenvDirName = "venv"

// Toolchain wraps the host interpreter and a project venv.
type Toolchain struct {
	cr     exec.CommandRunner
	fsys   fs.FS
	binary string // host interpreter, e.g. "python3"
}

// NewToolchain creates a Toolchain for the given host interpreter.
func NewToolchain(cr exec.CommandRunner, fsys fs.FS, binary string) *Toolchain {
	return &Toolchain{cr: cr, fsys: fsys, binary: binary}
}

// Binary returns the configured host interpreter.
func (t *Toolchain) Binary() string {
	return t.binary
}

// venvBin returns the path of an executable inside the project venv.
func venvBin(projectDir, name string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(projectDir, VenvDirName, "Scripts", name+".exe")
	}
	return filepath.Join(projectDir, VenvDirName, "bin", name)
}

// Version reports the host interpreter version, e.g. "3.12.4".
func (t *Toolchain) Version(ctx context.Context) (string, error) {
	res, err := t.cr.Run(ctx, t.binary, []string{"--version"}, exec.RunOpts{})
	if err != nil {
		return "", errors.Wrap(errors.EPythonNotInstalled,
			fmt.Sprintf("python interpreter %q not found", t.binary), err)
	}
	if res.ExitCode != 0 {
		return "", errors.New(errors.EPythonNotInstalled,
			fmt.Sprintf("%s --version exited %d", t.binary, res.ExitCode))
	}
	// Output is "Python X.Y.Z" on stdout (stderr on very old interpreters).
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		out = strings.TrimSpace(res.Stderr)
	}
	version := strings.TrimPrefix(out, "Python ")
	if version == out {
		return "", errors.New(errors.EPythonNotInstalled,
			fmt.Sprintf("unexpected version output from %s: %q", t.binary, out))
	}
	return version, nil
}

// CheckMinVersion verifies the interpreter meets the configured minimum
// ("major.minor").
func (t *Toolchain) CheckMinVersion(ctx context.Context, min string) (string, error) {
	version, err := t.Version(ctx)
	if err != nil {
		return "", err
	}
	ok, err := versionAtLeast(version, min)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New(errors.EPythonTooOld,
			fmt.Sprintf("python %s is older than required %s", version, min))
	}
	return version, nil
}

func versionAtLeast(version, min string) (bool, error) {
	vMaj, vMin, err := parseMajorMinor(version)
	if err != nil {
		return false, err
	}
	mMaj, mMin, err := parseMajorMinor(min)
	if err != nil {
		return false, err
	}
	if vMaj != mMaj {
		return vMaj > mMaj, nil
	}
	return vMin >= mMin, nil
}

func parseMajorMinor(v string) (int, int, error) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return 0, 0, errors.New(errors.EInternal, fmt.Sprintf("unparseable python version %q", v))
	}
	maj, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.New(errors.EInternal, fmt.Sprintf("unparseable python version %q", v))
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.New(errors.EInternal, fmt.Sprintf("unparseable python version %q", v))
	}
	return maj, min, nil
}

// CheckVenvModule verifies the stdlib venv module is importable. Debian-family
// systems ship it in a separate package, so presence of python3 alone is not
// enough.
func (t *Toolchain) CheckVenvModule(ctx context.Context) error {
	res, err := t.cr.Run(ctx, t.binary, []string{"-c", "import venv"}, exec.RunOpts{})
	if err != nil {
		return errors.Wrap(errors.EPythonNotInstalled,
			fmt.Sprintf("python interpreter %q not found", t.binary), err)
	}
	if res.ExitCode != 0 {
		return errors.New(errors.EVenvUnavailable,
			"python venv module is not available (install the python3-venv package)")
	}
	return nil
}

// CreateVenv creates the project virtual environment.
func (t *Toolchain) CreateVenv(ctx context.Context, projectDir string) error {
	res, err := t.cr.Run(ctx, t.binary, []string{"-m", "venv", VenvDirName}, exec.RunOpts{Dir: projectDir})
	if err != nil {
		return errors.Wrap(errors.EVenvFailed, "failed to run venv creation", err)
	}
	if res.ExitCode != 0 {
		return errors.NewWithDetails(errors.EVenvFailed,
			"virtual environment creation failed",
			map[string]string{"stderr": strings.TrimSpace(res.Stderr)})
	}
	return nil
}

// InstallPackages installs the dependency set into the project venv.
// Output streams to stream (may be nil). Fail-fast: the first failing install
// aborts the run.
func (t *Toolchain) InstallPackages(ctx context.Context, projectDir string, packages []string, stream io.Writer) error {
	res, err := t.cr.Run(ctx, venvBin(projectDir, "pip"),
		[]string{"install", "--upgrade", "pip"}, exec.RunOpts{Dir: projectDir, Stream: stream})
	if err != nil {
		return errors.Wrap(errors.EPipFailed, "failed to run pip", err)
	}
	if res.ExitCode != 0 {
		return errors.NewWithDetails(errors.EPipFailed, "pip self-upgrade failed",
			map[string]string{"stderr": tail(res.Stderr, 2000)})
	}

	args := append([]string{"install"}, packages...)
	res, err = t.cr.Run(ctx, venvBin(projectDir, "pip"), args, exec.RunOpts{Dir: projectDir, Stream: stream})
	if err != nil {
		return errors.Wrap(errors.EPipFailed, "failed to run pip", err)
	}
	if res.ExitCode != 0 {
		return errors.NewWithDetails(errors.EPipFailed, "package installation failed",
			map[string]string{"stderr": tail(res.Stderr, 2000)})
	}
	return nil
}

// Freeze snapshots the installed package set into requirements.txt.
func (t *Toolchain) Freeze(ctx context.Context, projectDir string) error {
	res, err := t.cr.Run(ctx, venvBin(projectDir, "pip"), []string{"freeze"}, exec.RunOpts{Dir: projectDir})
	if err != nil {
		return errors.Wrap(errors.EFreezeFailed, "failed to run pip freeze", err)
	}
	if res.ExitCode != 0 {
		return errors.NewWithDetails(errors.EFreezeFailed, "pip freeze failed",
			map[string]string{"stderr": tail(res.Stderr, 2000)})
	}
	path := filepath.Join(projectDir, "requirements.txt")
	if err := fs.WriteFileAtomic(t.fsys, path, []byte(res.Stdout), 0644); err != nil {
		return errors.Wrap(errors.EFreezeFailed, "failed to write requirements.txt", err)
	}
	return nil
}

// StartProject runs Django's generator in projectDir and renames the inner
// package directory to the fixed name "config".
//
// Postcondition: config/ contains settings.py, urls.py, wsgi.py, asgi.py and
// manage.py exists at the project root.
func (t *Toolchain) StartProject(ctx context.Context, projectDir, name string) error {
	res, err := t.cr.Run(ctx, venvBin(projectDir, "django-admin"),
		[]string{"startproject", name, "."}, exec.RunOpts{Dir: projectDir})
	if err != nil {
		return errors.Wrap(errors.EGeneratorFailed, "failed to run django-admin", err)
	}
	if res.ExitCode != 0 {
		return errors.NewWithDetails(errors.EGeneratorFailed, "django-admin startproject failed",
			map[string]string{"stderr": tail(res.Stderr, 2000)})
	}

	inner := filepath.Join(projectDir, name)
	if _, err := t.fsys.Stat(inner); err != nil {
		return errors.Wrap(errors.ESkeletonInvalid,
			"generator did not produce the inner package directory "+name, err)
	}

	configDir := filepath.Join(projectDir, "config")
	if err := t.fsys.Rename(inner, configDir); err != nil {
		return errors.Wrap(errors.ESkeletonInvalid, "failed to rename inner package to config", err)
	}

	required := []string{
		filepath.Join(configDir, "settings.py"),
		filepath.Join(configDir, "urls.py"),
		filepath.Join(configDir, "wsgi.py"),
		filepath.Join(configDir, "asgi.py"),
		filepath.Join(projectDir, "manage.py"),
	}
	for _, path := range required {
		if _, err := t.fsys.Stat(path); err != nil {
			return errors.Wrap(errors.ESkeletonInvalid,
				"generator output is missing "+filepath.Base(path), err)
		}
	}
	return nil
}

// tail returns at most n trailing bytes of s; error details stay bounded.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
