package commands

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	pyexec "github.com/djboot/djboot/internal/exec"
	"github.com/djboot/djboot/internal/paths"
	"github.com/djboot/djboot/internal/python"
)

// DoctorReport holds all the data for doctor output.
type DoctorReport struct {
	// Interpreter
	PythonBinary  string
	PythonVersion string
	VenvAvailable bool

	// Optional tooling
	DockerVersion string
	DockerPresent bool

	// Directories
	DataDir   string
	ConfigDir string
	CacheDir  string

	// Config resolution
	Packages   []string
	MinVersion string
	DevPort    int
}

// Doctor implements the djboot doctor command. It probes the same
// prerequisites the new command gates on and reports the resolved
// configuration. A broken Python toolchain fails the command; missing docker
// is reported but not fatal because runs can use --skip-docker.
func Doctor(ctx context.Context, deps Deps, dirs paths.Dirs, stdout io.Writer) error {
	tc := python.NewToolchain(deps.CR, deps.FS, deps.Cfg.Python.Binary)

	version, err := tc.CheckMinVersion(ctx, deps.Cfg.Python.MinVersion)
	if err != nil {
		return err
	}
	if err := tc.CheckVenvModule(ctx); err != nil {
		return err
	}

	report := DoctorReport{
		PythonBinary:  deps.Cfg.Python.Binary,
		PythonVersion: version,
		VenvAvailable: true,
		DataDir:       dirs.DataDir,
		ConfigDir:     dirs.ConfigDir,
		CacheDir:      dirs.CacheDir,
		Packages:      deps.Cfg.Packages,
		MinVersion:    deps.Cfg.Python.MinVersion,
		DevPort:       deps.Cfg.Server.DevPort,
	}

	report.DockerVersion, report.DockerPresent = checkDocker(ctx, deps.CR)

	writeDoctorOutput(stdout, report)
	return nil
}

// checkDocker probes for docker. Best-effort: absence is not an error.
func checkDocker(ctx context.Context, cr pyexec.CommandRunner) (string, bool) {
	if _, err := exec.LookPath("docker"); err != nil {
		return "", false
	}
	result, err := cr.Run(ctx, "docker", []string{"--version"}, pyexec.RunOpts{})
	if err != nil || result.ExitCode != 0 {
		return "", false
	}
	return strings.TrimSpace(result.Stdout), true
}

// writeDoctorOutput writes the stable key: value output.
func writeDoctorOutput(w io.Writer, r DoctorReport) {
	fmt.Fprintf(w, "python_binary: %s\n", r.PythonBinary)
	fmt.Fprintf(w, "python_version: %s\n", r.PythonVersion)
	fmt.Fprintf(w, "python_min_version: %s\n", r.MinVersion)
	fmt.Fprintf(w, "venv_available: %s\n", boolStr(r.VenvAvailable))

	fmt.Fprintf(w, "docker_present: %s\n", boolStr(r.DockerPresent))
	if r.DockerPresent {
		fmt.Fprintf(w, "docker_version: %s\n", r.DockerVersion)
	}

	fmt.Fprintf(w, "data_dir: %s\n", r.DataDir)
	fmt.Fprintf(w, "config_dir: %s\n", r.ConfigDir)
	fmt.Fprintf(w, "cache_dir: %s\n", r.CacheDir)

	fmt.Fprintf(w, "packages: %s\n", strings.Join(r.Packages, ", "))
	fmt.Fprintf(w, "dev_port: %d\n", r.DevPort)

	fmt.Fprintln(w, "status: ok")
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
