// Package commands implements djboot CLI commands.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/djboot/djboot/internal/config"
	"github.com/djboot/djboot/internal/core"
	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/exec"
	"github.com/djboot/djboot/internal/fs"
	"github.com/djboot/djboot/internal/lock"
	"github.com/djboot/djboot/internal/pipeline"
	"github.com/djboot/djboot/internal/provision"
	"github.com/djboot/djboot/internal/store"
)

// NewOpts holds options for the new command.
type NewOpts struct {
	// Name is the project name. Empty means prompt interactively.
	Name string

	// Directory is the parent directory for the project (default: cwd).
	Directory string

	// SkipDocker disables Dockerfile and compose generation.
	SkipDocker bool

	// NoInput disables the interactive prompt; the name must be given.
	NoInput bool

	// Timeout bounds the whole run (0 = no limit beyond config default).
	Timeout time.Duration

	// Verbose streams pip output instead of showing a spinner.
	Verbose bool
}

// Deps bundles the injected dependencies for commands.
type Deps struct {
	CR      exec.CommandRunner
	FS      fs.FS
	Cfg     config.Config
	DataDir string
	Stdin   io.Reader
	Log     *slog.Logger
}

// New executes the djboot new command: it collects and validates the project
// name, takes the target lock, and drives the provisioning pipeline.
func New(ctx context.Context, deps Deps, opts NewOpts, stdout, stderr io.Writer) error {
	name, err := resolveName(deps, opts, stderr)
	if err != nil {
		return err
	}

	// Fail fast before any subprocess runs; the pipeline re-validates.
	if err := core.ValidateProjectName(name); err != nil {
		return err
	}

	dir := opts.Directory
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(errors.EInternal, "failed to get current directory", err)
		}
		dir = cwd
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to resolve target directory", err)
	}
	projectDir := filepath.Join(absDir, name)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = deps.Cfg.Install.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	st := store.NewStore(deps.FS, deps.DataDir, time.Now)
	tl := lock.NewTargetLock(st.LocksDir())
	unlock, err := tl.Lock(projectDir)
	if err != nil {
		return err
	}
	defer unlock()

	svc := provision.NewWithDeps(deps.CR, deps.FS, deps.Cfg, st)

	var spin *spinner.Spinner
	if opts.Verbose {
		svc.SetStream(stderr)
	} else {
		spin = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(stderr))
		spin.Suffix = fmt.Sprintf(" provisioning %s (this can take a few minutes)", name)
		spin.Start()
	}

	deps.Log.Debug("starting provisioning run",
		"name", name, "dir", absDir, "skip_docker", opts.SkipDocker)

	result, err := pipeline.NewPipeline(svc).Run(ctx, pipeline.ProvisionOpts{
		Name:       name,
		Directory:  absDir,
		SkipDocker: opts.SkipDocker,
	})
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		deps.Log.Error("provisioning failed", "name", name, "err", err)
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w.Message)
	}

	writeNewSummary(stdout, name, result)
	return nil
}

// resolveName returns the project name from opts or the interactive prompt.
func resolveName(deps Deps, opts NewOpts, stderr io.Writer) (string, error) {
	if opts.Name != "" {
		return opts.Name, nil
	}
	if opts.NoInput {
		return "", errors.New(errors.EEmptyName, "project name required with --no-input")
	}
	if deps.Stdin == nil {
		return "", errors.New(errors.EEmptyName, "project name required")
	}

	fmt.Fprint(stderr, "Project name: ")
	reader := bufio.NewReader(deps.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New(errors.EEmptyName, "no project name entered")
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", errors.New(errors.EEmptyName, "no project name entered")
	}
	return name, nil
}

// writeNewSummary prints the created layout and activation instructions.
func writeNewSummary(w io.Writer, name string, st *pipeline.State) {
	fmt.Fprintf(w, "created %s\n", st.ProjectDir)
	fmt.Fprintf(w, "python: %s\n", st.PythonVersion)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "next steps:")
	fmt.Fprintf(w, "  cd %s\n", name)
	fmt.Fprintln(w, "  source venv/bin/activate")
	fmt.Fprintln(w, "  python manage.py migrate")
	fmt.Fprintln(w, "  python manage.py runserver")
	if !st.SkipDocker {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "or with docker:")
		fmt.Fprintln(w, "  docker compose up --build")
	}
}
