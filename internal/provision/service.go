// Package provision is the production implementation of
// pipeline.ProvisionService. It wires the Python toolchain, the scaffold
// generators, and the project index into the provisioning stages.
package provision

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/djboot/djboot/internal/config"
	"github.com/djboot/djboot/internal/core"
	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/exec"
	"github.com/djboot/djboot/internal/fs"
	"github.com/djboot/djboot/internal/pipeline"
	"github.com/djboot/djboot/internal/python"
	"github.com/djboot/djboot/internal/scaffold"
	"github.com/djboot/djboot/internal/store"
)

// Service is the production implementation of pipeline.ProvisionService.
type Service struct {
	cr      exec.CommandRunner
	fsys    fs.FS
	cfg     config.Config
	tc      *python.Toolchain
	st      *store.Store
	stream  io.Writer // pip/django-admin output (may be nil)
	nowFunc func() time.Time
}

// New creates a Service with production dependencies.
func New(cfg config.Config, dataDir string) *Service {
	cr := exec.NewRealRunner()
	fsys := fs.NewRealFS()
	return &Service{
		cr:      cr,
		fsys:    fsys,
		cfg:     cfg,
		tc:      python.NewToolchain(cr, fsys, cfg.Python.Binary),
		st:      store.NewStore(fsys, dataDir, time.Now),
		nowFunc: time.Now,
	}
}

// NewWithDeps creates a Service with injected dependencies for testing.
func NewWithDeps(cr exec.CommandRunner, fsys fs.FS, cfg config.Config, st *store.Store) *Service {
	return &Service{
		cr:      cr,
		fsys:    fsys,
		cfg:     cfg,
		tc:      python.NewToolchain(cr, fsys, cfg.Python.Binary),
		st:      st,
		nowFunc: time.Now,
	}
}

// SetStream directs subprocess output (pip, django-admin) to w.
func (s *Service) SetStream(w io.Writer) {
	s.stream = w
}

// SetNowFunc overrides the time source for testing.
func (s *Service) SetNowFunc(fn func() time.Time) {
	s.nowFunc = fn
}

// CheckTarget validates the project name, resolves the target path, and
// probes the Python prerequisites. Creates nothing.
func (s *Service) CheckTarget(ctx context.Context, st *pipeline.State) error {
	if err := core.ValidateProjectName(st.Name); err != nil {
		return err
	}

	dir := st.Directory
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
	projectDir := filepath.Join(absDir, st.Name)

	if _, err := s.fsys.Stat(projectDir); err == nil {
		return errors.NewWithDetails(errors.EDirExists,
			"directory "+st.Name+" already exists in "+absDir,
			map[string]string{"path": projectDir})
	} else if !os.IsNotExist(err) {
		return errors.Wrap(errors.EInternal, "failed to stat target path", err)
	}

	version, err := s.tc.CheckMinVersion(ctx, s.cfg.Python.MinVersion)
	if err != nil {
		return err
	}
	if err := s.tc.CheckVenvModule(ctx); err != nil {
		return err
	}

	st.ProjectDir = projectDir
	st.PythonVersion = version
	return nil
}

// CreateLayout creates the project root and auxiliary directories, and
// registers the rollback that removes the root again. CheckTarget guarantees
// the root did not exist, so the rollback can never destroy user data.
func (s *Service) CreateLayout(ctx context.Context, st *pipeline.State) error {
	if err := s.fsys.MkdirAll(st.ProjectDir, 0755); err != nil {
		return errors.Wrap(errors.ELayoutFailed, "failed to create project directory", err)
	}
	projectDir := st.ProjectDir
	st.OnRollback(func() {
		_ = s.fsys.RemoveAll(projectDir)
	})

	if err := scaffold.ProvisionDirs(s.fsys, projectDir); err != nil {
		return err
	}
	return nil
}

// CreateVirtualenv creates venv/ inside the project.
func (s *Service) CreateVirtualenv(ctx context.Context, st *pipeline.State) error {
	return s.tc.CreateVenv(ctx, st.ProjectDir)
}

// InstallPackages installs the pinned dependency set into the venv.
func (s *Service) InstallPackages(ctx context.Context, st *pipeline.State) error {
	return s.tc.InstallPackages(ctx, st.ProjectDir, s.cfg.Packages, s.stream)
}

// GenerateSkeleton runs Django's generator and normalizes the inner package
// to config/.
func (s *Service) GenerateSkeleton(ctx context.Context, st *pipeline.State) error {
	return s.tc.StartProject(ctx, st.ProjectDir, st.Name)
}

// WriteSettings replaces the generated monolithic settings module with the
// base/dev/prod package.
func (s *Service) WriteSettings(ctx context.Context, st *pipeline.State) error {
	return scaffold.WriteSettings(s.fsys, st.ProjectDir, scaffold.SettingsModel{
		ProjectName: st.Name,
	})
}

// RewriteEntryPoints points manage.py at dev settings and wsgi/asgi at prod
// settings.
func (s *Service) RewriteEntryPoints(ctx context.Context, st *pipeline.State) error {
	return scaffold.RewriteEntryPoints(s.fsys, st.ProjectDir, st.Name)
}

// WriteEnvFiles generates the secret key and writes envs/.env and
// envs/.env.example.
func (s *Service) WriteEnvFiles(ctx context.Context, st *pipeline.State) error {
	secret, err := core.GenerateSecretKey()
	if err != nil {
		return err
	}
	st.SecretKey = secret
	return scaffold.WriteEnvFiles(s.fsys, st.ProjectDir,
		scaffold.DefaultEnvValues(st.Name, secret, s.cfg))
}

// WriteContainerFiles writes the Dockerfile and both compose files.
func (s *Service) WriteContainerFiles(ctx context.Context, st *pipeline.State) error {
	if err := scaffold.WriteDockerfile(s.fsys, st.ProjectDir); err != nil {
		return err
	}
	return scaffold.WriteComposeFiles(ctx, s.fsys, st.ProjectDir, st.Name, s.cfg)
}

// FreezeRequirements snapshots the venv into requirements.txt.
func (s *Service) FreezeRequirements(ctx context.Context, st *pipeline.State) error {
	return s.tc.Freeze(ctx, st.ProjectDir)
}

// RecordProject registers the finished project in the local index. Index
// trouble does not fail the run; the project on disk is complete at this
// point, so a store problem degrades to a warning.
func (s *Service) RecordProject(ctx context.Context, st *pipeline.State) error {
	idx, err := s.st.LoadIndex()
	if err != nil {
		st.Warnings = append(st.Warnings, pipeline.Warning{
			Code:    "W_INDEX_UNREADABLE",
			Message: "project index could not be read; run is complete but not recorded",
		})
		return nil
	}
	idx = s.st.UpsertProject(idx, st.Name, st.ProjectDir, st.PythonVersion, !st.SkipDocker, s.nowFunc())
	if err := s.st.SaveIndex(idx); err != nil {
		st.Warnings = append(st.Warnings, pipeline.Warning{
			Code:    "W_INDEX_WRITE_FAILED",
			Message: "project index could not be written; run is complete but not recorded",
		})
	}
	return nil
}
