// Package pipeline orchestrates project provisioning. Stages run in a fixed
// order, short-circuit on the first error, and preserve BootError codes. On
// failure the pipeline unwinds registered rollbacks so a failed run never
// leaves a half-built project behind.
package pipeline

import (
	"context"
	"time"

	"github.com/djboot/djboot/internal/errors"
)

// ProvisionOpts contains the inputs for a provisioning run.
type ProvisionOpts struct {
	// Name is the validated project name.
	Name string

	// Directory is the parent directory the project is created under.
	Directory string

	// SkipDocker disables generation of Dockerfile and compose files.
	SkipDocker bool
}

// Warning is a non-fatal condition emitted during a run.
type Warning struct {
	// Code is a stable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string
}

// State accumulates data across stages. Stages read what earlier stages
// populated and append rollbacks for work they completed.
type State struct {
	// From opts (copied at start)
	Name       string
	Directory  string
	SkipDocker bool

	// Set at start
	StartedAt time.Time

	// Populated by CheckTarget
	ProjectDir string

	// Populated by CheckTarget (doctor-grade prerequisite probe)
	PythonVersion string

	// Populated by WriteEnvFiles
	SecretKey string

	// Accumulated warnings (non-fatal)
	Warnings []Warning

	rollbacks []func()
}

// OnRollback registers fn to run if a later stage fails. Rollbacks run in
// reverse registration order.
func (st *State) OnRollback(fn func()) {
	st.rollbacks = append(st.rollbacks, fn)
}

// ProvisionService defines the stage implementations. Each method corresponds
// to one pipeline stage; implementations are injected so the pipeline tests
// run without python, pip, or a real filesystem.
type ProvisionService interface {
	// CheckTarget validates prerequisites and the target path, and resolves
	// st.ProjectDir. Must not create anything.
	CheckTarget(ctx context.Context, st *State) error

	// CreateLayout creates the project root and auxiliary directories.
	// Registers the rollback that removes the project root.
	CreateLayout(ctx context.Context, st *State) error

	// CreateVirtualenv creates venv/ inside the project.
	CreateVirtualenv(ctx context.Context, st *State) error

	// InstallPackages installs the pinned dependency set into the venv.
	InstallPackages(ctx context.Context, st *State) error

	// GenerateSkeleton runs Django's generator and normalizes the inner
	// package to config/.
	GenerateSkeleton(ctx context.Context, st *State) error

	// WriteSettings replaces the monolithic settings module with the
	// base/dev/prod package.
	WriteSettings(ctx context.Context, st *State) error

	// RewriteEntryPoints points manage.py at dev settings and wsgi/asgi at
	// prod settings.
	RewriteEntryPoints(ctx context.Context, st *State) error

	// WriteEnvFiles generates the secret key and writes envs/.env and
	// envs/.env.example.
	WriteEnvFiles(ctx context.Context, st *State) error

	// WriteContainerFiles writes Dockerfile and both compose files.
	// Skipped when st.SkipDocker is set.
	WriteContainerFiles(ctx context.Context, st *State) error

	// FreezeRequirements snapshots the venv into requirements.txt.
	FreezeRequirements(ctx context.Context, st *State) error

	// RecordProject registers the finished project in the local index.
	RecordProject(ctx context.Context, st *State) error
}

// Pipeline executes provisioning stages in a fixed order.
type Pipeline struct {
	svc     ProvisionService
	nowFunc func() time.Time
}

// NewPipeline creates a pipeline with the given service implementation.
func NewPipeline(svc ProvisionService) *Pipeline {
	return &Pipeline{
		svc:     svc,
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the time source for testing.
func (p *Pipeline) SetNowFunc(fn func() time.Time) {
	p.nowFunc = fn
}

type stage struct {
	name string
	run  func(context.Context, *State) error
	// skip reports whether the stage should be bypassed for this run.
	skip func(*State) bool
}

// Run executes the stages in fixed order:
//  1. CheckTarget
//  2. CreateLayout
//  3. CreateVirtualenv
//  4. InstallPackages
//  5. GenerateSkeleton
//  6. WriteSettings
//  7. RewriteEntryPoints
//  8. WriteEnvFiles
//  9. WriteContainerFiles (skipped with --skip-docker)
//  10. FreezeRequirements
//  11. RecordProject
//
// Behavior:
//   - Executes stages in order; short-circuits on first error
//   - If the error is a *BootError, its code/message/details pass through
//     unchanged; anything else is wrapped as E_INTERNAL with the stage name
//     in details
//   - On failure, runs registered rollbacks in reverse order before
//     returning, then returns the final state alongside the error
func (p *Pipeline) Run(ctx context.Context, opts ProvisionOpts) (*State, error) {
	st := &State{
		Name:       opts.Name,
		Directory:  opts.Directory,
		SkipDocker: opts.SkipDocker,
		StartedAt:  p.nowFunc(),
	}

	stages := []stage{
		{name: StageCheckTarget, run: p.svc.CheckTarget},
		{name: StageCreateLayout, run: p.svc.CreateLayout},
		{name: StageCreateVirtualenv, run: p.svc.CreateVirtualenv},
		{name: StageInstallPackages, run: p.svc.InstallPackages},
		{name: StageGenerateSkeleton, run: p.svc.GenerateSkeleton},
		{name: StageWriteSettings, run: p.svc.WriteSettings},
		{name: StageRewriteEntryPoints, run: p.svc.RewriteEntryPoints},
		{name: StageWriteEnvFiles, run: p.svc.WriteEnvFiles},
		{name: StageWriteContainerFiles, run: p.svc.WriteContainerFiles,
			skip: func(st *State) bool { return st.SkipDocker }},
		{name: StageFreezeRequirements, run: p.svc.FreezeRequirements},
		{name: StageRecordProject, run: p.svc.RecordProject},
	}

	for _, s := range stages {
		if s.skip != nil && s.skip(st) {
			continue
		}
		if err := s.run(ctx, st); err != nil {
			st.rollback()
			return st, wrapStageError(err, s.name)
		}
	}

	return st, nil
}

// rollback unwinds registered rollbacks in reverse order. Rollbacks are
// best-effort and must not panic.
func (st *State) rollback() {
	for i := len(st.rollbacks) - 1; i >= 0; i-- {
		st.rollbacks[i]()
	}
	st.rollbacks = nil
}

// wrapStageError ensures the error is a *BootError. Coded errors pass through
// unchanged; anything else becomes E_INTERNAL with the stage name in details.
func wrapStageError(err error, stageName string) error {
	if err == nil {
		return nil
	}

	if _, ok := errors.AsBootError(err); ok {
		return err
	}

	return errors.WrapWithDetails(
		errors.EInternal,
		"internal error",
		err,
		map[string]string{"stage": stageName},
	)
}

// Stage name constants.
const (
	StageCheckTarget         = "CheckTarget"
	StageCreateLayout        = "CreateLayout"
	StageCreateVirtualenv    = "CreateVirtualenv"
	StageInstallPackages     = "InstallPackages"
	StageGenerateSkeleton    = "GenerateSkeleton"
	StageWriteSettings       = "WriteSettings"
	StageRewriteEntryPoints  = "RewriteEntryPoints"
	StageWriteEnvFiles       = "WriteEnvFiles"
	StageWriteContainerFiles = "WriteContainerFiles"
	StageFreezeRequirements  = "FreezeRequirements"
	StageRecordProject       = "RecordProject"
)
