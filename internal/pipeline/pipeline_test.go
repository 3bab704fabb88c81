package pipeline

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djboot/djboot/internal/errors"
)

func fixedTime() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

// mockService is a configurable ProvisionService. Each stage can be set to
// fail; every invocation is recorded by stage name.
type mockService struct {
	failAt  string
	failErr error

	// onStage, if set, runs for every stage before the failure check.
	onStage func(name string, st *State)

	called []string
}

func (m *mockService) step(name string, st *State) error {
	m.called = append(m.called, name)
	if m.onStage != nil {
		m.onStage(name, st)
	}
	if name == m.failAt {
		return m.failErr
	}
	return nil
}

func (m *mockService) CheckTarget(_ context.Context, st *State) error {
	return m.step(StageCheckTarget, st)
}
func (m *mockService) CreateLayout(_ context.Context, st *State) error {
	return m.step(StageCreateLayout, st)
}
func (m *mockService) CreateVirtualenv(_ context.Context, st *State) error {
	return m.step(StageCreateVirtualenv, st)
}
func (m *mockService) InstallPackages(_ context.Context, st *State) error {
	return m.step(StageInstallPackages, st)
}
func (m *mockService) GenerateSkeleton(_ context.Context, st *State) error {
	return m.step(StageGenerateSkeleton, st)
}
func (m *mockService) WriteSettings(_ context.Context, st *State) error {
	return m.step(StageWriteSettings, st)
}
func (m *mockService) RewriteEntryPoints(_ context.Context, st *State) error {
	return m.step(StageRewriteEntryPoints, st)
}
func (m *mockService) WriteEnvFiles(_ context.Context, st *State) error {
	return m.step(StageWriteEnvFiles, st)
}
func (m *mockService) WriteContainerFiles(_ context.Context, st *State) error {
	return m.step(StageWriteContainerFiles, st)
}
func (m *mockService) FreezeRequirements(_ context.Context, st *State) error {
	return m.step(StageFreezeRequirements, st)
}
func (m *mockService) RecordProject(_ context.Context, st *State) error {
	return m.step(StageRecordProject, st)
}

var allStages = []string{
	StageCheckTarget,
	StageCreateLayout,
	StageCreateVirtualenv,
	StageInstallPackages,
	StageGenerateSkeleton,
	StageWriteSettings,
	StageRewriteEntryPoints,
	StageWriteEnvFiles,
	StageWriteContainerFiles,
	StageFreezeRequirements,
	StageRecordProject,
}

func TestSuccessPathRunsAllStagesInOrder(t *testing.T) {
	mock := &mockService{}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	st, err := p.Run(context.Background(), ProvisionOpts{Name: "blog", Directory: "/work"})
	require.NoError(t, err)

	assert.Equal(t, allStages, mock.called)
	assert.Equal(t, "blog", st.Name)
	assert.Equal(t, "/work", st.Directory)
	assert.Equal(t, fixedTime(), st.StartedAt)
}

func TestSkipDockerBypassesContainerStage(t *testing.T) {
	mock := &mockService{}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	_, err := p.Run(context.Background(), ProvisionOpts{Name: "blog", SkipDocker: true})
	require.NoError(t, err)

	assert.NotContains(t, mock.called, StageWriteContainerFiles)
	assert.Contains(t, mock.called, StageFreezeRequirements)
	assert.Len(t, mock.called, len(allStages)-1)
}

func TestShortCircuitPreservesErrorCode(t *testing.T) {
	mock := &mockService{
		failAt:  StageCheckTarget,
		failErr: errors.New(errors.EDirExists, "target directory already exists"),
	}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	_, err := p.Run(context.Background(), ProvisionOpts{Name: "blog"})
	require.Error(t, err)
	assert.Equal(t, errors.EDirExists, errors.GetCode(err))
	assert.Equal(t, []string{StageCheckTarget}, mock.called)
}

func TestMiddleStageFailureStopsLaterStages(t *testing.T) {
	mock := &mockService{
		failAt:  StageInstallPackages,
		failErr: errors.New(errors.EPipFailed, "package installation failed"),
	}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	_, err := p.Run(context.Background(), ProvisionOpts{Name: "blog"})
	require.Error(t, err)
	assert.Equal(t, errors.EPipFailed, errors.GetCode(err))
	assert.Equal(t, []string{
		StageCheckTarget,
		StageCreateLayout,
		StageCreateVirtualenv,
		StageInstallPackages,
	}, mock.called)
}

func TestWrapsUncodedErrorWithStageName(t *testing.T) {
	mock := &mockService{
		failAt:  StageWriteSettings,
		failErr: stderrors.New("boom"),
	}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	_, err := p.Run(context.Background(), ProvisionOpts{Name: "blog"})
	require.Error(t, err)
	assert.Equal(t, errors.EInternal, errors.GetCode(err))

	be, ok := errors.AsBootError(err)
	require.True(t, ok)
	assert.Equal(t, "internal error", be.Msg)
	assert.Equal(t, StageWriteSettings, be.Details["stage"])
	assert.EqualError(t, be.Cause, "boom")
}

func TestRollbacksRunInReverseOnFailure(t *testing.T) {
	var unwound []string
	mock := &mockService{
		failAt:  StageGenerateSkeleton,
		failErr: errors.New(errors.EGeneratorFailed, "django-admin failed"),
		onStage: func(name string, st *State) {
			switch name {
			case StageCreateLayout, StageCreateVirtualenv:
				n := name
				st.OnRollback(func() { unwound = append(unwound, n) })
			}
		},
	}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	_, err := p.Run(context.Background(), ProvisionOpts{Name: "blog"})
	require.Error(t, err)
	assert.Equal(t, []string{StageCreateVirtualenv, StageCreateLayout}, unwound)
}

func TestNoRollbacksOnSuccess(t *testing.T) {
	var unwound int
	mock := &mockService{
		onStage: func(name string, st *State) {
			if name == StageCreateLayout {
				st.OnRollback(func() { unwound++ })
			}
		},
	}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	_, err := p.Run(context.Background(), ProvisionOpts{Name: "blog"})
	require.NoError(t, err)
	assert.Zero(t, unwound)
}

func TestStateVisibleToLaterStages(t *testing.T) {
	mock := &mockService{
		onStage: func(name string, st *State) {
			if name == StageCheckTarget {
				st.ProjectDir = "/work/blog"
			}
			if name == StageRecordProject {
				// Last stage still sees what CheckTarget resolved.
				if st.ProjectDir != "/work/blog" {
					panic("state lost between stages")
				}
			}
		},
	}
	p := NewPipeline(mock)
	p.SetNowFunc(fixedTime)

	st, err := p.Run(context.Background(), ProvisionOpts{Name: "blog"})
	require.NoError(t, err)
	assert.Equal(t, "/work/blog", st.ProjectDir)
}
