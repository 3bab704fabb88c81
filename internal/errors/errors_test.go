package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	err := New(EDirExists, "directory already exists: blog")
	assert.Equal(t, "E_DIR_EXISTS: directory already exists: blog", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(EPipFailed, "pip install failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, EPipFailed, GetCode(err))
}

func TestGetCodeThroughWrapping(t *testing.T) {
	inner := New(EEntryPointDrift, "no occurrence of settings module reference")
	outer := fmt.Errorf("stage failed: %w", inner)

	assert.Equal(t, EEntryPointDrift, GetCode(outer))
}

func TestGetCodeNonBootError(t *testing.T) {
	assert.Equal(t, Code(""), GetCode(stderrors.New("plain")))
	assert.Equal(t, Code(""), GetCode(nil))
}

func TestDetailsDefensivelyCopied(t *testing.T) {
	details := map[string]string{"stage": "InstallPackages"}
	err := NewWithDetails(EPipFailed, "pip install failed", details)

	details["stage"] = "mutated"

	be, ok := AsBootError(err)
	require.True(t, ok)
	assert.Equal(t, "InstallPackages", be.Details["stage"])
}

func TestEmptyDetailsBecomeNil(t *testing.T) {
	err := NewWithDetails(EInternal, "boom", map[string]string{})
	be, ok := AsBootError(err)
	require.True(t, ok)
	assert.Nil(t, be.Details)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", New(EUsage, "unknown flag"), 2},
		{"domain error", New(EVenvFailed, "venv creation failed"), 1},
		{"plain error", stderrors.New("plain"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestPrintStableFormat(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, New(EEmptyName, "project name must not be empty"))

	assert.Equal(t, "error_code: E_EMPTY_NAME\nproject name must not be empty\n", buf.String())
}

func TestPrintPlainError(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, stderrors.New("plain failure"))
	assert.Equal(t, "plain failure\n", buf.String())
}

func TestPrintNil(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, nil)
	assert.Empty(t, buf.String())
}
