package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildError_Error(t *testing.T) {
	err := New(ErrCodeToolNotFound, "couldn't find required command: \"cmake\"", nil)
	assert.Equal(t, `[ERR_201_TOOL_NOT_FOUND] couldn't find required command: "cmake"`, err.Error())
}

func TestBuildError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeToolNotFound, CategoryTool},
		{ErrCodeMuslRoot, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{"bogus", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code, "msg", nil).Category)
		})
	}
}

func TestBuildError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("stat failed")
	err := Wrap(ErrCodeFileNotFound, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestBuildError_Is(t *testing.T) {
	a := New(ErrCodeToolNotFound, "one", nil)
	b := New(ErrCodeToolNotFound, "two", nil)
	c := New(ErrCodeMuslRoot, "three", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestBuildError_WithDetailAndSuggestion(t *testing.T) {
	err := Newf(ErrCodeMuslRoot, "couldn't find libc.a in musl dir: %s", "/opt/musl/lib").
		WithDetail("target", "x86_64-unknown-linux-musl").
		WithSuggestion("set target.<triple>.musl-root in crucible.yaml")

	assert.Equal(t, "x86_64-unknown-linux-musl", err.Details["target"])
	assert.Contains(t, err.Suggestion, "musl-root")
}

func TestToolNotFound(t *testing.T) {
	err := ToolNotFound("git")

	assert.Equal(t, ErrCodeToolNotFound, err.Code)
	assert.Contains(t, err.Message, `"git"`)
	assert.Equal(t, "git", err.Details["command"])
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}
