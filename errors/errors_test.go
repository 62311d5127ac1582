package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardErrorFormatting(t *testing.T) {
	err := New(ErrInvalidInput, "画布宽度必须为正数")
	assert.Equal(t, "[INVALID_INPUT] 画布宽度必须为正数", err.Error())

	cause := fmt.Errorf("unexpected EOF")
	wrapped := Wrap(cause, ErrEncodingFailed, "编码 JPEG 失败")
	assert.Equal(t, "[ENCODING_FAILED] 编码 JPEG 失败: unexpected EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, ErrInternal, "noop"))
	assert.NoError(t, Wrapf(nil, ErrInternal, "noop %d", 1))
}

func TestCodeMatching(t *testing.T) {
	base := Newf(ErrInvalidInput, "渐变至少需要 %d 种颜色", 2)
	outer := fmt.Errorf("generate: %w", base)

	assert.True(t, IsErrorCode(outer, ErrInvalidInput))
	assert.False(t, IsErrorCode(outer, ErrEncodingFailed))
	assert.Equal(t, ErrInvalidInput, GetErrorCode(outer))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
	assert.True(t, errors.Is(outer, New(ErrInvalidInput, "")))
}

func TestCodeMatchingNested(t *testing.T) {
	inner := New(ErrInvalidInput, "宽度必须为正数")
	outer := Wrap(fmt.Errorf("render: %w", inner), ErrInternal, "渲染失败")

	assert.True(t, IsErrorCode(outer, ErrInternal))
	assert.True(t, IsErrorCode(outer, ErrInvalidInput))
	assert.False(t, IsErrorCode(outer, ErrEncodingFailed))
	assert.Equal(t, ErrInternal, GetErrorCode(outer))
	assert.True(t, IsErrorCode(errors.Join(errors.New("plain"), inner), ErrInvalidInput))
	assert.False(t, IsErrorCode(nil, ErrInvalidInput))
}

func TestDetails(t *testing.T) {
	err := New(ErrUnknownStyleID, "unknown font").WithDetail("id", "comic")
	details := GetErrorDetails(fmt.Errorf("wrap: %w", err))
	require.NotNil(t, details)
	assert.Equal(t, "comic", details["id"])
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}
