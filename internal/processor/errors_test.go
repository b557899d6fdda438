package processor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorWrapping(t *testing.T) {
	err := newPipelineError("resume.pdf", "text_extract", ErrUnsupportedFormat, "application/zip")

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, ErrInsufficientContent)
	assert.Contains(t, err.Error(), "resume.pdf")
	assert.Contains(t, err.Error(), "text_extract")
	assert.Contains(t, err.Error(), "application/zip")

	// 再包一层也能识别出基础分类
	wrapped := fmt.Errorf("外层: %w", err)
	assert.ErrorIs(t, wrapped, ErrUnsupportedFormat)

	var pe *PipelineError
	assert.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "text_extract", pe.Op)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ErrUnsupportedFormat))
	assert.True(t, IsFatal(newPipelineError("a.pdf", "run", ErrInsufficientContent, "")))
	assert.False(t, IsFatal(ErrEngineUnavailable))
	assert.False(t, IsFatal(ErrServiceError))
	assert.False(t, IsFatal(ErrParseError))
}
