// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewArtifactError(t *testing.T) {
	err := NewArtifactError("frame.png", errors.New("connection reset"))

	assert.Equal(t, StageArtifact, err.Stage)
	assert.Equal(t, "failed to retrieve artifact", err.Message)
	assert.Contains(t, err.Details, "frame.png")
	assert.Contains(t, err.Details, "connection reset")
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "ARTIFACT_ERROR")
}

func TestNewCanceledError(t *testing.T) {
	err := NewCanceledError("context canceled")

	assert.Equal(t, StageCanceled, err.Stage)
	assert.Equal(t, "invocation canceled", err.Message)
	assert.NotEqual(t, "remote execution timed out", err.Message)
}
