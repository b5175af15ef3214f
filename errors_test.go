package gorkrepair

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairError_Error(t *testing.T) {
	err := NewRepairError(ErrCodeValidation, "workflow id must not be empty", "")
	assert.Equal(t, "[VALIDATION_ERROR] workflow id must not be empty", err.Error())

	cause := errors.New("connection refused")
	err = BackendError("w1", "queue_push", cause)
	assert.Equal(t, "[BACKEND_FAILURE] queue_push failed (workflow: w1): connection refused", err.Error())
	assert.Equal(t, "queue_push", err.Details["operation"])
}

func TestRepairError_Unwrap(t *testing.T) {
	cause := errors.New("throttled")
	err := fmt.Errorf("repair: %w", BackendError("w1", "get_workflow", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsBackendFailure(err))
	assert.False(t, IsNotFound(err))
}

func TestIsNotFound(t *testing.T) {
	storeErr := fmt.Errorf("workflow w1: %w", ErrWorkflowNotFound)

	assert.True(t, IsNotFound(storeErr))
	assert.True(t, IsNotFound(NotFoundError("w1", storeErr)))
	assert.True(t, IsNotFound(NewRepairError(ErrCodeNotFound, "gone", "w1")))
	assert.False(t, IsNotFound(errors.New("other")))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsBackendFailure(nil))
}
