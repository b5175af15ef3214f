package gorkrepair

import (
	"errors"
	"fmt"
	"time"
)

// Error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeBackendFailure = "BACKEND_FAILURE"
)

// ErrWorkflowNotFound is wrapped by execution stores when a workflow id is unknown
var ErrWorkflowNotFound = errors.New("workflow not found")

// RepairError represents an error raised while verifying or repairing a workflow
type RepairError struct {
	Message    string                 `json:"message"`
	Code       string                 `json:"code"`
	WorkflowID string                 `json:"workflowId,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Details    map[string]interface{} `json:"details,omitempty"`

	cause error
}

// Error implements the error interface
func (e *RepairError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.WorkflowID != "" {
		msg = fmt.Sprintf("%s (workflow: %s)", msg, e.WorkflowID)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes the underlying store or queue error
func (e *RepairError) Unwrap() error {
	return e.cause
}

// NewRepairError creates a new repair error
func NewRepairError(code, message, workflowID string) *RepairError {
	return &RepairError{
		Message:    message,
		Code:       code,
		WorkflowID: workflowID,
		Timestamp:  time.Now(),
	}
}

// WithDetails adds details to the error
func (e *RepairError) WithDetails(details map[string]interface{}) *RepairError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error
func (e *RepairError) WithCause(err error) *RepairError {
	e.cause = err
	return e
}

// NotFoundError wraps a store lookup miss for workflowID
func NotFoundError(workflowID string, err error) *RepairError {
	return NewRepairError(ErrCodeNotFound, "workflow not found", workflowID).WithCause(err)
}

// BackendError wraps an execution store or queue failure
func BackendError(workflowID, operation string, err error) *RepairError {
	return NewRepairError(ErrCodeBackendFailure, operation+" failed", workflowID).
		WithCause(err).
		WithDetails(map[string]interface{}{"operation": operation})
}

// IsNotFound checks if an error means the workflow does not exist
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrWorkflowNotFound) {
		return true
	}
	var re *RepairError
	return errors.As(err, &re) && re.Code == ErrCodeNotFound
}

// IsBackendFailure checks if an error came from the store or the queue layer
func IsBackendFailure(err error) bool {
	var re *RepairError
	return errors.As(err, &re) && re.Code == ErrCodeBackendFailure
}
