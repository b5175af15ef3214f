package gorkrepair

// WorkflowStatus represents the current state of a workflow execution
type WorkflowStatus string

const (
	WorkflowStatusRunning    WorkflowStatus = "RUNNING"
	WorkflowStatusCompleted  WorkflowStatus = "COMPLETED"
	WorkflowStatusFailed     WorkflowStatus = "FAILED"
	WorkflowStatusTerminated WorkflowStatus = "TERMINATED"
	WorkflowStatusTimedOut   WorkflowStatus = "TIMED_OUT"
	WorkflowStatusPaused     WorkflowStatus = "PAUSED"
)

// IsTerminal returns true if the status is a final state.
// PAUSED is neither running nor terminal.
func (s WorkflowStatus) IsTerminal() bool {
	switch s {
	case WorkflowStatusCompleted, WorkflowStatusFailed, WorkflowStatusTerminated, WorkflowStatusTimedOut:
		return true
	}
	return false
}

// String returns the string representation
func (s WorkflowStatus) String() string {
	return string(s)
}

// TaskStatus represents the current state of a task within a workflow
type TaskStatus string

const (
	TaskStatusScheduled  TaskStatus = "SCHEDULED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusCanceled   TaskStatus = "CANCELED"
	TaskStatusTimedOut   TaskStatus = "TIMED_OUT"
	TaskStatusSkipped    TaskStatus = "SKIPPED"
)

// IsTerminal returns true if the status is a final state
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCanceled, TaskStatusTimedOut, TaskStatusSkipped:
		return true
	}
	return false
}

// String returns the string representation
func (s TaskStatus) String() string {
	return string(s)
}

// Workflow is a read-only snapshot of a workflow execution as held by the
// execution store. Tasks is populated only when the caller asked for them.
type Workflow struct {
	ID           string         `json:"workflowId" dynamodbav:"workflow_id"`
	WorkflowName string         `json:"workflowName,omitempty" dynamodbav:"workflow_name,omitempty"`
	Status       WorkflowStatus `json:"status" dynamodbav:"status"`

	Tasks []*Task `json:"tasks,omitempty" dynamodbav:"-"`
}

// Task is a read-only snapshot of one task of a workflow
type Task struct {
	ID                 string `json:"taskId" dynamodbav:"task_id"`
	WorkflowInstanceID string `json:"workflowInstanceId" dynamodbav:"workflow_id"`
	ReferenceTaskName  string `json:"referenceTaskName,omitempty" dynamodbav:"reference_task_name,omitempty"`

	// Type classifies the task kind and decides whether it is a system task
	Type string `json:"taskType" dynamodbav:"task_type"`
	// DefinitionName is the queue the task waits on for dispatch
	DefinitionName string `json:"taskDefName" dynamodbav:"task_def_name"`

	Status               TaskStatus `json:"status" dynamodbav:"status"`
	CallbackAfterSeconds int64      `json:"callbackAfterSeconds" dynamodbav:"callback_after_seconds"`

	// Seq is the position of the task within its workflow (stored order)
	Seq int `json:"seq" dynamodbav:"seq"`
}
