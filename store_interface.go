package gorkrepair

import "context"

// ExecutionStore is the read-only view of the authoritative workflow record
type ExecutionStore interface {
	// GetWorkflow returns a coherent snapshot of the workflow. Tasks are
	// loaded only when includeTasks is true. Returns an error wrapping
	// ErrWorkflowNotFound when no such workflow exists.
	GetWorkflow(ctx context.Context, workflowID string, includeTasks bool) (*Workflow, error)
}

// QueueLayer is the ready-queue layer holding ids awaiting dispatch
type QueueLayer interface {
	// Contains reports whether id is currently queued on queueName
	Contains(ctx context.Context, queueName, id string) (bool, error)
	// Push enqueues id on queueName, visible after delaySeconds.
	// Implementations deduplicate by (queueName, id).
	Push(ctx context.Context, queueName, id string, delaySeconds int64) error
}

// SystemTask describes a task type executed by the orchestrator itself
type SystemTask interface {
	Name() string
	// IsAsync reports whether the task is dispatched via its queue.
	// Synchronous system tasks run inline in the decider.
	IsAsync() bool
}

// SystemTaskRegistry classifies task types
type SystemTaskRegistry interface {
	IsSystemTask(taskType string) bool
	Get(taskType string) (SystemTask, bool)
}

// Metrics receives repair events
type Metrics interface {
	// RecordRepush counts one successful re-push onto queueName
	RecordRepush(ctx context.Context, queueName string)
}
